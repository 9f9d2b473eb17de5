package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadExpandsEnvAndDefaults: ENV подстановка и дефолты.
func TestLoadExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("PHOTOARCH_TEST_KEY", "sk-secret")

	path := writeConfig(t, `
models:
  default_vision: glm
  definitions:
    glm:
      provider: zai
      model_name: glm-4.6v
      api_key: ${PHOTOARCH_TEST_KEY}
      base_url: https://api.z.ai/v4
      timeout: 90s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// ENV подставлен
	if got := cfg.Models.Definitions["glm"].APIKey; got != "sk-secret" {
		t.Errorf("expected expanded api key, got %q", got)
	}
	if got := cfg.Models.Definitions["glm"].Timeout.Std(); got != 90*time.Second {
		t.Errorf("expected 90s timeout, got %v", got)
	}

	// Дефолты заполнены
	if cfg.Segmentation.Policy != "weighted" {
		t.Errorf("expected weighted policy default, got %q", cfg.Segmentation.Policy)
	}
	if cfg.Segmentation.SplitThreshold != 0.6 {
		t.Errorf("expected 0.6 threshold default, got %v", cfg.Segmentation.SplitThreshold)
	}
	if cfg.Segmentation.MaxTimeGapHours != 3 {
		t.Errorf("expected 3h gap default, got %v", cfg.Segmentation.MaxTimeGapHours)
	}
	if cfg.Geocoding.RatePerSecond != 1 {
		t.Errorf("expected 1 rps default, got %v", cfg.Geocoding.RatePerSecond)
	}
	if !cfg.Geocoding.CitySuffixEnabled() {
		t.Error("compat city suffix must default to enabled")
	}
	if cfg.Segmentation.NamingLanguage != "de" {
		t.Errorf("expected de naming default, got %q", cfg.Segmentation.NamingLanguage)
	}
}

// TestLoadMissingFile: отсутствующий файл — понятная ошибка.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config")
	}
}

// TestLoadValidation тестирует отказы валидации.
func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown policy",
			content: `
segmentation:
  policy: fuzzy
`,
		},
		{
			name: "negative time gap",
			content: `
segmentation:
  max_time_gap_hours: -1
`,
		},
		{
			name: "unknown naming language",
			content: `
segmentation:
  naming_language: fr
`,
		},
		{
			name: "s3 enabled without bucket",
			content: `
s3:
  enabled: true
  endpoint: s3.example.com
`,
		},
		{
			name: "undefined model alias",
			content: `
models:
  default_vision: missing
  definitions: {}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// TestCitySuffixToggle: явный false выключает compat режим.
func TestCitySuffixToggle(t *testing.T) {
	path := writeConfig(t, `
geocoding:
  compat_city_suffix: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Geocoding.CitySuffixEnabled() {
		t.Error("explicit false must disable the compat suffix")
	}
}
