// Package config загружает и валидирует конфигурацию photoarch из YAML.
//
// Поддерживает подстановку переменных окружения (${VAR}) — API ключи
// не хранятся в файле.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration — time.Duration с YAML декодированием строк вида "60s", "2m".
type Duration time.Duration

// UnmarshalYAML декодирует строку через time.ParseDuration.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std возвращает стандартный time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml.
type AppConfig struct {
	Models       ModelsConfig       `yaml:"models"`
	Geocoding    GeocodingConfig    `yaml:"geocoding"`
	Segmentation SegmentationConfig `yaml:"segmentation"`
	Analysis     AnalysisConfig     `yaml:"analysis"`
	Image        ImageProcConfig    `yaml:"image_processing"`
	S3           S3Config           `yaml:"s3"`
	App          AppSpecific        `yaml:"app"`
}

// ModelsConfig — настройки AI моделей.
//
// Definitions — словарь определений, алиасы default_* выбирают модель
// для каждой роли (vision caption, chat перевод, embeddings).
type ModelsConfig struct {
	DefaultVision    string              `yaml:"default_vision"`
	DefaultChat      string              `yaml:"default_chat"`
	DefaultEmbedding string              `yaml:"default_embedding"`
	Definitions      map[string]ModelDef `yaml:"definitions"`
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string        `yaml:"provider"`   // "openai", "zai" и т.д.
	ModelName   string        `yaml:"model_name"` // Реальное имя в API
	APIKey      string        `yaml:"api_key"`    // Поддерживает ${VAR}
	BaseURL     string        `yaml:"base_url"`   // Для OpenAI-совместимых провайдеров
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     Duration      `yaml:"timeout"` // Строки вида "60s", "2m"
}

// GeocodingConfig — настройки обратного геокодинга (OSM Nominatim).
type GeocodingConfig struct {
	BaseURL        string        `yaml:"base_url"`
	UserAgent      string        `yaml:"user_agent"` // Nominatim требует осмысленный User-Agent
	AcceptLanguage string        `yaml:"accept_language"`
	RatePerSecond  float64       `yaml:"rate_per_second"` // Политика Nominatim: максимум 1 rps
	Burst          int           `yaml:"burst"`
	MaxRetries     int           `yaml:"max_retries"`
	Backoff        Duration      `yaml:"backoff"`
	Timeout        Duration      `yaml:"timeout"`

	// CompatCitySuffix сохраняет поведение старых архивов: к имени места
	// всегда дописывается город, даже если имя уже содержит его.
	// Выключение даёт «исправленные» имена, несовместимые со старыми папками.
	CompatCitySuffix *bool `yaml:"compat_city_suffix"`
}

// CitySuffixEnabled возвращает значение CompatCitySuffix (default true).
func (g GeocodingConfig) CitySuffixEnabled() bool {
	if g.CompatCitySuffix == nil {
		return true
	}
	return *g.CompatCitySuffix
}

// SegmentationConfig — пороги и веса решения о границе событий.
type SegmentationConfig struct {
	// Policy: "weighted" (канонический взвешенный скоринг) или
	// "boolean" (legacy правило «2 из 3 точных критериев»).
	Policy string `yaml:"policy"`

	MaxTimeGapHours   float64 `yaml:"max_time_gap_hours"`  // T_max
	MaxDistanceMeters float64 `yaml:"max_distance_meters"` // D_max

	TimeWeight     float64 `yaml:"time_weight"`
	DistanceWeight float64 `yaml:"distance_weight"`
	ContentWeight  float64 `yaml:"content_weight"`
	SplitThreshold float64 `yaml:"split_threshold"`

	// GenericVideoKeyword — маркер «это видео без осмысленного caption».
	GenericVideoKeyword string `yaml:"generic_video_keyword"`

	// KeywordSimilarityThreshold — порог косинусной близости для
	// симметричной проверки «наборы keywords похожи» (boolean policy).
	KeywordSimilarityThreshold float64 `yaml:"keyword_similarity_threshold"`

	// NamingLanguage — язык keywords в именах папок: "de" или "en".
	NamingLanguage string `yaml:"naming_language"`
}

// AnalysisConfig — директории и фильтр расширений.
type AnalysisConfig struct {
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	CacheDir  string `yaml:"cache_dir"`

	// EmbeddingCachePath — путь к sqlite базе кэша эмбеддингов.
	// Пустая строка = только in-memory кэш.
	EmbeddingCachePath string `yaml:"embedding_cache_path"`

	ImageExtensions []string `yaml:"image_extensions"`
	VideoExtensions []string `yaml:"video_extensions"`
}

// ImageProcConfig — настройки обработки изображений перед vision запросом.
type ImageProcConfig struct {
	MaxWidth int `yaml:"max_width"`
	Quality  int `yaml:"quality"`
}

// S3Config — настройки опционального зеркала архива в объектное хранилище.
type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"` // Поддерживает ${VAR}
	SecretKey string `yaml:"secret_key"` // Поддерживает ${VAR}
	UseSSL    bool   `yaml:"use_ssl"`
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Debug bool `yaml:"debug"`
}

// Load читает YAML файл, подставляет ENV переменные и возвращает готовую
// структуру с заполненными дефолтами.
func Load(path string) (*AppConfig, error) {
	// 1. Проверяем существование файла
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	// 2. Читаем файл целиком
	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Подставляем переменные окружения.
	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := os.ExpandEnv(string(rawBytes))

	// 4. Парсим YAML в структуру
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(contentWithEnv), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	cfg.applyDefaults()

	// 5. Валидируем критические настройки
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults заполняет незаданные поля дефолтными значениями.
func (c *AppConfig) applyDefaults() {
	if c.Geocoding.BaseURL == "" {
		c.Geocoding.BaseURL = "https://nominatim.openstreetmap.org/reverse"
	}
	if c.Geocoding.UserAgent == "" {
		c.Geocoding.UserAgent = "photoarch/1.0"
	}
	if c.Geocoding.AcceptLanguage == "" {
		c.Geocoding.AcceptLanguage = "de,en"
	}
	if c.Geocoding.RatePerSecond == 0 {
		c.Geocoding.RatePerSecond = 1 // абсолютный лимит публичного Nominatim
	}
	if c.Geocoding.Burst == 0 {
		c.Geocoding.Burst = 1
	}
	if c.Geocoding.MaxRetries == 0 {
		c.Geocoding.MaxRetries = 3
	}
	if c.Geocoding.Backoff == 0 {
		c.Geocoding.Backoff = Duration(500 * time.Millisecond)
	}
	if c.Geocoding.Timeout == 0 {
		c.Geocoding.Timeout = Duration(30 * time.Second)
	}

	if c.Segmentation.Policy == "" {
		c.Segmentation.Policy = "weighted"
	}
	if c.Segmentation.MaxTimeGapHours == 0 {
		c.Segmentation.MaxTimeGapHours = 3
	}
	if c.Segmentation.MaxDistanceMeters == 0 {
		c.Segmentation.MaxDistanceMeters = 1000
	}
	if c.Segmentation.TimeWeight == 0 {
		c.Segmentation.TimeWeight = 0.4
	}
	if c.Segmentation.DistanceWeight == 0 {
		c.Segmentation.DistanceWeight = 0.4
	}
	if c.Segmentation.ContentWeight == 0 {
		c.Segmentation.ContentWeight = 0.3
	}
	if c.Segmentation.SplitThreshold == 0 {
		c.Segmentation.SplitThreshold = 0.6
	}
	if c.Segmentation.GenericVideoKeyword == "" {
		c.Segmentation.GenericVideoKeyword = "Video"
	}
	if c.Segmentation.KeywordSimilarityThreshold == 0 {
		c.Segmentation.KeywordSimilarityThreshold = 0.6
	}
	if c.Segmentation.NamingLanguage == "" {
		c.Segmentation.NamingLanguage = "de"
	}

	if c.Analysis.InputDir == "" {
		c.Analysis.InputDir = "./input_photos"
	}
	if c.Analysis.OutputDir == "" {
		c.Analysis.OutputDir = "./sorted_photos"
	}
	if c.Analysis.CacheDir == "" {
		c.Analysis.CacheDir = ".cache"
	}
	if len(c.Analysis.ImageExtensions) == 0 {
		c.Analysis.ImageExtensions = []string{".jpg"}
	}
	if len(c.Analysis.VideoExtensions) == 0 {
		c.Analysis.VideoExtensions = []string{".mp4"}
	}

	if c.Image.MaxWidth == 0 {
		c.Image.MaxWidth = 1024
	}
	if c.Image.Quality == 0 {
		c.Image.Quality = 85
	}
}

// validate проверяет обязательные поля.
//
// Нулевые или отрицательные пороги делают любой разрыв «бесконечным» и
// сегментация молча деградирует — поэтому падаем на старте.
func (c *AppConfig) validate() error {
	s := c.Segmentation
	if s.Policy != "weighted" && s.Policy != "boolean" {
		return fmt.Errorf("segmentation.policy must be \"weighted\" or \"boolean\", got %q", s.Policy)
	}
	if s.MaxTimeGapHours <= 0 {
		return fmt.Errorf("segmentation.max_time_gap_hours must be positive, got %v", s.MaxTimeGapHours)
	}
	if s.MaxDistanceMeters <= 0 {
		return fmt.Errorf("segmentation.max_distance_meters must be positive, got %v", s.MaxDistanceMeters)
	}
	if s.TimeWeight <= 0 || s.DistanceWeight <= 0 || s.ContentWeight <= 0 {
		return fmt.Errorf("segmentation weights must be positive")
	}
	if s.SplitThreshold <= 0 {
		return fmt.Errorf("segmentation.split_threshold must be positive, got %v", s.SplitThreshold)
	}
	if s.NamingLanguage != "de" && s.NamingLanguage != "en" {
		return fmt.Errorf("segmentation.naming_language must be \"de\" or \"en\", got %q", s.NamingLanguage)
	}

	if c.Geocoding.RatePerSecond < 0 {
		return fmt.Errorf("geocoding.rate_per_second must not be negative")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3.bucket is required when s3.enabled")
		}
		if c.S3.Endpoint == "" {
			return fmt.Errorf("s3.endpoint is required when s3.enabled")
		}
	}

	// Алиасы моделей должны ссылаться на существующие определения
	for alias, name := range map[string]string{
		"default_vision":    c.Models.DefaultVision,
		"default_chat":      c.Models.DefaultChat,
		"default_embedding": c.Models.DefaultEmbedding,
	} {
		if name == "" {
			continue
		}
		if _, ok := c.Models.Definitions[name]; !ok {
			return fmt.Errorf("%s model '%s' is not defined in definitions", alias, name)
		}
	}

	return nil
}

// Helper методы для удобства доступа (Syntactic sugar)

// GetVisionModel возвращает конфигурацию vision модели по умолчанию или по имени.
func (c *AppConfig) GetVisionModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultVision
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

// GetChatModel возвращает конфигурацию chat модели (перевод).
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

// GetEmbeddingModel возвращает конфигурацию embedding модели.
func (c *AppConfig) GetEmbeddingModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultEmbedding
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}
