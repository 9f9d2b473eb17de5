package utils

import "testing"

// TestSanitizeFolderName тестирует удаление запрещённых символов.
func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean string untouched", "Münsterplatz Ulm", "Münsterplatz Ulm"},
		{"colon and slashes", "Cafe: Zur Post / Ulm", "Cafe Zur Post  Ulm"},
		{"quotes", `Gasthof "Adler"`, "Gasthof Adler"},
		{"typographic quotes", "„Adler“ Wirtshaus", "Adler Wirtshaus"},
		{"comma and semicolon", "Brot, Käse; Wein", "Brot Käse Wein"},
		{"ampersand and pipe", "Fisch & Chips | Pub", "Fisch  Chips  Pub"},
		{"empty", "", ""},
		{"only forbidden", `:/\"'`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFolderName(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
