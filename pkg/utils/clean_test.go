package utils

import "testing"

// TestCleanCaption тестирует очистку ответов vision модели.
func TestCleanCaption(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain caption untouched",
			input: "a man standing on a beach",
			want:  "a man standing on a beach",
		},
		{
			name:  "surrounding quotes",
			input: `"a man standing on a beach"`,
			want:  "a man standing on a beach",
		},
		{
			name:  "caption prefix",
			input: "Caption: a man standing on a beach",
			want:  "a man standing on a beach",
		},
		{
			name:  "markdown fence",
			input: "```text\na man standing on a beach\n```",
			want:  "a man standing on a beach",
		},
		{
			name:  "trailing period",
			input: "a man standing on a beach.",
			want:  "a man standing on a beach",
		},
		{
			name:  "multiline collapses to one line",
			input: "a man\nstanding on\na beach",
			want:  "a man standing on a beach",
		},
		{
			name:  "everything at once",
			input: "```\nCaption: \"a man standing on a beach.\"\n```",
			want:  "a man standing on a beach",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCaption(tt.input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
