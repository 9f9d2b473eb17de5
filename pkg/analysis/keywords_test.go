package analysis

import (
	"reflect"
	"testing"
)

// TestExtractKeywords тестирует извлечение keywords из caption.
func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name      string
		caption   string
		stopwords map[string]bool
		want      []string
	}{
		{
			name:      "drops stopwords",
			caption:   "a dog is running on the beach",
			stopwords: Stopwords,
			want:      []string{"beach", "dog", "running"},
		},
		{
			name:      "stopwords are case-insensitive",
			caption:   "The Dog And The Ball",
			stopwords: Stopwords,
			want:      []string{"Ball", "Dog"},
		},
		{
			name:      "deduplication",
			caption:   "dog beach dog ball beach",
			stopwords: Stopwords,
			want:      []string{"ball", "beach", "dog"},
		},
		{
			name:      "forbidden runes removed before split",
			caption:   "dog, beach; ball",
			stopwords: Stopwords,
			want:      []string{"ball", "beach", "dog"},
		},
		{
			name:      "sorted case-insensitively regardless of caption order",
			caption:   "Zebra apple Banana",
			stopwords: Stopwords,
			want:      []string{"apple", "Banana", "Zebra"},
		},
		{
			name:      "german stopwords",
			caption:   "ein Hund läuft an dem Strand",
			stopwords: StopwordsGerman,
			want:      []string{"Hund", "läuft", "Strand"},
		},
		{
			name:      "empty caption",
			caption:   "",
			stopwords: Stopwords,
			want:      nil,
		},
		{
			name:      "only stopwords",
			caption:   "the of and",
			stopwords: Stopwords,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.caption, tt.stopwords)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
