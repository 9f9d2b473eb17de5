package exifmeta

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDateFromFilename тестирует паттерны дат в именах файлов.
func TestDateFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     time.Time
		ok       bool
	}{
		{
			name:     "Pixel photo",
			filename: "PXL_20230710_120530123.jpg",
			want:     time.Date(2023, time.July, 10, 12, 5, 30, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "DJI drone video",
			filename: "DJI_20250619224111_0001_D.MP4",
			want:     time.Date(2025, time.June, 19, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "Sony video",
			filename: "20250616_C0416.MP4",
			want:     time.Date(2025, time.June, 16, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "generic timestamp",
			filename: "IMG_20230710_093000.jpg",
			want:     time.Date(2023, time.July, 10, 9, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "ISO date",
			filename: "2023-07-10_vacation.jpg",
			want:     time.Date(2023, time.July, 10, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "compact date",
			filename: "20230710_beach.jpg",
			want:     time.Date(2023, time.July, 10, 0, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "no date",
			filename: "holiday_photo.jpg",
			ok:       false,
		},
		{
			name:     "eight digits that are not a date",
			filename: "ref_99999999.jpg",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateFromFilename(tt.filename)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

// TestExtractFilenameFallback: без EXIF дата берётся из имени файла и
// помечается наивной.
func TestExtractFilenameFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "PXL_20230710_120530000.mp4")
	if err := os.WriteFile(path, []byte("not a real video"), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := Extract(path, false)

	if meta.Date.IsZero() {
		t.Fatal("expected date from filename")
	}
	if meta.Date.Zoned {
		t.Error("filename date must be naive")
	}
	if meta.Date.Time.Hour() != 12 || meta.Date.Time.Minute() != 5 {
		t.Errorf("unexpected wall clock: %v", meta.Date.Time)
	}
}

// TestExtractMtimeFallback: имя без даты — дата из mtime, зонированная.
func TestExtractMtimeFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holiday.jpg")
	if err := os.WriteFile(path, []byte("no exif here"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Date(2023, time.July, 10, 15, 0, 0, 0, time.Local)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	meta := Extract(path, true)

	if meta.Date.IsZero() {
		t.Fatal("expected date from mtime")
	}
	if !meta.Date.Zoned {
		t.Error("mtime date carries a real zone")
	}
	if !meta.Date.Time.Equal(mtime) {
		t.Errorf("expected %v, got %v", mtime, meta.Date.Time)
	}
}

// TestExtractDateInDirectoryIgnored: дата в пути директории не считается
// датой файла.
func TestExtractDateInDirectoryIgnored(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "2019-01-01_export")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "holiday.jpg")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	meta := Extract(path, false)

	// Дата нашлась (mtime), но не 2019 год из имени директории.
	if meta.Date.IsZero() {
		t.Fatal("expected mtime fallback")
	}
	if meta.Date.Time.Year() == 2019 {
		t.Error("directory name must not be parsed for dates")
	}
}
