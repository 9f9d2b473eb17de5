// Package exifmeta извлекает метаданные съёмки из медиафайлов:
// дату, модель камеры и GPS координаты.
//
// Дата определяется каскадом:
//  1. EXIF DateTimeOriginal/DateTime (только изображения);
//  2. паттерн в имени файла (PXL_, DJI_, generic timestamp, ISO дата);
//  3. mtime файла.
//
// Каждое поле деградирует независимо: отсутствие GPS или камеры не
// мешает извлечь дату.
package exifmeta

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/utils"
)

// Meta — извлечённые метаданные одного файла.
type Meta struct {
	// Date — лучшая доступная дата съёмки. Zero если не удалось
	// определить даже mtime.
	Date model.Timestamp

	// CameraModel — модель камеры из EXIF, "" если недоступна.
	CameraModel string

	// Lat/Lon — GPS координаты; либо обе, либо ни одной.
	Lat *float64
	Lon *float64
}

// datePatterns — паттерны дат в именах файлов.
// Пробуются по порядку, выигрывает первое совпадение.
// Layout использует референсное время Go: Mon Jan 2 15:04:05 MST 2006.
var datePatterns = []struct {
	regex  *regexp.Regexp
	layout string
}{
	// Pixel: PXL_20240101_123456789.jpg (дата + время)
	{regexp.MustCompile(`PXL_(\d{8}_\d{6})\d{0,3}`), "20060102_150405"},

	// DJI дрон: DJI_20250619224111_0001_D.MP4
	{regexp.MustCompile(`DJI_(\d{8})`), "20060102"},

	// Sony видео: 20250616_C0416.MP4
	{regexp.MustCompile(`^(\d{8})_C\d+`), "20060102"},

	// Generic timestamp: IMG_20250619_123456.jpg
	{regexp.MustCompile(`(\d{8}_\d{6})`), "20060102_150405"},

	// ISO дата: 2025-06-19_photo.jpg
	{regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), "2006-01-02"},

	// Компактная дата: 20250619_photo.jpg (последний, наименее специфичный)
	{regexp.MustCompile(`(\d{8})`), "20060102"},
}

// Extract извлекает метаданные файла. Best-effort: никогда не возвращает
// ошибку, недоступные поля остаются пустыми.
//
// tryExif отключает попытку чтения EXIF (для видео-контейнеров, которые
// EXIF декодер не понимает).
func Extract(path string, tryExif bool) Meta {
	var meta Meta

	if tryExif {
		meta = fromExif(path)
	}

	if meta.Date.IsZero() {
		// Паттерны якорятся на имя файла, путь директории может
		// содержать ложные даты.
		if t, ok := DateFromFilename(filepath.Base(path)); ok {
			// Имя файла не несёт таймзону
			meta.Date = model.NewNaiveTimestamp(t)
		}
	}

	if meta.Date.IsZero() {
		if info, err := os.Stat(path); err == nil {
			meta.Date = model.NewTimestamp(info.ModTime())
		} else {
			utils.Warn("Could not read modified date", "path", path, "error", err)
		}
	}

	return meta
}

// fromExif читает EXIF блок файла. Любая ошибка — пустая Meta:
// не каждое изображение несёт EXIF, это не отказ.
func fromExif(path string) Meta {
	var meta Meta

	f, err := os.Open(path)
	if err != nil {
		utils.Warn("Could not open file for EXIF", "path", path, "error", err)
		return meta
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		utils.Debug("No EXIF data", "path", path, "error", err)
		return meta
	}

	// Дата: DateTimeOriginal с фоллбеком на DateTime.
	// EXIF дата не несёт смещение зоны — помечаем наивной.
	if t, err := x.DateTime(); err == nil {
		meta.Date = model.NewNaiveTimestamp(t)
	}

	// Модель камеры. У части видео тег Model отсутствует,
	// но производитель записывает себя в Artist.
	if tag, err := x.Get(exif.Model); err == nil {
		if s, err := tag.StringVal(); err == nil {
			meta.CameraModel = strings.TrimSpace(s)
		}
	}
	if meta.CameraModel == "" {
		if tag, err := x.Get(exif.Artist); err == nil {
			if s, err := tag.StringVal(); err == nil {
				meta.CameraModel = strings.TrimSpace(s)
			}
		}
	}

	// GPS
	if lat, lon, err := x.LatLong(); err == nil {
		meta.Lat = &lat
		meta.Lon = &lon
	}

	return meta
}

// DateFromFilename пробует извлечь дату из имени файла по паттернам.
func DateFromFilename(name string) (time.Time, bool) {
	for _, p := range datePatterns {
		matches := p.regex.FindStringSubmatch(name)
		if len(matches) < 2 {
			continue
		}
		if t, err := time.Parse(p.layout, matches[1]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
