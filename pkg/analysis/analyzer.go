// Package analysis извлекает метаданные одного файла: EXIF, геокодинг,
// caption, перевод и keywords. Результат кэшируется в JSON рядом с
// архивом, повторный запуск не трогает внешние API.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilkoid/photoarch/pkg/exifmeta"
	"github.com/ilkoid/photoarch/pkg/llm"
	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/utils"
)

// Geocoder — обратный геокодинг координат в адрес.
// Реализуется geocode.Client, в тестах подменяется моком.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (*model.Address, error)
}

// Options — параметры конструктора Analyzer.
type Options struct {
	CacheDir            string
	ImageExtensions     []string
	VideoExtensions     []string
	GenericVideoKeyword string
	MaxImageWidth       int
	ImageQuality        int
}

// Analyzer анализирует файлы по одному. Cache-first: если для файла уже
// есть валидный JSON в CacheDir, внешние сервисы не вызываются вообще.
type Analyzer struct {
	captioner  llm.Captioner
	translator llm.Translator
	geocoder   Geocoder

	cacheDir       string
	imageExts      map[string]bool
	videoExts      map[string]bool
	genericKeyword string
	maxWidth       int
	quality        int
}

// New создаёт Analyzer. Любой из коллабораторов может быть nil —
// соответствующий шаг анализа пропускается с пустым результатом.
func New(captioner llm.Captioner, translator llm.Translator, geocoder Geocoder, opts Options) *Analyzer {
	if opts.GenericVideoKeyword == "" {
		opts.GenericVideoKeyword = "Video"
	}
	if opts.MaxImageWidth == 0 {
		opts.MaxImageWidth = 1024
	}
	if opts.ImageQuality == 0 {
		opts.ImageQuality = 85
	}
	return &Analyzer{
		captioner:      captioner,
		translator:     translator,
		geocoder:       geocoder,
		cacheDir:       opts.CacheDir,
		imageExts:      extSet(opts.ImageExtensions),
		videoExts:      extSet(opts.VideoExtensions),
		genericKeyword: opts.GenericVideoKeyword,
		maxWidth:       opts.MaxImageWidth,
		quality:        opts.ImageQuality,
	}
}

// CachePath возвращает путь JSON кэша для файла: имя без расширения + ".json".
func CachePath(cacheDir, path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(cacheDir, stem+".json")
}

// AnalyzeFile анализирует один файл и возвращает заполненный FileRecord.
//
// Порядок: кэш → фильтр расширений → EXIF/имя файла/mtime → геокодинг →
// caption → перевод → keywords → запись кэша. Ошибки коллабораторов не
// фатальны: соответствующие поля остаются пустыми, запись попадает в
// сегментацию как есть.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*model.FileRecord, error) {
	name := filepath.Base(path)

	if rec, ok := a.loadCache(path); ok {
		utils.Debug("Кэш-хит", "file", name)
		return rec, nil
	}

	ext := strings.ToLower(filepath.Ext(name))
	isImage := a.imageExts[ext]
	isVideo := a.videoExts[ext]
	if !isImage && !isVideo {
		utils.Debug("Пропуск файла с неподдерживаемым расширением", "file", name)
		return &model.FileRecord{Path: name, Skip: true}, nil
	}

	rec := &model.FileRecord{
		SchemaVersion: model.SchemaVersion,
		Path:          name,
	}

	meta := exifmeta.Extract(path, isImage)
	if meta.Date.IsZero() {
		// Без временной метки запись невозможно сегментировать.
		utils.Warn("Файл без какой-либо временной метки, пропускаем", "file", name)
		return &model.FileRecord{Path: name, Skip: true}, nil
	}
	rec.Date = meta.Date
	rec.CameraModel = meta.CameraModel
	rec.Lat = meta.Lat
	rec.Lon = meta.Lon

	if rec.HasLocation() && a.geocoder != nil {
		addr, err := a.geocoder.ReverseGeocode(ctx, *rec.Lat, *rec.Lon)
		if err != nil {
			utils.Warn("Геокодинг не удался", "file", name, "error", err)
		} else {
			rec.Address = addr
		}
	}

	if isVideo {
		// Видео не прогоняем через vision модель: ставим общий маркер,
		// сегментация трактует его как «контент неизвестен».
		rec.Keywords = []string{a.genericKeyword}
		rec.KeywordsGerman = []string{a.genericKeyword}
	} else {
		a.describeImage(ctx, path, rec)
	}

	if err := a.writeCache(path, rec); err != nil {
		utils.Warn("Не удалось записать кэш анализа", "file", name, "error", err)
	}

	return rec, nil
}

// describeImage заполняет caption/перевод/keywords для изображения.
func (a *Analyzer) describeImage(ctx context.Context, path string, rec *model.FileRecord) {
	if a.captioner == nil {
		return
	}

	jpeg, err := utils.LoadImageForVision(path, a.maxWidth, a.quality)
	if err != nil {
		utils.Warn("Не удалось подготовить изображение", "file", rec.Path, "error", err)
		return
	}

	caption, err := a.captioner.CaptionImage(ctx, jpeg)
	if err != nil {
		utils.Warn("Vision модель не ответила", "file", rec.Path, "error", err)
		return
	}
	rec.Caption = utils.CleanCaption(caption)
	rec.Keywords = ExtractKeywords(rec.Caption, Stopwords)

	if a.translator == nil {
		return
	}
	translated, err := a.translator.Translate(ctx, rec.Caption, "English", "German")
	if err != nil {
		utils.Warn("Перевод caption не удался", "file", rec.Path, "error", err)
		return
	}
	rec.CaptionGerman = utils.CleanCaption(translated)
	rec.KeywordsGerman = ExtractKeywords(rec.CaptionGerman, StopwordsGerman)
}

// loadCache пытается прочитать FileRecord из JSON кэша.
// Кэш с другой schemaVersion игнорируется — файл будет переанализирован.
func (a *Analyzer) loadCache(path string) (*model.FileRecord, bool) {
	if a.cacheDir == "" {
		return nil, false
	}
	data, err := os.ReadFile(CachePath(a.cacheDir, path))
	if err != nil {
		return nil, false
	}
	var rec model.FileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		utils.Warn("Повреждённый кэш анализа, игнорируем", "file", filepath.Base(path), "error", err)
		return nil, false
	}
	if rec.SchemaVersion != model.SchemaVersion {
		utils.Debug("Кэш устаревшей схемы", "file", filepath.Base(path), "version", rec.SchemaVersion)
		return nil, false
	}
	return &rec, true
}

// writeCache сериализует запись в JSON с отступами (кэш читают руками).
func (a *Analyzer) writeCache(path string, rec *model.FileRecord) error {
	if a.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return os.WriteFile(CachePath(a.cacheDir, path), data, 0o644)
}

func extSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = true
	}
	return set
}
