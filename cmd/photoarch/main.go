// Photoarch CLI
// Точка входа: анализ фотоархива, сегментация на события, раскладка.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/photoarch/pkg/analysis"
	"github.com/ilkoid/photoarch/pkg/archive"
	"github.com/ilkoid/photoarch/pkg/config"
	"github.com/ilkoid/photoarch/pkg/geocode"
	"github.com/ilkoid/photoarch/pkg/llm"
	"github.com/ilkoid/photoarch/pkg/llm/openai"
	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/semantic"
	"github.com/ilkoid/photoarch/pkg/timeline"
	"github.com/ilkoid/photoarch/pkg/tui"
	"github.com/ilkoid/photoarch/pkg/utils"
)

type options struct {
	configPath string
	inputDir   string
	outputDir  string
	dryRun     bool
	withTUI    bool
	upload     bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "путь к YAML конфигурации")
	flag.StringVar(&opts.inputDir, "input", "", "входная директория (перекрывает config)")
	flag.StringVar(&opts.outputDir, "output", "", "корень архива (перекрывает config)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "напечатать план раскладки, ничего не копируя")
	flag.BoolVar(&opts.withTUI, "tui", false, "показывать прогресс в TUI")
	flag.BoolVar(&opts.upload, "upload", false, "зеркалировать готовый архив в S3")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// 0. Инициализируем логгер
	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	// 1. Конфигурация
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	utils.SetDebug(cfg.App.Debug)
	if opts.inputDir != "" {
		cfg.Analysis.InputDir = opts.inputDir
	}
	if opts.outputDir != "" {
		cfg.Analysis.OutputDir = opts.outputDir
	}
	utils.Info("Запуск photoarch",
		"input", cfg.Analysis.InputDir,
		"output", cfg.Analysis.OutputDir,
		"dry_run", opts.dryRun,
	)

	// 2. Graceful shutdown: Ctrl+C прерывает анализ между файлами,
	// уже записанный кэш не пропадает.
	ctx, cancel := context.WithCancel(context.Background())
	defer utils.SetupGracefulShutdown(cancel)()
	defer cancel()

	files, err := listInputFiles(cfg.Analysis.InputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("input dir %s is empty", cfg.Analysis.InputDir)
	}

	if !opts.withTUI {
		_, err := pipeline(ctx, cfg, opts, files, nil)
		return err
	}

	// TUI режим: работа в горутине, Bubble Tea в главной.
	p, reporter := tui.NewProgram(len(files))
	return runWithProgress(p, reporter, cancel, func(r *tui.Reporter) (int, error) {
		return pipeline(ctx, cfg, opts, files, r)
	})
}

// runWithProgress запускает work в горутине и блокируется на TUI.
//
// Ошибка пайплайна возвращается вызывающему после завершения программы:
// код выхода процесса не зависит от способа отображения прогресса.
// Выход из TUI по q до конца работы отменяет контекст пайплайна через
// cancel, и run вернёт ошибку прерывания.
func runWithProgress(p *tea.Program, reporter *tui.Reporter, cancel func(), work func(*tui.Reporter) (int, error)) error {
	errc := make(chan error, 1)
	go func() {
		events, err := work(reporter)
		if err != nil {
			reporter.Fail(err)
			errc <- err
			return
		}
		reporter.Done(events)
		errc <- nil
	}()

	_, runErr := p.Run()
	cancel()
	workErr := <-errc
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return workErr
}

// pipeline выполняет полный проход: анализ → сегментация → раскладка.
// Возвращает число собранных событий.
func pipeline(ctx context.Context, cfg *config.AppConfig, opts options, files []string, reporter *tui.Reporter) (int, error) {
	captioner, translator, embedder := buildModels(cfg)

	comparer, err := buildSemantic(cfg, embedder)
	if err != nil {
		return 0, err
	}
	if comparer != nil {
		defer comparer.Close()
	}

	analyzer := analysis.New(captioner, translator, geocode.New(cfg.Geocoding), analysis.Options{
		CacheDir:            cfg.Analysis.CacheDir,
		ImageExtensions:     cfg.Analysis.ImageExtensions,
		VideoExtensions:     cfg.Analysis.VideoExtensions,
		GenericVideoKeyword: cfg.Segmentation.GenericVideoKeyword,
		MaxImageWidth:       cfg.Image.MaxWidth,
		ImageQuality:        cfg.Image.Quality,
	})

	// Фаза 1: анализ каждого файла (cache-first).
	var records []*model.FileRecord
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("interrupted: %w", err)
		}
		rec, err := analyzer.AnalyzeFile(ctx, path)
		if err != nil {
			return 0, err
		}
		if reporter != nil {
			reporter.FileDone(rec.Path, rec.Skip)
		}
		if rec.Skip {
			continue
		}
		records = append(records, rec)
	}

	// Аккумулятор требует хронологический порядок.
	sortByCaptureTime(records)

	// Фаза 2: сегментация.
	detector := timeline.NewDetector(detectorConfig(cfg.Segmentation), captionComparer(comparer), keywordMatcher(comparer))
	summarizer := timeline.NewSummarizer(cfg.Analysis.OutputDir, cfg.Segmentation.NamingLanguage)
	events := timeline.NewAccumulator(detector, summarizer).Segment(ctx, records)
	utils.Info("Сегментация завершена", "files", len(records), "events", len(events))

	// Фаза 3: раскладка архива.
	if reporter != nil {
		reporter.Phase("Раскладка")
	}
	builder := archive.NewBuilder(cfg.Analysis.InputDir, cfg.Analysis.CacheDir, opts.dryRun)
	if err := builder.Build(events); err != nil {
		return len(events), err
	}

	if opts.upload && !opts.dryRun {
		if !cfg.S3.Enabled {
			return len(events), fmt.Errorf("-upload requires s3.enabled in config")
		}
		mirror, err := archive.NewMirror(cfg.S3)
		if err != nil {
			return len(events), fmt.Errorf("s3 client: %w", err)
		}
		if reporter != nil {
			reporter.Phase("Загрузка в S3")
		}
		if err := mirror.Upload(ctx, cfg.Analysis.OutputDir); err != nil {
			return len(events), err
		}
	}

	return len(events), nil
}

// buildModels создаёт AI коллабораторов из конфигурации.
// Каждый алиас опционален: без vision модели не будет caption,
// без embedding — контент-сигнала.
func buildModels(cfg *config.AppConfig) (llm.Captioner, llm.Translator, llm.Embedder) {
	vision, hasVision := cfg.GetVisionModel("")
	chat, hasChat := cfg.GetChatModel("")
	embed, hasEmbed := cfg.GetEmbeddingModel("")
	if !hasVision && !hasChat && !hasEmbed {
		utils.Warn("AI модели не сконфигурированы, анализ ограничен EXIF и геокодингом")
		return nil, nil, nil
	}

	client := openai.NewClient(vision, chat, embed)
	var captioner llm.Captioner
	var translator llm.Translator
	var embedder llm.Embedder
	if hasVision {
		captioner = client
	}
	if hasChat {
		translator = client
	}
	if hasEmbed {
		embedder = client
	}
	return captioner, translator, embedder
}

// buildSemantic создаёт сервис сравнения caption/keywords (nil без embedder).
func buildSemantic(cfg *config.AppConfig, embedder llm.Embedder) (*semantic.Service, error) {
	if embedder == nil {
		return nil, nil
	}
	threshold := cfg.Segmentation.KeywordSimilarityThreshold
	if cfg.Analysis.EmbeddingCachePath == "" {
		return semantic.New(embedder, threshold), nil
	}
	svc, err := semantic.NewWithCache(embedder, threshold, cfg.Analysis.EmbeddingCachePath)
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	return svc, nil
}

// captionComparer/keywordMatcher конвертируют *semantic.Service в
// интерфейсы детектора. Типизированный nil в интерфейсе не считается
// nil, поэтому конверсия явная.
func captionComparer(s *semantic.Service) timeline.CaptionComparer {
	if s == nil {
		return nil
	}
	return s
}

func keywordMatcher(s *semantic.Service) timeline.KeywordMatcher {
	if s == nil {
		return nil
	}
	return s
}

func detectorConfig(s config.SegmentationConfig) timeline.Config {
	return timeline.Config{
		Policy:              timeline.Policy(s.Policy),
		MaxTimeGapHours:     s.MaxTimeGapHours,
		MaxDistanceMeters:   s.MaxDistanceMeters,
		TimeWeight:          s.TimeWeight,
		DistanceWeight:      s.DistanceWeight,
		ContentWeight:       s.ContentWeight,
		SplitThreshold:      s.SplitThreshold,
		GenericVideoKeyword: s.GenericVideoKeyword,
	}
}

// sortByCaptureTime сортирует записи по wall-clock времени съёмки.
// Сравнивать сырые инстанты нельзя: наивный таймстемп хранится как UTC,
// и наивный 12:00 оказался бы позже зонированного 11:00+02:00.
// Сортировка стабильная — при равном времени сохраняется порядок
// имён файлов из listInputFiles.
func sortByCaptureTime(records []*model.FileRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Wall().Before(records[j].Date.Wall())
	})
}

// listInputFiles возвращает отсортированный список путей файлов верхнего
// уровня входной директории. Поддиректории игнорируются.
func listInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
