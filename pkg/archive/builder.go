// Package archive раскладывает закрытые события в папки архива:
// копирует файлы-члены и их JSON метаданные, при необходимости
// зеркалирует готовое дерево в S3.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ilkoid/photoarch/pkg/analysis"
	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/utils"
)

// metadataSubdir — подпапка события для JSON кэша анализа.
const metadataSubdir = "metadata"

// Builder копирует события из входной директории в структуру архива.
//
// DryRun печатает план раскладки в stdout и не трогает файловую систему.
type Builder struct {
	inputDir string
	cacheDir string
	dryRun   bool
}

// NewBuilder создаёт Builder. inputDir — где лежат исходные файлы,
// cacheDir — где analysis хранит JSON метаданные.
func NewBuilder(inputDir, cacheDir string, dryRun bool) *Builder {
	return &Builder{
		inputDir: inputDir,
		cacheDir: cacheDir,
		dryRun:   dryRun,
	}
}

// Build раскладывает все события. Ошибка одного события не прерывает
// остальные: архив лучше собрать частично, чем не собрать вовсе.
func (b *Builder) Build(events []*model.Event) error {
	var failed int
	for _, ev := range events {
		if err := b.buildEvent(ev); err != nil {
			utils.Error("Не удалось собрать событие", "folder", ev.FolderPath, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to build %d of %d events", failed, len(events))
	}
	return nil
}

func (b *Builder) buildEvent(ev *model.Event) error {
	if b.dryRun {
		fmt.Printf("%s  (%d files)\n", ev.FolderPath, len(ev.Members))
		for _, rec := range ev.Members {
			fmt.Printf("    %s\n", rec.Path)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Join(ev.FolderPath, metadataSubdir), 0o755); err != nil {
		return fmt.Errorf("create event dir: %w", err)
	}

	for _, rec := range ev.Members {
		src := filepath.Join(b.inputDir, rec.Path)
		dst := filepath.Join(ev.FolderPath, rec.Path)
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copy %s: %w", rec.Path, err)
		}

		// Метаданные кладём рядом, чтобы архив был самодостаточным.
		metaSrc := analysis.CachePath(b.cacheDir, rec.Path)
		metaDst := filepath.Join(ev.FolderPath, metadataSubdir, filepath.Base(metaSrc))
		if err := copyFile(metaSrc, metaDst); err != nil {
			utils.Warn("Метаданные файла не скопированы", "file", rec.Path, "error", err)
		}
	}

	utils.Info("Событие собрано", "folder", ev.FolderPath, "files", len(ev.Members))
	return nil
}

// copyFile копирует файл целиком. Существующий файл перезаписывается —
// повторный запуск поверх готового архива безопасен.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
