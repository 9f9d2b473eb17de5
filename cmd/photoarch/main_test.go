package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/tui"
)

// headlessProgram — TUI программа без терминала для тестов.
func headlessProgram(t *testing.T, total int) (*tea.Program, *tui.Reporter) {
	t.Helper()
	return tui.NewProgram(total,
		tea.WithInput(strings.NewReader("")),
		tea.WithoutRenderer(),
	)
}

// TestRunWithProgressReturnsPipelineError: ошибка рабочей горутины
// должна дойти до вызывающего — иначе процесс завершится с кодом 0
// при проваленном прогоне.
func TestRunWithProgressReturnsPipelineError(t *testing.T) {
	p, reporter := headlessProgram(t, 1)
	boom := errors.New("analysis failed")

	err := runWithProgress(p, reporter, func() {}, func(r *tui.Reporter) (int, error) {
		return 0, boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("expected pipeline error to propagate, got %v", err)
	}
}

// TestRunWithProgressSuccess: успешный прогон возвращает nil.
func TestRunWithProgressSuccess(t *testing.T) {
	p, reporter := headlessProgram(t, 2)

	err := runWithProgress(p, reporter, func() {}, func(r *tui.Reporter) (int, error) {
		r.FileDone("a.jpg", false)
		r.FileDone("b.jpg", true)
		return 1, nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestSortByCaptureTime: записи упорядочиваются по wall-clock времени.
// Наивный таймстемп хранится как UTC, и сравнение сырых инстантов
// поставило бы наивный 12:00 после зонированного 11:00+02:00.
func TestSortByCaptureTime(t *testing.T) {
	cest := time.FixedZone("CEST", 2*60*60)
	zoned := &model.FileRecord{
		Path: "zoned.jpg",
		Date: model.NewTimestamp(time.Date(2023, time.July, 10, 11, 0, 0, 0, cest)),
	}
	naive := &model.FileRecord{
		Path: "naive.jpg",
		Date: model.NewNaiveTimestamp(time.Date(2023, time.July, 10, 12, 0, 0, 0, time.UTC)),
	}

	records := []*model.FileRecord{naive, zoned}
	sortByCaptureTime(records)

	if records[0].Path != "zoned.jpg" || records[1].Path != "naive.jpg" {
		t.Errorf("expected wall-clock order [zoned.jpg naive.jpg], got [%s %s]",
			records[0].Path, records[1].Path)
	}
}

// TestSortByCaptureTimeStable: при равном времени сохраняется исходный
// (файловый) порядок.
func TestSortByCaptureTimeStable(t *testing.T) {
	at := time.Date(2023, time.July, 10, 9, 0, 0, 0, time.UTC)
	a := &model.FileRecord{Path: "a.jpg", Date: model.NewNaiveTimestamp(at)}
	b := &model.FileRecord{Path: "b.jpg", Date: model.NewNaiveTimestamp(at)}

	records := []*model.FileRecord{a, b}
	sortByCaptureTime(records)

	if records[0].Path != "a.jpg" || records[1].Path != "b.jpg" {
		t.Errorf("expected stable order [a.jpg b.jpg], got [%s %s]",
			records[0].Path, records[1].Path)
	}
}
