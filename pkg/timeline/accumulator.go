package timeline

import (
	"context"

	"github.com/ilkoid/photoarch/pkg/model"
)

// Accumulator сворачивает отсортированный по времени поток записей в
// последовательность закрытых событий.
//
// Владеет списком событий и ссылкой на текущее открытое событие;
// записи после приёма разделяются read-only между событием и больше никем.
//
// Строго последовательный один проход: O(n) по записям, O(1)
// дополнительного состояния помимо растущих списков участников.
type Accumulator struct {
	detector   *Detector
	summarizer *Summarizer
}

// NewAccumulator создает аккумулятор событий.
func NewAccumulator(detector *Detector, summarizer *Summarizer) *Accumulator {
	return &Accumulator{
		detector:   detector,
		summarizer: summarizer,
	}
}

// Segment выполняет сегментацию.
//
// Контракт: records отсортированы по имени файла/времени, skip-записи
// исключены до этой стадии, у каждой записи есть таймстемп.
//
// Каждая запись попадает ровно в одно событие в исходном порядке;
// конкатенация участников всех событий восстанавливает вход. Пустой вход
// даёт пустой список без единого закрытия.
//
// Все возвращённые события закрыты (EndDate, Place, Keywords, FolderPath
// заполнены).
func (a *Accumulator) Segment(ctx context.Context, records []*model.FileRecord) []*model.Event {
	var events []*model.Event
	var current *model.Event
	var prior *model.FileRecord

	for _, rec := range records {
		if a.detector.ShouldStartNewEvent(ctx, prior, rec) {
			if current != nil {
				a.summarizer.Close(current)
			}
			current = model.NewEvent(rec.Date)
			events = append(events, current)
		}

		current.Append(rec)
		prior = rec
	}

	// Закрываем последнее открытое событие
	if current != nil {
		a.summarizer.Close(current)
	}

	return events
}
