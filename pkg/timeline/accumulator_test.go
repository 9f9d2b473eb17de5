package timeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/photoarch/pkg/model"
)

func newTestAccumulator() *Accumulator {
	detector := NewDetector(DefaultConfig(), nil, nil)
	summarizer := NewSummarizer("/tmp/sorted", "de")
	return NewAccumulator(detector, summarizer)
}

// TestSegmentEmptyInput: пустой вход — пустой выход, ни одного закрытия.
func TestSegmentEmptyInput(t *testing.T) {
	acc := newTestAccumulator()
	events := acc.Segment(context.Background(), nil)
	assert.Empty(t, events)
}

// TestSegmentSingleRecord: одна запись — одно закрытое событие из неё.
func TestSegmentSingleRecord(t *testing.T) {
	acc := newTestAccumulator()
	rec := testRec("IMG_0001.jpg", naiveAt(2023, time.July, 10, 12, 0))

	events := acc.Segment(context.Background(), []*model.FileRecord{rec})

	require.Len(t, events, 1)
	assert.True(t, events[0].Closed())
	assert.Equal(t, []*model.FileRecord{rec}, events[0].Members)
	assert.Equal(t, rec.Date, events[0].StartDate)
	assert.Equal(t, rec.Date, events[0].EndDate)
}

// TestSegmentPartition: каждая запись попадает ровно в одно событие,
// конкатенация участников восстанавливает вход в исходном порядке.
func TestSegmentPartition(t *testing.T) {
	acc := newTestAccumulator()

	// Три кластера: утро 10-го, вечер 10-го (>3h далее по контенту нет),
	// и 15-е число.
	records := []*model.FileRecord{
		testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)),
		testRec("b.jpg", naiveAt(2023, time.July, 10, 9, 15)),
		testRec("c.jpg", naiveAt(2023, time.July, 10, 9, 40)),
		testRec("d.jpg", naiveAt(2023, time.August, 2, 19, 0)),
		testRec("e.jpg", naiveAt(2023, time.August, 2, 19, 5)),
		testRec("f.jpg", naiveAt(2023, time.September, 15, 11, 0)),
	}

	events := acc.Segment(context.Background(), records)

	require.Len(t, events, 3)

	var flattened []*model.FileRecord
	for _, ev := range events {
		assert.True(t, ev.Closed(), "every returned event must be closed")
		assert.NotEmpty(t, ev.FolderPath)
		flattened = append(flattened, ev.Members...)
	}
	assert.Equal(t, records, flattened)
}

// TestSegmentEventBoundaries: границы событий совпадают с решениями
// детектора (здесь — hard split по месяцу).
func TestSegmentEventBoundaries(t *testing.T) {
	acc := newTestAccumulator()

	records := []*model.FileRecord{
		testRec("a.jpg", naiveAt(2023, time.July, 31, 23, 0)),
		testRec("b.jpg", naiveAt(2023, time.August, 1, 0, 30)),
	}

	events := acc.Segment(context.Background(), records)

	require.Len(t, events, 2)
	assert.Equal(t, "a.jpg", events[0].Members[0].Path)
	assert.Equal(t, "b.jpg", events[1].Members[0].Path)
}

// TestSegmentStartDateFromFirstMember: StartDate события — таймстемп
// записи, открывшей его.
func TestSegmentStartDateFromFirstMember(t *testing.T) {
	acc := newTestAccumulator()

	first := testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0))
	second := testRec("b.jpg", naiveAt(2023, time.July, 10, 10, 30))

	events := acc.Segment(context.Background(), []*model.FileRecord{first, second})

	require.Len(t, events, 1)
	assert.Equal(t, first.Date, events[0].StartDate)
	assert.Equal(t, second.Date, events[0].EndDate)
}
