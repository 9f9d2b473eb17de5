package timeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/photoarch/pkg/model"
)

func located(rec *model.FileRecord, place string) *model.FileRecord {
	rec.Address = &model.Address{Name: place}
	return rec
}

func withKeywords(rec *model.FileRecord, de ...string) *model.FileRecord {
	rec.KeywordsGerman = de
	return rec
}

func buildEvent(members ...*model.FileRecord) *model.Event {
	ev := model.NewEvent(members[0].Date)
	for _, rec := range members {
		ev.Append(rec)
	}
	return ev
}

// TestCloseSetsEndDateAndPlace: EndDate — таймстемп последнего участника,
// Place — самое частое имя места.
func TestCloseSetsEndDateAndPlace(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")

	ev := buildEvent(
		located(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)), "Münsterplatz Ulm"),
		located(testRec("b.jpg", naiveAt(2023, time.July, 10, 9, 30)), "Münsterplatz Ulm"),
		located(testRec("c.jpg", naiveAt(2023, time.July, 10, 10, 0)), "Donauufer Ulm"),
	)

	s.Close(ev)

	assert.True(t, ev.Closed())
	assert.Equal(t, naiveAt(2023, time.July, 10, 10, 0), ev.EndDate)
	assert.Equal(t, "Münsterplatz Ulm", ev.Place)
}

// TestClosePlaceTieBreak: при равных частотах побеждает место,
// встреченное первым. Последний участник при этом учитывается дважды и
// может перевесить.
func TestClosePlaceTieBreak(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")

	// "A" и "B" по одному разу, но B — последний, считается дважды.
	ev := buildEvent(
		located(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)), "A"),
		located(testRec("b.jpg", naiveAt(2023, time.July, 10, 9, 30)), "B"),
	)
	s.Close(ev)
	assert.Equal(t, "B", ev.Place)

	// Настоящая ничья (2:2 после двойного учёта C... нет — A:2, C:1+1=2):
	// побеждает A, встреченный первым.
	ev = buildEvent(
		located(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)), "A"),
		located(testRec("b.jpg", naiveAt(2023, time.July, 10, 9, 10)), "A"),
		located(testRec("c.jpg", naiveAt(2023, time.July, 10, 9, 30)), "C"),
	)
	s.Close(ev)
	assert.Equal(t, "A", ev.Place)
}

// TestCloseKeywordsTopSeven: больше семи уникальных keywords — остаются
// семь самых частых, ничья решается порядком встречи.
func TestCloseKeywordsTopSeven(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")

	ev := buildEvent(
		withKeywords(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)),
			"Hund", "Strand", "Meer", "Himmel", "Wolken"),
		withKeywords(testRec("b.jpg", naiveAt(2023, time.July, 10, 9, 30)),
			"Hund", "Ball", "Sand", "Wellen", "Boot"),
	)

	s.Close(ev)

	require.Len(t, ev.Keywords, 7)
	// "Hund" чаще всех (2 + двойной учёт последнего = 3); keywords
	// закрывшей записи учтены дважды и опережают одиночные; среди
	// одиночных — порядок первой встречи.
	assert.Equal(t, []string{"Hund", "Ball", "Sand", "Wellen", "Boot", "Strand", "Meer"}, ev.Keywords)
}

// TestCloseSanitizesNames: запрещённые символы файловой системы
// вычищаются из места и keywords.
func TestCloseSanitizesNames(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")

	ev := buildEvent(
		withKeywords(
			located(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)), `Cafe "Zur Post" Ulm`),
			"Kaffee,", "Kuchen"),
	)

	s.Close(ev)

	assert.Equal(t, "Cafe Zur Post Ulm", ev.Place)
	assert.Contains(t, ev.Keywords, "Kaffee")
	assert.NotContains(t, ev.Keywords, "Kaffee,")
}

// TestCloseLanguageSelection: язык "en" переключает набор keywords.
func TestCloseLanguageSelection(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "en")

	rec := testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0))
	rec.Keywords = []string{"dog", "beach"}
	rec.KeywordsGerman = []string{"Hund", "Strand"}

	ev := buildEvent(rec)
	s.Close(ev)

	assert.Equal(t, []string{"dog", "beach"}, ev.Keywords)
}

// TestFolderPathSameDay: событие внутри одного дня — без суффикса конца.
func TestFolderPathSameDay(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")

	ev := buildEvent(
		withKeywords(
			located(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 5)), "Münsterplatz"),
			"Turm", "Kirche"),
		testRec("b.jpg", naiveAt(2023, time.July, 10, 11, 45)),
	)

	s.Close(ev)

	// Keywords в имени — в регистронезависимом алфавитном порядке.
	want := filepath.Join("/tmp/sorted", "2023", "07 Jul", "2023-07-10T0905 Münsterplatz Kirche Turm")
	assert.Equal(t, want, ev.FolderPath)
}

// TestFolderPathMultiDay: конец в другой день добавляет " - {02T1504}".
func TestFolderPathMultiDay(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")

	ev := buildEvent(
		testRec("a.jpg", naiveAt(2023, time.July, 10, 22, 0)),
		testRec("b.jpg", naiveAt(2023, time.July, 12, 1, 30)),
	)

	s.Close(ev)

	want := filepath.Join("/tmp/sorted", "2023", "07 Jul", "2023-07-10T2200 - 12T0130")
	assert.Equal(t, want, ev.FolderPath)
}

// TestFolderPathKeywordOrderCaseInsensitive: сортировка keywords в имени
// не зависит от регистра.
func TestFolderPathKeywordOrderCaseInsensitive(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")

	ev := buildEvent(
		withKeywords(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)),
			"zebra", "Apfel", "mango"),
	)

	s.Close(ev)

	assert.Equal(t,
		filepath.Join("/tmp/sorted", "2023", "07 Jul", "2023-07-10T0900 Apfel mango zebra"),
		ev.FolderPath)
}

// TestCloseTwicePanics: повторное закрытие — нарушение контракта.
func TestCloseTwicePanics(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")
	ev := buildEvent(testRec("a.jpg", naiveAt(2023, time.July, 10, 9, 0)))

	s.Close(ev)
	assert.Panics(t, func() { s.Close(ev) })
}

// TestCloseEmptyEventPanics: событие без участников закрыть нельзя.
func TestCloseEmptyEventPanics(t *testing.T) {
	s := NewSummarizer("/tmp/sorted", "de")
	ev := model.NewEvent(naiveAt(2023, time.July, 10, 9, 0))

	assert.Panics(t, func() { s.Close(ev) })
}
