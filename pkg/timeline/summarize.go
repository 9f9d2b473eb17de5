package timeline

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/utils"
)

// maxEventKeywords — сколько репрезентативных keywords получает событие.
const maxEventKeywords = 7

// monthNames — фиксированные имена папок месяцев.
// Префикс с номером даёт правильную сортировку в файловом менеджере.
var monthNames = [12]string{
	"01 Jan", "02 Feb", "03 Mar", "04 Apr", "05 May", "06 Jun",
	"07 Jul", "08 Aug", "09 Sep", "10 Oct", "11 Nov", "12 Dec",
}

// Summarizer закрывает события: агрегирует место и keywords участников
// и выводит стабильное имя папки.
type Summarizer struct {
	outputRoot string
	language   string // "de" или "en": какой набор keywords идёт в имя
}

// NewSummarizer создает Summarizer.
func NewSummarizer(outputRoot, language string) *Summarizer {
	return &Summarizer{
		outputRoot: outputRoot,
		language:   language,
	}
}

// Close закрывает событие: выставляет EndDate, Place, Keywords и FolderPath.
//
// Вызывается ровно один раз на событие — в момент, когда оно перестаёт
// принимать записи. Повторное закрытие — нарушение контракта: паникуем.
//
// Агрегация:
//   - Place: самое частое Address.Name среди участников; ничья решается
//     порядком первой встречи. Запись, закрывшая событие (последний
//     участник), учитывается дважды.
//   - Keywords: топ-7 по частоте среди языковых keywords участников,
//     ничья — порядок встречи; пустые строки не участвуют.
//
// Место и keywords санитайзятся для имени папки; опустевшие после
// санитайза значения считаются отсутствующими.
func (s *Summarizer) Close(event *model.Event) *model.Event {
	if event.Closed() {
		panic("timeline: event closed twice (folder " + event.FolderPath + ")")
	}
	if len(event.Members) == 0 {
		panic("timeline: cannot close event without members")
	}

	last := event.Members[len(event.Members)-1]
	event.EndDate = last.Date

	// Репрезентативное место
	places := newOrderedCounter()
	for _, rec := range event.Members {
		if name := rec.AddressName(); name != "" {
			places.Add(name)
		}
	}
	if name := last.AddressName(); name != "" {
		places.Add(name)
	}
	if top := places.Top(1); len(top) > 0 {
		event.Place = utils.SanitizeFolderName(top[0])
	}

	// Репрезентативные keywords
	keywords := newOrderedCounter()
	countKeywords := func(rec *model.FileRecord) {
		for _, k := range s.keywordsOf(rec) {
			if k != "" {
				keywords.Add(k)
			}
		}
	}
	for _, rec := range event.Members {
		countKeywords(rec)
	}
	countKeywords(last)

	event.Keywords = event.Keywords[:0]
	for _, k := range keywords.Top(maxEventKeywords) {
		if clean := utils.SanitizeFolderName(k); clean != "" {
			event.Keywords = append(event.Keywords, clean)
		}
	}

	event.FolderPath = s.buildFolderPath(event)

	utils.Debug("event closed",
		"folder", filepath.Base(event.FolderPath),
		"members", len(event.Members),
		"place", event.Place)

	return event
}

// keywordsOf возвращает языковой набор keywords записи.
func (s *Summarizer) keywordsOf(rec *model.FileRecord) []string {
	if s.language == "en" {
		return rec.Keywords
	}
	return rec.KeywordsGerman
}

// buildFolderPath выводит путь папки события:
//
//	{outputRoot}/{год}/{NN Mon}/{имя}
//
// Имя: "{start:2006-01-02T1504}", плюс " - {end:02T1504}" если конец
// в другой календарный день, плюс " {place}" и keywords в регистронезави-
// симом алфавитном порядке.
func (s *Summarizer) buildFolderPath(event *model.Event) string {
	start, end := event.StartDate.Time, event.EndDate.Time

	name := start.Format("2006-01-02T1504")

	sameDay := start.Year() == end.Year() && start.Month() == end.Month() && start.Day() == end.Day()
	if !sameDay {
		name += " - " + end.Format("02T1504")
	}

	if event.Place != "" {
		name += " " + event.Place
	}

	if len(event.Keywords) > 0 {
		sorted := make([]string, len(event.Keywords))
		copy(sorted, event.Keywords)
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
		})
		name += " " + strings.Join(sorted, " ")
	}

	return filepath.Join(
		s.outputRoot,
		strconv.Itoa(start.Year()),
		monthNames[int(start.Month())-1],
		name,
	)
}

// orderedCounter — счётчик строк, помнящий порядок первой встречи.
// Нужен для детерминированного tie-break при равных частотах.
type orderedCounter struct {
	counts map[string]int
	order  []string
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

// Add учитывает одно вхождение ключа.
func (c *orderedCounter) Add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Top возвращает до n ключей по убыванию частоты; при равенстве частот
// раньше идёт ключ, встреченный первым.
func (c *orderedCounter) Top(n int) []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)

	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})

	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
