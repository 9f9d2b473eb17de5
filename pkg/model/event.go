package model

// Event — одна непрерывная группа файлов, логически принадлежащих одному
// «выходу» (прогулка, праздник, поездка). Материализуется в одну папку.
//
// Жизненный цикл:
//  1. Открывается пустым, когда решение о границе сигналит новое событие.
//  2. Мутируется добавлением записей (порядок вставки = порядок времени).
//  3. Закрывается ровно один раз (timeline.Summarizer.Close): выставляются
//     EndDate, Place, Keywords и FolderPath. Повторное закрытие — нарушение
//     контракта.
type Event struct {
	// StartDate — таймстемп первой записи события.
	StartDate Timestamp

	// EndDate — таймстемп последней записи. Заполняется только при
	// закрытии; до закрытия читать нельзя.
	EndDate Timestamp

	// Place — репрезентативное имя места (самый частый Address.Name
	// среди участников). Пустая строка = место не определено.
	Place string

	// Keywords — репрезентативные ключевые слова (топ-7 по частоте),
	// в порядке убывания частоты.
	Keywords []string

	// Members — записи события в порядке времени.
	Members []*FileRecord

	// FolderPath — итоговый путь папки. Заполняется при закрытии.
	FolderPath string
}

// NewEvent открывает пустое событие, начинающееся с start.
func NewEvent(start Timestamp) *Event {
	return &Event{StartDate: start}
}

// Append добавляет запись в конец события.
func (e *Event) Append(rec *FileRecord) {
	e.Members = append(e.Members, rec)
}

// Closed сообщает, было ли событие уже закрыто.
func (e *Event) Closed() bool {
	return !e.EndDate.IsZero()
}
