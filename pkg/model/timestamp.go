// Package model содержит канонические структуры данных photoarch:
// результат анализа файла (FileRecord), адрес обратного геокодинга (Address)
// и агрегат события (Event).
//
// JSON-формат FileRecord — контракт обмена с кэшем метаданных: имена полей
// и кодировки зафиксированы, менять их нельзя без bump schemaVersion.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp — момент времени с явным признаком наличия таймзоны.
//
// EXIF даты часто приходят без смещения («наивные»), mtime файла — всегда
// с локальной зоной. Для сравнения пар таймстемпов в сегментации нужно
// знать, у кого зона настоящая: наивный таймстемп перед вычислением
// разницы пере-интерпретируется в зоне соседа (см. timeline.normalizeClocks).
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

// Форматы ISO-8601, встречающиеся в кэше метаданных.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// NewTimestamp создаёт таймстемп с таймзоной.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t, Zoned: true}
}

// NewNaiveTimestamp создаёт «наивный» таймстемп (без таймзоны).
// Wall-clock значение хранится в UTC.
func NewNaiveTimestamp(t time.Time) Timestamp {
	return Timestamp{
		Time:  time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
		Zoned: false,
	}
}

// IsZero сообщает, что таймстемп не установлен.
func (ts Timestamp) IsZero() bool {
	return ts.Time.IsZero()
}

// Rebase пере-интерпретирует wall-clock наивного таймстемпа в локации loc.
//
// Для зонированного таймстемпа возвращает его без изменений — настоящую
// зону терять нельзя.
func (ts Timestamp) Rebase(loc *time.Location) Timestamp {
	if ts.Zoned {
		return ts
	}
	t := ts.Time
	return Timestamp{
		Time:  time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc),
		Zoned: true,
	}
}

// Wall возвращает wall-clock значение таймстемпа, приведённое к UTC.
//
// Для упорядочивания записей по локальному времени съёмки: сравнение
// сырых инстантов ставит наивный 12:00 (хранится как UTC) после
// зонированного 11:00+02:00, хотя по настенным часам он раньше.
func (ts Timestamp) Wall() time.Time {
	if !ts.Zoned {
		return ts.Time
	}
	t := ts.Time
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// MarshalJSON кодирует таймстемп в ISO-8601.
// Наивный таймстемп кодируется без смещения — как datetime.isoformat().
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	layout := "2006-01-02T15:04:05.999999999"
	if ts.Zoned {
		layout = "2006-01-02T15:04:05.999999999Z07:00"
	}
	return []byte(`"` + ts.Time.Format(layout) + `"`), nil
}

// UnmarshalJSON декодирует ISO-8601 строку, определяя наличие зоны по
// суффиксу смещения.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*ts = Timestamp{}
		return nil
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		*ts = Timestamp{
			Time:  t,
			Zoned: strings.ContainsAny(layout, "Z"),
		}
		return nil
	}

	return fmt.Errorf("timestamp %q is not ISO-8601", s)
}
