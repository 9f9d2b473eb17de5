// Package timeline — ядро photoarch: сегментация потока записей анализа
// на события.
//
// Событие — непрерывный отрезок отсортированных по времени записей,
// принадлежащих одному «выходу». Пакет состоит из трёх частей:
//
//   - Detector — решение о границе: начинается ли с данной записи новое
//     событие (чистая функция двух записей и порогов конфигурации);
//   - Accumulator — однопроходная свёртка потока записей в события;
//   - Summarizer — закрытие события: репрезентативное место, keywords
//     и стабильное имя папки.
//
// Ядро не делает I/O. Единственное исключение — контент-сигнал, который
// ходит к внедрённому CaptionComparer за разницей caption-ов; любая его
// ошибка деградирует в «нет информации», сегментация не прерывается.
package timeline

import (
	"context"
	"time"

	"github.com/ilkoid/photoarch/pkg/geocode"
	"github.com/ilkoid/photoarch/pkg/model"
	"github.com/ilkoid/photoarch/pkg/utils"
)

// Policy выбирает алгоритм решения о границе.
type Policy string

const (
	// PolicyWeighted — канонический взвешенный скоринг: три нормированных
	// сигнала (время, расстояние, контент) с весами против порога.
	PolicyWeighted Policy = "weighted"

	// PolicyBoolean — legacy правило «минимум 2 из 3 точных критериев».
	// Оставлено для воспроизведения старых архивов.
	PolicyBoolean Policy = "boolean"
)

// Config — пороги и веса решения о границе.
//
// Все пороги должны быть положительными (валидируется в pkg/config):
// нулевой порог делает любой разрыв максимальным и сегментация молча
// рассыпается на события по одному файлу.
type Config struct {
	Policy Policy

	MaxTimeGapHours   float64 // T_max: максимальный разрыв внутри события
	MaxDistanceMeters float64 // D_max: максимальное расстояние внутри события

	TimeWeight     float64
	DistanceWeight float64
	ContentWeight  float64
	SplitThreshold float64

	// GenericVideoKeyword — маркер «видео без осмысленного анализа».
	// Если набор keywords записи состоит ровно из этого маркера,
	// контент-сигнал принудительно 0: иначе каждое видео резало бы
	// таймлайн.
	GenericVideoKeyword string
}

// DefaultConfig возвращает откалиброванную конфигурацию.
//
// Веса подобраны так, что любые два «максимальных» сигнала из трёх дают
// новое событие (0.4+0.4 или 0.4+0.3 >= 0.6), а один — никогда.
func DefaultConfig() Config {
	return Config{
		Policy:              PolicyWeighted,
		MaxTimeGapHours:     3,
		MaxDistanceMeters:   1000,
		TimeWeight:          0.4,
		DistanceWeight:      0.4,
		ContentWeight:       0.3,
		SplitThreshold:      0.6,
		GenericVideoKeyword: "Video",
	}
}

// CaptionComparer — коллаборатор контент-сигнала.
// Реализуется semantic.Service.
type CaptionComparer interface {
	// CaptionDifference возвращает семантическую разницу двух caption
	// в [0,1]: 0 — одинаковые/пустые, 1 — максимально разные.
	CaptionDifference(ctx context.Context, caption1, caption2 string) (float64, error)
}

// KeywordMatcher — опциональный коллаборатор boolean политики:
// семантическая проверка «наборы keywords различны».
// Реализуется semantic.Service.
type KeywordMatcher interface {
	KeywordsAreDifferent(ctx context.Context, keywords1, keywords2 []string) (bool, error)
}

// DistanceFunc вычисляет расстояние между координатами в метрах.
type DistanceFunc func(lat1, lon1, lat2, lon2 float64) float64

// Detector принимает решения о границах событий.
//
// Детерминирован при одинаковых входах и ответах модели; побочных
// эффектов не имеет.
type Detector struct {
	cfg      Config
	comparer CaptionComparer
	matcher  KeywordMatcher

	// Distance — коллаборатор географического расстояния.
	// По умолчанию geocode.DistanceMeters; тесты могут подменить.
	Distance DistanceFunc
}

// NewDetector создает детектор границ.
//
// comparer и matcher могут быть nil: соответствующие сигналы деградируют
// в «нет информации» (взвешенная политика) или в точное сравнение
// множеств (boolean политика).
func NewDetector(cfg Config, comparer CaptionComparer, matcher KeywordMatcher) *Detector {
	return &Detector{
		cfg:      cfg,
		comparer: comparer,
		matcher:  matcher,
		Distance: geocode.DistanceMeters,
	}
}

// ShouldStartNewEvent решает, начинается ли с candidate новое событие.
//
// Правила:
//  1. Нет предыдущей записи → всегда новое событие.
//  2. Hard split: смена месяца или года → новое событие безусловно,
//     взвешенный скоринг не вычисляется.
//  3. Soft split: по выбранной политике (взвешенный скоринг или 2-из-3).
//
// Прекондиция: обе записи имеют таймстемп. Запись без времени в
// сегментации — нарушение контракта анализатора, не восстановимая
// ситуация: паникуем.
func (d *Detector) ShouldStartNewEvent(ctx context.Context, previous, candidate *model.FileRecord) bool {
	if previous == nil {
		return true
	}

	if previous.Date.IsZero() {
		panic("timeline: previous record " + previous.Path + " has no timestamp")
	}
	if candidate.Date.IsZero() {
		panic("timeline: candidate record " + candidate.Path + " has no timestamp")
	}

	// Hard split: календарная граница месяца
	prevT, candT := previous.Date.Time, candidate.Date.Time
	if prevT.Year() != candT.Year() || prevT.Month() != candT.Month() {
		utils.Debug("boundary: month/year change",
			"previous", previous.Path, "candidate", candidate.Path)
		return true
	}

	if d.cfg.Policy == PolicyBoolean {
		return d.booleanDecision(ctx, previous, candidate)
	}
	return d.weightedDecision(ctx, previous, candidate)
}

// weightedDecision — взвешенный скоринг трёх сигналов против порога.
func (d *Detector) weightedDecision(ctx context.Context, previous, candidate *model.FileRecord) bool {
	timeSignal := clamp01(d.timeGapHours(previous, candidate)/d.cfg.MaxTimeGapHours) * d.cfg.TimeWeight

	locationSignal := 0.0
	if previous.HasLocation() && candidate.HasLocation() {
		meters := d.Distance(*previous.Lat, *previous.Lon, *candidate.Lat, *candidate.Lon)
		locationSignal = clamp01(meters/d.cfg.MaxDistanceMeters) * d.cfg.DistanceWeight
	}

	contentSignal := d.contentSignal(ctx, previous, candidate) * d.cfg.ContentWeight

	score := timeSignal + locationSignal + contentSignal
	split := score >= d.cfg.SplitThreshold

	utils.Debug("boundary: weighted decision",
		"previous", previous.Path,
		"candidate", candidate.Path,
		"time_signal", timeSignal,
		"location_signal", locationSignal,
		"content_signal", contentSignal,
		"score", score,
		"split", split)

	return split
}

// contentSignal возвращает нормированную [0,1] семантическую разницу caption.
//
// Деградации в 0 («нет информации»):
//   - любая запись помечена generic-video маркером;
//   - comparer не внедрён;
//   - comparer вернул ошибку (модель недоступна) — сегментация важнее
//     контент-сигнала.
func (d *Detector) contentSignal(ctx context.Context, previous, candidate *model.FileRecord) float64 {
	if d.isGenericVideo(previous) || d.isGenericVideo(candidate) {
		return 0
	}
	if d.comparer == nil {
		return 0
	}

	diff, err := d.comparer.CaptionDifference(ctx, previous.Caption, candidate.Caption)
	if err != nil {
		utils.Warn("Caption comparison unavailable, content signal degrades to 0",
			"previous", previous.Path, "candidate", candidate.Path, "error", err)
		return 0
	}
	return diff
}

// booleanDecision — legacy правило: новое событие, если различаются
// минимум два из трёх точных критериев.
func (d *Detector) booleanDecision(ctx context.Context, previous, candidate *model.FileRecord) bool {
	timeChanged := d.timeGapHours(previous, candidate) > d.cfg.MaxTimeGapHours

	locationChanged := false
	if previous.HasLocation() && candidate.HasLocation() {
		meters := d.Distance(*previous.Lat, *previous.Lon, *candidate.Lat, *candidate.Lon)
		locationChanged = meters > d.cfg.MaxDistanceMeters
	}

	keywordsChanged := false
	if !d.isGenericVideo(previous) && !d.isGenericVideo(candidate) {
		if d.matcher != nil {
			different, err := d.matcher.KeywordsAreDifferent(ctx, previous.Keywords, candidate.Keywords)
			if err != nil {
				utils.Warn("Keyword matcher unavailable, falling back to exact comparison", "error", err)
				keywordsChanged = disjointKeywords(previous.Keywords, candidate.Keywords)
			} else {
				keywordsChanged = different
			}
		} else {
			keywordsChanged = disjointKeywords(previous.Keywords, candidate.Keywords)
		}
	}

	changed := 0
	for _, c := range []bool{timeChanged, locationChanged, keywordsChanged} {
		if c {
			changed++
		}
	}

	utils.Debug("boundary: boolean decision",
		"previous", previous.Path,
		"candidate", candidate.Path,
		"time_changed", timeChanged,
		"location_changed", locationChanged,
		"keywords_changed", keywordsChanged,
		"split", changed >= 2)

	return changed >= 2
}

// timeGapHours — абсолютная разница таймстемпов в часах после
// нормализации таймзон.
func (d *Detector) timeGapHours(previous, candidate *model.FileRecord) float64 {
	prevT, candT := normalizeClocks(previous.Date, candidate.Date)
	gap := candT.Sub(prevT)
	if gap < 0 {
		gap = -gap
	}
	return gap.Hours()
}

// normalizeClocks приводит пару таймстемпов к сравнимому виду.
//
// Если ровно у одного есть таймзона, наивный пере-интерпретируется в зоне
// соседа (wall clock сохраняется). Сравнивать наивный и зонированный
// напрямую нельзя: мнимый сдвиг на смещение зоны резал бы события на
// каждой съёмке телефоном и камерой вперемешку.
func normalizeClocks(a, b model.Timestamp) (time.Time, time.Time) {
	switch {
	case a.Zoned && !b.Zoned:
		b = b.Rebase(a.Time.Location())
	case b.Zoned && !a.Zoned:
		a = a.Rebase(b.Time.Location())
	}
	return a.Time, b.Time
}

// isGenericVideo — набор keywords записи состоит ровно из generic-video
// маркера.
func (d *Detector) isGenericVideo(rec *model.FileRecord) bool {
	return len(rec.Keywords) == 1 && rec.Keywords[0] == d.cfg.GenericVideoKeyword
}

// disjointKeywords — точная проверка «наборы не пересекаются».
func disjointKeywords(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := set[k]; ok {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
