// Package llm определяет интерфейсы AI-провайдеров photoarch.
//
// Сегментации и анализатору не важно, какая модель стоит за caption,
// переводом или эмбеддингами — они работают только через эти интерфейсы,
// что позволяет мокать провайдеры в тестах.
package llm

import "context"

// Captioner генерирует однострочное описание изображения.
type Captioner interface {
	// CaptionImage принимает JPEG байты (уже уменьшенные до разумной
	// ширины) и возвращает английский caption.
	CaptionImage(ctx context.Context, jpegData []byte) (string, error)
}

// Translator переводит текст между языками.
type Translator interface {
	// Translate переводит text с языка source на язык target
	// (ISO 639-1 коды, например "en" → "de").
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Embedder вычисляет векторное представление текста.
//
// Используется контент-сигналом сегментации: косинусная близость
// эмбеддингов двух caption определяет их семантическую разницу.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
