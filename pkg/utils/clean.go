// Package utils предоставляет вспомогательные функции для обработки данных.
//
// Включает утилиты для очистки ответов LLM от markdown-обёртки и
// лишнего форматирования.
package utils

import (
	"strings"
)

// CleanCaption приводит ответ vision модели к чистому однострочному caption.
//
// LLM часто оборачивает ответ в кавычки, markdown или добавляет префикс:
//
//	"a man standing on a beach"       → a man standing on a beach
//	Caption: a man standing on a beach → a man standing on a beach
//	```
//	a man standing on a beach
//	```
//
// Перевод строки внутри ответа заменяется пробелом — caption по контракту
// одна строка.
func CleanCaption(s string) string {
	s = strings.TrimSpace(s)

	// Удаляем markdown code fence
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	// Удаляем префиксы которые модели добавляют несмотря на промпт
	for _, prefix := range []string{"Caption:", "caption:", "Описание:"} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}

	// Обрамляющие кавычки
	s = strings.Trim(s, "\"'„“”")

	// Схлопываем многострочный ответ в одну строку
	s = strings.Join(strings.Fields(s), " ")

	// Финальная точка в caption мешает извлечению keywords
	s = strings.TrimSuffix(s, ".")

	return strings.TrimSpace(s)
}
