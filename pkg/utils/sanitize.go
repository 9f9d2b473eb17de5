// Package utils предоставляет утилиты для санитайза текстовых данных.
package utils

import (
	"strings"
)

// forbiddenFolderRunes — символы, запрещённые в именах папок.
//
// Набор покрывает ограничения NTFS/exFAT (двоеточие, слэши, кавычки,
// угловые скобки, пайп) плюс символы, ломающие shell-скрипты поверх
// архива (амперсанд, запятая, точка с запятой, типографские кавычки).
const forbiddenFolderRunes = ":/\\\"'<>&|,;„“”"

// SanitizeFolderName удаляет из строки символы, запрещённые в именах папок.
//
// Пустая строка после очистки означает «имени нет» — вызывающий код
// должен трактовать её как отсутствующее значение.
func SanitizeFolderName(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(forbiddenFolderRunes, r) {
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
