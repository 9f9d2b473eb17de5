package analysis

import (
	"sort"
	"strings"

	"github.com/ilkoid/photoarch/pkg/utils"
)

// Stopwords — английские стоп-слова для извлечения keywords из caption.
var Stopwords = toSet([]string{
	"a", "an", "and", "the", "of", "in", "on", "with", "for", "at", "by", "from",
	"to", "up", "down", "over", "under", "again", "further", "then", "once", "here",
	"there", "when", "where", "why", "how", "all", "any", "both", "each", "few",
	"more", "most", "other", "some", "such", "no", "nor", "not", "only", "own",
	"same", "so", "than", "too", "very", "can", "will", "just", "don", "should",
	"now", "it", "is", "are", "was", "were", "be", "been", "being", "have", "has",
	"having", "do", "does", "did", "doing", "his", "her", "its", "they", "them", "this",
	"that", "hers", "ours", "yours", "their", "what", "which", "who", "whom", "whose", "my",
})

// StopwordsGerman — немецкие стоп-слова (для переведённого caption).
var StopwordsGerman = toSet([]string{
	"ein", "eine", "einer", "eines", "einem", "einen", "und", "der", "die", "das",
	"von", "in", "an", "auf", "mit", "für", "bei", "durch", "aus", "zu", "nach",
	"vor", "hinter", "über", "unter", "wieder", "weiter", "dann", "einmal", "hier",
	"dort", "da", "wann", "wo", "warum", "wie", "alle", "jeder", "jede", "jedes",
	"beide", "einige", "wenige", "mehr", "meist", "meiste", "andere", "manche",
	"solche", "kein", "keine", "nicht", "nur", "eigen", "selbst", "gleich", "so",
	"als", "auch", "sehr", "kann", "wird", "werden", "soll", "sollte", "jetzt",
	"es", "ist", "sind", "war", "waren", "sein", "gewesen", "haben", "hat", "hatte",
	"tun", "tut", "tat", "ihr", "ihre", "seine", "sie", "ihnen",
	"dies", "diese", "dieser", "dieses", "dem", "den", "des", "im", "am", "zum",
	"zur", "ins", "vom", "beim", "um", "darauf", "darin",
	"ihres", "unser", "unsere", "unserer", "unseres", "euer", "eure", "eurer", "eures",
})

// ExtractKeywords превращает caption в уникальный список keywords:
// санитайз запрещённых символов, разбиение по пробелам, фильтрация
// стоп-слов (регистронезависимо), дедупликация и регистронезависимая
// алфавитная сортировка. Сортировка фиксирует порядок keywords в кэше
// метаданных независимо от порядка слов в caption.
func ExtractKeywords(caption string, stopwords map[string]bool) []string {
	sanitized := utils.SanitizeFolderName(caption)

	var keywords []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(sanitized) {
		if stopwords[strings.ToLower(word)] {
			continue
		}
		if seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}

	sort.SliceStable(keywords, func(i, j int) bool {
		return strings.ToLower(keywords[i]) < strings.ToLower(keywords[j])
	})
	return keywords
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
