// Package semantic сравнивает тексты по смыслу через sentence embeddings.
//
// Контент-сигнал сегментации («насколько отличаются captions двух фото»)
// и проверка похожести наборов keywords построены на косинусной близости
// эмбеддингов. Эмбеддинги дорогие (сетевой вызов), поэтому сервис
// кэширует их двумя слоями: in-memory map на время процесса и опциональная
// sqlite база между запусками.
//
// В оригинальной архитектуре модель жила в process-wide синглтоне; здесь
// Service — явно сконструированный компонент, который внедряется туда,
// где нужен.
package semantic

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ilkoid/photoarch/pkg/llm"
	"github.com/ilkoid/photoarch/pkg/utils"
)

// Service — сервис семантического сравнения текстов.
//
// Потокобезопасен; рассчитан на один проход сегментации на процесс, но
// мьютекс делает совместное использование безопасным.
type Service struct {
	embedder  llm.Embedder
	threshold float64

	mu   sync.Mutex
	memo map[string][]float32
	db   *sql.DB
}

// New создает сервис без персистентного кэша.
//
// threshold — порог косинусной близости для проверок «слова похожи»
// (HasSimilarKeyword); на взвешенный контент-сигнал он не влияет.
func New(embedder llm.Embedder, threshold float64) *Service {
	return &Service{
		embedder:  embedder,
		threshold: threshold,
		memo:      make(map[string][]float32),
	}
}

// NewWithCache создает сервис с sqlite кэшем эмбеддингов.
//
// База создаётся при первом запуске. Кэш переживает перезапуски: повторная
// архивация того же каталога не ходит в embeddings API вообще.
func NewWithCache(embedder llm.Embedder, threshold float64, dbPath string) (*Service, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		text   TEXT PRIMARY KEY,
		vector BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init embedding cache schema: %w", err)
	}

	s := New(embedder, threshold)
	s.db = db
	return s, nil
}

// Close закрывает sqlite базу (no-op без персистентного кэша).
func (s *Service) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Embedding возвращает эмбеддинг текста, используя кэш.
//
// Текст нормализуется к нижнему регистру: "Snow" и "snow" — один вектор.
func (s *Service) Embedding(ctx context.Context, text string) ([]float32, error) {
	key := strings.ToLower(strings.TrimSpace(text))

	s.mu.Lock()
	if vec, ok := s.memo[key]; ok {
		s.mu.Unlock()
		return vec, nil
	}
	s.mu.Unlock()

	// Второй слой: sqlite
	if vec, ok := s.loadCached(key); ok {
		s.mu.Lock()
		s.memo[key] = vec
		s.mu.Unlock()
		return vec, nil
	}

	vec, err := s.embedder.Embed(ctx, key)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.memo[key] = vec
	s.mu.Unlock()
	s.storeCached(key, vec)

	return vec, nil
}

// CaptionDifference возвращает семантическую разницу двух caption в [0,1].
//
// 0.0 — идентичные или пустые (нет информации — нет разницы),
// 1.0 — максимально разные. Косинусная близость [-1,1] отображается в
// разницу: diff = 1 - (1+sim)/2.
func (s *Service) CaptionDifference(ctx context.Context, caption1, caption2 string) (float64, error) {
	if caption1 == "" || caption2 == "" {
		return 0, nil
	}
	if strings.EqualFold(caption1, caption2) {
		return 0, nil
	}

	emb1, err := s.Embedding(ctx, caption1)
	if err != nil {
		return 0, err
	}
	emb2, err := s.Embedding(ctx, caption2)
	if err != nil {
		return 0, err
	}

	similarity := CosineSimilarity(emb1, emb2)
	return 1.0 - (1.0+similarity)/2.0, nil
}

// WordSimilarity возвращает косинусную близость эмбеддингов двух слов.
func (s *Service) WordSimilarity(ctx context.Context, word1, word2 string) (float64, error) {
	if strings.EqualFold(word1, word2) {
		return 1.0, nil
	}

	emb1, err := s.Embedding(ctx, word1)
	if err != nil {
		return 0, err
	}
	emb2, err := s.Embedding(ctx, word2)
	if err != nil {
		return 0, err
	}

	return CosineSimilarity(emb1, emb2), nil
}

// HasSimilarKeyword проверяет, есть ли в двух наборах keywords хотя бы
// одна семантически похожая пара ("snowy" ~ "snow").
//
// Проверка симметричная: порядок аргументов не важен.
func (s *Service) HasSimilarKeyword(ctx context.Context, keywords1, keywords2 []string) (bool, error) {
	for _, k1 := range keywords1 {
		for _, k2 := range keywords2 {
			sim, err := s.WordSimilarity(ctx, k1, k2)
			if err != nil {
				return false, err
			}
			if sim >= s.threshold {
				return true, nil
			}
		}
	}
	return false, nil
}

// KeywordsAreDifferent — инверсия HasSimilarKeyword для читаемости
// вызывающего кода. Пустой набор с любой стороны похожим не считается.
func (s *Service) KeywordsAreDifferent(ctx context.Context, keywords1, keywords2 []string) (bool, error) {
	if len(keywords1) == 0 || len(keywords2) == 0 {
		return true, nil
	}
	similar, err := s.HasSimilarKeyword(ctx, keywords1, keywords2)
	if err != nil {
		return false, err
	}
	return !similar, nil
}

// CosineSimilarity возвращает косинусную близость двух векторов в [-1,1].
//
// Для нулевого вектора (или разной размерности) возвращает 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// loadCached читает вектор из sqlite. Ошибки кэша не фатальны.
func (s *Service) loadCached(key string) ([]float32, bool) {
	if s.db == nil {
		return nil, false
	}

	var blob []byte
	err := s.db.QueryRow("SELECT vector FROM embeddings WHERE text = ?", key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		utils.Warn("Embedding cache read failed", "error", err)
		return nil, false
	}

	vec, err := decodeVector(blob)
	if err != nil {
		utils.Warn("Embedding cache entry corrupted", "text", key, "error", err)
		return nil, false
	}
	return vec, true
}

// storeCached пишет вектор в sqlite. Ошибки кэша не фатальны.
func (s *Service) storeCached(key string, vec []float32) {
	if s.db == nil {
		return
	}
	if _, err := s.db.Exec(
		"INSERT OR REPLACE INTO embeddings (text, vector) VALUES (?, ?)",
		key, encodeVector(vec),
	); err != nil {
		utils.Warn("Embedding cache write failed", "error", err)
	}
}

// encodeVector кодирует вектор в little-endian float32 байты.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeVector — обратная операция к encodeVector.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec, nil
}
