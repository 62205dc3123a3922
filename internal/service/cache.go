// cache.go — LRU-кэш эмбеддингов вопросов с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dq_embedding_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш эмбеддингов вопросов.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dq_embedding_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша эмбеддингов вопросов.",
	})
)

// CacheService — LRU-кэш эмбеддингов вопросов с автоматическим TTL.
// Ключ — текст вопроса как есть; повторный вопрос не тратит запрос
// к embeddings API. Кэш per-instance, между репликами не разделяется.
type CacheService struct {
	cache *expirable.LRU[string, []float32]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
// maxSize — максимальное количество записей в кэше.
// ttl — время жизни записи после добавления.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, []float32](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает вектор вопроса из кэша.
// Возвращает (вектор, true) при hit или (nil, false) при miss.
// Обновляет Prometheus-метрики hit/miss.
func (c *CacheService) Get(question string) ([]float32, bool) {
	val, ok := c.cache.Get(question)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет вектор вопроса в кэше.
func (c *CacheService) Set(question string, vector []float32) {
	c.cache.Add(question, vector)
}
