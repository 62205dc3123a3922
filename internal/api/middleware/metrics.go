// metrics.go — Prometheus HTTP метрики DocQA Module.
// Регистрирует метрики: dq_http_requests_total, dq_http_request_duration_seconds.
// Бизнес-метрики (dq_operations_total, dq_chunks_ingested_total и др.)
// обновляются из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_http_requests_total",
			Help: "Общее количество HTTP-запросов к DocQA Module",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dq_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к DocQA Module в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// OperationsTotal — общее количество доменных операций.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_operations_total",
			Help: "Общее количество доменных операций DocQA",
		},
		[]string{"operation", "result"},
	)

	// ChunksIngestedTotal — общее количество проиндексированных чанков.
	ChunksIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dq_chunks_ingested_total",
			Help: "Общее количество чанков, записанных в векторное хранилище",
		},
	)

	// GenerationAttemptsTotal — попытки генерации ответа по результату.
	GenerationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dq_generation_requests_total",
			Help: "Общее количество запросов генерации ответа",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Записывает количество запросов и длительность для каждого endpoint.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Нормализуем путь для лейблов метрик
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// normalizePath приводит путь к известному endpoint для лейблов метрик.
// Все endpoint'ы DocQA без path-параметров, поэтому достаточно белого
// списка; незнакомые пути схлопываются в /other против роста кардинальности.
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/api/v1/files/upload", "/api/v1/files/process",
		"/api/v1/files/list", "/api/v1/files", "/api/v1/qna":
		return path
	}
	return "/other"
}
