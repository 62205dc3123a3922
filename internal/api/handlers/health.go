// health.go — обработчики health endpoints для Kubernetes probes.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bigkaa/docqa/internal/config"
)

// statusFail — строковая константа для статуса "fail" в health checks.
const statusFail = "fail"

// ReadinessChecker — проверка готовности зависимости (БД).
type ReadinessChecker interface {
	CheckReady(ctx context.Context) error
}

// HealthHandler реализует health endpoints: /health/live, /health/ready.
type HealthHandler struct {
	version string
	db      ReadinessChecker
}

// NewHealthHandler создаёт обработчик health endpoints.
// db — nil отключает проверку БД (для тестов).
func NewHealthHandler(db ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		version: config.Version,
		db:      db,
	}
}

// HealthLive обрабатывает GET /health/live.
// Возвращает 200, если процесс жив. Не проверяет зависимости.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   "docqa",
	})
}

// HealthReady обрабатывает GET /health/ready.
// Проверяет доступность PostgreSQL.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	overallStatus := "ok"
	httpStatus := http.StatusOK

	dbCheck := map[string]any{"status": "ok"}
	if h.db != nil {
		if err := h.db.CheckReady(r.Context()); err != nil {
			dbCheck = map[string]any{
				"status":  statusFail,
				"message": "PostgreSQL недоступен: " + err.Error(),
			}
			overallStatus = statusFail
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
		"service":   "docqa",
		"checks": map[string]any{
			"database": dbCheck,
		},
	})
}
