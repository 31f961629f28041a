// health.go — служебные endpoints web-клиента.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (бэкенд MyCloud доступен)
// /metrics — Prometheus метрики
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mycloud/web-client/internal/config"
)

// DependencyHealth — состояние внешних зависимостей.
// Реализуется сервисом dephealth: имя зависимости → доступность.
type DependencyHealth interface {
	Health() map[string]bool
}

// HealthHandler — обработчик служебных endpoints.
type HealthHandler struct {
	deps        DependencyHealth
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик служебных endpoints.
// deps может быть nil — readiness вернёт "fail".
func NewHealthHandler(deps DependencyHealth) *HealthHandler {
	return &HealthHandler{
		deps:        deps,
		promHandler: promhttp.Handler(),
	}
}

// healthResponse — ответ health probes.
type healthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version"`
	Service   string          `json:"service"`
	Checks    map[string]bool `json:"checks,omitempty"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "web-client",
	})
}

// HealthReady — readiness probe. Проверяет доступность бэкенда.
// 200 — все зависимости доступны, 503 — хотя бы одна недоступна.
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "web-client",
	}

	code := http.StatusOK
	if h.deps == nil {
		resp.Status = "fail"
		code = http.StatusServiceUnavailable
	} else {
		resp.Checks = h.deps.Health()
		for _, up := range resp.Checks {
			if !up {
				resp.Status = "fail"
				code = http.StatusServiceUnavailable
				break
			}
		}
	}

	writeHealth(w, code, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

func writeHealth(w http.ResponseWriter, code int, resp healthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
