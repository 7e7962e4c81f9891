package handlers

import (
	"context"
	"net/http"
	"time"

	"propradar/internal/infrastructure/store"
	"propradar/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	store     store.Store
	version   string
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(st store.Store, version string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:     st,
		version:   version,
		logger:    log.WithComponent("health"),
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health returns liveness plus a store connectivity check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := "healthy"

	if err := h.store.Ping(ctx); err != nil {
		checks[h.store.Name()] = "unhealthy: " + err.Error()
		status = "degraded"
	} else {
		checks[h.store.Name()] = "healthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	respondJSON(w, code, HealthResponse{
		Status:    status,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Ready reports whether the service can accept traffic.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store_unavailable", "store is not reachable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
