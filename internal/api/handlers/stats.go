package handlers

import (
	"net/http"

	"propradar/internal/domain/services"
	"propradar/pkg/logger"
)

// StatsHandler handles engine statistics endpoints
type StatsHandler struct {
	stats  *services.EngineStats
	logger *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(stats *services.EngineStats, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: log.WithComponent("stats"),
	}
}

// Stats returns the engine activity counters.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.Snapshot())
}
