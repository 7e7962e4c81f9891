package handlers

import (
	"propradar/internal/domain/services"
	"propradar/internal/infrastructure/store"
	"propradar/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Stats    *StatsHandler
	Scan     *ScanHandler
	Property *PropertyHandler
	Alerts   *AlertsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Store      store.Store
	Scans      *services.ScanService
	Properties *services.PropertyService
	Alerts     *services.AlertService
	Stats      *services.EngineStats
	Version    string
	Logger     *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Store, deps.Version, deps.Logger),
		Stats:    NewStatsHandler(deps.Stats, deps.Logger),
		Scan:     NewScanHandler(deps.Scans, deps.Logger),
		Property: NewPropertyHandler(deps.Properties, deps.Alerts, deps.Logger),
		Alerts:   NewAlertsHandler(deps.Alerts, deps.Logger),
	}
}
