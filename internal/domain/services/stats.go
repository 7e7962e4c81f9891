package services

import (
	"sync/atomic"
	"time"
)

// EngineStats tracks engine activity counters. All counters are
// atomic, so handlers and services can bump them without coordination.
type EngineStats struct {
	startedAt time.Time

	ScansTotal      atomic.Int64
	FlagsRaised     atomic.Int64
	PropertyChecks  atomic.Int64
	ListingsAdded   atomic.Int64
	ReportsFiled    atomic.Int64
	ReportsVerified atomic.Int64
	AlertsCreated   atomic.Int64
	WatchesActive   atomic.Int64
}

// NewEngineStats creates a stats tracker with the uptime clock started.
func NewEngineStats() *EngineStats {
	return &EngineStats{startedAt: time.Now()}
}

// Snapshot is the JSON view of the counters.
type Snapshot struct {
	UptimeSeconds   int64 `json:"uptime_seconds"`
	ScansTotal      int64 `json:"scans_total"`
	FlagsRaised     int64 `json:"flags_raised"`
	PropertyChecks  int64 `json:"property_checks"`
	ListingsAdded   int64 `json:"listings_added"`
	ReportsFiled    int64 `json:"reports_filed"`
	ReportsVerified int64 `json:"reports_verified"`
	AlertsCreated   int64 `json:"alerts_created"`
	WatchesActive   int64 `json:"watches_active"`
}

// Snapshot returns a point-in-time copy of the counters.
func (s *EngineStats) Snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:   int64(time.Since(s.startedAt).Seconds()),
		ScansTotal:      s.ScansTotal.Load(),
		FlagsRaised:     s.FlagsRaised.Load(),
		PropertyChecks:  s.PropertyChecks.Load(),
		ListingsAdded:   s.ListingsAdded.Load(),
		ReportsFiled:    s.ReportsFiled.Load(),
		ReportsVerified: s.ReportsVerified.Load(),
		AlertsCreated:   s.AlertsCreated.Load(),
		WatchesActive:   s.WatchesActive.Load(),
	}
}
