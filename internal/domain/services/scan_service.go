package services

import (
	"time"

	"propradar/internal/domain/models"
	"propradar/pkg/logger"
)

// ScanService runs content scans end to end: rule evaluation, scoring,
// classification and recommendations. Scans are stateless; nothing is
// persisted here.
type ScanService struct {
	analyzer *Analyzer
	scorer   *Scorer
	stats    *EngineStats
	logger   *logger.Logger
}

// NewScanService wires the scan service.
func NewScanService(analyzer *Analyzer, scorer *Scorer, stats *EngineStats, log *logger.Logger) *ScanService {
	return &ScanService{
		analyzer: analyzer,
		scorer:   scorer,
		stats:    stats,
		logger:   log.WithComponent("scan-service"),
	}
}

// Rules exposes the active rule table for introspection.
func (s *ScanService) Rules() (string, []RuleInfo) {
	table := s.analyzer.Table()
	return table.Version, table.Info()
}

// Scan analyzes the input and returns the scored result.
func (s *ScanService) Scan(subject models.SubjectType, input models.ScanInput) *models.ScanResult {
	flags := s.analyzer.Analyze(input)
	score := s.scorer.Score(flags)
	level := s.scorer.Classify(score)

	s.stats.ScansTotal.Add(1)
	s.stats.FlagsRaised.Add(int64(len(flags)))

	s.logger.Debug().
		Str("subject_type", string(subject)).
		Int("score", score).
		Str("risk_level", string(level)).
		Int("flags", len(flags)).
		Msg("scan completed")

	if flags == nil {
		flags = []models.RiskFlag{}
	}

	return &models.ScanResult{
		SubjectType:     subject,
		Score:           score,
		RiskLevel:       level,
		Flags:           flags,
		Recommendations: s.scorer.Recommend(level, flags),
		ScannedAt:       time.Now().UTC(),
	}
}
