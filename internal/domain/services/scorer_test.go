package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propradar/internal/config"
	"propradar/internal/domain/models"
)

func testScoringConfig() config.ScoringConfig {
	return config.ScoringConfig{
		Thresholds: config.RiskThresholds{Critical: 70, High: 50, Medium: 30, Low: 10},
		Correlation: config.CorrelationWeights{
			FlagUnit:            10,
			FlagCap:             5,
			VerifiedScamBonus:   50,
			ManyListingsBonus:   10,
			MoreListingsBonus:   10,
			PlatformBonus:       15,
			PriceVarianceBonus:  20,
			PriceVariancePct:    40.0,
			ReportUnit:          10,
			ReportCap:           3,
			FlagStatusThreshold: 50,
		},
	}
}

func newTestScorer() *Scorer {
	return NewScorer(testScoringConfig())
}

func TestScoreSumsAndClamps(t *testing.T) {
	s := newTestScorer()

	assert.Equal(t, 0, s.Score(nil))
	assert.Equal(t, 33, s.Score([]models.RiskFlag{{Weight: 25}, {Weight: 8}}))
	assert.Equal(t, 100, s.Score([]models.RiskFlag{{Weight: 60}, {Weight: 60}}))
}

func TestClassifyBoundaries(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		score int
		level models.RiskLevel
	}{
		{0, models.RiskLevelSafe},
		{9, models.RiskLevelSafe},
		{10, models.RiskLevelLow},
		{29, models.RiskLevelLow},
		{30, models.RiskLevelMedium},
		{49, models.RiskLevelMedium},
		{50, models.RiskLevelHigh},
		{69, models.RiskLevelHigh},
		{70, models.RiskLevelCritical},
		{100, models.RiskLevelCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, s.Classify(tt.score), "score %d", tt.score)
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	s := newTestScorer()

	prev := s.Classify(0)
	for score := 1; score <= 100; score++ {
		level := s.Classify(score)
		assert.True(t, level.AtLeast(prev), "level dropped at score %d", score)
		prev = level
	}
}

func listingOn(platform models.Platform, price float64, flagCount int) models.PropertyListing {
	return models.PropertyListing{
		Platform:  platform,
		Price:     price,
		IsActive:  true,
		FlagCount: flagCount,
	}
}

func TestScorePropertyEmpty(t *testing.T) {
	s := newTestScorer()
	assert.Equal(t, 0, s.ScoreProperty(false, nil, nil))
}

func TestScorePropertyFlagAccumulationCaps(t *testing.T) {
	s := newTestScorer()

	// two listings with two flags each: 4 flags x 10
	listings := []models.PropertyListing{
		listingOn(models.PlatformCraigslist, 1000, 2),
		listingOn(models.PlatformCraigslist, 1000, 2),
	}
	assert.Equal(t, 40, s.ScoreProperty(false, listings, nil))

	// ten flags saturate the cap at 5
	heavy := []models.PropertyListing{listingOn(models.PlatformCraigslist, 1000, 10)}
	assert.Equal(t, 50, s.ScoreProperty(false, heavy, nil))
}

func TestScorePropertyVerifiedScamBonus(t *testing.T) {
	s := newTestScorer()

	base := s.ScoreProperty(false, nil, nil)
	verified := s.ScoreProperty(true, nil, nil)
	assert.Equal(t, base+50, verified)
}

func TestScorePropertyCrossPlatformBonus(t *testing.T) {
	s := newTestScorer()

	// three different platforms at the same price, no flags
	listings := []models.PropertyListing{
		listingOn(models.PlatformCraigslist, 2000, 0),
		listingOn(models.PlatformZillow, 2000, 0),
		listingOn(models.PlatformFacebook, 2000, 0),
	}
	assert.Equal(t, 15, s.ScoreProperty(false, listings, nil))

	// same platform three times earns nothing
	same := []models.PropertyListing{
		listingOn(models.PlatformCraigslist, 2000, 0),
		listingOn(models.PlatformCraigslist, 2000, 0),
		listingOn(models.PlatformCraigslist, 2000, 0),
	}
	assert.Equal(t, 0, s.ScoreProperty(false, same, nil))
}

func TestScorePropertyPriceSpread(t *testing.T) {
	s := newTestScorer()

	// 150000 to 250000 is a 66% spread over the cheapest listing
	spread := []models.PropertyListing{
		listingOn(models.PlatformCraigslist, 250000, 0),
		listingOn(models.PlatformZillow, 150000, 0),
		listingOn(models.PlatformFacebook, 180000, 0),
	}
	// platform bonus 15 + price variance bonus 20
	assert.Equal(t, 35, s.ScoreProperty(false, spread, nil))

	// inactive listings are excluded from the spread
	inactive := []models.PropertyListing{
		listingOn(models.PlatformCraigslist, 250000, 0),
		{Platform: models.PlatformZillow, Price: 100000, IsActive: false},
	}
	assert.Equal(t, 0, s.ScoreProperty(false, inactive, nil))
}

func TestScorePropertyListingCountTiers(t *testing.T) {
	s := newTestScorer()

	four := make([]models.PropertyListing, 4)
	for i := range four {
		four[i] = listingOn(models.PlatformCraigslist, 2000, 0)
	}
	assert.Equal(t, 10, s.ScoreProperty(false, four, nil))

	six := make([]models.PropertyListing, 6)
	for i := range six {
		six[i] = listingOn(models.PlatformCraigslist, 2000, 0)
	}
	assert.Equal(t, 20, s.ScoreProperty(false, six, nil))
}

func TestScorePropertyReportCap(t *testing.T) {
	s := newTestScorer()

	// each report counts both as an accumulated flag and as a report,
	// with independent caps
	one := []models.ScamReport{{}}
	assert.Equal(t, 10+10, s.ScoreProperty(false, nil, one))

	five := make([]models.ScamReport, 5)
	// flags: 5 x 10 = 50, reports capped at 3 x 10 = 30
	assert.Equal(t, 80, s.ScoreProperty(false, nil, five))
}

func TestScorePropertyClampsAt100(t *testing.T) {
	s := newTestScorer()

	listings := make([]models.PropertyListing, 6)
	platforms := []models.Platform{
		models.PlatformCraigslist, models.PlatformZillow, models.PlatformFacebook,
		models.PlatformApartments, models.PlatformRealtor, models.PlatformTrulia,
	}
	for i := range listings {
		listings[i] = listingOn(platforms[i], float64(100000+i*50000), 3)
	}
	reports := make([]models.ScamReport, 4)

	score := s.ScoreProperty(true, listings, reports)
	assert.Equal(t, 100, score)
}

func TestRecommendDeduplicatesByCategory(t *testing.T) {
	s := newTestScorer()

	flags := []models.RiskFlag{
		{Category: models.CategoryRiskyPayment},
		{Category: models.CategoryRiskyPayment},
		{Category: models.CategoryRemoteSeller},
	}
	recs := s.Recommend(models.RiskLevelCritical, flags)

	// one per category plus the closing line
	require.Len(t, recs, 3)
	assert.Contains(t, recs[len(recs)-1], "Do not proceed")
}

func TestRecommendSafeResult(t *testing.T) {
	s := newTestScorer()

	recs := s.Recommend(models.RiskLevelSafe, nil)
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "No significant risk")
}

// The classifier uses one set of cut points for content scans and
// property records alike; 70/50/30/10 is the canonical scheme.
func TestDefaultThresholdsMatchCanonicalScheme(t *testing.T) {
	cfg, err := config.LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, 70, cfg.Scoring.Thresholds.Critical)
	assert.Equal(t, 50, cfg.Scoring.Thresholds.High)
	assert.Equal(t, 30, cfg.Scoring.Thresholds.Medium)
	assert.Equal(t, 10, cfg.Scoring.Thresholds.Low)
	assert.Equal(t, 50, cfg.Scoring.Correlation.FlagStatusThreshold)
}

// Cut points are configuration, not constants: a deployment can still
// run the stricter 80/60/40/20 scheme that property records once used
// instead of the canonical one.
func TestClassifyHonorsConfiguredCutPoints(t *testing.T) {
	cfg := testScoringConfig()
	cfg.Thresholds = config.RiskThresholds{Critical: 80, High: 60, Medium: 40, Low: 20}
	s := NewScorer(cfg)

	assert.Equal(t, models.RiskLevelSafe, s.Classify(19))
	assert.Equal(t, models.RiskLevelLow, s.Classify(20))
	assert.Equal(t, models.RiskLevelMedium, s.Classify(40))
	assert.Equal(t, models.RiskLevelHigh, s.Classify(60))
	assert.Equal(t, models.RiskLevelHigh, s.Classify(79))
	assert.Equal(t, models.RiskLevelCritical, s.Classify(80))

	// 70 classifies critical under the canonical scheme, high here
	assert.Equal(t, models.RiskLevelHigh, s.Classify(70))
}
