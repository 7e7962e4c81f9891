package services

import (
	"propradar/internal/config"
	"propradar/internal/domain/models"
)

// Scorer turns raised flags into scores and risk levels, and computes
// cross-listing correlation scores for properties. All weights and
// thresholds come from configuration so deployments can tune them
// without a rebuild.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer creates a scorer with the given scoring configuration.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score sums the flag weights, clamped to 100. No flags means zero.
func (s *Scorer) Score(flags []models.RiskFlag) int {
	total := 0
	for _, f := range flags {
		total += f.Weight
	}
	if total > 100 {
		total = 100
	}
	return total
}

// Classify maps a score to a risk level. Thresholds are inclusive
// lower bounds, so a score exactly at a boundary takes the higher
// level.
func (s *Scorer) Classify(score int) models.RiskLevel {
	t := s.cfg.Thresholds
	switch {
	case score >= t.Critical:
		return models.RiskLevelCritical
	case score >= t.High:
		return models.RiskLevelHigh
	case score >= t.Medium:
		return models.RiskLevelMedium
	case score >= t.Low:
		return models.RiskLevelLow
	default:
		return models.RiskLevelSafe
	}
}

// FlagThreshold is the property score at which a record transitions
// from active to flagged.
func (s *Scorer) FlagThreshold() int {
	return s.cfg.Correlation.FlagStatusThreshold
}

// ScoreProperty computes the correlation score for a property from its
// listings and scam reports. Components accumulate independently and
// the result is clamped to [0, 100]:
//
//   - accumulated flags across listings and reports, capped
//   - a large fixed bonus once any report is verified
//   - listing-count bonuses at two tiers
//   - a bonus when listings span several platforms
//   - a bonus when active listing prices diverge widely
//   - a per-report bonus, capped
func (s *Scorer) ScoreProperty(verifiedScam bool, listings []models.PropertyListing, reports []models.ScamReport) int {
	w := s.cfg.Correlation

	totalFlags := len(reports)
	for _, l := range listings {
		totalFlags += l.FlagCount
	}
	if totalFlags > w.FlagCap {
		totalFlags = w.FlagCap
	}
	score := totalFlags * w.FlagUnit

	if verifiedScam {
		score += w.VerifiedScamBonus
	}

	if len(listings) > 3 {
		score += w.ManyListingsBonus
	}
	if len(listings) > 5 {
		score += w.MoreListingsBonus
	}

	platforms := map[models.Platform]struct{}{}
	for _, l := range listings {
		platforms[l.Platform] = struct{}{}
	}
	if len(platforms) >= 3 {
		score += w.PlatformBonus
	}

	if priceSpreadPct(listings) > w.PriceVariancePct {
		score += w.PriceVarianceBonus
	}

	reportCount := len(reports)
	if reportCount > w.ReportCap {
		reportCount = w.ReportCap
	}
	score += reportCount * w.ReportUnit

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// priceSpreadPct returns the spread between the cheapest and most
// expensive active listing as a percentage of the cheapest. Fewer than
// two priced active listings yields zero.
func priceSpreadPct(listings []models.PropertyListing) float64 {
	var min, max float64
	count := 0
	for _, l := range listings {
		if !l.IsActive || l.Price <= 0 {
			continue
		}
		if count == 0 || l.Price < min {
			min = l.Price
		}
		if count == 0 || l.Price > max {
			max = l.Price
		}
		count++
	}
	if count < 2 || min == 0 {
		return 0
	}
	return (max - min) / min * 100
}

var categoryAdvice = map[models.FlagCategory]string{
	models.CategoryUrgencyLanguage:   "Be wary of pressure to act quickly; legitimate landlords allow time to decide.",
	models.CategorySuspiciousContact: "Keep all communication on the listing platform and verify contact details independently.",
	models.CategorySuspiciousClaims:  "Independently verify every claim in the listing before proceeding.",
	models.CategoryRiskyPayment:      "Never pay by wire transfer, gift card, or cryptocurrency; these payments cannot be recovered.",
	models.CategoryRemoteSeller:      "Do not deal with sellers who cannot meet or show the property in person.",
	models.CategoryAdvancePayment:    "Never send money before viewing the property and signing a lease.",
	models.CategoryPriceAnomaly:      "Compare the price against similar properties nearby; far-below-market prices are a classic lure.",
	models.CategoryImageAnomaly:      "Request additional photos or a live video tour before engaging further.",
	models.CategoryTemplateListing:   "Search for the listing text online; scammers reuse the same description across cities.",
}

// Recommend builds user-facing advice for the raised flags, one entry
// per distinct category, plus a closing line based on the overall risk
// level.
func (s *Scorer) Recommend(level models.RiskLevel, flags []models.RiskFlag) []string {
	var recs []string
	seen := map[models.FlagCategory]bool{}
	for _, f := range flags {
		if seen[f.Category] {
			continue
		}
		seen[f.Category] = true
		if advice, ok := categoryAdvice[f.Category]; ok {
			recs = append(recs, advice)
		}
	}

	switch level {
	case models.RiskLevelCritical:
		recs = append(recs, "Do not proceed with this listing; report it to the platform.")
	case models.RiskLevelHigh:
		recs = append(recs, "Strongly reconsider; verify the property and owner through public records first.")
	case models.RiskLevelMedium:
		recs = append(recs, "Proceed with caution and verify the listing before sharing personal information.")
	case models.RiskLevelLow:
		recs = append(recs, "Minor concerns detected; stay alert for additional warning signs.")
	default:
		recs = append(recs, "No significant risk indicators detected.")
	}
	return recs
}
