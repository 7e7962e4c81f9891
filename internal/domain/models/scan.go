package models

import "time"

// RiskLevel is the discrete bucket derived from a numeric risk score.
type RiskLevel string

const (
	RiskLevelSafe     RiskLevel = "safe"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

// riskLevelOrder maps levels to their bucket rank, lowest first.
var riskLevelOrder = map[RiskLevel]int{
	RiskLevelSafe:     0,
	RiskLevelLow:      1,
	RiskLevelMedium:   2,
	RiskLevelHigh:     3,
	RiskLevelCritical: 4,
}

// AtLeast reports whether l is the same bucket as other or a higher one.
func (l RiskLevel) AtLeast(other RiskLevel) bool {
	return riskLevelOrder[l] >= riskLevelOrder[other]
}

// Severity grades a single risk flag.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// SubjectType identifies what kind of content a scan examined.
type SubjectType string

const (
	SubjectTypeListing  SubjectType = "listing"
	SubjectTypeSeller   SubjectType = "seller"
	SubjectTypeDocument SubjectType = "document"
)

// FlagCategory identifies the rule category that produced a risk flag.
// The declaration order here is also the stable emission order of the
// analyzer, so truncated "top N flags" views stay deterministic.
type FlagCategory string

const (
	CategoryUrgencyLanguage   FlagCategory = "urgency_language"
	CategorySuspiciousContact FlagCategory = "suspicious_contact"
	CategorySuspiciousClaims  FlagCategory = "suspicious_claims"
	CategoryRiskyPayment      FlagCategory = "risky_payment"
	CategoryRemoteSeller      FlagCategory = "remote_seller"
	CategoryAdvancePayment    FlagCategory = "advance_payment"
	CategoryPriceAnomaly      FlagCategory = "price_anomaly"
	CategoryImageAnomaly      FlagCategory = "image_anomaly"
	CategoryTemplateListing   FlagCategory = "template_listing"
)

// RiskFlag is a single detected indicator contributing to a scan score.
// Flags are ephemeral; they only live embedded in a ScanResult.
type RiskFlag struct {
	Category    FlagCategory `json:"category"`
	Description string       `json:"description"`
	Weight      int          `json:"weight"`
	Severity    Severity     `json:"severity"`
}

// ScanInput is the normalized input to the content analyzer. Pointer
// fields distinguish "not provided" from a zero value: a listing with
// zero images is suspicious, a seller scan without an image count is not.
type ScanInput struct {
	Text       string
	Price      *float64
	ImageCount *int
	Phone      string
	Email      string
}

// ScanResult is the immutable outcome of one analysis call. It is
// returned directly to the caller and never persisted by this engine.
type ScanResult struct {
	SubjectType     SubjectType `json:"subject_type"`
	Score           int         `json:"score"`
	RiskLevel       RiskLevel   `json:"risk_level"`
	Flags           []RiskFlag  `json:"flags"`
	Recommendations []string    `json:"recommendations"`
	ScannedAt       time.Time   `json:"scanned_at"`
}
