package services

import (
	"regexp"

	"propradar/internal/domain/models"
)

// RuleTableVersion changes whenever the default rule set is edited so
// that stored scan results can be traced back to the rules that
// produced them.
const RuleTableVersion = "2026.08.1"

// Rule is a single detection rule. A rule either matches keywords and
// regexps against listing text (PerMatchWeight accumulates up to Cap)
// or fires once with FixedWeight when any pattern hits.
type Rule struct {
	Category    models.FlagCategory
	Description string
	Severity    models.Severity

	// Keywords are matched case-insensitively as substrings.
	Keywords []string
	// Regexps are matched against the raw lowercased text.
	Regexps []*regexp.Regexp

	// PerMatchWeight scores each distinct pattern hit, capped at Cap.
	// When FixedWeight is set the rule scores once regardless of how
	// many patterns hit.
	PerMatchWeight int
	Cap            int
	FixedWeight    int
}

// RuleTable is an ordered set of text rules plus the structural
// thresholds applied to price, images and contact details. Order is
// stable so repeated scans of the same input produce identical flag
// sequences.
type RuleTable struct {
	Version string
	Rules   []Rule

	// Structural thresholds.
	LowPriceHigh    float64 // below this, high severity price anomaly
	LowPriceMedium  float64 // below this, medium severity price anomaly
	MinImageCount   int     // fewer images than this is suspicious
	DisposableHosts []string
}

// RuleInfo is the introspection view of a rule exposed over the API.
type RuleInfo struct {
	Category    models.FlagCategory `json:"category"`
	Description string              `json:"description"`
	Severity    models.Severity     `json:"severity"`
	Patterns    []string            `json:"patterns"`
	Weight      int                 `json:"weight"`
	Cap         int                 `json:"cap,omitempty"`
}

var (
	reUrgencyDeadline = regexp.MustCompile(`(?i)(act|respond|reply|decide)\s+(now|today|immediately|within\s+\d+)`)
	reBelowMarket     = regexp.MustCompile(`(?i)\d+%\s*(below|off|under)\s*(market|asking)`)
	rePhone           = regexp.MustCompile(`^\+?[\d\s\-().]{7,20}$`)
	reEmail           = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// DefaultRuleTable returns the built-in rule set. Categories are listed
// in evaluation order: urgency, contact, claims, payment, remote
// seller, advance payment, then the structural rules (price, images,
// contact format) and finally template detection.
func DefaultRuleTable() *RuleTable {
	return &RuleTable{
		Version: RuleTableVersion,
		Rules: []Rule{
			{
				Category:    models.CategoryUrgencyLanguage,
				Description: "Urgency or pressure language",
				Severity:    models.SeverityMedium,
				Keywords: []string{
					"urgent", "act now", "act fast", "today only", "won't last",
					"limited time", "first come first served", "going fast",
					"immediate", "hurry", "don't miss", "last chance",
				},
				Regexps:        []*regexp.Regexp{reUrgencyDeadline},
				PerMatchWeight: 8,
				Cap:            30,
			},
			{
				Category:    models.CategorySuspiciousContact,
				Description: "Requests to move contact off-platform",
				Severity:    models.SeverityMedium,
				Keywords: []string{
					"text me at", "whatsapp only", "contact via whatsapp",
					"email me directly", "do not use the platform",
					"reply to my personal email", "telegram me",
				},
				FixedWeight: 15,
			},
			{
				Category:    models.CategorySuspiciousClaims,
				Description: "Implausible claims about the property or terms",
				Severity:    models.SeverityMedium,
				Keywords: []string{
					"no credit check", "no background check", "no deposit needed",
					"all utilities included free", "keys will be mailed",
					"cannot show the property", "no viewing", "sight unseen",
					"god-fearing", "missionary",
				},
				Regexps:        []*regexp.Regexp{reBelowMarket},
				PerMatchWeight: 10,
				Cap:            30,
			},
			{
				Category:    models.CategoryRiskyPayment,
				Description: "Untraceable or irreversible payment methods",
				Severity:    models.SeverityCritical,
				Keywords: []string{
					"wire transfer", "western union", "moneygram", "cash only",
					"gift card", "bitcoin", "cryptocurrency", "zelle only",
					"venmo only", "cashier's check only", "money order only",
				},
				FixedWeight: 25,
			},
			{
				Category:    models.CategoryRemoteSeller,
				Description: "Seller claims to be unreachable in person",
				Severity:    models.SeverityHigh,
				Keywords: []string{
					"overseas", "out of the country", "out of state",
					"deployed", "on a mission trip", "traveling abroad",
					"currently abroad", "working abroad",
				},
				FixedWeight: 20,
			},
			{
				Category:    models.CategoryAdvancePayment,
				Description: "Payment demanded before any viewing or signing",
				Severity:    models.SeverityHigh,
				Keywords: []string{
					"deposit before viewing", "payment before viewing",
					"send deposit to hold", "pay first", "deposit to secure",
					"upfront payment required", "first month before",
				},
				FixedWeight: 20,
			},
			{
				Category:    models.CategoryTemplateListing,
				Description: "Boilerplate text reused across scam listings",
				Severity:    models.SeverityLow,
				Keywords: []string{
					"my husband and i", "due to my transfer",
					"we are renting out our lovely home",
					"the house is still available",
				},
				FixedWeight: 10,
			},
		},
		LowPriceHigh:   500,
		LowPriceMedium: 1000,
		MinImageCount:  3,
		DisposableHosts: []string{
			"mailinator.com", "guerrillamail.com", "10minutemail.com",
			"tempmail.com", "throwaway.email", "sharklasers.com",
		},
	}
}

// Info returns the introspection view of every text rule plus the
// structural rules, in emission order: text rules, then price, images
// and contact checks, with template detection last.
func (t *RuleTable) Info() []RuleInfo {
	out := make([]RuleInfo, 0, len(t.Rules)+3)
	var template []RuleInfo
	for _, r := range t.Rules {
		patterns := make([]string, 0, len(r.Keywords)+len(r.Regexps))
		patterns = append(patterns, r.Keywords...)
		for _, re := range r.Regexps {
			patterns = append(patterns, re.String())
		}
		weight := r.FixedWeight
		if r.PerMatchWeight > 0 {
			weight = r.PerMatchWeight
		}
		info := RuleInfo{
			Category:    r.Category,
			Description: r.Description,
			Severity:    r.Severity,
			Patterns:    patterns,
			Weight:      weight,
			Cap:         r.Cap,
		}
		if r.Category == models.CategoryTemplateListing {
			template = append(template, info)
			continue
		}
		out = append(out, info)
	}
	out = append(out,
		RuleInfo{
			Category:    models.CategoryPriceAnomaly,
			Description: "Price far below plausible market rates",
			Severity:    models.SeverityHigh,
			Weight:      20,
		},
		RuleInfo{
			Category:    models.CategoryImageAnomaly,
			Description: "Missing or too few listing images",
			Severity:    models.SeverityHigh,
			Weight:      20,
		},
		RuleInfo{
			Category:    models.CategorySuspiciousContact,
			Description: "Malformed or disposable contact details",
			Severity:    models.SeverityHigh,
			Weight:      15,
		},
	)
	return append(out, template...)
}
