package services

import (
	"fmt"
	"strings"

	"propradar/internal/domain/models"
)

// Analyzer evaluates scan input against a rule table. It is stateless
// and safe for concurrent use.
type Analyzer struct {
	table *RuleTable
}

// NewAnalyzer creates an analyzer over the given rule table.
func NewAnalyzer(table *RuleTable) *Analyzer {
	return &Analyzer{table: table}
}

// Table exposes the analyzer's rule table for introspection.
func (a *Analyzer) Table() *RuleTable {
	return a.table
}

// Analyze runs every rule against the input and returns the raised
// flags. Rules fire independently of one another and the output order
// is fixed: text rules in table order, then price, images and contact
// checks, with template detection last, so identical input always
// yields identical flags and truncated views stay stable. Empty text
// raises no text flags; structural checks still run when their fields
// are present.
func (a *Analyzer) Analyze(input models.ScanInput) []models.RiskFlag {
	var flags, template []models.RiskFlag

	text := strings.ToLower(input.Text)
	if text != "" {
		for _, rule := range a.table.Rules {
			f, ok := a.evalTextRule(rule, text)
			if !ok {
				continue
			}
			if rule.Category == models.CategoryTemplateListing {
				template = append(template, f)
				continue
			}
			flags = append(flags, f)
		}
	}

	if input.Price != nil {
		if f, ok := a.evalPrice(*input.Price); ok {
			flags = append(flags, f)
		}
	}
	if input.ImageCount != nil {
		if f, ok := a.evalImages(*input.ImageCount); ok {
			flags = append(flags, f)
		}
	}
	flags = append(flags, a.evalContact(input.Phone, input.Email)...)
	flags = append(flags, template...)

	return flags
}

func (a *Analyzer) evalTextRule(rule Rule, text string) (models.RiskFlag, bool) {
	matches := 0
	var first string
	for _, kw := range rule.Keywords {
		if strings.Contains(text, kw) {
			matches++
			if first == "" {
				first = kw
			}
		}
	}
	for _, re := range rule.Regexps {
		if m := re.FindString(text); m != "" {
			matches++
			if first == "" {
				first = m
			}
		}
	}
	if matches == 0 {
		return models.RiskFlag{}, false
	}

	weight := rule.FixedWeight
	if rule.PerMatchWeight > 0 {
		weight = matches * rule.PerMatchWeight
		if rule.Cap > 0 && weight > rule.Cap {
			weight = rule.Cap
		}
	}

	return models.RiskFlag{
		Category:    rule.Category,
		Description: fmt.Sprintf("%s (matched %q)", rule.Description, first),
		Weight:      weight,
		Severity:    rule.Severity,
	}, true
}

func (a *Analyzer) evalPrice(price float64) (models.RiskFlag, bool) {
	switch {
	case price > 0 && price < a.table.LowPriceHigh:
		return models.RiskFlag{
			Category:    models.CategoryPriceAnomaly,
			Description: fmt.Sprintf("price %.0f is far below plausible market rates", price),
			Weight:      20,
			Severity:    models.SeverityHigh,
		}, true
	case price > 0 && price < a.table.LowPriceMedium:
		return models.RiskFlag{
			Category:    models.CategoryPriceAnomaly,
			Description: fmt.Sprintf("price %.0f is unusually low", price),
			Weight:      10,
			Severity:    models.SeverityMedium,
		}, true
	}
	return models.RiskFlag{}, false
}

func (a *Analyzer) evalImages(count int) (models.RiskFlag, bool) {
	switch {
	case count == 0:
		return models.RiskFlag{
			Category:    models.CategoryImageAnomaly,
			Description: "listing has no images",
			Weight:      20,
			Severity:    models.SeverityHigh,
		}, true
	case count < a.table.MinImageCount:
		return models.RiskFlag{
			Category:    models.CategoryImageAnomaly,
			Description: fmt.Sprintf("listing has only %d images", count),
			Weight:      10,
			Severity:    models.SeverityMedium,
		}, true
	}
	return models.RiskFlag{}, false
}

func (a *Analyzer) evalContact(phone, email string) []models.RiskFlag {
	var flags []models.RiskFlag

	if phone != "" && !rePhone.MatchString(phone) {
		flags = append(flags, models.RiskFlag{
			Category:    models.CategorySuspiciousContact,
			Description: "phone number is malformed",
			Weight:      10,
			Severity:    models.SeverityMedium,
		})
	}

	if email != "" {
		if !reEmail.MatchString(email) {
			flags = append(flags, models.RiskFlag{
				Category:    models.CategorySuspiciousContact,
				Description: "email address is malformed",
				Weight:      10,
				Severity:    models.SeverityMedium,
			})
		} else {
			host := strings.ToLower(email[strings.LastIndex(email, "@")+1:])
			for _, disposable := range a.table.DisposableHosts {
				if host == disposable {
					flags = append(flags, models.RiskFlag{
						Category:    models.CategorySuspiciousContact,
						Description: fmt.Sprintf("email uses disposable host %s", host),
						Weight:      15,
						Severity:    models.SeverityHigh,
					})
					break
				}
			}
		}
	}

	return flags
}
