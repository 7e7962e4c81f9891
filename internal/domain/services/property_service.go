package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"propradar/internal/domain/models"
	"propradar/internal/infrastructure/store"
	"propradar/internal/streaming"
	"propradar/pkg/logger"
)

func propertyKey(id string) string { return "property:" + id }

func listingKey(propertyID string, listingID uuid.UUID) string {
	return fmt.Sprintf("listing:%s:%s", propertyID, listingID)
}
func listingPrefix(propertyID string) string { return "listing:" + propertyID + ":" }

func reportKey(propertyID string, reportID uuid.UUID) string {
	return fmt.Sprintf("report:%s:%s", propertyID, reportID)
}
func reportPrefix(propertyID string) string { return "report:" + propertyID + ":" }

// PropertyService owns property records, their listings and scam
// reports. Every mutation re-scores the property and drives its status
// lifecycle: active until the correlation score crosses the flag
// threshold, flagged from then on, verified_scam once any report is
// verified. Flagged and verified states are sticky.
type PropertyService struct {
	store    store.Store
	analyzer *Analyzer
	scorer   *Scorer
	events   *streaming.Publisher
	stats    *EngineStats
	logger   *logger.Logger
}

// NewPropertyService wires the property service.
func NewPropertyService(
	st store.Store,
	analyzer *Analyzer,
	scorer *Scorer,
	events *streaming.Publisher,
	stats *EngineStats,
	log *logger.Logger,
) *PropertyService {
	return &PropertyService{
		store:    st,
		analyzer: analyzer,
		scorer:   scorer,
		events:   events,
		stats:    stats,
		logger:   log.WithComponent("property-service"),
	}
}

// NormalizeAddress canonicalizes an address triple. Case and runs of
// whitespace never distinguish two properties.
func NormalizeAddress(address, city, state string) string {
	norm := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return norm(address) + "|" + norm(city) + "|" + norm(state)
}

// PropertyID derives the deterministic record ID for an address triple.
func PropertyID(address, city, state string) string {
	sum := sha256.Sum256([]byte(NormalizeAddress(address, city, state)))
	return hex.EncodeToString(sum[:])[:32]
}

// CheckInput identifies a property to look up or create.
type CheckInput struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zip_code"`
}

// CheckProperty upserts the record for the address, recomputes its
// score from the current listings and reports, and returns it with its
// listings. The same address always resolves to the same record no
// matter how many callers race on first contact, and a check always
// reflects the live correlation weights even when no mutation has
// happened since they changed.
func (s *PropertyService) CheckProperty(ctx context.Context, in CheckInput) (*models.PropertyRecord, []models.PropertyListing, error) {
	id := PropertyID(in.Address, in.City, in.State)
	now := time.Now().UTC()

	listings, err := s.Listings(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reports, err := s.Reports(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var record models.PropertyRecord
	var becameFlagged, becameVerified bool
	err = s.store.Update(ctx, propertyKey(id), func(current []byte) ([]byte, error) {
		if current == nil {
			record = models.PropertyRecord{
				ID:        id,
				Address:   in.Address,
				City:      in.City,
				State:     in.State,
				Country:   in.Country,
				ZipCode:   in.ZipCode,
				Status:    models.PropertyStatusActive,
				RiskLevel: models.RiskLevelSafe,
				CreatedAt: now,
			}
		} else {
			if err := json.Unmarshal(current, &record); err != nil {
				return nil, err
			}
		}
		record.LastChecked = now
		becameFlagged, becameVerified = s.applyScore(&record, listings, reports, now)
		record.UpdatedAt = now
		record.Version++
		return json.Marshal(&record)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to upsert property: %w", err)
	}

	s.publishTransitions(ctx, &record, becameFlagged, becameVerified)

	s.stats.PropertyChecks.Add(1)
	s.logger.WithProperty(id).Debug().Int("listings", len(listings)).Msg("property checked")

	return &record, listings, nil
}

// GetProperty fetches a record by ID.
func (s *PropertyService) GetProperty(ctx context.Context, id string) (*models.PropertyRecord, error) {
	var record models.PropertyRecord
	if err := s.store.Get(ctx, propertyKey(id), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListingInput is the caller-supplied portion of a new listing.
type ListingInput struct {
	Platform    models.Platform `json:"platform"`
	URL         string          `json:"url"`
	SellerName  string          `json:"seller_name"`
	SellerPhone string          `json:"seller_phone"`
	SellerEmail string          `json:"seller_email"`
	Price       float64         `json:"price"`
	Currency    string          `json:"currency"`
	ListedDate  time.Time       `json:"listed_date"`
	Description string          `json:"description"`
	ImageCount  *int            `json:"image_count"`
}

// AddListing records a listing under the property, scans its content
// for risk flags, and re-scores the property.
func (s *PropertyService) AddListing(ctx context.Context, propertyID string, in ListingInput) (*models.PropertyListing, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	flags := s.analyzer.Analyze(models.ScanInput{
		Text:       in.Description,
		Price:      &in.Price,
		ImageCount: in.ImageCount,
		Phone:      in.SellerPhone,
		Email:      in.SellerEmail,
	})

	now := time.Now().UTC()
	listedDate := in.ListedDate
	if listedDate.IsZero() {
		listedDate = now
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	listing := models.PropertyListing{
		ID:          uuid.New(),
		PropertyID:  propertyID,
		Platform:    in.Platform,
		URL:         in.URL,
		SellerName:  in.SellerName,
		SellerPhone: in.SellerPhone,
		SellerEmail: in.SellerEmail,
		Price:       in.Price,
		Currency:    currency,
		ListedDate:  listedDate,
		IsActive:    true,
		IsFlagged:   len(flags) > 0,
		FlagCount:   len(flags),
		CreatedAt:   now,
	}

	if err := s.store.Set(ctx, listingKey(propertyID, listing.ID), &listing); err != nil {
		return nil, fmt.Errorf("failed to store listing: %w", err)
	}

	s.stats.ListingsAdded.Add(1)
	s.stats.FlagsRaised.Add(int64(len(flags)))

	if err := s.rescore(ctx, propertyID); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Listings returns every listing recorded for the property.
func (s *PropertyService) Listings(ctx context.Context, propertyID string) ([]models.PropertyListing, error) {
	keys, err := s.store.Keys(ctx, listingPrefix(propertyID))
	if err != nil {
		return nil, err
	}
	listings := make([]models.PropertyListing, 0, len(keys))
	for _, key := range keys {
		var l models.PropertyListing
		if err := s.store.Get(ctx, key, &l); err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// ReportInput is the caller-supplied portion of a scam report.
type ReportInput struct {
	ListingID    *uuid.UUID          `json:"listing_id"`
	ReportedBy   string              `json:"reported_by"`
	ReporterType models.ReporterType `json:"reporter_type"`
	ScamType     models.ScamType     `json:"scam_type"`
	Severity     models.Severity     `json:"severity"`
	Description  string              `json:"description"`
}

// AddScamReport files a report against the property and re-scores it.
func (s *PropertyService) AddScamReport(ctx context.Context, propertyID string, in ReportInput) (*models.ScamReport, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	if in.ReporterType == "" {
		in.ReporterType = models.ReporterTypeUser
	}
	if in.ScamType == "" {
		in.ScamType = models.ScamTypeOther
	}
	if in.Severity == "" {
		in.Severity = models.SeverityMedium
	}

	report := models.ScamReport{
		ID:           uuid.New(),
		PropertyID:   propertyID,
		ListingID:    in.ListingID,
		ReportedBy:   in.ReportedBy,
		ReporterType: in.ReporterType,
		ScamType:     in.ScamType,
		Severity:     in.Severity,
		Description:  in.Description,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.Set(ctx, reportKey(propertyID, report.ID), &report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	if report.ListingID != nil {
		if err := s.tagListing(ctx, propertyID, *report.ListingID, report.ScamType); err != nil && err != store.ErrNotFound {
			return nil, err
		}
	}

	s.stats.ReportsFiled.Add(1)

	if err := s.rescore(ctx, propertyID); err != nil {
		return nil, err
	}
	return &report, nil
}

// tagListing records the reported scam type on the listing the report
// points at. A report referencing an unknown listing still stands on
// its own, so the caller treats ErrNotFound as benign.
func (s *PropertyService) tagListing(ctx context.Context, propertyID string, listingID uuid.UUID, scamType models.ScamType) error {
	return s.store.Update(ctx, listingKey(propertyID, listingID), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		var l models.PropertyListing
		if err := json.Unmarshal(current, &l); err != nil {
			return nil, err
		}
		for _, st := range l.ScamTypes {
			if st == scamType {
				return current, nil
			}
		}
		l.ScamTypes = append(l.ScamTypes, scamType)
		return json.Marshal(&l)
	})
}

// Reports returns every scam report filed against the property.
func (s *PropertyService) Reports(ctx context.Context, propertyID string) ([]models.ScamReport, error) {
	keys, err := s.store.Keys(ctx, reportPrefix(propertyID))
	if err != nil {
		return nil, err
	}
	reports := make([]models.ScamReport, 0, len(keys))
	for _, key := range keys {
		var r models.ScamReport
		if err := s.store.Get(ctx, key, &r); err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// VerifyReport marks a report verified and escalates the property to
// verified_scam. Verification is one-way.
func (s *PropertyService) VerifyReport(ctx context.Context, propertyID string, reportID uuid.UUID) (*models.ScamReport, error) {
	var report models.ScamReport
	err := s.store.Update(ctx, reportKey(propertyID, reportID), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		if err := json.Unmarshal(current, &report); err != nil {
			return nil, err
		}
		report.Verified = true
		return json.Marshal(&report)
	})
	if err != nil {
		return nil, err
	}

	s.stats.ReportsVerified.Add(1)

	if err := s.rescore(ctx, propertyID); err != nil {
		return nil, err
	}
	return &report, nil
}

// rescore recomputes the property's correlation score from its current
// listings and reports and applies status transitions. Events fire only
// on the transition, never on repeat writes of the same state.
func (s *PropertyService) rescore(ctx context.Context, propertyID string) error {
	listings, err := s.Listings(ctx, propertyID)
	if err != nil {
		return err
	}
	reports, err := s.Reports(ctx, propertyID)
	if err != nil {
		return err
	}

	var becameFlagged, becameVerified bool
	var record models.PropertyRecord

	err = s.store.Update(ctx, propertyKey(propertyID), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		if err := json.Unmarshal(current, &record); err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		becameFlagged, becameVerified = s.applyScore(&record, listings, reports, now)
		record.UpdatedAt = now
		record.Version++
		return json.Marshal(&record)
	})
	if err != nil {
		return fmt.Errorf("failed to rescore property: %w", err)
	}

	s.publishTransitions(ctx, &record, becameFlagged, becameVerified)
	return nil
}

// applyScore folds the listings and reports into the record and drives
// the status lifecycle. Flagged and verified states are sticky;
// FirstFlagged is stamped once.
func (s *PropertyService) applyScore(record *models.PropertyRecord, listings []models.PropertyListing, reports []models.ScamReport, now time.Time) (becameFlagged, becameVerified bool) {
	anyVerified := false
	totalFlags := len(reports)
	for _, r := range reports {
		if r.Verified {
			anyVerified = true
		}
	}
	for _, l := range listings {
		totalFlags += l.FlagCount
	}

	record.VerifiedScam = record.VerifiedScam || anyVerified
	record.TotalFlags = totalFlags
	record.RiskScore = s.scorer.ScoreProperty(record.VerifiedScam, listings, reports)
	record.RiskLevel = s.scorer.Classify(record.RiskScore)

	switch {
	case record.VerifiedScam:
		if record.Status != models.PropertyStatusVerifiedScam {
			becameVerified = true
		}
		record.Status = models.PropertyStatusVerifiedScam
		if record.FirstFlagged == nil {
			record.FirstFlagged = &now
		}
	case record.RiskScore >= s.scorer.FlagThreshold():
		if record.Status == models.PropertyStatusActive {
			becameFlagged = true
			record.Status = models.PropertyStatusFlagged
		}
		if record.FirstFlagged == nil {
			record.FirstFlagged = &now
		}
	}
	return becameFlagged, becameVerified
}

func (s *PropertyService) publishTransitions(ctx context.Context, record *models.PropertyRecord, becameFlagged, becameVerified bool) {
	log := s.logger.WithProperty(record.ID)
	if becameFlagged {
		log.Info().Int("risk_score", record.RiskScore).Msg("property flagged")
		s.events.Publish(ctx, streaming.Event{
			Type:       streaming.EventPropertyFlagged,
			PropertyID: record.ID,
			Payload:    map[string]any{"risk_score": record.RiskScore, "risk_level": record.RiskLevel},
		})
	}
	if becameVerified {
		log.Warn().Msg("property verified as scam")
		s.events.Publish(ctx, streaming.Event{
			Type:       streaming.EventPropertyVerifiedScam,
			PropertyID: record.ID,
			Payload:    map[string]any{"risk_score": record.RiskScore},
		})
	}
}
