package models

import (
	"time"

	"github.com/google/uuid"
)

// PropertyStatus is the moderation state of a property record.
type PropertyStatus string

const (
	PropertyStatusActive       PropertyStatus = "active"
	PropertyStatusFlagged      PropertyStatus = "flagged"
	PropertyStatusVerifiedScam PropertyStatus = "verified_scam"
	PropertyStatusCleared      PropertyStatus = "cleared"
	PropertyStatusUnderReview  PropertyStatus = "under_review"
)

// Platform identifies the listing site a posting was observed on.
type Platform string

const (
	PlatformCraigslist Platform = "craigslist"
	PlatformZillow     Platform = "zillow"
	PlatformFacebook   Platform = "facebook_marketplace"
	PlatformApartments Platform = "apartments_com"
	PlatformRealtor    Platform = "realtor_com"
	PlatformTrulia     Platform = "trulia"
	PlatformOther      Platform = "other"
)

// ScamType classifies the kind of fraud alleged or detected.
type ScamType string

const (
	ScamTypeFakeListing       ScamType = "fake_listing"
	ScamTypePriceManipulation ScamType = "price_manipulation"
	ScamTypeAdvanceFee        ScamType = "advance_fee"
	ScamTypeIdentityTheft     ScamType = "identity_theft"
	ScamTypeBaitAndSwitch     ScamType = "bait_and_switch"
	ScamTypeDuplicateListing  ScamType = "duplicate_listing"
	ScamTypeOther             ScamType = "other"
)

// ReporterType identifies who filed a scam report.
type ReporterType string

const (
	ReporterTypeUser      ReporterType = "user"
	ReporterTypeCommunity ReporterType = "community"
	ReporterTypeSystem    ReporterType = "system"
)

// PropertyRecord is the canonical entity for one physical address. Its ID
// is a pure function of the normalized address|city|state triple, so
// upserts are idempotent. Records are never deleted in normal operation:
// scam history must persist.
type PropertyRecord struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`

	Status       PropertyStatus `json:"status"`
	RiskScore    int            `json:"risk_score"`
	RiskLevel    RiskLevel      `json:"risk_level"`
	TotalFlags   int            `json:"total_flags"`
	VerifiedScam bool           `json:"verified_scam"`

	FirstFlagged *time.Time `json:"first_flagged,omitempty"`
	LastChecked  time.Time  `json:"last_checked"`

	// Version increments on every write; the store rejects stale writers.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PropertyListing is one platform-specific posting referencing a property.
// Listings are never merged across platforms by seller identity:
// cross-platform reposting is itself the correlation signal.
type PropertyListing struct {
	ID          uuid.UUID  `json:"id"`
	PropertyID  string     `json:"property_id"`
	Platform    Platform   `json:"platform"`
	URL         string     `json:"url,omitempty"`
	SellerName  string     `json:"seller_name,omitempty"`
	SellerPhone string     `json:"seller_phone,omitempty"`
	SellerEmail string     `json:"seller_email,omitempty"`
	Price       float64    `json:"price"`
	Currency    string     `json:"currency,omitempty"`
	ListedDate  time.Time  `json:"listed_date"`
	IsActive    bool       `json:"is_active"`
	IsFlagged   bool       `json:"is_flagged"`
	ScamTypes   []ScamType `json:"scam_types,omitempty"`
	FlagCount   int        `json:"flag_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ScamReport is a discrete fraud allegation tied to a property and
// optionally one of its listings. Reports are append-only; the only
// mutation ever applied is flipping Verified.
type ScamReport struct {
	ID           uuid.UUID    `json:"id"`
	PropertyID   string       `json:"property_id"`
	ListingID    *uuid.UUID   `json:"listing_id,omitempty"`
	ReportedBy   string       `json:"reported_by"`
	ReporterType ReporterType `json:"reporter_type"`
	ScamType     ScamType     `json:"scam_type"`
	Severity     Severity     `json:"severity"`
	Description  string       `json:"description,omitempty"`
	Verified     bool         `json:"verified"`
	CreatedAt    time.Time    `json:"created_at"`
}

// PropertyCheckResult is the response to a property-check lookup.
type PropertyCheckResult struct {
	Property *PropertyRecord   `json:"property"`
	Listings []PropertyListing `json:"listings"`
	Alerts   []CommunityAlert  `json:"alerts"`
}
