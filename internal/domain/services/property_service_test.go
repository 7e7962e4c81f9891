package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propradar/internal/domain/models"
	"propradar/internal/infrastructure/store"
	"propradar/pkg/logger"
)

func newTestPropertyService(t *testing.T) *PropertyService {
	t.Helper()
	log := logger.NewDefault()
	return NewPropertyService(
		store.NewMemory(),
		newTestAnalyzer(),
		newTestScorer(),
		nil, // events disabled
		NewEngineStats(),
		log,
	)
}

func TestPropertyIDIsDeterministic(t *testing.T) {
	a := PropertyID("123 Main St", "Springfield", "IL")
	b := PropertyID("123 Main St", "Springfield", "IL")
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestPropertyIDNormalizesCaseAndWhitespace(t *testing.T) {
	base := PropertyID("123 Main St", "Springfield", "IL")

	assert.Equal(t, base, PropertyID("123 MAIN ST", "springfield", "il"))
	assert.Equal(t, base, PropertyID("  123   Main\tSt ", " Springfield ", "IL"))
	assert.NotEqual(t, base, PropertyID("124 Main St", "Springfield", "IL"))
	assert.NotEqual(t, base, PropertyID("123 Main St", "Springfield", "MO"))
}

func TestCheckPropertyCreatesThenReuses(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	in := CheckInput{Address: "742 Evergreen Terrace", City: "Springfield", State: "IL"}

	first, listings, err := svc.CheckProperty(ctx, in)
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Equal(t, models.PropertyStatusActive, first.Status)
	assert.Equal(t, models.RiskLevelSafe, first.RiskLevel)
	assert.Equal(t, int64(1), first.Version)

	// different casing and spacing resolves to the same record
	again, _, err := svc.CheckProperty(ctx, CheckInput{
		Address: "742  EVERGREEN  terrace", City: "springfield", State: "il",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(2), again.Version)
	assert.Equal(t, first.CreatedAt, again.CreatedAt)
}

func TestCheckPropertyRescoresFromCurrentState(t *testing.T) {
	st := store.NewMemory()
	svc := NewPropertyService(st, newTestAnalyzer(), newTestScorer(), nil, NewEngineStats(), logger.NewDefault())
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "4 Fir Ct", City: "Provo", State: "UT"})
	require.NoError(t, err)
	assert.Equal(t, 0, prop.RiskScore)

	// a listing written behind the service's back, as if the rescore
	// following a listing write had been lost
	stray := models.PropertyListing{
		ID:         uuid.New(),
		PropertyID: prop.ID,
		Platform:   models.PlatformCraigslist,
		Price:      1500,
		IsActive:   true,
		IsFlagged:  true,
		FlagCount:  4,
	}
	require.NoError(t, st.Set(ctx, listingKey(prop.ID, stray.ID), &stray))

	// the next check folds the listing back into the score
	healed, listings, err := svc.CheckProperty(ctx, CheckInput{Address: "4 Fir Ct", City: "Provo", State: "UT"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, 4, healed.TotalFlags)
	assert.Equal(t, 40, healed.RiskScore)
	assert.Equal(t, models.RiskLevelMedium, healed.RiskLevel)
}

func TestAddListingScansContentAndRescores(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "1 Oak Ln", City: "Austin", State: "TX"})
	require.NoError(t, err)

	images := 0
	listing, err := svc.AddListing(ctx, prop.ID, ListingInput{
		Platform:    models.PlatformCraigslist,
		URL:         "https://craigslist.example/1",
		Description: "URGENT! Wire transfer only, seller overseas, cash only",
		Price:       1200,
		ImageCount:  &images,
	})
	require.NoError(t, err)

	assert.True(t, listing.IsFlagged)
	// urgency, payment, remote seller, image anomaly
	assert.Equal(t, 4, listing.FlagCount)
	assert.True(t, listing.IsActive)
	assert.Equal(t, "USD", listing.Currency)

	updated, err := svc.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.TotalFlags)
	// 4 flags x 10 crosses the flag threshold
	assert.Equal(t, 40, updated.RiskScore)
	assert.Equal(t, models.PropertyStatusActive, updated.Status)
}

func TestAddListingUnknownProperty(t *testing.T) {
	svc := newTestPropertyService(t)

	_, err := svc.AddListing(context.Background(), "missing", ListingInput{Platform: models.PlatformZillow})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPropertyFlaggedOnceThresholdCrossed(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "9 Elm St", City: "Denver", State: "CO"})
	require.NoError(t, err)

	// three heavily flagged listings across platforms
	for _, platform := range []models.Platform{
		models.PlatformCraigslist, models.PlatformZillow, models.PlatformFacebook,
	} {
		_, err := svc.AddListing(ctx, prop.ID, ListingInput{
			Platform:    platform,
			Description: "wire transfer, seller overseas",
			Price:       2000,
		})
		require.NoError(t, err)
	}

	updated, err := svc.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	// 6 flags capped at 5 x 10, plus the cross-platform bonus
	assert.Equal(t, 65, updated.RiskScore)
	assert.Equal(t, models.PropertyStatusFlagged, updated.Status)
	require.NotNil(t, updated.FirstFlagged)

	firstFlagged := *updated.FirstFlagged

	// more activity never resets the first-flagged timestamp
	_, err = svc.AddListing(ctx, prop.ID, ListingInput{
		Platform:    models.PlatformTrulia,
		Description: "cash only",
		Price:       2000,
	})
	require.NoError(t, err)

	after, err := svc.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusFlagged, after.Status)
	assert.Equal(t, firstFlagged, *after.FirstFlagged)
}

func TestVerifiedReportEscalatesProperty(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "5 Pine Rd", City: "Tampa", State: "FL"})
	require.NoError(t, err)

	report, err := svc.AddScamReport(ctx, prop.ID, ReportInput{
		ReportedBy:  "user-81",
		ScamType:    models.ScamTypeAdvanceFee,
		Description: "asked for a deposit before any viewing",
	})
	require.NoError(t, err)
	assert.False(t, report.Verified)

	mid, err := svc.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	assert.False(t, mid.VerifiedScam)
	assert.Equal(t, models.PropertyStatusActive, mid.Status)

	verified, err := svc.VerifyReport(ctx, prop.ID, report.ID)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	final, err := svc.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	assert.True(t, final.VerifiedScam)
	assert.Equal(t, models.PropertyStatusVerifiedScam, final.Status)
	// verified bonus alone puts the record in the high bucket
	assert.GreaterOrEqual(t, final.RiskScore, 50)
	assert.NotNil(t, final.FirstFlagged)
}

func TestVerifyUnknownReport(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "8 Ash Ct", City: "Reno", State: "NV"})
	require.NoError(t, err)

	_, err = svc.VerifyReport(ctx, prop.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReportDefaults(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "2 Birch Ave", City: "Boise", State: "ID"})
	require.NoError(t, err)

	report, err := svc.AddScamReport(ctx, prop.ID, ReportInput{ReportedBy: "user-3"})
	require.NoError(t, err)
	assert.Equal(t, models.ReporterTypeUser, report.ReporterType)
	assert.Equal(t, models.ScamTypeOther, report.ScamType)
	assert.Equal(t, models.SeverityMedium, report.Severity)
}

func TestReportTagsReferencedListing(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "3 Dune Rd", City: "Mesa", State: "AZ"})
	require.NoError(t, err)

	listing, err := svc.AddListing(ctx, prop.ID, ListingInput{Platform: models.PlatformZillow, Price: 2000})
	require.NoError(t, err)
	assert.Empty(t, listing.ScamTypes)

	_, err = svc.AddScamReport(ctx, prop.ID, ReportInput{
		ReportedBy: "user-4",
		ListingID:  &listing.ID,
		ScamType:   models.ScamTypeFakeListing,
	})
	require.NoError(t, err)

	// the same scam type reported twice tags the listing once
	_, err = svc.AddScamReport(ctx, prop.ID, ReportInput{
		ReportedBy: "user-5",
		ListingID:  &listing.ID,
		ScamType:   models.ScamTypeFakeListing,
	})
	require.NoError(t, err)

	listings, err := svc.Listings(ctx, prop.ID)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, []models.ScamType{models.ScamTypeFakeListing}, listings[0].ScamTypes)

	// a report against an unknown listing still lands
	ghost := uuid.New()
	_, err = svc.AddScamReport(ctx, prop.ID, ReportInput{ReportedBy: "user-6", ListingID: &ghost})
	require.NoError(t, err)
}

func TestListingsAndReportsRoundTrip(t *testing.T) {
	svc := newTestPropertyService(t)
	ctx := context.Background()

	prop, _, err := svc.CheckProperty(ctx, CheckInput{Address: "12 Cedar Way", City: "Salem", State: "OR"})
	require.NoError(t, err)

	_, err = svc.AddListing(ctx, prop.ID, ListingInput{Platform: models.PlatformZillow, Price: 250000})
	require.NoError(t, err)
	_, err = svc.AddListing(ctx, prop.ID, ListingInput{Platform: models.PlatformRealtor, Price: 255000})
	require.NoError(t, err)
	_, err = svc.AddScamReport(ctx, prop.ID, ReportInput{ReportedBy: "user-7"})
	require.NoError(t, err)

	listings, err := svc.Listings(ctx, prop.ID)
	require.NoError(t, err)
	assert.Len(t, listings, 2)

	reports, err := svc.Reports(ctx, prop.ID)
	require.NoError(t, err)
	assert.Len(t, reports, 1)

	// listings of one property never leak into another
	other, _, err := svc.CheckProperty(ctx, CheckInput{Address: "99 Cedar Way", City: "Salem", State: "OR"})
	require.NoError(t, err)
	empty, err := svc.Listings(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// Full pass from hostile listing text to a critical classification.
func TestScanPipelineCriticalListing(t *testing.T) {
	scans := NewScanService(newTestAnalyzer(), newTestScorer(), NewEngineStats(), logger.NewDefault())

	images := 0
	result := scans.Scan(models.SubjectTypeListing, models.ScanInput{
		Text:       "URGENT! Wire transfer only, seller overseas, cash only",
		ImageCount: &images,
	})

	// urgency 8 + payment 25 + remote seller 20 + missing images 20
	assert.Equal(t, 73, result.Score)
	assert.Equal(t, models.RiskLevelCritical, result.RiskLevel)
	assert.Len(t, result.Flags, 4)
	assert.NotEmpty(t, result.Recommendations)
}
