package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propradar/internal/domain/models"
	"propradar/internal/domain/services"
	"propradar/pkg/logger"
)

func newTestScanHandler() *ScanHandler {
	log := logger.NewDefault()
	scorer := services.NewScorer(testScoring())
	analyzer := services.NewAnalyzer(services.DefaultRuleTable())
	scans := services.NewScanService(analyzer, scorer, services.NewEngineStats(), log)
	return NewScanHandler(scans, log)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestScanListingRequiresURL(t *testing.T) {
	h := newTestScanHandler()

	rec := postJSON(t, h.ScanListing, ScanListingRequest{Description: "nice place"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "missing_url", env.Error.Code)
}

func TestScanListingScoresHostileContent(t *testing.T) {
	h := newTestScanHandler()

	rec := postJSON(t, h.ScanListing, ScanListingRequest{
		URL:         "https://listings.example/42",
		Description: "URGENT! Wire transfer only, seller overseas, cash only",
		Images:      []string{},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool              `json:"success"`
		Data    models.ScanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	// an empty images array counts as zero images
	assert.Equal(t, 73, env.Data.Score)
	assert.Equal(t, models.RiskLevelCritical, env.Data.RiskLevel)
	assert.Equal(t, models.SubjectTypeListing, env.Data.SubjectType)
}

func TestScanListingCleanContent(t *testing.T) {
	h := newTestScanHandler()

	price := 2200.0
	rec := postJSON(t, h.ScanListing, ScanListingRequest{
		URL:         "https://listings.example/7",
		Title:       "Sunny two bedroom near transit",
		Description: "Well maintained unit, viewings every Saturday.",
		Price:       &price,
		Images:      []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data models.ScanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 0, env.Data.Score)
	assert.Equal(t, models.RiskLevelSafe, env.Data.RiskLevel)
	assert.Empty(t, env.Data.Flags)
	assert.NotEmpty(t, env.Data.Recommendations)
}

func TestScanListingOmittedImagesNotSuspicious(t *testing.T) {
	h := newTestScanHandler()

	// images not provided, unlike an explicit empty list
	price := 2200.0
	rec := postJSON(t, h.ScanListing, ScanListingRequest{
		URL:         "https://listings.example/9",
		Description: "Well maintained unit, viewings every Saturday.",
		Price:       &price,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data models.ScanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, 0, env.Data.Score)
	assert.Equal(t, models.RiskLevelSafe, env.Data.RiskLevel)
	assert.Empty(t, env.Data.Flags)
}

func TestScanSellerRequiresContent(t *testing.T) {
	h := newTestScanHandler()

	rec := postJSON(t, h.ScanSeller, ScanSellerRequest{Name: "John"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "missing_content", env.Error.Code)
}

func TestScanSellerFlagsDisposableEmail(t *testing.T) {
	h := newTestScanHandler()

	rec := postJSON(t, h.ScanSeller, ScanSellerRequest{
		Email:       "owner@mailinator.com",
		Description: "I am currently abroad, my agent will mail the keys",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data models.ScanResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, models.SubjectTypeSeller, env.Data.SubjectType)
	assert.NotEmpty(t, env.Data.Flags)
}

func TestScanDocumentRequiresText(t *testing.T) {
	h := newTestScanHandler()

	rec := postJSON(t, h.ScanDocument, ScanDocumentRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "missing_text", env.Error.Code)
}

func TestScanInvalidBody(t *testing.T) {
	h := newTestScanHandler()

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ScanListing(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "invalid_body", env.Error.Code)
}

func TestRulesEndpoint(t *testing.T) {
	h := newTestScanHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil)
	rec := httptest.NewRecorder()
	h.Rules(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Success bool `json:"success"`
		Data    struct {
			Version string              `json:"version"`
			Rules   []services.RuleInfo `json:"rules"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.Version)
	assert.NotEmpty(t, env.Data.Rules)
}
