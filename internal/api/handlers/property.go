package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"propradar/internal/domain/models"
	"propradar/internal/domain/services"
	"propradar/pkg/logger"
)

// PropertyHandler handles property record endpoints
type PropertyHandler struct {
	properties *services.PropertyService
	alerts     *services.AlertService
	logger     *logger.Logger
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(properties *services.PropertyService, alerts *services.AlertService, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		properties: properties,
		alerts:     alerts,
		logger:     log.WithComponent("property-handler"),
	}
}

// Check upserts the property for an address and returns its record,
// listings and active alerts. Each lookup bumps the alerts' scan
// counters exactly once.
func (h *PropertyHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req services.CheckInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	switch {
	case req.Address == "":
		respondError(w, http.StatusBadRequest, "missing_address", "address is required")
		return
	case req.City == "":
		respondError(w, http.StatusBadRequest, "missing_city", "city is required")
		return
	case req.State == "":
		respondError(w, http.StatusBadRequest, "missing_state", "state is required")
		return
	}

	property, listings, err := h.properties.CheckProperty(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Msg("property check failed")
		respondStoreError(w, err)
		return
	}

	alerts, err := h.alerts.RecordScan(r.Context(), property.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("property_id", property.ID).Msg("failed to record alert scan")
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, models.PropertyCheckResult{
		Property: property,
		Listings: listings,
		Alerts:   alerts,
	})
}

// Get returns a property record by ID.
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")

	property, err := h.properties.GetProperty(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, property)
}

// AddListing records a listing observation under the property.
func (h *PropertyHandler) AddListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")

	var req services.ListingInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.Platform == "" {
		respondError(w, http.StatusBadRequest, "missing_platform", "platform is required")
		return
	}

	listing, err := h.properties.AddListing(r.Context(), id, req)
	if err != nil {
		h.logger.Error().Err(err).Str("property_id", id).Msg("failed to add listing")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, listing)
}

// Listings returns every listing recorded for the property.
func (h *PropertyHandler) Listings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")

	listings, err := h.properties.Listings(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, listings)
}

// AddReport files a scam report against the property.
func (h *PropertyHandler) AddReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")

	var req services.ReportInput
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.ReportedBy == "" {
		respondError(w, http.StatusBadRequest, "missing_reporter", "reported_by is required")
		return
	}

	report, err := h.properties.AddScamReport(r.Context(), id, req)
	if err != nil {
		h.logger.Error().Err(err).Str("property_id", id).Msg("failed to add report")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// Reports returns every scam report filed against the property.
func (h *PropertyHandler) Reports(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")

	reports, err := h.properties.Reports(r.Context(), id)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// VerifyReport marks a report verified, escalating the property.
func (h *PropertyHandler) VerifyReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")

	reportID, err := uuid.Parse(chi.URLParam(r, "reportID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_report_id", "report id must be a UUID")
		return
	}

	report, err := h.properties.VerifyReport(r.Context(), id, reportID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
