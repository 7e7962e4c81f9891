package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"propradar/internal/domain/services"
	"propradar/pkg/logger"
)

// AlertsHandler handles community alert and watch endpoints
type AlertsHandler struct {
	alerts *services.AlertService
	logger *logger.Logger
}

// NewAlertsHandler creates a new AlertsHandler
func NewAlertsHandler(alerts *services.AlertService, log *logger.Logger) *AlertsHandler {
	return &AlertsHandler{
		alerts: alerts,
		logger: log.WithComponent("alerts-handler"),
	}
}

// CreateAlertRequest is the body for POST /alerts.
type CreateAlertRequest struct {
	PropertyID string `json:"property_id"`
	services.AlertInput
}

// Create attaches a new community alert to a property.
func (h *AlertsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	switch {
	case req.PropertyID == "":
		respondError(w, http.StatusBadRequest, "missing_property_id", "property_id is required")
		return
	case req.Title == "":
		respondError(w, http.StatusBadRequest, "missing_title", "title is required")
		return
	case req.Message == "":
		respondError(w, http.StatusBadRequest, "missing_message", "message is required")
		return
	}

	alert, err := h.alerts.CreateAlert(r.Context(), req.PropertyID, req.AlertInput)
	if err != nil {
		h.logger.Error().Err(err).Str("property_id", req.PropertyID).Msg("failed to create alert")
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, alert)
}

// ByProperty lists a property's alerts. Pass ?active=true to filter to
// active ones.
func (h *AlertsHandler) ByProperty(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")
	activeOnly := r.URL.Query().Get("active") == "true"

	alerts, err := h.alerts.Alerts(r.Context(), propertyID, activeOnly)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

// VoteRequest is the body for POST /alerts/{alertID}/vote.
type VoteRequest struct {
	Direction string `json:"direction"` // "up" or "down"
}

// Vote applies one vote to an alert.
func (h *AlertsHandler) Vote(w http.ResponseWriter, r *http.Request) {
	alertID, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_alert_id", "alert id must be a UUID")
		return
	}

	var req VoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.Direction != "up" && req.Direction != "down" {
		respondError(w, http.StatusBadRequest, "invalid_direction", "direction must be \"up\" or \"down\"")
		return
	}

	alert, err := h.alerts.Vote(r.Context(), alertID, req.Direction == "up")
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

// Deactivate hides an alert without deleting it.
func (h *AlertsHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	alertID, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_alert_id", "alert id must be a UUID")
		return
	}

	alert, err := h.alerts.Deactivate(r.Context(), alertID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, alert)
}

// WatchRequest is the body for PUT /watches.
type WatchRequest struct {
	UserID               string `json:"user_id"`
	PropertyID           string `json:"property_id"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// Watch subscribes a user to a property. Re-watching updates the
// existing subscription in place.
func (h *AlertsHandler) Watch(w http.ResponseWriter, r *http.Request) {
	var req WatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	switch {
	case req.UserID == "":
		respondError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	case req.PropertyID == "":
		respondError(w, http.StatusBadRequest, "missing_property_id", "property_id is required")
		return
	}

	watch, err := h.alerts.Watch(r.Context(), req.UserID, req.PropertyID, req.NotificationsEnabled)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, watch)
}

// Watches lists every property the user is watching.
func (h *AlertsHandler) Watches(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	watches, err := h.alerts.Watches(r.Context(), userID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, watches)
}

// Unwatch removes a user's subscription to a property.
func (h *AlertsHandler) Unwatch(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	propertyID := chi.URLParam(r, "propertyID")

	if err := h.alerts.Unwatch(r.Context(), userID, propertyID); err != nil {
		respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
