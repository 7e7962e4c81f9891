package handlers

import (
	"net/http"

	"propradar/internal/domain/models"
	"propradar/internal/domain/services"
	"propradar/pkg/logger"
)

// ScanHandler handles content scan endpoints
type ScanHandler struct {
	scans  *services.ScanService
	logger *logger.Logger
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scans *services.ScanService, log *logger.Logger) *ScanHandler {
	return &ScanHandler{
		scans:  scans,
		logger: log.WithComponent("scan-handler"),
	}
}

// ScanListingRequest is the body for POST /scan/listing.
type ScanListingRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
	SellerPhone string   `json:"seller_phone"`
	SellerEmail string   `json:"seller_email"`
}

// ScanListing scores a rental or sale listing.
func (h *ScanHandler) ScanListing(w http.ResponseWriter, r *http.Request) {
	var req ScanListingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.URL == "" {
		respondError(w, http.StatusBadRequest, "missing_url", "url is required")
		return
	}

	// an omitted images field is "not provided"; only an explicit
	// empty list counts as zero images
	var imageCount *int
	if req.Images != nil {
		n := len(req.Images)
		imageCount = &n
	}

	result := h.scans.Scan(models.SubjectTypeListing, models.ScanInput{
		Text:       req.Title + " " + req.Description,
		Price:      req.Price,
		ImageCount: imageCount,
		Phone:      req.SellerPhone,
		Email:      req.SellerEmail,
	})

	respondJSON(w, http.StatusOK, result)
}

// ScanSellerRequest is the body for POST /scan/seller.
type ScanSellerRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// ScanSeller scores a seller's profile and message content.
func (h *ScanHandler) ScanSeller(w http.ResponseWriter, r *http.Request) {
	var req ScanSellerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.Phone == "" && req.Email == "" && req.Description == "" {
		respondError(w, http.StatusBadRequest, "missing_content", "at least one of phone, email or description is required")
		return
	}

	result := h.scans.Scan(models.SubjectTypeSeller, models.ScanInput{
		Text:  req.Description,
		Phone: req.Phone,
		Email: req.Email,
	})

	respondJSON(w, http.StatusOK, result)
}

// ScanDocumentRequest is the body for POST /scan/document.
type ScanDocumentRequest struct {
	Text string `json:"text"`
}

// ScanDocument scores free-form document text such as a lease draft or
// an email thread.
func (h *ScanHandler) ScanDocument(w http.ResponseWriter, r *http.Request) {
	var req ScanDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "missing_text", "text is required")
		return
	}

	result := h.scans.Scan(models.SubjectTypeDocument, models.ScanInput{Text: req.Text})

	respondJSON(w, http.StatusOK, result)
}

// Rules returns the active rule table.
func (h *ScanHandler) Rules(w http.ResponseWriter, r *http.Request) {
	version, rules := h.scans.Rules()
	respondJSON(w, http.StatusOK, map[string]any{
		"version": version,
		"rules":   rules,
	})
}
