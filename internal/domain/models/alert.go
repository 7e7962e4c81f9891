package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertType is the visual class of a community alert.
type AlertType string

const (
	AlertTypeWarning AlertType = "warning"
	AlertTypeDanger  AlertType = "danger"
	AlertTypeInfo    AlertType = "info"
)

// CommunityAlert is a shared, votable warning attached to a property.
// Alerts are never physically deleted, only deactivated, and ScanCount
// never decreases.
type CommunityAlert struct {
	ID         uuid.UUID `json:"id"`
	PropertyID string    `json:"property_id"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	AlertType  AlertType `json:"alert_type"`
	Severity   Severity  `json:"severity"`
	CreatedBy  string    `json:"created_by,omitempty"`

	Upvotes   int   `json:"upvotes"`
	Downvotes int   `json:"downvotes"`
	ScanCount int64 `json:"scan_count"`

	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastScanned *time.Time `json:"last_scanned,omitempty"`
}

// PropertyWatch is a user's subscription to a property. There is at most
// one watch per (user, property) pair; re-adding overwrites.
type PropertyWatch struct {
	ID                   uuid.UUID `json:"id"`
	UserID               string    `json:"user_id"`
	PropertyID           string    `json:"property_id"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	AddedAt              time.Time `json:"added_at"`
}
