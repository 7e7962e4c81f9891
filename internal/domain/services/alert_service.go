package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"propradar/internal/domain/models"
	"propradar/internal/infrastructure/store"
	"propradar/internal/streaming"
	"propradar/pkg/logger"
)

func alertKey(id uuid.UUID) string { return "alert:" + id.String() }

func alertIndexKey(propertyID string) string { return "alerts:index:" + propertyID }

func watchKey(userID, propertyID string) string {
	return fmt.Sprintf("watch:%s:%s", userID, propertyID)
}
func watchPrefix(userID string) string { return "watch:" + userID + ":" }

// AlertService owns community alerts and property watches. Alerts live
// under their own ID with a per-property index of alert IDs; watches are
// keyed by (user, property) so re-adding a watch overwrites instead of
// duplicating.
type AlertService struct {
	store  store.Store
	events *streaming.Publisher
	stats  *EngineStats
	logger *logger.Logger
}

// NewAlertService wires the alert service.
func NewAlertService(st store.Store, events *streaming.Publisher, stats *EngineStats, log *logger.Logger) *AlertService {
	return &AlertService{
		store:  st,
		events: events,
		stats:  stats,
		logger: log.WithComponent("alert-service"),
	}
}

// AlertInput is the caller-supplied portion of a community alert.
type AlertInput struct {
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	AlertType models.AlertType `json:"alert_type"`
	Severity  models.Severity  `json:"severity"`
	CreatedBy string           `json:"created_by"`
}

// CreateAlert attaches a new active alert to the property.
func (s *AlertService) CreateAlert(ctx context.Context, propertyID string, in AlertInput) (*models.CommunityAlert, error) {
	if in.AlertType == "" {
		in.AlertType = models.AlertTypeWarning
	}
	if in.Severity == "" {
		in.Severity = models.SeverityMedium
	}

	alert := models.CommunityAlert{
		ID:         uuid.New(),
		PropertyID: propertyID,
		Title:      in.Title,
		Message:    in.Message,
		AlertType:  in.AlertType,
		Severity:   in.Severity,
		CreatedBy:  in.CreatedBy,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.Set(ctx, alertKey(alert.ID), &alert); err != nil {
		return nil, fmt.Errorf("failed to store alert: %w", err)
	}

	err := s.store.Update(ctx, alertIndexKey(propertyID), func(current []byte) ([]byte, error) {
		var ids []uuid.UUID
		if current != nil {
			if err := json.Unmarshal(current, &ids); err != nil {
				return nil, err
			}
		}
		ids = append(ids, alert.ID)
		return json.Marshal(ids)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index alert: %w", err)
	}

	s.stats.AlertsCreated.Add(1)
	s.logger.Info().
		Str("property_id", propertyID).
		Str("alert_id", alert.ID.String()).
		Str("alert_type", string(alert.AlertType)).
		Msg("community alert created")

	s.events.Publish(ctx, streaming.Event{
		Type:       streaming.EventAlertCreated,
		PropertyID: propertyID,
		Payload:    map[string]any{"alert_id": alert.ID, "severity": alert.Severity},
	})

	return &alert, nil
}

// GetAlert fetches one alert by ID.
func (s *AlertService) GetAlert(ctx context.Context, id uuid.UUID) (*models.CommunityAlert, error) {
	var alert models.CommunityAlert
	if err := s.store.Get(ctx, alertKey(id), &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// Alerts returns the property's alerts, optionally filtered to active
// ones. Order follows creation order via the index.
func (s *AlertService) Alerts(ctx context.Context, propertyID string, activeOnly bool) ([]models.CommunityAlert, error) {
	var ids []uuid.UUID
	if err := s.store.Get(ctx, alertIndexKey(propertyID), &ids); err != nil {
		if err == store.ErrNotFound {
			return []models.CommunityAlert{}, nil
		}
		return nil, err
	}

	alerts := make([]models.CommunityAlert, 0, len(ids))
	for _, id := range ids {
		var alert models.CommunityAlert
		if err := s.store.Get(ctx, alertKey(id), &alert); err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, err
		}
		if activeOnly && !alert.IsActive {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// RecordScan bumps the scan counter on every active alert of the
// property, exactly once per lookup, and returns the updated alerts.
func (s *AlertService) RecordScan(ctx context.Context, propertyID string) ([]models.CommunityAlert, error) {
	alerts, err := s.Alerts(ctx, propertyID, true)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updated := make([]models.CommunityAlert, 0, len(alerts))
	for _, a := range alerts {
		var alert models.CommunityAlert
		err := s.store.Update(ctx, alertKey(a.ID), func(current []byte) ([]byte, error) {
			if current == nil {
				return nil, store.ErrNotFound
			}
			if err := json.Unmarshal(current, &alert); err != nil {
				return nil, err
			}
			alert.ScanCount++
			alert.LastScanned = &now
			return json.Marshal(&alert)
		})
		if err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, err
		}
		updated = append(updated, alert)
	}
	return updated, nil
}

// Vote applies one upvote or downvote to an alert. Votes are not
// deduplicated per user; counters only grow.
func (s *AlertService) Vote(ctx context.Context, id uuid.UUID, up bool) (*models.CommunityAlert, error) {
	var alert models.CommunityAlert
	err := s.store.Update(ctx, alertKey(id), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		if err := json.Unmarshal(current, &alert); err != nil {
			return nil, err
		}
		if up {
			alert.Upvotes++
		} else {
			alert.Downvotes++
		}
		return json.Marshal(&alert)
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// Deactivate hides an alert without deleting it. Deactivating an
// already-inactive alert is a no-op.
func (s *AlertService) Deactivate(ctx context.Context, id uuid.UUID) (*models.CommunityAlert, error) {
	var alert models.CommunityAlert
	err := s.store.Update(ctx, alertKey(id), func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, store.ErrNotFound
		}
		if err := json.Unmarshal(current, &alert); err != nil {
			return nil, err
		}
		alert.IsActive = false
		return json.Marshal(&alert)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("alert_id", id.String()).Msg("alert deactivated")
	return &alert, nil
}

// Watch subscribes a user to a property. Re-watching overwrites the
// existing subscription and does not grow the active-watch counter.
func (s *AlertService) Watch(ctx context.Context, userID, propertyID string, notifications bool) (*models.PropertyWatch, error) {
	key := watchKey(userID, propertyID)

	var watch models.PropertyWatch
	created := false
	err := s.store.Update(ctx, key, func(current []byte) ([]byte, error) {
		if current == nil {
			created = true
			watch = models.PropertyWatch{
				ID:                   uuid.New(),
				UserID:               userID,
				PropertyID:           propertyID,
				NotificationsEnabled: notifications,
				AddedAt:              time.Now().UTC(),
			}
		} else {
			created = false
			if err := json.Unmarshal(current, &watch); err != nil {
				return nil, err
			}
			watch.NotificationsEnabled = notifications
		}
		return json.Marshal(&watch)
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.stats.WatchesActive.Add(1)
	}
	return &watch, nil
}

// Watches lists every property the user is watching.
func (s *AlertService) Watches(ctx context.Context, userID string) ([]models.PropertyWatch, error) {
	keys, err := s.store.Keys(ctx, watchPrefix(userID))
	if err != nil {
		return nil, err
	}
	watches := make([]models.PropertyWatch, 0, len(keys))
	for _, key := range keys {
		var w models.PropertyWatch
		if err := s.store.Get(ctx, key, &w); err != nil {
			if err == store.ErrNotFound {
				continue
			}
			return nil, err
		}
		watches = append(watches, w)
	}
	return watches, nil
}

// Unwatch removes a user's subscription to a property. Removing a
// watch that does not exist is not an error.
func (s *AlertService) Unwatch(ctx context.Context, userID, propertyID string) error {
	key := watchKey(userID, propertyID)

	var existed bool
	var w models.PropertyWatch
	if err := s.store.Get(ctx, key, &w); err == nil {
		existed = true
	} else if err != store.ErrNotFound {
		return err
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return err
	}
	if existed {
		s.stats.WatchesActive.Add(-1)
	}
	return nil
}
