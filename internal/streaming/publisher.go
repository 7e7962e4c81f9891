package streaming

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"propradar/internal/config"
	"propradar/pkg/logger"
)

// EventType identifies a property lifecycle event.
type EventType string

const (
	EventPropertyFlagged      EventType = "property.flagged"
	EventPropertyVerifiedScam EventType = "property.verified_scam"
	EventAlertCreated         EventType = "alert.created"
)

// Event is the payload published to NATS when a property's state
// changes in a way downstream consumers care about.
type Event struct {
	Type       EventType      `json:"type"`
	PropertyID string         `json:"property_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher publishes lifecycle events to NATS. A nil or disabled
// publisher is a no-op, so callers never need to branch on whether
// eventing is configured.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	logger *logger.Logger

	mu        sync.RWMutex
	connected bool
}

// NewPublisher connects to NATS. It is only called when events are
// enabled in configuration.
func NewPublisher(cfg config.EventsConfig, log *logger.Logger) (*Publisher, error) {
	log = log.WithComponent("events")

	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}

	log.Info().Str("url", url).Str("prefix", cfg.SubjectPrefix).Msg("connecting to NATS")

	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Publisher{
		conn:      conn,
		prefix:    cfg.SubjectPrefix,
		logger:    log,
		connected: true,
	}, nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil {
		p.conn.Close()
		p.connected = false
	}
}

// Disabled reports whether publishing is a no-op.
func (p *Publisher) Disabled() bool {
	if p == nil {
		return true
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.connected
}

// Publish sends the event. Failures are logged, not returned: eventing
// is best-effort and must never fail the request that triggered it.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p.Disabled() {
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("type", string(event.Type)).Msg("failed to marshal event")
		return
	}

	subject := string(event.Type)
	if p.prefix != "" {
		subject = p.prefix + "." + subject
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
		return
	}

	p.logger.Debug().
		Str("subject", subject).
		Str("property_id", event.PropertyID).
		Msg("published event")
}
