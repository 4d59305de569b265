// Package events publishes interview phase transitions for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stemsi/mockview-backend/internal/interview"
)

// SubjectPrefix prefixes every published subject.
const SubjectPrefix = "interview.events"

// SessionEvent is the wire form of one transition edge.
type SessionEvent struct {
	SessionID  string              `json:"session_id"`
	Type       interview.EventType `json:"type"`
	Phase      interview.Phase     `json:"phase"`
	From       interview.Phase     `json:"from,omitempty"`
	Remaining  int                 `json:"remaining_seconds"`
	Score      *int                `json:"score,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Subject returns the NATS subject for e.
func (e SessionEvent) Subject() string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, e.SessionID, e.Type)
}

// Publisher delivers session events.
type Publisher interface {
	Publish(ctx context.Context, e SessionEvent) error
}

// NATSPublisher publishes session events as JSON on core NATS.
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher wraps an established connection.
func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

// Publish sends e on its subject.
func (p *NATSPublisher) Publish(ctx context.Context, e SessionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(e.Subject(), data); err != nil {
		return fmt.Errorf("publish %s: %w", e.Subject(), err)
	}
	return nil
}

// NopPublisher drops every event. Used when NATS is not configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, SessionEvent) error { return nil }
