package events

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Event is a lifecycle notification emitted after a mutating call commits.
type Event struct {
	Type       string    `json:"type"`
	TreasuryID string    `json:"treasury_id"`
	GrantID    string    `json:"grant_id,omitempty"`
	Amount     uint64    `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// RoutingKey joins the configured prefix and the event type.
func RoutingKey(prefix, eventType string) string {
	prefix = strings.Trim(prefix, ".")
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MemoryPublisher keeps published events in order.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *MemoryPublisher) Publish(_ context.Context, evt Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
