// Package events publishes booking lifecycle notifications to a message
// broker. Publishing is best-effort: callers log failures and carry on.
package events

import (
	"context"
	"time"
)

// Event types published on the booking channel.
const (
	TypeBookingCreated  = "booking.created"
	TypeBookingApproved = "booking.approved"
	TypeBookingRejected = "booking.rejected"
)

// Event describes a booking lifecycle transition.
type Event struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	ItemID     int64     `json:"item_id"`
	BookerID   int64     `json:"booker_id"`
	OwnerID    int64     `json:"owner_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher discards events. Used when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (*NoopPublisher) Publish(context.Context, Event) error {
	return nil
}

func (*NoopPublisher) Close() error {
	return nil
}
