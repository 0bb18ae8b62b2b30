package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	BookingCreated       = "booking.created"
	BookingUpdated       = "booking.updated"
	BookingStatusChanged = "booking.status_changed"
	BookingCheckedIn     = "booking.checked_in"

	InvoiceCreated       = "invoice.created"
	InvoiceUpdated       = "invoice.updated"
	InvoiceStatusChanged = "invoice.status_changed"
	InvoiceDeleted       = "invoice.deleted"

	OrderCreated   = "order.created"
	OrderItemAdded = "order.item_added"
	OrderConfirmed = "order.confirmed"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	BranchID   int64     `json:"branchId,omitempty"`
	EntityID   int64     `json:"entityId"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func New(eventType string, branchID, entityID int64, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		BranchID:   branchID,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

func (e Event) IsBooking() bool {
	return strings.HasPrefix(e.Type, "booking.")
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Fanout delivers to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes after a committed change. Failures are logged, never returned.
func Emit(ctx context.Context, p Publisher, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("event", ev.Type).
			Int64("entity_id", ev.EntityID).
			Msg("failed to publish event")
	}
}
