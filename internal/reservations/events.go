package reservations

import (
	"context"
	"encoding/json"
	"time"
)

const (
	EventReservationCreated   = "ReservationCreated"
	EventReservationUpdated   = "ReservationUpdated"
	EventReservationConfirmed = "ReservationConfirmed"
	EventReservationCancelled = "ReservationCancelled"
	EventReservationCompleted = "ReservationCompleted"
	EventReservationNoShow    = "ReservationNoShow"
	EventReservationDeleted   = "ReservationDeleted"
)

// EventVersion is bumped whenever a payload changes shape.
const EventVersion = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // reservation id
	Payload       json.RawMessage `json:"payload"`
}

// ReservationPayload carries the reservation as it was after the change.
type ReservationPayload struct {
	Reservation Reservation `json:"reservation"`
}

type DeletedPayload struct {
	ReservationID string `json:"reservation_id"`
}

// Publisher ships lifecycle events. The service treats publish errors as
// non-fatal.
type Publisher interface {
	Publish(ctx context.Context, ev Envelope) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Envelope) error { return nil }

var statusEvents = map[Status]string{
	StatusConfirmed: EventReservationConfirmed,
	StatusCancelled: EventReservationCancelled,
	StatusCompleted: EventReservationCompleted,
	StatusNoShow:    EventReservationNoShow,
}

type traceKey struct{}

// WithTraceID stores the request trace id copied into emitted events.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
