package kafka

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderEventType    = "x-event-type"
	HeaderEventVersion = "x-event-version"
)

// Sink is the part of Producer the publisher needs.
type Sink interface {
	Publish(key, value []byte, headers ...kafka.Header) error
}

// EventPublisher hands reservation lifecycle events to a Producer, keyed
// by reservation id.
type EventPublisher struct {
	Sink Sink
}

func (p *EventPublisher) Publish(_ context.Context, ev reservations.Envelope) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Sink.Publish(reservations.PartitionKey(ev.CorrelationID), b,
		kafka.Header{Key: HeaderEventType, Value: []byte(ev.EventType)},
		kafka.Header{Key: HeaderEventVersion, Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}
