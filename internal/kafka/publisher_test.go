package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	key, value []byte
	headers    []kafka.Header
}

func (c *captureSink) Publish(key, value []byte, headers ...kafka.Header) error {
	c.key, c.value, c.headers = key, value, headers
	return nil
}

func TestEventPublisher(t *testing.T) {
	sink := &captureSink{}
	pub := &EventPublisher{Sink: sink}

	ev := reservations.Envelope{
		EventID:       "evt-1",
		EventType:     reservations.EventReservationConfirmed,
		EventVersion:  reservations.EventVersion,
		OccurredAt:    time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Producer:      "reservation-api",
		CorrelationID: "RSV-1",
		Payload:       MustMarshal(reservations.DeletedPayload{ReservationID: "RSV-1"}),
	}
	require.NoError(t, pub.Publish(context.Background(), ev))

	assert.Equal(t, []byte("RSV-1"), sink.key)
	require.Len(t, sink.headers, 2)
	assert.Equal(t, HeaderEventType, sink.headers[0].Key)
	assert.Equal(t, []byte(reservations.EventReservationConfirmed), sink.headers[0].Value)
	assert.Equal(t, []byte("1"), sink.headers[1].Value)

	var got reservations.Envelope
	require.NoError(t, json.Unmarshal(sink.value, &got))
	assert.Equal(t, "evt-1", got.EventID)

	p, err := UnwrapPayload[reservations.DeletedPayload](got.Payload)
	require.NoError(t, err)
	assert.Equal(t, "RSV-1", p.ReservationID)
}

func TestUnwrapPayloadError(t *testing.T) {
	_, err := UnwrapPayload[reservations.DeletedPayload](json.RawMessage(`{"reservation_id":`))
	assert.Error(t, err)
}
