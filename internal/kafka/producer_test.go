package kafka

import (
	"context"
	"testing"

	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerPublishAfterClose(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, reservations.TopicReservationEvents, 4, nil)

	require.NoError(t, p.Publish([]byte("RSV-1"), []byte("{}")))
	p.Close()
	p.Close()

	assert.NotPanics(t, func() {
		err := p.Publish([]byte("RSV-1"), []byte("{}"))
		assert.ErrorIs(t, err, ErrProducerClosed)
	})
}

func TestProducerPublishAfterLoopExit(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, reservations.TopicReservationEvents, 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()
	p.WaitClosed()

	err := p.Publish([]byte("RSV-1"), []byte("{}"))
	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestEventPublisherReportsClosedProducer(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, reservations.TopicReservationEvents, 1, nil)
	p.Close()

	pub := &EventPublisher{Sink: p}
	err := pub.Publish(context.Background(), reservations.Envelope{EventID: "evt-1", CorrelationID: "RSV-1"})
	assert.ErrorIs(t, err, ErrProducerClosed)
}
