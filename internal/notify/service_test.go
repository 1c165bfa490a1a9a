package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	kafkax "github.com/ariefcatur/go-restaurant-reservations/internal/kafka"
	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memDedup struct {
	seen map[string]bool
	err  error
}

func (d *memDedup) FirstSeen(_ context.Context, id string) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func (d *memDedup) Forget(_ context.Context, id string) error {
	delete(d.seen, id)
	return nil
}

// captureSender fails while failures is positive, then records sends.
type captureSender struct {
	sent     []Notification
	failures int
}

func (c *captureSender) Send(_ context.Context, n Notification) error {
	if c.failures > 0 {
		c.failures--
		return errors.New("smtp down")
	}
	c.sent = append(c.sent, n)
	return nil
}

func message(t *testing.T, eventID, eventType string) kafkago.Message {
	t.Helper()
	r := reservations.Reservation{
		ID:            "RSV-1",
		CustomerName:  "John Doe",
		CustomerEmail: "john@example.com",
		Date:          reservations.Date{Year: 2026, Month: 10, Day: 19},
		Time:          reservations.Clock(19, 30),
		PartySize:     4,
		Status:        reservations.StatusConfirmed,
	}
	env := reservations.Envelope{
		EventID:       eventID,
		EventType:     eventType,
		EventVersion:  reservations.EventVersion,
		OccurredAt:    time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
		CorrelationID: r.ID,
		Payload:       kafkax.MustMarshal(reservations.ReservationPayload{Reservation: r}),
	}
	return kafkago.Message{Key: []byte(r.ID), Value: kafkax.MustMarshal(env)}
}

func newService() (*Service, *captureSender) {
	out := &captureSender{}
	return &Service{
		Dedup:  &memDedup{seen: map[string]bool{}},
		Sender: out,
		Log:    zap.NewNop(),
	}, out
}

func TestHandleEventConfirmed(t *testing.T) {
	svc, out := newService()

	require.NoError(t, svc.HandleEvent(context.Background(), message(t, "e1", reservations.EventReservationConfirmed)))
	require.Len(t, out.sent, 1)
	n := out.sent[0]
	assert.Equal(t, "john@example.com", n.Email)
	assert.Equal(t, "Your reservation is confirmed", n.Subject)
	assert.Contains(t, n.Body, "2026-10-19 at 19:30")
	assert.Contains(t, n.Body, "RSV-1")
}

func TestHandleEventDedup(t *testing.T) {
	svc, out := newService()
	m := message(t, "e1", reservations.EventReservationCreated)

	require.NoError(t, svc.HandleEvent(context.Background(), m))
	require.NoError(t, svc.HandleEvent(context.Background(), m))
	assert.Len(t, out.sent, 1)
}

func TestHandleEventSkipsOtherTypes(t *testing.T) {
	svc, out := newService()
	for _, typ := range []string{
		reservations.EventReservationUpdated,
		reservations.EventReservationCompleted,
		reservations.EventReservationNoShow,
		reservations.EventReservationDeleted,
	} {
		require.NoError(t, svc.HandleEvent(context.Background(), message(t, typ, typ)))
	}
	assert.Empty(t, out.sent)
}

func TestHandleEventBadJSON(t *testing.T) {
	svc, out := newService()
	err := svc.HandleEvent(context.Background(), kafkago.Message{Value: []byte("{not json")})
	assert.NoError(t, err)
	assert.Empty(t, out.sent)
}

func TestHandleEventDedupFailureRetries(t *testing.T) {
	svc, out := newService()
	svc.Dedup = &memDedup{err: errors.New("redis down")}

	err := svc.HandleEvent(context.Background(), message(t, "e1", reservations.EventReservationCancelled))
	assert.Error(t, err)
	assert.Empty(t, out.sent)
}

func TestHandleEventRedeliveryAfterSendFailure(t *testing.T) {
	svc, out := newService()
	out.failures = 1
	m := message(t, "e1", reservations.EventReservationConfirmed)

	err := svc.HandleEvent(context.Background(), m)
	require.Error(t, err)
	assert.Empty(t, out.sent)

	require.NoError(t, svc.HandleEvent(context.Background(), m))
	require.Len(t, out.sent, 1)
	assert.Equal(t, "Your reservation is confirmed", out.sent[0].Subject)

	require.NoError(t, svc.HandleEvent(context.Background(), m))
	assert.Len(t, out.sent, 1)
}
