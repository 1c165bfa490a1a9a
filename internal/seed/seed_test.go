package seed

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = reservations.Date{Year: 2026, Month: 10, Day: 18}

func newService() *reservations.Service {
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	return reservations.NewService(reservations.NewMemoryStore(),
		reservations.WithClock(func() time.Time { return now }))
}

func TestLoad(t *testing.T) {
	doc := `
reservations:
  - customer_name: Alice
    customer_email: alice@example.com
    date: "2026-12-24"
    time: "18:15"
    party_size: 3
    status: confirmed
  - customer_name: Carl
    customer_email: carl@example.com
    days_from_today: 3
    time: "12:00"
    party_size: 2
`
	f, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, f.Reservations, 2)

	d, err := f.Reservations[0].Details(today)
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", d.Date.String())
	assert.Equal(t, reservations.Clock(18, 15), *d.Time)

	d, err = f.Reservations[1].Details(today)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-21", d.Date.String())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("reservations:\n  - guests: 4\n"))
	assert.Error(t, err)
}

func TestLoadEmpty(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Reservations)
}

func TestApplySamples(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	out, err := Apply(ctx, svc, Samples(), today)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, reservations.StatusConfirmed, out[0].Status)
	assert.Equal(t, reservations.StatusCancelled, out[1].Status)
	assert.Equal(t, reservations.StatusPending, out[2].Status)

	tomorrow, err := svc.ByDate(ctx, today.AddDays(1))
	require.NoError(t, err)
	require.Len(t, tomorrow, 2)
	assert.Equal(t, "Bob Johnson", tomorrow[0].CustomerName)
	assert.Equal(t, "John Doe", tomorrow[1].CustomerName)
}

func TestApplyStopsOnInvalidEntry(t *testing.T) {
	f := File{Reservations: []Entry{
		{CustomerName: "Ok", CustomerEmail: "ok@example.com", DaysFromToday: 1, Time: "19:00", PartySize: 2},
		{CustomerName: "Big", CustomerEmail: "big@example.com", DaysFromToday: 1, Time: "19:00", PartySize: 25},
	}}
	out, err := Apply(context.Background(), newService(), f, today)
	require.Error(t, err)
	assert.Len(t, out, 1)
	assert.Contains(t, err.Error(), reservations.MsgPartyTooLarge)
}

func TestDetailsBadTime(t *testing.T) {
	_, err := Entry{Time: "7pm"}.Details(today)
	assert.Error(t, err)
}
