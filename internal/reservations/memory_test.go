package reservations

import (
	"context"
	"fmt"
	"sync"
	"testing"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(id, name, email string, day, hour, party int, st Status) Reservation {
	return Reservation{
		ID:            id,
		CustomerName:  name,
		CustomerEmail: email,
		Date:          testToday.AddDays(day),
		Time:          Clock(hour, 0),
		PartySize:     party,
		Status:        st,
	}
}

func seedStore(t *testing.T) *MemoryStore {
	t.Helper()
	m := NewMemoryStore()
	ctx := context.Background()
	for _, r := range []Reservation{
		fixture("c", "Carol King", "carol@example.com", 2, 18, 2, StatusPending),
		fixture("a", "Alice Smith", "alice@example.com", 1, 20, 6, StatusConfirmed),
		fixture("b", "Bob Johnson", "bob@example.com", 1, 18, 4, StatusPending),
		fixture("d", "Dan Johnson", "BOB@example.com", 1, 18, 10, StatusCancelled),
	} {
		require.NoError(t, m.Create(ctx, r))
	}
	return m
}

func ids(rs []Reservation) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestMemoryStoreCRUD(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	err := m.Create(ctx, fixture("a", "Again", "x@example.com", 1, 12, 1, StatusPending))
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeAlreadyExists))

	r, err := m.Get(ctx, "a")
	require.NoError(t, err)
	r.PartySize = 7
	require.NoError(t, m.Update(ctx, r))

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 7, got.PartySize)

	ok, err := m.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Get(ctx, "a")
	assert.True(t, apperr.IsCode(err, apperr.ErrCodeNotFound))
	assert.True(t, apperr.IsCode(m.Delete(ctx, "a"), apperr.ErrCodeNotFound))
	assert.True(t, apperr.IsCode(m.Update(ctx, r), apperr.ErrCodeNotFound))

	m.Clear()
	all, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemoryStoreCopies(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	r, err := m.Get(ctx, "b")
	require.NoError(t, err)
	r.CustomerName = "changed"

	again, err := m.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Bob Johnson", again.CustomerName)
}

func TestMemoryStoreFindSorts(t *testing.T) {
	m := seedStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"schedule", Query{Sort: SortSchedule}, []string{"b", "d", "a", "c"}},
		{"recent first", Query{Sort: SortRecentFirst}, []string{"c", "a", "b", "d"}},
		{"latest first", Query{Sort: SortLatestFirst}, []string{"c", "a", "b", "d"}},
		{"status", Query{Status: StatusPending}, []string{"b", "c"}},
		{"email any case", Query{Email: "bob@EXAMPLE.com", Sort: SortRecentFirst}, []string{"b", "d"}},
		{"name", Query{NameContains: "JOHNSON", Sort: SortLatestFirst}, []string{"b", "d"}},
		{"party size", Query{MinPartySize: 5}, []string{"d", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Find(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	on := testToday.AddDays(2)
	got, err := m.Find(ctx, Query{On: &on})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(got))

	from, to := testToday.AddDays(1), testToday.AddDays(1)
	got, err = m.Find(ctx, Query{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d", "a"}, ids(got))
}

func TestMemoryStoreSortsUseTimeAgainstIDOrder(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, m.Create(ctx, fixture("a", "Amy Reed", "amy@example.com", 1, 18, 2, StatusPending)))
	require.NoError(t, m.Create(ctx, fixture("b", "Ben Reed", "ben@example.com", 1, 21, 2, StatusPending)))

	latest, err := m.Find(ctx, Query{Sort: SortLatestFirst})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(latest))

	recent, err := m.Find(ctx, Query{Sort: SortRecentFirst})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(recent))

	schedule, err := m.Find(ctx, Query{Sort: SortSchedule})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(schedule))
}

func TestMemoryStoreCountByStatus(t *testing.T) {
	counts, err := seedStore(t).CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusPending: 2, StatusConfirmed: 1, StatusCancelled: 1}, counts)
}

func TestMemoryStoreConcurrent(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("r-%02d", i)
			_ = m.Create(ctx, fixture(id, "Guest", "guest@example.com", 1, 19, 2, StatusPending))
			_, _ = m.Find(ctx, Query{Status: StatusPending})
			_ = m.Delete(ctx, id)
		}(i)
	}
	wg.Wait()

	all, err := m.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
