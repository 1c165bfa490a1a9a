package reservations

import (
	"context"
	"sync"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
)

// MemoryStore keeps reservations in a map. Each method is atomic on its
// own; nothing spans calls. Values are copied in and out.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Reservation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Reservation)}
}

func (m *MemoryStore) Create(_ context.Context, r Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[r.ID]; ok {
		return alreadyExists(r.ID)
	}
	m.items[r.ID] = r
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.items[id]
	if !ok {
		return Reservation{}, notFound(id)
	}
	return r, nil
}

func (m *MemoryStore) List(ctx context.Context) ([]Reservation, error) {
	return m.Find(ctx, Query{Sort: SortSchedule})
}

func (m *MemoryStore) Update(_ context.Context, r Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[r.ID]; !ok {
		return notFound(r.ID)
	}
	m.items[r.ID] = r
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return notFound(id)
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.items[id]
	return ok, nil
}

func (m *MemoryStore) Find(_ context.Context, q Query) ([]Reservation, error) {
	m.mu.RLock()
	out := make([]Reservation, 0, len(m.items))
	for _, r := range m.items {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()

	SortReservations(out, q.Sort)
	return out, nil
}

func (m *MemoryStore) CountByStatus(_ context.Context) (map[Status]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[Status]int)
	for _, r := range m.items {
		counts[r.Status]++
	}
	return counts, nil
}

// Clear drops every reservation.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	m.items = make(map[string]Reservation)
	m.mu.Unlock()
}

func notFound(id string) error {
	return apperr.NewWithContext(apperr.ErrCodeNotFound,
		"reservation not found with id: "+id, map[string]any{"reservation_id": id})
}

func alreadyExists(id string) error {
	return apperr.NewWithContext(apperr.ErrCodeAlreadyExists,
		"reservation already exists with id: "+id, map[string]any{"reservation_id": id})
}
