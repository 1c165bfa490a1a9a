package reservations

import (
	"context"
	"sort"
	"strings"
)

// Store persists reservations. Get, Update and Delete return a NOT_FOUND
// error for unknown IDs; Create returns ALREADY_EXISTS when the ID is taken.
type Store interface {
	Create(ctx context.Context, r Reservation) error
	Get(ctx context.Context, id string) (Reservation, error)
	List(ctx context.Context) ([]Reservation, error)
	Update(ctx context.Context, r Reservation) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	Find(ctx context.Context, q Query) ([]Reservation, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// Sort picks the result order of a Query. Ties always fall back to ID
// ascending.
type Sort int

const (
	// SortSchedule orders by date, then time, both ascending.
	SortSchedule Sort = iota
	// SortRecentFirst orders by date descending.
	SortRecentFirst
	// SortLatestFirst orders by date, then time, both descending.
	SortLatestFirst
)

// Query is a declarative filter. Zero-valued fields do not filter.
type Query struct {
	Status       Status
	On           *Date
	From         *Date // inclusive
	To           *Date // inclusive
	Email        string
	NameContains string
	MinPartySize int
	Sort         Sort
}

// Match reports whether r passes every filter in q. Email compares
// case-insensitively; NameContains is a case-insensitive substring match.
func (q Query) Match(r Reservation) bool {
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.On != nil && r.Date != *q.On {
		return false
	}
	if q.From != nil && r.Date.Before(*q.From) {
		return false
	}
	if q.To != nil && r.Date.After(*q.To) {
		return false
	}
	if q.Email != "" && !strings.EqualFold(r.CustomerEmail, q.Email) {
		return false
	}
	if q.NameContains != "" && !strings.Contains(strings.ToLower(r.CustomerName), strings.ToLower(q.NameContains)) {
		return false
	}
	if q.MinPartySize > 0 && r.PartySize < q.MinPartySize {
		return false
	}
	return true
}

// SortReservations orders rs in place.
func SortReservations(rs []Reservation, s Sort) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		var c int
		switch s {
		case SortRecentFirst:
			c = -a.Date.Compare(b.Date)
		case SortLatestFirst:
			if c = -a.Date.Compare(b.Date); c == 0 {
				c = -a.Time.Compare(b.Time)
			}
		default:
			if c = a.Date.Compare(b.Date); c == 0 {
				c = a.Time.Compare(b.Time)
			}
		}
		if c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}
