package reservations

import "time"

type Reservation struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone,omitempty"`
	Date            Date      `json:"reservation_date"`
	Time            TimeOfDay `json:"reservation_time"`
	PartySize       int       `json:"party_size"`
	SpecialRequests string    `json:"special_requests,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Details is the caller-editable part of a reservation, used for create
// and update. Nil Date/Time mean the field was not supplied.
type Details struct {
	ID              string     `json:"id,omitempty"` // honoured on create only when client IDs are enabled
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerPhone   string     `json:"customer_phone,omitempty"`
	Date            *Date      `json:"reservation_date"`
	Time            *TimeOfDay `json:"reservation_time"`
	PartySize       int        `json:"party_size"`
	SpecialRequests string     `json:"special_requests,omitempty"`
}

// apply copies every mutable field of d onto r. d must already be valid.
func (r *Reservation) apply(d Details) {
	r.CustomerName = d.CustomerName
	r.CustomerEmail = d.CustomerEmail
	r.CustomerPhone = d.CustomerPhone
	r.Date = *d.Date
	r.Time = *d.Time
	r.PartySize = d.PartySize
	r.SpecialRequests = d.SpecialRequests
}

// touch stamps UpdatedAt, never letting it fall behind CreatedAt.
func (r *Reservation) touch(now time.Time) {
	if now.Before(r.CreatedAt) {
		now = r.CreatedAt
	}
	r.UpdatedAt = now
}

// Stats is a per-status count snapshot. ByStatus always has all five keys.
type Stats struct {
	Total    int            `json:"total_count"`
	ByStatus map[Status]int `json:"by_status"`
}

func (s Stats) Count(st Status) int { return s.ByStatus[st] }
