// Package seed loads reservation fixtures from YAML and applies them to a
// reservation service.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ariefcatur/go-restaurant-reservations/internal/reservations"
	"gopkg.in/yaml.v3"
)

// File is the top level of a seed document.
type File struct {
	Reservations []Entry `yaml:"reservations"`
}

// Entry describes one reservation. Either Date or DaysFromToday places it
// on the calendar; Date wins when both are set. Status, when not PENDING,
// is applied after creation through the matching service transition.
type Entry struct {
	CustomerName    string `yaml:"customer_name"`
	CustomerEmail   string `yaml:"customer_email"`
	CustomerPhone   string `yaml:"customer_phone"`
	Date            string `yaml:"date"`
	DaysFromToday   int    `yaml:"days_from_today"`
	Time            string `yaml:"time"`
	PartySize       int    `yaml:"party_size"`
	SpecialRequests string `yaml:"special_requests"`
	Status          string `yaml:"status"`
}

func Load(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	return f, nil
}

func LoadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, err
	}
	defer fh.Close()
	return Load(fh)
}

// Details resolves e against today.
func (e Entry) Details(today reservations.Date) (reservations.Details, error) {
	date := today.AddDays(e.DaysFromToday)
	if e.Date != "" {
		d, err := reservations.ParseDate(e.Date)
		if err != nil {
			return reservations.Details{}, err
		}
		date = d
	}
	clock, err := reservations.ParseTimeOfDay(e.Time)
	if err != nil {
		return reservations.Details{}, err
	}
	return reservations.Details{
		CustomerName:    e.CustomerName,
		CustomerEmail:   e.CustomerEmail,
		CustomerPhone:   e.CustomerPhone,
		Date:            &date,
		Time:            &clock,
		PartySize:       e.PartySize,
		SpecialRequests: e.SpecialRequests,
	}, nil
}

// Apply creates every entry in order and moves it to its target status.
// It stops at the first failure.
func Apply(ctx context.Context, svc *reservations.Service, f File, today reservations.Date) ([]reservations.Reservation, error) {
	out := make([]reservations.Reservation, 0, len(f.Reservations))
	for i, e := range f.Reservations {
		d, err := e.Details(today)
		if err != nil {
			return out, fmt.Errorf("entry %d: %w", i, err)
		}
		r, err := svc.Create(ctx, d)
		if err != nil {
			return out, fmt.Errorf("entry %d (%s): %w", i, e.CustomerName, err)
		}
		if e.Status != "" {
			st, err := reservations.ParseStatus(e.Status)
			if err != nil {
				return out, fmt.Errorf("entry %d: %w", i, err)
			}
			if r, err = transition(ctx, svc, r.ID, st, r); err != nil {
				return out, fmt.Errorf("entry %d: %w", i, err)
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func transition(ctx context.Context, svc *reservations.Service, id string, st reservations.Status, cur reservations.Reservation) (reservations.Reservation, error) {
	switch st {
	case reservations.StatusConfirmed:
		return svc.Confirm(ctx, id)
	case reservations.StatusCancelled:
		return svc.Cancel(ctx, id)
	case reservations.StatusCompleted:
		return svc.Complete(ctx, id)
	case reservations.StatusNoShow:
		return svc.MarkNoShow(ctx, id)
	}
	return cur, nil
}

// Samples is the built-in demo set: John Doe and Bob Johnson tomorrow,
// Jane Smith the day after. John is confirmed and Jane cancelled.
func Samples() File {
	return File{Reservations: []Entry{
		{
			CustomerName: "John Doe", CustomerEmail: "john@example.com", CustomerPhone: "+1-555-0101",
			DaysFromToday: 1, Time: "19:30", PartySize: 4, SpecialRequests: "Window table preferred",
			Status: "CONFIRMED",
		},
		{
			CustomerName: "Jane Smith", CustomerEmail: "jane@example.com", CustomerPhone: "+1-555-0102",
			DaysFromToday: 2, Time: "20:00", PartySize: 2, SpecialRequests: "Anniversary dinner",
			Status: "CANCELLED",
		},
		{
			CustomerName: "Bob Johnson", CustomerEmail: "bob@example.com",
			DaysFromToday: 1, Time: "18:00", PartySize: 6,
		},
	}}
}
