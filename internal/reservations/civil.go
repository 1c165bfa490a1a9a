package reservations

import (
	"fmt"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	clockLayout   = "15:04"
	clockLayoutHS = "15:04:05"
)

// Date is a calendar date with no zone. Reservations are booked in the
// restaurant's wall clock; nothing here converts between zones.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf takes the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d == Date{} }

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) AddDays(n int) Date { return DateOf(d.Time().AddDate(0, 0, n)) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func (d Date) String() string { return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day) }

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// TimeOfDay is a wall clock time with no date or zone.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// Clock is shorthand for an hh:mm TimeOfDay.
func Clock(hour, minute int) TimeOfDay { return TimeOfDay{Hour: hour, Minute: minute} }

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	layout := clockLayout
	if len(s) > len(clockLayout) {
		layout = clockLayoutHS
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// TimeOfDayFromSeconds is the inverse of Seconds.
func TimeOfDayFromSeconds(sec int) TimeOfDay {
	return TimeOfDay{Hour: sec / 3600, Minute: sec % 3600 / 60, Second: sec % 60}
}

// Seconds since midnight.
func (t TimeOfDay) Seconds() int { return t.Hour*3600 + t.Minute*60 + t.Second }

func (t TimeOfDay) Compare(o TimeOfDay) int { return cmpInt(t.Seconds(), o.Seconds()) }

func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
