package reservations

import (
	"strings"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
)

// MaxPartySize is the largest party a single reservation may hold.
const MaxPartySize = 20

// Validation messages, one per failed rule.
const (
	MsgNameRequired     = "Customer name is required"
	MsgEmailRequired    = "Customer email is required"
	MsgEmailInvalid     = "Invalid email format"
	MsgDateRequired     = "Reservation date is required"
	MsgDateInPast       = "Reservation date cannot be in the past"
	MsgTimeRequired     = "Reservation time is required"
	MsgPartyNotPositive = "Number of guests must be positive"
	MsgPartyTooLarge    = "Maximum 20 guests allowed per reservation"
)

// Validate checks d against the booking rules as of today. Rules are
// checked in a fixed order and the first failure is returned as an
// INVALID_INPUT error.
func Validate(d Details, today Date) error {
	switch {
	case strings.TrimSpace(d.CustomerName) == "":
		return invalid(MsgNameRequired)
	case strings.TrimSpace(d.CustomerEmail) == "":
		return invalid(MsgEmailRequired)
	case !plausibleEmail(d.CustomerEmail):
		return invalid(MsgEmailInvalid)
	case d.Date == nil || d.Date.IsZero():
		return invalid(MsgDateRequired)
	case d.Date.Before(today):
		return invalid(MsgDateInPast)
	case d.Time == nil:
		return invalid(MsgTimeRequired)
	case d.PartySize <= 0:
		return invalid(MsgPartyNotPositive)
	case d.PartySize > MaxPartySize:
		return invalid(MsgPartyTooLarge)
	}
	return nil
}

// plausibleEmail wants an @, a dot and more than five characters.
func plausibleEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".") && len(s) > 5
}

func invalid(msg string) error {
	return apperr.New(apperr.ErrCodeInvalidInput, msg)
}
