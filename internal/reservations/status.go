package reservations

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
	StatusNoShow    Status = "NO_SHOW"
)

// Any status can be set from any other; there is no
// transition table.
var statusLabels = map[Status]string{
	StatusPending:   "Pending",
	StatusConfirmed: "Confirmed",
	StatusCancelled: "Cancelled",
	StatusCompleted: "Completed",
	StatusNoShow:    "No Show",
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow}
}

func (s Status) IsValid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the display name, e.g. "No Show".
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Status) String() string { return string(s) }

// ParseStatus accepts the enum value, its label, or a dashed/lowercase
// spelling ("no-show", "confirmed").
func ParseStatus(v string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(v))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	s := Status(norm)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown reservation status %q", v)
	}
	return s, nil
}
