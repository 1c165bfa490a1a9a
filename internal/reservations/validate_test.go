package reservations

import (
	"testing"

	apperr "github.com/ariefcatur/go-restaurant-reservations/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = Date{Year: 2026, Month: 10, Day: 18}

func validDetails() Details {
	d := testToday.AddDays(1)
	tm := Clock(19, 30)
	return Details{
		CustomerName:  "John Doe",
		CustomerEmail: "john@example.com",
		Date:          &d,
		Time:          &tm,
		PartySize:     4,
	}
}

func TestValidate(t *testing.T) {
	past := testToday.AddDays(-1)

	tests := []struct {
		name   string
		mutate func(*Details)
		want   string
	}{
		{"blank name", func(d *Details) { d.CustomerName = "  " }, MsgNameRequired},
		{"missing email", func(d *Details) { d.CustomerEmail = "" }, MsgEmailRequired},
		{"email without at", func(d *Details) { d.CustomerEmail = "john.example.com" }, MsgEmailInvalid},
		{"email without dot", func(d *Details) { d.CustomerEmail = "john@example" }, MsgEmailInvalid},
		{"email too short", func(d *Details) { d.CustomerEmail = "a@b.c" }, MsgEmailInvalid},
		{"missing date", func(d *Details) { d.Date = nil }, MsgDateRequired},
		{"past date", func(d *Details) { d.Date = &past }, MsgDateInPast},
		{"missing time", func(d *Details) { d.Time = nil }, MsgTimeRequired},
		{"zero guests", func(d *Details) { d.PartySize = 0 }, MsgPartyNotPositive},
		{"negative guests", func(d *Details) { d.PartySize = -1 }, MsgPartyNotPositive},
		{"too many guests", func(d *Details) { d.PartySize = 21 }, MsgPartyTooLarge},
		{"first failure wins", func(d *Details) { d.CustomerName, d.PartySize = "", 0 }, MsgNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)
			err := Validate(d, testToday)
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, apperr.ErrCodeInvalidInput))

			var se *apperr.StructuredError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.want, se.Message)
		})
	}
}

func TestValidateAccepts(t *testing.T) {
	for _, n := range []int{1, 20} {
		d := validDetails()
		d.PartySize = n
		assert.NoError(t, Validate(d, testToday), n)
	}

	d := validDetails()
	d.Date = &testToday
	assert.NoError(t, Validate(d, testToday), "today is not in the past")
}
