package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
)

func validBooking() Booking {
	return Booking{
		Name:    "Jordan Lee",
		Email:   "jordan@example.com",
		Phone:   "555-0100",
		Service: "Panel Upgrade",
		Date:    "2026-11-03",
		Time:    "09:30",
	}
}

func TestBooking_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Booking)
		wantMsg string
	}{
		{name: "valid", mutate: func(*Booking) {}},
		{name: "missing name", mutate: func(b *Booking) { b.Name = "" }, wantMsg: "name is required"},
		{name: "missing email", mutate: func(b *Booking) { b.Email = "" }, wantMsg: "email is required"},
		{name: "missing phone", mutate: func(b *Booking) { b.Phone = "" }, wantMsg: "phone is required"},
		{name: "unknown service", mutate: func(b *Booking) { b.Service = "Plumbing" }, wantMsg: "service must be one of"},
		{name: "no service", mutate: func(b *Booking) { b.Service = "" }, wantMsg: "service must be one of"},
		{name: "bad date", mutate: func(b *Booking) { b.Date = "11/03/2026" }, wantMsg: "YYYY-MM-DD"},
		{name: "impossible date", mutate: func(b *Booking) { b.Date = "2026-02-30" }, wantMsg: "YYYY-MM-DD"},
		{name: "bad time", mutate: func(b *Booking) { b.Time = "9:30am" }, wantMsg: "HH:MM"},
		{name: "out of range time", mutate: func(b *Booking) { b.Time = "24:10" }, wantMsg: "HH:MM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(&b)

			err := b.Validate()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestBooking_Normalize(t *testing.T) {
	b := Booking{
		Name:    "  Jordan ",
		Email:   " jordan@example.com",
		Phone:   "555-0100 ",
		Service: " Other ",
		Date:    " 2026-11-03",
		Time:    "09:30 ",
		Notes:   "\tgate code 12\n",
	}
	b.Normalize()

	want := Booking{
		Name:    "Jordan",
		Email:   "jordan@example.com",
		Phone:   "555-0100",
		Service: "Other",
		Date:    "2026-11-03",
		Time:    "09:30",
		Notes:   "gate code 12",
	}
	if diff := cmp.Diff(want, b); diff != "" {
		t.Errorf("Normalize() mismatch (-want +got):\n%s", diff)
	}
}

func TestContact_Validate(t *testing.T) {
	c := Contact{Name: "Sam", Email: "sam@example.com", Message: "  too short  "}
	c.Normalize()
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message must be at least 10 characters")

	c.Message = "Need three outlets added in the garage"
	assert.NoError(t, c.Validate())

	c.Name = ""
	assert.ErrorIs(t, c.Validate(), apperrors.ErrInvalidInput)
}

func TestContact_MessageLengthCountsCharacters(t *testing.T) {
	c := Contact{Name: "Zoë", Email: "zoe@example.com", Message: "ÉÉÉÉÉÉÉÉÉÉ"}
	assert.NoError(t, c.Validate())
}

func TestContactConfirmation(t *testing.T) {
	assert.Equal(t,
		"Thank you for contacting PowerPro Electric. We'll get back to you within 1 hour with your free estimate.",
		ContactConfirmation("PowerPro Electric"))
}

func TestIsService(t *testing.T) {
	assert.True(t, IsService("Smart Home Setup"))
	assert.False(t, IsService("smart home setup"))
}
