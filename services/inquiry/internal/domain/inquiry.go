package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
)

// Kind distinguishes the two site forms.
type Kind string

const (
	KindBooking Kind = "booking"
	KindContact Kind = "contact"
)

// Layouts of the booking form's date and time inputs.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// MinContactMessage is the shortest contact message accepted, in characters
// after trimming.
const MinContactMessage = 10

// BookingConfirmation is shown once a booking request is accepted.
const BookingConfirmation = "Thank you! Your booking request has been received."

// Services are the options of the booking form.
var Services = []string{
	"Emergency Repair",
	"Panel Upgrade",
	"Lighting Installation",
	"Smart Home Setup",
	"Other",
}

// IsService reports whether s is one of Services.
func IsService(s string) bool {
	return slices.Contains(Services, s)
}

// ContactConfirmation is shown once a contact message is accepted.
func ContactConfirmation(company string) string {
	return fmt.Sprintf("Thank you for contacting %s. We'll get back to you within 1 hour with your free estimate.", company)
}

// Booking is an appointment request.
type Booking struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Notes   string `json:"notes,omitempty"`
}

// Normalize trims every field.
func (b *Booking) Normalize() {
	b.Name = strings.TrimSpace(b.Name)
	b.Email = strings.TrimSpace(b.Email)
	b.Phone = strings.TrimSpace(b.Phone)
	b.Service = strings.TrimSpace(b.Service)
	b.Date = strings.TrimSpace(b.Date)
	b.Time = strings.TrimSpace(b.Time)
	b.Notes = strings.TrimSpace(b.Notes)
}

// Validate checks a normalized booking.
func (b *Booking) Validate() error {
	switch {
	case b.Name == "":
		return apperrors.InvalidInput("name is required")
	case b.Email == "":
		return apperrors.InvalidInput("email is required")
	case b.Phone == "":
		return apperrors.InvalidInput("phone is required")
	case !IsService(b.Service):
		return apperrors.InvalidInput(fmt.Sprintf("service must be one of: %s", strings.Join(Services, ", ")))
	}
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return apperrors.InvalidInput("date must be formatted YYYY-MM-DD")
	}
	if _, err := time.Parse(TimeLayout, b.Time); err != nil {
		return apperrors.InvalidInput("time must be formatted HH:MM")
	}
	return nil
}

// Contact is a message from the contact form.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Message string `json:"message"`
}

// Normalize trims every field.
func (c *Contact) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Company = strings.TrimSpace(c.Company)
	c.Message = strings.TrimSpace(c.Message)
}

// Validate checks a normalized contact message.
func (c *Contact) Validate() error {
	switch {
	case c.Name == "":
		return apperrors.InvalidInput("Name is required")
	case c.Email == "":
		return apperrors.InvalidInput("Email is required")
	case c.Message == "":
		return apperrors.InvalidInput("Message is required")
	case utf8.RuneCountInString(c.Message) < MinContactMessage:
		return apperrors.InvalidInput(fmt.Sprintf("Message must be at least %d characters", MinContactMessage))
	}
	return nil
}

// Inquiry is one accepted form submission as handed to a Sender. Exactly
// one of Booking and Contact is set, matching Kind.
type Inquiry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Booking     *Booking  `json:"booking,omitempty"`
	Contact     *Contact  `json:"contact,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
