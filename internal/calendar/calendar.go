// Package calendar is the appointment calendar collaborator: availability
// listing, booking creation, lookup and cancellation.
package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSlotUnavailable is returned when a booking overlaps an existing event.
	ErrSlotUnavailable = errors.New("time slot is no longer available")
	// ErrNotFound is returned for an unknown event id.
	ErrNotFound = errors.New("appointment not found")
	// ErrClosed is returned when the business does not open on a date.
	ErrClosed = errors.New("closed on the requested date")
)

// AvailabilityRequest asks for the free slots of one day.
type AvailabilityRequest struct {
	Date            string
	WorkingHours    string
	DurationMinutes int
	BufferMinutes   int
	Location        *time.Location
}

// BookingRequest describes an appointment to create.
type BookingRequest struct {
	Date     string
	Slot     Slot
	Customer map[string]string
	Location *time.Location
	Summary  string
}

// Booking is a created or fetched appointment.
type Booking struct {
	EventID     string            `json:"event_id"`
	Date        string            `json:"date"`
	Slot        Slot              `json:"slot"`
	Summary     string            `json:"summary"`
	Description string            `json:"description,omitempty"`
	Customer    map[string]string `json:"customer,omitempty"`
	Link        string            `json:"link,omitempty"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
}

// Provider is implemented by calendar backends.
type Provider interface {
	ListAvailableSlots(ctx context.Context, req AvailabilityRequest) ([]Slot, error)
	CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error)
	CancelBooking(ctx context.Context, eventID string) error
	GetBooking(ctx context.Context, eventID string) (*Booking, error)
}
