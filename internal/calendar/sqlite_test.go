package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ziadkadry99/apptagent/internal/db"
)

func newTestSQLiteCalendar(t *testing.T) *SQLiteCalendar {
	t.Helper()
	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return NewSQLiteCalendar(d, "")
}

func TestSQLiteCalendarBookingLifecycle(t *testing.T) {
	ctx := context.Background()
	cal := newTestSQLiteCalendar(t)
	loc, _ := time.LoadLocation("America/New_York")
	avail := AvailabilityRequest{Date: "2024-01-02", WorkingHours: "09:00-12:00", DurationMinutes: 60, Location: loc}

	slots, err := cal.ListAvailableSlots(ctx, avail)
	if err != nil {
		t.Fatalf("ListAvailableSlots: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 free slots, got %v", slots)
	}

	booking, err := cal.CreateBooking(ctx, BookingRequest{
		Date:     "2024-01-02",
		Slot:     Slot{Start: "10:00", End: "11:00"},
		Customer: map[string]string{"name": "John Smith", "phone": "555-123-4567", "email": "john@example.com"},
		Location: loc,
	})
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}
	if booking.EventID == "" {
		t.Fatal("expected an event id")
	}
	if booking.Summary != "Appointment - John Smith" {
		t.Errorf("summary: got %q", booking.Summary)
	}

	slots, err = cal.ListAvailableSlots(ctx, avail)
	if err != nil {
		t.Fatalf("ListAvailableSlots: %v", err)
	}
	got := Strings(slots)
	if len(got) != 2 || got[0] != "09:00-10:00" || got[1] != "11:00-12:00" {
		t.Errorf("after booking: got %v", got)
	}

	fetched, err := cal.GetBooking(ctx, booking.EventID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if fetched.Slot.String() != "10:00-11:00" || fetched.Customer["phone"] != "555-123-4567" {
		t.Errorf("fetched: %+v", fetched)
	}
	if fetched.Start.Location().String() != "America/New_York" || fetched.Start.Hour() != 10 {
		t.Errorf("fetched start: %v", fetched.Start)
	}

	if err := cal.CancelBooking(ctx, booking.EventID); err != nil {
		t.Fatalf("CancelBooking: %v", err)
	}
	if _, err := cal.GetBooking(ctx, booking.EventID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBooking after cancel: expected ErrNotFound, got %v", err)
	}
	if err := cal.CancelBooking(ctx, booking.EventID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second cancel: expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteCalendarRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	cal := newTestSQLiteCalendar(t)
	req := BookingRequest{Date: "2024-01-02", Slot: Slot{Start: "09:00", End: "10:00"}, Location: time.UTC}
	if _, err := cal.CreateBooking(ctx, req); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	req.Slot = Slot{Start: "09:30", End: "10:30"}
	if _, err := cal.CreateBooking(ctx, req); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("expected ErrSlotUnavailable, got %v", err)
	}
	req.Slot = Slot{Start: "10:00", End: "11:00"}
	if _, err := cal.CreateBooking(ctx, req); err != nil {
		t.Errorf("adjacent booking should succeed: %v", err)
	}
}

func TestSQLiteCalendarRejectsInvalidSlot(t *testing.T) {
	cal := newTestSQLiteCalendar(t)
	_, err := cal.CreateBooking(context.Background(), BookingRequest{Date: "2024-01-02", Slot: Slot{Start: "11:00", End: "10:00"}})
	if err == nil {
		t.Fatal("expected error for inverted slot")
	}
}

func TestSQLiteCalendarClosedDay(t *testing.T) {
	cal := newTestSQLiteCalendar(t)
	slots, err := cal.ListAvailableSlots(context.Background(), AvailabilityRequest{Date: "2024-01-06", DurationMinutes: 60})
	if err != nil || len(slots) != 0 {
		t.Errorf("got %v, %v", slots, err)
	}
}
