package agent

import (
	"context"
	"fmt"
	"maps"
	"regexp"

	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/calendar"
	"github.com/ziadkadry99/apptagent/internal/conversation"
	"github.com/ziadkadry99/apptagent/internal/metrics"
	"github.com/ziadkadry99/apptagent/internal/records"
)

// confirmationPattern matches the words that count as the customer saying
// yes to a booking.
var confirmationPattern = regexp.MustCompile(`(?i)\b(yes|correct|confirm|book it|sounds good|perfect|right)\b`)

// bookingCheck is one condition of the booking predicate.
type bookingCheck struct {
	name string
	ok   func(c *conversation.Context, reply string) bool
}

// bookingChecks must all hold before a conversational booking is made.
var bookingChecks = []bookingCheck{
	{"slot_selected", func(c *conversation.Context, _ string) bool { return c.SelectedSlot != nil }},
	{"info_complete", func(c *conversation.Context, _ string) bool { return c.IsInfoComplete() }},
	{"not_booked", func(c *conversation.Context, _ string) bool { return !c.AppointmentBooked }},
	{"confirmed", func(c *conversation.Context, reply string) bool {
		for _, msg := range append(c.LastUserMessages(2), reply) {
			if confirmationPattern.MatchString(msg) {
				return true
			}
		}
		return false
	}},
	{"stage", func(c *conversation.Context, _ string) bool {
		return c.Stage == conversation.StageInfoCollection || c.Stage == conversation.StageConfirmation
	}},
	{"slot_date", func(c *conversation.Context, _ string) bool { return c.SlotsDate == c.RequestedDate }},
}

// readyToBook evaluates the booking predicate against c before its stage
// is recomputed. The names of the failing checks are returned.
func (a *Agent) readyToBook(c *conversation.Context, reply string) (bool, []string) {
	var blocked []string
	for _, check := range bookingChecks {
		if !check.ok(c, reply) {
			blocked = append(blocked, check.name)
		}
	}
	return len(blocked) == 0, blocked
}

// book commits the selected slot. A calendar failure replaces the reply
// with an apology and leaves c untouched so the booking can be retried.
func (a *Agent) book(ctx context.Context, c *conversation.Context, reply string) (string, bool, error) {
	slot := *c.SelectedSlot
	date := c.SlotsDate
	name := c.CustomerInfo["name"]
	if name == "" {
		name = "Customer"
	}

	booking, err := a.calendar.CreateBooking(ctx, calendar.BookingRequest{
		Date:     date,
		Slot:     slot,
		Customer: maps.Clone(c.CustomerInfo),
		Location: a.loc,
		Summary:  fmt.Sprintf("%s - %s", a.profile.BusinessName, name),
	})
	if err != nil {
		a.log.Warn("booking failed",
			zap.String("session_id", c.SessionID),
			zap.String("collaborator", metrics.CollaboratorCalendar),
			zap.String("date", date),
			zap.String("slot", slot.String()),
			zap.Error(err))
		a.metrics.Booking("failure")
		a.metrics.Failure(metrics.CollaboratorCalendar)
		return fmt.Sprintf("I apologize, there was an issue booking your appointment: %v. Let me help you find another time.", err), false, nil
	}

	if err := c.MarkBooked(booking.EventID); err != nil {
		return "", false, err
	}
	a.log.Info("appointment booked",
		zap.String("session_id", c.SessionID),
		zap.String("event_id", booking.EventID),
		zap.String("date", date),
		zap.String("slot", slot.String()))
	a.metrics.Booking("success")

	a.keepRecord(ctx, c.SessionID, records.Record{
		RecordedAt:      a.now(),
		BusinessType:    a.profile.BusinessType,
		Customer:        maps.Clone(c.CustomerInfo),
		AppointmentDate: date,
		AppointmentTime: slot.String(),
		EventID:         booking.EventID,
	})

	reply += fmt.Sprintf("\n\nYour appointment is confirmed for %s from %s. Thank you for choosing %s!",
		date, slot, a.profile.BusinessName)
	return reply, true, nil
}

// keepRecord forwards a booked customer to the record store. It runs after
// the booking is committed and nothing it does can undo it: errors and
// panics are logged and counted, then dropped.
func (a *Agent) keepRecord(ctx context.Context, sessionID string, rec records.Record) {
	if a.records == nil {
		return
	}
	fail := func(err error) {
		a.log.Warn("storing customer record failed",
			zap.String("session_id", sessionID),
			zap.String("collaborator", metrics.CollaboratorRecords),
			zap.String("event_id", rec.EventID),
			zap.Error(err))
		a.metrics.Failure(metrics.CollaboratorRecords)
	}
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("panic: %v", r))
		}
	}()
	if err := a.records.Append(ctx, rec); err != nil {
		fail(err)
	}
}
