package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleCalendar books appointments on a Google calendar.
type GoogleCalendar struct {
	svc        *gcal.Service
	calendarID string
}

// NewGoogleCalendar creates a Google Calendar client. opts carry the
// credentials (or an endpoint override in tests).
func NewGoogleCalendar(ctx context.Context, calendarID string, opts ...option.ClientOption) (*GoogleCalendar, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &GoogleCalendar{svc: svc, calendarID: calendarID}, nil
}

// ListAvailableSlots lists the day's timed events and subtracts them from
// the working hours. All-day events are ignored.
func (g *GoogleCalendar) ListAvailableSlots(ctx context.Context, req AvailabilityRequest) ([]Slot, error) {
	if req.WorkingHours == "" {
		return nil, nil
	}
	dayStart, err := onDate(req.Date, "00:00", req.Location)
	if err != nil {
		return nil, err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	var events []Event
	err = g.svc.Events.List(g.calendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				if item.Start == nil || item.End == nil || item.Start.DateTime == "" {
					continue
				}
				start, err := time.Parse(time.RFC3339, item.Start.DateTime)
				if err != nil {
					continue
				}
				end, err := time.Parse(time.RFC3339, item.End.DateTime)
				if err != nil {
					continue
				}
				events = append(events, Event{ID: item.Id, Summary: item.Summary, Start: start, End: end})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("listing calendar events: %w", err)
	}
	return ComputeAvailableSlots(req.Date, req.WorkingHours, req.DurationMinutes, req.BufferMinutes, req.Location, events)
}

// CreateBooking inserts an event. The customer's email, when known, is
// added as an attendee.
func (g *GoogleCalendar) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	if err := req.Slot.Validate(); err != nil {
		return nil, err
	}
	start, end, err := req.Slot.Bounds(req.Date, req.Location)
	if err != nil {
		return nil, err
	}
	tz := start.Location().String()
	summary := req.Summary
	if summary == "" {
		summary = DefaultSummary(req.Customer)
	}
	ev := &gcal.Event{
		Summary:     summary,
		Description: Describe(req.Customer),
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: tz},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: tz},
	}
	if email := req.Customer["email"]; email != "" {
		ev.Attendees = []*gcal.EventAttendee{{Email: email}}
	}

	created, err := g.svc.Events.Insert(g.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("inserting calendar event: %w", err)
	}
	return &Booking{
		EventID:     created.Id,
		Date:        req.Date,
		Slot:        req.Slot,
		Summary:     summary,
		Description: ev.Description,
		Customer:    req.Customer,
		Link:        created.HtmlLink,
		Start:       start,
		End:         end,
	}, nil
}

// CancelBooking deletes the event.
func (g *GoogleCalendar) CancelBooking(ctx context.Context, eventID string) error {
	if err := g.svc.Events.Delete(g.calendarID, eventID).Context(ctx).Do(); err != nil {
		return wrapGoogleError(eventID, err)
	}
	return nil
}

// GetBooking fetches an event.
func (g *GoogleCalendar) GetBooking(ctx context.Context, eventID string) (*Booking, error) {
	ev, err := g.svc.Events.Get(g.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleError(eventID, err)
	}
	b := &Booking{
		EventID:     ev.Id,
		Summary:     ev.Summary,
		Description: ev.Description,
		Link:        ev.HtmlLink,
	}
	if ev.Start != nil && ev.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
			b.Start = t
			b.Date = t.Format(dateLayout)
			b.Slot.Start = t.Format(clockLayout)
		}
	}
	if ev.End != nil && ev.End.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, ev.End.DateTime); err == nil {
			b.End = t
			b.Slot.End = t.Format(clockLayout)
		}
	}
	return b, nil
}

func wrapGoogleError(eventID string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return fmt.Errorf("event %s: %w", eventID, err)
}
