package calendar

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/apptagent/internal/db"
)

// storedTime is lexically ordered, which the overlap queries rely on.
const storedTime = "2006-01-02T15:04:05Z"

// SQLiteCalendar keeps appointments in the local database. It serves as
// the calendar when no Google calendar is configured.
type SQLiteCalendar struct {
	db         *db.DB
	calendarID string
}

// NewSQLiteCalendar creates a calendar for calendarID backed by database.
func NewSQLiteCalendar(database *db.DB, calendarID string) *SQLiteCalendar {
	if calendarID == "" {
		calendarID = "primary"
	}
	return &SQLiteCalendar{db: database, calendarID: calendarID}
}

// ListAvailableSlots returns the free slots of req.Date.
func (c *SQLiteCalendar) ListAvailableSlots(ctx context.Context, req AvailabilityRequest) ([]Slot, error) {
	if req.WorkingHours == "" {
		return nil, nil
	}
	dayStart, err := onDate(req.Date, "00:00", req.Location)
	if err != nil {
		return nil, err
	}
	events, err := c.events(ctx, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return ComputeAvailableSlots(req.Date, req.WorkingHours, req.DurationMinutes, req.BufferMinutes, req.Location, events)
}

func (c *SQLiteCalendar) events(ctx context.Context, from, to time.Time) ([]Event, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, summary, starts_at, ends_at
		FROM appointments
		WHERE calendar_id = ? AND starts_at < ? AND ends_at > ?
		ORDER BY starts_at`,
		c.calendarID, from.UTC().Format(storedTime), to.UTC().Format(storedTime))
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var start, end string
		if err := rows.Scan(&ev.ID, &ev.Summary, &start, &end); err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		if ev.Start, err = time.Parse(storedTime, start); err != nil {
			return nil, fmt.Errorf("parsing start of %s: %w", ev.ID, err)
		}
		if ev.End, err = time.Parse(storedTime, end); err != nil {
			return nil, fmt.Errorf("parsing end of %s: %w", ev.ID, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// CreateBooking stores the appointment unless it overlaps an existing one,
// in which case ErrSlotUnavailable is returned.
func (c *SQLiteCalendar) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	if err := req.Slot.Validate(); err != nil {
		return nil, err
	}
	start, end, err := req.Slot.Bounds(req.Date, req.Location)
	if err != nil {
		return nil, err
	}
	summary := req.Summary
	if summary == "" {
		summary = DefaultSummary(req.Customer)
	}
	customer, err := json.Marshal(req.Customer)
	if err != nil {
		return nil, fmt.Errorf("marshalling customer: %w", err)
	}
	tz := "UTC"
	if req.Location != nil {
		tz = req.Location.String()
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var clashes int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE calendar_id = ? AND starts_at < ? AND ends_at > ?`,
		c.calendarID, end.UTC().Format(storedTime), start.UTC().Format(storedTime)).Scan(&clashes)
	if err != nil {
		return nil, fmt.Errorf("checking overlaps: %w", err)
	}
	if clashes > 0 {
		return nil, fmt.Errorf("%s %s: %w", req.Date, req.Slot, ErrSlotUnavailable)
	}

	b := &Booking{
		EventID:     uuid.New().String(),
		Date:        req.Date,
		Slot:        req.Slot,
		Summary:     summary,
		Description: Describe(req.Customer),
		Customer:    req.Customer,
		Start:       start,
		End:         end,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (
			id, calendar_id, date, start_time, end_time, starts_at, ends_at,
			timezone, summary, description, attendee_email, customer
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.EventID,
		c.calendarID,
		b.Date,
		b.Slot.Start,
		b.Slot.End,
		start.UTC().Format(storedTime),
		end.UTC().Format(storedTime),
		tz,
		b.Summary,
		b.Description,
		req.Customer["email"],
		string(customer),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting appointment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing appointment: %w", err)
	}
	return b, nil
}

// CancelBooking deletes the appointment.
func (c *SQLiteCalendar) CancelBooking(ctx context.Context, eventID string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ? AND calendar_id = ?`, eventID, c.calendarID)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return nil
}

// GetBooking fetches an appointment by id.
func (c *SQLiteCalendar) GetBooking(ctx context.Context, eventID string) (*Booking, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, date, start_time, end_time, starts_at, ends_at, timezone,
		       summary, description, customer
		FROM appointments WHERE id = ? AND calendar_id = ?`, eventID, c.calendarID)

	var b Booking
	var start, end, tz, customer string
	err := row.Scan(&b.EventID, &b.Date, &b.Slot.Start, &b.Slot.End, &start, &end, &tz,
		&b.Summary, &b.Description, &customer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning appointment: %w", err)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}
	if t, err := time.Parse(storedTime, start); err == nil {
		b.Start = t.In(loc)
	}
	if t, err := time.Parse(storedTime, end); err == nil {
		b.End = t.In(loc)
	}
	if err := json.Unmarshal([]byte(customer), &b.Customer); err != nil {
		return nil, fmt.Errorf("decoding customer: %w", err)
	}
	return &b, nil
}
