// Package conversation holds per-session dialogue state, the session store
// and the stage projection computed from that state.
package conversation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/calendar"
	"github.com/ziadkadry99/apptagent/internal/intent"
)

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the append-only history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is the state of one conversation. It has no lock of its own:
// callers hold Store.Lock for the session while they touch it.
type Context struct {
	SessionID    string        `json:"session_id"`
	BusinessType business.Type `json:"business_type"`

	Messages      []Message     `json:"messages"`
	CurrentIntent intent.Intent `json:"current_intent,omitempty"`
	Stage         Stage         `json:"stage"`

	RequestedDate  string          `json:"requested_date,omitempty"`
	RequestedTime  string          `json:"requested_time,omitempty"`
	AvailableSlots []calendar.Slot `json:"available_slots,omitempty"`
	// SlotsDate is the date AvailableSlots were fetched for.
	SlotsDate    string         `json:"slots_date,omitempty"`
	SelectedSlot *calendar.Slot `json:"selected_slot,omitempty"`

	CustomerInfo    map[string]string `json:"customer_info"`
	RequiredFields  []string          `json:"required_fields"`
	CollectedFields []string          `json:"collected_fields"`

	AppointmentBooked bool   `json:"appointment_booked"`
	EventID           string `json:"event_id,omitempty"`
	BookingConfirmed  bool   `json:"booking_confirmed"`

	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`

	now func() time.Time
}

func newContext(sessionID string, businessType business.Type, required []string, now func() time.Time) *Context {
	ts := now()
	return &Context{
		SessionID:      sessionID,
		BusinessType:   businessType,
		Stage:          StageGreeting,
		CustomerInfo:   make(map[string]string),
		RequiredFields: slices.Clone(required),
		CreatedAt:      ts,
		LastUpdatedAt:  ts,
		now:            now,
	}
}

func (c *Context) touch() {
	c.LastUpdatedAt = c.now()
}

// AddMessage appends to the history.
func (c *Context) AddMessage(role Role, content string) {
	ts := c.now()
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: ts})
	c.LastUpdatedAt = ts
}

// UpdateCustomerInfo stores the trimmed value and marks the field
// collected. Blank values are ignored and never clear a field.
func (c *Context) UpdateCustomerInfo(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	c.CustomerInfo[field] = value
	if !slices.Contains(c.CollectedFields, field) {
		c.CollectedFields = append(c.CollectedFields, field)
	}
	c.touch()
}

// MissingFields returns the required fields without a value, in
// configuration order.
func (c *Context) MissingFields() []string {
	missing := []string{}
	for _, f := range c.RequiredFields {
		if strings.TrimSpace(c.CustomerInfo[f]) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsInfoComplete reports whether every required field has a value.
func (c *Context) IsInfoComplete() bool {
	return len(c.MissingFields()) == 0
}

// SetAvailability replaces the slot list fetched for date. A selected slot
// that is not in the new list is cleared.
func (c *Context) SetAvailability(date string, slots []calendar.Slot) {
	c.AvailableSlots = slots
	c.SlotsDate = date
	if c.SelectedSlot != nil && !slices.Contains(slots, *c.SelectedSlot) {
		c.SelectedSlot = nil
	}
	c.touch()
}

// SelectRequestedSlot selects the first available slot starting at the
// requested time. It reports whether a slot is selected afterwards.
func (c *Context) SelectRequestedSlot() bool {
	if c.RequestedTime == "" {
		return c.SelectedSlot != nil
	}
	for _, s := range c.AvailableSlots {
		if s.Start == c.RequestedTime {
			slot := s
			c.SelectedSlot = &slot
			c.touch()
			return true
		}
	}
	return c.SelectedSlot != nil
}

// MarkBooked records a committed booking. Booking is one-way: a second
// call returns an error and changes nothing.
func (c *Context) MarkBooked(eventID string) error {
	if c.AppointmentBooked {
		return fmt.Errorf("session %s already booked as %s", c.SessionID, c.EventID)
	}
	if c.SelectedSlot == nil {
		return fmt.Errorf("session %s: no slot selected", c.SessionID)
	}
	if eventID == "" {
		return fmt.Errorf("session %s: empty event id", c.SessionID)
	}
	c.AppointmentBooked = true
	c.BookingConfirmed = true
	c.EventID = eventID
	c.Stage = StageCompleted
	c.touch()
	return nil
}

// RecentMessages returns up to n of the latest messages.
func (c *Context) RecentMessages(n int) []Message {
	if n <= 0 {
		return nil
	}
	if len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}

// LastUserMessages returns the contents of up to n of the latest user
// messages, newest first.
func (c *Context) LastUserMessages(n int) []string {
	var out []string
	for i := len(c.Messages) - 1; i >= 0 && len(out) < n; i-- {
		if c.Messages[i].Role == RoleUser {
			out = append(out, c.Messages[i].Content)
		}
	}
	return out
}

// Summary is a one-line digest of the state used to ground text
// generation. It drives no logic.
func (c *Context) Summary() string {
	var parts []string
	if c.CurrentIntent != "" {
		parts = append(parts, "Intent: "+string(c.CurrentIntent))
	}
	if c.RequestedDate != "" {
		parts = append(parts, "Date: "+c.RequestedDate)
	}
	if c.RequestedTime != "" {
		parts = append(parts, "Time: "+c.RequestedTime)
	}
	if c.SelectedSlot != nil {
		parts = append(parts, "Selected: "+c.SelectedSlot.String())
	}
	if len(c.CollectedFields) > 0 {
		info := make([]string, 0, len(c.CollectedFields))
		for _, f := range c.CollectedFields {
			if v := c.CustomerInfo[f]; v != "" {
				info = append(info, f+": "+v)
			}
		}
		parts = append(parts, "Customer: "+strings.Join(info, ", "))
	}
	parts = append(parts, "Stage: "+string(c.Stage))
	return strings.Join(parts, " | ")
}

// Snapshot returns a deep copy. Take it under the session lock; the copy
// can then be read without one.
func (c *Context) Snapshot() Context {
	cp := *c
	cp.Messages = slices.Clone(c.Messages)
	cp.AvailableSlots = slices.Clone(c.AvailableSlots)
	if c.SelectedSlot != nil {
		s := *c.SelectedSlot
		cp.SelectedSlot = &s
	}
	cp.CustomerInfo = make(map[string]string, len(c.CustomerInfo))
	for k, v := range c.CustomerInfo {
		cp.CustomerInfo[k] = v
	}
	cp.RequiredFields = slices.Clone(c.RequiredFields)
	cp.CollectedFields = slices.Clone(c.CollectedFields)
	return cp
}
