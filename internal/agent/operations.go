package agent

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/calendar"
	"github.com/ziadkadry99/apptagent/internal/datetime"
	"github.com/ziadkadry99/apptagent/internal/metrics"
	"github.com/ziadkadry99/apptagent/internal/records"
)

// AvailabilityResult lists the free slots of one day.
type AvailabilityResult struct {
	Success        bool     `json:"success"`
	Date           string   `json:"date,omitempty"`
	WorkingHours   string   `json:"working_hours,omitempty"`
	Closed         bool     `json:"closed,omitempty"`
	AvailableSlots []string `json:"available_slots"`
	Message        string   `json:"message,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// CheckAvailability lists the free slots on date. The date may be
// YYYY-MM-DD or any phrase the date normalizer understands ("tomorrow",
// "next friday"). A non-positive duration means the profile's.
func (a *Agent) CheckAvailability(ctx context.Context, date string, duration int) AvailabilityResult {
	res := AvailabilityResult{AvailableSlots: []string{}}
	resolved, ok := a.dates.ParseDate(date, time.Time{})
	if !ok {
		res.Error = fmt.Sprintf("unrecognized date %q", date)
		res.Message = "Failed to check availability"
		return res
	}
	res.Date = resolved
	if duration <= 0 {
		duration = a.profile.AppointmentDuration
	}

	day, _ := time.ParseInLocation(datetime.DateLayout, resolved, a.loc)
	res.WorkingHours = a.profile.WorkingHoursFor(day)
	if res.WorkingHours == "" {
		res.Success = true
		res.Closed = true
		res.Message = fmt.Sprintf("Business is closed on %s", resolved)
		return res
	}

	slots, err := a.availableSlots(ctx, resolved, duration)
	if err != nil {
		a.log.Warn("availability lookup failed",
			zap.String("collaborator", metrics.CollaboratorCalendar),
			zap.String("date", resolved),
			zap.Error(err))
		a.metrics.Failure(metrics.CollaboratorCalendar)
		res.Error = err.Error()
		res.Message = "Failed to check availability"
		return res
	}
	res.Success = true
	res.AvailableSlots = calendar.Strings(slots)
	res.Message = fmt.Sprintf("Found %d available slots for %s", len(slots), resolved)
	return res
}

// DirectBooking is a booking made outside any conversation.
type DirectBooking struct {
	Date         string            `json:"date"`
	Slot         string            `json:"time_slot"`
	CustomerInfo map[string]string `json:"customer_info"`
	Summary      string            `json:"summary,omitempty"`
}

// BookingDetails echoes what was booked.
type BookingDetails struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Customer string `json:"customer"`
	Summary  string `json:"summary"`
}

// BookingResult is the envelope for a direct booking.
type BookingResult struct {
	Success   bool            `json:"success"`
	EventID   string          `json:"event_id,omitempty"`
	EventLink string          `json:"event_link,omitempty"`
	Message   string          `json:"message"`
	Error     string          `json:"error,omitempty"`
	Details   *BookingDetails `json:"details,omitempty"`
}

// BookDirect books req straight on the calendar, bypassing the dialogue.
// A successful booking is forwarded to the record store on a best-effort
// basis.
func (a *Agent) BookDirect(ctx context.Context, req DirectBooking) BookingResult {
	fail := func(err error) BookingResult {
		return BookingResult{Error: err.Error(), Message: "Failed to book appointment"}
	}

	slot, err := calendar.ParseSlot(req.Slot)
	if err != nil {
		return fail(err)
	}
	day, err := time.ParseInLocation(datetime.DateLayout, strings.TrimSpace(req.Date), a.loc)
	if err != nil {
		return fail(fmt.Errorf("date %q: want YYYY-MM-DD", req.Date))
	}
	if !a.profile.IsBusinessDay(day) {
		return fail(fmt.Errorf("%s: %w", req.Date, calendar.ErrClosed))
	}

	customer := make(map[string]string, len(req.CustomerInfo))
	for k, v := range req.CustomerInfo {
		if v = strings.TrimSpace(v); v != "" {
			customer[k] = v
		}
	}
	summary := strings.TrimSpace(req.Summary)
	if summary == "" {
		summary = calendar.DefaultSummary(customer)
	}
	name := customer["name"]
	if name == "" {
		name = "Unknown"
	}

	booking, err := a.calendar.CreateBooking(ctx, calendar.BookingRequest{
		Date:     day.Format(datetime.DateLayout),
		Slot:     slot,
		Customer: customer,
		Location: a.loc,
		Summary:  summary,
	})
	if err != nil {
		a.log.Warn("direct booking failed",
			zap.String("collaborator", metrics.CollaboratorCalendar),
			zap.String("date", req.Date),
			zap.String("slot", slot.String()),
			zap.Error(err))
		a.metrics.Booking("failure")
		return fail(err)
	}
	a.log.Info("appointment booked directly", zap.String("event_id", booking.EventID))
	a.metrics.Booking("success")

	a.keepRecord(ctx, "", records.Record{
		RecordedAt:      a.now(),
		BusinessType:    a.profile.BusinessType,
		Customer:        maps.Clone(customer),
		AppointmentDate: booking.Date,
		AppointmentTime: slot.String(),
		EventID:         booking.EventID,
	})

	return BookingResult{
		Success:   true,
		EventID:   booking.EventID,
		EventLink: booking.Link,
		Message:   fmt.Sprintf("Appointment booked successfully for %s", name),
		Details: &BookingDetails{
			Date:     booking.Date,
			Time:     slot.String(),
			Customer: name,
			Summary:  summary,
		},
	}
}

// CancelResult is the envelope for a cancellation.
type CancelResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CancelBooking deletes the event eventID from the calendar.
func (a *Agent) CancelBooking(ctx context.Context, eventID string) CancelResult {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return CancelResult{Error: "event id is required", Message: "Failed to cancel appointment"}
	}
	if err := a.calendar.CancelBooking(ctx, eventID); err != nil {
		if !errors.Is(err, calendar.ErrNotFound) {
			a.log.Warn("cancellation failed",
				zap.String("collaborator", metrics.CollaboratorCalendar),
				zap.String("event_id", eventID),
				zap.Error(err))
			a.metrics.Failure(metrics.CollaboratorCalendar)
		}
		return CancelResult{Error: fmt.Sprintf("Failed to cancel appointment: %v", err), Message: "Failed to cancel appointment"}
	}
	a.log.Info("appointment cancelled", zap.String("event_id", eventID))
	return CancelResult{Success: true, Message: "Appointment cancelled successfully"}
}

// BookingLookup is the envelope for GetBooking.
type BookingLookup struct {
	Success bool              `json:"success"`
	Booking *calendar.Booking `json:"event,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// GetBooking fetches the event eventID.
func (a *Agent) GetBooking(ctx context.Context, eventID string) BookingLookup {
	b, err := a.calendar.GetBooking(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return BookingLookup{Error: err.Error()}
	}
	return BookingLookup{Success: true, Booking: b}
}

// ConversationStatus describes one session. Status is the stage, or "new"
// for a session that does not exist yet.
type ConversationStatus struct {
	SessionID         string            `json:"session_id"`
	Status            string            `json:"status"`
	Context           string            `json:"context,omitempty"`
	AppointmentBooked bool              `json:"appointment_booked"`
	EventID           string            `json:"event_id,omitempty"`
	RequestedDate     string            `json:"requested_date,omitempty"`
	RequestedTime     string            `json:"requested_time,omitempty"`
	SelectedSlot      string            `json:"selected_slot,omitempty"`
	RequiredFields    []string          `json:"required_fields,omitempty"`
	CollectedFields   []string          `json:"collected_fields,omitempty"`
	MissingFields     []string          `json:"missing_fields,omitempty"`
	CustomerInfo      map[string]string `json:"customer_info,omitempty"`
	Messages          int               `json:"messages"`
}

// ConversationStatus reports on sessionID without creating it.
func (a *Agent) ConversationStatus(sessionID string) ConversationStatus {
	c, ok := a.sessions.Get(sessionID)
	if !ok {
		return ConversationStatus{SessionID: sessionID, Status: "new"}
	}
	unlock := a.sessions.Lock(sessionID)
	snap := c.Snapshot()
	unlock()
	st := ConversationStatus{
		SessionID:         sessionID,
		Status:            string(snap.Stage),
		Context:           snap.Summary(),
		AppointmentBooked: snap.AppointmentBooked,
		EventID:           snap.EventID,
		RequestedDate:     snap.RequestedDate,
		RequestedTime:     snap.RequestedTime,
		RequiredFields:    snap.RequiredFields,
		CollectedFields:   snap.CollectedFields,
		MissingFields:     snap.MissingFields(),
		CustomerInfo:      snap.CustomerInfo,
		Messages:          len(snap.Messages),
	}
	if snap.SelectedSlot != nil {
		st.SelectedSlot = snap.SelectedSlot.String()
	}
	return st
}

// ResetSession forgets sessionID. It reports whether the session existed.
func (a *Agent) ResetSession(sessionID string) bool {
	existed := a.sessions.Reset(sessionID)
	a.metrics.SetActiveSessions(a.sessions.Len())
	return existed
}

// AgentStatus summarises the active configuration.
type AgentStatus struct {
	Configured          bool              `json:"configured"`
	Message             string            `json:"message,omitempty"`
	BusinessType        business.Type     `json:"business_type,omitempty"`
	BusinessName        string            `json:"business_name,omitempty"`
	AssistantName       string            `json:"assistant_name,omitempty"`
	Services            []string          `json:"services,omitempty"`
	WorkingHours        map[string]string `json:"working_hours,omitempty"`
	AppointmentDuration int               `json:"appointment_duration,omitempty"`
	Timezone            string            `json:"timezone,omitempty"`
	LLMProvider         string            `json:"llm_provider,omitempty"`
	CalendarIntegration bool              `json:"calendar_integration"`
	RecordsIntegration  bool              `json:"sheets_integration"`
	ActiveConversations int               `json:"active_conversations"`
	ConfiguredAt        time.Time         `json:"configured_at,omitzero"`
}

// Status reports the agent's configuration and load.
func (a *Agent) Status() AgentStatus {
	st := AgentStatus{
		Configured:          true,
		BusinessType:        a.profile.BusinessType,
		BusinessName:        a.profile.BusinessName,
		AssistantName:       a.profile.AssistantName,
		Services:            slices.Clone(a.profile.Services),
		WorkingHours:        maps.Clone(a.profile.WorkingHours),
		AppointmentDuration: a.profile.AppointmentDuration,
		Timezone:            a.profile.Timezone,
		CalendarIntegration: true,
		RecordsIntegration:  a.records != nil,
		ActiveConversations: a.sessions.Len(),
		ConfiguredAt:        a.configuredAt,
	}
	if a.llm != nil {
		st.LLMProvider = a.llm.Name()
	}
	return st
}

// BusinessInfo is the public description of the business.
type BusinessInfo struct {
	BusinessType        business.Type     `json:"business_type"`
	BusinessName        string            `json:"business_name"`
	AssistantName       string            `json:"assistant_name"`
	Services            []string          `json:"services"`
	WorkingHours        map[string]string `json:"working_hours"`
	AppointmentDuration int               `json:"appointment_duration"`
	Timezone            string            `json:"timezone"`
	Greeting            string            `json:"greeting"`
}

// BusinessInfo describes the configured business.
func (a *Agent) BusinessInfo() BusinessInfo {
	return BusinessInfo{
		BusinessType:        a.profile.BusinessType,
		BusinessName:        a.profile.BusinessName,
		AssistantName:       a.profile.AssistantName,
		Services:            slices.Clone(a.profile.Services),
		WorkingHours:        maps.Clone(a.profile.WorkingHours),
		AppointmentDuration: a.profile.AppointmentDuration,
		Timezone:            a.profile.Timezone,
		Greeting:            a.profile.Greeting(),
	}
}

// HistoryResult lists a customer's stored records.
type HistoryResult struct {
	Success bool            `json:"success"`
	Records []records.Entry `json:"records"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// CustomerHistory looks up the stored records matching phone or name.
func (a *Agent) CustomerHistory(ctx context.Context, phone, name string) HistoryResult {
	res := HistoryResult{Records: []records.Entry{}}
	if a.records == nil {
		res.Error = "customer records are not configured"
		return res
	}
	if strings.TrimSpace(phone) == "" && strings.TrimSpace(name) == "" {
		res.Error = "phone or name is required"
		return res
	}
	entries, err := a.records.History(ctx, phone, name)
	if err != nil {
		a.log.Warn("customer history lookup failed",
			zap.String("collaborator", metrics.CollaboratorRecords),
			zap.Error(err))
		a.metrics.Failure(metrics.CollaboratorRecords)
		res.Error = err.Error()
		return res
	}
	res.Success = true
	if entries != nil {
		res.Records = entries
	}
	res.Message = fmt.Sprintf("Found %d records", len(res.Records))
	return res
}
