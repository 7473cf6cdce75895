// Package agent is the dialogue orchestrator. An Agent runs conversation
// turns for one business profile and exposes the direct operations outer
// transports call; a Host owns the active Agent and the session store.
package agent

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/business"
	"github.com/ziadkadry99/apptagent/internal/calendar"
	"github.com/ziadkadry99/apptagent/internal/conversation"
	"github.com/ziadkadry99/apptagent/internal/datetime"
	"github.com/ziadkadry99/apptagent/internal/extract"
	"github.com/ziadkadry99/apptagent/internal/intent"
	"github.com/ziadkadry99/apptagent/internal/llm"
	"github.com/ziadkadry99/apptagent/internal/metrics"
	"github.com/ziadkadry99/apptagent/internal/prompts"
	"github.com/ziadkadry99/apptagent/internal/records"
)

// Canned replies for degraded turns.
const (
	replyLLMUnavailable = "I'm sorry, but the AI service is currently unavailable. Please try again later."
	replyLLMFailed      = "I apologize for the technical difficulty. How can I help you with your appointment?"
	replyTurnFailed     = "I apologize, but I encountered an error. Could you please try again?"
)

// Integrations are the collaborators an Agent talks to. Calendar is
// required; a nil LLM answers every turn with an apology and a nil Records
// skips customer record keeping.
type Integrations struct {
	LLM      llm.Provider
	Calendar calendar.Provider
	Records  records.Store
}

// Options carry the process-level settings shared by every Agent.
type Options struct {
	Logger     *zap.Logger
	Metrics    *metrics.Recorder
	Now        func() time.Time
	Generation llm.Options
}

// Agent runs conversations for one business.
type Agent struct {
	profile  business.Profile
	loc      *time.Location
	sessions *conversation.Store

	classifier *intent.Classifier
	extractor  *extract.Extractor
	dates      *datetime.Normalizer

	llm      llm.Provider
	gen      llm.Options
	calendar calendar.Provider
	records  records.Store

	log          *zap.Logger
	metrics      *metrics.Recorder
	now          func() time.Time
	configuredAt time.Time
}

// New builds an Agent for profile over a shared session store. The profile
// must already be valid.
func New(profile business.Profile, sessions *conversation.Store, integ Integrations, opts Options) (*Agent, error) {
	if integ.Calendar == nil {
		return nil, errors.New("calendar provider is required")
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	loc, err := profile.Location()
	if err != nil {
		return nil, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	a := &Agent{
		profile:    profile,
		loc:        loc,
		sessions:   sessions,
		classifier: intent.NewClassifier(),
		extractor:  extract.New(profile.Services, now),
		dates:      datetime.NewNormalizer(loc, now),
		gen:        opts.Generation,
		calendar:   integ.Calendar,
		records:    integ.Records,
		log:        log.With(zap.String("business", profile.BusinessName)),
		metrics:    opts.Metrics,
		now:        now,
	}
	if integ.LLM != nil {
		a.llm = &meteredProvider{Provider: integ.LLM, metrics: opts.Metrics}
	}
	a.configuredAt = now()
	return a, nil
}

// Profile returns the business profile the agent serves.
func (a *Agent) Profile() business.Profile {
	return a.profile
}

// ChatResult is the outcome of one turn.
type ChatResult struct {
	SessionID         string             `json:"session_id"`
	Reply             string             `json:"response"`
	Stage             conversation.Stage `json:"stage"`
	Intent            intent.Intent      `json:"intent"`
	Summary           string             `json:"context"`
	CollectedFields   []string           `json:"collected_fields"`
	MissingFields     []string           `json:"missing_fields"`
	AppointmentBooked bool               `json:"appointment_booked"`
	EventID           string             `json:"event_id,omitempty"`
}

// Chat runs one conversation turn. It never fails: collaborator errors
// become degraded replies and a turn that breaks returns a generic
// apology. An empty sessionID starts a new session. Turns on one session
// run one at a time.
func (a *Agent) Chat(ctx context.Context, message, sessionID string) ChatResult {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	unlock := a.sessions.Lock(sessionID)
	defer unlock()
	c := a.sessions.GetOrCreate(sessionID, a.profile.BusinessType, a.profile.RequiredFields)

	reply, err := a.safeTurn(ctx, c, message)
	if err != nil {
		a.log.Error("conversation turn failed",
			zap.String("session_id", sessionID),
			zap.String("collaborator", metrics.CollaboratorTurn),
			zap.Error(err))
		a.metrics.Failure(metrics.CollaboratorTurn)
		reply = replyTurnFailed
	}
	a.metrics.Turn(string(c.Stage))
	a.metrics.SetActiveSessions(a.sessions.Len())

	return ChatResult{
		SessionID:         sessionID,
		Reply:             reply,
		Stage:             c.Stage,
		Intent:            c.CurrentIntent,
		Summary:           c.Summary(),
		CollectedFields:   slices.Clone(c.CollectedFields),
		MissingFields:     c.MissingFields(),
		AppointmentBooked: c.AppointmentBooked,
		EventID:           c.EventID,
	}
}

func (a *Agent) safeTurn(ctx context.Context, c *conversation.Context, message string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during turn: %v", r)
		}
	}()
	return a.turn(ctx, c, message)
}

// turn applies one user message to c. The user message stays in the
// history even when the turn fails later on.
func (a *Agent) turn(ctx context.Context, c *conversation.Context, message string) (string, error) {
	previous := c.Stage
	c.AddMessage(conversation.RoleUser, message)

	c.CurrentIntent = a.classifier.Classify(message)
	found := a.extractor.Extract(message, c.CustomerInfo)
	for _, field := range slices.Sorted(maps.Keys(found)) {
		c.UpdateCustomerInfo(field, found[field])
	}

	now := a.dates.Now()
	info := a.dates.ExtractDateTime(message, now)
	if info.Date != "" && info.Date >= now.Format(datetime.DateLayout) {
		c.RequestedDate = info.Date
		if c.SlotsDate != c.RequestedDate {
			c.SelectedSlot = nil
		}
	}
	if info.Time != "" {
		c.RequestedTime = info.Time
	}

	if a.wantsAvailability(c, previous) {
		a.refreshAvailability(ctx, c)
	}
	if c.RequestedTime != "" && c.SlotsDate == c.RequestedDate && len(c.AvailableSlots) > 0 {
		c.SelectRequestedSlot()
	}

	reply := a.generate(ctx, c, message)

	booked := false
	if ready, _ := a.readyToBook(c, reply); ready {
		var err error
		reply, booked, err = a.book(ctx, c, reply)
		if err != nil {
			return "", err
		}
	}

	if !booked {
		c.Stage = conversation.ComputeStage(c)
	}
	c.AddMessage(conversation.RoleAssistant, reply)
	return reply, nil
}

// wantsAvailability reports whether the slot list for the requested date
// should be fetched this turn. Once a booking is under way any new date is
// looked up, whatever the intent of the message naming it.
func (a *Agent) wantsAvailability(c *conversation.Context, previous conversation.Stage) bool {
	if c.RequestedDate == "" || c.SlotsDate == c.RequestedDate {
		return false
	}
	return c.CurrentIntent == intent.BookAppointment ||
		previous == conversation.StageInfoCollection ||
		previous == conversation.StageScheduling ||
		previous == conversation.StageConfirmation
}

func (a *Agent) refreshAvailability(ctx context.Context, c *conversation.Context) {
	slots, err := a.availableSlots(ctx, c.RequestedDate, a.profile.AppointmentDuration)
	if err != nil {
		a.log.Warn("availability lookup failed",
			zap.String("session_id", c.SessionID),
			zap.String("collaborator", metrics.CollaboratorCalendar),
			zap.String("date", c.RequestedDate),
			zap.Error(err))
		a.metrics.Failure(metrics.CollaboratorCalendar)
		return
	}
	c.SetAvailability(c.RequestedDate, slots)
}

// availableSlots asks the calendar for the free slots of date. A closed
// day yields no slots and no error.
func (a *Agent) availableSlots(ctx context.Context, date string, duration int) ([]calendar.Slot, error) {
	day, err := time.ParseInLocation(datetime.DateLayout, date, a.loc)
	if err != nil {
		return nil, fmt.Errorf("parsing date %q: %w", date, err)
	}
	hours := a.profile.WorkingHoursFor(day)
	if hours == "" {
		return nil, nil
	}
	return a.calendar.ListAvailableSlots(ctx, calendar.AvailabilityRequest{
		Date:            date,
		WorkingHours:    hours,
		DurationMinutes: duration,
		BufferMinutes:   a.profile.BufferTime,
		Location:        a.loc,
	})
}

func (a *Agent) generate(ctx context.Context, c *conversation.Context, message string) string {
	if a.llm == nil {
		return replyLLMUnavailable
	}
	reply, err := llm.Generate(ctx, a.llm, prompts.System(a.profile, a.now()), prompts.Turn(c, message), a.gen)
	if err != nil {
		a.log.Warn("text generation failed",
			zap.String("session_id", c.SessionID),
			zap.String("collaborator", metrics.CollaboratorLLM),
			zap.Error(err))
		a.metrics.Failure(metrics.CollaboratorLLM)
		return replyLLMFailed
	}
	return reply
}
