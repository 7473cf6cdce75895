package conversation

import "github.com/ziadkadry99/apptagent/internal/intent"

// Stage is the phase label of a conversation. It is a projection of the
// context fields, recomputed every turn, never stored transition history.
type Stage string

const (
	StageGreeting       Stage = "greeting"
	StageActive         Stage = "active"
	StageInfoCollection Stage = "info_collection"
	StageScheduling     Stage = "scheduling"
	StageConfirmation   Stage = "confirmation"
	StageCompleted      Stage = "completed"
)

// StageRule yields Stage when When holds.
type StageRule struct {
	Stage Stage
	When  func(c *Context) bool
}

// StageRules lists the projection in priority order; the first rule that
// holds wins.
var StageRules = []StageRule{
	{StageCompleted, func(c *Context) bool { return c.AppointmentBooked }},
	{StageConfirmation, func(c *Context) bool { return c.SelectedSlot != nil && c.IsInfoComplete() }},
	{StageScheduling, func(c *Context) bool { return c.RequestedDate != "" || len(c.AvailableSlots) > 0 }},
	{StageInfoCollection, func(c *Context) bool { return c.CurrentIntent == intent.BookAppointment }},
	{StageActive, func(c *Context) bool { return len(c.Messages) > 0 }},
}

// ComputeStage derives the stage from c alone. It does not read c.Stage.
func ComputeStage(c *Context) Stage {
	for _, r := range StageRules {
		if r.When(c) {
			return r.Stage
		}
	}
	return StageGreeting
}
