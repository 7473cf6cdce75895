package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Event is a busy interval on a calendar.
type Event struct {
	ID      string
	Summary string
	Start   time.Time
	End     time.Time
}

// Overlaps reports whether [start, end) intersects the event.
func (e Event) Overlaps(start, end time.Time) bool {
	return start.Before(e.End) && end.After(e.Start)
}

// ComputeAvailableSlots steps through workingHours ("HH:MM-HH:MM") on date
// in increments of duration plus buffer minutes and returns every slot of
// length duration that ends by closing time and overlaps no event. An
// empty workingHours means the business is closed and yields no slots.
func ComputeAvailableSlots(date, workingHours string, duration, buffer int, loc *time.Location, events []Event) ([]Slot, error) {
	if strings.TrimSpace(workingHours) == "" {
		return nil, nil
	}
	if duration <= 0 {
		return nil, fmt.Errorf("appointment duration must be positive, got %d", duration)
	}
	if buffer < 0 {
		buffer = 0
	}
	hours, err := ParseSlot(workingHours)
	if err != nil {
		return nil, fmt.Errorf("working hours: %w", err)
	}
	open, close, err := hours.Bounds(date, loc)
	if err != nil {
		return nil, err
	}

	length := time.Duration(duration) * time.Minute
	step := length + time.Duration(buffer)*time.Minute
	var slots []Slot
	for cur := open; !cur.Add(length).After(close); cur = cur.Add(step) {
		end := cur.Add(length)
		free := true
		for _, ev := range events {
			if ev.Overlaps(cur, end) {
				free = false
				break
			}
		}
		if free {
			slots = append(slots, Slot{Start: cur.Format(clockLayout), End: end.Format(clockLayout)})
		}
	}
	return slots, nil
}
