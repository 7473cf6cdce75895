package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Slot is a half-open interval [Start, End) on some calendar date,
// expressed as two "HH:MM" clock times. It has no identity beyond its
// interval.
type Slot struct {
	Start string
	End   string
}

// ParseSlot parses "HH:MM-HH:MM".
func ParseSlot(s string) (Slot, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Slot{}, fmt.Errorf("slot %q: want HH:MM-HH:MM", s)
	}
	slot := Slot{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if err := slot.Validate(); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// Validate checks that both ends are clock times and Start precedes End.
func (s Slot) Validate() error {
	a, err := time.Parse(clockLayout, s.Start)
	if err != nil {
		return fmt.Errorf("slot start %q: %w", s.Start, err)
	}
	b, err := time.Parse(clockLayout, s.End)
	if err != nil {
		return fmt.Errorf("slot end %q: %w", s.End, err)
	}
	if !a.Before(b) {
		return fmt.Errorf("slot %s: start must precede end", s)
	}
	return nil
}

func (s Slot) String() string {
	if s.IsZero() {
		return ""
	}
	return s.Start + "-" + s.End
}

// IsZero reports whether s is the empty slot.
func (s Slot) IsZero() bool {
	return s.Start == "" && s.End == ""
}

// Hour returns the hour of the slot start, or -1 for a malformed slot.
func (s Slot) Hour() int {
	t, err := time.Parse(clockLayout, s.Start)
	if err != nil {
		return -1
	}
	return t.Hour()
}

// Bounds places the slot on date in loc.
func (s Slot) Bounds(date string, loc *time.Location) (start, end time.Time, err error) {
	if start, err = onDate(date, s.Start, loc); err != nil {
		return
	}
	end, err = onDate(date, s.End, loc)
	return
}

// MarshalText encodes the slot as "HH:MM-HH:MM".
func (s Slot) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "HH:MM-HH:MM"; the empty string is the zero slot.
func (s *Slot) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = Slot{}
		return nil
	}
	parsed, err := ParseSlot(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Strings renders slots as "HH:MM-HH:MM" values.
func Strings(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.String()
	}
	return out
}

func onDate(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout+" "+clockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %s: %w", date, clock, err)
	}
	return t, nil
}
