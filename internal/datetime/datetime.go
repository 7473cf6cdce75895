// Package datetime turns natural-language date and time fragments into
// canonical "2006-01-02" dates and "15:04" clock times.
package datetime

import (
	"strings"
	"time"
)

const (
	// DateLayout is the canonical date representation.
	DateLayout = "2006-01-02"
	// TimeLayout is the canonical clock time representation.
	TimeLayout = "15:04"
)

// Info is the result of scanning an utterance for a date and a time.
// Either field is empty when nothing matched.
type Info struct {
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

// Normalizer resolves relative references against a clock in a fixed
// location.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// NewNormalizer creates a Normalizer. A nil loc means UTC and a nil now
// means time.Now.
func NewNormalizer(loc *time.Location, now func() time.Time) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{loc: loc, now: now}
}

// Now returns the current instant in the normalizer's location.
func (n *Normalizer) Now() time.Time {
	return n.now().In(n.loc)
}

// Location returns the location dates are resolved in.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ParseDate resolves text to a canonical date. A zero ref means now.
// Rules run in order and the first one that parses wins.
func (n *Normalizer) ParseDate(text string, ref time.Time) (string, bool) {
	text = clean(text)
	if text == "" {
		return "", false
	}
	if ref.IsZero() {
		ref = n.Now()
	} else {
		ref = ref.In(n.loc)
	}
	ref = startOfDay(ref)
	for _, rule := range dateRules {
		if d, ok := rule.parse(text, ref); ok {
			return d.Format(DateLayout), true
		}
	}
	return "", false
}

// ParseTime resolves text to a canonical clock time.
func (n *Normalizer) ParseTime(text string) (string, bool) {
	text = normalizeMeridiem(clean(text))
	if text == "" {
		return "", false
	}
	for _, rule := range timeRules {
		if t, ok := rule.parse(text); ok {
			return t, true
		}
	}
	return "", false
}

// ExtractDateTime slides windows of one to three tokens across text and
// returns the first date and the first time found. The two are searched
// independently and need not come from the same window. Within a start
// position shorter windows are tried first and the first parse wins. A
// detached meridiem is joined to the number before it, so "3:30 pm" is one
// token.
func (n *Normalizer) ExtractDateTime(text string, ref time.Time) Info {
	words := joinMeridiem(strings.Fields(text))
	var info Info
	info.Date = scan(words, func(candidate string) (string, bool) {
		return n.ParseDate(candidate, ref)
	})
	info.Time = scan(words, n.ParseTime)
	return info
}

func scan(words []string, parse func(string) (string, bool)) string {
	for i := range words {
		for length := 1; length <= 3 && i+length <= len(words); length++ {
			if v, ok := parse(strings.Join(words[i:i+length], " ")); ok {
				return v
			}
		}
	}
	return ""
}

var meridiemTokens = map[string]string{"am": "am", "pm": "pm", "a.m": "am", "p.m": "pm"}

func joinMeridiem(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		period, ok := meridiemTokens[strings.TrimSuffix(clean(w), ".")]
		if ok && len(out) > 0 && endsWithDigit(out[len(out)-1]) {
			out[len(out)-1] += period
			continue
		}
		out = append(out, w)
	}
	return out
}

func endsWithDigit(s string) bool {
	return s != "" && s[len(s)-1] >= '0' && s[len(s)-1] <= '9'
}

// clean lowercases text and strips sentence punctuation around tokens.
func clean(text string) string {
	fields := strings.Fields(strings.ToLower(text))
	for i, f := range fields {
		fields[i] = strings.Trim(f, ",;!?\"'()")
		fields[i] = strings.TrimSuffix(fields[i], ".")
	}
	return strings.Join(fields, " ")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
