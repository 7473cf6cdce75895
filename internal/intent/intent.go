// Package intent classifies an utterance into one of a fixed set of
// intents with an ordered keyword cascade.
package intent

import (
	"regexp"
	"strings"
)

// Intent is the classified purpose of a single user utterance.
type Intent string

const (
	BookAppointment   Intent = "book_appointment"
	ModifyAppointment Intent = "modify_appointment"
	HoursInquiry      Intent = "hours_inquiry"
	ServicesInquiry   Intent = "services_inquiry"
	PricingInquiry    Intent = "pricing_inquiry"
	Confirmation      Intent = "confirmation"
	Rejection         Intent = "rejection"
	Greeting          Intent = "greeting"
	GeneralInquiry    Intent = "general_inquiry"
)

// Rule assigns Intent when any of its phrases appears as whole words.
type Rule struct {
	Intent  Intent
	Phrases []string
	pattern *regexp.Regexp
}

// NewRule compiles a rule.
func NewRule(in Intent, phrases ...string) Rule {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(p))
	}
	return Rule{
		Intent:  in,
		Phrases: phrases,
		pattern: regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Matches reports whether the lowercased text contains one of the phrases.
func (r Rule) Matches(lower string) bool {
	return r.pattern.MatchString(lower)
}

// DefaultRules is the cascade in priority order. A message with both
// booking and greeting words is a booking.
var DefaultRules = []Rule{
	NewRule(BookAppointment, "appointment", "appointments", "book", "books", "booked", "booking",
		"schedule", "scheduled", "scheduling", "reserve", "reserved", "reserving", "reservation"),
	NewRule(ModifyAppointment, "cancel", "canceled", "cancelled", "canceling", "cancelling", "cancellation",
		"reschedule", "rescheduled", "rescheduling", "change", "changed", "changing", "modify", "modified"),
	NewRule(HoursInquiry, "hours", "open", "opens", "opening", "closed", "closing", "when", "time"),
	NewRule(ServicesInquiry, "services", "service", "what do you", "offer", "treatments", "treatment"),
	NewRule(PricingInquiry, "price", "prices", "pricing", "cost", "costs", "how much", "payment"),
	NewRule(Confirmation, "yes", "yeah", "yep", "correct", "right", "confirm", "sounds good", "perfect"),
	NewRule(Rejection, "no", "nope", "not right", "wrong", "incorrect"),
	NewRule(Greeting, "hello", "hi", "hey", "good morning", "good afternoon"),
}

// Classifier evaluates rules in order; the first match wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier over rules, or DefaultRules when
// rules is empty.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Classifier{rules: rules}
}

// Classify maps an utterance to an intent. Unmatched text is a general
// inquiry.
func (c *Classifier) Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, r := range c.rules {
		if r.Matches(lower) {
			return r.Intent
		}
	}
	return GeneralInquiry
}

// Classify uses the default cascade.
func Classify(message string) Intent {
	return defaultClassifier.Classify(message)
}

var defaultClassifier = NewClassifier()
