// Package extract pulls structured customer fields out of free-text
// utterances using an ordered table of pattern rules.
package extract

import (
	"strings"
	"time"
)

// Field names produced by the built-in rules.
const (
	FieldName             = "name"
	FieldPhone            = "phone"
	FieldDateOfBirth      = "date_of_birth"
	FieldEmail            = "email"
	FieldPreferredService = "preferred_service"
)

// Rule extracts a candidate value for one field. Match returns false when
// the utterance holds nothing usable for the field.
type Rule struct {
	Name  string
	Field string
	Match func(message string) (string, bool)
}

// Extractor evaluates its rules in order. The first rule that matches a
// field wins and later rules for the same field are skipped.
type Extractor struct {
	rules []Rule
}

// New builds an Extractor with the default rules. services enables the
// preferred-service rule; now bounds date-of-birth validation.
func New(services []string, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return NewWithRules(DefaultRules(services, now))
}

// NewWithRules builds an Extractor from an explicit rule table.
func NewWithRules(rules []Rule) *Extractor {
	return &Extractor{rules: rules}
}

// Rules returns a copy of the rule table.
func (e *Extractor) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Extract returns the newly found fields. Fields that already hold a
// non-blank value in existing are never extracted again. The returned map
// omits every field without a match; it is never nil.
func (e *Extractor) Extract(message string, existing map[string]string) map[string]string {
	found := make(map[string]string)
	for _, rule := range e.rules {
		if strings.TrimSpace(existing[rule.Field]) != "" {
			continue
		}
		if _, ok := found[rule.Field]; ok {
			continue
		}
		if v, ok := rule.Match(message); ok && strings.TrimSpace(v) != "" {
			found[rule.Field] = v
		}
	}
	return found
}

// DefaultRules is the built-in rule table.
func DefaultRules(services []string, now func() time.Time) []Rule {
	rules := []Rule{
		{Name: "phone", Field: FieldPhone, Match: matchPhone},
		{Name: "name", Field: FieldName, Match: matchName},
		{Name: "date-of-birth", Field: FieldDateOfBirth, Match: dobMatcher(now)},
		{Name: "email", Field: FieldEmail, Match: matchEmail},
	}
	if len(services) > 0 {
		rules = append(rules, Rule{Name: "service", Field: FieldPreferredService, Match: serviceMatcher(services)})
	}
	return rules
}
