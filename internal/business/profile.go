package business

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidProfile wraps every validation failure returned by Validate.
var ErrInvalidProfile = errors.New("invalid business profile")

var hoursPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)-([01]\d|2[0-3]):([0-5]\d)$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("workinghours", func(fl validator.FieldLevel) bool {
		_, _, err := ParseHours(fl.Field().String())
		return err == nil
	})
	return v
}

// ParseHours splits an "HH:MM-HH:MM" range. The empty string means closed
// and yields two empty values with a nil error.
func ParseHours(hours string) (open, close string, err error) {
	hours = strings.TrimSpace(hours)
	if hours == "" {
		return "", "", nil
	}
	if !hoursPattern.MatchString(hours) {
		return "", "", fmt.Errorf("working hours %q: want HH:MM-HH:MM", hours)
	}
	open, close, _ = strings.Cut(hours, "-")
	if open >= close {
		return "", "", fmt.Errorf("working hours %q: opening must precede closing", hours)
	}
	return open, close, nil
}

// ApplyDefaults fills unset fields with the values the vertical implies.
func (p *Profile) ApplyDefaults() {
	if p.BusinessType == "" {
		p.BusinessType = TypeGeneric
	}
	if p.AppointmentDuration == 0 {
		p.AppointmentDuration = 60
	}
	if p.Timezone == "" {
		p.Timezone = DefaultTimezone
	}
	if p.CalendarID == "" {
		p.CalendarID = "primary"
	}
	if len(p.RequiredFields) == 0 {
		p.RequiredFields = DefaultRequiredFields(p.BusinessType)
	}
	if len(p.OptionalFields) == 0 {
		p.OptionalFields = DefaultOptionalFields(p.BusinessType)
	}
	if p.WorkingHours == nil {
		p.WorkingHours = map[string]string{}
	}
	for _, day := range Weekdays {
		if _, ok := p.WorkingHours[day]; !ok {
			p.WorkingHours[day] = ""
		}
	}
}

// Validate reports the first problem found in the profile.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: field %s failed %q", ErrInvalidProfile, fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Location loads the profile timezone.
func (p *Profile) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", p.Timezone, err)
	}
	return loc, nil
}

// WorkingHoursFor returns the "HH:MM-HH:MM" range for the weekday of date,
// or "" when the business is closed that day.
func (p *Profile) WorkingHoursFor(date time.Time) string {
	return p.WorkingHours[strings.ToLower(date.Weekday().String())]
}

// IsBusinessDay reports whether the business opens on date.
func (p *Profile) IsBusinessDay(date time.Time) bool {
	return p.WorkingHoursFor(date) != ""
}

// Greeting is the opening line the assistant uses for a new visitor.
func (p *Profile) Greeting() string {
	switch p.BusinessType {
	case TypeDentist:
		return fmt.Sprintf("Hello! Thank you for calling %s. This is %s, how can I help you today?", p.BusinessName, p.AssistantName)
	case TypeSalon, TypeSpa:
		return fmt.Sprintf("Hi there! Welcome to %s. I'm %s, what can I book for you today?", p.BusinessName, p.AssistantName)
	case TypeDoctor:
		return fmt.Sprintf("Hello, you've reached %s. I'm %s, how may I help you?", p.BusinessName, p.AssistantName)
	default:
		return fmt.Sprintf("Hello! This is %s from %s. How can I help you today?", p.AssistantName, p.BusinessName)
	}
}
