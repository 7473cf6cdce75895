// Package records is the customer record-store collaborator: an
// append-only log of booked customers, one row per booking.
package records

import (
	"context"
	"strings"
	"time"

	"github.com/ziadkadry99/apptagent/internal/business"
)

// TimestampLayout formats the Timestamp column.
const TimestampLayout = "2006-01-02 15:04:05"

// Column maps a header to the customer field that fills it.
type Column struct {
	Header string
	Field  string
}

var baseColumns = []Column{
	{"Timestamp", ""},
	{"Name", "name"},
	{"Phone", "phone"},
	{"Appointment Date", ""},
	{"Appointment Time", ""},
}

var verticalColumns = map[business.Type][]Column{
	business.TypeDentist: {
		{"Date of Birth", "date_of_birth"}, {"Insurance Provider", "insurance_provider"},
		{"Emergency Contact", "emergency_contact"}, {"Notes", "notes"},
	},
	business.TypeDoctor: {
		{"Date of Birth", "date_of_birth"}, {"Reason for Visit", "reason_for_visit"},
		{"Insurance Provider", "insurance_provider"}, {"Medications", "medications"},
		{"Allergies", "allergies"}, {"Emergency Contact", "emergency_contact"},
	},
	business.TypeSalon: {
		{"Preferred Service", "preferred_service"}, {"Hair Type", "hair_type"},
		{"Previous Services", "previous_services"}, {"Allergies", "allergies"}, {"Notes", "notes"},
	},
	business.TypeSpa: {
		{"Preferred Service", "preferred_service"}, {"Health Conditions", "health_conditions"},
		{"Allergies", "allergies"}, {"Preferences", "preferences"}, {"Notes", "notes"},
	},
	business.TypeLawyer: {
		{"Case Type", "case_type"}, {"Case Details", "case_details"},
		{"Urgency", "urgency"}, {"Preferred Contact Method", "preferred_contact_method"},
	},
	business.TypeGeneric: {
		{"Service Type", "service_type"}, {"Notes", "notes"},
	},
}

// Columns returns the row layout for a vertical: the five base columns
// followed by the vertical's own.
func Columns(t business.Type) []Column {
	extra, ok := verticalColumns[t]
	if !ok {
		extra = verticalColumns[business.TypeGeneric]
	}
	cols := make([]Column, 0, len(baseColumns)+len(extra))
	cols = append(cols, baseColumns...)
	return append(cols, extra...)
}

// Headers returns the header row for a vertical.
func Headers(t business.Type) []string {
	cols := Columns(t)
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

// Record is one booked customer.
type Record struct {
	RecordedAt      time.Time
	BusinessType    business.Type
	Customer        map[string]string
	AppointmentDate string
	AppointmentTime string
	EventID         string
}

// Row lays the record out in Columns(r.BusinessType) order.
func (r Record) Row() []string {
	cols := Columns(r.BusinessType)
	row := make([]string, len(cols))
	row[0] = r.RecordedAt.Format(TimestampLayout)
	row[3] = r.AppointmentDate
	row[4] = r.AppointmentTime
	for i, c := range cols {
		if c.Field != "" {
			row[i] = r.Customer[c.Field]
		}
	}
	return row
}

// Entry is a stored row keyed by header.
type Entry map[string]string

// Store is implemented by record-store backends.
type Store interface {
	Append(ctx context.Context, rec Record) error
	History(ctx context.Context, phone, name string) ([]Entry, error)
}

// Matches reports whether e belongs to the customer with phone or name.
// Phones compare exactly after trimming; names ignore case.
func (e Entry) Matches(phone, name string) bool {
	phone, name = strings.TrimSpace(phone), strings.TrimSpace(name)
	if phone != "" && strings.TrimSpace(e["Phone"]) == phone {
		return true
	}
	return name != "" && strings.EqualFold(strings.TrimSpace(e["Name"]), name)
}

func entryFrom(headers, row []string) Entry {
	e := make(Entry, len(headers))
	for i, h := range headers {
		if i < len(row) {
			e[h] = row[i]
		} else {
			e[h] = ""
		}
	}
	return e
}
