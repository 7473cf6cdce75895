package calendar

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultSummary is used when a booking request carries no summary.
func DefaultSummary(customer map[string]string) string {
	name := customer["name"]
	if name == "" {
		name = "Unknown"
	}
	return "Appointment - " + name
}

// Describe renders every non-empty customer field except the name as
// "Field Name: value" lines, sorted by field.
func Describe(customer map[string]string) string {
	keys := make([]string, 0, len(customer))
	for k, v := range customer {
		if k == "name" || strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	caser := cases.Title(language.English)
	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s: %s", caser.String(strings.ReplaceAll(k, "_", " ")), customer[k])
	}
	return strings.Join(lines, "\n")
}
