package datetime

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type dateRule struct {
	name  string
	parse func(text string, ref time.Time) (time.Time, bool)
}

var dateRules = []dateRule{
	{"keyword", parseKeywordDate},
	{"weekday", parseWeekday},
	{"calendar", parseCalendarDate},
	{"fuzzy", parseFuzzyDate},
}

func parseKeywordDate(text string, ref time.Time) (time.Time, bool) {
	switch text {
	case "today":
		return ref, true
	case "tomorrow":
		return ref.AddDate(0, 0, 1), true
	case "yesterday":
		return ref.AddDate(0, 0, -1), true
	}
	if strings.Contains(text, "next week") {
		return ref.AddDate(0, 0, 7), true
	}
	return time.Time{}, false
}

var weekdayTokens = map[string]time.Weekday{
	"monday": time.Monday, "mondays": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tuesdays": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wednesdays": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thursdays": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fridays": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "saturdays": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sundays": time.Sunday, "sun": time.Sunday,
}

// parseWeekday resolves a weekday name to its next occurrence. The same
// weekday as ref, or any phrase containing "next", moves a full week out.
func parseWeekday(text string, ref time.Time) (time.Time, bool) {
	tokens := strings.Fields(text)
	next := false
	for _, tok := range tokens {
		if tok == "next" {
			next = true
		}
	}
	for _, tok := range tokens {
		wd, ok := weekdayTokens[strings.TrimSuffix(tok, "'s")]
		if !ok {
			continue
		}
		ahead := (int(wd) - int(ref.Weekday()) + 7) % 7
		if ahead == 0 || next {
			ahead += 7
		}
		return ref.AddDate(0, 0, ahead), true
	}
	return time.Time{}, false
}

const monthAlt = `january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

var (
	slashDate     = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\b`)
	dashDate      = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
	isoDate       = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	monthDayDate  = regexp.MustCompile(`\b(` + monthAlt + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	dayMonthDate  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAlt + `)\b\.?(?:,?\s+(\d{4})\b)?`)
	numericMarker = regexp.MustCompile(`\b(\d{1,2}[/.]\d{1,2}[/.]\d{2,4}|\d{4}[/.]\d{1,2}[/.]\d{1,2})\b`)
	monthMarker   = regexp.MustCompile(`\b(` + monthAlt + `)\b`)
	ordinalSuffix = regexp.MustCompile(`(\d)(st|nd|rd|th)\b`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

func monthFromName(name string) (time.Month, bool) {
	if len(name) < 3 {
		return 0, false
	}
	m, ok := monthNames[name[:3]]
	return m, ok
}

// parseCalendarDate handles numeric and month-name calendar dates. A date
// without a year takes ref's year and rolls into the next year when it
// would otherwise be in the past.
func parseCalendarDate(text string, ref time.Time) (time.Time, bool) {
	if m := isoDate.FindStringSubmatch(text); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]), ref)
	}
	if m := dashDate.FindStringSubmatch(text); m != nil {
		return buildDate(atoi(m[3]), atoi(m[1]), atoi(m[2]), ref)
	}
	if m := slashDate.FindStringSubmatch(text); m != nil {
		return buildDate(expandYear(m[3]), atoi(m[1]), atoi(m[2]), ref)
	}
	if m := monthDayDate.FindStringSubmatch(text); m != nil {
		month, _ := monthFromName(m[1])
		return buildDate(expandYear(m[3]), int(month), atoi(m[2]), ref)
	}
	if m := dayMonthDate.FindStringSubmatch(text); m != nil {
		month, _ := monthFromName(m[2])
		return buildDate(expandYear(m[3]), int(month), atoi(m[1]), ref)
	}
	return time.Time{}, false
}

// parseFuzzyDate is the last resort. It only runs on text that already
// looks date-like so that stray numbers are not read as dates.
func parseFuzzyDate(text string, ref time.Time) (d time.Time, ok bool) {
	defer func() {
		if recover() != nil {
			d, ok = time.Time{}, false
		}
	}()
	if !numericMarker.MatchString(text) && !monthMarker.MatchString(text) {
		return time.Time{}, false
	}
	candidate := ordinalSuffix.ReplaceAllString(text, "$1")
	candidate = strings.TrimPrefix(candidate, "on ")
	t, err := dateparse.ParseIn(candidate, ref.Location())
	if err != nil {
		return time.Time{}, false
	}
	return startOfDay(t), true
}

// buildDate validates y-m-d. A zero year means "no year given".
func buildDate(year, month, day int, ref time.Time) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	explicit := year != 0
	if !explicit {
		year = ref.Year()
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, ref.Location())
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	if !explicit && d.Before(ref) {
		d = time.Date(year+1, time.Month(month), day, 0, 0, 0, 0, ref.Location())
		if d.Day() != day {
			return time.Time{}, false
		}
	}
	return d, true
}

func expandYear(s string) int {
	if s == "" {
		return 0
	}
	y := atoi(s)
	if len(s) == 2 {
		y += 2000
	}
	return y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
