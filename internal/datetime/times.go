package datetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type timeRule struct {
	name  string
	parse func(text string) (string, bool)
}

var timeRules = []timeRule{
	{"keyword", parseTimeKeyword},
	{"clock-meridiem", parseClockMeridiem},
	{"hour-meridiem", parseHourMeridiem},
	{"24-hour", parse24Hour},
}

// Ordered so that "afternoon" is tried before "noon".
var timeKeywords = []struct {
	pattern *regexp.Regexp
	value   string
}{
	{regexp.MustCompile(`\bmorning\b`), "09:00"},
	{regexp.MustCompile(`\bafternoon\b`), "14:00"},
	{regexp.MustCompile(`\bevening\b`), "18:00"},
	{regexp.MustCompile(`\bnoon\b`), "12:00"},
	{regexp.MustCompile(`\bmidnight\b`), "00:00"},
}

var (
	clockMeridiem = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)\b`)
	hourMeridiem  = regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`)
	clock24       = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	dottedAM      = regexp.MustCompile(`\ba\.m\.?`)
	dottedPM      = regexp.MustCompile(`\bp\.m\.?`)
)

func normalizeMeridiem(text string) string {
	text = dottedAM.ReplaceAllString(text, "am")
	return dottedPM.ReplaceAllString(text, "pm")
}

func parseTimeKeyword(text string) (string, bool) {
	for _, kw := range timeKeywords {
		if kw.pattern.MatchString(text) {
			return kw.value, true
		}
	}
	return "", false
}

func parseClockMeridiem(text string) (string, bool) {
	m := clockMeridiem.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	minute, _ := strconv.Atoi(m[2])
	return meridiem(m[1], minute, m[3])
}

func parseHourMeridiem(text string) (string, bool) {
	m := hourMeridiem.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return meridiem(m[1], 0, m[2])
}

func parse24Hour(text string) (string, bool) {
	m := clock24.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

func meridiem(h string, minute int, period string) (string, bool) {
	hour, _ := strconv.Atoi(h)
	if hour < 1 || hour > 12 || minute > 59 {
		return "", false
	}
	switch strings.ToLower(period) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}
