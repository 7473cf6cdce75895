package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\D)(\d{3}[-.]?\d{3}[-.]?\d{4})(?:\D|$)`),
	regexp.MustCompile(`(?:^|\D)(\d{10})(?:\D|$)`),
	regexp.MustCompile(`(\+\d{1,3}[-.]?\d{3,4}[-.]?\d{3,4}[-.]?\d{3,4})(?:\D|$)`),
}

// matchPhone searches the message with spaces removed so that
// "555 123 4567" and "555-123-4567" both match.
func matchPhone(message string) (string, bool) {
	compact := strings.ReplaceAll(message, " ", "")
	for _, p := range phonePatterns {
		if m := p.FindStringSubmatch(compact); m != nil {
			return m[1], true
		}
	}
	return "", false
}

var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmy name is ([a-z][a-z ]*)`),
	regexp.MustCompile(`\bi['’]m ([a-z][a-z ]*)`),
	regexp.MustCompile(`\bi am ([a-z][a-z ]*)`),
	regexp.MustCompile(`\bthis is ([a-z][a-z ]*)`),
	regexp.MustCompile(`\bcall me ([a-z][a-z ]*)`),
}

// Words that follow "I'm" or "this is" without being a name.
var nameStopWords = map[string]bool{
	"looking": true, "free": true, "calling": true, "interested": true,
	"available": true, "not": true, "just": true, "here": true, "good": true,
	"fine": true, "sorry": true, "wondering": true, "hoping": true,
	"trying": true, "great": true, "a": true, "an": true, "the": true,
	"going": true, "having": true, "new": true, "still": true, "ok": true,
	"okay": true, "for": true, "about": true, "my": true, "back": true,
	"at": true, "when": true, "so": true, "really": true, "very": true,
}

// matchName takes the first self-introduction phrase in the message. The
// captured run stops at the first non-letter; a run longer than three
// words, or one cut short by a digit, is rejected rather than trimmed.
func matchName(message string) (string, bool) {
	lower := strings.ToLower(message)
	for _, p := range namePatterns {
		loc := p.FindStringSubmatchIndex(lower)
		if loc == nil {
			continue
		}
		run := lower[loc[2]:loc[3]]
		if loc[3] < len(lower) && isWordChar(lower[loc[3]]) {
			// The run stopped inside a token such as "r2d2".
			return "", false
		}
		words := strings.Fields(run)
		if len(words) == 0 || len(words) > 3 || nameStopWords[words[0]] {
			return "", false
		}
		return cases.Title(language.English).String(strings.Join(words, " ")), true
	}
	return "", false
}

const dobMonths = `january|february|march|april|may|june|july|august|september|october|november|december`

var shortMonths = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Each pattern maps its submatches to year, month and day.
var dobPatterns = []struct {
	re    *regexp.Regexp
	parts func(m []string) (y, mo, d int)
}{
	{
		regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		func(m []string) (int, int, int) { return atoi(m[3]), atoi(m[1]), atoi(m[2]) },
	},
	{
		regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`),
		func(m []string) (int, int, int) { return atoi(m[3]), atoi(m[1]), atoi(m[2]) },
	},
	{
		regexp.MustCompile(`\b(` + dobMonths + `)\s+(\d{1,2}),?\s+(\d{4})\b`),
		func(m []string) (int, int, int) { return atoi(m[3]), shortMonths[m[1][:3]], atoi(m[2]) },
	},
	{
		regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+(\d{4})\b`),
		func(m []string) (int, int, int) { return atoi(m[3]), shortMonths[m[2]], atoi(m[1]) },
	},
}

var emailPattern = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)

// dobMatcher accepts numeric and month-name dates. The matched text is
// kept as written, but it must be a real calendar date not after today.
// Only the first pattern that matches is considered.
func dobMatcher(now func() time.Time) func(string) (string, bool) {
	return func(message string) (string, bool) {
		lower := strings.ToLower(message)
		for _, p := range dobPatterns {
			m := p.re.FindStringSubmatch(lower)
			if m == nil {
				continue
			}
			y, mo, d := p.parts(m)
			if !validBirthDate(y, mo, d, now()) {
				return "", false
			}
			return m[0], true
		}
		return "", false
	}
}

func validBirthDate(y, mo, d int, now time.Time) bool {
	if mo < 1 || mo > 12 || d < 1 || y < 1900 {
		return false
	}
	date := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location())
	if date.Day() != d || int(date.Month()) != mo {
		return false
	}
	return !date.After(now)
}

func matchEmail(message string) (string, bool) {
	m := emailPattern.FindString(strings.ToLower(message))
	return m, m != ""
}

// serviceMatcher finds the first configured service mentioned in the
// message. A trailing plural "s" on the service name is optional.
func serviceMatcher(services []string) func(string) (string, bool) {
	type entry struct {
		name    string
		pattern *regexp.Regexp
	}
	entries := make([]entry, 0, len(services))
	for _, s := range services {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		stem := regexp.QuoteMeta(strings.TrimSuffix(key, "s"))
		entries = append(entries, entry{name: s, pattern: regexp.MustCompile(`\b` + stem + `s?\b`)})
	}
	return func(message string) (string, bool) {
		lower := strings.ToLower(message)
		for _, e := range entries {
			if e.pattern.MatchString(lower) {
				return e.name, true
			}
		}
		return "", false
	}
}

func isWordChar(b byte) bool {
	return b >= '0' && b <= '9' || b == '_' || b >= 0x80
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
