package extractor

import (
	// Go Internal Packages
	"regexp"
	"strconv"
	"strings"
	"time"
)

const textDateExpr = `(\d{1,2})-([a-zA-Z]{3})-(\d{4}|\d{2})\b`

var datePattern = regexp.MustCompile(`\b` + textDateExpr)

var months = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// ExtractDate returns the first DD-MMM-YY(YY) date in text as midnight UTC.
// When no valid date is present it falls back to receivedAt, so it never
// fails; the bool reports whether the date came from the text.
func ExtractDate(text string, receivedAt time.Time) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(text)
	if m != nil {
		if t, ok := buildDate(m[1], m[2], m[3]); ok {
			return t, true
		}
	}
	return receivedAt.UTC(), false
}

func buildDate(day, mon, year string) (time.Time, bool) {
	month, ok := months[strings.ToLower(mon)]
	if !ok {
		return time.Time{}, false
	}
	if len(year) == 2 {
		year = "20" + year
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}

	t := time.Date(y, month, d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 31-Feb into March; reject instead.
	if t.Day() != d || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}
