package core

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/valter-silva-au/iar/pkg/models"
)

const monthNamePattern = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|` +
	`Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`

// rangeSeparator matches "-", an en dash, or the word "to".
const rangeSeparator = `\s*(?:-|–|to)\s*`

// monthNameRangePattern matches "Nov 24-28", "November 2, 2025",
// "Sept. 3 to 5" and "Oct 30-Nov 3".
var monthNameRangePattern = regexp.MustCompile(`(?i)` +
	`(?P<month>` + monthNamePattern + `)\.?\s*` +
	`(?P<start>\d{1,2})` +
	`(?:` + rangeSeparator + `(?:(?P<endmonth>` + monthNamePattern + `)\.?\s*)?(?P<end>\d{1,2}))?` +
	`(?:\s*,?\s*(?P<year>\d{4}))?`)

// numericRangePattern matches "11/24-11/28", "11-24 to 28" and "3/5, 2024".
var numericRangePattern = regexp.MustCompile(`(?i)` +
	`(?P<month>\d{1,2})[/\-](?P<start>\d{1,2})` +
	`(?:` + rangeSeparator + `(?:(?P<endmonth>\d{1,2})[/\-])?(?P<end>\d{1,2}))?` +
	`(?:\s*,?\s*(?P<year>\d{4}))?`)

// monthNumbers maps lower-case month names and abbreviations to months.
var monthNumbers = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// rangeMatch holds the raw capture groups of one pattern match.
type rangeMatch struct {
	month, start, endMonth, end, year string
}

// ParseDateRanges extracts every date range mentioned in text. Month-name
// matches come first, then numeric matches, each in textual order. A
// missing year falls back to defaultYear and a missing end day makes a
// single-day range. Matches that do not name a real calendar day are
// skipped; ParseDateRanges never fails.
func ParseDateRanges(text string, defaultYear int, defaultMonth time.Month) []models.DateRange {
	var ranges []models.DateRange

	for _, m := range findRangeMatches(monthNameRangePattern, text) {
		month := monthFromName(m.month, defaultMonth)
		endMonth := month
		if m.endMonth != "" {
			endMonth = monthFromName(m.endMonth, month)
		}
		if r, ok := buildRange(m, month, endMonth, defaultYear); ok {
			ranges = append(ranges, r)
		}
	}

	for _, m := range findRangeMatches(numericRangePattern, text) {
		month, err := strconv.Atoi(m.month)
		if err != nil {
			continue
		}
		endMonth := month
		if m.endMonth != "" {
			if endMonth, err = strconv.Atoi(m.endMonth); err != nil {
				continue
			}
		}
		if r, ok := buildRange(m, time.Month(month), time.Month(endMonth), defaultYear); ok {
			ranges = append(ranges, r)
		}
	}

	return ranges
}

func findRangeMatches(re *regexp.Regexp, text string) []rangeMatch {
	var (
		monthIdx    = re.SubexpIndex("month")
		startIdx    = re.SubexpIndex("start")
		endMonthIdx = re.SubexpIndex("endmonth")
		endIdx      = re.SubexpIndex("end")
		yearIdx     = re.SubexpIndex("year")
	)

	var matches []rangeMatch
	for _, sm := range re.FindAllStringSubmatch(text, -1) {
		matches = append(matches, rangeMatch{
			month:    sm[monthIdx],
			start:    sm[startIdx],
			endMonth: sm[endMonthIdx],
			end:      sm[endIdx],
			year:     sm[yearIdx],
		})
	}
	return matches
}

// buildRange validates the captured day numbers against the calendar.
// When an explicit end month precedes the start month the range crosses a
// year boundary: a written year belongs to the end ("Dec 29-Jan 2, 2026"),
// while without one the start stays in defaultYear and the end rolls over.
func buildRange(m rangeMatch, month, endMonth time.Month, defaultYear int) (models.DateRange, bool) {
	year := defaultYear
	if m.year != "" {
		y, err := strconv.Atoi(m.year)
		if err != nil {
			return models.DateRange{}, false
		}
		year = y
	}

	startDay, err := strconv.Atoi(m.start)
	if err != nil {
		return models.DateRange{}, false
	}
	endDay := startDay
	if m.end != "" {
		if endDay, err = strconv.Atoi(m.end); err != nil {
			return models.DateRange{}, false
		}
	}

	startYear, endYear := year, year
	if m.endMonth != "" && endMonth < month {
		if m.year != "" {
			startYear = year - 1
		} else {
			endYear = year + 1
		}
	}

	if !models.ValidDate(startYear, month, startDay) || !models.ValidDate(endYear, endMonth, endDay) {
		return models.DateRange{}, false
	}
	return models.NewDateRange(
		models.Date(startYear, month, startDay),
		models.Date(endYear, endMonth, endDay),
	), true
}

func monthFromName(name string, fallback time.Month) time.Month {
	key := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	if m, ok := monthNumbers[key]; ok {
		return m
	}
	return fallback
}
