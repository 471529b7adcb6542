// Package dateutils parses bank-export dates and provides the calendar
// arithmetic used for ranges and trend buckets. All dates are handled as
// calendar days in UTC.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayoutISO is the canonical storage layout.
const DateLayoutISO = "2006-01-02"

// CommonFormats lists the layouts tried when parsing export dates. Day-first
// layouts come before month-first ones since UK and UAE banks write dates that way.
var CommonFormats = []string{
	DateLayoutISO,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"02/01/2006 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
	"02/01/06",
}

var multiSpace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace.
func CleanDateString(s string) string {
	return multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
}

// ParseDate tries every layout in CommonFormats and returns the calendar day.
func ParseDate(s string) (time.Time, error) {
	s = CleanDateString(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range CommonFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// NormalizeISO converts any supported date representation to YYYY-MM-DD.
func NormalizeISO(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return ToISODate(t), nil
}

// ParseISO parses a strict YYYY-MM-DD date.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(DateLayoutISO, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO date %q: %w", s, err)
	}
	return t, nil
}

// ToISODate formats t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(DateLayoutISO)
}

// Day truncates t to midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// EndOfPreviousMonth returns the last day of the calendar month before t.
func EndOfPreviousMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 0, -1)
}

// StartOfWeek returns the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return Day(t).AddDate(0, 0, -offset)
}

// EndOfWeek returns the Sunday on or after t.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 6)
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthsBetween counts calendar months from start's month to end's month,
// inclusive of both. It returns 0 when end precedes start's month.
func MonthsBetween(start, end time.Time) int {
	n := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1
	if n < 0 {
		return 0
	}
	return n
}
