package parse

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the layout of the dateISO keys used across the store.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as midnight UTC of that day.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", raw, err)
	}
	return d, nil
}

// FormatDate renders t's calendar date in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// LocalDate returns the calendar date of t as seen in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// HourOffset converts a (possibly fractional) hour of the day to a duration,
// rounded to the nearest whole minute.
func HourOffset(hour float64) (time.Duration, error) {
	if math.IsNaN(hour) || hour < 0 || hour > 24 {
		return 0, fmt.Errorf("hour %v out of range [0,24]", hour)
	}
	minutes := math.Round(hour * 60)
	return time.Duration(minutes) * time.Minute, nil
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(dateISO string, n int) (string, error) {
	d, err := ParseDate(dateISO)
	if err != nil {
		return "", err
	}
	return FormatDate(d.AddDate(0, 0, n)), nil
}
