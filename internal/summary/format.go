package summary

import (
	"fmt"
	"time"

	"babyday-backend/internal/model"
)

// NoEventsText is returned instead of an empty summary.
const NoEventsText = "No events recorded."

var categoryLabels = map[model.Category]string{
	model.CategorySleep:  "Slept",
	model.CategoryAwake:  "Awake",
	model.CategoryFeed:   "Fed",
	model.CategoryDiaper: "Diaper change",
	model.CategoryCare:   "Care",
	model.CategoryTalk:   "Talked",
	model.CategoryOther:  "Other",
}

// CategoryLabel returns the human-readable label of a category.
func CategoryLabel(c model.Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// FormatDuration renders d as "H hr(s) M min", "H hr(s)" or "M min".
func FormatDuration(d time.Duration) string {
	totalMinutes := int(d.Round(time.Minute) / time.Minute)
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	hours, minutes := totalMinutes/60, totalMinutes%60

	hourUnit := "hrs"
	if hours == 1 {
		hourUnit = "hr"
	}

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d %s %d min", hours, hourUnit, minutes)
	case hours > 0:
		return fmt.Sprintf("%d %s", hours, hourUnit)
	default:
		return fmt.Sprintf("%d min", minutes)
	}
}

// FormatClock renders t as a 12-hour clock time in loc, e.g. "8:00 AM".
func FormatClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("3:04 PM")
}

// FormatRange renders "start–end" with 12-hour clock times.
func FormatRange(start, end time.Time, loc *time.Location) string {
	return FormatClock(start, loc) + "–" + FormatClock(end, loc)
}
