package timeline

import (
	"errors"
	"sort"
	"time"

	"babyday-backend/internal/model"
	"babyday-backend/internal/parse"
)

// ErrInvalidTimeRange is returned for ranges whose end is not after their start.
var ErrInvalidTimeRange = errors.New("invalid time range")

const minutesPerDay = 24 * 60

// TimeRange is the half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Arc is a TimeRange projected onto the 24-hour dial, in degrees clockwise from midnight.
type Arc struct {
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
}

// DayWindow returns the 24-hour range beginning at local midnight of dateISO.
func DayWindow(dateISO string, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(parse.DateLayout, dateISO, loc)
	if err != nil {
		return TimeRange{}, err
	}
	return TimeRange{Start: d, End: d.AddDate(0, 0, 1)}, nil
}

// AngleOf maps the local time of day of t to [0, 360).
func AngleOf(t time.Time, loc *time.Location) float64 {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	minutes := float64(lt.Hour()*60+lt.Minute()) + float64(lt.Second())/60
	return minutes / minutesPerDay * 360
}

// ArcOf projects r onto the dial. The end angle may exceed 360 when r crosses midnight.
func ArcOf(r TimeRange, loc *time.Location) (Arc, error) {
	if !r.End.After(r.Start) {
		return Arc{}, ErrInvalidTimeRange
	}
	start := AngleOf(r.Start, loc)
	sweep := r.End.Sub(r.Start).Minutes() / minutesPerDay * 360
	return Arc{StartAngle: start, EndAngle: start + sweep}, nil
}

// SortByStart returns a copy of slices ordered by start time, ties by end time.
func SortByStart(slices []model.LogSlice) []model.LogSlice {
	sorted := append([]model.LogSlice(nil), slices...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}
		return sorted[i].EndTime.Before(sorted[j].EndTime)
	})
	return sorted
}

// CategoryGaps returns the parts of window not covered by slices of category,
// sorted by start. Slices are clipped to window and overlapping ones are united first.
func CategoryGaps(slices []model.LogSlice, category model.Category, window TimeRange) []TimeRange {
	gaps := []TimeRange{}
	if !window.End.After(window.Start) {
		return gaps
	}

	var covered []TimeRange
	for _, s := range SortByStart(slices) {
		if s.Category != category {
			continue
		}
		start, end := clip(s.StartTime, s.EndTime, window)
		if !end.After(start) {
			continue
		}
		if n := len(covered); n > 0 && !start.After(covered[n-1].End) {
			if end.After(covered[n-1].End) {
				covered[n-1].End = end
			}
			continue
		}
		covered = append(covered, TimeRange{Start: start, End: end})
	}

	cursor := window.Start
	for _, c := range covered {
		if c.Start.After(cursor) {
			gaps = append(gaps, TimeRange{Start: cursor, End: c.Start})
		}
		cursor = c.End
	}
	if window.End.After(cursor) {
		gaps = append(gaps, TimeRange{Start: cursor, End: window.End})
	}
	return gaps
}

func clip(start, end time.Time, window TimeRange) (time.Time, time.Time) {
	if start.Before(window.Start) {
		start = window.Start
	}
	if end.After(window.End) {
		end = window.End
	}
	return start, end
}
