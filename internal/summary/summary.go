package summary

import (
	"strings"
	"time"

	"babyday-backend/internal/model"
	"babyday-backend/internal/parse"
)

// Summarizer renders merged slice blocks as text in a fixed location.
type Summarizer struct {
	loc *time.Location
}

// NewSummarizer creates a Summarizer rendering clock times in loc (UTC when nil).
func NewSummarizer(loc *time.Location) *Summarizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Summarizer{loc: loc}
}

var defaultSummarizer = NewSummarizer(time.UTC)

// GenerateSliceSummary merges contiguous same-category slices and renders one
// line per block, clock times in UTC.
func GenerateSliceSummary(slices []model.LogSlice) string {
	return defaultSummarizer.GenerateSliceSummary(slices)
}

// GenerateSliceSummary merges contiguous same-category slices and renders one line per block.
func (s *Summarizer) GenerateSliceSummary(slices []model.LogSlice) string {
	blocks := MergeContiguous(slices)
	if len(blocks) == 0 {
		return NoEventsText
	}

	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, s.FormatBlock(b))
	}
	return strings.Join(lines, "\n")
}

// FormatBlock renders a single block, e.g. "Slept 1 hr 30 min (8:00 AM–9:30 AM)".
func (s *Summarizer) FormatBlock(b Block) string {
	return CategoryLabel(b.Category) + " " + FormatDuration(b.Duration()) + " (" + FormatRange(b.Start, b.End, s.loc) + ")"
}

// SummaryForCategory summarizes only slices of the given category.
func (s *Summarizer) SummaryForCategory(slices []model.LogSlice, category model.Category) string {
	return s.GenerateSliceSummary(Filter(slices, func(sl model.LogSlice) bool {
		return sl.Category == category
	}))
}

// SummaryForDate summarizes only slices starting on dateISO in the summarizer's location.
func (s *Summarizer) SummaryForDate(slices []model.LogSlice, dateISO string) string {
	return s.GenerateSliceSummary(Filter(slices, func(sl model.LogSlice) bool {
		return parse.LocalDate(sl.StartTime, s.loc) == dateISO
	}))
}

// SummaryForBaby summarizes only slices owned by babyID.
func (s *Summarizer) SummaryForBaby(slices []model.LogSlice, babyID string) string {
	return s.GenerateSliceSummary(Filter(slices, func(sl model.LogSlice) bool {
		return sl.BabyID == babyID
	}))
}

// Filter returns the slices for which keep returns true.
func Filter(slices []model.LogSlice, keep func(model.LogSlice) bool) []model.LogSlice {
	var out []model.LogSlice
	for _, sl := range slices {
		if keep(sl) {
			out = append(out, sl)
		}
	}
	return out
}
