package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"babyday-backend/internal/model"
	"babyday-backend/internal/parse"
)

// ScheduleReader is the read side of the schedule store used for history.
type ScheduleReader interface {
	GetAllSchedulesForBabyInRange(ctx context.Context, babyID, fromDate, toDate string) (map[string][]model.LogSlice, error)
}

// History summarizes stored days across date ranges.
type History struct {
	reader     ScheduleReader
	summarizer *Summarizer
	now        func() time.Time
	logger     *zap.Logger
}

// NewHistory creates a History reading from r and rendering times in loc.
func NewHistory(r ScheduleReader, loc *time.Location, logger *zap.Logger) *History {
	return &History{
		reader:     r,
		summarizer: NewSummarizer(loc),
		now:        time.Now,
		logger:     logger,
	}
}

// DaySummary is the rendered summary of one stored day.
type DaySummary struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// RangeStats aggregates durations over a set of stored days.
type RangeStats struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	DaysStored int             `json:"daysStored"`
	Categories []CategoryStats `json:"categories"`
}

// SummaryForRange renders one summary per stored day in [fromDate, toDate], oldest first.
func (h *History) SummaryForRange(ctx context.Context, babyID, fromDate, toDate string) ([]DaySummary, error) {
	days, err := h.reader.GetAllSchedulesForBabyInRange(ctx, babyID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules for %s..%s: %w", fromDate, toDate, err)
	}

	out := make([]DaySummary, 0, len(days))
	for _, date := range sortedDates(days) {
		out = append(out, DaySummary{Date: date, Text: h.summarizer.GenerateSliceSummary(days[date])})
	}
	return out, nil
}

// RangeText renders every stored day in the range as one report.
func (h *History) RangeText(ctx context.Context, babyID, fromDate, toDate string) (string, error) {
	summaries, err := h.SummaryForRange(ctx, babyID, fromDate, toDate)
	if err != nil {
		return "", err
	}
	if len(summaries) == 0 {
		return NoEventsText, nil
	}
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s.Date)
		b.WriteString("\n")
		b.WriteString(s.Text)
	}
	return b.String(), nil
}

// StatsForRange aggregates category durations over [fromDate, toDate].
// Blocks are merged per day so a sleep spanning midnight counts once per stored day.
func (h *History) StatsForRange(ctx context.Context, babyID, fromDate, toDate string) (RangeStats, error) {
	days, err := h.reader.GetAllSchedulesForBabyInRange(ctx, babyID, fromDate, toDate)
	if err != nil {
		return RangeStats{}, fmt.Errorf("failed to load schedules for %s..%s: %w", fromDate, toDate, err)
	}

	var blocks []Block
	for _, date := range sortedDates(days) {
		blocks = append(blocks, MergeContiguous(days[date])...)
	}

	h.logger.Debug("aggregated history",
		zap.String("babyId", babyID),
		zap.String("from", fromDate),
		zap.String("to", toDate),
		zap.Int("days", len(days)),
		zap.Int("blocks", len(blocks)))

	return RangeStats{
		From:       fromDate,
		To:         toDate,
		DaysStored: len(days),
		Categories: aggregate(blocks, len(days)),
	}, nil
}

// StatsForLastNDays aggregates the last n days including today.
func (h *History) StatsForLastNDays(ctx context.Context, babyID string, n int) (RangeStats, error) {
	from, to, err := h.lastDays(n)
	if err != nil {
		return RangeStats{}, err
	}
	return h.StatsForRange(ctx, babyID, from, to)
}

// StatsForLastNWeeks aggregates the last n*7 days including today.
func (h *History) StatsForLastNWeeks(ctx context.Context, babyID string, n int) (RangeStats, error) {
	return h.StatsForLastNDays(ctx, babyID, n*7)
}

// StatsForLastNMonths aggregates from the same calendar day n months ago through today.
func (h *History) StatsForLastNMonths(ctx context.Context, babyID string, n int) (RangeStats, error) {
	if n <= 0 {
		return RangeStats{}, &model.ValidationError{Object: "range", Issues: []string{"months must be positive"}}
	}
	today := h.today()
	from := parse.FormatDate(monthsBefore(today, n).AddDate(0, 0, 1))
	return h.StatsForRange(ctx, babyID, from, parse.FormatDate(today))
}

// monthsBefore moves t back n calendar months, clamping the day to the end of
// the target month so 31 March minus one month is 29 February, not 2 March.
func monthsBefore(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()-time.Month(n), 1, 0, 0, 0, 0, t.Location())
	day := t.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, t.Location())
}

func (h *History) lastDays(n int) (string, string, error) {
	if n <= 0 {
		return "", "", &model.ValidationError{Object: "range", Issues: []string{"days must be positive"}}
	}
	today := h.today()
	return parse.FormatDate(today.AddDate(0, 0, -(n - 1))), parse.FormatDate(today), nil
}

func (h *History) today() time.Time {
	now := h.now().In(h.summarizer.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func sortedDates(days map[string][]model.LogSlice) []string {
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
