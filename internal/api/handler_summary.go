package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"babyday-backend/internal/model"
	"babyday-backend/internal/summary"
)

// GetSummary handles GET /api/babies/:baby_id/summary.
// With ?date= it summarizes one day, optionally only ?category=; with ?from=&to= it
// renders every stored day in the range.
func (h *Handler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()
	babyID := c.Param("baby_id")

	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	if from != "" || to != "" {
		if from == "" || to == "" {
			badRequest(c, "from and to must be given together")
			return
		}
		text, err := h.history.RangeText(ctx, babyID, from, to)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "text": text})
		return
	}

	date, ok := dateQuery(c, "date")
	if !ok {
		return
	}
	if date == "" {
		badRequest(c, "date or from/to is required")
		return
	}

	slices, err := h.schedules.GetDailySchedule(ctx, babyID, date)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		h.writeError(c, err)
		return
	}

	text := h.summarizer.GenerateSliceSummary(slices)
	if raw := c.Query("category"); raw != "" {
		category := model.Category(raw)
		if !category.Valid() {
			badRequest(c, "unknown category "+raw)
			return
		}
		text = h.summarizer.SummaryForCategory(slices, category)
	}

	c.JSON(http.StatusOK, gin.H{
		"date":  date,
		"text":  text,
		"stats": summary.DurationStats(slices),
	})
}

// GetStats handles GET /api/babies/:baby_id/stats?days=|weeks=|months=|from=&to=.
// Without parameters it covers the last 7 days.
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()
	babyID := c.Param("baby_id")

	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}

	var (
		stats summary.RangeStats
		err   error
	)
	switch {
	case from != "" && to != "":
		stats, err = h.history.StatsForRange(ctx, babyID, from, to)
	case c.Query("months") != "":
		stats, err = withCount(c, "months", func(n int) (summary.RangeStats, error) {
			return h.history.StatsForLastNMonths(ctx, babyID, n)
		})
	case c.Query("weeks") != "":
		stats, err = withCount(c, "weeks", func(n int) (summary.RangeStats, error) {
			return h.history.StatsForLastNWeeks(ctx, babyID, n)
		})
	default:
		stats, err = countFrom(c.DefaultQuery("days", "7"), "days", func(n int) (summary.RangeStats, error) {
			return h.history.StatsForLastNDays(ctx, babyID, n)
		})
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func withCount(c *gin.Context, key string, fn func(int) (summary.RangeStats, error)) (summary.RangeStats, error) {
	return countFrom(c.Query(key), key, fn)
}

func countFrom(raw, key string, fn func(int) (summary.RangeStats, error)) (summary.RangeStats, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return summary.RangeStats{}, &model.ValidationError{Object: "range", Issues: []string{key + " must be an integer"}, Err: err}
	}
	return fn(n)
}
