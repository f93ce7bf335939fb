package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"babyday-backend/internal/model"
	"babyday-backend/internal/timeline"
	"babyday-backend/internal/validate"
)

// GetSchedule handles GET /api/babies/:baby_id/schedules/:date, generating the day on first access.
func (h *Handler) GetSchedule(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	slices, err := h.schedules.EnsureScheduleForDate(c.Request.Context(), c.Param("baby_id"), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slices": slices})
}

// PutSchedule handles PUT /api/babies/:baby_id/schedules/:date, replacing the whole day.
func (h *Handler) PutSchedule(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var slices []model.LogSlice
	if err := c.ShouldBindJSON(&slices); err != nil {
		badRequest(c, err.Error())
		return
	}
	overlaps, err := h.schedules.SaveSchedule(c.Request.Context(), c.Param("baby_id"), date, slices)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "overlaps": overlaps})
}

// GetPreviousSchedule handles GET /api/babies/:baby_id/schedules/:date/previous.
func (h *Handler) GetPreviousSchedule(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	slices, err := h.schedules.GetPreviousDailySchedule(c.Request.Context(), c.Param("baby_id"), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slices": slices})
}

// ListSchedules handles GET /api/babies/:baby_id/schedules?from=&to=.
func (h *Handler) ListSchedules(c *gin.Context) {
	from, ok := dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to")
	if !ok {
		return
	}
	if from == "" || to == "" {
		badRequest(c, "from and to are required")
		return
	}
	days, err := h.history.SummaryForRange(c.Request.Context(), c.Param("baby_id"), from, to)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "days": days})
}

// GetOverlaps handles GET /api/babies/:baby_id/schedules/:date/overlaps.
func (h *Handler) GetOverlaps(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	slices, err := h.schedules.GetDailySchedule(c.Request.Context(), c.Param("baby_id"), date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "overlaps": validate.DetectOverlaps(slices)})
}

type ring struct {
	Category model.Category       `json:"category"`
	Arcs     []timeline.Arc       `json:"arcs"`
	Gaps     []timeline.TimeRange `json:"gaps"`
}

// GetTimeline handles GET /api/babies/:baby_id/schedules/:date/timeline. It returns
// what the radial renderer needs: sorted slices, the overlay id sets and per-category rings.
func (h *Handler) GetTimeline(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	babyID := c.Param("baby_id")

	slices, err := h.schedules.GetDailySchedule(ctx, babyID, date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	confirmed, err := h.meta.ConfirmedIDs(ctx, babyID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	suggested, err := h.meta.AISuggestedIDs(ctx, babyID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	window, err := timeline.DayWindow(date, h.loc)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	sorted := timeline.SortByStart(slices)
	rings := make([]ring, 0, len(model.Categories))
	for _, category := range model.Categories {
		r := ring{Category: category, Arcs: []timeline.Arc{}}
		for _, s := range sorted {
			if s.Category != category {
				continue
			}
			if arc, err := timeline.ArcOf(timeline.TimeRange{Start: s.StartTime, End: s.EndTime}, h.loc); err == nil {
				r.Arcs = append(r.Arcs, arc)
			}
		}
		r.Gaps = timeline.CategoryGaps(sorted, category, window)
		rings = append(rings, r)
	}

	c.JSON(http.StatusOK, gin.H{
		"date":           date,
		"slices":         sorted,
		"confirmedIds":   confirmed,
		"aiSuggestedIds": suggested,
		"rings":          rings,
	})
}

// PostMidnightWatch handles POST /api/babies/:baby_id/watch, arming a one-shot
// watcher that materializes the next day at local midnight. Repeated calls while
// a watcher is pending report armed=false and add no timer.
func (h *Handler) PostMidnightWatch(c *gin.Context) {
	babyID := c.Param("baby_id")
	if strings.Contains(babyID, ":") {
		badRequest(c, "invalid baby id")
		return
	}
	armed := h.regenerator.StartMidnightWatcher(babyID)
	c.JSON(http.StatusAccepted, gin.H{"armed": armed})
}
