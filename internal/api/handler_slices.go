package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"babyday-backend/internal/model"
	"babyday-backend/internal/schedule"
)

type sliceRequest struct {
	schedule.SliceDraft
	Source    model.Source `json:"source"`
	CreatedBy string       `json:"createdBy"`
}

// PostSlice handles POST /api/babies/:baby_id/schedules/:date/slices.
func (h *Handler) PostSlice(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var req sliceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Source == "" {
		req.Source = model.SourceUser
	}
	res, err := h.schedules.AddSlice(c.Request.Context(), c.Param("baby_id"), date, req.SliceDraft, req.Source, req.CreatedBy)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// PatchSlice handles PATCH /api/babies/:baby_id/schedules/:date/slices/:slice_id.
func (h *Handler) PatchSlice(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var draft schedule.SliceDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.schedules.UpdateSlice(c.Request.Context(), c.Param("baby_id"), date, c.Param("slice_id"), draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DeleteSlice handles DELETE /api/babies/:baby_id/schedules/:date/slices/:slice_id.
func (h *Handler) DeleteSlice(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	if err := h.schedules.RemoveSlice(c.Request.Context(), c.Param("baby_id"), date, c.Param("slice_id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostSuggestions handles POST /api/babies/:baby_id/schedules/:date/suggestions.
func (h *Handler) PostSuggestions(c *gin.Context) {
	date, ok := dateParam(c)
	if !ok {
		return
	}
	var suggestions []model.LogSlice
	if err := c.ShouldBindJSON(&suggestions); err != nil {
		badRequest(c, err.Error())
		return
	}
	accepted, err := h.schedules.AcceptSuggestions(c.Request.Context(), c.Param("baby_id"), date, suggestions)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"accepted": accepted})
}
