package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"babyday-backend/internal/model"
)

type putMetaRequest struct {
	Confirmed *bool        `json:"confirmed"`
	Edited    *bool        `json:"edited"`
	Source    model.Source `json:"source"`
}

// GetMeta handles GET /api/babies/:baby_id/slices/:slice_id/meta, creating the
// default record on first reference.
func (h *Handler) GetMeta(c *gin.Context) {
	m, err := h.meta.EnsureLogSliceMeta(c.Request.Context(), c.Param("baby_id"), c.Param("slice_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// PutMeta handles PUT /api/babies/:baby_id/slices/:slice_id/meta. Omitted fields are left alone.
func (h *Handler) PutMeta(c *gin.Context) {
	var req putMetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	babyID, sliceID := c.Param("baby_id"), c.Param("slice_id")

	m, err := h.meta.EnsureLogSliceMeta(ctx, babyID, sliceID)
	if err == nil && req.Source != "" {
		m, err = h.meta.SetSliceSource(ctx, babyID, sliceID, req.Source)
	}
	if err == nil && req.Edited != nil {
		m, err = h.meta.SetSliceEdited(ctx, babyID, sliceID, *req.Edited)
	}
	if err == nil && req.Confirmed != nil {
		m, err = h.meta.SetSliceConfirmed(ctx, babyID, sliceID, *req.Confirmed)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMeta handles DELETE /api/babies/:baby_id/slices/:slice_id/meta.
func (h *Handler) DeleteMeta(c *gin.Context) {
	if err := h.meta.RemoveSliceMeta(c.Request.Context(), c.Param("baby_id"), c.Param("slice_id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
