package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"babyday-backend/internal/model"
)

// ListTemplates handles GET /api/babies/:baby_id/templates.
func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.templates.ListTemplates(c.Request.Context(), c.Param("baby_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// GetTemplate handles GET /api/babies/:baby_id/templates/:template_id.
func (h *Handler) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.GetTemplate(c.Request.Context(), c.Param("baby_id"), c.Param("template_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// PutTemplate handles PUT /api/babies/:baby_id/templates/:template_id. The path id wins over the body.
func (h *Handler) PutTemplate(c *gin.Context) {
	var tpl model.ScheduleTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		badRequest(c, err.Error())
		return
	}
	tpl.TemplateID = c.Param("template_id")

	saved, err := h.templates.CreateOrUpdateTemplate(c.Request.Context(), c.Param("baby_id"), tpl)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// DeleteTemplate handles DELETE /api/babies/:baby_id/templates/:template_id.
func (h *Handler) DeleteTemplate(c *gin.Context) {
	if err := h.templates.DeleteTemplate(c.Request.Context(), c.Param("baby_id"), c.Param("template_id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
