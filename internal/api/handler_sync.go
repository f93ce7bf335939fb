package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"babyday-backend/internal/model"
	"babyday-backend/internal/validate"
	"babyday-backend/internal/versioning"
)

type syncRequest struct {
	Local  *model.LogSlice `json:"local"`
	Remote model.LogSlice  `json:"remote"`
}

// PostSyncDecide handles POST /api/sync/decide. It classifies two copies of a slice
// and returns the copy to keep; divergent copies at the same version yield 409.
func (h *Handler) PostSyncDecide(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := validate.Slice(req.Remote); err != nil {
		h.writeError(c, err)
		return
	}

	resolved, action, err := versioning.ResolveSync(req.Local, req.Remote)
	if errors.Is(err, model.ErrConflictUnresolved) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "action": action})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action, "slice": resolved})
}
