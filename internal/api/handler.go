package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"babyday-backend/internal/meta"
	"babyday-backend/internal/model"
	"babyday-backend/internal/parse"
	"babyday-backend/internal/schedule"
	"babyday-backend/internal/summary"
)

// Deps are the services the HTTP layer is wired to.
type Deps struct {
	Schedules   *schedule.Service
	Templates   *schedule.TemplateService
	Regenerator *schedule.Regenerator
	Meta        *meta.Service
	History     *summary.History
	Location    *time.Location
	DB          *gorm.DB
	WebPush     *webpush.Options
	Logger      *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	schedules   *schedule.Service
	templates   *schedule.TemplateService
	regenerator *schedule.Regenerator
	meta        *meta.Service
	history     *summary.History
	summarizer  *summary.Summarizer
	loc         *time.Location
	db          *gorm.DB
	webpush     *webpush.Options
	logger      *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		schedules:   d.Schedules,
		templates:   d.Templates,
		regenerator: d.Regenerator,
		meta:        d.Meta,
		history:     d.History,
		summarizer:  summary.NewSummarizer(loc),
		loc:         loc,
		db:          d.DB,
		webpush:     d.WebPush,
		logger:      logger,
	}
}

// writeError maps domain errors onto HTTP statuses.
func (h *Handler) writeError(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error(), "issues": ve.Issues})
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrConflictUnresolved):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// dateParam reads and checks the :date path parameter.
func dateParam(c *gin.Context) (string, bool) {
	date := c.Param("date")
	if _, err := parse.ParseDate(date); err != nil {
		badRequest(c, "invalid date, want YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// dateQuery reads an optional YYYY-MM-DD query parameter.
func dateQuery(c *gin.Context, key string) (string, bool) {
	date := c.Query(key)
	if date == "" {
		return "", true
	}
	if _, err := parse.ParseDate(date); err != nil {
		badRequest(c, "invalid "+key+", want YYYY-MM-DD")
		return "", false
	}
	return date, true
}
