package api

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"babyday-backend/config"
	"babyday-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(h.logger))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, h.logger)

	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	// Days generated by GET requests or at midnight bypass InvalidateBaby.
	purge := func(babyID, _ string) { mw.PurgeBaby(cacheStore, "/api", babyID) }
	if h.schedules != nil {
		h.schedules.OnDayStored(purge)
	}
	if h.regenerator != nil {
		h.regenerator.OnDayStored(purge)
	}

	api := r.Group("/api")
	api.Use(rateLimiter, mw.InvalidateBaby(cacheStore, "/api"))
	{
		baby := api.Group("/babies/:baby_id")

		baby.GET("/schedules", caching, h.ListSchedules)
		baby.GET("/schedules/:date", h.GetSchedule)
		baby.PUT("/schedules/:date", h.PutSchedule)
		baby.GET("/schedules/:date/previous", h.GetPreviousSchedule)
		baby.GET("/schedules/:date/overlaps", h.GetOverlaps)
		baby.GET("/schedules/:date/timeline", h.GetTimeline)

		baby.POST("/schedules/:date/slices", h.PostSlice)
		baby.PATCH("/schedules/:date/slices/:slice_id", h.PatchSlice)
		baby.DELETE("/schedules/:date/slices/:slice_id", h.DeleteSlice)
		baby.POST("/schedules/:date/suggestions", h.PostSuggestions)

		baby.GET("/summary", caching, h.GetSummary)
		baby.GET("/stats", caching, h.GetStats)

		baby.GET("/templates", h.ListTemplates)
		baby.GET("/templates/:template_id", h.GetTemplate)
		baby.PUT("/templates/:template_id", h.PutTemplate)
		baby.DELETE("/templates/:template_id", h.DeleteTemplate)

		baby.GET("/slices/:slice_id/meta", h.GetMeta)
		baby.PUT("/slices/:slice_id/meta", h.PutMeta)
		baby.DELETE("/slices/:slice_id/meta", h.DeleteMeta)

		baby.POST("/watch", h.PostMidnightWatch)

		api.POST("/sync/decide", h.PostSyncDecide)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
