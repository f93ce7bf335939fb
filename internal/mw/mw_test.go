package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCache_ServesRepeatedGetsAndPurgesOnWrite(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	hits := 0

	r := gin.New()
	api := r.Group("/api")
	api.Use(Cache(store, time.Minute), InvalidateBaby(store, "/api"))
	api.GET("/babies/:baby_id/summary", func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "summary %d", hits)
	})
	api.PUT("/babies/:baby_id/schedules/:date", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/babies/b1/summary", nil))
		return w
	}

	first := get()
	second := get()
	assert.Equal(t, "summary 1", first.Body.String())
	assert.Equal(t, "summary 1", second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/babies/b1/schedules/2024-05-01", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	third := get()
	assert.Equal(t, "summary 2", third.Body.String())
}

func TestPurge_OnlyMatchingPrefix(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	store.Set("/api/babies/b1/summary", 1, cache.DefaultExpiration)
	store.Set("/api/babies/b10/summary", 2, cache.DefaultExpiration)

	Purge(store, "/api/babies/b1/")

	_, found := store.Get("/api/babies/b1/summary")
	assert.False(t, found)
	_, found = store.Get("/api/babies/b10/summary")
	assert.True(t, found)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2, zaptest.NewLogger(t)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
