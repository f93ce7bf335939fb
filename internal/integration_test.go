package internal

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"babyday-backend/config"
	"babyday-backend/internal/db"
	"babyday-backend/internal/kv"
	"babyday-backend/internal/meta"
	"babyday-backend/internal/model"
	"babyday-backend/internal/schedule"
	"babyday-backend/internal/store"
	"babyday-backend/internal/summary"
	"babyday-backend/internal/versioning"
)

type readyRecorder struct {
	mu    sync.Mutex
	ready []string
}

func (r *readyRecorder) NotifyScheduleReady(babyID, dateISO string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = append(r.ready, babyID+"/"+dateISO)
}

// TestDayLifecycle drives a baby's day from first access through confirmation,
// editing, regeneration and reporting against the SQLite key-value backend.
func TestDayLifecycle(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	// --- Test Setup ---
	testDB, err := db.Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file:lifecycle?mode=memory&cache=shared"}, logger)
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	defer sqlDB.Close()

	kvs := kv.NewGormStore(testDB)
	schedules := store.NewScheduleStore(kvs, 3, logger)
	templates := schedule.NewTemplateService(store.NewTemplateStore(kvs), "default", logger)
	engine := schedule.NewEngine(templates, schedule.NewGenerator(), logger)
	metaSvc := meta.NewService(store.NewMetaStore(kvs, logger), logger)
	svc := schedule.NewService(schedules, engine, metaSvc, logger)
	recorder := &readyRecorder{}
	regenerator := schedule.NewRegenerator(engine, schedules, recorder, time.UTC, logger)
	history := summary.NewHistory(schedules, time.UTC, logger)

	// --- Step 1: first access bootstraps the default template and stores the day ---
	day, err := svc.EnsureScheduleForDate(ctx, "baby-1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, day, len(schedule.DefaultTemplate("default").Entries))

	tpl, err := templates.GetTemplate(ctx, "baby-1", "default")
	require.NoError(t, err)
	assert.InDelta(t, 24, tpl.TotalHours(), 1e-9)

	again, err := svc.EnsureScheduleForDate(ctx, "baby-1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, day[0].ID, again[0].ID)

	// --- Step 2: confirm a slice; the overlay is independent of content ---
	_, err = metaSvc.SetSliceConfirmed(ctx, "baby-1", day[0].ID, true)
	require.NoError(t, err)

	// --- Step 3: edit a slice, which bumps its version and leaves a backup ---
	res, err := svc.UpdateSlice(ctx, "baby-1", "2024-05-01", day[0].ID, schedule.SliceDraft{
		Category:  day[0].Category,
		StartTime: day[0].StartTime,
		EndTime:   day[0].EndTime.Add(-30 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Slice.Version)
	assert.Equal(t, versioning.Local, versioning.CompareSliceVersions(res.Slice, day[0]))

	prev, err := schedules.GetPreviousDailySchedule(ctx, "baby-1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 1, prev[0].Version)

	m, err := metaSvc.GetSliceMeta(ctx, "baby-1", day[0].ID)
	require.NoError(t, err)
	assert.True(t, m.Confirmed)
	assert.True(t, m.Edited)
	assert.Equal(t, model.SourceUser, m.Source)

	// --- Step 4: regeneration never clobbers a stored day ---
	wrote, err := regenerator.RegenerateDay(ctx, "baby-1", "2024-05-01")
	require.NoError(t, err)
	assert.False(t, wrote)

	wrote, err = regenerator.RegenerateDay(ctx, "baby-1", "2024-05-02")
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, []string{"baby-1/2024-05-02"}, recorder.ready)

	// --- Step 5: deleting and regenerating a day keeps confirmation history ---
	require.NoError(t, schedules.DeleteDailySchedule(ctx, "baby-1", "2024-05-01"))
	regenerated, err := svc.EnsureScheduleForDate(ctx, "baby-1", "2024-05-01")
	require.NoError(t, err)
	assert.NotEqual(t, day[0].ID, regenerated[0].ID)

	confirmed, err := metaSvc.ConfirmedIDs(ctx, "baby-1")
	require.NoError(t, err)
	assert.Equal(t, []string{day[0].ID}, confirmed)

	// --- Step 6: reporting across the stored range ---
	stats, err := history.StatsForRange(ctx, "baby-1", "2024-05-01", "2024-05-31")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.DaysStored)

	var total time.Duration
	for _, c := range stats.Categories {
		total += c.Total
	}
	assert.Equal(t, 48*time.Hour, total)

	text, err := history.RangeText(ctx, "baby-1", "2024-05-01", "2024-05-02")
	require.NoError(t, err)
	assert.Contains(t, text, "2024-05-02")
	assert.Contains(t, text, "Slept")
}
