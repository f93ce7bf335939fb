package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"babyday-backend/internal/kv"
	"babyday-backend/internal/meta"
	"babyday-backend/internal/model"
	"babyday-backend/internal/store"
)

var genNow = time.Date(2024, 4, 30, 12, 0, 0, 0, time.UTC)

// countingKV counts the writes that actually landed, per key.
type countingKV struct {
	kv.Store
	mu     sync.Mutex
	writes map[string]int
}

func newCountingKV() *countingKV {
	return &countingKV{Store: kv.NewMemoryStore(), writes: map[string]int{}}
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	if err := c.Store.Set(ctx, key, value); err != nil {
		return err
	}
	c.mu.Lock()
	c.writes[key]++
	c.mu.Unlock()
	return nil
}

func (c *countingKV) SetIfMissing(ctx context.Context, key string, value []byte) (bool, error) {
	ok, err := c.Store.SetIfMissing(ctx, key, value)
	if ok {
		c.mu.Lock()
		c.writes[key]++
		c.mu.Unlock()
	}
	return ok, err
}

func (c *countingKV) writesTo(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes[key]
}

type countingTemplates struct {
	store.TemplateStore
	gets int
}

func (c *countingTemplates) GetTemplate(ctx context.Context, babyID, templateID string) (model.ScheduleTemplate, error) {
	c.gets++
	return c.TemplateStore.GetTemplate(ctx, babyID, templateID)
}

type fixture struct {
	kv        *countingKV
	schedules store.ScheduleStore
	templates *TemplateService
	engine    *Engine
	meta      *meta.Service
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	logger := zaptest.NewLogger(t)
	kvs := newCountingKV()
	schedules := store.NewScheduleStore(kvs, 5, logger)
	templates := NewTemplateService(store.NewTemplateStore(kvs), "default", logger)
	engine := NewEngine(templates, NewGenerator(), logger)
	metaSvc := meta.NewService(store.NewMetaStore(kvs, logger), logger)
	return &fixture{
		kv:        kvs,
		schedules: schedules,
		templates: templates,
		engine:    engine,
		meta:      metaSvc,
		svc:       NewService(schedules, engine, metaSvc, logger),
	}
}

func fixedGenerator() *Generator {
	n := 0
	return &Generator{
		now: func() time.Time { return genNow },
		newID: func() string {
			n++
			return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
		},
	}
}

func TestGenerate_CoversTheDay(t *testing.T) {
	tpl := DefaultTemplate("default")
	slices, err := fixedGenerator().Generate("b1", "2024-05-01", tpl)
	require.NoError(t, err)
	require.Len(t, slices, len(tpl.Entries))

	dayStart := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	sorted := append([]model.LogSlice(nil), slices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	cursor := dayStart
	for _, s := range sorted {
		assert.True(t, s.StartTime.Equal(cursor), "gap or overlap at %s", s.StartTime)
		cursor = s.EndTime
	}
	assert.True(t, cursor.Equal(dayStart.AddDate(0, 0, 1)))

	for i, s := range slices {
		assert.Equal(t, tpl.Entries[i].Category, s.Category)
		assert.Equal(t, "b1", s.BabyID)
		assert.Equal(t, 1, s.Version)
		assert.True(t, s.CreatedAt.Equal(genNow))
		assert.True(t, s.UpdatedAt.Equal(genNow))
	}
}

func TestGenerate_FractionalHours(t *testing.T) {
	tpl := model.ScheduleTemplate{Entries: []model.ScheduleTemplateEntry{
		{Category: model.CategorySleep, StartHour: 0, EndHour: 8.5},
		{Category: model.CategoryFeed, StartHour: 8.5, EndHour: 8.75},
		{Category: model.CategoryAwake, StartHour: 8.75, EndHour: 24},
	}}
	slices, err := fixedGenerator().Generate("b1", "2024-05-01", tpl)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC), slices[0].EndTime)
	assert.Equal(t, time.Date(2024, 5, 1, 8, 45, 0, 0, time.UTC), slices[1].EndTime)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), slices[2].EndTime)
	assert.Equal(t, "00000000-0000-4000-8000-000000000001", slices[0].ID)
	assert.NotEqual(t, slices[0].ID, slices[1].ID)
}

func TestGenerate_Errors(t *testing.T) {
	_, err := fixedGenerator().Generate("b1", "05/01/2024", DefaultTemplate("default"))
	assert.True(t, model.IsValidation(err))

	bad := model.ScheduleTemplate{Entries: []model.ScheduleTemplateEntry{
		{Category: model.CategorySleep, StartHour: 0, EndHour: 25},
	}}
	_, err = fixedGenerator().Generate("b1", "2024-05-01", bad)
	assert.True(t, model.IsValidation(err))
}

func TestGenerateFromTemplate_UsesRandomIDs(t *testing.T) {
	slices, err := GenerateFromTemplate("b1", "2024-05-01", DefaultTemplate("default"))
	require.NoError(t, err)
	for _, s := range slices {
		_, err := uuid.Parse(s.ID)
		assert.NoError(t, err)
	}
}

func TestTemplateService_EnsureDefaultIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.templates.EnsureDefaultTemplateExists(ctx, "b1"))
	require.NoError(t, f.templates.EnsureDefaultTemplateExists(ctx, "b1"))
	assert.Equal(t, 1, f.kv.writesTo("template:b1:default"))

	custom := model.ScheduleTemplate{TemplateID: "default", Entries: []model.ScheduleTemplateEntry{
		{Category: model.CategoryOther, StartHour: 0, EndHour: 24},
	}}
	_, err := f.templates.CreateOrUpdateTemplate(ctx, "b1", custom)
	require.NoError(t, err)
	require.NoError(t, f.templates.EnsureDefaultTemplateExists(ctx, "b1"))

	got, err := f.templates.GetTemplate(ctx, "b1", "default")
	require.NoError(t, err)
	assert.Equal(t, custom.Entries, got.Entries)
}

func TestTemplateService_CreateOrUpdateValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	short := model.ScheduleTemplate{TemplateID: "nap", Entries: []model.ScheduleTemplateEntry{
		{Category: model.CategorySleep, StartHour: 0, EndHour: 23},
	}}
	_, err := f.templates.CreateOrUpdateTemplate(ctx, "b1", short)
	assert.True(t, model.IsValidation(err))
	_, err = f.templates.GetTemplate(ctx, "b1", "nap")
	assert.ErrorIs(t, err, model.ErrNotFound)

	saved, err := f.templates.CreateOrUpdateTemplate(ctx, "b1", model.ScheduleTemplate{Entries: []model.ScheduleTemplateEntry{
		{Category: model.CategorySleep, StartHour: 0, EndHour: 12},
		{Category: model.CategoryAwake, StartHour: 12, EndHour: 24},
	}})
	require.NoError(t, err)
	assert.Equal(t, "default", saved.TemplateID)

	list, err := f.templates.ListTemplates(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.templates.DeleteTemplate(ctx, "b1", "default"))
	_, err = f.templates.GetTemplate(ctx, "b1", "default")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestEngine_BootstrapsDefaultOnce(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	templates := &countingTemplates{TemplateStore: store.NewTemplateStore(kv.NewMemoryStore())}
	engine := NewEngine(NewTemplateService(templates, "default", logger), fixedGenerator(), logger)

	slices, err := engine.GenerateScheduleForDate(ctx, Request{BabyID: "b1", Date: "2024-05-01"})
	require.NoError(t, err)
	assert.Len(t, slices, len(DefaultTemplate("default").Entries))
	assert.Equal(t, 2, templates.gets)

	templates.gets = 0
	_, err = engine.GenerateScheduleForDate(ctx, Request{BabyID: "b1", Date: "2024-05-01", TemplateID: "weekend"})
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 2, templates.gets, "exactly one retry after bootstrapping")
}

func TestService_EnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	second, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.True(t, first[i].StartTime.Equal(second[i].StartTime))
		assert.True(t, first[i].EndTime.Equal(second[i].EndTime))
	}
	assert.Equal(t, 1, f.kv.writesTo("schedule:b1:2024-05-01"))
}

func TestService_EnsureIgnoresLaterTemplateChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)

	_, err = f.templates.CreateOrUpdateTemplate(ctx, "b1", model.ScheduleTemplate{TemplateID: "default", Entries: []model.ScheduleTemplateEntry{
		{Category: model.CategoryOther, StartHour: 0, EndHour: 24},
	}})
	require.NoError(t, err)

	again, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	assert.Len(t, again, len(first))

	next, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-02")
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, model.CategoryOther, next[0].Category)
}

func TestService_ConcurrentEnsureWritesOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const callers = 8
	results := make([][]model.LogSlice, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0][0].ID, results[i][0].ID)
	}
	assert.Equal(t, 1, f.kv.writesTo("schedule:b1:2024-05-01"))
}

func TestService_SaveScheduleReportsOverlaps(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	day, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	day[1].StartTime = day[0].StartTime

	overlaps, err := f.svc.SaveSchedule(ctx, "b1", "2024-05-01", day)
	require.NoError(t, err)
	assert.NotEmpty(t, overlaps)

	prev, err := f.svc.GetPreviousDailySchedule(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	assert.Len(t, prev, len(day))

	day[0].BabyID = "someone-else"
	_, err = f.svc.SaveSchedule(ctx, "b1", "2024-05-01", day)
	assert.True(t, model.IsValidation(err))
}

func TestService_UpdateSlice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	day, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	target := day[1]

	res, err := f.svc.UpdateSlice(ctx, "b1", "2024-05-01", target.ID, SliceDraft{
		Category:  model.CategoryCare,
		StartTime: target.StartTime,
		EndTime:   target.EndTime.Add(10 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Slice.Version)
	assert.Equal(t, model.CategoryCare, res.Slice.Category)
	assert.True(t, res.Slice.CreatedAt.Equal(target.CreatedAt))
	assert.NotEmpty(t, res.Overlaps)

	m, err := f.meta.GetSliceMeta(ctx, "b1", target.ID)
	require.NoError(t, err)
	assert.True(t, m.Edited)
	assert.Equal(t, model.SourceUser, m.Source)

	stored, err := f.svc.GetDailySchedule(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryCare, stored[1].Category)

	_, err = f.svc.UpdateSlice(ctx, "b1", "2024-05-01", uuid.NewString(), SliceDraft{
		Category: model.CategoryCare, StartTime: target.StartTime, EndTime: target.EndTime,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.UpdateSlice(ctx, "b1", "2024-05-01", target.ID, SliceDraft{
		Category: model.CategoryCare, StartTime: target.EndTime, EndTime: target.StartTime,
	})
	assert.True(t, model.IsValidation(err))
}

func TestService_AddAndRemoveSlice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	start := time.Date(2024, 5, 3, 14, 0, 0, 0, time.UTC)
	res, err := f.svc.AddSlice(ctx, "b1", "2024-05-03", SliceDraft{
		Category:  model.CategoryFeed,
		StartTime: start,
		EndTime:   start.Add(20 * time.Minute),
	}, model.SourceUser, "parent")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Slice.Version)
	assert.Empty(t, res.Overlaps)

	m, err := f.meta.GetSliceMeta(ctx, "b1", res.Slice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SourceUser, m.Source)
	assert.Equal(t, "parent", m.CreatedBy)

	require.NoError(t, f.svc.RemoveSlice(ctx, "b1", "2024-05-03", res.Slice.ID))
	day, err := f.svc.GetDailySchedule(ctx, "b1", "2024-05-03")
	require.NoError(t, err)
	assert.Empty(t, day)
	_, err = f.meta.GetSliceMeta(ctx, "b1", res.Slice.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = f.svc.RemoveSlice(ctx, "b1", "2024-05-03", res.Slice.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestService_AcceptSuggestions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)

	start := time.Date(2024, 5, 1, 16, 0, 0, 0, time.UTC)
	accepted, err := f.svc.AcceptSuggestions(ctx, "b1", "2024-05-01", []model.LogSlice{
		{Category: model.CategoryTalk, StartTime: start, EndTime: start.Add(15 * time.Minute)},
	})
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "b1", accepted[0].BabyID)
	assert.Equal(t, 1, accepted[0].Version)

	suggested, err := f.meta.AISuggestedIDs(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{accepted[0].ID}, suggested)

	day, err := f.svc.GetDailySchedule(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	assert.Len(t, day, len(DefaultTemplate("default").Entries)+1)
	for i := 1; i < len(day); i++ {
		assert.False(t, day[i].StartTime.Before(day[i-1].StartTime))
	}

	_, err = f.svc.AcceptSuggestions(ctx, "b1", "2024-05-01", accepted)
	assert.True(t, model.IsValidation(err))
}

type recordingNotifier struct {
	mu    sync.Mutex
	ready []string
	ch    chan string
}

func (n *recordingNotifier) NotifyScheduleReady(babyID, dateISO string) {
	n.mu.Lock()
	n.ready = append(n.ready, babyID+"/"+dateISO)
	n.mu.Unlock()
	if n.ch != nil {
		n.ch <- babyID + "/" + dateISO
	}
}

func TestRegenerator_RegenerateDayIsNonDestructive(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	notifier := &recordingNotifier{}
	r := NewRegenerator(f.engine, f.schedules, notifier, time.UTC, zaptest.NewLogger(t))

	existing, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)

	wrote, err := r.RegenerateDay(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Empty(t, notifier.ready)

	day, err := f.svc.GetDailySchedule(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, existing[0].ID, day[0].ID)

	wrote, err = r.RegenerateDay(ctx, "b1", "2024-05-02")
	require.NoError(t, err)
	assert.True(t, wrote)
	assert.Equal(t, []string{"b1/2024-05-02"}, notifier.ready)
}

func TestOnDayStored_FiresOnlyOnNewWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := NewRegenerator(f.engine, f.schedules, nil, time.UTC, zaptest.NewLogger(t))

	var stored []string
	record := func(babyID, dateISO string) { stored = append(stored, babyID+"/"+dateISO) }
	f.svc.OnDayStored(record)
	r.OnDayStored(record)

	_, err := f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	_, err = f.svc.EnsureScheduleForDate(ctx, "b1", "2024-05-01")
	require.NoError(t, err)

	_, err = r.RegenerateDay(ctx, "b1", "2024-05-01")
	require.NoError(t, err)
	_, err = r.RegenerateDay(ctx, "b1", "2024-05-02")
	require.NoError(t, err)

	assert.Equal(t, []string{"b1/2024-05-01", "b1/2024-05-02"}, stored)
}

func TestRegenerator_StartMidnightWatcher(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{}
	loc := time.FixedZone("UTC+2", 2*3600)
	r := NewRegenerator(f.engine, f.schedules, notifier, loc, zaptest.NewLogger(t))
	r.now = func() time.Time { return time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC) }

	var armed []time.Duration
	var fire func()
	r.afterFunc = func(d time.Duration, fn func()) {
		armed = append(armed, d)
		fire = fn
	}

	assert.True(t, r.StartMidnightWatcher("b1"))
	require.Len(t, armed, 1)
	assert.Equal(t, 2*time.Hour+30*time.Minute, armed[0])

	assert.False(t, r.StartMidnightWatcher("b1"), "a pending watcher is not armed twice")
	assert.Len(t, armed, 1)

	fire()
	assert.Equal(t, []string{"b1/2024-05-02"}, notifier.ready)
	assert.Len(t, armed, 1, "the watcher must not re-arm itself")

	assert.True(t, r.StartMidnightWatcher("b1"), "a fired watcher can be armed again")
	assert.Len(t, armed, 2)

	_, err := f.svc.GetDailySchedule(context.Background(), "b1", "2024-05-02")
	assert.NoError(t, err)
}

func TestRegenerator_Run(t *testing.T) {
	f := newFixture(t)
	notifier := &recordingNotifier{ch: make(chan string, 16)}
	r := NewRegenerator(f.engine, f.schedules, notifier, time.UTC, zaptest.NewLogger(t))
	r.now = func() time.Time { return time.Date(2024, 5, 1, 23, 59, 59, 990_000_000, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, []string{"b1"})
		close(done)
	}()

	var got []string
	for len(got) < 2 {
		select {
		case msg := <-notifier.ch:
			got = append(got, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %s", strings.Join(got, ","))
		}
	}
	cancel()
	<-done

	assert.Equal(t, []string{"b1/2024-05-01", "b1/2024-05-02"}, got)
}
