package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"babyday-backend/internal/parse"
	"babyday-backend/internal/store"
)

// ReadyNotifier is told about days that were newly materialized in the background.
type ReadyNotifier interface {
	NotifyScheduleReady(babyID, dateISO string)
}

// Regenerator materializes upcoming days at local midnight without overwriting
// anything already stored.
type Regenerator struct {
	engine    *Engine
	store     store.ScheduleStore
	notifier  ReadyNotifier
	loc       *time.Location
	now       func() time.Time
	afterFunc func(time.Duration, func())
	stored    storedHooks
	logger    *zap.Logger

	mu    sync.Mutex
	armed map[string]bool
}

// NewRegenerator creates a regenerator. notifier may be nil.
func NewRegenerator(engine *Engine, s store.ScheduleStore, notifier ReadyNotifier, loc *time.Location, logger *zap.Logger) *Regenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &Regenerator{
		engine:   engine,
		store:    s,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		logger: logger,
		armed:  make(map[string]bool),
	}
}

// OnDayStored registers fn to run whenever the regenerator writes a new day.
func (r *Regenerator) OnDayStored(fn DayStoredFunc) {
	r.stored.add(fn)
}

// StartMidnightWatcher arms a one-shot timer for the next local midnight that
// materializes the day starting then. The watcher does not re-arm itself.
// At most one watcher is pending per baby; it reports false if one already was.
func (r *Regenerator) StartMidnightWatcher(babyID string) bool {
	r.mu.Lock()
	if r.armed[babyID] {
		r.mu.Unlock()
		r.logger.Debug("midnight watcher already armed", zap.String("babyId", babyID))
		return false
	}
	r.armed[babyID] = true
	r.mu.Unlock()

	wait, dateISO := r.nextMidnight()
	r.logger.Info("midnight watcher armed",
		zap.String("babyId", babyID),
		zap.String("date", dateISO),
		zap.Duration("in", wait))
	r.afterFunc(wait, func() {
		r.mu.Lock()
		delete(r.armed, babyID)
		r.mu.Unlock()

		if _, err := r.RegenerateDay(context.Background(), babyID, dateISO); err != nil {
			r.logger.Error("midnight regeneration failed",
				zap.String("babyId", babyID),
				zap.String("date", dateISO),
				zap.Error(err))
		}
	})
	return true
}

// RegenerateDay generates the day and stores it only if it is still absent.
// It reports whether the day was written.
func (r *Regenerator) RegenerateDay(ctx context.Context, babyID, dateISO string) (bool, error) {
	slices, err := r.engine.GenerateScheduleForDate(ctx, Request{BabyID: babyID, Date: dateISO})
	if err != nil {
		return false, err
	}
	wrote, err := r.store.SaveDailyScheduleIfMissing(ctx, babyID, dateISO, slices)
	if err != nil {
		return false, err
	}
	if !wrote {
		r.logger.Debug("day already stored, leaving it untouched",
			zap.String("babyId", babyID),
			zap.String("date", dateISO))
		return false, nil
	}

	r.logger.Info("regenerated day",
		zap.String("babyId", babyID),
		zap.String("date", dateISO))
	r.stored.fire(babyID, dateISO)
	if r.notifier != nil {
		r.notifier.NotifyScheduleReady(babyID, dateISO)
	}
	return true, nil
}

// Run materializes today for every baby, then does the same for each new day at
// local midnight until ctx is cancelled.
func (r *Regenerator) Run(ctx context.Context, babyIDs []string) {
	if len(babyIDs) == 0 {
		r.logger.Info("no babies to watch, regenerator not started")
		return
	}
	r.logger.Info("starting regenerator", zap.Strings("babies", babyIDs))

	r.regenerateAll(ctx, babyIDs, parse.LocalDate(r.now(), r.loc))

	wait, dateISO := r.nextMidnight()
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("regenerator shutting down")
			return
		case <-timer.C:
			r.regenerateAll(ctx, babyIDs, dateISO)
			wait, dateISO = r.nextMidnight()
			timer.Reset(wait)
		}
	}
}

func (r *Regenerator) regenerateAll(ctx context.Context, babyIDs []string, dateISO string) {
	for _, babyID := range babyIDs {
		if _, err := r.RegenerateDay(ctx, babyID, dateISO); err != nil {
			r.logger.Error("regeneration failed",
				zap.String("babyId", babyID),
				zap.String("date", dateISO),
				zap.Error(err))
		}
	}
}

// nextMidnight returns the wait until the next local midnight and the date that begins then.
func (r *Regenerator) nextMidnight() (time.Duration, string) {
	now := r.now().In(r.loc)
	y, m, d := now.Date()
	next := time.Date(y, m, d+1, 0, 0, 0, 0, r.loc)
	return next.Sub(now), next.Format(parse.DateLayout)
}
