package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"babyday-backend/internal/meta"
	"babyday-backend/internal/model"
	"babyday-backend/internal/store"
	"babyday-backend/internal/validate"
)

// Service is the idempotent entry point for a baby's days and the slice edit path.
type Service struct {
	store  store.ScheduleStore
	engine *Engine
	meta   *meta.Service
	group  singleflight.Group
	stored storedHooks
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// NewService creates a schedule service.
func NewService(s store.ScheduleStore, engine *Engine, metaSvc *meta.Service, logger *zap.Logger) *Service {
	return &Service{
		store:  s,
		engine: engine,
		meta:   metaSvc,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: logger,
	}
}

// OnDayStored registers fn to run whenever EnsureScheduleForDate writes a new day.
func (s *Service) OnDayStored(fn DayStoredFunc) {
	s.stored.add(fn)
}

// GetDailySchedule reads a stored day without generating it.
func (s *Service) GetDailySchedule(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error) {
	return s.store.GetDailySchedule(ctx, babyID, dateISO)
}

// GetPreviousDailySchedule returns the most recent backup of a day.
func (s *Service) GetPreviousDailySchedule(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error) {
	return s.store.GetPreviousDailySchedule(ctx, babyID, dateISO)
}

// EnsureScheduleForDate returns the stored day, or generates and stores it when absent.
// A stored day is returned as-is even if its template has changed since.
// Concurrent callers for the same day in this process share one generation, and the
// write only lands if no other writer materialized the day first.
func (s *Service) EnsureScheduleForDate(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error) {
	slices, err := s.store.GetDailySchedule(ctx, babyID, dateISO)
	if err == nil {
		return slices, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	v, err, _ := s.group.Do(babyID+"|"+dateISO, func() (interface{}, error) {
		return s.generateOnce(ctx, babyID, dateISO)
	})
	if err != nil {
		return nil, err
	}
	shared := v.([]model.LogSlice)
	return append([]model.LogSlice(nil), shared...), nil
}

func (s *Service) generateOnce(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error) {
	existing, err := s.store.GetDailySchedule(ctx, babyID, dateISO)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	generated, err := s.engine.GenerateScheduleForDate(ctx, Request{BabyID: babyID, Date: dateISO})
	if err != nil {
		return nil, err
	}
	wrote, err := s.store.SaveDailyScheduleIfMissing(ctx, babyID, dateISO, generated)
	if err != nil {
		return nil, err
	}
	if !wrote {
		s.logger.Info("day materialized by another writer, using stored copy",
			zap.String("babyId", babyID),
			zap.String("date", dateISO))
		return s.store.GetDailySchedule(ctx, babyID, dateISO)
	}

	s.logger.Info("generated daily schedule",
		zap.String("babyId", babyID),
		zap.String("date", dateISO),
		zap.Int("slices", len(generated)))
	s.stored.fire(babyID, dateISO)
	return generated, nil
}

// SaveSchedule overwrites a day (backing up the previous value) and returns any
// overlap warnings for the new content.
func (s *Service) SaveSchedule(ctx context.Context, babyID, dateISO string, slices []model.LogSlice) ([]string, error) {
	for i := range slices {
		if slices[i].BabyID != babyID {
			return nil, &model.ValidationError{
				Object: "schedule",
				Issues: []string{"slice " + slices[i].ID + " belongs to baby " + slices[i].BabyID},
			}
		}
	}
	if err := s.store.SaveDailySchedule(ctx, babyID, dateISO, slices); err != nil {
		return nil, err
	}
	return validate.DetectOverlaps(slices), nil
}
