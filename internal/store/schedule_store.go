package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"babyday-backend/internal/kv"
	"babyday-backend/internal/model"
	"babyday-backend/internal/parse"
	"babyday-backend/internal/validate"
)

// ScheduleStore persists the slice array of each (baby, day).
type ScheduleStore interface {
	GetDailySchedule(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error)
	// SaveDailySchedule overwrites the day, first copying any existing value into a backup.
	SaveDailySchedule(ctx context.Context, babyID, dateISO string, slices []model.LogSlice) error
	// SaveDailyScheduleIfMissing writes only when the day is absent and reports whether it wrote.
	SaveDailyScheduleIfMissing(ctx context.Context, babyID, dateISO string, slices []model.LogSlice) (bool, error)
	DeleteDailySchedule(ctx context.Context, babyID, dateISO string) error
	GetPreviousDailySchedule(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error)
	ListBackups(ctx context.Context, babyID, dateISO string) ([]string, error)
	GetAllSchedulesForBabyInRange(ctx context.Context, babyID, fromDate, toDate string) (map[string][]model.LogSlice, error)
	AggregateCategoryTotals(ctx context.Context, babyID, fromDate, toDate string) (map[model.Category]time.Duration, error)
}

// kvScheduleStore implements ScheduleStore on a key-value store.
type kvScheduleStore struct {
	kv          kv.Store
	backupLimit int
	now         func() time.Time
	logger      *zap.Logger
}

// NewScheduleStore creates a schedule store keeping at most backupLimit backups per day.
func NewScheduleStore(kvs kv.Store, backupLimit int, logger *zap.Logger) ScheduleStore {
	if backupLimit <= 0 {
		backupLimit = 1
	}
	return &kvScheduleStore{kv: kvs, backupLimit: backupLimit, now: time.Now, logger: logger}
}

func (s *kvScheduleStore) GetDailySchedule(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error) {
	if err := checkDay(babyID, dateISO); err != nil {
		return nil, err
	}
	return s.load(ctx, scheduleKey(babyID, dateISO))
}

func (s *kvScheduleStore) SaveDailySchedule(ctx context.Context, babyID, dateISO string, slices []model.LogSlice) error {
	data, err := encodeDay(babyID, dateISO, slices)
	if err != nil {
		return err
	}

	key := scheduleKey(babyID, dateISO)
	existing, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return fmt.Errorf("failed to read schedule %s before overwrite: %w", key, err)
	default:
		if err := s.backup(ctx, babyID, dateISO, existing); err != nil {
			return err
		}
	}

	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save schedule %s: %w", key, err)
	}
	s.logger.Debug("saved daily schedule", zap.String("key", key), zap.Int("slices", len(slices)))
	return nil
}

func (s *kvScheduleStore) SaveDailyScheduleIfMissing(ctx context.Context, babyID, dateISO string, slices []model.LogSlice) (bool, error) {
	data, err := encodeDay(babyID, dateISO, slices)
	if err != nil {
		return false, err
	}
	key := scheduleKey(babyID, dateISO)
	wrote, err := s.kv.SetIfMissing(ctx, key, data)
	if err != nil {
		return false, fmt.Errorf("failed to save schedule %s: %w", key, err)
	}
	return wrote, nil
}

func (s *kvScheduleStore) DeleteDailySchedule(ctx context.Context, babyID, dateISO string) error {
	if err := checkDay(babyID, dateISO); err != nil {
		return err
	}
	return s.kv.Delete(ctx, scheduleKey(babyID, dateISO))
}

func (s *kvScheduleStore) GetPreviousDailySchedule(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error) {
	keys, err := s.backupKeys(ctx, babyID, dateISO)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no backup for %s on %s: %w", babyID, dateISO, model.ErrNotFound)
	}
	return s.load(ctx, keys[len(keys)-1])
}

func (s *kvScheduleStore) ListBackups(ctx context.Context, babyID, dateISO string) ([]string, error) {
	keys, err := s.backupKeys(ctx, babyID, dateISO)
	if err != nil {
		return nil, err
	}
	prefix := backupPrefix(babyID, dateISO)
	stamps := make([]string, len(keys))
	for i, k := range keys {
		stamps[i] = strings.TrimPrefix(k, prefix)
	}
	return stamps, nil
}

func (s *kvScheduleStore) GetAllSchedulesForBabyInRange(ctx context.Context, babyID, fromDate, toDate string) (map[string][]model.LogSlice, error) {
	if err := checkIDs("schedule range", idField{"babyId", babyID}); err != nil {
		return nil, err
	}
	if _, err := parse.ParseDate(fromDate); err != nil {
		return nil, &model.ValidationError{Object: "schedule range", Issues: []string{err.Error()}, Err: err}
	}
	if _, err := parse.ParseDate(toDate); err != nil {
		return nil, &model.ValidationError{Object: "schedule range", Issues: []string{err.Error()}, Err: err}
	}

	prefix := scheduleBabyPrefix(babyID)
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules of %s: %w", babyID, err)
	}

	out := make(map[string][]model.LogSlice)
	for _, k := range keys {
		date := strings.TrimPrefix(k, prefix)
		if strings.Contains(date, ":") {
			continue // backup key
		}
		if date < fromDate || date > toDate {
			continue
		}
		slices, err := s.load(ctx, k)
		if errors.Is(err, model.ErrNotFound) {
			continue // deleted between Keys and Get
		}
		if err != nil {
			return nil, err
		}
		out[date] = slices
	}
	return out, nil
}

func (s *kvScheduleStore) AggregateCategoryTotals(ctx context.Context, babyID, fromDate, toDate string) (map[model.Category]time.Duration, error) {
	days, err := s.GetAllSchedulesForBabyInRange(ctx, babyID, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	totals := make(map[model.Category]time.Duration)
	for _, slices := range days {
		for _, sl := range slices {
			totals[sl.Category] += sl.Duration()
		}
	}
	return totals, nil
}

// backup copies the current value of a day into a new backup key and prunes the oldest beyond the limit.
func (s *kvScheduleStore) backup(ctx context.Context, babyID, dateISO string, existing []byte) error {
	key := backupKey(babyID, dateISO, s.now())
	if err := s.kv.Set(ctx, key, existing); err != nil {
		return fmt.Errorf("failed to back up schedule to %s: %w", key, err)
	}

	keys, err := s.backupKeys(ctx, babyID, dateISO)
	if err != nil {
		return err
	}
	for len(keys) > s.backupLimit {
		if err := s.kv.Delete(ctx, keys[0]); err != nil {
			return fmt.Errorf("failed to prune backup %s: %w", keys[0], err)
		}
		s.logger.Debug("pruned schedule backup", zap.String("key", keys[0]))
		keys = keys[1:]
	}
	return nil
}

func (s *kvScheduleStore) backupKeys(ctx context.Context, babyID, dateISO string) ([]string, error) {
	if err := checkDay(babyID, dateISO); err != nil {
		return nil, err
	}
	keys, err := s.kv.Keys(ctx, backupPrefix(babyID, dateISO))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups of %s on %s: %w", babyID, dateISO, err)
	}
	return keys, nil
}

// load reads and decodes a day. Unlike meta, a corrupt day is a hard failure.
func (s *kvScheduleStore) load(ctx context.Context, key string) ([]model.LogSlice, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("schedule %s: %w", key, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule %s: %w", key, err)
	}
	var slices []model.LogSlice
	if err := json.Unmarshal(data, &slices); err != nil {
		return nil, fmt.Errorf("failed to decode schedule %s: %w", key, err)
	}
	if slices == nil {
		slices = []model.LogSlice{}
	}
	return slices, nil
}

func checkDay(babyID, dateISO string) error {
	if err := checkIDs("schedule", idField{"babyId", babyID}); err != nil {
		return err
	}
	if _, err := parse.ParseDate(dateISO); err != nil {
		return &model.ValidationError{Object: "schedule", Issues: []string{err.Error()}, Err: err}
	}
	return nil
}

func encodeDay(babyID, dateISO string, slices []model.LogSlice) ([]byte, error) {
	if err := checkDay(babyID, dateISO); err != nil {
		return nil, err
	}
	if err := validate.Slices(slices); err != nil {
		return nil, err
	}
	if slices == nil {
		slices = []model.LogSlice{}
	}
	data, err := json.Marshal(slices)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule: %w", err)
	}
	return data, nil
}
