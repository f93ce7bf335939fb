package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"babyday-backend/internal/kv"
	"babyday-backend/internal/model"
)

// MetaStore persists slice meta records, keyed independently of the slices they annotate.
type MetaStore interface {
	// GetMeta returns model.ErrNotFound for absent records and for records that cannot be read.
	GetMeta(ctx context.Context, babyID, sliceID string) (model.LogSliceMeta, error)
	SaveMeta(ctx context.Context, babyID string, meta model.LogSliceMeta) error
	DeleteMeta(ctx context.Context, babyID, sliceID string) error
	ListMeta(ctx context.Context, babyID string) ([]model.LogSliceMeta, error)
}

type kvMetaStore struct {
	kv     kv.Store
	logger *zap.Logger
}

// NewMetaStore creates a meta store on a key-value store.
func NewMetaStore(kvs kv.Store, logger *zap.Logger) MetaStore {
	return &kvMetaStore{kv: kvs, logger: logger}
}

func (s *kvMetaStore) GetMeta(ctx context.Context, babyID, sliceID string) (model.LogSliceMeta, error) {
	if err := checkIDs("slice meta", idField{"babyId", babyID}, idField{"sliceId", sliceID}); err != nil {
		return model.LogSliceMeta{}, err
	}
	return s.load(ctx, metaKey(babyID, sliceID))
}

func (s *kvMetaStore) SaveMeta(ctx context.Context, babyID string, meta model.LogSliceMeta) error {
	if err := checkIDs("slice meta", idField{"babyId", babyID}, idField{"sliceId", meta.ID}); err != nil {
		return err
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode slice meta: %w", err)
	}
	key := metaKey(babyID, meta.ID)
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save slice meta %s: %w", key, err)
	}
	return nil
}

func (s *kvMetaStore) DeleteMeta(ctx context.Context, babyID, sliceID string) error {
	if err := checkIDs("slice meta", idField{"babyId", babyID}, idField{"sliceId", sliceID}); err != nil {
		return err
	}
	return s.kv.Delete(ctx, metaKey(babyID, sliceID))
}

func (s *kvMetaStore) ListMeta(ctx context.Context, babyID string) ([]model.LogSliceMeta, error) {
	if err := checkIDs("slice meta", idField{"babyId", babyID}); err != nil {
		return nil, err
	}
	keys, err := s.kv.Keys(ctx, metaBabyPrefix(babyID))
	if err != nil {
		return nil, fmt.Errorf("failed to list slice meta of %s: %w", babyID, err)
	}
	out := make([]model.LogSliceMeta, 0, len(keys))
	for _, k := range keys {
		meta, err := s.load(ctx, k)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, nil
}

// load treats a record that cannot be read or decoded as absent.
func (s *kvMetaStore) load(ctx context.Context, key string) (model.LogSliceMeta, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return model.LogSliceMeta{}, fmt.Errorf("slice meta %s: %w", key, model.ErrNotFound)
	}
	if err != nil {
		s.logger.Warn("failed to read slice meta, treating as absent", zap.String("key", key), zap.Error(err))
		return model.LogSliceMeta{}, fmt.Errorf("slice meta %s unreadable: %w", key, model.ErrNotFound)
	}
	var meta model.LogSliceMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		s.logger.Warn("discarding unreadable slice meta", zap.String("key", key), zap.Error(err))
		return model.LogSliceMeta{}, fmt.Errorf("slice meta %s unreadable: %w", key, model.ErrNotFound)
	}
	return meta, nil
}
