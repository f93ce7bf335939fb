package meta

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"babyday-backend/internal/model"
	"babyday-backend/internal/store"
	"babyday-backend/internal/validate"
)

// Service manages the confirmation overlay of slices without touching slice content.
type Service struct {
	store  store.MetaStore
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a metadata service.
func NewService(s store.MetaStore, logger *zap.Logger) *Service {
	return &Service{store: s, now: time.Now, logger: logger}
}

// GetSliceMeta returns the stored meta without creating it.
func (s *Service) GetSliceMeta(ctx context.Context, babyID, sliceID string) (model.LogSliceMeta, error) {
	return s.store.GetMeta(ctx, babyID, sliceID)
}

// EnsureLogSliceMeta returns the existing meta or creates the rule-sourced default.
func (s *Service) EnsureLogSliceMeta(ctx context.Context, babyID, sliceID string) (model.LogSliceMeta, error) {
	return s.EnsureLogSliceMetaFrom(ctx, babyID, sliceID, model.SourceRule, "")
}

// EnsureLogSliceMetaFrom is EnsureLogSliceMeta with an explicit source for newly created records.
// An existing record is returned unchanged.
func (s *Service) EnsureLogSliceMetaFrom(ctx context.Context, babyID, sliceID string, source model.Source, createdBy string) (model.LogSliceMeta, error) {
	existing, err := s.store.GetMeta(ctx, babyID, sliceID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.LogSliceMeta{}, err
	}

	meta := model.LogSliceMeta{
		ID:           sliceID,
		Source:       source,
		Confirmed:    false,
		Edited:       false,
		CreatedBy:    createdBy,
		LastModified: s.now().UTC(),
	}
	if err := validate.Meta(meta); err != nil {
		return model.LogSliceMeta{}, err
	}
	if err := s.store.SaveMeta(ctx, babyID, meta); err != nil {
		return model.LogSliceMeta{}, err
	}
	s.logger.Debug("created slice meta",
		zap.String("babyId", babyID),
		zap.String("sliceId", sliceID),
		zap.String("source", string(source)))
	return meta, nil
}

// SetSliceConfirmed sets the confirmed flag. Writing the current value is a no-op.
func (s *Service) SetSliceConfirmed(ctx context.Context, babyID, sliceID string, confirmed bool) (model.LogSliceMeta, error) {
	return s.update(ctx, babyID, sliceID, func(m *model.LogSliceMeta) bool {
		if m.Confirmed == confirmed {
			return false
		}
		m.Confirmed = confirmed
		return true
	})
}

// SetSliceEdited sets the edited flag. Writing the current value is a no-op.
func (s *Service) SetSliceEdited(ctx context.Context, babyID, sliceID string, edited bool) (model.LogSliceMeta, error) {
	return s.update(ctx, babyID, sliceID, func(m *model.LogSliceMeta) bool {
		if m.Edited == edited {
			return false
		}
		m.Edited = edited
		return true
	})
}

// SetSliceSource retags the provenance of a slice. Writing the current value is a no-op.
func (s *Service) SetSliceSource(ctx context.Context, babyID, sliceID string, source model.Source) (model.LogSliceMeta, error) {
	return s.update(ctx, babyID, sliceID, func(m *model.LogSliceMeta) bool {
		if m.Source == source {
			return false
		}
		m.Source = source
		return true
	})
}

// RemoveSliceMeta deletes the meta record unconditionally.
func (s *Service) RemoveSliceMeta(ctx context.Context, babyID, sliceID string) error {
	if err := s.store.DeleteMeta(ctx, babyID, sliceID); err != nil {
		return fmt.Errorf("failed to remove meta of slice %s: %w", sliceID, err)
	}
	return nil
}

// ConfirmedIDs returns the sorted ids of confirmed slices.
func (s *Service) ConfirmedIDs(ctx context.Context, babyID string) ([]string, error) {
	return s.ids(ctx, babyID, func(m model.LogSliceMeta) bool { return m.Confirmed })
}

// AISuggestedIDs returns the sorted ids of slices whose meta is sourced from an AI suggestion.
func (s *Service) AISuggestedIDs(ctx context.Context, babyID string) ([]string, error) {
	return s.ids(ctx, babyID, func(m model.LogSliceMeta) bool { return m.Source == model.SourceAI })
}

func (s *Service) ids(ctx context.Context, babyID string, keep func(model.LogSliceMeta) bool) ([]string, error) {
	all, err := s.store.ListMeta(ctx, babyID)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, m := range all {
		if keep(m) {
			ids = append(ids, m.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// update ensures the record exists, applies change and persists only when change reports a difference.
func (s *Service) update(ctx context.Context, babyID, sliceID string, change func(*model.LogSliceMeta) bool) (model.LogSliceMeta, error) {
	meta, err := s.EnsureLogSliceMeta(ctx, babyID, sliceID)
	if err != nil {
		return model.LogSliceMeta{}, err
	}
	if !change(&meta) {
		return meta, nil
	}
	meta.LastModified = s.now().UTC()
	if err := validate.Meta(meta); err != nil {
		return model.LogSliceMeta{}, err
	}
	if err := s.store.SaveMeta(ctx, babyID, meta); err != nil {
		return model.LogSliceMeta{}, err
	}
	return meta, nil
}
