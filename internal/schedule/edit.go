package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"babyday-backend/internal/model"
	"babyday-backend/internal/timeline"
	"babyday-backend/internal/validate"
	"babyday-backend/internal/versioning"
)

// SliceDraft is the caregiver-supplied content of a slice.
type SliceDraft struct {
	Category  model.Category `json:"category"`
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
}

// EditResult is a changed slice together with the overlap warnings of its day.
type EditResult struct {
	Slice    model.LogSlice `json:"slice"`
	Overlaps []string       `json:"overlaps"`
}

// UpdateSlice replaces the content of an existing slice, bumping its version, and
// marks its meta as edited by the user.
func (s *Service) UpdateSlice(ctx context.Context, babyID, dateISO, sliceID string, draft SliceDraft) (EditResult, error) {
	day, err := s.store.GetDailySchedule(ctx, babyID, dateISO)
	if err != nil {
		return EditResult{}, err
	}
	idx := indexOf(day, sliceID)
	if idx < 0 {
		return EditResult{}, fmt.Errorf("slice %s on %s: %w", sliceID, dateISO, model.ErrNotFound)
	}

	changed := day[idx]
	changed.Category = draft.Category
	changed.StartTime = draft.StartTime.UTC()
	changed.EndTime = draft.EndTime.UTC()
	changed, err = versioning.BumpSliceVersionForEdit(changed)
	if err != nil {
		return EditResult{}, err
	}
	day[idx] = changed
	day = timeline.SortByStart(day)

	if err := s.store.SaveDailySchedule(ctx, babyID, dateISO, day); err != nil {
		return EditResult{}, err
	}
	if _, err := s.meta.SetSliceEdited(ctx, babyID, sliceID, true); err != nil {
		return EditResult{}, err
	}
	if _, err := s.meta.SetSliceSource(ctx, babyID, sliceID, model.SourceUser); err != nil {
		return EditResult{}, err
	}
	return EditResult{Slice: changed, Overlaps: validate.DetectOverlaps(day)}, nil
}

// AddSlice appends a new slice to the day, creating the day if it was never stored.
func (s *Service) AddSlice(ctx context.Context, babyID, dateISO string, draft SliceDraft, source model.Source, createdBy string) (EditResult, error) {
	day, err := s.loadOrEmpty(ctx, babyID, dateISO)
	if err != nil {
		return EditResult{}, err
	}

	now := s.now().UTC()
	added := model.LogSlice{
		ID:        s.newID(),
		BabyID:    babyID,
		Category:  draft.Category,
		StartTime: draft.StartTime.UTC(),
		EndTime:   draft.EndTime.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if err := validate.Slice(added); err != nil {
		return EditResult{}, err
	}
	day = timeline.SortByStart(append(day, added))

	if err := s.store.SaveDailySchedule(ctx, babyID, dateISO, day); err != nil {
		return EditResult{}, err
	}
	if _, err := s.meta.EnsureLogSliceMetaFrom(ctx, babyID, added.ID, source, createdBy); err != nil {
		return EditResult{}, err
	}
	return EditResult{Slice: added, Overlaps: validate.DetectOverlaps(day)}, nil
}

// RemoveSlice deletes a slice from its day together with its meta.
func (s *Service) RemoveSlice(ctx context.Context, babyID, dateISO, sliceID string) error {
	day, err := s.store.GetDailySchedule(ctx, babyID, dateISO)
	if err != nil {
		return err
	}
	idx := indexOf(day, sliceID)
	if idx < 0 {
		return fmt.Errorf("slice %s on %s: %w", sliceID, dateISO, model.ErrNotFound)
	}
	day = append(day[:idx], day[idx+1:]...)

	if err := s.store.SaveDailySchedule(ctx, babyID, dateISO, day); err != nil {
		return err
	}
	return s.meta.RemoveSliceMeta(ctx, babyID, sliceID)
}

// AcceptSuggestions appends externally suggested slices to the day and tags their
// meta with the ai source. Missing ids, versions and timestamps are filled in.
func (s *Service) AcceptSuggestions(ctx context.Context, babyID, dateISO string, suggestions []model.LogSlice) ([]model.LogSlice, error) {
	day, err := s.loadOrEmpty(ctx, babyID, dateISO)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	accepted := make([]model.LogSlice, 0, len(suggestions))
	for _, sug := range suggestions {
		if sug.ID == "" {
			sug.ID = s.newID()
		}
		if indexOf(day, sug.ID) >= 0 {
			return nil, &model.ValidationError{
				Object: "suggestion",
				Issues: []string{fmt.Sprintf("slice %s already exists on %s", sug.ID, dateISO)},
			}
		}
		sug.BabyID = babyID
		sug.StartTime = sug.StartTime.UTC()
		sug.EndTime = sug.EndTime.UTC()
		if sug.Version < 1 {
			sug.Version = 1
		}
		if sug.CreatedAt.IsZero() {
			sug.CreatedAt = now
		}
		if sug.UpdatedAt.IsZero() {
			sug.UpdatedAt = now
		}
		if err := validate.Slice(sug); err != nil {
			return nil, err
		}
		day = append(day, sug)
		accepted = append(accepted, sug)
	}
	day = timeline.SortByStart(day)

	if err := s.store.SaveDailySchedule(ctx, babyID, dateISO, day); err != nil {
		return nil, err
	}
	for _, sug := range accepted {
		m, err := s.meta.EnsureLogSliceMetaFrom(ctx, babyID, sug.ID, model.SourceAI, "ai")
		if err != nil {
			return nil, err
		}
		if m.Source != model.SourceAI {
			if _, err := s.meta.SetSliceSource(ctx, babyID, sug.ID, model.SourceAI); err != nil {
				return nil, err
			}
		}
	}
	return accepted, nil
}

func (s *Service) loadOrEmpty(ctx context.Context, babyID, dateISO string) ([]model.LogSlice, error) {
	day, err := s.store.GetDailySchedule(ctx, babyID, dateISO)
	if errors.Is(err, model.ErrNotFound) {
		return []model.LogSlice{}, nil
	}
	return day, err
}

func indexOf(day []model.LogSlice, sliceID string) int {
	for i := range day {
		if day[i].ID == sliceID {
			return i
		}
	}
	return -1
}
