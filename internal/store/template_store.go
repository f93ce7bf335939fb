package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"babyday-backend/internal/kv"
	"babyday-backend/internal/model"
)

// TemplateStore persists named daily templates per baby. It does not validate coverage.
type TemplateStore interface {
	GetTemplate(ctx context.Context, babyID, templateID string) (model.ScheduleTemplate, error)
	SaveTemplate(ctx context.Context, babyID string, tpl model.ScheduleTemplate) error
	SaveTemplateIfMissing(ctx context.Context, babyID string, tpl model.ScheduleTemplate) (bool, error)
	ListTemplates(ctx context.Context, babyID string) ([]model.ScheduleTemplate, error)
	DeleteTemplate(ctx context.Context, babyID, templateID string) error
}

type kvTemplateStore struct {
	kv kv.Store
}

// NewTemplateStore creates a template store on a key-value store.
func NewTemplateStore(kvs kv.Store) TemplateStore {
	return &kvTemplateStore{kv: kvs}
}

func (s *kvTemplateStore) GetTemplate(ctx context.Context, babyID, templateID string) (model.ScheduleTemplate, error) {
	if err := checkIDs("template", idField{"babyId", babyID}, idField{"templateId", templateID}); err != nil {
		return model.ScheduleTemplate{}, err
	}
	return s.load(ctx, templateKey(babyID, templateID))
}

func (s *kvTemplateStore) SaveTemplate(ctx context.Context, babyID string, tpl model.ScheduleTemplate) error {
	key, data, err := encodeTemplate(babyID, tpl)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save template %s: %w", key, err)
	}
	return nil
}

func (s *kvTemplateStore) SaveTemplateIfMissing(ctx context.Context, babyID string, tpl model.ScheduleTemplate) (bool, error) {
	key, data, err := encodeTemplate(babyID, tpl)
	if err != nil {
		return false, err
	}
	wrote, err := s.kv.SetIfMissing(ctx, key, data)
	if err != nil {
		return false, fmt.Errorf("failed to save template %s: %w", key, err)
	}
	return wrote, nil
}

func (s *kvTemplateStore) ListTemplates(ctx context.Context, babyID string) ([]model.ScheduleTemplate, error) {
	if err := checkIDs("template", idField{"babyId", babyID}); err != nil {
		return nil, err
	}
	keys, err := s.kv.Keys(ctx, templateBabyPrefix(babyID))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates of %s: %w", babyID, err)
	}
	out := make([]model.ScheduleTemplate, 0, len(keys))
	for _, k := range keys {
		tpl, err := s.load(ctx, k)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, nil
}

func (s *kvTemplateStore) DeleteTemplate(ctx context.Context, babyID, templateID string) error {
	if err := checkIDs("template", idField{"babyId", babyID}, idField{"templateId", templateID}); err != nil {
		return err
	}
	return s.kv.Delete(ctx, templateKey(babyID, templateID))
}

func (s *kvTemplateStore) load(ctx context.Context, key string) (model.ScheduleTemplate, error) {
	data, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return model.ScheduleTemplate{}, fmt.Errorf("template %s: %w", key, model.ErrNotFound)
	}
	if err != nil {
		return model.ScheduleTemplate{}, fmt.Errorf("failed to read template %s: %w", key, err)
	}
	var tpl model.ScheduleTemplate
	if err := json.Unmarshal(data, &tpl); err != nil {
		return model.ScheduleTemplate{}, fmt.Errorf("failed to decode template %s: %w", key, err)
	}
	if tpl.TemplateID == "" {
		tpl.TemplateID = key[strings.LastIndex(key, ":")+1:]
	}
	return tpl, nil
}

func encodeTemplate(babyID string, tpl model.ScheduleTemplate) (string, []byte, error) {
	if err := checkIDs("template", idField{"babyId", babyID}, idField{"templateId", tpl.TemplateID}); err != nil {
		return "", nil, err
	}
	data, err := json.Marshal(tpl)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode template: %w", err)
	}
	return templateKey(babyID, tpl.TemplateID), data, nil
}
