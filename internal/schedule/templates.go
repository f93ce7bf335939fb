package schedule

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"babyday-backend/internal/model"
	"babyday-backend/internal/store"
	"babyday-backend/internal/validate"
)

// TemplateService reads, validates and bootstraps per-baby templates.
type TemplateService struct {
	store     store.TemplateStore
	defaultID string
	logger    *zap.Logger
}

// NewTemplateService creates a template service. defaultID names the template
// installed by EnsureDefaultTemplateExists.
func NewTemplateService(s store.TemplateStore, defaultID string, logger *zap.Logger) *TemplateService {
	return &TemplateService{store: s, defaultID: defaultID, logger: logger}
}

// DefaultID returns the id of the bootstrap template.
func (s *TemplateService) DefaultID() string {
	return s.defaultID
}

// GetTemplate returns model.ErrNotFound when the template is absent.
func (s *TemplateService) GetTemplate(ctx context.Context, babyID, templateID string) (model.ScheduleTemplate, error) {
	return s.store.GetTemplate(ctx, babyID, templateID)
}

// EnsureDefaultTemplateExists installs the built-in template unless one with the
// default id is already stored. Calling it repeatedly has the effect of one call.
func (s *TemplateService) EnsureDefaultTemplateExists(ctx context.Context, babyID string) error {
	tpl := DefaultTemplate(s.defaultID)
	if err := validate.Template(tpl); err != nil {
		return fmt.Errorf("built-in template is invalid: %w", err)
	}
	created, err := s.store.SaveTemplateIfMissing(ctx, babyID, tpl)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("installed default template",
			zap.String("babyId", babyID),
			zap.String("templateId", s.defaultID))
	}
	return nil
}

// CreateOrUpdateTemplate validates tpl and overwrites any template with the same id.
// An empty id is replaced by the default id.
func (s *TemplateService) CreateOrUpdateTemplate(ctx context.Context, babyID string, tpl model.ScheduleTemplate) (model.ScheduleTemplate, error) {
	if tpl.TemplateID == "" {
		tpl.TemplateID = s.defaultID
	}
	if err := validate.Template(tpl); err != nil {
		return model.ScheduleTemplate{}, err
	}
	if err := s.store.SaveTemplate(ctx, babyID, tpl); err != nil {
		return model.ScheduleTemplate{}, err
	}
	return tpl, nil
}

// ListTemplates returns the baby's templates ordered by id.
func (s *TemplateService) ListTemplates(ctx context.Context, babyID string) ([]model.ScheduleTemplate, error) {
	return s.store.ListTemplates(ctx, babyID)
}

// DeleteTemplate removes a template. Deleting the default lets the next
// generation reinstall it.
func (s *TemplateService) DeleteTemplate(ctx context.Context, babyID, templateID string) error {
	return s.store.DeleteTemplate(ctx, babyID, templateID)
}
