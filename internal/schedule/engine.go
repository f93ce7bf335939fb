package schedule

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"babyday-backend/internal/model"
)

// Request identifies the day to generate and the template to generate it from.
type Request struct {
	BabyID     string
	Date       string
	TemplateID string
}

// Engine turns a (baby, date, template) request into a generated day.
type Engine struct {
	templates *TemplateService
	generator *Generator
	logger    *zap.Logger
}

// NewEngine creates an engine.
func NewEngine(templates *TemplateService, generator *Generator, logger *zap.Logger) *Engine {
	return &Engine{templates: templates, generator: generator, logger: logger}
}

// GenerateScheduleForDate loads the requested template (the default when
// TemplateID is empty) and expands it. When the template is missing the default
// template is installed and the load is retried exactly once.
func (e *Engine) GenerateScheduleForDate(ctx context.Context, req Request) ([]model.LogSlice, error) {
	templateID := req.TemplateID
	if templateID == "" {
		templateID = e.templates.DefaultID()
	}

	tpl, err := e.templates.GetTemplate(ctx, req.BabyID, templateID)
	if errors.Is(err, model.ErrNotFound) {
		e.logger.Debug("template missing, bootstrapping default",
			zap.String("babyId", req.BabyID),
			zap.String("templateId", templateID))
		if err := e.templates.EnsureDefaultTemplateExists(ctx, req.BabyID); err != nil {
			return nil, err
		}
		tpl, err = e.templates.GetTemplate(ctx, req.BabyID, templateID)
	}
	if err != nil {
		return nil, err
	}

	return e.generator.Generate(req.BabyID, req.Date, tpl)
}
