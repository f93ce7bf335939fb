package validate

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-playground/validator/v10"

	"babyday-backend/internal/model"
)

const coverageEpsilon = 1e-9

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("source", func(fl validator.FieldLevel) bool {
		return model.Source(fl.Field().String()).Valid()
	})
	return v
}

// Slice checks a slice against the slice schema.
func Slice(s model.LogSlice) error {
	return schemaError("slice", validate.Struct(s))
}

// Slices checks every slice of a day.
func Slices(slices []model.LogSlice) error {
	for i := range slices {
		if err := Slice(slices[i]); err != nil {
			return fmt.Errorf("slice %d: %w", i, err)
		}
	}
	return nil
}

// Meta checks a meta record against the meta schema.
func Meta(m model.LogSliceMeta) error {
	return schemaError("slice meta", validate.Struct(m))
}

// Template checks the template schema and that its entries tile exactly 24 hours.
func Template(t model.ScheduleTemplate) error {
	if err := schemaError("template", validate.Struct(t)); err != nil {
		return err
	}

	total := t.TotalHours()
	if math.Abs(total-24) > coverageEpsilon {
		return &model.ValidationError{
			Object: "template",
			Issues: []string{fmt.Sprintf("entries cover %g hours, want exactly 24", total)},
		}
	}

	entries := make([]model.ScheduleTemplateEntry, len(t.Entries))
	copy(entries, t.Entries)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].StartHour < entries[j].StartHour })

	var issues []string
	cursor := 0.0
	for _, e := range entries {
		switch {
		case e.StartHour > cursor+coverageEpsilon:
			issues = append(issues, fmt.Sprintf("gap between hour %g and %g", cursor, e.StartHour))
		case e.StartHour < cursor-coverageEpsilon:
			issues = append(issues, fmt.Sprintf("%s entry starting at hour %g overlaps the previous entry", e.Category, e.StartHour))
		}
		cursor = math.Max(cursor, e.EndHour)
	}
	if len(issues) > 0 {
		return &model.ValidationError{Object: "template", Issues: issues}
	}
	return nil
}

func schemaError(object string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &model.ValidationError{Object: object, Issues: []string{err.Error()}, Err: err}
	}
	issues := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			issues = append(issues, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			issues = append(issues, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return &model.ValidationError{Object: object, Issues: issues, Err: err}
}
