package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"babyday-backend/internal/model"
	"babyday-backend/internal/parse"
)

// Generator expands a template into the concrete slices of one day.
type Generator struct {
	now   func() time.Time
	newID func() string
}

// NewGenerator returns a generator stamping slices with the wall clock and random UUIDs.
func NewGenerator() *Generator {
	return &Generator{now: time.Now, newID: uuid.NewString}
}

// GenerateFromTemplate expands tpl for dateISO using a default generator.
func GenerateFromTemplate(babyID, dateISO string, tpl model.ScheduleTemplate) ([]model.LogSlice, error) {
	return NewGenerator().Generate(babyID, dateISO, tpl)
}

// Generate produces one slice per template entry, in entry order. Times are UTC
// instants on dateISO; an entry ending at hour 24 ends at midnight of the next day.
// Generation never validates coverage; that is the template service's job.
func (g *Generator) Generate(babyID, dateISO string, tpl model.ScheduleTemplate) ([]model.LogSlice, error) {
	day, err := parse.ParseDate(dateISO)
	if err != nil {
		return nil, &model.ValidationError{Object: "schedule", Issues: []string{err.Error()}, Err: err}
	}

	now := g.now().UTC()
	slices := make([]model.LogSlice, 0, len(tpl.Entries))
	for i, entry := range tpl.Entries {
		start, err := parse.HourOffset(entry.StartHour)
		if err != nil {
			return nil, entryError(i, err)
		}
		end, err := parse.HourOffset(entry.EndHour)
		if err != nil {
			return nil, entryError(i, err)
		}

		slices = append(slices, model.LogSlice{
			ID:        g.newID(),
			BabyID:    babyID,
			Category:  entry.Category,
			StartTime: day.Add(start),
			EndTime:   day.Add(end),
			CreatedAt: now,
			UpdatedAt: now,
			Version:   1,
		})
	}
	return slices, nil
}

func entryError(i int, err error) error {
	return &model.ValidationError{
		Object: "template",
		Issues: []string{fmt.Sprintf("entry %d: %v", i, err)},
		Err:    err,
	}
}
