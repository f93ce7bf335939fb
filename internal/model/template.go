package model

// ScheduleTemplateEntry is one category block of a daily template, in hours of the day.
type ScheduleTemplateEntry struct {
	Category  Category `json:"category" yaml:"category" validate:"required,category"`
	StartHour float64  `json:"startHour" yaml:"startHour" validate:"gte=0,lte=24"`
	EndHour   float64  `json:"endHour" yaml:"endHour" validate:"lte=24,gtfield=StartHour"`
}

// Hours returns the length of the entry.
func (e ScheduleTemplateEntry) Hours() float64 {
	return e.EndHour - e.StartHour
}

// ScheduleTemplate is a reusable partition of a day used to generate slices.
type ScheduleTemplate struct {
	TemplateID string                  `json:"templateId,omitempty" yaml:"templateId"`
	Entries    []ScheduleTemplateEntry `json:"entries" yaml:"entries" validate:"required,min=1,dive"`
}

// TotalHours sums the length of all entries.
func (t ScheduleTemplate) TotalHours() float64 {
	var total float64
	for _, e := range t.Entries {
		total += e.Hours()
	}
	return total
}
