package schedule

import "babyday-backend/internal/model"

// DefaultTemplate returns the built-in routine installed for a baby on first use.
// Its entries tile the whole day.
func DefaultTemplate(templateID string) model.ScheduleTemplate {
	return model.ScheduleTemplate{
		TemplateID: templateID,
		Entries: []model.ScheduleTemplateEntry{
			{Category: model.CategorySleep, StartHour: 0, EndHour: 6.5},
			{Category: model.CategoryFeed, StartHour: 6.5, EndHour: 7},
			{Category: model.CategoryDiaper, StartHour: 7, EndHour: 7.5},
			{Category: model.CategoryAwake, StartHour: 7.5, EndHour: 9},
			{Category: model.CategorySleep, StartHour: 9, EndHour: 10.5},
			{Category: model.CategoryFeed, StartHour: 10.5, EndHour: 11},
			{Category: model.CategoryTalk, StartHour: 11, EndHour: 12},
			{Category: model.CategoryCare, StartHour: 12, EndHour: 12.5},
			{Category: model.CategorySleep, StartHour: 12.5, EndHour: 14.5},
			{Category: model.CategoryFeed, StartHour: 14.5, EndHour: 15},
			{Category: model.CategoryAwake, StartHour: 15, EndHour: 17},
			{Category: model.CategoryDiaper, StartHour: 17, EndHour: 17.5},
			{Category: model.CategoryFeed, StartHour: 17.5, EndHour: 18},
			{Category: model.CategoryCare, StartHour: 18, EndHour: 19},
			{Category: model.CategoryTalk, StartHour: 19, EndHour: 19.5},
			{Category: model.CategorySleep, StartHour: 19.5, EndHour: 24},
		},
	}
}
