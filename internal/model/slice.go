package model

import "time"

// LogSlice is one dated interval of activity for a baby.
type LogSlice struct {
	ID        string    `json:"id" validate:"required,uuid"`
	BabyID    string    `json:"babyId" validate:"required"`
	Category  Category  `json:"category" validate:"required,category"`
	StartTime time.Time `json:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" validate:"required,gtfield=StartTime"`
	CreatedAt time.Time `json:"createdAt" validate:"required"`
	UpdatedAt time.Time `json:"updatedAt" validate:"required"`
	Version   int       `json:"version" validate:"gte=1"`
}

// Duration returns the length of the slice.
func (s LogSlice) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// LogSliceMeta is the confirmation and provenance annotation of a slice.
// It is stored apart from the slice and outlives regeneration of the day.
type LogSliceMeta struct {
	ID           string    `json:"id" validate:"required"`
	Source       Source    `json:"source" validate:"required,source"`
	Confirmed    bool      `json:"confirmed"`
	Edited       bool      `json:"edited"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	LastModified time.Time `json:"lastModified" validate:"required"`
}
