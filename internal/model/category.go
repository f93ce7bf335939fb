package model

// Category is the closed set of activity kinds shared by templates and slices.
type Category string

const (
	CategorySleep  Category = "sleep"
	CategoryAwake  Category = "awake"
	CategoryFeed   Category = "feed"
	CategoryDiaper Category = "diaper"
	CategoryCare   Category = "care"
	CategoryTalk   Category = "talk"
	CategoryOther  Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategorySleep,
	CategoryAwake,
	CategoryFeed,
	CategoryDiaper,
	CategoryCare,
	CategoryTalk,
	CategoryOther,
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Source is the provenance tag of a slice meta record.
type Source string

const (
	SourceRule Source = "rule"
	SourceAI   Source = "ai"
	SourceUser Source = "user"
)

// Valid reports whether s is a known provenance tag.
func (s Source) Valid() bool {
	switch s {
	case SourceRule, SourceAI, SourceUser:
		return true
	}
	return false
}
