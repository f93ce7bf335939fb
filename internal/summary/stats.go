package summary

import (
	"time"

	"babyday-backend/internal/model"
)

// CategoryStats aggregates merged-block durations for one category.
type CategoryStats struct {
	Category model.Category `json:"category"`
	Label    string         `json:"label"`
	Total    time.Duration  `json:"total"`
	Blocks   int            `json:"blocks"`
	Average  time.Duration  `json:"average"`
	Longest  time.Duration  `json:"longest"`
	// PerDay is Total divided by the number of days the stats cover; zero when unknown.
	PerDay time.Duration `json:"perDay"`
}

// DurationStats merges slices and aggregates block durations per category,
// in the canonical category order. Categories without blocks are omitted.
func DurationStats(slices []model.LogSlice) []CategoryStats {
	return aggregate(MergeContiguous(slices), 0)
}

func aggregate(blocks []Block, days int) []CategoryStats {
	byCategory := make(map[model.Category]*CategoryStats)
	for _, b := range blocks {
		st, ok := byCategory[b.Category]
		if !ok {
			st = &CategoryStats{Category: b.Category, Label: CategoryLabel(b.Category)}
			byCategory[b.Category] = st
		}
		d := b.Duration()
		st.Total += d
		st.Blocks++
		if d > st.Longest {
			st.Longest = d
		}
	}

	var out []CategoryStats
	for _, c := range model.Categories {
		st, ok := byCategory[c]
		if !ok {
			continue
		}
		st.Average = st.Total / time.Duration(st.Blocks)
		if days > 0 {
			st.PerDay = st.Total / time.Duration(days)
		}
		out = append(out, *st)
	}
	return out
}
