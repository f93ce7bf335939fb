package summary

import (
	"sort"
	"time"

	"babyday-backend/internal/model"
)

// Block is a run of same-category slices merged for reporting.
type Block struct {
	Category model.Category `json:"category"`
	Start    time.Time      `json:"start"`
	End      time.Time      `json:"end"`
	Slices   int            `json:"slices"`
}

// Duration returns the length of the block.
func (b Block) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// MergeContiguous sorts slices by start time and merges each slice into the
// open block when it has the same category and starts no later than the
// block ends. The block end only ever grows.
func MergeContiguous(slices []model.LogSlice) []Block {
	if len(slices) == 0 {
		return nil
	}

	sorted := make([]model.LogSlice, len(slices))
	copy(sorted, slices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	var blocks []Block
	current := Block{Category: sorted[0].Category, Start: sorted[0].StartTime, End: sorted[0].EndTime, Slices: 1}
	for _, next := range sorted[1:] {
		if next.Category == current.Category && !next.StartTime.After(current.End) {
			if next.EndTime.After(current.End) {
				current.End = next.EndTime
			}
			current.Slices++
			continue
		}
		blocks = append(blocks, current)
		current = Block{Category: next.Category, Start: next.StartTime, End: next.EndTime, Slices: 1}
	}
	return append(blocks, current)
}
