package validate

import (
	"fmt"
	"sort"

	"babyday-backend/internal/model"
	"babyday-backend/internal/summary"
)

// DetectOverlaps reports every pair of slices whose intervals overlap.
// Touching intervals do not overlap. It never fails; an empty result means a clean day.
func DetectOverlaps(slices []model.LogSlice) []string {
	sorted := make([]model.LogSlice, len(slices))
	copy(sorted, slices)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	reports := []string{}
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			if !sorted[j].StartTime.Before(sorted[i].EndTime) {
				break
			}
			reports = append(reports, fmt.Sprintf("%s (%s) overlaps %s (%s)",
				summary.CategoryLabel(sorted[i].Category),
				summary.FormatRange(sorted[i].StartTime, sorted[i].EndTime, nil),
				summary.CategoryLabel(sorted[j].Category),
				summary.FormatRange(sorted[j].StartTime, sorted[j].EndTime, nil)))
		}
	}
	return reports
}
