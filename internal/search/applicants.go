package search

import (
	"fmt"
	"sort"

	"github.com/Sseankzs/openprofile/internal/model"
)

// Sort keys and directions accepted by SortApplicants.
const (
	SortByCompetency    = "competency_score"
	SortByCompatibility = "compatibility_score"
	OrderAsc            = "asc"
	OrderDesc           = "desc"
)

// SortApplicants orders rows by the chosen score. A missing analysis counts as 0.
// An empty by keeps the input order and an empty order means descending.
func SortApplicants(rows []model.ApplicantRow, by, order string) ([]model.ApplicantRow, error) {
	if order == "" {
		order = OrderDesc
	}
	if order != OrderAsc && order != OrderDesc {
		return nil, fmt.Errorf("invalid order %q, must be %q or %q", order, OrderAsc, OrderDesc)
	}

	var score func(model.ApplicantRow) float64
	switch by {
	case "":
		return rows, nil
	case SortByCompetency:
		score = func(r model.ApplicantRow) float64 { return valueOrZero(r.CompetencyScore) }
	case SortByCompatibility:
		score = func(r model.ApplicantRow) float64 { return valueOrZero(r.CompatibilityScore) }
	default:
		return nil, fmt.Errorf("invalid sort_by %q, must be %q or %q", by, SortByCompetency, SortByCompatibility)
	}

	sorted := make([]model.ApplicantRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if order == OrderAsc {
			return score(sorted[i]) < score(sorted[j])
		}
		return score(sorted[i]) > score(sorted[j])
	})
	return sorted, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
