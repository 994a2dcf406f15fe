package search

import (
	"strings"

	"github.com/Sseankzs/openprofile/internal/model"
)

// Criteria are the optional job search inputs. Zero values disable a predicate.
type Criteria struct {
	Search    string
	Location  string
	JobType   string
	SalaryMin *float64
	SalaryMax *float64
}

// Filter applies the location, job type and salary predicates and then narrows the result
// with the fuzzy search term. Without a term the input order is kept.
func Filter(jobs []model.Job, c Criteria) []model.Job {
	location := Fold(c.Location)
	jobType := Fold(c.JobType)

	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		if location != "" && !strings.Contains(Fold(j.Location), location) {
			continue
		}
		if jobType != "" && (j.JobType == nil || Fold(*j.JobType) != jobType) {
			continue
		}
		// jobs without a bound never match a bound filter
		if c.SalaryMin != nil && (j.SalaryMin == nil || *j.SalaryMin < *c.SalaryMin) {
			continue
		}
		if c.SalaryMax != nil && (j.SalaryMax == nil || *j.SalaryMax > *c.SalaryMax) {
			continue
		}
		out = append(out, j)
	}

	if strings.TrimSpace(c.Search) == "" {
		return out
	}
	return FuzzyJobs(out, c.Search)
}

func jobKeys(j model.Job) []string {
	keys := []string{j.Title, j.Company.CompanyName, j.Location}
	if j.JobType != nil {
		keys = append(keys, *j.JobType)
	}
	return keys
}
