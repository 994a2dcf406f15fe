package search

import (
	"math"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Sseankzs/openprofile/internal/model"
)

const (
	// Threshold is the highest score still counted as a match. 0 is exact, 1 matches anything.
	Threshold = 0.3
	// locationDistance scales how much a match far from the start of a field costs.
	locationDistance = 100.0
)

// Score returns the best match score of term inside text and whether it is within Threshold.
// The score is edit errors divided by the term length plus the match offset divided by 100.
func Score(term, text string) (float64, bool) {
	p := []rune(Fold(term))
	t := []rune(Fold(text))
	m := len(p)
	if m == 0 || len(t) == 0 {
		return 1, false
	}

	maxErrors := int(math.Floor(Threshold * float64(m)))
	best := math.Inf(1)
	pattern := string(p)

	for offset := 0; offset < len(t); offset++ {
		locationCost := float64(offset) / locationDistance
		if locationCost > Threshold || locationCost >= best {
			break
		}
		for width := m - maxErrors; width <= m+maxErrors; width++ {
			if width < 1 || offset+width > len(t) {
				continue
			}
			d := fuzzy.LevenshteinDistance(pattern, string(t[offset:offset+width]))
			if d > maxErrors {
				continue
			}
			if s := float64(d)/float64(m) + locationCost; s < best {
				best = s
			}
		}
		if best == 0 {
			break
		}
	}

	return best, best <= Threshold
}

type scoredJob struct {
	job   model.Job
	score float64
}

// FuzzyJobs keeps the jobs whose title, company name, location or job type match term
// and orders them by their best score. Ties keep the input order.
func FuzzyJobs(jobs []model.Job, term string) []model.Job {
	matched := make([]scoredJob, 0, len(jobs))
	for _, j := range jobs {
		best, ok := math.Inf(1), false
		for _, key := range jobKeys(j) {
			if s, hit := Score(term, key); hit && s < best {
				best, ok = s, true
			}
		}
		if ok {
			matched = append(matched, scoredJob{job: j, score: best})
		}
	}

	sort.SliceStable(matched, func(a, b int) bool { return matched[a].score < matched[b].score })

	out := make([]model.Job, len(matched))
	for i, s := range matched {
		out[i] = s.job
	}
	return out
}
