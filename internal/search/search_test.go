package search

import (
	"testing"

	"github.com/ecodeclub/ekit/slice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sseankzs/openprofile/internal/model"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func job(title, company, location string, jobType *string, min, max *float64) model.Job {
	return model.Job{
		Company: model.CompanyProfile{EditableCompanyInfo: model.EditableCompanyInfo{CompanyName: company}},
		EditableJobInfo: model.EditableJobInfo{
			Title:     title,
			Location:  location,
			JobType:   jobType,
			SalaryMin: min,
			SalaryMax: max,
		},
	}
}

var fixtures = []model.Job{
	job("Senior Go Developer", "TechNova", "Bangkok", s("Full-time"), f(30000), f(50000)),
	job("Frontend Engineer", "Pixel Works", "Zürich", s("Internship"), f(10000), f(15000)),
	job("Data Analyst", "DataForge", "Chiang Mai", s("Contract"), nil, nil),
	job("Backend Engineer", "TechNova", "Remote", nil, f(40000), nil),
}

func titles(jobs []model.Job) []string {
	return slice.Map(jobs, func(_ int, j model.Job) string { return j.Title })
}

func TestFold(t *testing.T) {
	assert.Equal(t, "zurich", Fold("  Zürich "))
	assert.Equal(t, "sao paulo", Fold("São Paulo"))
	assert.Equal(t, "full-time", Fold("FULL-TIME"))
}

func TestFilter_NoCriteriaKeepsOrder(t *testing.T) {
	assert.Equal(t, titles(fixtures), titles(Filter(fixtures, Criteria{})))
}

func TestFilter_Location(t *testing.T) {
	assert.Equal(t, []string{"Frontend Engineer"}, titles(Filter(fixtures, Criteria{Location: "zurich"})))
	assert.Equal(t, []string{"Senior Go Developer"}, titles(Filter(fixtures, Criteria{Location: "BANG"})))
	assert.Empty(t, Filter(fixtures, Criteria{Location: "Tokyo"}))
}

func TestFilter_JobTypeIsExactIgnoringCase(t *testing.T) {
	assert.Equal(t, []string{"Senior Go Developer"}, titles(Filter(fixtures, Criteria{JobType: "full-time"})))
	assert.Empty(t, Filter(fixtures, Criteria{JobType: "full"}))
}

func TestFilter_SalaryBoundsExcludeMissingValues(t *testing.T) {
	got := Filter(fixtures, Criteria{SalaryMin: f(20000)})
	assert.Equal(t, []string{"Senior Go Developer", "Backend Engineer"}, titles(got))

	got = Filter(fixtures, Criteria{SalaryMax: f(20000)})
	assert.Equal(t, []string{"Frontend Engineer"}, titles(got))

	got = Filter(fixtures, Criteria{SalaryMin: f(30000), SalaryMax: f(50000)})
	assert.Equal(t, []string{"Senior Go Developer"}, titles(got))
}

func TestFilter_CombinedWithSearch(t *testing.T) {
	got := Filter(fixtures, Criteria{Search: "engineer", SalaryMin: f(20000)})
	assert.Equal(t, []string{"Backend Engineer"}, titles(got))
}

func TestFuzzyJobs(t *testing.T) {
	cases := []struct {
		term string
		want []string
	}{
		{"engineer", []string{"Backend Engineer", "Frontend Engineer"}},
		{"enginer", []string{"Backend Engineer", "Frontend Engineer"}},
		{"technova", []string{"Senior Go Developer", "Backend Engineer"}},
		{"go", []string{"Senior Go Developer"}},
		{"zurich", []string{"Frontend Engineer"}},
		{"intern", []string{"Frontend Engineer"}},
		{"analyst", []string{"Data Analyst"}},
		{"xyzzy", []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.term, func(t *testing.T) {
			assert.Equal(t, tc.want, titles(FuzzyJobs(fixtures, tc.term)))
		})
	}
}

func TestScore(t *testing.T) {
	score, ok := Score("engineer", "Backend Engineer")
	assert.True(t, ok)
	assert.InDelta(t, 0.08, score, 1e-9)

	_, ok = Score("engineer", "")
	assert.False(t, ok)

	_, ok = Score("", "anything")
	assert.False(t, ok)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	assert.Equal(t, 3, TotalPages(len(items), DefaultPageSize))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, Paginate(items, 1, DefaultPageSize))
	assert.Equal(t, []int{6, 7, 8, 9, 10}, Paginate(items, 2, DefaultPageSize))
	assert.Equal(t, []int{11, 12}, Paginate(items, 3, DefaultPageSize))
	assert.Empty(t, Paginate(items, 4, DefaultPageSize))
	assert.Empty(t, Paginate(items, 0, DefaultPageSize))

	assert.Equal(t, 0, TotalPages(0, DefaultPageSize))
	assert.Equal(t, 1, TotalPages(5, DefaultPageSize))
	assert.Equal(t, 2, TotalPages(6, DefaultPageSize))
}

func TestPaginate_PartitionsEveryItemOnce(t *testing.T) {
	items := make([]int, 23)
	for i := range items {
		items[i] = i
	}
	var seen []int
	for p := 1; p <= TotalPages(len(items), DefaultPageSize); p++ {
		page := Paginate(items, p, DefaultPageSize)
		assert.LessOrEqual(t, len(page), DefaultPageSize)
		seen = append(seen, page...)
	}
	assert.Equal(t, items, seen)
}

func rows() []model.ApplicantRow {
	return []model.ApplicantRow{
		{FirstName: "NoAnalysis"},
		{FirstName: "High", CompetencyScore: f(9), CompatibilityScore: f(2)},
		{FirstName: "Mid", CompetencyScore: f(5), CompatibilityScore: f(8)},
	}
}

func names(r []model.ApplicantRow) []string {
	return slice.Map(r, func(_ int, row model.ApplicantRow) string { return row.FirstName })
}

func TestSortApplicants(t *testing.T) {
	got, err := SortApplicants(rows(), SortByCompetency, OrderDesc)
	require.NoError(t, err)
	assert.Equal(t, []string{"High", "Mid", "NoAnalysis"}, names(got))

	got, err = SortApplicants(rows(), SortByCompetency, OrderAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"NoAnalysis", "Mid", "High"}, names(got))

	got, err = SortApplicants(rows(), SortByCompatibility, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Mid", "High", "NoAnalysis"}, names(got))

	got, err = SortApplicants(rows(), "", OrderAsc)
	require.NoError(t, err)
	assert.Equal(t, []string{"NoAnalysis", "High", "Mid"}, names(got))
}

func TestSortApplicants_InvalidInput(t *testing.T) {
	_, err := SortApplicants(rows(), "name", OrderAsc)
	assert.Error(t, err)

	_, err = SortApplicants(rows(), SortByCompetency, "sideways")
	assert.Error(t, err)
}
