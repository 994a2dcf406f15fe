// Package job provides HTTP handlers for job search and the company side of job postings.
package job

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/search"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

var (
	// ErrJobNotFound is returned by LoadOwnedJob for unknown or malformed ids.
	ErrJobNotFound = errors.New("Job post not found")
	// ErrNotOwner is returned by LoadOwnedJob when the job belongs to another company.
	ErrNotOwner = errors.New("You are not allowed to edit this job post")
)

// JobController handles job post endpoints
type JobController struct {
	DB *database.DBinstanceStruct
}

// NewJobController creates a new instance of JobController
func NewJobController(db *database.DBinstanceStruct) *JobController {
	return &JobController{
		DB: db,
	}
}

// LoadJob finds a job by id with its company preloaded.
func LoadJob(db *gorm.DB, id string) (*model.Job, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrJobNotFound
	}
	job := model.Job{}
	err = db.Preload("Company").First(&job, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// LoadOwnedJob is LoadJob restricted to jobs of the user's company.
func LoadOwnedJob(db *gorm.DB, id string, user model.User) (*model.Job, error) {
	job, err := LoadJob(db, id)
	if err != nil {
		return nil, err
	}
	if job.Company.UserID != user.ID {
		return nil, ErrNotOwner
	}
	return job, nil
}

// RespondJobError writes the status that matches a LoadJob or LoadOwnedJob error.
func RespondJobError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrJobNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve job post: %s", err.Error()),
		})
	}
}

func validateJob(info model.EditableJobInfo) error {
	if strings.TrimSpace(info.Title) == "" || strings.TrimSpace(info.Location) == "" {
		return errors.New("Title and location are required")
	}
	if (info.SalaryMin != nil && *info.SalaryMin < 0) || (info.SalaryMax != nil && *info.SalaryMax < 0) {
		return errors.New("Salary must not be negative")
	}
	if info.SalaryMin != nil && info.SalaryMax != nil && *info.SalaryMin > *info.SalaryMax {
		return errors.New("Minimum salary must not exceed maximum salary")
	}
	if info.JobType != nil && *info.JobType != "" && !utilities.Contains(model.JobTypes, *info.JobType) {
		return fmt.Errorf("Job type must be one of %s", strings.Join(model.JobTypes, ", "))
	}
	return nil
}

func parseFloatQuery(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("Query '%s' must be a number", key)
	}
	return &v, nil
}

// SearchJobs filters all jobs and returns one page, newest first unless a search term reorders them.
// @Summary Search jobs
// @Description Location is an accent-insensitive substring, type is exact (case-insensitive),
// @Description salary bounds require the job to declare that bound, search is fuzzy over title, company, location and type.
// @Tags Job
// @Produce json
// @Security BearerAuth
// @Param search query string false "Fuzzy search term"
// @Param location query string false "Location"
// @Param type query string false "Job type"
// @Param salary_min query number false "Minimum salary"
// @Param salary_max query number false "Maximum salary"
// @Param page query int false "1-based page" default(1)
// @Success 200 {object} model.JobPage
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs [get]
func (jc *JobController) SearchJobs(c *gin.Context) {
	page := 1
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil || p < 1 {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Query 'page' must be a positive integer"})
			return
		}
		page = p
	}

	criteria := search.Criteria{
		Search:   c.Query("search"),
		Location: c.Query("location"),
		JobType:  c.Query("type"),
	}
	var err error
	if criteria.SalaryMin, err = parseFloatQuery(c, "salary_min"); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	if criteria.SalaryMax, err = parseFloatQuery(c, "salary_max"); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	jobs := []model.Job{}
	if err := jc.DB.Preload("Company").Order("created_at DESC").Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve jobs: %s", err.Error()),
		})
		return
	}

	matched := search.Filter(jobs, criteria)
	c.JSON(http.StatusOK, model.JobPage{
		Jobs:       search.Paginate(matched, page, search.DefaultPageSize),
		Page:       page,
		PageSize:   search.DefaultPageSize,
		Total:      len(matched),
		TotalPages: search.TotalPages(len(matched), search.DefaultPageSize),
	})
}

// GetJob returns one job with its company and whether the caller already applied.
// @Summary Get a job
// @Tags Job
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Success 200 {object} model.JobResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id} [get]
func (jc *JobController) GetJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := LoadJob(jc.DB.Preload("Applications"), c.Param("id"))
	if err != nil {
		RespondJobError(c, err)
		return
	}

	c.JSON(http.StatusOK, job.ToJobResponse(user.ID))
}

// CreateJob posts a job for the caller's company.
// @Summary Create a job post
// @Tags Job
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param job body model.EditableJobInfo true "Job to post"
// @Success 201 {object} model.Job
// @Failure 400 {object} utilities.ErrorResponse "Invalid job"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as company"
// @Failure 404 {object} utilities.ErrorResponse "Company profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs [post]
func (jc *JobController) CreateJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company := model.CompanyProfile{}
	if err := jc.DB.Where("user_id = ?", user.ID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company profile: %s", err.Error()),
		})
		return
	}

	info := model.EditableJobInfo{}
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	if err := validateJob(info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job := model.Job{
		CompanyID:       company.ID,
		PostedBy:        user.ID,
		EditableJobInfo: info,
	}
	if err := jc.DB.Omit(clause.Associations).Create(&job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create job post: %s", err.Error()),
		})
		return
	}
	job.Company = company

	c.JSON(http.StatusCreated, job)
}

// EditJob merges the non-empty fields of the body into a job the caller owns.
// @Summary Edit a job post
// @Tags Job
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Param job body model.EditableJobInfo true "Fields to change"
// @Success 200 {object} model.Job
// @Failure 400 {object} utilities.ErrorResponse "Invalid job"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id} [patch]
func (jc *JobController) EditJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := LoadOwnedJob(jc.DB.DB, c.Param("id"), user)
	if err != nil {
		RespondJobError(c, err)
		return
	}

	edited := model.EditableJobInfo{}
	if err := c.ShouldBindJSON(&edited); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&job.EditableJobInfo, &edited)
	if err := validateJob(job.EditableJobInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	if err := jc.DB.Omit(clause.Associations).Save(job).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update job post: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, job)
}

// DeleteJob removes a job the caller owns together with its applications.
// @Summary Delete a job post
// @Tags Job
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id} [delete]
func (jc *JobController) DeleteJob(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	job, err := LoadOwnedJob(jc.DB.DB, c.Param("id"), user)
	if err != nil {
		RespondJobError(c, err)
		return
	}

	if err := jc.DB.Delete(&model.Job{}, "id = ?", job.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete job post: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Job post deleted"})
}
