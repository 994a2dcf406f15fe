// Package application provides HTTP handlers for job application operations.
package application

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ecodeclub/ekit/slice"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sseankzs/openprofile/internal/analysis"
	"github.com/Sseankzs/openprofile/internal/controller/document"
	"github.com/Sseankzs/openprofile/internal/controller/job"
	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/search"
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

// MaxApplicationSize bounds an apply request carrying both documents.
const MaxApplicationSize = 2 * document.MaxDocumentSize

const errAlreadyApplied = "You have already applied to this job post"

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Client
	// Analyzer is optional. Without it applications are stored without analysis.
	Analyzer analysis.Analyzer
}

// NewApplicationController creates a new instance of ApplicationController
func NewApplicationController(db *database.DBinstanceStruct, store storage.Client, analyzer analysis.Analyzer) *ApplicationController {
	return &ApplicationController{
		DB:       db,
		Storage:  store,
		Analyzer: analyzer,
	}
}

func formOr(c *gin.Context, key, fallback string) string {
	if v := strings.TrimSpace(c.PostForm(key)); v != "" {
		return v
	}
	return fallback
}

// contactFor fills the contact snapshot from the form, falling back to the profile and the account email.
func (ac *ApplicationController) contactFor(c *gin.Context, user model.User) (model.ApplicationContact, error) {
	profile := model.ApplicantProfile{}
	err := ac.DB.Where("user_id = ?", user.ID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ApplicationContact{}, err
	}
	return model.ApplicationContact{
		FirstName:    formOr(c, "first_name", profile.FirstName),
		LastName:     formOr(c, "last_name", profile.LastName),
		Email:        formOr(c, "email", user.Email),
		Phone:        formOr(c, "phone", profile.Phone),
		LinkedInLink: formOr(c, "linkedin_link", profile.LinkedIn),
	}, nil
}

// Apply submits an application with a resume and a cover letter.
// @Summary Apply to a job
// @Description Each document is either uploaded (.pdf, .doc or .docx up to 10 MB) or picked from previously
// @Description uploaded ones with use_existing_<kind>=true. Contact fields default to the profile and account email.
// @Description When the analysis endpoint is configured the documents are scored against the job description.
// @Tags Application
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Param resume formData file false "Resume"
// @Param cover_letter formData file false "Cover letter"
// @Param use_existing_resume formData bool false "Use a stored resume"
// @Param resume_document_id formData string false "Stored resume id, defaults to the latest"
// @Param use_existing_cover_letter formData bool false "Use a stored cover letter"
// @Param cover_letter_document_id formData string false "Stored cover letter id, defaults to the latest"
// @Param first_name formData string false "First name"
// @Param last_name formData string false "Last name"
// @Param email formData string false "Email"
// @Param phone formData string false "Phone"
// @Param linkedin_link formData string false "LinkedIn"
// @Success 201 {object} model.Application
// @Failure 400 {object} utilities.ErrorResponse "Already applied or missing document"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as applicant"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 413 {object} utilities.ErrorResponse "File too large"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Failure 502 {object} utilities.ErrorResponse "Failed to analyze application"
// @Router /jobs/{id}/apply [post]
func (ac *ApplicationController) Apply(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	ctx := c.Request.Context()

	post, err := job.LoadJob(ac.DB.DB, c.Param("id"))
	if err != nil {
		job.RespondJobError(c, err)
		return
	}

	var applied int64
	if err := ac.DB.Model(&model.Application{}).
		Where("user_id = ? AND job_id = ?", user.ID, post.ID).
		Count(&applied).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to check existing applications: %s", err.Error()),
		})
		return
	}
	if applied > 0 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: errAlreadyApplied})
		return
	}

	resume, status, err := resolveAttachment(c, ac.DB, user.ID, resumeField)
	if err != nil {
		c.JSON(status, utilities.ErrorResponse{Error: err.Error()})
		return
	}
	coverLetter, status, err := resolveAttachment(c, ac.DB, user.ID, coverLetterField)
	if err != nil {
		c.JSON(status, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	contact, err := ac.contactFor(c, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applicant profile: %s", err.Error()),
		})
		return
	}

	var result *analysis.Result
	if ac.Analyzer != nil && strings.TrimSpace(post.Description) != "" {
		var resumeBytes, coverBytes []byte
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			resumeBytes, err = resume.content(gctx, ac.Storage)
			return err
		})
		g.Go(func() (err error) {
			coverBytes, err = coverLetter.content(gctx, ac.Storage)
			return err
		})
		if err := g.Wait(); err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to load documents: %s", err.Error()),
			})
			return
		}

		result, err = ac.Analyzer.Analyze(ctx, analysis.Request{
			Resume:         resumeBytes,
			CoverLetter:    coverBytes,
			JobDescription: post.Description,
		})
		if err != nil {
			zap.L().Error("application analysis failed",
				zap.String("job_id", post.ID.String()),
				zap.String("user_id", user.ID.String()),
				zap.Error(err))
			c.JSON(http.StatusBadGateway, utilities.ErrorResponse{Error: "Failed to analyze application"})
			return
		}
	}

	app := model.Application{
		UserID:             user.ID,
		JobID:              post.ID,
		ApplicationContact: contact,
	}
	if app.ResumeURL, err = resume.persist(ctx, ac.DB, ac.Storage, user.ID); err == nil {
		app.CoverLetterURL, err = coverLetter.persist(ctx, ac.DB, ac.Storage, user.ID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to store documents: %s", err.Error()),
		})
		return
	}

	if err := ac.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&app).Error; err != nil {
			return errors.Wrap(err, "insert application")
		}
		if result != nil {
			app.Analysis = &model.ApplicationAnalysis{
				ApplicationID:             app.ID,
				CandidateSummary:          result.CandidateSummary,
				RelevantExperienceSummary: result.RelevantExperienceSummary,
				CompetencyScore:           result.CompetencyScore,
				CompetencyReasoning:       result.CompetencyReasoning,
				CompatibilityScore:        result.CompatibilityScore,
				CompatibilityReasoning:    result.CompatibilityReasoning,
			}
			if err := tx.Create(app.Analysis).Error; err != nil {
				return errors.Wrap(err, "insert analysis")
			}
		}
		// the profile keeps the documents of the latest application
		return tx.Model(&model.ApplicantProfile{}).
			Where("user_id = ?", user.ID).
			Updates(map[string]interface{}{
				"resume_url":       app.ResumeURL,
				"cover_letter_url": app.CoverLetterURL,
			}).Error
	}); err != nil {
		// a concurrent submit of the same applicant won the insert
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: errAlreadyApplied})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save application: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ListMyApplications returns the caller's applications with their job and company, newest first.
// @Summary List my applications
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as applicant"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/me [get]
func (ac *ApplicationController) ListMyApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	apps := []model.Application{}
	if err := ac.DB.Preload("Job.Company").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applications: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, apps)
}

// ListApplicants returns the applicants of a job the caller owns.
// @Summary List applicants of my job
// @Description Rows are in application order unless sort_by is given. A missing analysis counts as 0.
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job id"
// @Param sort_by query string false "competency_score or compatibility_score"
// @Param order query string false "asc or desc" default(desc)
// @Success 200 {array} model.ApplicantRow
// @Failure 400 {object} utilities.ErrorResponse "Invalid sort"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner"
// @Failure 404 {object} utilities.ErrorResponse "Job post not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /jobs/{id}/applicants [get]
func (ac *ApplicationController) ListApplicants(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	post, err := job.LoadOwnedJob(ac.DB.DB, c.Param("id"), user)
	if err != nil {
		job.RespondJobError(c, err)
		return
	}

	apps := []model.Application{}
	if err := ac.DB.Preload("Analysis").
		Where("job_id = ?", post.ID).
		Order("created_at ASC").
		Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applicants: %s", err.Error()),
		})
		return
	}

	rows := slice.Map(apps, func(_ int, a model.Application) model.ApplicantRow {
		return a.ToApplicantRow()
	})
	rows, err = search.SortApplicants(rows, c.Query("sort_by"), c.Query("order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// GetApplication returns one application with its analysis to the applicant or the owning company.
// @Summary Get an application
// @Tags Application
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application id"
// @Success 200 {object} model.Application
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id} [get]
func (ac *ApplicationController) GetApplication(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
		return
	}

	app := model.Application{}
	if err := ac.DB.Preload("Job.Company").
		Preload("Analysis").
		First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve application: %s", err.Error()),
		})
		return
	}

	if app.UserID != user.ID && (app.Job == nil || app.Job.Company.UserID != user.ID) {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You are not allowed to view this application"})
		return
	}

	c.JSON(http.StatusOK, app)
}
