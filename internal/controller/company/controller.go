// Package company provides HTTP handlers for company profiles and the jobs they post.
package company

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

// MaxLogoSize is the largest accepted company logo.
const MaxLogoSize = 2 << 20

// CompanyController handles company profile endpoints
type CompanyController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Client
}

// NewCompanyController creates a new instance of CompanyController
func NewCompanyController(db *database.DBinstanceStruct, store storage.Client) *CompanyController {
	return &CompanyController{
		DB:      db,
		Storage: store,
	}
}

// LogoObject is the object name of a company's logo. Uploads replace it in place.
func LogoObject(user model.User) string {
	return "logo-" + user.ID.String()
}

func (cc *CompanyController) findProfile(c *gin.Context, user model.User) (*model.CompanyProfile, bool) {
	company := model.CompanyProfile{}
	err := cc.DB.Where("user_id = ?", user.ID).First(&company).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company profile not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company profile: %s", err.Error()),
		})
		return nil, false
	}
	return &company, true
}

func (cc *CompanyController) uploadLogo(ctx context.Context, user model.User, file *utilities.UploadedFile) (string, error) {
	object := LogoObject(user)
	if err := cc.Storage.Upload(ctx, storage.BucketCompanyLogos, object, bytes.NewReader(file.Content), storage.UploadOptions{
		ContentType: file.ContentType,
		Upsert:      true,
	}); err != nil {
		return "", err
	}
	return cc.Storage.PublicURL(storage.BucketCompanyLogos, object), nil
}

// GetProfile returns the logged-in company's profile.
// @Summary Get my company profile
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.CompanyProfile
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as company"
// @Failure 404 {object} utilities.ErrorResponse "Company profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/profile [get]
func (cc *CompanyController) GetProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company, ok := cc.findProfile(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, company)
}

// CreateProfile creates the company profile once, optionally with a logo.
// @Summary Create my company profile
// @Tags Company
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param company_name formData string true "Company name"
// @Param email formData string false "Contact email"
// @Param phone formData string false "Contact phone"
// @Param website formData string false "Website"
// @Param location formData string false "Location"
// @Param description formData string false "Description"
// @Param logo formData file false "Logo, .jpg .jpeg or .png up to 2 MB"
// @Success 201 {object} model.CompanyProfile
// @Failure 400 {object} utilities.ErrorResponse "Company name missing"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as company"
// @Failure 409 {object} utilities.ErrorResponse "Company profile already exists"
// @Failure 413 {object} utilities.ErrorResponse "File too large"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /company/profile [post]
func (cc *CompanyController) CreateProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var existing int64
	if err := cc.DB.Model(&model.CompanyProfile{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company profile: %s", err.Error()),
		})
		return
	}
	if existing > 0 {
		c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Company profile already exists"})
		return
	}

	company := model.CompanyProfile{
		UserID: user.ID,
		EditableCompanyInfo: model.EditableCompanyInfo{
			CompanyName: strings.TrimSpace(c.PostForm("company_name")),
			Email:       c.PostForm("email"),
			Phone:       c.PostForm("phone"),
			Website:     c.PostForm("website"),
			Location:    c.PostForm("location"),
			Description: c.PostForm("description"),
		},
	}
	if company.CompanyName == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Company name is required"})
		return
	}

	logo, status, err := utilities.ReadFormFile(c, "logo", utilities.ImageExtensions, MaxLogoSize)
	switch {
	case errors.Is(err, utilities.ErrNoFile):
	case err != nil:
		c.JSON(status, utilities.ErrorResponse{Error: err.Error()})
		return
	default:
		company.LogoURL, err = cc.uploadLogo(c.Request.Context(), user, logo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to upload logo: %s", err.Error()),
			})
			return
		}
	}

	if err := cc.DB.Create(&company).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, utilities.ErrorResponse{Error: "Company profile already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create company profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, company)
}

// EditProfile merges the non-empty fields of the body into the company profile.
// @Summary Edit my company profile
// @Description Empty fields keep their current value. Unknown fields are rejected.
// @Tags Company
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param company_profile body model.EditableCompanyInfo true "Company info to be written"
// @Success 200 {object} model.CompanyProfile
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as company"
// @Failure 404 {object} utilities.ErrorResponse "Company profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/profile [patch]
func (cc *CompanyController) EditProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company, ok := cc.findProfile(c, user)
	if !ok {
		return
	}

	edited := model.EditableCompanyInfo{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&edited); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	utilities.MergeNonEmpty(&company.EditableCompanyInfo, &edited)

	if err := cc.DB.Save(company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update company profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// UploadLogo replaces the company logo.
// @Summary Upload my company logo
// @Description Only .jpg, .jpeg and .png files up to 2 MB are accepted.
// @Tags Company
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param logo formData file true "Logo"
// @Success 200 {object} model.CompanyProfile
// @Failure 400 {object} utilities.ErrorResponse "No file uploaded"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as company"
// @Failure 404 {object} utilities.ErrorResponse "Company profile not found"
// @Failure 413 {object} utilities.ErrorResponse "File too large"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /company/profile/logo [post]
func (cc *CompanyController) UploadLogo(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company, ok := cc.findProfile(c, user)
	if !ok {
		return
	}

	logo, status, err := utilities.ReadFormFile(c, "logo", utilities.ImageExtensions, MaxLogoSize)
	if err != nil {
		c.JSON(status, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company.LogoURL, err = cc.uploadLogo(c.Request.Context(), user, logo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to upload logo: %s", err.Error()),
		})
		return
	}

	if err := cc.DB.Model(company).Updates(map[string]interface{}{
		"logo_url":   company.LogoURL,
		"updated_at": time.Now(),
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save logo url: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company)
}

// GetCompanyByID returns any company profile with its jobs, newest first.
// @Summary Get a company by id
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company profile id"
// @Success 200 {object} model.CompanyDetail
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/{id} [get]
func (cc *CompanyController) GetCompanyByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
		return
	}

	company := model.CompanyProfile{}
	if err := cc.DB.Preload("Jobs", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company information from database: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, company.ToCompanyDetail())
}

// ListMyJobs returns the jobs posted by the logged-in company, newest first.
// @Summary List my posted jobs
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Job
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as company"
// @Failure 404 {object} utilities.ErrorResponse "Company profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /company/jobs [get]
func (cc *CompanyController) ListMyJobs(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	company, ok := cc.findProfile(c, user)
	if !ok {
		return
	}

	jobs := []model.Job{}
	if err := cc.DB.Where("company_id = ?", company.ID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve jobs: %s", err.Error()),
		})
		return
	}

	for i := range jobs {
		jobs[i].Company = *company
	}
	c.JSON(http.StatusOK, jobs)
}
