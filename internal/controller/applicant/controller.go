// Package applicant provides HTTP handlers for the applicant profile.
package applicant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/storage"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

// MaxImageSize is the largest accepted profile picture.
const MaxImageSize = 1 << 20

// ApplicantController handles applicant profile endpoints
type ApplicantController struct {
	DB      *database.DBinstanceStruct
	Storage storage.Client
}

// NewApplicantController creates a new instance of ApplicantController
func NewApplicantController(db *database.DBinstanceStruct, store storage.Client) *ApplicantController {
	return &ApplicantController{
		DB:      db,
		Storage: store,
	}
}

// ImageObject is the object name of a user's profile picture. Uploads replace it in place.
func ImageObject(user model.User) string {
	return "profile-" + user.ID.String()
}

func (ac *ApplicantController) findProfile(c *gin.Context, user model.User) (*model.ApplicantProfile, bool) {
	profile := model.ApplicantProfile{}
	err := ac.DB.Where("user_id = ?", user.ID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Applicant profile not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve applicant profile: %s", err.Error()),
		})
		return nil, false
	}
	return &profile, true
}

// GetProfile returns the logged-in applicant's profile.
// @Summary Get my applicant profile
// @Tags Applicant
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.ApplicantProfile
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as applicant"
// @Failure 404 {object} utilities.ErrorResponse "Applicant profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applicant/profile [get]
func (ac *ApplicantController) GetProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	profile, ok := ac.findProfile(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile creates the applicant profile or overwrites its editable fields.
// @Summary Create or update my applicant profile
// @Description Unknown fields are rejected.
// @Tags Applicant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body model.EditableApplicantInfo true "Profile fields"
// @Success 200 {object} model.ApplicantProfile
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as applicant"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applicant/profile [put]
func (ac *ApplicantController) UpsertProfile(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	info := model.EditableApplicantInfo{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	profile := model.ApplicantProfile{UserID: user.ID, EditableApplicantInfo: info}
	if err := ac.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "phone", "linkedin", "updated_at"}),
	}).Create(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save applicant profile: %s", err.Error()),
		})
		return
	}

	saved, ok := ac.findProfile(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, saved)
}

// UploadImage replaces the applicant's profile picture.
// @Summary Upload my profile picture
// @Description Only .jpg, .jpeg and .png files up to 1 MB are accepted.
// @Tags Applicant
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Profile picture"
// @Success 200 {object} model.ApplicantProfile
// @Failure 400 {object} utilities.ErrorResponse "No file uploaded"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not acting as applicant"
// @Failure 404 {object} utilities.ErrorResponse "Applicant profile not found"
// @Failure 413 {object} utilities.ErrorResponse "File too large"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Storage or database error"
// @Router /applicant/profile/image [post]
func (ac *ApplicantController) UploadImage(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	profile, ok := ac.findProfile(c, user)
	if !ok {
		return
	}

	file, status, err := utilities.ReadFormFile(c, "image", utilities.ImageExtensions, MaxImageSize)
	if err != nil {
		c.JSON(status, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	object := ImageObject(user)
	if err := ac.Storage.Upload(c.Request.Context(), storage.BucketApplicantImages, object, bytes.NewReader(file.Content), storage.UploadOptions{
		ContentType: file.ContentType,
		Upsert:      true,
	}); err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to upload image: %s", err.Error()),
		})
		return
	}

	profile.ImgURL = ac.Storage.PublicURL(storage.BucketApplicantImages, object)
	if err := ac.DB.Model(profile).Updates(map[string]interface{}{
		"img_url":    profile.ImgURL,
		"updated_at": time.Now(),
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to save image url: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}
