// Package account provides HTTP handlers for the logged-in account and its selected role.
package account

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/model"
	"github.com/Sseankzs/openprofile/internal/utilities"
)

// AccountController handles account related endpoints
type AccountController struct {
	DB *database.DBinstanceStruct
}

// NewAccountController creates a new instance of AccountController
func NewAccountController(db *database.DBinstanceStruct) *AccountController {
	return &AccountController{
		DB: db,
	}
}

type roleInput struct {
	Role string `json:"role" binding:"required"`
}

func (ac *AccountController) meResponse(user model.User) (model.MeResponse, error) {
	var applicantCount, companyCount int64
	if err := ac.DB.Model(&model.ApplicantProfile{}).Where("user_id = ?", user.ID).Count(&applicantCount).Error; err != nil {
		return model.MeResponse{}, err
	}
	if err := ac.DB.Model(&model.CompanyProfile{}).Where("user_id = ?", user.ID).Count(&companyCount).Error; err != nil {
		return model.MeResponse{}, err
	}
	return model.MeResponse{
		User:                     user,
		ApplicantProfileComplete: applicantCount > 0,
		CompanyProfileComplete:   companyCount > 0,
	}, nil
}

// GetMe returns the logged-in user and which profiles exist.
// @Summary Get current account
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /me [get]
func (ac *AccountController) GetMe(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := ac.meResponse(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve profiles: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetRole sets the selected role explicitly.
// @Summary Set selected role
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Role body roleInput true "'applicant' or 'company'"
// @Success 200 {object} model.MeResponse
// @Failure 400 {object} utilities.ErrorResponse "Invalid role"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /me/role [patch]
func (ac *AccountController) SetRole(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var input roleInput
	if err := c.ShouldBindJSON(&input); err != nil || !model.IsValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Role must be 'applicant' or 'company'",
		})
		return
	}

	ac.updateRole(c, user, input.Role)
}

// SwitchRole toggles between the applicant and company side.
// @Summary Switch selected role
// @Description company becomes applicant, anything else becomes company
// @Tags Account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.MeResponse
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /me/role/switch [post]
func (ac *AccountController) SwitchRole(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	ac.updateRole(c, user, model.ToggleRole(user.SelectedRole))
}

func (ac *AccountController) updateRole(c *gin.Context, user model.User, role string) {
	if err := ac.DB.Model(&user).Update("selected_role", role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update role: %s", err.Error()),
		})
		return
	}
	user.SelectedRole = role

	resp, err := ac.meResponse(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve profiles: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}
