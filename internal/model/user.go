// Package model contains gorm models and response shapes shared by handlers.
package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// RoleApplicant is the side of the board that searches and applies for jobs.
	RoleApplicant = "applicant"
	// RoleCompany is the side of the board that posts jobs and reviews applicants.
	RoleCompany = "company"
)

// User is an account. SelectedRole decides which side of the board the account currently acts on.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Password     string    `json:"-"`
	SelectedRole string    `gorm:"type:text;not null;default:'applicant'" json:"selected_role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToggleRole returns the role a switch leads to: company goes back to applicant, anything else becomes company.
func ToggleRole(current string) string {
	if current == RoleCompany {
		return RoleApplicant
	}
	return RoleCompany
}

// IsValidRole reports whether role is one of the selectable roles.
func IsValidRole(role string) bool {
	return role == RoleApplicant || role == RoleCompany
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
}

// MeResponse tells the client who is logged in and which profiles are filled in.
type MeResponse struct {
	User                     User `json:"user"`
	ApplicantProfileComplete bool `json:"applicant_profile_complete"`
	CompanyProfileComplete   bool `json:"company_profile_complete"`
}
