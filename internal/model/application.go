package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationContact is the contact snapshot an applicant submits with an application.
// It is copied at submission time and never follows later profile edits.
type ApplicationContact struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	LinkedInLink string `gorm:"column:linkedin_link" json:"linkedin_link"`
}

// Application is a submission of an applicant to a job. An applicant applies to a job at most once.
type Application struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_applications_user_job" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_applications_user_job" json:"job_id"`
	Job    *Job      `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"job,omitempty"`
	ApplicationContact
	ResumeURL      string               `json:"resume_url"`
	CoverLetterURL string               `json:"cover_letter_url"`
	Analysis       *ApplicationAnalysis `gorm:"foreignKey:ApplicationID;references:ID;constraint:OnDelete:CASCADE" json:"analysis,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// ApplicationAnalysis holds the external analyzer's summary and scores for one application.
type ApplicationAnalysis struct {
	ID                        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ApplicationID             uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"application_id"`
	CandidateSummary          string    `json:"candidate_summary"`
	RelevantExperienceSummary string    `json:"relevant_experience_summary"`
	CompetencyScore           float64   `json:"competency_score"`
	CompetencyReasoning       string    `json:"competency_reasoning"`
	CompatibilityScore        float64   `json:"compatibility_score"`
	CompatibilityReasoning    string    `json:"compatibility_reasoning"`
	CreatedAt                 time.Time `json:"created_at"`
}

// TableName keeps the analysis table singular.
func (ApplicationAnalysis) TableName() string {
	return "application_analysis"
}

// ApplicantRow is one line of a job's applicant list as shown to the owning company.
type ApplicantRow struct {
	ApplicationID      uuid.UUID `json:"application_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	CompetencyScore    *float64  `json:"competency_score"`
	CompatibilityScore *float64  `json:"compatibility_score"`
	AppliedAt          time.Time `json:"applied_at"`
}

// ToApplicantRow projects an application with its optional analysis.
func (a Application) ToApplicantRow() ApplicantRow {
	row := ApplicantRow{
		ApplicationID: a.ID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		AppliedAt:     a.CreatedAt,
	}
	if a.Analysis != nil {
		competency, compatibility := a.Analysis.CompetencyScore, a.Analysis.CompatibilityScore
		row.CompetencyScore = &competency
		row.CompatibilityScore = &compatibility
	}
	return row
}
