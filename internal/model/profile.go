package model

import (
	"time"

	"github.com/google/uuid"
)

// EditableApplicantInfo is the part of an applicant profile the owner may change.
type EditableApplicantInfo struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	LinkedIn  string `gorm:"column:linkedin" json:"linkedin"`
}

// ApplicantProfile belongs to exactly one user.
type ApplicantProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	EditableApplicantInfo
	ImgURL         string    `json:"img_url"`
	ResumeURL      string    `json:"resume_url"`
	CoverLetterURL string    `json:"cover_letter_url"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EditableCompanyInfo is the part of a company profile the owner may change.
type EditableCompanyInfo struct {
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// CompanyProfile belongs to exactly one user and owns the jobs it posts.
type CompanyProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	EditableCompanyInfo
	LogoURL   string    `json:"logo_url"`
	Jobs      []Job     `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"jobs,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyDetail is a public company page: the profile and every job it posted, always as a list.
type CompanyDetail struct {
	CompanyProfile
	Jobs []Job `json:"jobs"`
}

// ToCompanyDetail moves the preloaded jobs out of the profile and points each of them back at it.
func (p CompanyProfile) ToCompanyDetail() CompanyDetail {
	jobs := p.Jobs
	if jobs == nil {
		jobs = []Job{}
	}
	p.Jobs = nil
	for i := range jobs {
		jobs[i].Company = p
	}
	return CompanyDetail{CompanyProfile: p, Jobs: jobs}
}
