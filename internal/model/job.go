package model

import (
	"time"

	"github.com/google/uuid"
)

// JobTypes lists the job types offered by the posting form.
var JobTypes = []string{"Full-time", "Part-time", "Contract", "Internship", "Remote", "Temporary"}

// EditableJobInfo holds the job fields a company writes. Description is markdown and stored as is.
type EditableJobInfo struct {
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	SalaryRange *string  `json:"salary_range"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	JobType     *string  `json:"job_type"`
}

// Job is a posting owned by a company profile.
type Job struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   CompanyProfile `gorm:"foreignKey:CompanyID;references:ID;constraint:OnDelete:CASCADE" json:"company"`
	PostedBy  uuid.UUID      `gorm:"type:uuid;not null;index" json:"posted_by"`
	EditableJobInfo
	Applications []Application `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
}

// JobResponse decorates a job with whether the requesting user already applied.
type JobResponse struct {
	Job
	UserApplied bool `json:"user_applied"`
}

// ToJobResponse reports UserApplied from the preloaded applications.
func (j Job) ToJobResponse(userID uuid.UUID) JobResponse {
	applied := false
	for _, a := range j.Applications {
		if a.UserID == userID {
			applied = true
			break
		}
	}
	return JobResponse{Job: j, UserApplied: applied}
}

// JobPage is one page of search results.
type JobPage struct {
	Jobs       []Job `json:"jobs"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int   `json:"total"`
	TotalPages int   `json:"total_pages"`
}
