package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DocumentResume marks a stored resume.
	DocumentResume = "resume"
	// DocumentCoverLetter marks a stored cover letter.
	DocumentCoverLetter = "cover-letter"
)

// UserDocument records a resume or cover letter the user uploaded, so it can be reused later.
type UserDocument struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	FileType   string    `gorm:"type:text;not null;index" json:"file_type"`
	FilePath   string    `gorm:"not null" json:"file_path"`
	URL        string    `gorm:"-" json:"url,omitempty"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// IsValidDocumentType reports whether t names a document kind.
func IsValidDocumentType(t string) bool {
	return t == DocumentResume || t == DocumentCoverLetter
}
