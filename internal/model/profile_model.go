package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile id is the user id.
type Profile struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ResumeContent  *string    `gorm:"type:text" json:"resume_content"`
	ResumeFileName *string    `gorm:"type:text" json:"resume_file_name"`
	ResumeFileURL  *string    `gorm:"type:text" json:"resume_file_url"`
	UploadDate     *time.Time `json:"upload_date"`
	FileSize       *int64     `json:"file_size"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) HasResume() bool {
	return p != nil && p.ResumeFileName != nil && *p.ResumeFileName != ""
}
