package model

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusWishlist  ApplicationStatus = "Wishlist"
	StatusApplied   ApplicationStatus = "Applied"
	StatusInterview ApplicationStatus = "Interview"
	StatusOffer     ApplicationStatus = "Offer"
	StatusRejected  ApplicationStatus = "Rejected"
)

var ApplicationStatuses = []ApplicationStatus{
	StatusWishlist,
	StatusApplied,
	StatusInterview,
	StatusOffer,
	StatusRejected,
}

func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Application struct {
	ID             uuid.UUID         `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobDescription string            `gorm:"type:text" json:"job_description"`
	CvContent      string            `gorm:"type:text" json:"cv_content"`
	CoverLetter    string            `gorm:"type:text" json:"cover_letter"`
	JobURL         string            `gorm:"type:text" json:"job_url"`
	JobTitle       string            `gorm:"type:text" json:"job_title"`
	Status         ApplicationStatus `gorm:"type:varchar(20);default:'Wishlist'" json:"status"`
	UserID         uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	CreatedAt      time.Time         `json:"created_at"`
}

func (Application) TableName() string {
	return "applications"
}
