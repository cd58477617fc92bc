package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// ApplicationEmbedding holds the job description vector of an application,
// kept apart from the applications table.
type ApplicationEmbedding struct {
	ApplicationID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"application_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	Embedding     pgvector.Vector `gorm:"type:vector(3072)" json:"-"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (ApplicationEmbedding) TableName() string {
	return "application_embeddings"
}
