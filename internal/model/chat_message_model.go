package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
	RoleSystem    ChatRole = "system"
)

// ChatMessage is an append-only log row. Both context fields are stored on every
// row so the latest one is enough to restore a conversation's context.
type ChatMessage struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Role       ChatRole   `gorm:"type:varchar(20);not null" json:"role"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	CvContent  *string    `gorm:"type:text" json:"cv_content,omitempty"`
	JobContent *string    `gorm:"type:text" json:"job_content,omitempty"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
