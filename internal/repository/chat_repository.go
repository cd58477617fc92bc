package repository

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/fadilmartias/cover-letter-generator/internal/common"
	"github.com/fadilmartias/cover-letter-generator/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db}
}

// Append stores messages in order in a single insert. Messages without a
// timestamp are stamped a microsecond apart so created_at keeps their order.
func (r *ChatRepository) Append(ctx context.Context, messages ...*model.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	now := time.Now()
	for i, m := range messages {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		}
	}
	return r.db.WithContext(ctx).Create(&messages).Error
}

// Latest returns the newest message of a user.
func (r *ChatRepository) Latest(ctx context.Context, userID uuid.UUID) (*model.ChatMessage, error) {
	var msg model.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Take(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns up to limit of the user's most recent messages in
// chronological order.
func (r *ChatRepository) History(ctx context.Context, userID uuid.UUID, limit int) ([]model.ChatMessage, error) {
	messages := []model.ChatMessage{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	slices.Reverse(messages)
	return messages, nil
}
