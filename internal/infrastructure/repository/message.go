package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/infrastructure/database/models"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) LatestFromSide(ctx context.Context, requestID int64, side domain.ActorSide) (domain.Message, error) {
	var m models.Message
	err := r.db.WithContext(ctx).
		Where("request_id = ? AND sender_side = ?", requestID, string(side)).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, domain.NotFoundError{Resource: "message"}
		}
		return domain.Message{}, err
	}

	return domain.Message{
		ID:           m.ID,
		RequestID:    m.RequestID,
		SenderUserID: m.SenderUserID,
		SenderSide:   domain.ActorSide(m.SenderSide),
		Text:         m.Text,
		FileURLs:     m.FileURLs,
		CreatedAt:    m.CreatedAt,
	}, nil
}
