package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/infrastructure/database/models"
)

// NotificationRepository persists in-app notification rows. Delivery to
// the user happens through the realtime stream or the next poll; this
// repository only writes the durable row.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Insert(ctx context.Context, n domain.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(&models.Notification{
		ID:          n.ID,
		UserID:      n.UserID,
		ActorUserID: n.ActorUserID,
		Title:       n.Title,
		Body:        n.Body,
		Type:        n.Type,
		Data:        string(data),
	}).Error
}

// EmailQueueRepository writes durable email-queue rows consumed by the
// external delivery worker.
type EmailQueueRepository struct {
	db *gorm.DB
}

func NewEmailQueueRepository(db *gorm.DB) *EmailQueueRepository {
	return &EmailQueueRepository{db: db}
}

func (r *EmailQueueRepository) Enqueue(ctx context.Context, e domain.EmailQueueEntry) error {
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(&models.EmailQueue{
		ID:       uuid.NewString(),
		UserID:   e.UserID,
		ToEmail:  e.ToEmail,
		Template: e.Template,
		Payload:  string(payload),
	}).Error
}
