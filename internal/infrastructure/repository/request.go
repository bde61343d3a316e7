package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/infrastructure/database/models"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

func (r *RequestRepository) Get(ctx context.Context, id int64) (domain.AdoptionRequest, error) {
	var m models.AdoptionRequest
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AdoptionRequest{}, domain.NotFoundError{Resource: "adoption request"}
		}
		return domain.AdoptionRequest{}, err
	}
	return requestFromModel(m), nil
}

func (r *RequestRepository) GetDetail(ctx context.Context, id int64) (domain.RequestDetail, error) {
	var m models.AdoptionRequest
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RequestDetail{}, domain.NotFoundError{Resource: "adoption request"}
		}
		return domain.RequestDetail{}, err
	}

	detail := domain.RequestDetail{
		Request: requestFromModel(m),
		Animal: domain.AnimalSnapshot{
			Name:    m.AnimalName,
			Species: m.AnimalSpecies,
			Breed:   m.AnimalBreed,
		},
	}

	var profile models.AdopterProfile
	err = r.db.WithContext(ctx).First(&profile, "user_id = ?", m.AdopterUserID).Error
	if err == nil {
		detail.Adopter = domain.AdopterProfile{
			Email:       profile.Email,
			Phone:       profile.Phone,
			HousingType: profile.HousingType,
			HasYard:     profile.HasYard,
			OtherPets:   profile.OtherPets,
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RequestDetail{}, err
	}

	var docs []models.AdoptionRequestDocument
	err = r.db.WithContext(ctx).
		Where("request_id = ?", id).
		Order("created_at ASC").
		Find(&docs).Error
	if err != nil {
		return domain.RequestDetail{}, err
	}
	for _, d := range docs {
		detail.Documents = append(detail.Documents, documentFromModel(d))
	}

	return detail, nil
}

// Transition applies the status change as a compare-and-swap against the
// observed status. When no row matches, the loser of a concurrent write
// gets InvalidStatusError carrying the status that actually won.
func (r *RequestRepository) Transition(ctx context.Context, id int64, from, to domain.Status, rejectionReason *string) error {
	return r.transitionTx(r.db.WithContext(ctx), ctx, id, from, to, rejectionReason)
}

func (r *RequestRepository) transitionTx(tx *gorm.DB, ctx context.Context, id int64, from, to domain.Status, rejectionReason *string) error {
	values := map[string]any{"status": string(to)}
	if to == domain.StatusRejected {
		values["rejection_reason"] = rejectionReason
	}

	res := tx.Model(&models.AdoptionRequest{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current models.AdoptionRequest
		err := r.db.WithContext(ctx).Select("status").First(&current, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "adoption request"}
			}
			return err
		}
		return domain.InvalidStatusError{Current: domain.Status(current.Status)}
	}
	return nil
}

// MarkInfoRequested commits the foundation prompt, the transition into
// info_requested and the adopter email-queue row in one transaction, so the
// request can never sit in info_requested without a durable channel to the
// adopter.
func (r *RequestRepository) MarkInfoRequested(ctx context.Context, id int64, from domain.Status, msg domain.Message, email domain.EmailQueueEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(messageToModel(msg)).Error; err != nil {
			return err
		}
		if err := r.transitionTx(tx, ctx, id, from, domain.StatusInfoRequested, nil); err != nil {
			return err
		}

		payload, err := json.Marshal(email.Payload)
		if err != nil {
			return err
		}
		return tx.Create(&models.EmailQueue{
			ID:       uuid.NewString(),
			UserID:   email.UserID,
			ToEmail:  email.ToEmail,
			Template: email.Template,
			Payload:  string(payload),
		}).Error
	})
}

// CommitResponse commits the adopter message, its response documents and
// the info_requested -> in_review transition in one transaction.
func (r *RequestRepository) CommitResponse(ctx context.Context, id int64, msg domain.Message, docs []domain.Document) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(messageToModel(msg)).Error; err != nil {
			return err
		}
		for _, d := range docs {
			if err := tx.Create(&models.AdoptionRequestDocument{
				ID:          d.ID,
				RequestID:   d.RequestID,
				DocType:     string(d.Type),
				StoragePath: d.StoragePath,
				Notes:       d.Notes,
			}).Error; err != nil {
				return err
			}
		}
		return r.transitionTx(tx, ctx, id, domain.StatusInfoRequested, domain.StatusInReview, nil)
	})
}

func requestFromModel(m models.AdoptionRequest) domain.AdoptionRequest {
	return domain.AdoptionRequest{
		ID:              m.ID,
		AnimalID:        m.AnimalID,
		FoundationID:    m.FoundationID,
		AdopterUserID:   m.AdopterUserID,
		Status:          domain.Status(m.Status),
		Priority:        domain.Priority(m.Priority),
		RejectionReason: m.RejectionReason,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func documentFromModel(m models.AdoptionRequestDocument) domain.Document {
	return domain.Document{
		ID:          m.ID,
		RequestID:   m.RequestID,
		Type:        domain.DocType(m.DocType),
		StoragePath: m.StoragePath,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
	}
}

func messageToModel(msg domain.Message) *models.Message {
	return &models.Message{
		ID:           msg.ID,
		RequestID:    msg.RequestID,
		SenderUserID: msg.SenderUserID,
		SenderSide:   string(msg.SenderSide),
		Text:         msg.Text,
		FileURLs:     msg.FileURLs,
	}
}
