package repository

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/infrastructure/database/models"
)

// MembershipRepository resolves foundation staff memberships. Single-user
// lookups sit on the hot authorization path and are cached in-process.
type MembershipRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{
		db:    db,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
}

func (r *MembershipRepository) ForUser(ctx context.Context, userID string) (domain.Membership, error) {
	if hit, ok := r.cache.Get(userID); ok {
		return hit.(domain.Membership), nil
	}

	var m models.Membership
	err := r.db.WithContext(ctx).First(&m, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Membership{}, domain.NotFoundError{Resource: "membership"}
		}
		return domain.Membership{}, err
	}

	membership := membershipFromModel(m)
	r.cache.Set(userID, membership, cache.DefaultExpiration)
	return membership, nil
}

func (r *MembershipRepository) Members(ctx context.Context, foundationID int64) ([]domain.Membership, error) {
	var ms []models.Membership
	err := r.db.WithContext(ctx).Where("foundation_id = ?", foundationID).Find(&ms).Error
	if err != nil {
		return nil, err
	}

	memberships := make([]domain.Membership, 0, len(ms))
	for _, m := range ms {
		memberships = append(memberships, membershipFromModel(m))
	}
	return memberships, nil
}

func membershipFromModel(m models.Membership) domain.Membership {
	return domain.Membership{
		UserID:       m.UserID,
		FoundationID: m.FoundationID,
		Role:         domain.MemberRole(m.Role),
	}
}
