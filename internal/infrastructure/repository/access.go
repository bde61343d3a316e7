package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/infrastructure/database/models"
)

const accessInfoTTL = 10 * time.Minute

// AccessRepository serves the {requestId, foundationId, adopterUserId}
// projection used by the access resolver. All three fields are immutable
// after creation, so the projection is cached in redis without
// invalidation concerns.
type AccessRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewAccessRepository(db *gorm.DB, rdb *redis.Client) *AccessRepository {
	return &AccessRepository{db: db, rdb: rdb}
}

func accessKey(requestID int64) string {
	return fmt.Sprintf("adoptd:access:%d", requestID)
}

func (r *AccessRepository) AccessInfo(ctx context.Context, requestID int64) (domain.AccessInfo, error) {
	key := accessKey(requestID)

	if r.rdb != nil {
		cached, err := r.rdb.Get(ctx, key).Result()
		if err == nil {
			var info domain.AccessInfo
			if err := json.Unmarshal([]byte(cached), &info); err == nil {
				return info, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			slog.DebugContext(ctx, "access cache read failed",
				slog.Int64("request_id", requestID),
				slog.String("error", err.Error()),
			)
		}
	}

	var m models.AdoptionRequest
	err := r.db.WithContext(ctx).
		Select("id", "foundation_id", "adopter_user_id").
		First(&m, "id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AccessInfo{}, domain.NotFoundError{Resource: "adoption request"}
		}
		return domain.AccessInfo{}, err
	}

	info := domain.AccessInfo{
		RequestID:     m.ID,
		FoundationID:  m.FoundationID,
		AdopterUserID: m.AdopterUserID,
	}

	if r.rdb != nil {
		if raw, err := json.Marshal(info); err == nil {
			if err := r.rdb.Set(ctx, key, raw, accessInfoTTL).Err(); err != nil {
				slog.DebugContext(ctx, "access cache write failed",
					slog.Int64("request_id", requestID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	return info, nil
}
