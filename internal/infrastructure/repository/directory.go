package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"

	"github.com/shelterhub/adoptd/internal/domain"
	"github.com/shelterhub/adoptd/internal/infrastructure/database/models"
)

const directoryCacheTTL = 15 * time.Minute

// AdopterDirectory resolves a user's account email, used when the profile
// snapshot carries none. Lookups are cached in memcached.
type AdopterDirectory struct {
	db *gorm.DB
	mc *memcache.Client
}

func NewAdopterDirectory(db *gorm.DB, mc *memcache.Client) *AdopterDirectory {
	return &AdopterDirectory{db: db, mc: mc}
}

func directoryKey(userID string) string {
	return "adoptd:email:" + userID
}

func (d *AdopterDirectory) Email(ctx context.Context, userID string) (string, error) {
	key := directoryKey(userID)

	if d.mc != nil {
		item, err := d.mc.Get(key)
		if err == nil {
			return string(item.Value), nil
		}
		if !errors.Is(err, memcache.ErrCacheMiss) {
			slog.DebugContext(ctx, "directory cache read failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	var u models.User
	err := d.db.WithContext(ctx).First(&u, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.NotFoundError{Resource: "user"}
		}
		return "", err
	}
	if u.Email == nil || *u.Email == "" {
		return "", domain.NotFoundError{Resource: "user email"}
	}

	if d.mc != nil {
		if err := d.mc.Set(&memcache.Item{
			Key:        key,
			Value:      []byte(*u.Email),
			Expiration: int32(directoryCacheTTL.Seconds()),
		}); err != nil {
			slog.DebugContext(ctx, "directory cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return *u.Email, nil
}
