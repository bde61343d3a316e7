package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shelterhub/adoptd/internal/domain"
)

// SignalService bridges committed notifications to connected realtime
// clients over redis pub/sub. One channel per recipient.
type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func channelFor(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

func (s *SignalService) Publish(ctx context.Context, n domain.Notification) error {
	jsonstr, err := json.Marshal(n)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channelFor(n.UserID), jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Listen streams the user's notifications into out until ctx is done.
func (s *SignalService) Listen(ctx context.Context, userID string, out chan<- domain.Notification) error {
	pubsub := s.rdb.Subscribe(ctx, channelFor(userID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var n domain.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				continue
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
