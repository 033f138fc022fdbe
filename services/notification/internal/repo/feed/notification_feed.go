package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"finsight/services/notification/internal/entity"

	"github.com/redis/go-redis/v9"
)

const recentKey = "notifications:recent"

// MaxEntries bounds the feed; older notifications fall off the end.
const MaxEntries = 200

type NotificationFeed interface {
	Push(ctx context.Context, n *entity.Notification) error
	List(ctx context.Context, limit, offset int) ([]entity.Notification, int64, error)
}

type notificationFeed struct {
	client *redis.Client
}

func NewNotificationFeed(client *redis.Client) NotificationFeed {
	return &notificationFeed{client: client}
}

// Push prepends n so List returns newest first.
func (f *notificationFeed) Push(ctx context.Context, n *entity.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, recentKey, data)
	pipe.LTrim(ctx, recentKey, 0, MaxEntries-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (f *notificationFeed) List(ctx context.Context, limit, offset int) ([]entity.Notification, int64, error) {
	raw, err := f.client.LRange(ctx, recentKey, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read notifications: %w", err)
	}

	notifications := make([]entity.Notification, 0, len(raw))
	for _, item := range raw {
		var n entity.Notification
		if err := json.Unmarshal([]byte(item), &n); err == nil {
			notifications = append(notifications, n)
		}
	}

	total, err := f.client.LLen(ctx, recentKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return notifications, total, nil
}
