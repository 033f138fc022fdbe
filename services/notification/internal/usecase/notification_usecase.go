package usecase

import (
	"context"
	"fmt"
	"time"

	"finsight/pkg/logger"
	"finsight/pkg/queue"
	"finsight/services/notification/internal/entity"
	"finsight/services/notification/internal/repo/feed"
)

type NotificationUseCase interface {
	HandlePostEvent(ctx context.Context, event queue.PostEvent) error
	GetNotifications(ctx context.Context, limit, offset int) ([]entity.Notification, int64, error)
}

type notificationUseCase struct {
	feed   feed.NotificationFeed
	logger *logger.Logger
}

func NewNotificationUseCase(notificationFeed feed.NotificationFeed, logger *logger.Logger) NotificationUseCase {
	return &notificationUseCase{
		feed:   notificationFeed,
		logger: logger,
	}
}

// HandlePostEvent records the event in the activity feed. Unknown event
// types are logged and acknowledged so they never block the queue.
func (uc *notificationUseCase) HandlePostEvent(ctx context.Context, event queue.PostEvent) error {
	message, err := describe(event)
	if err != nil {
		uc.logger.Warn("Ignoring %s for slug=%s: %v", event.Type, event.Slug, err)
		return nil
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	n := &entity.Notification{
		Type:       string(event.Type),
		Slug:       event.Slug,
		Title:      event.Title,
		AuthorID:   event.AuthorID,
		Message:    message,
		OccurredAt: occurredAt,
	}
	if err := uc.feed.Push(ctx, n); err != nil {
		return err
	}

	uc.logger.Info("Recorded %s for slug=%s", event.Type, event.Slug)
	return nil
}

func describe(event queue.PostEvent) (string, error) {
	name := event.Title
	if name == "" {
		name = event.Slug
	}
	switch event.Type {
	case queue.PostCreated:
		return fmt.Sprintf("New post published: %s", name), nil
	case queue.PostUpdated:
		return fmt.Sprintf("Post updated: %s", name), nil
	case queue.PostDeleted:
		return fmt.Sprintf("Post deleted: %s", name), nil
	default:
		return "", entity.ErrUnknownEventType
	}
}

func (uc *notificationUseCase) GetNotifications(ctx context.Context, limit, offset int) ([]entity.Notification, int64, error) {
	return uc.feed.List(ctx, limit, offset)
}
