package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

// Notifier persists in-app notifications and pushes them to connected
// sockets via Redis pub/sub. The socket push is best effort; the stored
// row is the source of truth.
type Notifier struct {
	notifRepo *repository.NotificationRepo
	pubsub    *redis.Client
}

func NewNotifier(notifRepo *repository.NotificationRepo, pubsub *redis.Client) *Notifier {
	return &Notifier{notifRepo: notifRepo, pubsub: pubsub}
}

func (n *Notifier) Send(ctx context.Context, userID uuid.UUID, category, title, message, link string) error {
	notification := &models.Notification{
		UserID:   userID,
		Category: category,
		Title:    title,
		Message:  message,
		Link:     link,
	}

	if err := n.notifRepo.Create(ctx, notification); err != nil {
		return err
	}

	n.Push(ctx, userID, models.WSMessage{Type: "notification", Payload: notification})
	return nil
}

// ListRecent returns the newest 20 notifications with rendered ages and
// the unread count over that page.
func (n *Notifier) ListRecent(ctx context.Context, userID uuid.UUID) (*models.NotificationPage, error) {
	notifications, err := n.notifRepo.ListRecent(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	unread := 0
	for i := range notifications {
		notifications[i].TimeAgo = models.TimeAgo(notifications[i].CreatedAt, now)
		if !notifications[i].IsRead {
			unread++
		}
	}

	return &models.NotificationPage{Notifications: notifications, UnreadCount: unread}, nil
}

func (n *Notifier) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	ok, err := n.notifRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Message: "Notification not found"}
	}
	return nil
}

func (n *Notifier) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return n.notifRepo.MarkAllRead(ctx, userID)
}

// Push publishes a socket message to the user's channel.
func (n *Notifier) Push(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("notifier: failed to marshal push for user %s: %v", userID, err)
		return
	}

	channel := "user_updates:" + userID.String()
	if err := n.pubsub.Publish(ctx, channel, payload).Err(); err != nil {
		log.Printf("notifier: failed to publish to %s: %v", channel, err)
	}
}
