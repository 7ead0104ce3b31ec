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

// ActivityQueueKey is the Redis list the worker pool consumes.
const ActivityQueueKey = "activity_events"

// ActivityPublisher pushes feed events onto the Redis queue. Publishing is
// best effort: a full or unreachable queue never fails the request that
// produced the event.
type ActivityPublisher struct {
	queue *redis.Client
}

func NewActivityPublisher(queue *redis.Client) *ActivityPublisher {
	return &ActivityPublisher{queue: queue}
}

func (p *ActivityPublisher) Publish(ctx context.Context, eventType string, userID uuid.UUID, description, link string) {
	event := models.ActivityEvent{
		Type:        eventType,
		UserID:      userID,
		Description: description,
		Link:        link,
		OccurredAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("activity: failed to marshal event %s: %v", eventType, err)
		return
	}

	if err := p.queue.RPush(ctx, ActivityQueueKey, payload).Err(); err != nil {
		log.Printf("activity: failed to enqueue event %s for user %s: %v", eventType, userID, err)
	}
}

// FeedService reads the recorded activity back out for the feed endpoints,
// with rendered ages.
type FeedService struct {
	activityRepo *repository.ActivityRepo
}

func NewFeedService(activityRepo *repository.ActivityRepo) *FeedService {
	return &FeedService{activityRepo: activityRepo}
}

func (s *FeedService) Feed(ctx context.Context, limit, offset int) ([]models.UserActivity, error) {
	activities, err := s.activityRepo.Feed(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	stampAges(activities)
	return activities, nil
}

func (s *FeedService) FeedForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserActivity, error) {
	activities, err := s.activityRepo.FeedForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	stampAges(activities)
	return activities, nil
}

func stampAges(activities []models.UserActivity) {
	now := time.Now().UTC()
	for i := range activities {
		activities[i].TimeAgo = models.TimeAgo(activities[i].CreatedAt, now)
	}
}
