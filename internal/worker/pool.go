package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
	"eduhelm-backend/internal/services"
)

// Pool drains the activity event queue: every event becomes a row in the
// activity feed, and session completions additionally trigger a badge
// eligibility pass for the user.
type Pool struct {
	redis        *redis.Client
	activityRepo *repository.ActivityRepo
	badges       *services.BadgeService
	workerCount  int
	stopChan     chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	activityRepo *repository.ActivityRepo,
	badges *services.BadgeService,
	workerCount int,
) *Pool {
	return &Pool{
		redis:        redisClient,
		activityRepo: activityRepo,
		badges:       badges,
		workerCount:  workerCount,
		stopChan:     make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.ActivityQueueKey).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var event models.ActivityEvent
		if err := json.Unmarshal([]byte(result[1]), &event); err != nil {
			log.Printf("Worker %d: failed to parse activity event: %v", id, err)
			continue
		}

		if err := p.process(ctx, id, &event); err != nil {
			log.Printf("Worker %d: failed to process %s event for user %s: %v", id, event.Type, event.UserID, err)
		}
	}
}

func (p *Pool) process(ctx context.Context, id int, event *models.ActivityEvent) error {
	activity := &models.UserActivity{
		UserID:       event.UserID,
		ActivityType: event.Type,
		Description:  event.Description,
		Link:         event.Link,
		CreatedAt:    event.OccurredAt,
	}

	if err := p.activityRepo.Create(ctx, activity); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	// Badge rules depend on aggregate stats, so one pass per completed
	// session is enough. Short lock keeps concurrent workers from running
	// duplicate passes for the same user.
	if event.Type == models.ActivitySessionCompleted {
		lockKey := "badge_check_lock:" + event.UserID.String()
		locked, err := p.redis.SetNX(ctx, lockKey, "1", time.Minute).Result()
		if err != nil || !locked {
			return nil
		}
		defer p.redis.Del(ctx, lockKey)

		newlyEarned, err := p.badges.CheckEligibility(ctx, event.UserID)
		if err != nil {
			return fmt.Errorf("badge eligibility pass failed: %w", err)
		}

		if len(newlyEarned) > 0 {
			log.Printf("Worker %d: awarded %d badge(s) to user %s", id, len(newlyEarned), event.UserID)
		}
	}

	return nil
}
