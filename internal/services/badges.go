package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type BadgeService struct {
	badgeRepo *repository.BadgeRepo
	notifier  *Notifier
	activity  *ActivityPublisher
}

func NewBadgeService(badgeRepo *repository.BadgeRepo, notifier *Notifier, activity *ActivityPublisher) *BadgeService {
	return &BadgeService{
		badgeRepo: badgeRepo,
		notifier:  notifier,
		activity:  activity,
	}
}

// badgeSatisfied evaluates a catalog rule against the user's statistics.
// Unknown rule kinds never match.
func badgeSatisfied(b models.Badge, stats *repository.UserStats) bool {
	switch b.RuleKind {
	case models.RuleTotalHours:
		return stats.TotalStudyHours >= float64(b.Requirement)
	case models.RuleStreakDays:
		return stats.StudyStreak >= b.Requirement
	case models.RuleGroupCount:
		return stats.GroupCount >= b.Requirement
	case models.RuleDiscussionCount:
		return stats.DiscussionCount >= b.Requirement
	case models.RuleReviewCount:
		return stats.ReviewCount >= b.Requirement
	case models.RuleNoteCount:
		return stats.NoteCount >= b.Requirement
	case models.RuleResourceCount:
		return stats.ResourceCount >= b.Requirement
	case models.RuleLessonsCompleted:
		return stats.LessonsCompleted >= b.Requirement
	case models.RuleBadgeCount:
		return stats.BadgeCount >= b.Requirement
	default:
		return false
	}
}

func (s *BadgeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.BadgeStatus, error) {
	return s.badgeRepo.ListWithStatus(ctx, userID)
}

// UserStats exposes the aggregate counters behind the badge rules; the
// profile page shows the same numbers.
func (s *BadgeService) UserStats(ctx context.Context, userID uuid.UUID) (*repository.UserStats, error) {
	return s.badgeRepo.GetUserStats(ctx, userID)
}

// CheckEligibility runs one pass over the catalog, easiest requirement
// first, and awards everything the user now qualifies for. Badges awarded
// earlier in the pass count toward badge_count rules in the same pass.
// The whole operation is idempotent: re-running awards nothing new.
func (s *BadgeService) CheckEligibility(ctx context.Context, userID uuid.UUID) ([]models.Badge, error) {
	stats, err := s.badgeRepo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	catalog, err := s.badgeRepo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}

	earned, err := s.badgeRepo.EarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	newlyEarned := make([]models.Badge, 0)
	for _, badge := range catalog {
		if earned[badge.ID] {
			continue
		}
		if !badgeSatisfied(badge, stats) {
			continue
		}

		awarded, awardErr := s.badgeRepo.Award(ctx, userID, badge.ID)
		if awardErr != nil {
			return newlyEarned, awardErr
		}
		if !awarded {
			continue
		}

		stats.BadgeCount++
		newlyEarned = append(newlyEarned, badge)

		// The award stands even when the notification fails.
		if notifyErr := s.notifier.Send(ctx, userID, models.NotifyBadge,
			"Badge earned: "+badge.Name, badge.Description, "/badges"); notifyErr != nil {
			log.Printf("badges: failed to notify user %s about %s: %v", userID, badge.Name, notifyErr)
		}

		s.activity.Publish(ctx, models.ActivityBadgeEarned, userID,
			"earned the \""+badge.Name+"\" badge", "/badges")
	}

	return newlyEarned, nil
}
