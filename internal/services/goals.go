package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type GoalService struct {
	goalRepo    *repository.GoalRepo
	sessionRepo *repository.SessionRepo
	activity    *ActivityPublisher
}

func NewGoalService(goalRepo *repository.GoalRepo, sessionRepo *repository.SessionRepo, activity *ActivityPublisher) *GoalService {
	return &GoalService{
		goalRepo:    goalRepo,
		sessionRepo: sessionRepo,
		activity:    activity,
	}
}

// periodStart returns the beginning of the window a goal counts over:
// midnight today for daily, the most recent Monday for weekly, the first
// of the month for monthly.
func periodStart(goalType string, now time.Time) time.Time {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	switch goalType {
	case models.GoalWeekly:
		return midnight.AddDate(0, 0, -int((midnight.Weekday()+6)%7))
	case models.GoalMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	default:
		return midnight
	}
}

// progressOf computes completion against a target. Percentage is integer
// truncated and capped at 100; a zero target reads as 0%.
func progressOf(totalMinutes, targetMinutes int) models.GoalProgress {
	pct := 0
	if targetMinutes > 0 {
		pct = totalMinutes * 100 / targetMinutes
		if pct > 100 {
			pct = 100
		}
	}

	remaining := targetMinutes - totalMinutes
	if remaining < 0 {
		remaining = 0
	}

	return models.GoalProgress{
		TotalMinutes:     totalMinutes,
		TargetMinutes:    targetMinutes,
		Percentage:       pct,
		RemainingMinutes: remaining,
	}
}

func validGoalType(goalType string) bool {
	switch goalType {
	case models.GoalDaily, models.GoalWeekly, models.GoalMonthly:
		return true
	}
	return false
}

// SetGoal replaces the caller's active goal of the given type.
func (s *GoalService) SetGoal(ctx context.Context, userID uuid.UUID, goalType string, targetMinutes int) (*models.StudyGoal, error) {
	fieldErrors := make(map[string]string)
	if !validGoalType(goalType) {
		fieldErrors["goal_type"] = "Goal type must be daily, weekly or monthly"
	}
	if targetMinutes <= 0 {
		fieldErrors["target_minutes"] = "Target must be a positive number of minutes"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	goal := &models.StudyGoal{
		UserID:        userID,
		GoalType:      goalType,
		TargetMinutes: targetMinutes,
	}
	if err := s.goalRepo.Replace(ctx, goal); err != nil {
		return nil, err
	}

	s.activity.Publish(ctx, models.ActivityGoalCreated, userID,
		"set a new "+goalType+" study goal", "/goals")

	return goal, nil
}

type GoalWithProgress struct {
	models.StudyGoal
	Progress models.GoalProgress `json:"progress"`
}

func (s *GoalService) ListWithProgress(ctx context.Context, userID uuid.UUID) ([]GoalWithProgress, error) {
	goals, err := s.goalRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	result := make([]GoalWithProgress, 0, len(goals))
	for _, goal := range goals {
		total, sumErr := s.sessionRepo.SumMinutes(ctx, userID, periodStart(goal.GoalType, now))
		if sumErr != nil {
			return nil, sumErr
		}
		result = append(result, GoalWithProgress{
			StudyGoal: goal,
			Progress:  progressOf(total, goal.TargetMinutes),
		})
	}
	return result, nil
}

func (s *GoalService) RemoveGoal(ctx context.Context, goalID, userID uuid.UUID) error {
	ok, err := s.goalRepo.Deactivate(ctx, goalID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Message: "Goal not found"}
	}
	return nil
}
