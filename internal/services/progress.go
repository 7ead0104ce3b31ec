package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type ProgressService struct {
	sessionRepo *repository.SessionRepo
	userRepo    *repository.UserRepo
	courseRepo  *repository.CourseRepo
	goals       *GoalService
	activity    *ActivityPublisher
}

func NewProgressService(sessionRepo *repository.SessionRepo, userRepo *repository.UserRepo, courseRepo *repository.CourseRepo, goals *GoalService, activity *ActivityPublisher) *ProgressService {
	return &ProgressService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		courseRepo:  courseRepo,
		goals:       goals,
		activity:    activity,
	}
}

// nextStreak decides the streak after a session closes on today. A streak
// survives only when the last study day was yesterday; studying twice in
// one day changes nothing; any other gap restarts at 1.
func nextStreak(current int, lastStudy *time.Time, today time.Time) int {
	if lastStudy == nil {
		return 1
	}

	last := dateOnly(*lastStudy)
	day := dateOnly(today)

	switch {
	case last.Equal(day):
		return current
	case last.Equal(day.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *ProgressService) StartSession(ctx context.Context, userID uuid.UUID, courseID *uuid.UUID, notes string) (*models.StudySession, error) {
	if courseID != nil {
		if _, err := s.courseRepo.GetByID(ctx, *courseID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Message: "Course not found"}
			}
			return nil, err
		}
	}

	session := &models.StudySession{
		UserID:   userID,
		CourseID: courseID,
		Notes:    notes,
	}

	err := s.sessionRepo.Start(ctx, session)
	if errors.Is(err, repository.ErrActiveSessionExists) {
		return nil, &ConflictError{Message: "You already have an active study session"}
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// StopSession closes the active session and folds its duration into the
// profile's total hours and streak in one transaction. The feed event and
// badge pass happen asynchronously via the worker.
func (s *ProgressService) StopSession(ctx context.Context, sessionID, userID uuid.UUID, notes string) (*models.StudySession, error) {
	session, err := s.sessionRepo.Close(ctx, sessionID, userID, notes, func(p *models.Profile, closed *models.StudySession) {
		now := time.Now().UTC()
		p.StudyStreak = nextStreak(p.StudyStreak, p.LastStudyDate, now)
		p.TotalStudyHours += float64(closed.DurationMinutes) / 60.0
		day := dateOnly(now)
		p.LastStudyDate = &day
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No active session with that ID"}
		}
		return nil, err
	}

	s.activity.Publish(ctx, models.ActivitySessionCompleted, userID,
		fmt.Sprintf("completed a %d-minute study session", session.DurationMinutes), "/study/history")

	return session, nil
}

func (s *ProgressService) ActiveSession(ctx context.Context, userID uuid.UUID) (*models.StudySession, error) {
	session, err := s.sessionRepo.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "No active session"}
		}
		return nil, err
	}
	return session, nil
}

func (s *ProgressService) History(ctx context.Context, userID uuid.UUID, f repository.HistoryFilter) ([]models.StudySession, error) {
	return s.sessionRepo.History(ctx, userID, f)
}

type Dashboard struct {
	TotalStudyHours float64               `json:"total_study_hours"`
	StudyStreak     int                   `json:"study_streak"`
	LastStudyDate   *time.Time            `json:"last_study_date"`
	TodayMinutes    int                   `json:"today_minutes"`
	WeekMinutes     int                   `json:"week_minutes"`
	Goals           []GoalWithProgress    `json:"goals"`
	ActiveSession   *models.StudySession  `json:"active_session,omitempty"`
	RecentSessions  []models.StudySession `json:"recent_sessions"`
}

func (s *ProgressService) GetDashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	todayMinutes, err := s.sessionRepo.SumMinutes(ctx, userID, periodStart(models.GoalDaily, now))
	if err != nil {
		return nil, err
	}
	weekMinutes, err := s.sessionRepo.SumMinutes(ctx, userID, periodStart(models.GoalWeekly, now))
	if err != nil {
		return nil, err
	}

	goals, err := s.goals.ListWithProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.sessionRepo.History(ctx, userID, repository.HistoryFilter{Limit: 5})
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		TotalStudyHours: profile.TotalStudyHours,
		StudyStreak:     profile.StudyStreak,
		LastStudyDate:   profile.LastStudyDate,
		TodayMinutes:    todayMinutes,
		WeekMinutes:     weekMinutes,
		Goals:           goals,
		RecentSessions:  recent,
	}

	if active, activeErr := s.sessionRepo.GetActive(ctx, userID); activeErr == nil {
		dashboard.ActiveSession = active
	}

	return dashboard, nil
}

type Analytics struct {
	DailyTotals  []repository.DailyTotal   `json:"daily_totals"`
	CourseTotals []repository.CourseTotal  `json:"course_totals"`
	TimeOfDay    repository.TimeOfDaySplit `json:"time_of_day"`
	TotalMinutes int                       `json:"total_minutes"`
}

func (s *ProgressService) GetAnalytics(ctx context.Context, userID uuid.UUID, days int) (*Analytics, error) {
	if days <= 0 || days > 365 {
		days = 30
	}

	since := dateOnly(time.Now().UTC()).AddDate(0, 0, -days+1)

	daily, err := s.sessionRepo.DailyTotals(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	byCourse, err := s.sessionRepo.CourseTotals(ctx, userID)
	if err != nil {
		return nil, err
	}

	split, err := s.sessionRepo.TimeOfDayTotals(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	analytics := &Analytics{DailyTotals: daily, CourseTotals: byCourse, TimeOfDay: split}
	for _, day := range daily {
		analytics.TotalMinutes += day.Minutes
	}
	return analytics, nil
}
