package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

const (
	streakCheckInterval   = 1 * time.Hour
	reminderCheckInterval = 1 * time.Minute

	// Streak nudges go out in the evening, user-local time not tracked,
	// server UTC after 17:00.
	streakNudgeHourUTC = 17

	// Goal reminders fire a bit later, once the day is nearly over.
	goalReminderHourUTC = 19
)

type ScheduleService struct {
	scheduleRepo *repository.ScheduleRepo
}

func NewScheduleService(scheduleRepo *repository.ScheduleRepo) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo}
}

func (s *ScheduleService) Create(ctx context.Context, schedule *models.StudySchedule) (*models.StudySchedule, error) {
	fieldErrors := make(map[string]string)
	if schedule.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if schedule.ScheduledStart.IsZero() {
		fieldErrors["scheduled_start"] = "Start time is required"
	} else if schedule.ScheduledStart.Before(time.Now()) {
		fieldErrors["scheduled_start"] = "Start time must be in the future"
	}
	if schedule.ReminderMinutesBefore < 0 {
		fieldErrors["reminder_minutes_before"] = "Reminder offset cannot be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if schedule.ReminderMinutesBefore == 0 {
		schedule.ReminderMinutesBefore = 15
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleService) List(ctx context.Context, userID uuid.UUID) ([]models.StudySchedule, error) {
	return s.scheduleRepo.List(ctx, userID)
}

func (s *ScheduleService) Delete(ctx context.Context, scheduleID, userID uuid.UUID) error {
	ok, err := s.scheduleRepo.Delete(ctx, scheduleID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Message: "Schedule not found"}
	}
	return nil
}

// NotificationScheduler runs the background loops: streak-at-risk nudges
// and scheduled-session reminders.
type NotificationScheduler struct {
	userRepo     *repository.UserRepo
	scheduleRepo *repository.ScheduleRepo
	goalRepo     *repository.GoalRepo
	notifier     *Notifier
	email        *EmailService
	stopChan     chan struct{}
}

func NewNotificationScheduler(userRepo *repository.UserRepo, scheduleRepo *repository.ScheduleRepo, goalRepo *repository.GoalRepo, notifier *Notifier, email *EmailService) *NotificationScheduler {
	return &NotificationScheduler{
		userRepo:     userRepo,
		scheduleRepo: scheduleRepo,
		goalRepo:     goalRepo,
		notifier:     notifier,
		email:        email,
		stopChan:     make(chan struct{}),
	}
}

func (s *NotificationScheduler) Start() {
	if s.userRepo == nil || s.email == nil {
		return
	}

	go s.loop(streakCheckInterval, func(ctx context.Context, now time.Time) {
		s.sendStreakNudges(ctx, now)
	})
	go s.loop(reminderCheckInterval, func(ctx context.Context, now time.Time) {
		s.sendScheduleReminders(ctx, now)
	})
	go s.loop(streakCheckInterval, func(ctx context.Context, now time.Time) {
		s.sendGoalReminders(ctx, now)
	})

	log.Printf("Notification scheduler started")
}

func (s *NotificationScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *NotificationScheduler) loop(interval time.Duration, runFn func(ctx context.Context, now time.Time)) {
	// Run on startup as well as by interval.
	runFn(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			runFn(context.Background(), time.Now().UTC())
		}
	}
}

func (s *NotificationScheduler) sendStreakNudges(ctx context.Context, now time.Time) {
	if now.Hour() < streakNudgeHourUTC {
		return
	}

	recipients, err := s.userRepo.ListStreaksAtRisk(ctx, dateOnly(now))
	if err != nil {
		log.Printf("streak nudges: failed to list recipients: %v", err)
		return
	}

	for _, recipient := range recipients {
		// One nudge per day: skip if already notified since midnight.
		nudgeKey := "streak_nudge:" + recipient.ID.String() + ":" + dateOnly(now).Format("2006-01-02")
		set, setErr := s.notifier.pubsub.SetNX(ctx, nudgeKey, "1", 36*time.Hour).Result()
		if setErr != nil || !set {
			continue
		}

		if err := s.notifier.Send(ctx, recipient.ID, models.NotifyStreak,
			"Your streak is at risk",
			"Log a study session before midnight to keep your streak going.",
			"/study"); err != nil {
			log.Printf("streak nudges: failed to notify user %s: %v", recipient.ID, err)
		}

		if err := s.email.SendStreakReminderEmail(recipient.Email, recipient.FullName, recipient.StudyStreak); err != nil {
			log.Printf("streak nudges: failed to email %s: %v", recipient.Email, err)
		}
	}
}

// sendGoalReminders nudges users whose daily goal is still short of its
// target as the day winds down.
func (s *NotificationScheduler) sendGoalReminders(ctx context.Context, now time.Time) {
	if now.Hour() < goalReminderHourUTC {
		return
	}

	lagging, err := s.goalRepo.ListBehindTarget(ctx, models.GoalDaily, dateOnly(now))
	if err != nil {
		log.Printf("goal reminders: failed to list lagging goals: %v", err)
		return
	}

	for _, goal := range lagging {
		dedupKey := "goal_reminder:" + goal.GoalID.String() + ":" + dateOnly(now).Format("2006-01-02")
		set, setErr := s.notifier.pubsub.SetNX(ctx, dedupKey, "1", 36*time.Hour).Result()
		if setErr != nil || !set {
			continue
		}

		remaining := goal.TargetMinutes - goal.LoggedMinutes
		if err := s.notifier.Send(ctx, goal.UserID, models.NotifyGoal,
			"Daily goal check-in",
			strconv.Itoa(remaining)+" minutes to go on today's study goal.",
			"/study"); err != nil {
			log.Printf("goal reminders: failed to notify user %s: %v", goal.UserID, err)
		}
	}
}

func (s *NotificationScheduler) sendScheduleReminders(ctx context.Context, now time.Time) {
	due, err := s.scheduleRepo.ListDueReminders(ctx, now)
	if err != nil {
		log.Printf("schedule reminders: failed to list due reminders: %v", err)
		return
	}

	for _, reminder := range due {
		if err := s.notifier.Send(ctx, reminder.UserID, models.NotifySchedule,
			"Upcoming: "+reminder.Title,
			"Your scheduled study session starts at "+reminder.ScheduledStart.Format("15:04")+".",
			"/schedule"); err != nil {
			log.Printf("schedule reminders: failed to notify user %s: %v", reminder.UserID, err)
			continue
		}

		user, userErr := s.userRepo.GetByID(ctx, reminder.UserID)
		if userErr == nil {
			if emailErr := s.email.SendScheduleReminderEmail(user.Email, user.FullName, reminder.Title, reminder.ScheduledStart); emailErr != nil {
				log.Printf("schedule reminders: failed to email %s: %v", user.Email, emailErr)
			}
		} else if !errors.Is(userErr, pgx.ErrNoRows) {
			log.Printf("schedule reminders: failed to load user %s: %v", reminder.UserID, userErr)
		}

		if err := s.scheduleRepo.MarkReminderSent(ctx, reminder.ScheduleID, now); err != nil {
			log.Printf("schedule reminders: failed to mark sent for %s: %v", reminder.ScheduleID, err)
		}
	}
}
