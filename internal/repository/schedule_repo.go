package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type ScheduleRepo struct {
	pool *pgxpool.Pool
}

func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

func (r *ScheduleRepo) Create(ctx context.Context, s *models.StudySchedule) error {
	s.ID = uuid.New()
	s.IsActive = true
	return r.pool.QueryRow(ctx, `
		INSERT INTO study_schedules (id, user_id, title, description, scheduled_start, scheduled_end,
			duration_minutes, recurrence, reminder_minutes_before, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
		RETURNING created_at
	`, s.ID, s.UserID, s.Title, s.Description, s.ScheduledStart, s.ScheduledEnd,
		s.DurationMinutes, s.Recurrence, s.ReminderMinutesBefore,
	).Scan(&s.CreatedAt)
}

func (r *ScheduleRepo) List(ctx context.Context, userID uuid.UUID) ([]models.StudySchedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, description, scheduled_start, scheduled_end, duration_minutes,
			recurrence, reminder_minutes_before, is_active, created_at
		FROM study_schedules
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY scheduled_start
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.StudySchedule, 0)
	for rows.Next() {
		var s models.StudySchedule
		if scanErr := rows.Scan(
			&s.ID, &s.UserID, &s.Title, &s.Description, &s.ScheduledStart, &s.ScheduledEnd,
			&s.DurationMinutes, &s.Recurrence, &s.ReminderMinutesBefore, &s.IsActive, &s.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepo) Delete(ctx context.Context, scheduleID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE study_schedules SET is_active = FALSE
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, scheduleID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DueReminder is a schedule whose reminder window covers now and has not
// been sent yet.
type DueReminder struct {
	ScheduleID     uuid.UUID
	UserID         uuid.UUID
	Title          string
	ScheduledStart time.Time
}

func (r *ScheduleRepo) ListDueReminders(ctx context.Context, now time.Time) ([]DueReminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, scheduled_start
		FROM study_schedules
		WHERE is_active = TRUE
		  AND reminder_sent_at IS NULL
		  AND scheduled_start > $1
		  AND scheduled_start <= $1 + (reminder_minutes_before * INTERVAL '1 minute')
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	due := make([]DueReminder, 0)
	for rows.Next() {
		var d DueReminder
		if scanErr := rows.Scan(&d.ScheduleID, &d.UserID, &d.Title, &d.ScheduledStart); scanErr != nil {
			return nil, scanErr
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

func (r *ScheduleRepo) MarkReminderSent(ctx context.Context, scheduleID uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE study_schedules SET reminder_sent_at = $1 WHERE id = $2", at, scheduleID)
	return err
}
