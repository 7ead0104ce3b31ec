package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

// ErrActiveSessionExists surfaces the partial unique index on
// study_sessions: one open session per user.
var ErrActiveSessionExists = errors.New("user already has an active session")

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Start(ctx context.Context, s *models.StudySession) error {
	s.ID = uuid.New()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO study_sessions (id, user_id, course_id, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING started_at, created_at
	`, s.ID, s.UserID, s.CourseID, s.Notes).Scan(&s.StartedAt, &s.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrActiveSessionExists
	}
	return err
}

func (r *SessionRepo) GetActive(ctx context.Context, userID uuid.UUID) (*models.StudySession, error) {
	s := &models.StudySession{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, course_id, started_at, ended_at, duration_minutes, notes, created_at
		FROM study_sessions
		WHERE user_id = $1 AND ended_at IS NULL
	`, userID).Scan(
		&s.ID, &s.UserID, &s.CourseID, &s.StartedAt, &s.EndedAt, &s.DurationMinutes, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Close stamps the session, then hands the closed session and the locked
// profile to apply so the caller can fold the duration into hours and
// streak. Everything commits or nothing does.
func (r *SessionRepo) Close(ctx context.Context, sessionID, userID uuid.UUID, notes string, apply func(p *models.Profile, s *models.StudySession)) (*models.StudySession, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	s := &models.StudySession{}
	err = tx.QueryRow(ctx, `
		UPDATE study_sessions
		SET ended_at = NOW(),
			duration_minutes = GREATEST(0, FLOOR(EXTRACT(EPOCH FROM (NOW() - started_at)) / 60))::INT,
			notes = COALESCE(NULLIF($3, ''), notes)
		WHERE id = $1
		  AND user_id = $2
		  AND ended_at IS NULL
		RETURNING id, user_id, course_id, started_at, ended_at, duration_minutes, notes, created_at
	`, sessionID, userID, notes).Scan(
		&s.ID, &s.UserID, &s.CourseID, &s.StartedAt, &s.EndedAt, &s.DurationMinutes, &s.Notes, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p := &models.Profile{}
	err = tx.QueryRow(ctx, `
		SELECT user_id, total_study_hours, study_streak, last_study_date, created_at, updated_at
		FROM profiles WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(
		&p.UserID, &p.TotalStudyHours, &p.StudyStreak, &p.LastStudyDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	apply(p, s)

	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET total_study_hours = $1, study_streak = $2, last_study_date = $3, updated_at = NOW()
		WHERE user_id = $4
	`, p.TotalStudyHours, p.StudyStreak, p.LastStudyDate, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Sessions count toward a window by when they started: one that
// straddles the period boundary belongs to the period it began in.
const sumMinutesQuery = `
	SELECT COALESCE(SUM(duration_minutes), 0)
	FROM study_sessions
	WHERE user_id = $1
	  AND ended_at IS NOT NULL
	  AND started_at >= $2
`

// SumMinutes totals closed-session minutes for sessions started on or
// after the period start.
func (r *SessionRepo) SumMinutes(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, sumMinutesQuery, userID, since).Scan(&total)
	return total, err
}

type HistoryFilter struct {
	CourseID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

func (r *SessionRepo) History(ctx context.Context, userID uuid.UUID, f HistoryFilter) ([]models.StudySession, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	query := `
		SELECT id, user_id, course_id, started_at, ended_at, duration_minutes, notes, created_at
		FROM study_sessions
		WHERE user_id = $1 AND ended_at IS NOT NULL`
	args := []interface{}{userID}

	if f.CourseID != nil {
		args = append(args, *f.CourseID)
		query += ` AND course_id = $` + strconv.Itoa(len(args))
	}
	if f.From != nil {
		args = append(args, *f.From)
		query += ` AND started_at >= $` + strconv.Itoa(len(args))
	}
	if f.To != nil {
		args = append(args, *f.To)
		query += ` AND started_at < $` + strconv.Itoa(len(args))
	}

	args = append(args, f.Limit)
	query += ` ORDER BY started_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]models.StudySession, 0)
	for rows.Next() {
		var s models.StudySession
		if scanErr := rows.Scan(
			&s.ID, &s.UserID, &s.CourseID, &s.StartedAt, &s.EndedAt, &s.DurationMinutes, &s.Notes, &s.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

type DailyTotal struct {
	Day     time.Time `json:"day"`
	Minutes int       `json:"minutes"`
}

func (r *SessionRepo) DailyTotals(ctx context.Context, userID uuid.UUID, since time.Time) ([]DailyTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DATE_TRUNC('day', ended_at) AS day, SUM(duration_minutes)::INT
		FROM study_sessions
		WHERE user_id = $1
		  AND ended_at IS NOT NULL
		  AND ended_at >= $2
		GROUP BY day
		ORDER BY day
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]DailyTotal, 0)
	for rows.Next() {
		var t DailyTotal
		if scanErr := rows.Scan(&t.Day, &t.Minutes); scanErr != nil {
			return nil, scanErr
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

type CourseTotal struct {
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	Minutes     int       `json:"minutes"`
	Sessions    int       `json:"sessions"`
}

func (r *SessionRepo) CourseTotals(ctx context.Context, userID uuid.UUID) ([]CourseTotal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.title, SUM(s.duration_minutes)::INT, COUNT(*)::INT
		FROM study_sessions s
		JOIN courses c ON c.id = s.course_id
		WHERE s.user_id = $1 AND s.ended_at IS NOT NULL
		GROUP BY c.id, c.title
		ORDER BY SUM(s.duration_minutes) DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make([]CourseTotal, 0)
	for rows.Next() {
		var t CourseTotal
		if scanErr := rows.Scan(&t.CourseID, &t.CourseTitle, &t.Minutes, &t.Sessions); scanErr != nil {
			return nil, scanErr
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

type TimeOfDaySplit struct {
	MorningMinutes   int `json:"morning_minutes"`
	AfternoonMinutes int `json:"afternoon_minutes"`
	EveningMinutes   int `json:"evening_minutes"`
}

// TimeOfDayTotals buckets closed sessions by start hour:
// morning [5,12), afternoon [12,18), evening everything else.
func (r *SessionRepo) TimeOfDayTotals(ctx context.Context, userID uuid.UUID, since time.Time) (TimeOfDaySplit, error) {
	var split TimeOfDaySplit
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(duration_minutes) FILTER (WHERE EXTRACT(HOUR FROM started_at) BETWEEN 5 AND 11), 0)::INT,
			COALESCE(SUM(duration_minutes) FILTER (WHERE EXTRACT(HOUR FROM started_at) BETWEEN 12 AND 17), 0)::INT,
			COALESCE(SUM(duration_minutes) FILTER (WHERE EXTRACT(HOUR FROM started_at) < 5 OR EXTRACT(HOUR FROM started_at) > 17), 0)::INT
		FROM study_sessions
		WHERE user_id = $1 AND ended_at IS NOT NULL AND ended_at >= $2
	`, userID, since).Scan(&split.MorningMinutes, &split.AfternoonMinutes, &split.EveningMinutes)
	return split, err
}

// IsNotFound reports whether err is pgx's no-rows marker.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
