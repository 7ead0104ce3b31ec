package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type GoalRepo struct {
	pool *pgxpool.Pool
}

func NewGoalRepo(pool *pgxpool.Pool) *GoalRepo {
	return &GoalRepo{pool: pool}
}

// Replace deactivates any active goal of the same type and inserts the new
// one in a single transaction, so a reader never sees two active goals of
// one kind.
func (r *GoalRepo) Replace(ctx context.Context, g *models.StudyGoal) error {
	g.ID = uuid.New()
	g.IsActive = true

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE study_goals SET is_active = FALSE
		WHERE user_id = $1 AND goal_type = $2 AND is_active = TRUE
	`, g.UserID, g.GoalType)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO study_goals (id, user_id, goal_type, target_minutes, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING created_at
	`, g.ID, g.UserID, g.GoalType, g.TargetMinutes).Scan(&g.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *GoalRepo) ListActive(ctx context.Context, userID uuid.UUID) ([]models.StudyGoal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, goal_type, target_minutes, is_active, created_at
		FROM study_goals
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY goal_type
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := make([]models.StudyGoal, 0)
	for rows.Next() {
		var g models.StudyGoal
		if scanErr := rows.Scan(&g.ID, &g.UserID, &g.GoalType, &g.TargetMinutes, &g.IsActive, &g.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *GoalRepo) GetActiveByType(ctx context.Context, userID uuid.UUID, goalType string) (*models.StudyGoal, error) {
	g := &models.StudyGoal{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, goal_type, target_minutes, is_active, created_at
		FROM study_goals
		WHERE user_id = $1 AND goal_type = $2 AND is_active = TRUE
	`, userID, goalType).Scan(&g.ID, &g.UserID, &g.GoalType, &g.TargetMinutes, &g.IsActive, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// LaggingGoal is an active goal still short of its target for the
// current period, used by the reminder loop.
type LaggingGoal struct {
	GoalID        uuid.UUID
	UserID        uuid.UUID
	GoalType      string
	TargetMinutes int
	LoggedMinutes int
}

// behindTargetQuery attributes sessions to the window by start time,
// the same rule SumMinutes applies when reporting goal progress.
const behindTargetQuery = `
	SELECT g.id, g.user_id, g.goal_type, g.target_minutes,
		COALESCE((
			SELECT SUM(s.duration_minutes)::INT
			FROM study_sessions s
			WHERE s.user_id = g.user_id AND s.ended_at IS NOT NULL AND s.started_at >= $2
		), 0)
	FROM study_goals g
	WHERE g.goal_type = $1 AND g.is_active = TRUE
`

func (r *GoalRepo) ListBehindTarget(ctx context.Context, goalType string, periodStart time.Time) ([]LaggingGoal, error) {
	rows, err := r.pool.Query(ctx, behindTargetQuery, goalType, periodStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lagging := make([]LaggingGoal, 0)
	for rows.Next() {
		var g LaggingGoal
		if scanErr := rows.Scan(&g.GoalID, &g.UserID, &g.GoalType, &g.TargetMinutes, &g.LoggedMinutes); scanErr != nil {
			return nil, scanErr
		}
		if g.LoggedMinutes < g.TargetMinutes {
			lagging = append(lagging, g)
		}
	}
	return lagging, rows.Err()
}

func (r *GoalRepo) Deactivate(ctx context.Context, goalID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE study_goals SET is_active = FALSE
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, goalID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
