package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type BadgeRepo struct {
	pool *pgxpool.Pool
}

func NewBadgeRepo(pool *pgxpool.Pool) *BadgeRepo {
	return &BadgeRepo{pool: pool}
}

// Only active badges are awardable or visible; retired and
// manually-awarded seed rows never reach users.
const catalogQuery = `
	SELECT id, name, description, icon, color, category, rule_kind, requirement, is_active, created_at
	FROM badges
	WHERE is_active = TRUE
	ORDER BY requirement, name
`

const badgeStatusQuery = `
	SELECT b.id, b.name, b.description, b.icon, b.color, b.category, b.rule_kind, b.requirement,
		b.is_active, b.created_at, ub.earned_at
	FROM badges b
	LEFT JOIN user_badges ub ON ub.badge_id = b.id AND ub.user_id = $1
	WHERE b.is_active = TRUE
	ORDER BY b.requirement, b.name
`

// ListCatalog returns awardable badges, easiest requirement first, so a
// single eligibility pass can fold earlier awards into badge_count rules.
func (r *BadgeRepo) ListCatalog(ctx context.Context) ([]models.Badge, error) {
	rows, err := r.pool.Query(ctx, catalogQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	badges := make([]models.Badge, 0)
	for rows.Next() {
		var b models.Badge
		if scanErr := rows.Scan(
			&b.ID, &b.Name, &b.Description, &b.Icon, &b.Color, &b.Category,
			&b.RuleKind, &b.Requirement, &b.IsActive, &b.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// ListWithStatus merges the active catalog with the user's award state.
func (r *BadgeRepo) ListWithStatus(ctx context.Context, userID uuid.UUID) ([]models.BadgeStatus, error) {
	rows, err := r.pool.Query(ctx, badgeStatusQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]models.BadgeStatus, 0)
	for rows.Next() {
		var s models.BadgeStatus
		if scanErr := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Icon, &s.Color, &s.Category,
			&s.RuleKind, &s.Requirement, &s.IsActive, &s.CreatedAt, &s.EarnedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		s.Earned = s.EarnedAt != nil
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}

func (r *BadgeRepo) EarnedBadgeIDs(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT badge_id FROM user_badges WHERE user_id = $1", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	earned := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		earned[id] = true
	}
	return earned, rows.Err()
}

// Award inserts the award row; a repeat award is a no-op and reports false.
func (r *BadgeRepo) Award(ctx context.Context, userID, badgeID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO user_badges (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`, userID, badgeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UserStats collects every statistic a badge rule can reference, in one
// round trip.
type UserStats struct {
	TotalStudyHours  float64 `json:"total_study_hours"`
	StudyStreak      int     `json:"study_streak"`
	GroupCount       int     `json:"group_count"`
	DiscussionCount  int     `json:"discussion_count"`
	ReviewCount      int     `json:"review_count"`
	NoteCount        int     `json:"note_count"`
	ResourceCount    int     `json:"resource_count"`
	LessonsCompleted int     `json:"lessons_completed"`
	BadgeCount       int     `json:"badge_count"`
}

func (r *BadgeRepo) GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	stats := &UserStats{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(p.total_study_hours, 0),
			COALESCE(p.study_streak, 0),
			(SELECT COUNT(*)::INT FROM group_memberships WHERE user_id = $1),
			(SELECT COUNT(*)::INT FROM discussions WHERE author_id = $1),
			(SELECT COUNT(*)::INT FROM peer_reviews WHERE reviewer_id = $1),
			(SELECT COUNT(*)::INT FROM study_notes WHERE user_id = $1),
			(SELECT COUNT(*)::INT FROM shared_resources WHERE user_id = $1),
			(SELECT COUNT(*)::INT FROM lesson_progress WHERE user_id = $1 AND is_completed),
			(SELECT COUNT(*)::INT FROM user_badges WHERE user_id = $1)
		FROM profiles p
		WHERE p.user_id = $1
	`, userID).Scan(
		&stats.TotalStudyHours, &stats.StudyStreak, &stats.GroupCount, &stats.DiscussionCount,
		&stats.ReviewCount, &stats.NoteCount, &stats.ResourceCount, &stats.LessonsCompleted,
		&stats.BadgeCount,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
