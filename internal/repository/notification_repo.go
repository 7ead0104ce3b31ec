package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, category, title, message, link)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, n.ID, n.UserID, n.Category, n.Title, n.Message, n.Link).Scan(&n.CreatedAt)
}

// ListRecent returns the newest notifications, capped at 20. The unread
// count is taken over the returned page, not the whole table.
func (r *NotificationRepo) ListRecent(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, category, title, message, link, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 20
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if scanErr := rows.Scan(
			&n.ID, &n.UserID, &n.Category, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	tag, err := r.pool.Exec(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE", userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

type ActivityRepo struct {
	pool *pgxpool.Pool
}

func NewActivityRepo(pool *pgxpool.Pool) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Create(ctx context.Context, a *models.UserActivity) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO user_activities (id, user_id, activity_type, description, link, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING created_at
	`, a.ID, a.UserID, a.ActivityType, a.Description, a.Link, nullableTime(a.CreatedAt)).Scan(&a.CreatedAt)
}

// The activity feed is a fixed-size window, same as the notification
// list: never more than the 20 newest rows per page.
const feedPageSize = 20

func clampFeedLimit(limit int) int {
	if limit <= 0 || limit > feedPageSize {
		return feedPageSize
	}
	return limit
}

// Feed returns the newest activity across all users.
func (r *ActivityRepo) Feed(ctx context.Context, limit, offset int) ([]models.UserActivity, error) {
	limit = clampFeedLimit(limit)

	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.user_id, u.full_name, a.activity_type, a.description, a.link, a.created_at
		FROM user_activities a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

func scanActivities(rows pgx.Rows) ([]models.UserActivity, error) {
	activities := make([]models.UserActivity, 0)
	for rows.Next() {
		var a models.UserActivity
		if scanErr := rows.Scan(
			&a.ID, &a.UserID, &a.UserName, &a.ActivityType, &a.Description, &a.Link, &a.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FeedForUser returns one user's newest activity.
func (r *ActivityRepo) FeedForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserActivity, error) {
	limit = clampFeedLimit(limit)

	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.user_id, u.full_name, a.activity_type, a.description, a.link, a.created_at
		FROM user_activities a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}
