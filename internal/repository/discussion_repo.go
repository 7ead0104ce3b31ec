package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type DiscussionRepo struct {
	pool *pgxpool.Pool
}

func NewDiscussionRepo(pool *pgxpool.Pool) *DiscussionRepo {
	return &DiscussionRepo{pool: pool}
}

func (r *DiscussionRepo) Create(ctx context.Context, d *models.Discussion) error {
	d.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO discussions (id, group_id, author_id, title, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, d.ID, d.GroupID, d.AuthorID, d.Title, d.Content).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *DiscussionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Discussion, error) {
	d := &models.Discussion{}
	err := r.pool.QueryRow(ctx, `
		SELECT d.id, d.group_id, d.author_id, u.full_name, d.title, d.content, d.is_pinned, d.is_locked,
			(SELECT COUNT(*)::INT FROM discussion_replies dr WHERE dr.discussion_id = d.id),
			d.created_at, d.updated_at
		FROM discussions d
		JOIN users u ON u.id = d.author_id
		WHERE d.id = $1
	`, id).Scan(
		&d.ID, &d.GroupID, &d.AuthorID, &d.AuthorName, &d.Title, &d.Content,
		&d.IsPinned, &d.IsLocked, &d.ReplyCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListByGroup returns pinned discussions first, then newest.
func (r *DiscussionRepo) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]models.Discussion, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT d.id, d.group_id, d.author_id, u.full_name, d.title, d.content, d.is_pinned, d.is_locked,
			(SELECT COUNT(*)::INT FROM discussion_replies dr WHERE dr.discussion_id = d.id),
			d.created_at, d.updated_at
		FROM discussions d
		JOIN users u ON u.id = d.author_id
		WHERE d.group_id = $1
		ORDER BY d.is_pinned DESC, d.created_at DESC
		LIMIT $2 OFFSET $3
	`, groupID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	discussions := make([]models.Discussion, 0)
	for rows.Next() {
		var d models.Discussion
		if scanErr := rows.Scan(
			&d.ID, &d.GroupID, &d.AuthorID, &d.AuthorName, &d.Title, &d.Content,
			&d.IsPinned, &d.IsLocked, &d.ReplyCount, &d.CreatedAt, &d.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		discussions = append(discussions, d)
	}
	return discussions, rows.Err()
}

func (r *DiscussionRepo) SetPinned(ctx context.Context, discussionID uuid.UUID, pinned bool) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE discussions SET is_pinned = $1, updated_at = NOW() WHERE id = $2", pinned, discussionID)
	return err
}

func (r *DiscussionRepo) SetLocked(ctx context.Context, discussionID uuid.UUID, locked bool) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE discussions SET is_locked = $1, updated_at = NOW() WHERE id = $2", locked, discussionID)
	return err
}

// Delete removes the thread; replies cascade.
func (r *DiscussionRepo) Delete(ctx context.Context, discussionID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM discussions WHERE id = $1", discussionID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *DiscussionRepo) CreateReply(ctx context.Context, reply *models.DiscussionReply) error {
	reply.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO discussion_replies (id, discussion_id, author_id, parent_id, content)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, reply.ID, reply.DiscussionID, reply.AuthorID, reply.ParentID, reply.Content).Scan(&reply.CreatedAt)
}

func (r *DiscussionRepo) ListReplies(ctx context.Context, discussionID uuid.UUID) ([]models.DiscussionReply, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT dr.id, dr.discussion_id, dr.author_id, u.full_name, dr.parent_id, dr.content, dr.created_at
		FROM discussion_replies dr
		JOIN users u ON u.id = dr.author_id
		WHERE dr.discussion_id = $1
		ORDER BY dr.created_at
	`, discussionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := make([]models.DiscussionReply, 0)
	for rows.Next() {
		var reply models.DiscussionReply
		if scanErr := rows.Scan(
			&reply.ID, &reply.DiscussionID, &reply.AuthorID, &reply.AuthorName,
			&reply.ParentID, &reply.Content, &reply.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		replies = append(replies, reply)
	}
	return replies, rows.Err()
}

func (r *DiscussionRepo) CountByAuthor(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM discussions WHERE author_id = $1", userID).Scan(&count)
	return count, err
}
