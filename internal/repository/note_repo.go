package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type NoteRepo struct {
	pool *pgxpool.Pool
}

func NewNoteRepo(pool *pgxpool.Pool) *NoteRepo {
	return &NoteRepo{pool: pool}
}

func (r *NoteRepo) CreateCategory(ctx context.Context, c *models.NoteCategory) error {
	c.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO note_categories (id, user_id, name, color, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, c.ID, c.UserID, c.Name, c.Color, c.Description).Scan(&c.CreatedAt)
}

func (r *NoteRepo) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.NoteCategory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, name, color, description, created_at
		FROM note_categories
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.NoteCategory, 0)
	for rows.Next() {
		var c models.NoteCategory
		if scanErr := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Description, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *NoteRepo) DeleteCategory(ctx context.Context, categoryID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM note_categories WHERE id = $1 AND user_id = $2", categoryID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NoteRepo) Create(ctx context.Context, n *models.StudyNote) error {
	n.ID = uuid.New()
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO study_notes (id, user_id, course_id, category_id, title, content, tags, is_pinned, is_favorite)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, n.ID, n.UserID, n.CourseID, n.CategoryID, n.Title, n.Content, n.Tags, n.IsPinned, n.IsFavorite,
	).Scan(&n.CreatedAt, &n.UpdatedAt)
}

func (r *NoteRepo) GetByID(ctx context.Context, noteID uuid.UUID) (*models.StudyNote, error) {
	n := &models.StudyNote{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, course_id, category_id, title, content, tags, is_pinned, is_favorite, created_at, updated_at
		FROM study_notes WHERE id = $1
	`, noteID).Scan(
		&n.ID, &n.UserID, &n.CourseID, &n.CategoryID, &n.Title, &n.Content, &n.Tags,
		&n.IsPinned, &n.IsFavorite, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return n, nil
}

type NoteFilter struct {
	CategoryID *uuid.UUID
	CourseID   *uuid.UUID
	Search     string
	Pinned     *bool
	Favorite   *bool
	Limit      int
	Offset     int
}

// List returns the caller's notes, pinned first, newest first.
func (r *NoteRepo) List(ctx context.Context, userID uuid.UUID, f NoteFilter) ([]models.StudyNote, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	query := `
		SELECT id, user_id, course_id, category_id, title, content, tags, is_pinned, is_favorite, created_at, updated_at
		FROM study_notes
		WHERE user_id = $1`
	args := []interface{}{userID}

	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		query += ` AND category_id = $` + strconv.Itoa(len(args))
	}
	if f.CourseID != nil {
		args = append(args, *f.CourseID)
		query += ` AND course_id = $` + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (title ILIKE $` + n + ` OR content ILIKE $` + n + `)`
	}
	if f.Pinned != nil {
		args = append(args, *f.Pinned)
		query += ` AND is_pinned = $` + strconv.Itoa(len(args))
	}
	if f.Favorite != nil {
		args = append(args, *f.Favorite)
		query += ` AND is_favorite = $` + strconv.Itoa(len(args))
	}

	args = append(args, f.Limit)
	query += ` ORDER BY is_pinned DESC, updated_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]models.StudyNote, 0)
	for rows.Next() {
		var n models.StudyNote
		if scanErr := rows.Scan(
			&n.ID, &n.UserID, &n.CourseID, &n.CategoryID, &n.Title, &n.Content, &n.Tags,
			&n.IsPinned, &n.IsFavorite, &n.CreatedAt, &n.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (r *NoteRepo) Update(ctx context.Context, n *models.StudyNote) error {
	if n.Tags == nil {
		n.Tags = []string{}
	}
	return r.pool.QueryRow(ctx, `
		UPDATE study_notes
		SET title = $1, content = $2, category_id = $3, course_id = $4, tags = $5,
			is_pinned = $6, is_favorite = $7, updated_at = NOW()
		WHERE id = $8 AND user_id = $9
		RETURNING updated_at
	`, n.Title, n.Content, n.CategoryID, n.CourseID, n.Tags, n.IsPinned, n.IsFavorite, n.ID, n.UserID,
	).Scan(&n.UpdatedAt)
}

func (r *NoteRepo) Delete(ctx context.Context, noteID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM study_notes WHERE id = $1 AND user_id = $2", noteID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
