package repository

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type ResourceRepo struct {
	pool *pgxpool.Pool
}

func NewResourceRepo(pool *pgxpool.Pool) *ResourceRepo {
	return &ResourceRepo{pool: pool}
}

func (r *ResourceRepo) Create(ctx context.Context, res *models.SharedResource) error {
	res.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO shared_resources (id, user_id, course_id, title, description, resource_type, file_path, file_size, url, is_public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, res.ID, res.UserID, res.CourseID, res.Title, res.Description, res.ResourceType,
		res.FilePath, res.FileSize, res.URL, res.IsPublic,
	).Scan(&res.CreatedAt, &res.UpdatedAt)
}

func (r *ResourceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SharedResource, error) {
	res := &models.SharedResource{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, course_id, title, description, resource_type, file_path, file_size, url,
			downloads, views, is_public, created_at, updated_at
		FROM shared_resources WHERE id = $1
	`, id).Scan(
		&res.ID, &res.UserID, &res.CourseID, &res.Title, &res.Description, &res.ResourceType,
		&res.FilePath, &res.FileSize, &res.URL, &res.Downloads, &res.Views, &res.IsPublic,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

type ResourceFilter struct {
	CourseID     *uuid.UUID
	ResourceType string
	Search       string
	Limit        int
	Offset       int
}

// List returns public resources plus the caller's own private ones.
func (r *ResourceRepo) List(ctx context.Context, userID uuid.UUID, f ResourceFilter) ([]models.SharedResource, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	query := `
		SELECT id, user_id, course_id, title, description, resource_type, file_path, file_size, url,
			downloads, views, is_public, created_at, updated_at
		FROM shared_resources
		WHERE (is_public = TRUE OR user_id = $1)`
	args := []interface{}{userID}

	if f.CourseID != nil {
		args = append(args, *f.CourseID)
		query += ` AND course_id = $` + strconv.Itoa(len(args))
	}
	if f.ResourceType != "" {
		args = append(args, f.ResourceType)
		query += ` AND resource_type = $` + strconv.Itoa(len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (title ILIKE $` + n + ` OR description ILIKE $` + n + `)`
	}

	args = append(args, f.Limit)
	query += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, f.Offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resources := make([]models.SharedResource, 0)
	for rows.Next() {
		var res models.SharedResource
		if scanErr := rows.Scan(
			&res.ID, &res.UserID, &res.CourseID, &res.Title, &res.Description, &res.ResourceType,
			&res.FilePath, &res.FileSize, &res.URL, &res.Downloads, &res.Views, &res.IsPublic,
			&res.CreatedAt, &res.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *ResourceRepo) Update(ctx context.Context, res *models.SharedResource) error {
	return r.pool.QueryRow(ctx, `
		UPDATE shared_resources
		SET title = $1, description = $2, url = $3, is_public = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
		RETURNING updated_at
	`, res.Title, res.Description, res.URL, res.IsPublic, res.ID, res.UserID).Scan(&res.UpdatedAt)
}

func (r *ResourceRepo) Delete(ctx context.Context, resourceID, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM shared_resources WHERE id = $1 AND user_id = $2", resourceID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ResourceRepo) IncrementViews(ctx context.Context, resourceID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE shared_resources SET views = views + 1 WHERE id = $1", resourceID)
	return err
}

func (r *ResourceRepo) IncrementDownloads(ctx context.Context, resourceID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE shared_resources SET downloads = downloads + 1 WHERE id = $1", resourceID)
	return err
}
