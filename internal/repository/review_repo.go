package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type ReviewRepo struct {
	pool *pgxpool.Pool
}

func NewReviewRepo(pool *pgxpool.Pool) *ReviewRepo {
	return &ReviewRepo{pool: pool}
}

func (r *ReviewRepo) Create(ctx context.Context, review *models.PeerReview) error {
	review.ID = uuid.New()
	return r.pool.QueryRow(ctx, `
		INSERT INTO peer_reviews (id, reviewer_id, note_id, resource_id, rating, feedback)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, review.ID, review.ReviewerID, review.NoteID, review.ResourceID, review.Rating, review.Feedback,
	).Scan(&review.CreatedAt)
}

func (r *ReviewRepo) listBy(ctx context.Context, where string, arg interface{}) ([]models.PeerReview, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, reviewer_id, note_id, resource_id, rating, feedback, created_at
		FROM peer_reviews
		WHERE `+where+`
		ORDER BY created_at DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := make([]models.PeerReview, 0)
	for rows.Next() {
		var review models.PeerReview
		if scanErr := rows.Scan(
			&review.ID, &review.ReviewerID, &review.NoteID, &review.ResourceID,
			&review.Rating, &review.Feedback, &review.CreatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepo) ListForNote(ctx context.Context, noteID uuid.UUID) ([]models.PeerReview, error) {
	return r.listBy(ctx, "note_id = $1", noteID)
}

func (r *ReviewRepo) ListForResource(ctx context.Context, resourceID uuid.UUID) ([]models.PeerReview, error) {
	return r.listBy(ctx, "resource_id = $1", resourceID)
}

func (r *ReviewRepo) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]models.PeerReview, error) {
	return r.listBy(ctx, "reviewer_id = $1", reviewerID)
}

func (r *ReviewRepo) CountByReviewer(ctx context.Context, reviewerID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM peer_reviews WHERE reviewer_id = $1", reviewerID).Scan(&count)
	return count, err
}

// AverageRating returns 0 when the target has no reviews.
func (r *ReviewRepo) AverageRating(ctx context.Context, where string, targetID uuid.UUID) (float64, int, error) {
	var avg float64
	var count int
	query := "SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM peer_reviews WHERE "
	switch where {
	case "note":
		query += "note_id = $1"
	default:
		query += "resource_id = $1"
	}
	err := r.pool.QueryRow(ctx, query, targetID).Scan(&avg, &count)
	return avg, count, err
}
