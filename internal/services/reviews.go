package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type ReviewService struct {
	reviewRepo   *repository.ReviewRepo
	noteRepo     *repository.NoteRepo
	resourceRepo *repository.ResourceRepo
	notifier     *Notifier
	activity     *ActivityPublisher
}

func NewReviewService(reviewRepo *repository.ReviewRepo, noteRepo *repository.NoteRepo, resourceRepo *repository.ResourceRepo, notifier *Notifier, activity *ActivityPublisher) *ReviewService {
	return &ReviewService{
		reviewRepo:   reviewRepo,
		noteRepo:     noteRepo,
		resourceRepo: resourceRepo,
		notifier:     notifier,
		activity:     activity,
	}
}

// Create validates that the review targets exactly one note or resource,
// that the target exists, and that the author isn't reviewing their own
// work, then stores it and notifies the target's owner.
func (s *ReviewService) Create(ctx context.Context, review *models.PeerReview) (*models.PeerReview, error) {
	fieldErrors := make(map[string]string)
	if review.Rating < 1 || review.Rating > 5 {
		fieldErrors["rating"] = "Rating must be between 1 and 5"
	}
	if (review.NoteID == nil) == (review.ResourceID == nil) {
		fieldErrors["target"] = "A review targets exactly one note or resource"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	var ownerID uuid.UUID
	var targetTitle, link string

	if review.NoteID != nil {
		note, err := s.noteRepo.GetByID(ctx, *review.NoteID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Message: "Note not found"}
			}
			return nil, err
		}
		ownerID = note.UserID
		targetTitle = note.Title
		link = "/notes/" + note.ID.String()
	} else {
		res, err := s.resourceRepo.GetByID(ctx, *review.ResourceID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, &NotFoundError{Message: "Resource not found"}
			}
			return nil, err
		}
		ownerID = res.UserID
		targetTitle = res.Title
		link = "/resources/" + res.ID.String()
	}

	if ownerID == review.ReviewerID {
		return nil, &ConflictError{Message: "You cannot review your own work"}
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.notifier.Send(ctx, ownerID, models.NotifySocial,
		"New peer review on \""+targetTitle+"\"", "Your work received a new review.", link)

	s.activity.Publish(ctx, models.ActivityReviewGiven, review.ReviewerID,
		"reviewed \""+targetTitle+"\"", link)

	return review, nil
}

func (s *ReviewService) ListForNote(ctx context.Context, noteID uuid.UUID) ([]models.PeerReview, error) {
	return s.reviewRepo.ListForNote(ctx, noteID)
}

func (s *ReviewService) ListForResource(ctx context.Context, resourceID uuid.UUID) ([]models.PeerReview, error) {
	return s.reviewRepo.ListForResource(ctx, resourceID)
}

func (s *ReviewService) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]models.PeerReview, error) {
	return s.reviewRepo.ListByReviewer(ctx, reviewerID)
}
