package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type ResourceService struct {
	resourceRepo *repository.ResourceRepo
	activity     *ActivityPublisher
}

func NewResourceService(resourceRepo *repository.ResourceRepo, activity *ActivityPublisher) *ResourceService {
	return &ResourceService{resourceRepo: resourceRepo, activity: activity}
}

func validResourceType(resourceType string) bool {
	for _, t := range models.ResourceTypes {
		if t == resourceType {
			return true
		}
	}
	return false
}

func (s *ResourceService) Create(ctx context.Context, res *models.SharedResource) (*models.SharedResource, error) {
	fieldErrors := make(map[string]string)
	if res.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if !validResourceType(res.ResourceType) {
		fieldErrors["resource_type"] = "Unknown resource type"
	}
	if res.ResourceType == "link" && res.URL == "" {
		fieldErrors["url"] = "Link resources require a URL"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return nil, err
	}

	if res.IsPublic {
		s.activity.Publish(ctx, models.ActivityResourceShared, res.UserID,
			"shared the resource \""+res.Title+"\"", "/resources/"+res.ID.String())
	}

	return res, nil
}

// Get returns the resource and bumps its view counter. Private resources
// are visible only to their owner.
func (s *ResourceService) Get(ctx context.Context, resourceID, userID uuid.UUID) (*models.SharedResource, error) {
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Resource not found"}
		}
		return nil, err
	}
	if !res.IsPublic && res.UserID != userID {
		return nil, &ForbiddenError{Message: "This resource is private"}
	}

	if err := s.resourceRepo.IncrementViews(ctx, resourceID); err == nil {
		res.Views++
	}
	return res, nil
}

func (s *ResourceService) List(ctx context.Context, userID uuid.UUID, f repository.ResourceFilter) ([]models.SharedResource, error) {
	return s.resourceRepo.List(ctx, userID, f)
}

func (s *ResourceService) Update(ctx context.Context, res *models.SharedResource) (*models.SharedResource, error) {
	if res.Title == "" {
		return nil, &ValidationError{Fields: map[string]string{"title": "Title is required"}}
	}

	err := s.resourceRepo.Update(ctx, res)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Resource not found"}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes the record and returns it so the caller can clean up
// any stored file.
func (s *ResourceService) Delete(ctx context.Context, resourceID, userID uuid.UUID) (*models.SharedResource, error) {
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Resource not found"}
		}
		return nil, err
	}

	ok, err := s.resourceRepo.Delete(ctx, resourceID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NotFoundError{Message: "Resource not found"}
	}
	return res, nil
}

// RecordDownload bumps the download counter for a downloadable resource.
func (s *ResourceService) RecordDownload(ctx context.Context, resourceID, userID uuid.UUID) (*models.SharedResource, error) {
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Resource not found"}
		}
		return nil, err
	}
	if !res.IsPublic && res.UserID != userID {
		return nil, &ForbiddenError{Message: "This resource is private"}
	}

	if err := s.resourceRepo.IncrementDownloads(ctx, resourceID); err != nil {
		return nil, err
	}
	res.Downloads++
	return res, nil
}
