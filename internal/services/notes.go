package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type NoteService struct {
	noteRepo *repository.NoteRepo
	activity *ActivityPublisher
}

func NewNoteService(noteRepo *repository.NoteRepo, activity *ActivityPublisher) *NoteService {
	return &NoteService{noteRepo: noteRepo, activity: activity}
}

func (s *NoteService) CreateCategory(ctx context.Context, userID uuid.UUID, name, color, description string) (*models.NoteCategory, error) {
	if name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "Category name is required"}}
	}
	if color == "" {
		color = "#64748b"
	}

	category := &models.NoteCategory{
		UserID:      userID,
		Name:        name,
		Color:       color,
		Description: description,
	}
	if err := s.noteRepo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *NoteService) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.NoteCategory, error) {
	return s.noteRepo.ListCategories(ctx, userID)
}

func (s *NoteService) DeleteCategory(ctx context.Context, categoryID, userID uuid.UUID) error {
	ok, err := s.noteRepo.DeleteCategory(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Message: "Category not found"}
	}
	return nil
}

func (s *NoteService) Create(ctx context.Context, note *models.StudyNote) (*models.StudyNote, error) {
	fieldErrors := make(map[string]string)
	if note.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if note.Content == "" {
		fieldErrors["content"] = "Content is required"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, err
	}

	s.activity.Publish(ctx, models.ActivityNoteCreated, note.UserID,
		"created the note \""+note.Title+"\"", "/notes/"+note.ID.String())

	return note, nil
}

func (s *NoteService) Get(ctx context.Context, noteID, userID uuid.UUID) (*models.StudyNote, error) {
	note, err := s.noteRepo.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Note not found"}
		}
		return nil, err
	}
	if note.UserID != userID {
		return nil, &ForbiddenError{Message: "You do not have access to this note"}
	}
	return note, nil
}

func (s *NoteService) List(ctx context.Context, userID uuid.UUID, f repository.NoteFilter) ([]models.StudyNote, error) {
	return s.noteRepo.List(ctx, userID, f)
}

func (s *NoteService) Update(ctx context.Context, note *models.StudyNote) (*models.StudyNote, error) {
	fieldErrors := make(map[string]string)
	if note.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if note.Content == "" {
		fieldErrors["content"] = "Content is required"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	err := s.noteRepo.Update(ctx, note)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Note not found"}
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, noteID, userID uuid.UUID) error {
	ok, err := s.noteRepo.Delete(ctx, noteID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Message: "Note not found"}
	}
	return nil
}
