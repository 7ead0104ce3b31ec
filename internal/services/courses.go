package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type CourseService struct {
	courseRepo *repository.CourseRepo
	activity   *ActivityPublisher
}

func NewCourseService(courseRepo *repository.CourseRepo, activity *ActivityPublisher) *CourseService {
	return &CourseService{courseRepo: courseRepo, activity: activity}
}

func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.ListPublished(ctx)
}

type CourseDetail struct {
	models.Course
	Lessons          []LessonWithStatus `json:"lessons"`
	CompletedLessons int                `json:"completed_lessons"`
	TotalLessons     int                `json:"total_lessons"`
}

type LessonWithStatus struct {
	models.Lesson
	IsCompleted bool `json:"is_completed"`
}

func (s *CourseService) Get(ctx context.Context, courseID, userID uuid.UUID) (*CourseDetail, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Course not found"}
		}
		return nil, err
	}

	lessons, err := s.courseRepo.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	done, err := s.courseRepo.CompletedLessonIDs(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	detail := &CourseDetail{
		Course:       *course,
		Lessons:      make([]LessonWithStatus, 0, len(lessons)),
		TotalLessons: len(lessons),
	}
	for _, lesson := range lessons {
		completed := done[lesson.ID]
		if completed {
			detail.CompletedLessons++
		}
		detail.Lessons = append(detail.Lessons, LessonWithStatus{Lesson: lesson, IsCompleted: completed})
	}
	return detail, nil
}

func (s *CourseService) GetLesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.courseRepo.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Lesson not found"}
		}
		return nil, err
	}
	return lesson, nil
}

// CompleteLesson marks a lesson done. Repeat completions are no-ops and
// publish nothing.
func (s *CourseService) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) error {
	lesson, err := s.courseRepo.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Lesson not found"}
		}
		return err
	}

	newlyCompleted, err := s.courseRepo.CompleteLesson(ctx, userID, lessonID)
	if err != nil {
		return err
	}

	if newlyCompleted {
		s.activity.Publish(ctx, models.ActivityLessonCompleted, userID,
			"completed the lesson \""+lesson.Title+"\"", "/courses/"+lesson.CourseID.String())
	}
	return nil
}

// UncompleteLesson clears the completion mark. No activity event: undoing
// a click is not feed-worthy.
func (s *CourseService) UncompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) error {
	removed, err := s.courseRepo.UncompleteLesson(ctx, userID, lessonID)
	if err != nil {
		return err
	}
	if !removed {
		return &NotFoundError{Message: "Lesson is not completed"}
	}
	return nil
}
