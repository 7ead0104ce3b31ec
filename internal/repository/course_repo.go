package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type CourseRepo struct {
	pool *pgxpool.Pool
}

func NewCourseRepo(pool *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{pool: pool}
}

func (r *CourseRepo) ListPublished(ctx context.Context) ([]models.Course, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, description, is_published, created_at
		FROM courses
		WHERE is_published = TRUE
		ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		var c models.Course
		if scanErr := rows.Scan(&c.ID, &c.Title, &c.Description, &c.IsPublished, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c := &models.Course{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, description, is_published, created_at
		FROM courses WHERE id = $1 AND is_published = TRUE
	`, id).Scan(&c.ID, &c.Title, &c.Description, &c.IsPublished, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CourseRepo) ListLessons(ctx context.Context, courseID uuid.UUID) ([]models.Lesson, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, course_id, title, content, youtube_id, lesson_order
		FROM lessons
		WHERE course_id = $1
		ORDER BY lesson_order
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := make([]models.Lesson, 0)
	for rows.Next() {
		var l models.Lesson
		if scanErr := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.YouTubeID, &l.LessonOrder); scanErr != nil {
			return nil, scanErr
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *CourseRepo) GetLesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	l := &models.Lesson{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, course_id, title, content, youtube_id, lesson_order
		FROM lessons WHERE id = $1
	`, lessonID).Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.YouTubeID, &l.LessonOrder)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CompleteLesson is idempotent: re-completing keeps the first timestamp.
func (r *CourseRepo) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO lesson_progress (user_id, lesson_id, is_completed, completed_at)
		VALUES ($1, $2, TRUE, NOW())
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`, userID, lessonID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UncompleteLesson drops the completion mark, e.g. after accidental clicks.
func (r *CourseRepo) UncompleteLesson(ctx context.Context, userID, lessonID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2", userID, lessonID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *CourseRepo) CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (completed int, total int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(lp.lesson_id)::INT,
			(SELECT COUNT(*)::INT FROM lessons WHERE course_id = $2)
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id
		WHERE lp.user_id = $1 AND l.course_id = $2 AND lp.is_completed
	`, userID, courseID).Scan(&completed, &total)
	return
}

func (r *CourseRepo) CompletedLessonIDs(ctx context.Context, userID, courseID uuid.UUID) (map[uuid.UUID]bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lp.lesson_id
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id
		WHERE lp.user_id = $1 AND l.course_id = $2 AND lp.is_completed
	`, userID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	done := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		done[id] = true
	}
	return done, rows.Err()
}
