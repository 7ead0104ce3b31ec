package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts the user and an empty study profile in one transaction.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	user.IsActive = true

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, is_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, user.ID, user.Email, user.PasswordHash, user.FullName, user.IsVerified).Scan(&user.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, "INSERT INTO profiles (user_id) VALUES ($1)", user.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, bio, location, is_verified, is_active, created_at, last_login_at
		FROM users WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Bio, &user.Location,
		&user.IsVerified, &user.IsActive, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, bio, location, is_verified, is_active, created_at, last_login_at
		FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Bio, &user.Location,
		&user.IsVerified, &user.IsActive, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) VerifyEmail(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET is_verified = TRUE WHERE id = $1", userID)
	return err
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE users SET full_name = $1, bio = $2, location = $3 WHERE id = $4",
		user.FullName, user.Bio, user.Location, user.ID,
	)
	return err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}

func (r *UserRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, total_study_hours, study_streak, last_study_date, created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(
		&p.UserID, &p.TotalStudyHours, &p.StudyStreak, &p.LastStudyDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// StreakRecipient feeds the streak-at-risk reminder loop: users with a
// live streak who have not closed a session today.
type StreakRecipient struct {
	ID            uuid.UUID
	Email         string
	FullName      string
	StudyStreak   int
	LastStudyDate time.Time
}

func (r *UserRepo) ListStreaksAtRisk(ctx context.Context, todayStart time.Time) ([]StreakRecipient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.full_name, p.study_streak, p.last_study_date
		FROM users u
		JOIN profiles p ON p.user_id = u.id
		WHERE u.is_active = TRUE
		  AND u.is_verified = TRUE
		  AND p.study_streak > 0
		  AND p.last_study_date IS NOT NULL
		  AND p.last_study_date < $1
	`, todayStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := make([]StreakRecipient, 0)
	for rows.Next() {
		var recipient StreakRecipient
		if scanErr := rows.Scan(
			&recipient.ID, &recipient.Email, &recipient.FullName,
			&recipient.StudyStreak, &recipient.LastStudyDate,
		); scanErr != nil {
			return nil, scanErr
		}
		recipients = append(recipients, recipient)
	}

	return recipients, rows.Err()
}
