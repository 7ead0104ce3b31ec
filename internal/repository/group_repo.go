package repository

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"eduhelm-backend/internal/models"
)

var (
	ErrGroupFull     = errors.New("group is at capacity")
	ErrAlreadyMember = errors.New("user is already a member")
	ErrNotMember     = errors.New("user is not a member")
)

type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{pool: pool}
}

// Create inserts the group and enrolls the creator as admin atomically.
func (r *GroupRepo) Create(ctx context.Context, g *models.StudyGroup) error {
	g.ID = uuid.New()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO study_groups (id, name, description, creator_id, course_id, max_members, is_private)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, g.ID, g.Name, g.Description, g.CreatorID, g.CourseID, g.MaxMembers, g.IsPrivate,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO group_memberships (user_id, group_id, role)
		VALUES ($1, $2, $3)
	`, g.CreatorID, g.ID, models.RoleAdmin)
	if err != nil {
		return err
	}

	g.MemberCount = 1
	return tx.Commit(ctx)
}

func (r *GroupRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudyGroup, error) {
	g := &models.StudyGroup{}
	err := r.pool.QueryRow(ctx, `
		SELECT g.id, g.name, g.description, g.creator_id, g.course_id, g.max_members, g.is_private,
			(SELECT COUNT(*)::INT FROM group_memberships m WHERE m.group_id = g.id),
			g.created_at, g.updated_at
		FROM study_groups g WHERE g.id = $1
	`, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CourseID, &g.MaxMembers, &g.IsPrivate,
		&g.MemberCount, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// List returns public groups plus private ones the caller belongs to.
func (r *GroupRepo) List(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]models.StudyGroup, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT g.id, g.name, g.description, g.creator_id, g.course_id, g.max_members, g.is_private,
			(SELECT COUNT(*)::INT FROM group_memberships m WHERE m.group_id = g.id),
			g.created_at, g.updated_at
		FROM study_groups g
		WHERE (g.is_private = FALSE
			OR EXISTS (SELECT 1 FROM group_memberships m WHERE m.group_id = g.id AND m.user_id = $1))`
	args := []interface{}{userID}

	if search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		query += ` AND (g.name ILIKE $` + n + ` OR g.description ILIKE $` + n + `)`
	}

	args = append(args, limit)
	query += ` ORDER BY g.created_at DESC LIMIT $` + strconv.Itoa(len(args))
	args = append(args, offset)
	query += ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.StudyGroup, 0)
	for rows.Next() {
		var g models.StudyGroup
		if scanErr := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CourseID, &g.MaxMembers, &g.IsPrivate,
			&g.MemberCount, &g.CreatedAt, &g.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *GroupRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.StudyGroup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT g.id, g.name, g.description, g.creator_id, g.course_id, g.max_members, g.is_private,
			(SELECT COUNT(*)::INT FROM group_memberships m2 WHERE m2.group_id = g.id),
			g.created_at, g.updated_at
		FROM study_groups g
		JOIN group_memberships m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY m.joined_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]models.StudyGroup, 0)
	for rows.Next() {
		var g models.StudyGroup
		if scanErr := rows.Scan(
			&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CourseID, &g.MaxMembers, &g.IsPrivate,
			&g.MemberCount, &g.CreatedAt, &g.UpdatedAt,
		); scanErr != nil {
			return nil, scanErr
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Join enrolls the user as a member. The group row is locked so the
// capacity check and the insert see the same member count.
func (r *GroupRepo) Join(ctx context.Context, groupID, userID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var maxMembers, memberCount int
	err = tx.QueryRow(ctx, `
		SELECT max_members,
			(SELECT COUNT(*)::INT FROM group_memberships WHERE group_id = $1)
		FROM study_groups WHERE id = $1
		FOR UPDATE
	`, groupID).Scan(&maxMembers, &memberCount)
	if err != nil {
		return err
	}

	if maxMembers > 0 && memberCount >= maxMembers {
		return ErrGroupFull
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO group_memberships (user_id, group_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, group_id) DO NOTHING
	`, userID, groupID, models.RoleMember)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyMember
	}

	return tx.Commit(ctx)
}

func (r *GroupRepo) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM group_memberships WHERE group_id = $1 AND user_id = $2", groupID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

// Delete removes the group; memberships and discussions cascade.
func (r *GroupRepo) Delete(ctx context.Context, groupID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM study_groups WHERE id = $1", groupID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *GroupRepo) GetMembership(ctx context.Context, groupID, userID uuid.UUID) (*models.GroupMembership, error) {
	m := &models.GroupMembership{}
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, group_id, role, joined_at
		FROM group_memberships
		WHERE group_id = $1 AND user_id = $2
	`, groupID, userID).Scan(&m.UserID, &m.GroupID, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *GroupRepo) ListMembers(ctx context.Context, groupID uuid.UUID) ([]models.GroupMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.user_id, u.full_name, m.role, m.joined_at
		FROM group_memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
		ORDER BY m.joined_at
	`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]models.GroupMember, 0)
	for rows.Next() {
		var m models.GroupMember
		if scanErr := rows.Scan(&m.UserID, &m.FullName, &m.Role, &m.JoinedAt); scanErr != nil {
			return nil, scanErr
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *GroupRepo) UpdateMemberRole(ctx context.Context, groupID, userID uuid.UUID, role string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE group_memberships SET role = $1
		WHERE group_id = $2 AND user_id = $3
	`, role, groupID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotMember
	}
	return nil
}

func (r *GroupRepo) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM group_memberships WHERE user_id = $1", userID).Scan(&count)
	return count, err
}
