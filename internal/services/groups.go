package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

type GroupService struct {
	groupRepo      *repository.GroupRepo
	discussionRepo *repository.DiscussionRepo
	notifier       *Notifier
	activity       *ActivityPublisher
}

func NewGroupService(groupRepo *repository.GroupRepo, discussionRepo *repository.DiscussionRepo, notifier *Notifier, activity *ActivityPublisher) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		discussionRepo: discussionRepo,
		notifier:       notifier,
		activity:       activity,
	}
}

func (s *GroupService) Create(ctx context.Context, group *models.StudyGroup) (*models.StudyGroup, error) {
	fieldErrors := make(map[string]string)
	if group.Name == "" {
		fieldErrors["name"] = "Group name is required"
	}
	if group.MaxMembers < 0 {
		fieldErrors["max_members"] = "Max members cannot be negative"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	s.activity.Publish(ctx, models.ActivityGroupCreated, group.CreatorID,
		"created the study group \""+group.Name+"\"", "/groups/"+group.ID.String())

	return group, nil
}

func (s *GroupService) Get(ctx context.Context, groupID, userID uuid.UUID) (*models.StudyGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Group not found"}
		}
		return nil, err
	}

	if group.IsPrivate {
		if _, memberErr := s.groupRepo.GetMembership(ctx, groupID, userID); memberErr != nil {
			return nil, &ForbiddenError{Message: "This group is private"}
		}
	}
	return group, nil
}

func (s *GroupService) List(ctx context.Context, userID uuid.UUID, search string, limit, offset int) ([]models.StudyGroup, error) {
	return s.groupRepo.List(ctx, userID, search, limit, offset)
}

func (s *GroupService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.StudyGroup, error) {
	return s.groupRepo.ListForUser(ctx, userID)
}

func (s *GroupService) Join(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Group not found"}
		}
		return err
	}

	err = s.groupRepo.Join(ctx, groupID, userID)
	switch {
	case errors.Is(err, repository.ErrGroupFull):
		return &ConflictError{Message: "Group is at capacity"}
	case errors.Is(err, repository.ErrAlreadyMember):
		return &ConflictError{Message: "You are already a member of this group"}
	case err != nil:
		return err
	}

	s.activity.Publish(ctx, models.ActivityGroupJoined, userID,
		"joined the study group \""+group.Name+"\"", "/groups/"+group.ID.String())

	return nil
}

// Leave removes the caller's membership. The creator cannot leave; they
// delete the group instead.
func (s *GroupService) Leave(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Group not found"}
		}
		return err
	}
	if group.CreatorID == userID {
		return &ConflictError{Message: "The group creator cannot leave; delete the group instead"}
	}

	err = s.groupRepo.Leave(ctx, groupID, userID)
	if errors.Is(err, repository.ErrNotMember) {
		return &NotFoundError{Message: "You are not a member of this group"}
	}
	return err
}

func (s *GroupService) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Group not found"}
		}
		return err
	}
	if group.CreatorID != userID {
		return &ForbiddenError{Message: "Only the group creator can delete the group"}
	}

	_, err = s.groupRepo.Delete(ctx, groupID)
	return err
}

func (s *GroupService) ListMembers(ctx context.Context, groupID, userID uuid.UUID) ([]models.GroupMember, error) {
	if _, err := s.Get(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.groupRepo.ListMembers(ctx, groupID)
}

// UpdateMemberRole lets a group admin promote or demote members.
func (s *GroupService) UpdateMemberRole(ctx context.Context, groupID, actorID, memberID uuid.UUID, role string) error {
	if role != models.RoleModerator && role != models.RoleMember {
		return &ValidationError{Fields: map[string]string{"role": "Role must be moderator or member"}}
	}

	actor, err := s.groupRepo.GetMembership(ctx, groupID, actorID)
	if err != nil || actor.Role != models.RoleAdmin {
		return &ForbiddenError{Message: "Only group admins can change roles"}
	}

	err = s.groupRepo.UpdateMemberRole(ctx, groupID, memberID, role)
	if errors.Is(err, repository.ErrNotMember) {
		return &NotFoundError{Message: "Member not found"}
	}
	return err
}

func (s *GroupService) CreateDiscussion(ctx context.Context, d *models.Discussion) (*models.Discussion, error) {
	fieldErrors := make(map[string]string)
	if d.Title == "" {
		fieldErrors["title"] = "Title is required"
	}
	if d.Content == "" {
		fieldErrors["content"] = "Content is required"
	}
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	// Only members can post.
	if _, err := s.groupRepo.GetMembership(ctx, d.GroupID, d.AuthorID); err != nil {
		return nil, &ForbiddenError{Message: "Only group members can start discussions"}
	}

	if err := s.discussionRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.activity.Publish(ctx, models.ActivityDiscussionPosted, d.AuthorID,
		"started the discussion \""+d.Title+"\"", "/groups/"+d.GroupID.String()+"/discussions/"+d.ID.String())

	return d, nil
}

func (s *GroupService) GetDiscussion(ctx context.Context, discussionID, userID uuid.UUID) (*models.Discussion, []models.DiscussionReply, error) {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &NotFoundError{Message: "Discussion not found"}
		}
		return nil, nil, err
	}

	if _, err := s.Get(ctx, discussion.GroupID, userID); err != nil {
		return nil, nil, err
	}

	replies, err := s.discussionRepo.ListReplies(ctx, discussionID)
	if err != nil {
		return nil, nil, err
	}
	return discussion, replies, nil
}

func (s *GroupService) ListDiscussions(ctx context.Context, groupID, userID uuid.UUID, limit, offset int) ([]models.Discussion, error) {
	if _, err := s.Get(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.discussionRepo.ListByGroup(ctx, groupID, limit, offset)
}

// Reply posts to a discussion and notifies the discussion author.
func (s *GroupService) Reply(ctx context.Context, reply *models.DiscussionReply) (*models.DiscussionReply, error) {
	if reply.Content == "" {
		return nil, &ValidationError{Fields: map[string]string{"content": "Content is required"}}
	}

	discussion, err := s.discussionRepo.GetByID(ctx, reply.DiscussionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Discussion not found"}
		}
		return nil, err
	}
	if discussion.IsLocked {
		return nil, &ConflictError{Message: "Discussion is locked"}
	}
	if _, err := s.groupRepo.GetMembership(ctx, discussion.GroupID, reply.AuthorID); err != nil {
		return nil, &ForbiddenError{Message: "Only group members can reply"}
	}

	if err := s.discussionRepo.CreateReply(ctx, reply); err != nil {
		return nil, err
	}

	if discussion.AuthorID != reply.AuthorID {
		link := "/groups/" + discussion.GroupID.String() + "/discussions/" + discussion.ID.String()
		s.notifier.Send(ctx, discussion.AuthorID, models.NotifySocial,
			"New reply in \""+discussion.Title+"\"", "Someone replied to your discussion.", link)
	}

	return reply, nil
}

// SetDiscussionPinned requires admin or moderator standing in the group.
func (s *GroupService) SetDiscussionPinned(ctx context.Context, discussionID, actorID uuid.UUID, pinned bool) error {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Discussion not found"}
		}
		return err
	}
	if err := s.requireModerator(ctx, discussion.GroupID, actorID); err != nil {
		return err
	}
	return s.discussionRepo.SetPinned(ctx, discussionID, pinned)
}

func (s *GroupService) SetDiscussionLocked(ctx context.Context, discussionID, actorID uuid.UUID, locked bool) error {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Discussion not found"}
		}
		return err
	}
	if err := s.requireModerator(ctx, discussion.GroupID, actorID); err != nil {
		return err
	}
	return s.discussionRepo.SetLocked(ctx, discussionID, locked)
}

// DeleteDiscussion is allowed for the thread author and group moderators.
func (s *GroupService) DeleteDiscussion(ctx context.Context, discussionID, actorID uuid.UUID) error {
	discussion, err := s.discussionRepo.GetByID(ctx, discussionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Discussion not found"}
		}
		return err
	}

	if discussion.AuthorID != actorID {
		if err := s.requireModerator(ctx, discussion.GroupID, actorID); err != nil {
			return err
		}
	}

	_, err = s.discussionRepo.Delete(ctx, discussionID)
	return err
}

func (s *GroupService) requireModerator(ctx context.Context, groupID, userID uuid.UUID) error {
	membership, err := s.groupRepo.GetMembership(ctx, groupID, userID)
	if err != nil {
		return &ForbiddenError{Message: "Only group moderators can do that"}
	}
	if membership.Role != models.RoleAdmin && membership.Role != models.RoleModerator {
		return &ForbiddenError{Message: "Only group moderators can do that"}
	}
	return nil
}
