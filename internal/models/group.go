package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleMember    = "member"
)

type StudyGroup struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	CourseID    *uuid.UUID `json:"course_id,omitempty"`
	MaxMembers  int        `json:"max_members"`
	IsPrivate   bool       `json:"is_private"`
	MemberCount int        `json:"member_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type GroupMembership struct {
	UserID   uuid.UUID `json:"user_id"`
	GroupID  uuid.UUID `json:"group_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type GroupMember struct {
	UserID   uuid.UUID `json:"user_id"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type Discussion struct {
	ID         uuid.UUID `json:"id"`
	GroupID    uuid.UUID `json:"group_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsPinned   bool      `json:"is_pinned"`
	IsLocked   bool      `json:"is_locked"`
	ReplyCount int       `json:"reply_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type DiscussionReply struct {
	ID           uuid.UUID  `json:"id"`
	DiscussionID uuid.UUID  `json:"discussion_id"`
	AuthorID     uuid.UUID  `json:"author_id"`
	AuthorName   string     `json:"author_name,omitempty"`
	ParentID     *uuid.UUID `json:"parent_id,omitempty"`
	Content      string     `json:"content"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PeerReview targets exactly one of a note or a resource.
type PeerReview struct {
	ID         uuid.UUID  `json:"id"`
	ReviewerID uuid.UUID  `json:"reviewer_id"`
	NoteID     *uuid.UUID `json:"note_id,omitempty"`
	ResourceID *uuid.UUID `json:"resource_id,omitempty"`
	Rating     int        `json:"rating"`
	Feedback   string     `json:"feedback"`
	CreatedAt  time.Time  `json:"created_at"`
}
