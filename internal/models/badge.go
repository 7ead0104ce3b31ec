package models

import (
	"time"

	"github.com/google/uuid"
)

// Badge categories.
const (
	BadgeStudy   = "study"
	BadgeSocial  = "social"
	BadgeSkill   = "skill"
	BadgeSpecial = "special"
)

// Rule kinds stored on each catalog entry. The display name is never used
// to select a rule; each badge carries the statistic it compares against
// its requirement.
const (
	RuleTotalHours       = "total_hours"
	RuleStreakDays       = "streak_days"
	RuleGroupCount       = "group_count"
	RuleDiscussionCount  = "discussion_count"
	RuleReviewCount      = "review_count"
	RuleNoteCount        = "note_count"
	RuleResourceCount    = "resource_count"
	RuleLessonsCompleted = "lessons_completed"
	RuleBadgeCount       = "badge_count"
)

// Badge is a catalog entry. The catalog is seeded once and treated as
// reference data; user state lives in UserBadge.
type Badge struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	Category    string    `json:"category"`
	RuleKind    string    `json:"rule_kind"`
	Requirement int       `json:"requirement"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// UserBadge records an award, at most once per (user, badge).
type UserBadge struct {
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  uuid.UUID `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// BadgeStatus merges a catalog entry with the caller's award state.
type BadgeStatus struct {
	Badge
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}
