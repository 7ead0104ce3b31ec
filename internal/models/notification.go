package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	NotifyBadge    = "badge"
	NotifyGoal     = "goal"
	NotifyStreak   = "streak"
	NotifySocial   = "social"
	NotifySchedule = "schedule"
	NotifySystem   = "system"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	TimeAgo   string    `json:"time_ago,omitempty"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// Activity types recorded onto the public feed.
const (
	ActivitySessionCompleted = "session_completed"
	ActivityGoalCreated      = "goal_created"
	ActivityBadgeEarned      = "badge_earned"
	ActivityNoteCreated      = "note_created"
	ActivityResourceShared   = "resource_shared"
	ActivityGroupJoined      = "group_joined"
	ActivityGroupCreated     = "group_created"
	ActivityDiscussionPosted = "discussion_posted"
	ActivityReviewGiven      = "review_given"
	ActivityLessonCompleted  = "lesson_completed"
)

type UserActivity struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	UserName     string    `json:"user_name,omitempty"`
	ActivityType string    `json:"activity_type"`
	Description  string    `json:"description"`
	Link         string    `json:"link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	TimeAgo      string    `json:"time_ago,omitempty"`
}

// ActivityEvent is the payload pushed onto the Redis activity queue and
// consumed by the worker pool.
type ActivityEvent struct {
	Type        string    `json:"type"`
	UserID      uuid.UUID `json:"user_id"`
	Description string    `json:"description"`
	Link        string    `json:"link,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// WSMessage is the envelope pushed to connected clients over the socket.
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TimeAgo renders the age of t relative to now in coarse human units.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return agoUnits(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return agoUnits(int(d.Hours()), "hour")
	}
	days := int(d.Hours()) / 24
	if days < 30 {
		return agoUnits(days, "day")
	}
	return agoUnits(days/30, "month")
}

func agoUnits(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
