package models

import (
	"time"

	"github.com/google/uuid"
)

// StudySession is a timed study interval. A session is active while
// ended_at is NULL; closing it stamps the end time and the duration in
// minutes. At most one active session per user (partial unique index).
type StudySession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	CourseID        *uuid.UUID `json:"course_id,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Notes           string     `json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
}

const (
	GoalDaily   = "daily"
	GoalWeekly  = "weekly"
	GoalMonthly = "monthly"
)

// StudyGoal is a target in minutes over a rolling period. At most one
// active goal per (user, kind); replacing a goal deactivates the old one.
type StudyGoal struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	GoalType      string    `json:"goal_type"`
	TargetMinutes int       `json:"target_minutes"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

type GoalProgress struct {
	TotalMinutes     int `json:"total_minutes"`
	TargetMinutes    int `json:"target_minutes"`
	Percentage       int `json:"percentage"`
	RemainingMinutes int `json:"remaining_minutes"`
}

type StudySchedule struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"user_id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description"`
	ScheduledStart        time.Time  `json:"scheduled_start"`
	ScheduledEnd          *time.Time `json:"scheduled_end,omitempty"`
	DurationMinutes       *int       `json:"duration_minutes,omitempty"`
	Recurrence            string     `json:"recurrence"`
	ReminderMinutesBefore int        `json:"reminder_minutes_before"`
	IsActive              bool       `json:"is_active"`
	CreatedAt             time.Time  `json:"created_at"`
}
