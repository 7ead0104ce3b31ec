package services

import (
	"testing"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
)

func TestBadgeSatisfied(t *testing.T) {
	stats := &repository.UserStats{
		TotalStudyHours:  12.5,
		StudyStreak:      7,
		GroupCount:       1,
		DiscussionCount:  3,
		ReviewCount:      25,
		NoteCount:        9,
		ResourceCount:    20,
		LessonsCompleted: 5,
		BadgeCount:       4,
	}

	tests := []struct {
		name        string
		ruleKind    string
		requirement int
		want        bool
	}{
		{"total hours met", models.RuleTotalHours, 10, true},
		{"total hours not met", models.RuleTotalHours, 100, false},
		{"streak exactly at requirement", models.RuleStreakDays, 7, true},
		{"streak below requirement", models.RuleStreakDays, 30, false},
		{"group count met", models.RuleGroupCount, 1, true},
		{"discussion count not met", models.RuleDiscussionCount, 10, false},
		{"review count exactly met", models.RuleReviewCount, 25, true},
		{"note count one short", models.RuleNoteCount, 10, false},
		{"resource count met", models.RuleResourceCount, 20, true},
		{"lessons completed met", models.RuleLessonsCompleted, 5, true},
		{"badge count not met", models.RuleBadgeCount, 10, false},
		{"unknown rule never matches", "secret_handshake", 0, false},
		{"empty rule never matches", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			badge := models.Badge{RuleKind: tt.ruleKind, Requirement: tt.requirement}
			if got := badgeSatisfied(badge, stats); got != tt.want {
				t.Errorf("badgeSatisfied(%s, req=%d) = %v, want %v", tt.ruleKind, tt.requirement, got, tt.want)
			}
		})
	}
}

func TestBadgeSatisfiedFractionalHours(t *testing.T) {
	// 0.98 hours must not satisfy a 1-hour requirement.
	stats := &repository.UserStats{TotalStudyHours: 0.98}
	badge := models.Badge{RuleKind: models.RuleTotalHours, Requirement: 1}

	if badgeSatisfied(badge, stats) {
		t.Error("0.98 hours satisfied a 1-hour requirement")
	}

	stats.TotalStudyHours = 1.0
	if !badgeSatisfied(badge, stats) {
		t.Error("exactly 1.0 hours did not satisfy a 1-hour requirement")
	}
}
