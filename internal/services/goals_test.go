package services

import (
	"testing"
	"time"

	"eduhelm-backend/internal/models"
)

func TestPeriodStart(t *testing.T) {
	// Sunday June 15 2025, mid-afternoon.
	now := time.Date(2025, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name     string
		goalType string
		now      time.Time
		want     time.Time
	}{
		{"daily is midnight today", models.GoalDaily, now, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"weekly on sunday goes back to monday", models.GoalWeekly, now, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
		{"weekly on monday is midnight today", models.GoalWeekly, time.Date(2025, 6, 9, 10, 0, 0, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
		{"monthly is first of month", models.GoalMonthly, now, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"monthly on the first", models.GoalMonthly, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"weekly spanning month boundary", models.GoalWeekly, time.Date(2025, 7, 2, 9, 0, 0, 0, time.UTC), time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := periodStart(tt.goalType, tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("periodStart(%s, %v) = %v, want %v", tt.goalType, tt.now, got, tt.want)
			}
		})
	}
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		target        int
		wantPct       int
		wantRemaining int
	}{
		{"no progress", 0, 120, 0, 120},
		{"halfway", 60, 120, 50, 60},
		{"truncates not rounds", 50, 120, 41, 70},
		{"exactly met", 120, 120, 100, 0},
		{"over target caps at 100", 200, 120, 100, 0},
		{"zero target reads as zero", 60, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progressOf(tt.total, tt.target)
			if got.Percentage != tt.wantPct {
				t.Errorf("progressOf(%d, %d).Percentage = %d, want %d", tt.total, tt.target, got.Percentage, tt.wantPct)
			}
			if got.RemainingMinutes != tt.wantRemaining {
				t.Errorf("progressOf(%d, %d).RemainingMinutes = %d, want %d", tt.total, tt.target, got.RemainingMinutes, tt.wantRemaining)
			}
		})
	}
}

func TestValidGoalType(t *testing.T) {
	for _, goalType := range []string{"daily", "weekly", "monthly"} {
		if !validGoalType(goalType) {
			t.Errorf("validGoalType(%q) = false, want true", goalType)
		}
	}
	for _, goalType := range []string{"", "yearly", "Daily", "hourly"} {
		if validGoalType(goalType) {
			t.Errorf("validGoalType(%q) = true, want false", goalType)
		}
	}
}
