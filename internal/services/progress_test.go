package services

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	today := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	twoDaysAgo := today.AddDate(0, 0, -2)
	tomorrow := today.AddDate(0, 0, 1)

	tests := []struct {
		name      string
		current   int
		lastStudy *time.Time
		want      int
	}{
		{"first session ever", 0, nil, 1},
		{"already studied today", 5, &today, 5},
		{"studied yesterday", 5, &yesterday, 6},
		{"two day gap resets", 10, &twoDaysAgo, 1},
		{"clock skew future date resets", 10, &tomorrow, 1},
		{"yesterday from zero", 0, &yesterday, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextStreak(tt.current, tt.lastStudy, today)
			if got != tt.want {
				t.Errorf("nextStreak(%d, %v) = %d, want %d", tt.current, tt.lastStudy, got, tt.want)
			}
		})
	}
}

func TestNextStreakIgnoresTimeOfDay(t *testing.T) {
	// A session closed at 23:59 yesterday still counts as yesterday.
	today := time.Date(2025, 6, 15, 0, 1, 0, 0, time.UTC)
	lateLastNight := time.Date(2025, 6, 14, 23, 59, 0, 0, time.UTC)

	if got := nextStreak(3, &lateLastNight, today); got != 4 {
		t.Errorf("nextStreak across midnight = %d, want 4", got)
	}
}
