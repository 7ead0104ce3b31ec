package models

import (
	"testing"
	"time"
)

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "Just now"},
		{"just under a minute", now.Add(-59 * time.Second), "Just now"},
		{"one minute", now.Add(-1 * time.Minute), "1 minute ago"},
		{"many minutes", now.Add(-45 * time.Minute), "45 minutes ago"},
		{"one hour", now.Add(-1 * time.Hour), "1 hour ago"},
		{"many hours", now.Add(-23 * time.Hour), "23 hours ago"},
		{"one day", now.Add(-24 * time.Hour), "1 day ago"},
		{"many days", now.Add(-29 * 24 * time.Hour), "29 days ago"},
		{"one month", now.Add(-35 * 24 * time.Hour), "1 month ago"},
		{"many months", now.Add(-90 * 24 * time.Hour), "3 months ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TimeAgo(tt.at, now)
			if got != tt.want {
				t.Errorf("TimeAgo() = %q, want %q", got, tt.want)
			}
		})
	}
}
