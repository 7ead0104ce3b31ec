package repository

import (
	"strings"
	"testing"
)

// A session that straddles a period boundary belongs to the period it
// started in: one opened Sunday 23:00 that closes Monday 00:30 counts
// toward the old week, not the new one. Both goal sums must therefore
// window on started_at, never on ended_at.
func TestGoalSumsWindowOnStartTime(t *testing.T) {
	queries := map[string]string{
		"sumMinutesQuery":   sumMinutesQuery,
		"behindTargetQuery": behindTargetQuery,
	}

	for name, query := range queries {
		if !strings.Contains(query, "started_at >= $2") {
			t.Errorf("%s: window must compare started_at against the period start:\n%s", name, query)
		}
		if strings.Contains(query, "ended_at >= $2") {
			t.Errorf("%s: window must not compare ended_at against the period start:\n%s", name, query)
		}
		if !strings.Contains(query, "ended_at IS NOT NULL") {
			t.Errorf("%s: open sessions must not count toward the sum:\n%s", name, query)
		}
	}
}
