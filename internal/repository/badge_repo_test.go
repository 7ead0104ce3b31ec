package repository

import (
	"strings"
	"testing"
)

// Both badge reads serve users directly, so inactive rows (retired or
// manually-awarded seeds) must stay out of each.
func TestBadgeQueriesFilterInactive(t *testing.T) {
	queries := map[string]string{
		"catalogQuery":     catalogQuery,
		"badgeStatusQuery": badgeStatusQuery,
	}

	for name, query := range queries {
		if !strings.Contains(query, "is_active = TRUE") {
			t.Errorf("%s: expected an is_active filter, got:\n%s", name, query)
		}
	}
}
