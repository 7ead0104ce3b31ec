package repository

import "testing"

func TestClampFeedLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero falls back to page size", 0, 20},
		{"negative falls back to page size", -3, 20},
		{"small value passes through", 5, 5},
		{"page size passes through", 20, 20},
		{"oversized value is capped", 100, 20},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampFeedLimit(tc.limit); got != tc.want {
				t.Errorf("clampFeedLimit(%d) = %d, want %d", tc.limit, got, tc.want)
			}
		})
	}
}
