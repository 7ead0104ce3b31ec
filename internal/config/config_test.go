package config

import (
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "EDUHELM_TEST_STR", "redis://cache:6379", "redis://localhost:6379", "redis://cache:6379"},
		{"uses default when unset", "EDUHELM_TEST_STR_UNSET", "", "./uploads", "./uploads"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "EDUHELM_TEST_INT", "8", 4, 8},
		{"parses zero", "EDUHELM_TEST_INT_ZERO", "0", 4, 0},
		{"uses default when unset", "EDUHELM_TEST_INT_UNSET", "", 4, 4},
		{"uses default for non-numeric", "EDUHELM_TEST_INT_BAD", "four", 4, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("EDUHELM_TEST_REQUIRED_MISSING")
	mustGetEnv("EDUHELM_TEST_REQUIRED_MISSING")
}

func TestMustGetEnv_ReturnsValue(t *testing.T) {
	os.Setenv("EDUHELM_TEST_REQUIRED", "postgres://eduhelm:secret@db/eduhelm")
	defer os.Unsetenv("EDUHELM_TEST_REQUIRED")

	result := mustGetEnv("EDUHELM_TEST_REQUIRED")
	if result != "postgres://eduhelm:secret@db/eduhelm" {
		t.Errorf("Expected the set value, got %q", result)
	}
}
