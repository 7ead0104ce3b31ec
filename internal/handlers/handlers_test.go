package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/services"
)

// ─── Error Envelope Tests ───

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"email": "Email is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "Already exists"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "Note not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "Invalid credentials"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "Admins only"}, http.StatusForbidden, "FORBIDDEN"},
		{"rate limited", &services.RateLimitError{Message: "Too many attempts"}, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil)

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestHandleServiceError_ValidationFields(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/goals", nil)

	handleServiceError(rr, req, &services.ValidationError{Fields: map[string]string{
		"goal_type":      "Must be daily, weekly, or monthly",
		"target_minutes": "Must be positive",
	}})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if len(resp.Error.Fields) != 2 {
		t.Fatalf("Expected 2 field errors, got %d", len(resp.Error.Fields))
	}
	if resp.Error.Fields["target_minutes"] != "Must be positive" {
		t.Errorf("Unexpected field message: %q", resp.Error.Fields["target_minutes"])
	}
}

func TestErrorResp_IncludesRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/badges", nil)
	req.Header.Set("X-Request-ID", "req-123")

	resp := errorResp("NOT_FOUND", "Badge not found", req)

	if resp.Error.RequestID != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", resp.Error.RequestID)
	}
	if resp.Error.Message != "Badge not found" {
		t.Errorf("Unexpected message: %q", resp.Error.Message)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusCreated, map[string]string{"message": "Created"})

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}

	var result map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result["message"] != "Created" {
		t.Errorf("Expected message 'Created', got %q", result["message"])
	}
}

// ─── Query Parsing Tests ───

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		key      string
		fallback int
		want     int
	}{
		{"present", "/api/v1/activity?limit=25", "limit", 50, 25},
		{"missing", "/api/v1/activity", "limit", 50, 50},
		{"not a number", "/api/v1/activity?limit=abc", "limit", 50, 50},
		{"zero", "/api/v1/activity?offset=0", "offset", 10, 0},
		{"negative", "/api/v1/activity?offset=-5", "offset", 0, -5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			if got := queryInt(req, tc.key, tc.fallback); got != tc.want {
				t.Errorf("queryInt(%q, %d) = %d, want %d", tc.key, tc.fallback, got, tc.want)
			}
		})
	}
}
