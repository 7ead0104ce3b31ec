package handlers

import (
	"net/http"

	"eduhelm-backend/internal/middleware"
	"eduhelm-backend/internal/services"
)

type BadgeHandler struct {
	badges *services.BadgeService
}

func NewBadgeHandler(badges *services.BadgeService) *BadgeHandler {
	return &BadgeHandler{badges: badges}
}

func (h *BadgeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	badges, err := h.badges.ListForUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
}

// Stats returns the aggregate counters shown on the profile page (the
// same numbers the badge rules evaluate).
func (h *BadgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	stats, err := h.badges.UserStats(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Check runs an eligibility pass and reports what was newly awarded.
func (h *BadgeHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	newlyEarned, err := h.badges.CheckEligibility(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"newly_earned": newlyEarned})
}
