package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"eduhelm-backend/internal/middleware"
	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/services"
)

type ScheduleHandler struct {
	schedules *services.ScheduleService
}

func NewScheduleHandler(schedules *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	var req struct {
		Title                 string     `json:"title"`
		Description           string     `json:"description"`
		ScheduledStart        time.Time  `json:"scheduled_start"`
		ScheduledEnd          *time.Time `json:"scheduled_end"`
		DurationMinutes       *int       `json:"duration_minutes"`
		Recurrence            string     `json:"recurrence"`
		ReminderMinutesBefore int        `json:"reminder_minutes_before"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	schedule := &models.StudySchedule{
		UserID:                userID,
		Title:                 req.Title,
		Description:           req.Description,
		ScheduledStart:        req.ScheduledStart,
		ScheduledEnd:          req.ScheduledEnd,
		DurationMinutes:       req.DurationMinutes,
		Recurrence:            req.Recurrence,
		ReminderMinutesBefore: req.ReminderMinutesBefore,
	}

	schedule, err := h.schedules.Create(r.Context(), schedule)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	schedules, err := h.schedules.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"schedules": schedules})
}

func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	scheduleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid schedule ID", r))
		return
	}

	if err := h.schedules.Delete(r.Context(), scheduleID, userID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule removed"})
}
