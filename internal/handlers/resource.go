package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"eduhelm-backend/internal/middleware"
	"eduhelm-backend/internal/models"
	"eduhelm-backend/internal/repository"
	"eduhelm-backend/internal/services"
)

const maxUploadBytes = 50 * 1024 * 1024 // 50MB

type ResourceHandler struct {
	resources   *services.ResourceService
	storagePath string
}

func NewResourceHandler(resources *services.ResourceService, storagePath string) *ResourceHandler {
	return &ResourceHandler{resources: resources, storagePath: storagePath}
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	var req struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		ResourceType string     `json:"resource_type"`
		URL          string     `json:"url"`
		CourseID     *uuid.UUID `json:"course_id"`
		IsPublic     bool       `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resource := &models.SharedResource{
		UserID:       userID,
		CourseID:     req.CourseID,
		Title:        req.Title,
		Description:  req.Description,
		ResourceType: req.ResourceType,
		URL:          req.URL,
		IsPublic:     req.IsPublic,
	}

	resource, err := h.resources.Create(r.Context(), resource)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resource)
}

// Upload accepts a multipart file plus metadata fields and stores the
// file under the configured storage root.
func (h *ResourceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	if r.ContentLength > maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds 50MB limit", r))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	// Sniff the real content type from the first 512 bytes.
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	mimeType := http.DetectContentType(buf[:n])
	file.Seek(0, io.SeekStart)

	relPath := filepath.Join("resources", userID.String(), uuid.New().String()+filepath.Ext(header.Filename))
	fullPath := filepath.Join(h.storagePath, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}
	size, err := io.Copy(dst, file)
	dst.Close()
	if err != nil {
		os.Remove(fullPath)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to store file", r))
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = header.Filename
	}

	resource := &models.SharedResource{
		UserID:       userID,
		Title:        title,
		Description:  r.FormValue("description"),
		ResourceType: resourceTypeForMime(mimeType),
		FilePath:     &relPath,
		FileSize:     &size,
		IsPublic:     r.FormValue("is_public") == "true",
	}
	if courseID, parseErr := uuid.Parse(r.FormValue("course_id")); parseErr == nil {
		resource.CourseID = &courseID
	}

	resource, err = h.resources.Create(r.Context(), resource)
	if err != nil {
		os.Remove(fullPath)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resource)
}

func resourceTypeForMime(mimeType string) string {
	switch {
	case mimeType == "application/pdf":
		return "pdf"
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "audio/"):
		return "audio"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	default:
		return "other"
	}
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	resourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return
	}

	resource, err := h.resources.Get(r.Context(), resourceID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	filter := repository.ResourceFilter{
		ResourceType: r.URL.Query().Get("type"),
		Search:       r.URL.Query().Get("search"),
		Limit:        queryInt(r, "limit", 50),
		Offset:       queryInt(r, "offset", 0),
	}
	if courseID, err := uuid.Parse(r.URL.Query().Get("course_id")); err == nil {
		filter.CourseID = &courseID
	}

	resources, err := h.resources.List(r.Context(), userID, filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": resources})
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	resourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resource := &models.SharedResource{
		ID:          resourceID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		IsPublic:    req.IsPublic,
	}

	resource, err = h.resources.Update(r.Context(), resource)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	resourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return
	}

	deleted, err := h.resources.Delete(r.Context(), resourceID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if deleted.FilePath != nil {
		os.Remove(filepath.Join(h.storagePath, *deleted.FilePath))
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Resource deleted"})
}

func (h *ResourceHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "Not authenticated", r))
		return
	}

	resourceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid resource ID", r))
		return
	}

	resource, err := h.resources.RecordDownload(r.Context(), resourceID, userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	// File-backed resources stream the file; link resources return metadata.
	if resource.FilePath != nil {
		http.ServeFile(w, r, filepath.Join(h.storagePath, *resource.FilePath))
		return
	}

	writeJSON(w, http.StatusOK, resource)
}
