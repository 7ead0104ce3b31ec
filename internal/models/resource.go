package models

import (
	"time"

	"github.com/google/uuid"
)

var ResourceTypes = []string{"pdf", "video", "link", "image", "audio", "other"}

type SharedResource struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	CourseID     *uuid.UUID `json:"course_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ResourceType string     `json:"resource_type"`
	FilePath     *string    `json:"file_path,omitempty"`
	FileSize     *int64     `json:"file_size,omitempty"`
	URL          string     `json:"url"`
	Downloads    int        `json:"downloads"`
	Views        int        `json:"views"`
	IsPublic     bool       `json:"is_public"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
