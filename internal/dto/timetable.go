package dto

import "github.com/noah-isme/university-timetable-api/internal/models"

// GenerateRequest names the version a new solve will produce.
type GenerateRequest struct {
	VersionName string `json:"version_name" validate:"required,min=1,max=120"`
}

// GenerateResponse returns the committed version and its events.
type GenerateResponse struct {
	Version  models.Version          `json:"version"`
	Events   []models.TimetableEvent `json:"events"`
	Status   string                  `json:"status"`
	Penalty  int                     `json:"penalty"`
	Warnings []string                `json:"warnings,omitempty"`
}

// EventInput is the event under test for the validate_event predicate.
type EventInput struct {
	CourseID   string `json:"course_id" validate:"required"`
	RoomID     string `json:"room_id" validate:"required"`
	GroupID    string `json:"group_id" validate:"required"`
	LecturerID string `json:"lecturer_id" validate:"required"`

	Day         string `json:"day" validate:"required"`
	StartMinute int    `json:"start_minute" validate:"min=0"`
	EndMinute   int    `json:"end_minute" validate:"min=0"`
	IsLab       bool   `json:"is_lab"`

	// VersionID scopes the overlap checks to one committed snapshot; empty
	// means "check against nothing else committed yet".
	VersionID string `json:"version_id"`
}

// ValidateEventResponse is a sorted, de-duplicated list of violations. An
// empty list means the event satisfies every invariant.
type ValidateEventResponse struct {
	Violations []string `json:"violations"`
}

// VersionListResponse lists committed versions.
type VersionListResponse struct {
	Versions []models.Version `json:"versions"`
}

// EventListResponse lists events committed under one version.
type EventListResponse struct {
	Events []models.TimetableEvent `json:"events"`
}
