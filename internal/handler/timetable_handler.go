package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/university-timetable-api/internal/dto"
	appErrors "github.com/noah-isme/university-timetable-api/pkg/errors"
	"github.com/noah-isme/university-timetable-api/pkg/response"
)

// timetableService is the narrow surface the handler depends on.
type timetableService interface {
	Generate(ctx context.Context, versionName string) (*dto.GenerateResponse, error)
	ValidateEvent(ctx context.Context, input dto.EventInput) ([]string, error)
	ListVersions(ctx context.Context) (dto.VersionListResponse, error)
	ListEvents(ctx context.Context, versionID string) (dto.EventListResponse, error)
}

// TimetableHandler wires HTTP endpoints to the timetable solver service.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler creates a new handler.
func NewTimetableHandler(svc timetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a timetable version
// @Description Runs the solver against the current catalog snapshot and commits the result as a new version
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateRequest true "Version name"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}

	res, err := h.service.Generate(c.Request.Context(), req.VersionName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}

// ValidateEvent godoc
// @Summary Validate a candidate timetable event
// @Description Checks a single event against the scheduling invariants without committing it
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.EventInput true "Candidate event"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /timetables/validate-event [post]
func (h *TimetableHandler) ValidateEvent(c *gin.Context) {
	var input dto.EventInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}

	violations, err := h.service.ValidateEvent(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.ValidateEventResponse{Violations: violations}, nil)
}

// ListVersions godoc
// @Summary List committed timetable versions
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables/versions [get]
func (h *TimetableHandler) ListVersions(c *gin.Context) {
	res, err := h.service.ListVersions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// ListEvents godoc
// @Summary List events committed under a version
// @Tags Timetable
// @Produce json
// @Param id path string true "Version ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetables/versions/{id}/events [get]
func (h *TimetableHandler) ListEvents(c *gin.Context) {
	versionID := c.Param("id")
	if versionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "version id is required"))
		return
	}

	res, err := h.service.ListEvents(c.Request.Context(), versionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}
