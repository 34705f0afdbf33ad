package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/talentdb/pkg/api/errors"
	"github.com/jordanlanch/talentdb/pkg/candidate"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// CandidateHandler handles candidate pipeline operations.
type CandidateHandler struct {
	service *candidate.Service
}

// NewCandidateHandler creates a new candidate handler.
func NewCandidateHandler(service *candidate.Service) *CandidateHandler {
	return &CandidateHandler{service: service}
}

// ChangeStageRequest is the body of a stage transition request.
type ChangeStageRequest struct {
	Stage models.Stage `json:"stage" validate:"required"`
}

// CreateCandidate godoc
// @Summary Create candidate
// @Description Add a candidate to the pipeline
// @Tags Candidates
// @Accept json
// @Produce json
// @Param body body candidate.CreateCandidateRequest true "Candidate details"
// @Success 201 {object} models.Candidate
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates [post]
func (h *CandidateHandler) CreateCandidate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	var req candidate.CreateCandidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	created, err := h.service.Create(ctx, userID, req)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusCreated, created)
}

// ListCandidates godoc
// @Summary List candidates
// @Description Get all of the user's candidates, newest first
// @Tags Candidates
// @Produce json
// @Success 200 {array} models.Candidate
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates [get]
func (h *CandidateHandler) ListCandidates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	candidates, err := h.service.List(ctx, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, candidates)
}

// GetCandidate godoc
// @Summary Get candidate
// @Description Get a single candidate by ID
// @Tags Candidates
// @Produce json
// @Param id path int true "Candidate ID"
// @Success 200 {object} models.Candidate
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates/{id} [get]
func (h *CandidateHandler) GetCandidate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	cand, err := h.service.Get(ctx, id, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, cand)
}

// UpdateCandidate godoc
// @Summary Update candidate
// @Description Update candidate fields; stage changes go through the stage endpoint
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path int true "Candidate ID"
// @Param body body candidate.UpdateCandidateRequest true "Update details"
// @Success 200 {object} models.Candidate
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates/{id} [put]
func (h *CandidateHandler) UpdateCandidate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	var req candidate.UpdateCandidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	updated, err := h.service.Update(ctx, id, userID, req)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// ChangeStage godoc
// @Summary Change candidate stage
// @Description Move a candidate to a new pipeline stage, triggering any matching workflows
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path int true "Candidate ID"
// @Param body body ChangeStageRequest true "Target stage"
// @Success 200 {object} models.Candidate
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates/{id}/stage [put]
func (h *CandidateHandler) ChangeStage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	var req ChangeStageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	updated, err := h.service.ChangeStage(ctx, id, userID, req.Stage)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteCandidate godoc
// @Summary Delete candidate
// @Description Remove a candidate from the pipeline
// @Tags Candidates
// @Param id path int true "Candidate ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates/{id} [delete]
func (h *CandidateHandler) DeleteCandidate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	if err := h.service.Delete(ctx, id, userID); err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
