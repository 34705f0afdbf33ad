package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/talentdb/pkg/api/errors"
	"github.com/jordanlanch/talentdb/pkg/jobs"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// JobHandler handles job posting operations.
type JobHandler struct {
	service *jobs.Service
}

// NewJobHandler creates a new job handler.
func NewJobHandler(service *jobs.Service) *JobHandler {
	return &JobHandler{service: service}
}

// CreateJob godoc
// @Summary Create job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Param body body jobs.CreateJobRequest true "Job details"
// @Success 201 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/jobs [post]
func (h *JobHandler) CreateJob(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	var req jobs.CreateJobRequest
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

// ListJobs godoc
// @Summary List job postings
// @Tags Jobs
// @Produce json
// @Success 200 {array} models.Job
// @Security BearerAuth
// @Router /api/v1/jobs [get]
func (h *JobHandler) ListJobs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	list, err := h.service.List(ctx, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, list)
}

// GetJob godoc
// @Summary Get job posting
// @Tags Jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} models.Job
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/jobs/{id} [get]
func (h *JobHandler) GetJob(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	job, err := h.service.Get(ctx, id, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, job)
}

// UpdateJob godoc
// @Summary Update job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param body body jobs.UpdateJobRequest true "Update details"
// @Success 200 {object} models.Job
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/jobs/{id} [put]
func (h *JobHandler) UpdateJob(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	var req jobs.UpdateJobRequest
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

// DeleteJob godoc
// @Summary Delete job posting
// @Tags Jobs
// @Param id path int true "Job ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c echo.Context) error {
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
