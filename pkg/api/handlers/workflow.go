package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/talentdb/pkg/api/errors"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/workflow"
)

// WorkflowHandler handles workflow automation operations.
type WorkflowHandler struct {
	service *workflow.Service
	engine  *workflow.Engine
}

// NewWorkflowHandler creates a new workflow handler.
func NewWorkflowHandler(service *workflow.Service, engine *workflow.Engine) *WorkflowHandler {
	return &WorkflowHandler{service: service, engine: engine}
}

// TestWorkflowRequest identifies the candidate a workflow test run targets.
type TestWorkflowRequest struct {
	CandidateID int `json:"candidate_id" validate:"required"`
}

// CreateWorkflow godoc
// @Summary Create workflow
// @Description Create a new email automation workflow
// @Tags Workflows
// @Accept json
// @Produce json
// @Param body body workflow.CreateWorkflowRequest true "Workflow details"
// @Success 201 {object} models.Workflow
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/workflows [post]
func (h *WorkflowHandler) CreateWorkflow(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	var req workflow.CreateWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	w, err := h.service.Create(ctx, userID, req)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusCreated, w)
}

// ListWorkflows godoc
// @Summary List workflows
// @Description Get all workflows owned by the user
// @Tags Workflows
// @Produce json
// @Success 200 {array} models.Workflow
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/workflows [get]
func (h *WorkflowHandler) ListWorkflows(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	workflows, err := h.service.List(ctx, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, workflows)
}

// GetWorkflow godoc
// @Summary Get workflow
// @Description Get a single workflow by ID
// @Tags Workflows
// @Produce json
// @Param id path int true "Workflow ID"
// @Success 200 {object} models.Workflow
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/workflows/{id} [get]
func (h *WorkflowHandler) GetWorkflow(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	w, err := h.service.Get(ctx, id, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, w)
}

// UpdateWorkflow godoc
// @Summary Update workflow
// @Description Update workflow fields; omitted fields keep their value
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path int true "Workflow ID"
// @Param body body workflow.UpdateWorkflowRequest true "Update details"
// @Success 200 {object} models.Workflow
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/workflows/{id} [put]
func (h *WorkflowHandler) UpdateWorkflow(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	var req workflow.UpdateWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	w, err := h.service.Update(ctx, id, userID, req)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, w)
}

// DeleteWorkflow godoc
// @Summary Delete workflow
// @Description Delete a workflow; past executions are kept
// @Tags Workflows
// @Param id path int true "Workflow ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/workflows/{id} [delete]
func (h *WorkflowHandler) DeleteWorkflow(c echo.Context) error {
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

// ListExecutions godoc
// @Summary List workflow executions
// @Description Get the execution history of a workflow, newest first
// @Tags Workflows
// @Produce json
// @Param id path int true "Workflow ID"
// @Success 200 {array} models.WorkflowExecution
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/workflows/{id}/executions [get]
func (h *WorkflowHandler) ListExecutions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	executions, err := h.service.Executions(ctx, id, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, executions)
}

// TestWorkflow godoc
// @Summary Test workflow
// @Description Run a workflow against a candidate, ignoring the enabled flag
// @Tags Workflows
// @Accept json
// @Produce json
// @Param id path int true "Workflow ID"
// @Param body body TestWorkflowRequest true "Target candidate"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/workflows/{id}/test [post]
func (h *WorkflowHandler) TestWorkflow(c echo.Context) error {
	// Test runs may sit in a configured delay, so no short timeout here.
	ctx := c.Request().Context()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	var req TestWorkflowRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if err := h.engine.ExecuteWorkflow(ctx, id, req.CandidateID, userID, true); err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "executed"})
}

// pathID parses the :id path parameter. On failure it writes a 400
// response and reports ok=false; the handler should return nil.
func pathID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "ID must be a valid number",
		})
		return 0, false
	}
	return id, true
}
