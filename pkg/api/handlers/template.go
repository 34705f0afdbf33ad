package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/talentdb/pkg/api/errors"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/template"
)

// TemplateHandler handles email template operations.
type TemplateHandler struct {
	service *template.Service
}

// NewTemplateHandler creates a new template handler.
func NewTemplateHandler(service *template.Service) *TemplateHandler {
	return &TemplateHandler{service: service}
}

// CreateTemplate godoc
// @Summary Create email template
// @Tags Templates
// @Accept json
// @Produce json
// @Param body body template.CreateTemplateRequest true "Template details"
// @Success 201 {object} models.Template
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/templates [post]
func (h *TemplateHandler) CreateTemplate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	var req template.CreateTemplateRequest
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

// ListTemplates godoc
// @Summary List email templates
// @Tags Templates
// @Produce json
// @Success 200 {array} models.Template
// @Security BearerAuth
// @Router /api/v1/templates [get]
func (h *TemplateHandler) ListTemplates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	templates, err := h.service.List(ctx, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, templates)
}

// GetTemplate godoc
// @Summary Get email template
// @Tags Templates
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.Template
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	tmpl, err := h.service.Get(ctx, id, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, tmpl)
}

// UpdateTemplate godoc
// @Summary Update email template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param body body template.UpdateTemplateRequest true "Update details"
// @Success 200 {object} models.Template
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	var req template.UpdateTemplateRequest
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

// DeleteTemplate godoc
// @Summary Delete email template
// @Tags Templates
// @Param id path int true "Template ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c echo.Context) error {
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
