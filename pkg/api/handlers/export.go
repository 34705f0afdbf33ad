package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/talentdb/pkg/api/errors"
	"github.com/jordanlanch/talentdb/pkg/export"
)

// ExportHandler handles candidate export downloads.
type ExportHandler struct {
	service *export.Service
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service *export.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

// ExportCandidates godoc
// @Summary Export candidates
// @Description Download the user's candidates as a CSV or Excel file
// @Tags Export
// @Produce application/octet-stream
// @Param format query string false "Export format (csv or excel)" default(csv)
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates/export [get]
func (h *ExportHandler) ExportCandidates(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}

	result, err := h.service.ExportCandidates(ctx, userID, format)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", result.Filename))
	return c.Blob(200, result.ContentType, result.Data)
}
