package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/jordanlanch/talentdb/pkg/api/errors"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/offer"
)

// OfferHandler handles offer letter operations.
type OfferHandler struct {
	service *offer.Service
}

// NewOfferHandler creates a new offer handler.
func NewOfferHandler(service *offer.Service) *OfferHandler {
	return &OfferHandler{service: service}
}

// CreateOffer godoc
// @Summary Create offer
// @Description Create a draft offer for a candidate
// @Tags Offers
// @Accept json
// @Produce json
// @Param body body offer.CreateOfferRequest true "Offer details"
// @Success 201 {object} models.Offer
// @Failure 400 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/offers [post]
func (h *OfferHandler) CreateOffer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	userID := c.Get("user_id").(int)

	var req offer.CreateOfferRequest
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

// GetOffer godoc
// @Summary Get offer
// @Tags Offers
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} models.Offer
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/offers/{id} [get]
func (h *OfferHandler) GetOffer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	o, err := h.service.Get(ctx, id, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, o)
}

// ListOffersForCandidate godoc
// @Summary List offers for candidate
// @Description Get all offers extended to a candidate, newest first
// @Tags Offers
// @Produce json
// @Param id path int true "Candidate ID"
// @Success 200 {array} models.Offer
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/candidates/{id}/offers [get]
func (h *OfferHandler) ListOffersForCandidate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	candidateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Candidate ID must be a valid number",
		})
	}
	userID := c.Get("user_id").(int)

	offers, err := h.service.ListForCandidate(ctx, candidateID, userID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, offers)
}

// UpdateOffer godoc
// @Summary Update offer
// @Description Update offer fields or move it to a new status
// @Tags Offers
// @Accept json
// @Produce json
// @Param id path int true "Offer ID"
// @Param body body offer.UpdateOfferRequest true "Update details"
// @Success 200 {object} models.Offer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/v1/offers/{id} [put]
func (h *OfferHandler) UpdateOffer(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	id, ok := pathID(c)
	if !ok {
		return nil
	}
	userID := c.Get("user_id").(int)

	var req offer.UpdateOfferRequest
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
