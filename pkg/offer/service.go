package offer

import (
	"context"
	"fmt"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

var validStatuses = map[string]bool{
	models.OfferDraft:       true,
	models.OfferSent:        true,
	models.OfferViewed:      true,
	models.OfferNegotiating: true,
	models.OfferAccepted:    true,
	models.OfferDeclined:    true,
	models.OfferExpired:     true,
}

// Service handles offer letter operations.
type Service struct {
	offers     domain.OfferStore
	candidates domain.CandidateStore
}

// NewService creates a new offer service.
func NewService(offers domain.OfferStore, candidates domain.CandidateStore) *Service {
	return &Service{offers: offers, candidates: candidates}
}

// CreateOfferRequest represents a request to create an offer.
type CreateOfferRequest struct {
	CandidateID    int      `json:"candidate_id" validate:"required"`
	PositionTitle  string   `json:"position_title" validate:"required,max=200"`
	SalaryAmount   *int64   `json:"salary_amount,omitempty" validate:"omitempty,min=0"`
	SalaryCurrency string   `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	SalaryPeriod   string   `json:"salary_period,omitempty" validate:"omitempty,oneof=yearly monthly hourly"`
	StartDate      *string  `json:"start_date,omitempty"`
	ExpiresAt      *string  `json:"expires_at,omitempty"`
	Benefits       []string `json:"benefits,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// UpdateOfferRequest represents a partial offer update.
type UpdateOfferRequest struct {
	PositionTitle  *string   `json:"position_title,omitempty" validate:"omitempty,max=200"`
	SalaryAmount   *int64    `json:"salary_amount,omitempty" validate:"omitempty,min=0"`
	SalaryCurrency *string   `json:"salary_currency,omitempty" validate:"omitempty,len=3"`
	SalaryPeriod   *string   `json:"salary_period,omitempty" validate:"omitempty,oneof=yearly monthly hourly"`
	StartDate      *string   `json:"start_date,omitempty"`
	ExpiresAt      *string   `json:"expires_at,omitempty"`
	Benefits       *[]string `json:"benefits,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	Status         *string   `json:"status,omitempty"`
}

// Create creates an offer in draft status for a candidate the user owns.
func (s *Service) Create(ctx context.Context, userID int, req CreateOfferRequest) (*models.Offer, error) {
	if _, err := s.candidates.GetForUser(ctx, req.CandidateID, userID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError("candidate not found")
		}
		return nil, err
	}

	o := &models.Offer{
		UserID:         userID,
		CandidateID:    req.CandidateID,
		PositionTitle:  req.PositionTitle,
		SalaryAmount:   req.SalaryAmount,
		SalaryCurrency: req.SalaryCurrency,
		SalaryPeriod:   req.SalaryPeriod,
		StartDate:      req.StartDate,
		ExpiresAt:      req.ExpiresAt,
		Benefits:       req.Benefits,
		Notes:          req.Notes,
		Status:         models.OfferDraft,
	}
	if err := s.offers.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns an offer owned by the user.
func (s *Service) Get(ctx context.Context, id, userID int) (*models.Offer, error) {
	return s.offers.GetForUser(ctx, id, userID)
}

// ListForCandidate returns all offers for a candidate the user owns,
// newest first.
func (s *Service) ListForCandidate(ctx context.Context, candidateID, userID int) ([]*models.Offer, error) {
	if _, err := s.candidates.GetForUser(ctx, candidateID, userID); err != nil {
		return nil, err
	}
	return s.offers.ListForCandidate(ctx, candidateID)
}

// Update applies a partial update to an offer.
func (s *Service) Update(ctx context.Context, id, userID int, req UpdateOfferRequest) (*models.Offer, error) {
	o, err := s.offers.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !validStatuses[*req.Status] {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown offer status: %s", *req.Status))
		}
		o.Status = *req.Status
	}
	if req.PositionTitle != nil {
		o.PositionTitle = *req.PositionTitle
	}
	if req.SalaryAmount != nil {
		o.SalaryAmount = req.SalaryAmount
	}
	if req.SalaryCurrency != nil {
		o.SalaryCurrency = *req.SalaryCurrency
	}
	if req.SalaryPeriod != nil {
		o.SalaryPeriod = *req.SalaryPeriod
	}
	if req.StartDate != nil {
		o.StartDate = req.StartDate
	}
	if req.ExpiresAt != nil {
		o.ExpiresAt = req.ExpiresAt
	}
	if req.Benefits != nil {
		o.Benefits = *req.Benefits
	}
	if req.Notes != nil {
		o.Notes = *req.Notes
	}

	if err := s.offers.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}
