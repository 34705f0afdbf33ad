package models

import "time"

// Offer statuses. An offer in one of the open statuses feeds offer-stage
// placeholder substitution; closed statuses (accepted, declined, expired)
// do not.
const (
	OfferDraft       = "draft"
	OfferSent        = "sent"
	OfferViewed      = "viewed"
	OfferNegotiating = "negotiating"
	OfferAccepted    = "accepted"
	OfferDeclined    = "declined"
	OfferExpired     = "expired"
)

// OpenOfferStatuses are the statuses considered in-flight for placeholder
// resolution.
var OpenOfferStatuses = []string{OfferDraft, OfferSent, OfferViewed, OfferNegotiating}

// Offer is an offer letter extended to a candidate.
//
// StartDate and ExpiresAt are stored as the strings the user entered; the
// renderer formats them into long form when they parse as dates and passes
// them through verbatim when they do not.
type Offer struct {
	ID             int       `json:"id"`
	UserID         int       `json:"user_id"`
	CandidateID    int       `json:"candidate_id"`
	PositionTitle  string    `json:"position_title"`
	SalaryAmount   *int64    `json:"salary_amount,omitempty"`
	SalaryCurrency string    `json:"salary_currency,omitempty"` // USD, EUR, GBP, ...
	SalaryPeriod   string    `json:"salary_period,omitempty"`   // yearly, monthly, hourly
	StartDate      *string   `json:"start_date,omitempty"`
	ExpiresAt      *string   `json:"expires_at,omitempty"`
	Benefits       []string  `json:"benefits,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
