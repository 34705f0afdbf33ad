package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// OfferStore is the Postgres repository for offers.
type OfferStore struct {
	db *sql.DB
}

const offerColumns = `id, user_id, candidate_id, position_title, salary_amount, salary_currency, salary_period, start_date, expires_at, benefits, notes, status, created_at, updated_at`

func scanOffer(row interface{ Scan(...any) error }) (*models.Offer, error) {
	var o models.Offer
	err := row.Scan(&o.ID, &o.UserID, &o.CandidateID, &o.PositionTitle,
		&o.SalaryAmount, &o.SalaryCurrency, &o.SalaryPeriod,
		&o.StartDate, &o.ExpiresAt, pq.Array(&o.Benefits), &o.Notes, &o.Status,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OfferStore) Create(ctx context.Context, o *models.Offer) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO offers (user_id, candidate_id, position_title, salary_amount, salary_currency, salary_period, start_date, expires_at, benefits, notes, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		o.UserID, o.CandidateID, o.PositionTitle, o.SalaryAmount, o.SalaryCurrency,
		o.SalaryPeriod, o.StartDate, o.ExpiresAt, pq.Array(o.Benefits), o.Notes, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (s *OfferStore) GetForUser(ctx context.Context, id, userID int) (*models.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1 AND user_id = $2`, id, userID)
	o, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("offer")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch offer: %w", err)
	}
	return o, nil
}

func (s *OfferStore) ListForCandidate(ctx context.Context, candidateID int) ([]*models.Offer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	var result []*models.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (s *OfferStore) LatestOpen(ctx context.Context, candidateID int) (*models.Offer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+offerColumns+` FROM offers
		 WHERE candidate_id = $1 AND status = ANY($2)
		 ORDER BY created_at DESC LIMIT 1`,
		candidateID, pq.Array(models.OpenOfferStatuses))
	o, err := scanOffer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("offer")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest offer: %w", err)
	}
	return o, nil
}

func (s *OfferStore) Update(ctx context.Context, o *models.Offer) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE offers
		 SET position_title = $1, salary_amount = $2, salary_currency = $3, salary_period = $4,
		     start_date = $5, expires_at = $6, benefits = $7, notes = $8, status = $9, updated_at = now()
		 WHERE id = $10 AND user_id = $11`,
		o.PositionTitle, o.SalaryAmount, o.SalaryCurrency, o.SalaryPeriod,
		o.StartDate, o.ExpiresAt, pq.Array(o.Benefits), o.Notes, o.Status, o.ID, o.UserID)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	return requireRow(res, "offer")
}
