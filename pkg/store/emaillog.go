package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// EmailLogStore is the Postgres repository for the email log.
type EmailLogStore struct {
	db *sql.DB
}

func (s *EmailLogStore) Create(ctx context.Context, l *models.EmailLog) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO email_logs (user_id, candidate_id, recipient, subject, body, from_name, email_type, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, sent_at`,
		l.UserID, l.CandidateID, l.Recipient, l.Subject, l.Body, l.FromName, l.EmailType, l.Status,
	).Scan(&l.ID, &l.SentAt)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	return nil
}

func (s *EmailLogStore) ListForCandidate(ctx context.Context, candidateID int) ([]*models.EmailLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, candidate_id, recipient, subject, body, from_name, email_type, status, sent_at
		 FROM email_logs WHERE candidate_id = $1 ORDER BY sent_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list email logs: %w", err)
	}
	defer rows.Close()

	var result []*models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CandidateID, &l.Recipient, &l.Subject, &l.Body,
			&l.FromName, &l.EmailType, &l.Status, &l.SentAt); err != nil {
			return nil, err
		}
		result = append(result, &l)
	}
	return result, rows.Err()
}

func (s *EmailLogStore) HasRecent(ctx context.Context, candidateID int, emailType string, since time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM email_logs
		     WHERE candidate_id = $1 AND email_type = $2 AND sent_at >= $3
		 )`,
		candidateID, emailType, since,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check recent email logs: %w", err)
	}
	return exists, nil
}

// UserStore resolves profile rows mirrored from the auth provider.
type UserStore struct {
	db *sql.DB
}

func (s *UserStore) GetByID(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &u, nil
}
