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

// CandidateStore is the Postgres repository for candidates.
type CandidateStore struct {
	db *sql.DB
}

const candidateColumns = `id, user_id, name, email, phone, stage, role, job_id, ai_match_score, source, is_test, cv_upload_token, cv_token_expires_at, cv_file_url, created_at, updated_at`

func scanCandidate(row interface{ Scan(...any) error }) (*models.Candidate, error) {
	var c models.Candidate
	var stage string
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Email, &c.Phone, &stage, &c.Role,
		&c.JobID, &c.AIMatchScore, &c.Source, &c.IsTest,
		&c.CVUploadToken, &c.CVTokenExpiresAt, &c.CVFileURL, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Stage = models.Stage(stage)
	return &c, nil
}

func (s *CandidateStore) Create(ctx context.Context, c *models.Candidate) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO candidates (user_id, name, email, phone, stage, role, job_id, ai_match_score, source, is_test, cv_file_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		c.UserID, c.Name, c.Email, c.Phone, string(c.Stage), c.Role, c.JobID,
		c.AIMatchScore, c.Source, c.IsTest, c.CVFileURL,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create candidate: %w", err)
	}
	return nil
}

func (s *CandidateStore) GetForUser(ctx context.Context, id, userID int) (*models.Candidate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 AND user_id = $2`, id, userID)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("candidate")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidate: %w", err)
	}
	return c, nil
}

func (s *CandidateStore) ListForUser(ctx context.Context, userID int) ([]*models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var result []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *CandidateStore) Update(ctx context.Context, c *models.Candidate) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates
		 SET name = $1, email = $2, phone = $3, stage = $4, role = $5, job_id = $6,
		     ai_match_score = $7, source = $8, is_test = $9, cv_file_url = $10, updated_at = now()
		 WHERE id = $11 AND user_id = $12`,
		c.Name, c.Email, c.Phone, string(c.Stage), c.Role, c.JobID,
		c.AIMatchScore, c.Source, c.IsTest, c.CVFileURL, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("failed to update candidate: %w", err)
	}
	return requireRow(res, "candidate")
}

func (s *CandidateStore) UpdateStage(ctx context.Context, id, userID int, stage models.Stage) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET stage = $1, updated_at = now() WHERE id = $2 AND user_id = $3`,
		string(stage), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update candidate stage: %w", err)
	}
	return requireRow(res, "candidate")
}

func (s *CandidateStore) SetUploadToken(ctx context.Context, id int, token string, expiresAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET cv_upload_token = $1, cv_token_expires_at = $2, updated_at = now() WHERE id = $3`,
		token, expiresAt, id)
	if err != nil {
		return fmt.Errorf("failed to set upload token: %w", err)
	}
	return requireRow(res, "candidate")
}

func (s *CandidateStore) PurgeExpiredUploadTokens(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE candidates SET cv_upload_token = NULL, cv_token_expires_at = NULL
		 WHERE cv_upload_token IS NOT NULL AND cv_token_expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge upload tokens: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *CandidateStore) Delete(ctx context.Context, id, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM candidates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}
	return requireRow(res, "candidate")
}
