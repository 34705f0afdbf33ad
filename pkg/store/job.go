package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// JobStore is the Postgres repository for job postings.
type JobStore struct {
	db *sql.DB
}

func (s *JobStore) Create(ctx context.Context, j *models.Job) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO jobs (user_id, title, company, description, location, salary_min, salary_max, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		j.UserID, j.Title, j.Company, j.Description, j.Location, j.SalaryMin, j.SalaryMax, j.Status,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *JobStore) GetForUser(ctx context.Context, id, userID int) (*models.Job, error) {
	var j models.Job
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, company, description, location, salary_min, salary_max, status, created_at, updated_at
		 FROM jobs WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.Description, &j.Location, &j.SalaryMin, &j.SalaryMax, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("job")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}
	return &j, nil
}

func (s *JobStore) ListForUser(ctx context.Context, userID int) ([]*models.Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, company, description, location, salary_min, salary_max, status, created_at, updated_at
		 FROM jobs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var result []*models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.Description, &j.Location, &j.SalaryMin, &j.SalaryMax, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &j)
	}
	return result, rows.Err()
}

func (s *JobStore) Update(ctx context.Context, j *models.Job) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET title = $1, company = $2, description = $3, location = $4, salary_min = $5, salary_max = $6, status = $7, updated_at = now()
		 WHERE id = $8 AND user_id = $9`,
		j.Title, j.Company, j.Description, j.Location, j.SalaryMin, j.SalaryMax, j.Status, j.ID, j.UserID)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return requireRow(res, "job")
}

func (s *JobStore) Delete(ctx context.Context, id, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return requireRow(res, "job")
}
