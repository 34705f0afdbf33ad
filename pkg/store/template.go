package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// TemplateStore is the Postgres repository for email templates.
type TemplateStore struct {
	db *sql.DB
}

func (s *TemplateStore) Create(ctx context.Context, t *models.Template) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO email_templates (user_id, name, subject, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.UserID, t.Name, t.Subject, t.Body,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}
	return nil
}

func (s *TemplateStore) GetForUser(ctx context.Context, id, userID int) (*models.Template, error) {
	var t models.Template
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, subject, body, created_at, updated_at
		 FROM email_templates WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&t.ID, &t.UserID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("template")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}
	return &t, nil
}

func (s *TemplateStore) ListForUser(ctx context.Context, userID int) ([]*models.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, subject, body, created_at, updated_at
		 FROM email_templates WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var result []*models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

func (s *TemplateStore) Update(ctx context.Context, t *models.Template) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE email_templates SET name = $1, subject = $2, body = $3, updated_at = now()
		 WHERE id = $4 AND user_id = $5`,
		t.Name, t.Subject, t.Body, t.ID, t.UserID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return requireRow(res, "template")
}

func (s *TemplateStore) Delete(ctx context.Context, id, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM email_templates WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return requireRow(res, "template")
}
