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

// WorkflowStore is the Postgres repository for workflows.
type WorkflowStore struct {
	db *sql.DB
}

const workflowColumns = `id, user_id, name, trigger_stage, enabled, email_template_id, min_match_score, source_filter, delay_minutes, created_at, updated_at`

func scanWorkflow(row interface{ Scan(...any) error }) (*models.Workflow, error) {
	var w models.Workflow
	var stage string
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &stage, &w.Enabled, &w.EmailTemplateID,
		&w.MinMatchScore, pq.Array(&w.SourceFilter), &w.DelayMinutes, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	w.TriggerStage = models.Stage(stage)
	return &w, nil
}

func (s *WorkflowStore) Create(ctx context.Context, w *models.Workflow) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO workflows (user_id, name, trigger_stage, enabled, email_template_id, min_match_score, source_filter, delay_minutes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		w.UserID, w.Name, string(w.TriggerStage), w.Enabled, w.EmailTemplateID,
		w.MinMatchScore, pq.Array(w.SourceFilter), w.DelayMinutes,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

func (s *WorkflowStore) GetForUser(ctx context.Context, id, userID int) (*models.Workflow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE id = $1 AND user_id = $2`, id, userID)
	w, err := scanWorkflow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("workflow")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workflow: %w", err)
	}
	return w, nil
}

func (s *WorkflowStore) ListForUser(ctx context.Context, userID int) ([]*models.Workflow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}
	defer rows.Close()
	return collectWorkflows(rows)
}

func (s *WorkflowStore) ListEnabledByStage(ctx context.Context, userID int, stage models.Stage) ([]*models.Workflow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+workflowColumns+` FROM workflows WHERE user_id = $1 AND trigger_stage = $2 AND enabled`, userID, string(stage))
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows for stage: %w", err)
	}
	defer rows.Close()
	return collectWorkflows(rows)
}

func collectWorkflows(rows *sql.Rows) ([]*models.Workflow, error) {
	var result []*models.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (s *WorkflowStore) Update(ctx context.Context, w *models.Workflow) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflows
		 SET name = $1, trigger_stage = $2, enabled = $3, email_template_id = $4,
		     min_match_score = $5, source_filter = $6, delay_minutes = $7, updated_at = now()
		 WHERE id = $8 AND user_id = $9`,
		w.Name, string(w.TriggerStage), w.Enabled, w.EmailTemplateID,
		w.MinMatchScore, pq.Array(w.SourceFilter), w.DelayMinutes, w.ID, w.UserID)
	if err != nil {
		return fmt.Errorf("failed to update workflow: %w", err)
	}
	return requireRow(res, "workflow")
}

func (s *WorkflowStore) Delete(ctx context.Context, id, userID int) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM workflows WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return requireRow(res, "workflow")
}

// requireRow converts a zero-row write into a not-found error.
func requireRow(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFoundError(resource)
	}
	return nil
}
