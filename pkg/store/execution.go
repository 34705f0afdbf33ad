package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// ExecutionStore is the Postgres repository for the workflow execution
// log. The partial unique index ux_executions_inflight is what enforces
// the at-most-one-pending-execution invariant; CreatePending surfaces the
// losing side of that race as domain.ErrDuplicateExecution.
type ExecutionStore struct {
	db *sql.DB
}

const executionColumns = `id, workflow_id, candidate_id, status, email_log_id, error_message, created_at, completed_at`

func scanExecution(row interface{ Scan(...any) error }) (*models.WorkflowExecution, error) {
	var e models.WorkflowExecution
	var status string
	err := row.Scan(&e.ID, &e.WorkflowID, &e.CandidateID, &status,
		&e.EmailLogID, &e.ErrorMessage, &e.CreatedAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	e.Status = models.ExecutionStatus(status)
	return &e, nil
}

func (s *ExecutionStore) CreatePending(ctx context.Context, workflowID, candidateID int) (*models.WorkflowExecution, error) {
	e := &models.WorkflowExecution{
		WorkflowID:  workflowID,
		CandidateID: candidateID,
		Status:      models.ExecutionPending,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO workflow_executions (workflow_id, candidate_id, status)
		 VALUES ($1, $2, 'pending')
		 RETURNING id, created_at`,
		workflowID, candidateID,
	).Scan(&e.ID, &e.CreatedAt)
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicateExecution
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create execution: %w", err)
	}
	return e, nil
}

func (s *ExecutionStore) CreateSkipped(ctx context.Context, workflowID, candidateID int, reason string) (*models.WorkflowExecution, error) {
	e := &models.WorkflowExecution{
		WorkflowID:   workflowID,
		CandidateID:  candidateID,
		Status:       models.ExecutionSkipped,
		ErrorMessage: &reason,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO workflow_executions (workflow_id, candidate_id, status, error_message, completed_at)
		 VALUES ($1, $2, 'skipped', $3, now())
		 RETURNING id, created_at, completed_at`,
		workflowID, candidateID, reason,
	).Scan(&e.ID, &e.CreatedAt, &e.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create skipped execution: %w", err)
	}
	return e, nil
}

// MarkSent finalizes an execution. A zero emailLogID means the email went
// out but the best-effort log write failed; the reference is stored as NULL.
func (s *ExecutionStore) MarkSent(ctx context.Context, id int, emailLogID int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflow_executions SET status = 'sent', email_log_id = NULLIF($1, 0), completed_at = now() WHERE id = $2`,
		emailLogID, id)
	if err != nil {
		return fmt.Errorf("failed to mark execution sent: %w", err)
	}
	return requireRow(res, "execution")
}

func (s *ExecutionStore) MarkFailed(ctx context.Context, id int, errorMessage string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflow_executions SET status = 'failed', error_message = $1, completed_at = now() WHERE id = $2`,
		errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to mark execution failed: %w", err)
	}
	return requireRow(res, "execution")
}

func (s *ExecutionStore) ListForWorkflow(ctx context.Context, workflowID int) ([]*models.WorkflowExecution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+executionColumns+` FROM workflow_executions WHERE workflow_id = $1 ORDER BY created_at DESC`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()
	return collectExecutions(rows)
}

func (s *ExecutionStore) ListForCandidate(ctx context.Context, candidateID int) ([]*models.WorkflowExecution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+executionColumns+` FROM workflow_executions WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()
	return collectExecutions(rows)
}

func collectExecutions(rows *sql.Rows) ([]*models.WorkflowExecution, error) {
	var result []*models.WorkflowExecution
	for rows.Next() {
		e, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *ExecutionStore) HasSent(ctx context.Context, workflowIDs []int, candidateID int) (bool, error) {
	if len(workflowIDs) == 0 {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM workflow_executions
		     WHERE workflow_id = ANY($1) AND candidate_id = $2 AND status = 'sent'
		 )`,
		pq.Array(workflowIDs), candidateID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check sent executions: %w", err)
	}
	return exists, nil
}

func (s *ExecutionStore) FailStalePending(ctx context.Context, cutoff time.Time, errorMessage string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE workflow_executions
		 SET status = 'failed', error_message = $1, completed_at = now()
		 WHERE status = 'pending' AND created_at < $2`,
		errorMessage, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep stale executions: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
