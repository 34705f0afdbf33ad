package models

import "time"

// Workflow is a user-owned automation rule: when a candidate enters
// TriggerStage, the linked email template is rendered and sent, subject to
// the optional gating conditions.
type Workflow struct {
	ID              int        `json:"id"`
	UserID          int        `json:"user_id"`
	Name            string     `json:"name"`
	TriggerStage    Stage      `json:"trigger_stage"`
	Enabled         bool       `json:"enabled"`
	EmailTemplateID int        `json:"email_template_id"`
	MinMatchScore   *int       `json:"min_match_score,omitempty"`
	SourceFilter    []string   `json:"source_filter,omitempty"`
	DelayMinutes    int        `json:"delay_minutes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ExecutionStatus is the state of one workflow execution attempt.
type ExecutionStatus string

const (
	ExecutionPending ExecutionStatus = "pending"
	ExecutionSent    ExecutionStatus = "sent"
	ExecutionFailed  ExecutionStatus = "failed"
	ExecutionSkipped ExecutionStatus = "skipped"
)

// WorkflowExecution is the log row for one attempt to run a workflow
// against one candidate. At most one row per (workflow, candidate) pair may
// be pending at a time; the store enforces this with a unique constraint.
type WorkflowExecution struct {
	ID           int             `json:"id"`
	WorkflowID   int             `json:"workflow_id"`
	CandidateID  int             `json:"candidate_id"`
	Status       ExecutionStatus `json:"status"`
	EmailLogID   *int            `json:"email_log_id,omitempty"`
	// ErrorMessage holds the dispatch error for failed rows and the
	// human-readable reason for skipped rows.
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}
