package domain

import (
	"context"
	"time"

	"github.com/jordanlanch/talentdb/pkg/models"
)

// WorkflowStore defines data access operations for workflows
type WorkflowStore interface {
	Create(ctx context.Context, w *models.Workflow) error
	GetForUser(ctx context.Context, id, userID int) (*models.Workflow, error)
	ListForUser(ctx context.Context, userID int) ([]*models.Workflow, error)
	ListEnabledByStage(ctx context.Context, userID int, stage models.Stage) ([]*models.Workflow, error)
	Update(ctx context.Context, w *models.Workflow) error
	Delete(ctx context.Context, id, userID int) error
}

// CandidateStore defines data access operations for candidates
type CandidateStore interface {
	Create(ctx context.Context, c *models.Candidate) error
	GetForUser(ctx context.Context, id, userID int) (*models.Candidate, error)
	ListForUser(ctx context.Context, userID int) ([]*models.Candidate, error)
	Update(ctx context.Context, c *models.Candidate) error
	UpdateStage(ctx context.Context, id, userID int, stage models.Stage) error
	// SetUploadToken persists a freshly generated CV upload token and its
	// expiry on the candidate record.
	SetUploadToken(ctx context.Context, id int, token string, expiresAt time.Time) error
	PurgeExpiredUploadTokens(ctx context.Context, now time.Time) (int, error)
	Delete(ctx context.Context, id, userID int) error
}

// TemplateStore defines data access operations for email templates
type TemplateStore interface {
	Create(ctx context.Context, t *models.Template) error
	GetForUser(ctx context.Context, id, userID int) (*models.Template, error)
	ListForUser(ctx context.Context, userID int) ([]*models.Template, error)
	Update(ctx context.Context, t *models.Template) error
	Delete(ctx context.Context, id, userID int) error
}

// JobStore defines data access operations for job postings
type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	GetForUser(ctx context.Context, id, userID int) (*models.Job, error)
	ListForUser(ctx context.Context, userID int) ([]*models.Job, error)
	Update(ctx context.Context, j *models.Job) error
	Delete(ctx context.Context, id, userID int) error
}

// OfferStore defines data access operations for offers
type OfferStore interface {
	Create(ctx context.Context, o *models.Offer) error
	GetForUser(ctx context.Context, id, userID int) (*models.Offer, error)
	ListForCandidate(ctx context.Context, candidateID int) ([]*models.Offer, error)
	// LatestOpen returns the most recent offer for the candidate that is
	// still in an open status (draft, sent, viewed, negotiating), or a
	// not-found error when none exists.
	LatestOpen(ctx context.Context, candidateID int) (*models.Offer, error)
	Update(ctx context.Context, o *models.Offer) error
}

// ExecutionStore defines data access operations for the workflow
// execution log
type ExecutionStore interface {
	// CreatePending inserts a pending row for (workflowID, candidateID).
	// Returns ErrDuplicateExecution when another pending row already
	// exists for the pair.
	CreatePending(ctx context.Context, workflowID, candidateID int) (*models.WorkflowExecution, error)
	// CreateSkipped inserts a terminal skipped row with a human-readable
	// reason.
	CreateSkipped(ctx context.Context, workflowID, candidateID int, reason string) (*models.WorkflowExecution, error)
	MarkSent(ctx context.Context, id int, emailLogID int) error
	MarkFailed(ctx context.Context, id int, errorMessage string) error
	ListForWorkflow(ctx context.Context, workflowID int) ([]*models.WorkflowExecution, error)
	ListForCandidate(ctx context.Context, candidateID int) ([]*models.WorkflowExecution, error)
	// HasSent reports whether any of the given workflows has a sent
	// execution for the candidate.
	HasSent(ctx context.Context, workflowIDs []int, candidateID int) (bool, error)
	// FailStalePending marks pending rows created before the cutoff as
	// failed, returning the number of rows updated.
	FailStalePending(ctx context.Context, cutoff time.Time, errorMessage string) (int, error)
}

// EmailLogStore defines data access operations for the email log
type EmailLogStore interface {
	Create(ctx context.Context, l *models.EmailLog) error
	ListForCandidate(ctx context.Context, candidateID int) ([]*models.EmailLog, error)
	// HasRecent reports whether an email of the given type was logged for
	// the candidate at or after the given time.
	HasRecent(ctx context.Context, candidateID int, emailType string, since time.Time) (bool, error)
}

// UserStore resolves user profile data mirrored from the external auth
// provider.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

// Stores bundles every repository the engine and services depend on.
type Stores struct {
	Workflows  WorkflowStore
	Candidates CandidateStore
	Templates  TemplateStore
	Jobs       JobStore
	Offers     OfferStore
	Executions ExecutionStore
	EmailLogs  EmailLogStore
	Users      UserStore
}

// EmailSender dispatches outbound email. Implementations must honor the
// context deadline.
type EmailSender interface {
	Send(ctx context.Context, req models.EmailRequest) error
}

// CacheRepository defines caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// MatchScorer computes an AI match score (0-100) for a candidate against a
// job description.
type MatchScorer interface {
	ScoreMatch(ctx context.Context, candidateProfile, jobDescription string) (int, error)
}
