package workflow

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/logger"
	"github.com/jordanlanch/talentdb/pkg/metrics"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// Skip reasons recorded on skipped execution rows. The dashboard matches on
// these strings; do not reword without migrating stored rows.
const (
	skipReasonDisabled      = "Workflow is disabled"
	skipReasonTestCandidate = "Test candidate - email not sent"
	skipReasonConditions    = "Workflow conditions not met"
)

const (
	// dispatchTimeout bounds the outbound email call.
	dispatchTimeout = 30 * time.Second

	// offerEmailDedupWindow guards against a direct offer-send action and
	// the offer-stage workflow both firing within moments of each other.
	offerEmailDedupWindow = 5 * time.Minute

	uploadTokenBytes = 32
	uploadTokenTTL   = 30 * 24 * time.Hour
)

// Engine runs workflows against candidates: it evaluates conditions,
// renders the linked template and dispatches the email, recording every
// attempt in the execution log.
//
// The engine holds no state of its own; concurrent invocations coordinate
// only through the execution store's single-pending-row constraint.
type Engine struct {
	stores  domain.Stores
	sender  domain.EmailSender
	metrics *metrics.Metrics
	log     logger.Logger
	baseURL string

	// Injection points for tests. sleep implements the configured
	// pre-send delay; now feeds the offer-email dedup window.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewEngine creates a workflow engine. metrics may be nil.
func NewEngine(stores domain.Stores, sender domain.EmailSender, m *metrics.Metrics, log logger.Logger, baseURL string) *Engine {
	return &Engine{
		stores:  stores,
		sender:  sender,
		metrics: m,
		log:     log,
		baseURL: strings.TrimRight(baseURL, "/"),
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// ExecuteWorkflow runs one workflow against one candidate.
//
// Early exits that reflect configuration (disabled workflow, test
// candidate, unmet conditions) are recorded as skipped executions and
// return nil. Missing workflow/candidate/template records are fatal. A
// concurrent duplicate execution aborts silently. Dispatch failures are
// recorded as failed and returned to the caller.
//
// When delayMinutes is set the call blocks for that long before sending.
func (e *Engine) ExecuteWorkflow(ctx context.Context, workflowID, candidateID, userID int, bypassEnabledCheck bool) error {
	log := e.log.With("workflow_id", workflowID, "candidate_id", candidateID)

	w, err := e.stores.Workflows.GetForUser(ctx, workflowID, userID)
	if err != nil {
		return err
	}

	if !w.Enabled && !bypassEnabledCheck {
		return e.skip(ctx, log, workflowID, candidateID, skipReasonDisabled)
	}

	c, err := e.stores.Candidates.GetForUser(ctx, candidateID, userID)
	if err != nil {
		return err
	}

	// Synthetic test candidates do not receive real stage emails. The
	// initial sourcing email for the New stage is exempt, as is any test
	// candidate that has shown a genuine application signal (applied
	// directly or uploaded a CV).
	if c.IsTest && w.TriggerStage != models.StageNew &&
		c.Source != models.SourceDirectApplication && !c.HasCV() {
		return e.skip(ctx, log, workflowID, candidateID, skipReasonTestCandidate)
	}

	if !conditionsMet(w, c) {
		return e.skip(ctx, log, workflowID, candidateID, skipReasonConditions)
	}

	tmpl, err := e.stores.Templates.GetForUser(ctx, w.EmailTemplateID, userID)
	if err != nil {
		return err
	}

	tc := e.assembleContext(ctx, w, c, userID)
	subject, body := render(tmpl, tc)
	body = e.cvUploadPass(ctx, body, w, c)

	exec, err := e.stores.Executions.CreatePending(ctx, workflowID, candidateID)
	if errors.Is(err, domain.ErrDuplicateExecution) {
		// Another invocation is already running this pair; the loser of
		// the race backs off without logging a second row.
		log.Debug("duplicate in-flight execution, aborting")
		return nil
	}
	if err != nil {
		return err
	}

	if w.DelayMinutes > 0 {
		log.Info("delaying workflow email", "delay_minutes", w.DelayMinutes)
		e.sleep(time.Duration(w.DelayMinutes) * time.Minute)
	}

	emailType := w.TriggerStage.EmailType()
	req := models.EmailRequest{
		To:          c.Email,
		ToName:      c.Name,
		Subject:     subject,
		HTMLContent: body,
		FromName:    senderName,
		CandidateID: c.ID,
		EmailType:   emailType,
	}

	sendCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	if err := e.sender.Send(sendCtx, req); err != nil {
		if markErr := e.stores.Executions.MarkFailed(ctx, exec.ID, err.Error()); markErr != nil {
			log.Error("failed to record execution failure", "error", markErr)
		}
		e.recordExecution(string(models.ExecutionFailed))
		if e.metrics != nil {
			e.metrics.RecordEmailFailed()
		}
		log.Error("workflow email dispatch failed", "error", err)
		return fmt.Errorf("failed to send workflow email: %w", err)
	}

	// Best-effort: a failed log write does not downgrade the sent status.
	emailLog := &models.EmailLog{
		UserID:      userID,
		CandidateID: c.ID,
		Recipient:   c.Email,
		Subject:     subject,
		Body:        body,
		FromName:    senderName,
		EmailType:   emailType,
		Status:      "sent",
	}
	if err := e.stores.EmailLogs.Create(ctx, emailLog); err != nil {
		log.Warn("failed to write email log", "error", err)
		emailLog.ID = 0
	}

	if err := e.stores.Executions.MarkSent(ctx, exec.ID, emailLog.ID); err != nil {
		log.Error("failed to record execution success", "error", err)
	}
	e.recordExecution(string(models.ExecutionSent))
	if e.metrics != nil {
		e.metrics.RecordEmailSent()
	}
	log.Info("workflow email sent", "recipient", c.Email, "email_type", emailType)
	return nil
}

// ExecuteWorkflowsForStage runs every enabled workflow the user has for the
// given stage against the candidate. Failures are isolated per workflow and
// never propagate; the stage change that triggered this call must not fail
// because of email automation.
func (e *Engine) ExecuteWorkflowsForStage(ctx context.Context, candidateID int, stage models.Stage, userID int, skipIfAlreadySent bool) {
	log := e.log.With("candidate_id", candidateID, "stage", string(stage))

	workflows, err := e.stores.Workflows.ListEnabledByStage(ctx, userID, stage)
	if err != nil {
		log.Error("failed to list workflows for stage", "error", err)
		return
	}
	if len(workflows) == 0 {
		return
	}

	if skipIfAlreadySent {
		ids := make([]int, len(workflows))
		for i, w := range workflows {
			ids[i] = w.ID
		}
		sent, err := e.stores.Executions.HasSent(ctx, ids, candidateID)
		if err != nil {
			log.Error("failed to check prior executions", "error", err)
		} else if sent {
			log.Info("stage workflows already sent for candidate, skipping")
			return
		}

		if stage == models.StageOffer {
			since := e.now().Add(-offerEmailDedupWindow)
			recent, err := e.stores.EmailLogs.HasRecent(ctx, candidateID, stage.EmailType(), since)
			if err != nil {
				log.Error("failed to check recent offer emails", "error", err)
			} else if recent {
				log.Info("offer email sent within dedup window, skipping")
				return
			}
		}
	}

	for _, w := range workflows {
		if err := e.ExecuteWorkflow(ctx, w.ID, candidateID, userID, false); err != nil {
			log.Error("workflow execution failed", "workflow_id", w.ID, "error", err)
		}
	}
}

// skip records a skipped execution with a human-readable reason.
func (e *Engine) skip(ctx context.Context, log logger.Logger, workflowID, candidateID int, reason string) error {
	if _, err := e.stores.Executions.CreateSkipped(ctx, workflowID, candidateID, reason); err != nil {
		log.Error("failed to record skipped execution", "error", err)
		return err
	}
	e.recordExecution(string(models.ExecutionSkipped))
	log.Info("workflow skipped", "reason", reason)
	return nil
}

func (e *Engine) recordExecution(status string) {
	if e.metrics != nil {
		e.metrics.RecordExecution(status)
	}
}

// cvUploadPass injects a CV upload link into New-stage emails. The token is
// generated and persisted on first use; subsequent emails reuse it.
//
// Templates that carry a literal {cv_upload_link} token get it substituted
// in place; all other templates get an upload section appended, so every
// New-stage email carries the link regardless of template authoring.
func (e *Engine) cvUploadPass(ctx context.Context, body string, w *models.Workflow, c *models.Candidate) string {
	if w.TriggerStage != models.StageNew || c.Stage != models.StageNew || c.JobID == nil {
		return body
	}

	token := c.CVUploadToken
	if token == nil {
		generated, err := generateUploadToken()
		if err != nil {
			e.log.Error("failed to generate upload token", "candidate_id", c.ID, "error", err)
			return body
		}
		expiresAt := e.now().Add(uploadTokenTTL)
		if err := e.stores.Candidates.SetUploadToken(ctx, c.ID, generated, expiresAt); err != nil {
			e.log.Error("failed to persist upload token", "candidate_id", c.ID, "error", err)
			return body
		}
		token = &generated
	}

	link := fmt.Sprintf("%s/jobs/apply/%d?token=%s", e.baseURL, *c.JobID, *token)
	anchor := fmt.Sprintf(`<a href="%s">Upload your CV</a>`, link)

	if strings.Contains(body, "{cv_upload_link}") {
		return strings.ReplaceAll(body, "{cv_upload_link}", anchor)
	}

	section := fmt.Sprintf(`
<div style="margin-top: 24px; padding: 16px; border: 1px solid #e0e0e0; border-radius: 8px;">
	<h3>Please upload your CV</h3>
	<p>To continue with your application, please upload your CV using the link below:</p>
	<p>%s</p>
	<p>This link will expire in 30 days.</p>
</div>`, anchor)
	return body + section
}

func generateUploadToken() (string, error) {
	buf := make([]byte, uploadTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
