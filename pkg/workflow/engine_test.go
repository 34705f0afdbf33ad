package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/talentdb/pkg/logger"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/store"
)

// fakeSender records dispatched email and can be told to fail.
type fakeSender struct {
	mu   sync.Mutex
	sent []models.EmailRequest
	err  error
}

func (f *fakeSender) Send(_ context.Context, req models.EmailRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type engineFixture struct {
	engine *Engine
	mem    *store.Memory
	sender *fakeSender
	slept  *[]time.Duration
	userID int
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	mem := store.NewMemory()
	sender := &fakeSender{}
	e := NewEngine(mem.Stores(), sender, nil, logger.New("error", "text"), "http://localhost:3001")

	var slept []time.Duration
	e.sleep = func(d time.Duration) { slept = append(slept, d) }

	user := &models.User{Email: "recruiter@example.com", Name: "Sam Recruiter"}
	mem.AddUser(user)

	return &engineFixture{engine: e, mem: mem, sender: sender, slept: &slept, userID: user.ID}
}

func (f *engineFixture) seedTemplate(t *testing.T, subject, body string) *models.Template {
	t.Helper()
	tmpl := &models.Template{UserID: f.userID, Name: "t", Subject: subject, Body: body}
	require.NoError(t, f.mem.Stores().Templates.Create(context.Background(), tmpl))
	return tmpl
}

func (f *engineFixture) seedWorkflow(t *testing.T, w *models.Workflow) *models.Workflow {
	t.Helper()
	w.UserID = f.userID
	require.NoError(t, f.mem.Stores().Workflows.Create(context.Background(), w))
	return w
}

func (f *engineFixture) seedCandidate(t *testing.T, c *models.Candidate) *models.Candidate {
	t.Helper()
	c.UserID = f.userID
	if c.Email == "" {
		c.Email = "candidate@example.com"
	}
	require.NoError(t, f.mem.Stores().Candidates.Create(context.Background(), c))
	return c
}

func TestExecuteWorkflow_Sends(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "Hi {candidate_name}", "We'd like to interview you for {job_title}. Regards, {your_name}")
	w := f.seedWorkflow(t, &models.Workflow{
		Name:            "interview invite",
		TriggerStage:    models.StageInterview,
		Enabled:         true,
		EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{
		Name:  "Ada Lovelace",
		Email: "ada@example.com",
		Stage: models.StageInterview,
		Role:  "Backend Engineer",
	})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	require.Equal(t, 1, f.sender.sentCount())
	req := f.sender.sent[0]
	assert.Equal(t, "ada@example.com", req.To)
	assert.Equal(t, "Hi Ada Lovelace", req.Subject)
	assert.Contains(t, req.HTMLContent, "Backend Engineer")
	assert.Contains(t, req.HTMLContent, "Sam Recruiter")
	assert.Equal(t, "Recruiter", req.FromName)
	assert.Equal(t, "interview_invite", req.EmailType)

	execs := f.mem.Executions()
	require.Len(t, execs, 1)
	assert.Equal(t, models.ExecutionSent, execs[0].Status)
	require.NotNil(t, execs[0].EmailLogID)
	assert.NotNil(t, execs[0].CompletedAt)

	logs := f.mem.EmailLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "ada@example.com", logs[0].Recipient)
	assert.Equal(t, *execs[0].EmailLogID, logs[0].ID)
}

func TestExecuteWorkflow_DisabledSkips(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	w := f.seedWorkflow(t, &models.Workflow{
		Name:            "off",
		TriggerStage:    models.StageScreening,
		Enabled:         false,
		EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	assert.Equal(t, 0, f.sender.sentCount())
	execs := f.mem.Executions()
	require.Len(t, execs, 1)
	assert.Equal(t, models.ExecutionSkipped, execs[0].Status)
	require.NotNil(t, execs[0].ErrorMessage)
	assert.Equal(t, "Workflow is disabled", *execs[0].ErrorMessage)
}

func TestExecuteWorkflow_BypassEnabledCheck(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "test send", "body")
	w := f.seedWorkflow(t, &models.Workflow{
		Name:            "off",
		TriggerStage:    models.StageScreening,
		Enabled:         false,
		EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, true)
	require.NoError(t, err)
	assert.Equal(t, 1, f.sender.sentCount())
}

func TestExecuteWorkflow_TestCandidateSuppression(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	w := f.seedWorkflow(t, &models.Workflow{
		Name:            "screening",
		TriggerStage:    models.StageScreening,
		Enabled:         true,
		EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{
		Name:   "Synthetic",
		Stage:  models.StageScreening,
		IsTest: true,
		Source: "ai_generated",
	})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	assert.Equal(t, 0, f.sender.sentCount())
	execs := f.mem.Executions()
	require.Len(t, execs, 1)
	assert.Equal(t, models.ExecutionSkipped, execs[0].Status)
	assert.Equal(t, "Test candidate - email not sent", *execs[0].ErrorMessage)
}

func TestExecuteWorkflow_TestCandidateExemptions(t *testing.T) {
	tests := []struct {
		name      string
		stage     models.Stage
		candidate models.Candidate
	}{
		{
			name:      "new stage always sends",
			stage:     models.StageNew,
			candidate: models.Candidate{Name: "T", Stage: models.StageNew, IsTest: true, Source: "ai_generated"},
		},
		{
			name:      "direct application counts as real",
			stage:     models.StageScreening,
			candidate: models.Candidate{Name: "T", Stage: models.StageScreening, IsTest: true, Source: models.SourceDirectApplication},
		},
		{
			name:  "uploaded cv counts as real",
			stage: models.StageScreening,
			candidate: models.Candidate{
				Name: "T", Stage: models.StageScreening, IsTest: true, Source: "ai_generated",
				CVFileURL: strPtr("https://cdn.example.com/cv.pdf"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t)
			ctx := context.Background()

			tmpl := f.seedTemplate(t, "s", "b")
			w := f.seedWorkflow(t, &models.Workflow{
				Name: "w", TriggerStage: tt.stage, Enabled: true, EmailTemplateID: tmpl.ID,
			})
			c := tt.candidate
			f.seedCandidate(t, &c)

			err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
			require.NoError(t, err)
			assert.Equal(t, 1, f.sender.sentCount())
		})
	}
}

func TestExecuteWorkflow_ConditionsNotMet(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	w := f.seedWorkflow(t, &models.Workflow{
		Name:            "high bar",
		TriggerStage:    models.StageScreening,
		Enabled:         true,
		EmailTemplateID: tmpl.ID,
		MinMatchScore:   intPtr(70),
	})
	c := f.seedCandidate(t, &models.Candidate{
		Name: "Ada", Stage: models.StageScreening, AIMatchScore: intPtr(50),
	})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	assert.Equal(t, 0, f.sender.sentCount())
	execs := f.mem.Executions()
	require.Len(t, execs, 1)
	assert.Equal(t, models.ExecutionSkipped, execs[0].Status)
	assert.Equal(t, "Workflow conditions not met", *execs[0].ErrorMessage)
}

func TestExecuteWorkflow_NotFoundIsFatal(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	err := f.engine.ExecuteWorkflow(ctx, 999, 999, f.userID, false)
	require.Error(t, err)
	assert.Empty(t, f.mem.Executions())

	// Missing template is fatal too, after the candidate checks pass.
	w := f.seedWorkflow(t, &models.Workflow{
		Name: "broken", TriggerStage: models.StageScreening, Enabled: true, EmailTemplateID: 12345,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	err = f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.Error(t, err)
	assert.Equal(t, 0, f.sender.sentCount())
}

func TestExecuteWorkflow_DuplicateInFlightAbortsSilently(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	w := f.seedWorkflow(t, &models.Workflow{
		Name: "w", TriggerStage: models.StageScreening, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	_, err := f.mem.Stores().Executions.CreatePending(ctx, w.ID, c.ID)
	require.NoError(t, err)

	err = f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	assert.Equal(t, 0, f.sender.sentCount())
	execs := f.mem.Executions()
	require.Len(t, execs, 1)
	assert.Equal(t, models.ExecutionPending, execs[0].Status)
}

func TestExecuteWorkflow_DelayBeforeSend(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	w := f.seedWorkflow(t, &models.Workflow{
		Name: "delayed", TriggerStage: models.StageScreening, Enabled: true,
		EmailTemplateID: tmpl.ID, DelayMinutes: 10,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	require.Len(t, *f.slept, 1)
	assert.Equal(t, 10*time.Minute, (*f.slept)[0])
	assert.Equal(t, 1, f.sender.sentCount())
}

func TestExecuteWorkflow_DispatchFailure(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	w := f.seedWorkflow(t, &models.Workflow{
		Name: "w", TriggerStage: models.StageScreening, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	f.sender.err = errors.New("smtp unreachable")

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.Error(t, err)

	execs := f.mem.Executions()
	require.Len(t, execs, 1)
	assert.Equal(t, models.ExecutionFailed, execs[0].Status)
	require.NotNil(t, execs[0].ErrorMessage)
	assert.Contains(t, *execs[0].ErrorMessage, "smtp unreachable")
	assert.Empty(t, f.mem.EmailLogs())
}

func TestExecuteWorkflow_CVUploadForcedAppend(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	body := "Thanks for your interest in {job_title}!"
	tmpl := f.seedTemplate(t, "Welcome {candidate_name}", body)
	w := f.seedWorkflow(t, &models.Workflow{
		Name: "sourcing", TriggerStage: models.StageNew, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	job := &models.Job{UserID: f.userID, Title: "Backend Engineer", Company: "Initech", Status: "open"}
	require.NoError(t, f.mem.Stores().Jobs.Create(ctx, job))
	c := f.seedCandidate(t, &models.Candidate{
		Name: "Ada", Stage: models.StageNew, JobID: &job.ID,
	})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	require.Equal(t, 1, f.sender.sentCount())
	sent := f.sender.sent[0].HTMLContent
	assert.True(t, strings.HasPrefix(sent, "Thanks for your interest in Backend Engineer!"),
		"original content must be unmodified before the appended section")
	assert.Contains(t, sent, "Please upload your CV")
	assert.Contains(t, sent, "/jobs/apply/")

	// The generated token must be persisted on the candidate.
	stored, err := f.mem.Stores().Candidates.GetForUser(ctx, c.ID, f.userID)
	require.NoError(t, err)
	require.NotNil(t, stored.CVUploadToken)
	assert.Contains(t, sent, *stored.CVUploadToken)
	require.NotNil(t, stored.CVTokenExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *stored.CVTokenExpiresAt, time.Minute)
}

func TestExecuteWorkflow_CVUploadInlineToken(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "Welcome", "Apply here: {cv_upload_link}. Good luck!")
	w := f.seedWorkflow(t, &models.Workflow{
		Name: "sourcing", TriggerStage: models.StageNew, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	job := &models.Job{UserID: f.userID, Title: "Backend Engineer", Company: "Initech", Status: "open"}
	require.NoError(t, f.mem.Stores().Jobs.Create(ctx, job))
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageNew, JobID: &job.ID})

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)

	sent := f.sender.sent[0].HTMLContent
	assert.NotContains(t, sent, "{cv_upload_link}")
	assert.Contains(t, sent, `<a href="http://localhost:3001/jobs/apply/`)
	assert.NotContains(t, sent, "Please upload your CV", "inline substitution must not append the section")
}

func TestExecuteWorkflow_CVUploadReusesExistingToken(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "Welcome", "{cv_upload_link}")
	w := f.seedWorkflow(t, &models.Workflow{
		Name: "sourcing", TriggerStage: models.StageNew, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	job := &models.Job{UserID: f.userID, Title: "BE", Company: "Initech", Status: "open"}
	require.NoError(t, f.mem.Stores().Jobs.Create(ctx, job))
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageNew, JobID: &job.ID})

	require.NoError(t, f.mem.Stores().Candidates.SetUploadToken(ctx, c.ID, "existing-token", time.Now().Add(time.Hour)))

	err := f.engine.ExecuteWorkflow(ctx, w.ID, c.ID, f.userID, false)
	require.NoError(t, err)
	assert.Contains(t, f.sender.sent[0].HTMLContent, "token=existing-token")
}

func TestExecuteWorkflowsForStage_EndToEnd(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "Screening for {candidate_name}", "b")
	f.seedWorkflow(t, &models.Workflow{
		Name: "A", TriggerStage: models.StageScreening, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{
		Name: "Carla", Email: "carla@example.com", Stage: models.StageScreening,
		AIMatchScore: intPtr(80),
	})

	f.engine.ExecuteWorkflowsForStage(ctx, c.ID, models.StageScreening, f.userID, false)

	execs := f.mem.Executions()
	require.Len(t, execs, 1)
	assert.Equal(t, models.ExecutionSent, execs[0].Status)

	logs := f.mem.EmailLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "carla@example.com", logs[0].Recipient)
}

func TestExecuteWorkflowsForStage_MixedFilters(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	filtered := f.seedWorkflow(t, &models.Workflow{
		Name: "referrals only", TriggerStage: models.StageScreening, Enabled: true,
		EmailTemplateID: tmpl.ID, SourceFilter: []string{"referral"},
	})
	open := f.seedWorkflow(t, &models.Workflow{
		Name: "everyone", TriggerStage: models.StageScreening, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening, Source: "sourced"})

	f.engine.ExecuteWorkflowsForStage(ctx, c.ID, models.StageScreening, f.userID, false)

	assert.Equal(t, 1, f.sender.sentCount())

	byWorkflow := map[int]models.ExecutionStatus{}
	for _, e := range f.mem.Executions() {
		byWorkflow[e.WorkflowID] = e.Status
	}
	assert.Equal(t, models.ExecutionSkipped, byWorkflow[filtered.ID])
	assert.Equal(t, models.ExecutionSent, byWorkflow[open.ID])
}

func TestExecuteWorkflowsForStage_FailureIsolation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	f.seedWorkflow(t, &models.Workflow{
		Name: "broken template ref", TriggerStage: models.StageScreening, Enabled: true,
		EmailTemplateID: 9999,
	})
	f.seedWorkflow(t, &models.Workflow{
		Name: "healthy", TriggerStage: models.StageScreening, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	f.engine.ExecuteWorkflowsForStage(ctx, c.ID, models.StageScreening, f.userID, false)

	assert.Equal(t, 1, f.sender.sentCount(), "broken workflow must not block siblings")
}

func TestExecuteWorkflowsForStage_SkipIfAlreadySent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "s", "b")
	f.seedWorkflow(t, &models.Workflow{
		Name: "w", TriggerStage: models.StageScreening, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageScreening})

	// First run sends.
	f.engine.ExecuteWorkflowsForStage(ctx, c.ID, models.StageScreening, f.userID, true)
	require.Equal(t, 1, f.sender.sentCount())

	// A repeated trigger with skipIfAlreadySent does nothing.
	f.engine.ExecuteWorkflowsForStage(ctx, c.ID, models.StageScreening, f.userID, true)
	assert.Equal(t, 1, f.sender.sentCount())
	require.Len(t, f.mem.Executions(), 1)
}

func TestExecuteWorkflowsForStage_OfferDedupWindow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	tmpl := f.seedTemplate(t, "Offer for {candidate_name}", "b")
	f.seedWorkflow(t, &models.Workflow{
		Name: "offer", TriggerStage: models.StageOffer, Enabled: true, EmailTemplateID: tmpl.ID,
	})
	c := f.seedCandidate(t, &models.Candidate{Name: "Ada", Stage: models.StageOffer})

	// A manual offer email was just logged.
	require.NoError(t, f.mem.Stores().EmailLogs.Create(ctx, &models.EmailLog{
		UserID: f.userID, CandidateID: c.ID, Recipient: c.Email,
		EmailType: "offer", Status: "sent",
	}))

	f.engine.ExecuteWorkflowsForStage(ctx, c.ID, models.StageOffer, f.userID, true)
	assert.Equal(t, 0, f.sender.sentCount(), "offer workflow must not double-send within the window")

	// Past the window the workflow fires.
	f.engine.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	f.engine.ExecuteWorkflowsForStage(ctx, c.ID, models.StageOffer, f.userID, true)
	assert.Equal(t, 1, f.sender.sentCount())
}
