package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/talentdb/pkg/candidate"
	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/export"
	"github.com/jordanlanch/talentdb/pkg/logger"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/store"
	"github.com/jordanlanch/talentdb/pkg/workflow"
)

const testUserID = 1

type captureSender struct {
	mu   sync.Mutex
	sent []models.EmailRequest
}

func (s *captureSender) Send(_ context.Context, req models.EmailRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, req)
	return nil
}

func (s *captureSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type testAPI struct {
	echo      *echo.Echo
	mem       *store.Memory
	stores    domain.Stores
	sender    *captureSender
	workflow  *WorkflowHandler
	candidate *CandidateHandler
	export    *ExportHandler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	e := echo.New()
	e.Validator = NewValidator()

	mem := store.NewMemory()
	stores := mem.Stores()
	sender := &captureSender{}
	log := logger.New("error", "text")

	engine := workflow.NewEngine(stores, sender, nil, log, "https://app.example.com")
	workflowSvc := workflow.NewService(stores.Workflows, stores.Templates, stores.Executions)
	candidateSvc := candidate.NewService(stores.Candidates, stores.Jobs, nil, nil, nil, nil, log)
	exportSvc := export.NewService(stores.Candidates, nil)

	return &testAPI{
		echo:      e,
		mem:       mem,
		stores:    stores,
		sender:    sender,
		workflow:  NewWorkflowHandler(workflowSvc, engine),
		candidate: NewCandidateHandler(candidateSvc),
		export:    NewExportHandler(exportSvc),
	}
}

// request builds an authenticated echo context around a recorded request.
func (a *testAPI) request(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := a.echo.NewContext(req, rec)
	c.Set("user_id", testUserID)
	return c, rec
}

func (a *testAPI) seedTemplate(t *testing.T) *models.Template {
	t.Helper()
	tmpl := &models.Template{
		UserID:  testUserID,
		Name:    "interview invite",
		Subject: "Interview for {job_title}",
		Body:    "<p>Hi {candidate_name}, let's talk about {job_title}.</p>",
	}
	require.NoError(t, a.stores.Templates.Create(context.Background(), tmpl))
	return tmpl
}

func (a *testAPI) seedWorkflow(t *testing.T, templateID int, stage models.Stage, enabled bool) *models.Workflow {
	t.Helper()
	w := &models.Workflow{
		UserID:          testUserID,
		Name:            "auto " + string(stage),
		TriggerStage:    stage,
		EmailTemplateID: templateID,
		Enabled:         enabled,
	}
	require.NoError(t, a.stores.Workflows.Create(context.Background(), w))
	return w
}

func (a *testAPI) seedCandidate(t *testing.T, stage models.Stage) *models.Candidate {
	t.Helper()
	c := &models.Candidate{
		UserID: testUserID,
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Stage:  stage,
		Role:   "Backend Engineer",
		Source: "referral",
	}
	require.NoError(t, a.stores.Candidates.Create(context.Background(), c))
	return c
}

func setPathID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}
