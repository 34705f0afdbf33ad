package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// Memory is an in-memory implementation of every domain store interface.
// It mirrors the Postgres semantics the engine depends on, including the
// single-pending-execution constraint, and backs the service and engine
// tests.
type Memory struct {
	mu sync.Mutex

	nextID     int
	workflows  map[int]*models.Workflow
	candidates map[int]*models.Candidate
	templates  map[int]*models.Template
	jobs       map[int]*models.Job
	offers     map[int]*models.Offer
	executions map[int]*models.WorkflowExecution
	emailLogs  map[int]*models.EmailLog
	users      map[int]*models.User
}

// NewMemory creates an empty in-memory store bundle.
func NewMemory() *Memory {
	return &Memory{
		nextID:     1,
		workflows:  make(map[int]*models.Workflow),
		candidates: make(map[int]*models.Candidate),
		templates:  make(map[int]*models.Template),
		jobs:       make(map[int]*models.Job),
		offers:     make(map[int]*models.Offer),
		executions: make(map[int]*models.WorkflowExecution),
		emailLogs:  make(map[int]*models.EmailLog),
		users:      make(map[int]*models.User),
	}
}

// Stores exposes the memory store through the domain interface bundle.
func (m *Memory) Stores() domain.Stores {
	return domain.Stores{
		Workflows:  (*memWorkflows)(m),
		Candidates: (*memCandidates)(m),
		Templates:  (*memTemplates)(m),
		Jobs:       (*memJobs)(m),
		Offers:     (*memOffers)(m),
		Executions: (*memExecutions)(m),
		EmailLogs:  (*memEmailLogs)(m),
		Users:      (*memUsers)(m),
	}
}

func (m *Memory) id() int {
	id := m.nextID
	m.nextID++
	return id
}

// AddUser seeds a user row.
func (m *Memory) AddUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.id()
	}
	m.users[u.ID] = u
}

// Executions returns a snapshot of every execution row, newest last.
func (m *Memory) Executions() []*models.WorkflowExecution {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.WorkflowExecution, 0, len(m.executions))
	for _, e := range m.executions {
		copied := *e
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EmailLogs returns a snapshot of every email log row.
func (m *Memory) EmailLogs() []*models.EmailLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.EmailLog, 0, len(m.emailLogs))
	for _, l := range m.emailLogs {
		copied := *l
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type memWorkflows Memory

func (m *memWorkflows) Create(_ context.Context, w *models.Workflow) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	w.ID = mm.id()
	now := time.Now()
	w.CreatedAt, w.UpdatedAt = now, now
	copied := *w
	mm.workflows[w.ID] = &copied
	return nil
}

func (m *memWorkflows) GetForUser(_ context.Context, id, userID int) (*models.Workflow, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	w, ok := mm.workflows[id]
	if !ok || w.UserID != userID {
		return nil, domain.NewNotFoundError("workflow")
	}
	copied := *w
	return &copied, nil
}

func (m *memWorkflows) ListForUser(_ context.Context, userID int) ([]*models.Workflow, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var result []*models.Workflow
	for _, w := range mm.workflows {
		if w.UserID == userID {
			copied := *w
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memWorkflows) ListEnabledByStage(_ context.Context, userID int, stage models.Stage) ([]*models.Workflow, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var result []*models.Workflow
	for _, w := range mm.workflows {
		if w.UserID == userID && w.TriggerStage == stage && w.Enabled {
			copied := *w
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memWorkflows) Update(_ context.Context, w *models.Workflow) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	existing, ok := mm.workflows[w.ID]
	if !ok || existing.UserID != w.UserID {
		return domain.NewNotFoundError("workflow")
	}
	w.UpdatedAt = time.Now()
	copied := *w
	mm.workflows[w.ID] = &copied
	return nil
}

func (m *memWorkflows) Delete(_ context.Context, id, userID int) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	w, ok := mm.workflows[id]
	if !ok || w.UserID != userID {
		return domain.NewNotFoundError("workflow")
	}
	delete(mm.workflows, id)
	return nil
}

type memCandidates Memory

func (m *memCandidates) Create(_ context.Context, c *models.Candidate) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	c.ID = mm.id()
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	copied := *c
	mm.candidates[c.ID] = &copied
	return nil
}

func (m *memCandidates) GetForUser(_ context.Context, id, userID int) (*models.Candidate, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	c, ok := mm.candidates[id]
	if !ok || c.UserID != userID {
		return nil, domain.NewNotFoundError("candidate")
	}
	copied := *c
	return &copied, nil
}

func (m *memCandidates) ListForUser(_ context.Context, userID int) ([]*models.Candidate, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var result []*models.Candidate
	for _, c := range mm.candidates {
		if c.UserID == userID {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memCandidates) Update(_ context.Context, c *models.Candidate) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	existing, ok := mm.candidates[c.ID]
	if !ok || existing.UserID != c.UserID {
		return domain.NewNotFoundError("candidate")
	}
	c.UpdatedAt = time.Now()
	copied := *c
	copied.CVUploadToken = existing.CVUploadToken
	copied.CVTokenExpiresAt = existing.CVTokenExpiresAt
	mm.candidates[c.ID] = &copied
	return nil
}

func (m *memCandidates) UpdateStage(_ context.Context, id, userID int, stage models.Stage) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	c, ok := mm.candidates[id]
	if !ok || c.UserID != userID {
		return domain.NewNotFoundError("candidate")
	}
	c.Stage = stage
	c.UpdatedAt = time.Now()
	return nil
}

func (m *memCandidates) SetUploadToken(_ context.Context, id int, token string, expiresAt time.Time) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	c, ok := mm.candidates[id]
	if !ok {
		return domain.NewNotFoundError("candidate")
	}
	c.CVUploadToken = &token
	c.CVTokenExpiresAt = &expiresAt
	c.UpdatedAt = time.Now()
	return nil
}

func (m *memCandidates) PurgeExpiredUploadTokens(_ context.Context, now time.Time) (int, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	purged := 0
	for _, c := range mm.candidates {
		if c.CVUploadToken != nil && c.CVTokenExpiresAt != nil && c.CVTokenExpiresAt.Before(now) {
			c.CVUploadToken = nil
			c.CVTokenExpiresAt = nil
			purged++
		}
	}
	return purged, nil
}

func (m *memCandidates) Delete(_ context.Context, id, userID int) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	c, ok := mm.candidates[id]
	if !ok || c.UserID != userID {
		return domain.NewNotFoundError("candidate")
	}
	delete(mm.candidates, id)
	return nil
}

type memTemplates Memory

func (m *memTemplates) Create(_ context.Context, t *models.Template) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	t.ID = mm.id()
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	copied := *t
	mm.templates[t.ID] = &copied
	return nil
}

func (m *memTemplates) GetForUser(_ context.Context, id, userID int) (*models.Template, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	t, ok := mm.templates[id]
	if !ok || t.UserID != userID {
		return nil, domain.NewNotFoundError("template")
	}
	copied := *t
	return &copied, nil
}

func (m *memTemplates) ListForUser(_ context.Context, userID int) ([]*models.Template, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var result []*models.Template
	for _, t := range mm.templates {
		if t.UserID == userID {
			copied := *t
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memTemplates) Update(_ context.Context, t *models.Template) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	existing, ok := mm.templates[t.ID]
	if !ok || existing.UserID != t.UserID {
		return domain.NewNotFoundError("template")
	}
	t.UpdatedAt = time.Now()
	copied := *t
	mm.templates[t.ID] = &copied
	return nil
}

func (m *memTemplates) Delete(_ context.Context, id, userID int) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	t, ok := mm.templates[id]
	if !ok || t.UserID != userID {
		return domain.NewNotFoundError("template")
	}
	delete(mm.templates, id)
	return nil
}

type memJobs Memory

func (m *memJobs) Create(_ context.Context, j *models.Job) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	j.ID = mm.id()
	now := time.Now()
	j.CreatedAt, j.UpdatedAt = now, now
	copied := *j
	mm.jobs[j.ID] = &copied
	return nil
}

func (m *memJobs) GetForUser(_ context.Context, id, userID int) (*models.Job, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	j, ok := mm.jobs[id]
	if !ok || j.UserID != userID {
		return nil, domain.NewNotFoundError("job")
	}
	copied := *j
	return &copied, nil
}

func (m *memJobs) ListForUser(_ context.Context, userID int) ([]*models.Job, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var result []*models.Job
	for _, j := range mm.jobs {
		if j.UserID == userID {
			copied := *j
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *memJobs) Update(_ context.Context, j *models.Job) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	existing, ok := mm.jobs[j.ID]
	if !ok || existing.UserID != j.UserID {
		return domain.NewNotFoundError("job")
	}
	j.UpdatedAt = time.Now()
	copied := *j
	mm.jobs[j.ID] = &copied
	return nil
}

func (m *memJobs) Delete(_ context.Context, id, userID int) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	j, ok := mm.jobs[id]
	if !ok || j.UserID != userID {
		return domain.NewNotFoundError("job")
	}
	delete(mm.jobs, id)
	return nil
}

type memOffers Memory

func (m *memOffers) Create(_ context.Context, o *models.Offer) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	o.ID = mm.id()
	now := time.Now()
	o.CreatedAt, o.UpdatedAt = now, now
	copied := *o
	mm.offers[o.ID] = &copied
	return nil
}

func (m *memOffers) GetForUser(_ context.Context, id, userID int) (*models.Offer, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	o, ok := mm.offers[id]
	if !ok || o.UserID != userID {
		return nil, domain.NewNotFoundError("offer")
	}
	copied := *o
	return &copied, nil
}

func (m *memOffers) ListForCandidate(_ context.Context, candidateID int) ([]*models.Offer, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var result []*models.Offer
	for _, o := range mm.offers {
		if o.CandidateID == candidateID {
			copied := *o
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *memOffers) LatestOpen(_ context.Context, candidateID int) (*models.Offer, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var latest *models.Offer
	for _, o := range mm.offers {
		if o.CandidateID != candidateID {
			continue
		}
		open := false
		for _, st := range models.OpenOfferStatuses {
			if o.Status == st {
				open = true
				break
			}
		}
		if !open {
			continue
		}
		if latest == nil || o.ID > latest.ID {
			latest = o
		}
	}
	if latest == nil {
		return nil, domain.NewNotFoundError("offer")
	}
	copied := *latest
	return &copied, nil
}

func (m *memOffers) Update(_ context.Context, o *models.Offer) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	existing, ok := mm.offers[o.ID]
	if !ok || existing.UserID != o.UserID {
		return domain.NewNotFoundError("offer")
	}
	o.UpdatedAt = time.Now()
	copied := *o
	mm.offers[o.ID] = &copied
	return nil
}

type memExecutions Memory

func (m *memExecutions) CreatePending(_ context.Context, workflowID, candidateID int) (*models.WorkflowExecution, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for _, e := range mm.executions {
		if e.WorkflowID == workflowID && e.CandidateID == candidateID && e.Status == models.ExecutionPending {
			return nil, domain.ErrDuplicateExecution
		}
	}
	e := &models.WorkflowExecution{
		ID:          mm.id(),
		WorkflowID:  workflowID,
		CandidateID: candidateID,
		Status:      models.ExecutionPending,
		CreatedAt:   time.Now(),
	}
	mm.executions[e.ID] = e
	copied := *e
	return &copied, nil
}

func (m *memExecutions) CreateSkipped(_ context.Context, workflowID, candidateID int, reason string) (*models.WorkflowExecution, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	now := time.Now()
	e := &models.WorkflowExecution{
		ID:           mm.id(),
		WorkflowID:   workflowID,
		CandidateID:  candidateID,
		Status:       models.ExecutionSkipped,
		ErrorMessage: &reason,
		CreatedAt:    now,
		CompletedAt:  &now,
	}
	mm.executions[e.ID] = e
	copied := *e
	return &copied, nil
}

func (m *memExecutions) MarkSent(_ context.Context, id int, emailLogID int) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	e, ok := mm.executions[id]
	if !ok {
		return domain.NewNotFoundError("execution")
	}
	now := time.Now()
	e.Status = models.ExecutionSent
	if emailLogID != 0 {
		e.EmailLogID = &emailLogID
	}
	e.CompletedAt = &now
	return nil
}

func (m *memExecutions) MarkFailed(_ context.Context, id int, errorMessage string) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	e, ok := mm.executions[id]
	if !ok {
		return domain.NewNotFoundError("execution")
	}
	now := time.Now()
	e.Status = models.ExecutionFailed
	e.ErrorMessage = &errorMessage
	e.CompletedAt = &now
	return nil
}

func (m *memExecutions) ListForWorkflow(_ context.Context, workflowID int) ([]*models.WorkflowExecution, error) {
	mm := (*Memory)(m)
	var result []*models.WorkflowExecution
	for _, e := range mm.Executions() {
		if e.WorkflowID == workflowID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *memExecutions) ListForCandidate(_ context.Context, candidateID int) ([]*models.WorkflowExecution, error) {
	mm := (*Memory)(m)
	var result []*models.WorkflowExecution
	for _, e := range mm.Executions() {
		if e.CandidateID == candidateID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *memExecutions) HasSent(_ context.Context, workflowIDs []int, candidateID int) (bool, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for _, e := range mm.executions {
		if e.CandidateID != candidateID || e.Status != models.ExecutionSent {
			continue
		}
		for _, id := range workflowIDs {
			if e.WorkflowID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memExecutions) FailStalePending(_ context.Context, cutoff time.Time, errorMessage string) (int, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	swept := 0
	now := time.Now()
	for _, e := range mm.executions {
		if e.Status == models.ExecutionPending && e.CreatedAt.Before(cutoff) {
			e.Status = models.ExecutionFailed
			msg := errorMessage
			e.ErrorMessage = &msg
			e.CompletedAt = &now
			swept++
		}
	}
	return swept, nil
}

type memEmailLogs Memory

func (m *memEmailLogs) Create(_ context.Context, l *models.EmailLog) error {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	l.ID = mm.id()
	if l.SentAt.IsZero() {
		l.SentAt = time.Now()
	}
	copied := *l
	mm.emailLogs[l.ID] = &copied
	return nil
}

func (m *memEmailLogs) ListForCandidate(_ context.Context, candidateID int) ([]*models.EmailLog, error) {
	mm := (*Memory)(m)
	var result []*models.EmailLog
	for _, l := range mm.EmailLogs() {
		if l.CandidateID == candidateID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (m *memEmailLogs) HasRecent(_ context.Context, candidateID int, emailType string, since time.Time) (bool, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	for _, l := range mm.emailLogs {
		if l.CandidateID == candidateID && l.EmailType == emailType && !l.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type memUsers Memory

func (m *memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	mm := (*Memory)(m)
	mm.mu.Lock()
	defer mm.mu.Unlock()
	u, ok := mm.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}
	copied := *u
	return &copied, nil
}
