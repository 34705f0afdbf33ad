package candidate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jordanlanch/talentdb/pkg/cache"
	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/logger"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/store"
)

type triggerCall struct {
	candidateID       int
	stage             models.Stage
	userID            int
	skipIfAlreadySent bool
}

// fakeTrigger records trigger calls; ChangeStage fires on a goroutine so
// recording is synchronized and waitable.
type fakeTrigger struct {
	mu    sync.Mutex
	calls []triggerCall
	fired chan struct{}
}

func newFakeTrigger() *fakeTrigger {
	return &fakeTrigger{fired: make(chan struct{}, 10)}
}

func (f *fakeTrigger) ExecuteWorkflowsForStage(_ context.Context, candidateID int, stage models.Stage, userID int, skip bool) {
	f.mu.Lock()
	f.calls = append(f.calls, triggerCall{candidateID, stage, userID, skip})
	f.mu.Unlock()
	f.fired <- struct{}{}
}

func (f *fakeTrigger) wait(t *testing.T) triggerCall {
	t.Helper()
	select {
	case <-f.fired:
	case <-time.After(2 * time.Second):
		t.Fatal("workflow trigger was never fired")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fakeScorer struct {
	score int
}

func (f *fakeScorer) ScoreMatch(_ context.Context, _, _ string) (int, error) {
	return f.score, nil
}

func newTestService(t *testing.T) (*Service, *store.Memory, *fakeTrigger) {
	t.Helper()
	mem := store.NewMemory()
	trigger := newFakeTrigger()
	stores := mem.Stores()
	svc := NewService(stores.Candidates, stores.Jobs, nil, nil, trigger, nil, logger.New("error", "text"))
	return svc, mem, trigger
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newTestService(t)

	c, err := svc.Create(context.Background(), 1, CreateCandidateRequest{
		Name:   "Ada Lovelace",
		Email:  "ada@example.com",
		Phone:  "(415) 555-2671",
		Source: "referral",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, models.StageNew, c.Stage, "candidates default to the new stage")
	assert.Equal(t, "+14155552671", c.Phone, "phone is normalized to E.164")
}

func TestService_Create_InvalidStage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), 1, CreateCandidateRequest{
		Name: "Ada", Email: "ada@example.com", Stage: "limbo",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestService_Create_UnparsablePhoneKeptRaw(t *testing.T) {
	svc, _, _ := newTestService(t)

	c, err := svc.Create(context.Background(), 1, CreateCandidateRequest{
		Name: "Ada", Email: "ada@example.com", Phone: "ext. 12",
	})
	require.NoError(t, err)
	assert.Equal(t, "ext. 12", c.Phone)
}

func TestService_Create_WithMatchScoring(t *testing.T) {
	mem := store.NewMemory()
	stores := mem.Stores()
	ctx := context.Background()

	job := &models.Job{UserID: 1, Title: "Backend Engineer", Company: "Initech", Description: "Go services", Status: "open"}
	require.NoError(t, stores.Jobs.Create(ctx, job))

	svc := NewService(stores.Candidates, stores.Jobs, nil, &fakeScorer{score: 77}, nil, nil, logger.New("error", "text"))

	c, err := svc.Create(ctx, 1, CreateCandidateRequest{
		Name: "Ada", Email: "ada@example.com", Role: "Go developer", JobID: &job.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, c.AIMatchScore)
	assert.Equal(t, 77, *c.AIMatchScore)
}

func TestService_ChangeStage_FiresWorkflows(t *testing.T) {
	svc, _, trigger := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCandidateRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	updated, err := svc.ChangeStage(ctx, c.ID, 1, models.StageScreening)
	require.NoError(t, err)
	assert.Equal(t, models.StageScreening, updated.Stage)

	call := trigger.wait(t)
	assert.Equal(t, c.ID, call.candidateID)
	assert.Equal(t, models.StageScreening, call.stage)
	assert.Equal(t, 1, call.userID)
	assert.True(t, call.skipIfAlreadySent)
}

func TestService_ChangeStage_NoopWhenUnchanged(t *testing.T) {
	svc, _, trigger := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCandidateRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.ChangeStage(ctx, c.ID, 1, models.StageNew)
	require.NoError(t, err)

	select {
	case <-trigger.fired:
		t.Fatal("workflows must not fire when the stage did not change")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestService_ChangeStage_InvalidStage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ChangeStage(context.Background(), 1, 1, models.Stage("limbo"))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestService_List_Cached(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisCache := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	defer redisCache.Close()

	mem := store.NewMemory()
	stores := mem.Stores()
	svc := NewService(stores.Candidates, stores.Jobs, redisCache, nil, nil, nil, logger.New("error", "text"))
	ctx := context.Background()

	_, err = svc.Create(ctx, 1, CreateCandidateRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	first, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The second read is served from cache: mutate the store underneath
	// and the list stays stale.
	c2 := &models.Candidate{UserID: 1, Name: "Grace", Email: "grace@example.com", Stage: models.StageNew}
	require.NoError(t, stores.Candidates.Create(ctx, c2))

	second, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, second, 1, "cached list is returned until invalidated")

	// A mutation through the service invalidates the cache.
	_, err = svc.Create(ctx, 1, CreateCandidateRequest{Name: "Linus", Email: "linus@example.com"})
	require.NoError(t, err)

	third, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, third, 3)
}

func TestService_UserScoping(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, 1, CreateCandidateRequest{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, c.ID, 2)
	assert.True(t, domain.IsNotFound(err))

	err = svc.Delete(ctx, c.ID, 2)
	assert.True(t, domain.IsNotFound(err))
}
