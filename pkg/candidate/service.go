package candidate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/logger"
	"github.com/jordanlanch/talentdb/pkg/metrics"
	"github.com/jordanlanch/talentdb/pkg/models"
	"github.com/jordanlanch/talentdb/pkg/phone"
)

// listCacheTTL bounds how stale the cached candidate list may be.
const listCacheTTL = 5 * time.Minute

// WorkflowTrigger fires stage workflows after a candidate transition. The
// workflow engine satisfies this.
type WorkflowTrigger interface {
	ExecuteWorkflowsForStage(ctx context.Context, candidateID int, stage models.Stage, userID int, skipIfAlreadySent bool)
}

// Service handles candidate operations.
type Service struct {
	candidates domain.CandidateStore
	jobs       domain.JobStore
	cache      domain.CacheRepository
	scorer     domain.MatchScorer
	trigger    WorkflowTrigger
	metrics    *metrics.Metrics
	log        logger.Logger
}

// NewService creates a candidate service. cache, scorer, trigger and
// metrics are all optional.
func NewService(candidates domain.CandidateStore, jobs domain.JobStore, cache domain.CacheRepository,
	scorer domain.MatchScorer, trigger WorkflowTrigger, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		candidates: candidates,
		jobs:       jobs,
		cache:      cache,
		scorer:     scorer,
		trigger:    trigger,
		metrics:    m,
		log:        log,
	}
}

// CreateCandidateRequest represents a request to create a candidate.
type CreateCandidateRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"` // region hint for phone normalization
	Stage   string `json:"stage,omitempty"`
	Role    string `json:"role,omitempty" validate:"max=200"`
	JobID   *int   `json:"job_id,omitempty"`
	Source  string `json:"source,omitempty"`
	IsTest  bool   `json:"is_test,omitempty"`
}

// UpdateCandidateRequest represents a partial candidate update. Stage is
// deliberately absent; stage transitions go through ChangeStage so the
// workflow engine fires.
type UpdateCandidateRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty"`
	Country   *string `json:"country,omitempty"`
	Role      *string `json:"role,omitempty" validate:"omitempty,max=200"`
	JobID     *int    `json:"job_id,omitempty"`
	Source    *string `json:"source,omitempty"`
	CVFileURL *string `json:"cv_file_url,omitempty"`
}

// Create creates a candidate. Phone numbers are normalized to E.164 when
// they parse; when a job is linked and a scorer is configured, an AI match
// score is computed best-effort.
func (s *Service) Create(ctx context.Context, userID int, req CreateCandidateRequest) (*models.Candidate, error) {
	stage := models.StageNew
	if req.Stage != "" {
		stage = models.Stage(req.Stage)
		if !stage.Valid() {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown stage: %s", req.Stage))
		}
	}

	c := &models.Candidate{
		UserID: userID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  s.normalizePhone(req.Phone, req.Country),
		Stage:  stage,
		Role:   req.Role,
		JobID:  req.JobID,
		Source: req.Source,
		IsTest: req.IsTest,
	}

	if s.scorer != nil && c.JobID != nil {
		if score, ok := s.scoreMatch(ctx, userID, c); ok {
			c.AIMatchScore = &score
		}
	}

	if err := s.candidates.Create(ctx, c); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, userID)
	if s.metrics != nil {
		s.metrics.RecordCandidateCreated()
	}
	return c, nil
}

// Get returns a candidate owned by the user.
func (s *Service) Get(ctx context.Context, id, userID int) (*models.Candidate, error) {
	return s.candidates.GetForUser(ctx, id, userID)
}

// List returns all candidates owned by the user, served from cache when
// possible.
func (s *Service) List(ctx context.Context, userID int) ([]*models.Candidate, error) {
	key := listCacheKey(userID)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var cached []*models.Candidate
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				if s.metrics != nil {
					s.metrics.RecordCacheHit("redis")
				}
				return cached, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss("redis")
		}
	}

	list, err := s.candidates.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(list); err == nil {
			if err := s.cache.Set(ctx, key, raw, listCacheTTL); err != nil {
				s.log.Warn("failed to cache candidate list", "error", err)
			}
		}
	}
	return list, nil
}

// Update applies a partial update to a candidate.
func (s *Service) Update(ctx context.Context, id, userID int, req UpdateCandidateRequest) (*models.Candidate, error) {
	c, err := s.candidates.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.Phone != nil {
		country := ""
		if req.Country != nil {
			country = *req.Country
		}
		c.Phone = s.normalizePhone(*req.Phone, country)
	}
	if req.Role != nil {
		c.Role = *req.Role
	}
	if req.JobID != nil {
		c.JobID = req.JobID
	}
	if req.Source != nil {
		c.Source = *req.Source
	}
	if req.CVFileURL != nil {
		c.CVFileURL = req.CVFileURL
	}

	if err := s.candidates.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, userID)
	return c, nil
}

// ChangeStage moves a candidate to a new pipeline stage and fires the
// matching workflows on a detached goroutine. The stage change itself never
// fails because of email automation.
func (s *Service) ChangeStage(ctx context.Context, id, userID int, stage models.Stage) (*models.Candidate, error) {
	if !stage.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown stage: %s", stage))
	}

	c, err := s.candidates.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if c.Stage == stage {
		return c, nil
	}

	if err := s.candidates.UpdateStage(ctx, id, userID, stage); err != nil {
		return nil, err
	}
	c.Stage = stage

	s.invalidateCache(ctx, userID)
	if s.metrics != nil {
		s.metrics.RecordStageChange(string(stage))
	}

	if s.trigger != nil {
		// Fire-and-forget: the request context ends with the response, so
		// the workflows run under a fresh one.
		go s.trigger.ExecuteWorkflowsForStage(context.Background(), id, stage, userID, true)
	}
	return c, nil
}

// Delete removes a candidate owned by the user.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	if err := s.candidates.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *Service) normalizePhone(raw, country string) string {
	if raw == "" {
		return ""
	}
	normalized, err := phone.NormalizePhone(raw, country)
	if err != nil {
		// Imported data carries numbers in every shape; keep the raw value
		// rather than rejecting the candidate.
		s.log.Warn("failed to normalize phone, keeping raw value", "error", err)
		return raw
	}
	return normalized
}

func (s *Service) scoreMatch(ctx context.Context, userID int, c *models.Candidate) (int, bool) {
	job, err := s.jobs.GetForUser(ctx, *c.JobID, userID)
	if err != nil {
		s.log.Warn("job lookup failed, skipping match scoring", "job_id", *c.JobID, "error", err)
		return 0, false
	}

	profile := fmt.Sprintf("Name: %s\nRole: %s\nSource: %s", c.Name, c.Role, c.Source)
	score, err := s.scorer.ScoreMatch(ctx, profile, job.Description)
	if err != nil {
		s.log.Warn("match scoring failed", "candidate", c.Name, "error", err)
		return 0, false
	}
	return score, true
}

func (s *Service) invalidateCache(ctx context.Context, userID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, fmt.Sprintf("candidates:%d:*", userID)); err != nil {
		s.log.Warn("failed to invalidate candidate cache", "user_id", userID, "error", err)
	}
}

func listCacheKey(userID int) string {
	return fmt.Sprintf("candidates:%d:list", userID)
}
