package workflow

import (
	"context"
	"fmt"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// Service handles workflow CRUD operations. All operations are scoped to
// the owning user; the engine itself never mutates workflows.
type Service struct {
	workflows  domain.WorkflowStore
	templates  domain.TemplateStore
	executions domain.ExecutionStore
}

// NewService creates a new workflow service.
func NewService(workflows domain.WorkflowStore, templates domain.TemplateStore, executions domain.ExecutionStore) *Service {
	return &Service{workflows: workflows, templates: templates, executions: executions}
}

// CreateWorkflowRequest represents a request to create a workflow.
type CreateWorkflowRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	TriggerStage    string   `json:"trigger_stage" validate:"required"`
	EmailTemplateID int      `json:"email_template_id" validate:"required"`
	Enabled         *bool    `json:"enabled,omitempty"`
	MinMatchScore   *int     `json:"min_match_score,omitempty" validate:"omitempty,min=0,max=100"`
	SourceFilter    []string `json:"source_filter,omitempty"`
	DelayMinutes    int      `json:"delay_minutes" validate:"min=0"`
}

// UpdateWorkflowRequest represents a request to update a workflow. Nil
// fields are left unchanged.
type UpdateWorkflowRequest struct {
	Name            *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	TriggerStage    *string   `json:"trigger_stage,omitempty"`
	EmailTemplateID *int      `json:"email_template_id,omitempty"`
	Enabled         *bool     `json:"enabled,omitempty"`
	MinMatchScore   *int      `json:"min_match_score,omitempty" validate:"omitempty,min=0,max=100"`
	SourceFilter    *[]string `json:"source_filter,omitempty"`
	DelayMinutes    *int      `json:"delay_minutes,omitempty" validate:"omitempty,min=0"`
}

// Create creates a new workflow after validating the trigger stage and the
// template reference. Workflows are enabled by default.
func (s *Service) Create(ctx context.Context, userID int, req CreateWorkflowRequest) (*models.Workflow, error) {
	stage := models.Stage(req.TriggerStage)
	if !stage.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown trigger stage: %s", req.TriggerStage))
	}

	if _, err := s.templates.GetForUser(ctx, req.EmailTemplateID, userID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewValidationError("email template not found")
		}
		return nil, err
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	w := &models.Workflow{
		UserID:          userID,
		Name:            req.Name,
		TriggerStage:    stage,
		Enabled:         enabled,
		EmailTemplateID: req.EmailTemplateID,
		MinMatchScore:   req.MinMatchScore,
		SourceFilter:    req.SourceFilter,
		DelayMinutes:    req.DelayMinutes,
	}
	if err := s.workflows.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Get returns a workflow owned by the user.
func (s *Service) Get(ctx context.Context, id, userID int) (*models.Workflow, error) {
	return s.workflows.GetForUser(ctx, id, userID)
}

// List returns all workflows owned by the user.
func (s *Service) List(ctx context.Context, userID int) ([]*models.Workflow, error) {
	return s.workflows.ListForUser(ctx, userID)
}

// Update applies a partial update to a workflow.
func (s *Service) Update(ctx context.Context, id, userID int, req UpdateWorkflowRequest) (*models.Workflow, error) {
	w, err := s.workflows.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.TriggerStage != nil {
		stage := models.Stage(*req.TriggerStage)
		if !stage.Valid() {
			return nil, domain.NewValidationError(fmt.Sprintf("unknown trigger stage: %s", *req.TriggerStage))
		}
		w.TriggerStage = stage
	}
	if req.EmailTemplateID != nil {
		if _, err := s.templates.GetForUser(ctx, *req.EmailTemplateID, userID); err != nil {
			if domain.IsNotFound(err) {
				return nil, domain.NewValidationError("email template not found")
			}
			return nil, err
		}
		w.EmailTemplateID = *req.EmailTemplateID
	}
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Enabled != nil {
		w.Enabled = *req.Enabled
	}
	if req.MinMatchScore != nil {
		w.MinMatchScore = req.MinMatchScore
	}
	if req.SourceFilter != nil {
		w.SourceFilter = *req.SourceFilter
	}
	if req.DelayMinutes != nil {
		w.DelayMinutes = *req.DelayMinutes
	}

	if err := s.workflows.Update(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes a workflow owned by the user.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	return s.workflows.Delete(ctx, id, userID)
}

// Executions returns the execution history for a workflow owned by the
// user, newest first.
func (s *Service) Executions(ctx context.Context, id, userID int) ([]*models.WorkflowExecution, error) {
	if _, err := s.workflows.GetForUser(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.executions.ListForWorkflow(ctx, id)
}
