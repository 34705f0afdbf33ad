package template

import (
	"context"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// Service handles email template operations. Templates are user-owned;
// subject and body carry {snake_case} placeholder tokens substituted by the
// workflow engine at send time.
type Service struct {
	templates domain.TemplateStore
}

// NewService creates a new template service.
func NewService(templates domain.TemplateStore) *Service {
	return &Service{templates: templates}
}

// CreateTemplateRequest represents a request to create a template.
type CreateTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=500"`
	Body    string `json:"body" validate:"required"`
}

// UpdateTemplateRequest represents a partial template update.
type UpdateTemplateRequest struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Subject *string `json:"subject,omitempty" validate:"omitempty,max=500"`
	Body    *string `json:"body,omitempty"`
}

// Create creates a template.
func (s *Service) Create(ctx context.Context, userID int, req CreateTemplateRequest) (*models.Template, error) {
	t := &models.Template{
		UserID:  userID,
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Get returns a template owned by the user.
func (s *Service) Get(ctx context.Context, id, userID int) (*models.Template, error) {
	return s.templates.GetForUser(ctx, id, userID)
}

// List returns all templates owned by the user.
func (s *Service) List(ctx context.Context, userID int) ([]*models.Template, error) {
	return s.templates.ListForUser(ctx, userID)
}

// Update applies a partial update to a template.
func (s *Service) Update(ctx context.Context, id, userID int, req UpdateTemplateRequest) (*models.Template, error) {
	t, err := s.templates.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Subject != nil {
		t.Subject = *req.Subject
	}
	if req.Body != nil {
		t.Body = *req.Body
	}
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a template owned by the user.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	return s.templates.Delete(ctx, id, userID)
}
