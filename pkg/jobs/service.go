package jobs

import (
	"context"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// Service handles job posting operations.
type Service struct {
	jobs domain.JobStore
}

// NewService creates a new jobs service.
func NewService(jobs domain.JobStore) *Service {
	return &Service{jobs: jobs}
}

// CreateJobRequest represents a request to create a job posting.
type CreateJobRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Company     string `json:"company" validate:"required,max=200"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty" validate:"max=200"`
	SalaryMin   *int64 `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax   *int64 `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
}

// UpdateJobRequest represents a partial job posting update.
type UpdateJobRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Company     *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=200"`
	SalaryMin   *int64  `json:"salary_min,omitempty" validate:"omitempty,min=0"`
	SalaryMax   *int64  `json:"salary_max,omitempty" validate:"omitempty,min=0"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=open closed"`
}

// Create creates a job posting. New postings default to open.
func (s *Service) Create(ctx context.Context, userID int, req CreateJobRequest) (*models.Job, error) {
	status := req.Status
	if status == "" {
		status = "open"
	}
	j := &models.Job{
		UserID:      userID,
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Location:    req.Location,
		SalaryMin:   req.SalaryMin,
		SalaryMax:   req.SalaryMax,
		Status:      status,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Get returns a job posting owned by the user.
func (s *Service) Get(ctx context.Context, id, userID int) (*models.Job, error) {
	return s.jobs.GetForUser(ctx, id, userID)
}

// List returns all job postings owned by the user.
func (s *Service) List(ctx context.Context, userID int) ([]*models.Job, error) {
	return s.jobs.ListForUser(ctx, userID)
}

// Update applies a partial update to a job posting.
func (s *Service) Update(ctx context.Context, id, userID int, req UpdateJobRequest) (*models.Job, error) {
	j, err := s.jobs.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		j.Title = *req.Title
	}
	if req.Company != nil {
		j.Company = *req.Company
	}
	if req.Description != nil {
		j.Description = *req.Description
	}
	if req.Location != nil {
		j.Location = *req.Location
	}
	if req.SalaryMin != nil {
		j.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		j.SalaryMax = req.SalaryMax
	}
	if req.Status != nil {
		j.Status = *req.Status
	}
	if err := s.jobs.Update(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Delete removes a job posting owned by the user.
func (s *Service) Delete(ctx context.Context, id, userID int) error {
	return s.jobs.Delete(ctx, id, userID)
}
