package models

import "time"

// Job is a job posting that candidates apply to. The workflow engine reads
// title and company for placeholder substitution.
type Job struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	SalaryMin   *int64    `json:"salary_min,omitempty"`
	SalaryMax   *int64    `json:"salary_max,omitempty"`
	Status      string    `json:"status"` // open, closed
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Template is an email template. Subject and body may contain {snake_case}
// placeholder tokens that the workflow engine substitutes at send time.
type Template struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
