package models

import "time"

// Candidate is a person moving through the hiring pipeline.
//
// The workflow engine only reads candidates, with one exception: it may
// lazily populate CVUploadToken/CVTokenExpiresAt when a "new" stage email
// needs an upload link.
type Candidate struct {
	ID               int        `json:"id"`
	UserID           int        `json:"user_id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone,omitempty"`
	Stage            Stage      `json:"stage"`
	Role             string     `json:"role"`
	JobID            *int       `json:"job_id,omitempty"`
	AIMatchScore     *int       `json:"ai_match_score,omitempty"`
	Source           string     `json:"source"`
	IsTest           bool       `json:"is_test"`
	CVUploadToken    *string    `json:"-"`
	CVTokenExpiresAt *time.Time `json:"-"`
	CVFileURL        *string    `json:"cv_file_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// MatchScore returns the candidate's AI match score, defaulting to 0 when
// no score has been computed.
func (c *Candidate) MatchScore() int {
	if c.AIMatchScore == nil {
		return 0
	}
	return *c.AIMatchScore
}

// HasCV reports whether the candidate has an uploaded CV on file.
func (c *Candidate) HasCV() bool {
	return c.CVFileURL != nil && *c.CVFileURL != ""
}
