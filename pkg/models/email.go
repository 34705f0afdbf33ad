package models

import "time"

// EmailLog records an email that was actually dispatched. Informational;
// the engine writes it after a successful send and reads it only for the
// recent-offer-email de-duplication check.
type EmailLog struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	CandidateID int       `json:"candidate_id"`
	Recipient   string    `json:"recipient"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	FromName    string    `json:"from_name"`
	EmailType   string    `json:"email_type"`
	Status      string    `json:"status"`
	SentAt      time.Time `json:"sent_at"`
}

// EmailRequest is the payload handed to the outbound email dispatcher.
type EmailRequest struct {
	To          string
	ToName      string
	Subject     string
	HTMLContent string
	FromName    string
	CandidateID int
	EmailType   string
}

// User is the minimal profile record the engine needs: the acting user's
// display name for the {your_name} placeholder. Accounts themselves live
// in the external auth provider.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
