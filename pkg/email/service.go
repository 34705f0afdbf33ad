package email

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jordanlanch/talentdb/pkg/models"
)

// Service handles email sending
type Service struct {
	fromEmail   string
	fromName    string
	sendGridKey string
	useSendGrid bool
}

// NewService creates a new email service
// If sendGridAPIKey is provided, emails will be sent via SendGrid
// Otherwise, emails will be logged to console (development mode)
func NewService(fromEmail, fromName, sendGridAPIKey string) *Service {
	useSendGrid := sendGridAPIKey != ""
	if useSendGrid {
		log.Printf("✅ Email service initialized with SendGrid")
	} else {
		log.Printf("⚠️  Email service in console-only mode (set SENDGRID_API_KEY for production)")
	}

	return &Service{
		fromEmail:   fromEmail,
		fromName:    fromName,
		sendGridKey: sendGridAPIKey,
		useSendGrid: useSendGrid,
	}
}

// Send dispatches a rendered workflow email. The FromName on the request
// overrides the service default so each recruiter's emails carry their own
// name.
func (s *Service) Send(ctx context.Context, req models.EmailRequest) error {
	fromName := req.FromName
	if fromName == "" {
		fromName = s.fromName
	}

	if s.useSendGrid {
		return s.sendViaSendGrid(ctx, req.To, req.ToName, fromName, req.Subject, req.HTMLContent)
	}

	// Development mode: log to console
	log.Printf("📧 [EMAIL] %s", req.Subject)
	log.Printf("   To: %s <%s>", req.ToName, req.To)
	log.Printf("   From: %s <%s>", fromName, s.fromEmail)
	log.Printf("   Type: %s (candidate %d)", req.EmailType, req.CandidateID)
	log.Printf("   ⚠️  Email NOT sent (development mode)")
	return nil
}

// sendViaSendGrid sends email using SendGrid API
func (s *Service) sendViaSendGrid(ctx context.Context, toEmail, toName, fromName, subject, htmlBody string) error {
	from := mail.NewEmail(fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)

	message := mail.NewSingleEmail(from, subject, to, stripHTML(htmlBody), htmlBody)

	client := sendgrid.NewSendClient(s.sendGridKey)
	response, err := client.SendWithContext(ctx, message)

	if err != nil {
		log.Printf("❌ SendGrid error: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Printf("❌ SendGrid returned error status %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	log.Printf("✅ Email sent successfully to %s (SendGrid status: %d)", toEmail, response.StatusCode)
	return nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML produces the plain-text part from the HTML body. Templates are
// authored as HTML only, so the fallback is a best-effort tag strip.
func stripHTML(html string) string {
	return htmlTagPattern.ReplaceAllString(html, "")
}
