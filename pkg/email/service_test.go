package email

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jordanlanch/talentdb/pkg/models"
)

func TestNewService_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "Recruiter", "")
	assert.False(t, svc.useSendGrid)
	assert.Equal(t, "from@example.com", svc.fromEmail)
	assert.Equal(t, "Recruiter", svc.fromName)
}

func TestNewService_SendGridMode(t *testing.T) {
	svc := NewService("from@example.com", "Recruiter", "SG.test-key")
	assert.True(t, svc.useSendGrid)
	assert.Equal(t, "SG.test-key", svc.sendGridKey)
}

func TestSend_ConsoleMode(t *testing.T) {
	svc := NewService("from@example.com", "Recruiter", "")

	err := svc.Send(context.Background(), models.EmailRequest{
		To:          "candidate@example.com",
		ToName:      "Jane Doe",
		Subject:     "Interview invitation",
		HTMLContent: "<p>Hi Jane</p>",
		FromName:    "Sam Recruiter",
		CandidateID: 1,
		EmailType:   "interview",
	})
	assert.NoError(t, err, "Console mode should not error")
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Hi Jane, welcome!", stripHTML("<p>Hi <strong>Jane</strong>, welcome!</p>"))
	assert.Equal(t, "no markup", stripHTML("no markup"))
}
