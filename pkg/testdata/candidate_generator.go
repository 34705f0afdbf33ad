package testdata

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// CandidateGeneratorConfig configures candidate generation parameters
type CandidateGeneratorConfig struct {
	UserID      int
	Count       int
	Role        string
	Stage       models.Stage
	JobID       *int
	MinScore    int     // 0-100
	MaxScore    int     // 0-100
	PhoneChance float64 // 0.0-1.0 (probability of having a phone)
	CVChance    float64
	ScoreChance float64
}

// roles are the job titles generated candidates apply for
var roles = []string{
	"Backend Engineer", "Frontend Engineer", "Full Stack Developer",
	"DevOps Engineer", "Data Engineer", "Data Scientist",
	"Product Manager", "Engineering Manager", "QA Engineer",
	"Site Reliability Engineer", "Mobile Developer", "Security Engineer",
	"Platform Engineer", "Machine Learning Engineer", "Technical Writer",
}

// sources mirror where real candidates come from. Direct applications
// are included so generated datasets exercise the same email paths as
// production traffic.
var sources = []string{
	"linkedin", "referral", "sourced", "job_board",
	models.SourceDirectApplication, "agency", "career_fair",
}

var stagePool = []models.Stage{
	models.StageNew, models.StageNew, models.StageNew,
	models.StageScreening, models.StageScreening,
	models.StageInterview, models.StageInterview,
	models.StageOffer,
	models.StageHired,
	models.StageRejected,
}

// GenerateCandidate creates a single test candidate with realistic data.
// Generated candidates are always flagged as test records so workflow
// emails are suppressed for them.
func GenerateCandidate(config CandidateGeneratorConfig) *models.Candidate {
	name := gofakeit.Name()

	role := config.Role
	if role == "" {
		role = roles[rand.Intn(len(roles))]
	}

	stage := config.Stage
	if stage == "" {
		stage = stagePool[rand.Intn(len(stagePool))]
	}

	c := &models.Candidate{
		UserID: config.UserID,
		Name:   name,
		Email:  generateEmail(name),
		Stage:  stage,
		Role:   role,
		JobID:  config.JobID,
		Source: sources[rand.Intn(len(sources))],
		IsTest: true,
	}

	if rand.Float64() < config.PhoneChance {
		c.Phone = gofakeit.Phone()
	}

	if rand.Float64() < config.ScoreChance {
		score := config.MinScore + rand.Intn(config.MaxScore-config.MinScore+1)
		c.AIMatchScore = &score
	}

	if rand.Float64() < config.CVChance {
		cvURL := fmt.Sprintf("https://storage.example.com/cvs/%s.pdf", gofakeit.UUID())
		c.CVFileURL = &cvURL
	}

	return c
}

func generateEmail(name string) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	local = strings.ReplaceAll(local, "'", "")
	return fmt.Sprintf("%s@%s", local, gofakeit.DomainName())
}

// GenerateCandidates creates multiple candidates with the given config
func GenerateCandidates(config CandidateGeneratorConfig) []*models.Candidate {
	candidates := make([]*models.Candidate, config.Count)
	for i := 0; i < config.Count; i++ {
		candidates[i] = GenerateCandidate(config)
	}
	return candidates
}

// GenerateCandidatesForUser generates candidates with default settings:
// most have phones and scores, about half have a CV on file.
func GenerateCandidatesForUser(userID, count int) []*models.Candidate {
	config := CandidateGeneratorConfig{
		UserID:      userID,
		Count:       count,
		MinScore:    40,
		MaxScore:    95,
		PhoneChance: 0.8,
		CVChance:    0.5,
		ScoreChance: 0.7,
	}
	return GenerateCandidates(config)
}

// BulkInsertCandidates inserts candidates in batches
func BulkInsertCandidates(ctx context.Context, store domain.CandidateStore, candidates []*models.Candidate, batchSize int) error {
	for i := 0; i < len(candidates); i += batchSize {
		end := i + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		for _, c := range candidates[i:end] {
			if err := store.Create(ctx, c); err != nil {
				return fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
			}
		}
	}
	return nil
}
