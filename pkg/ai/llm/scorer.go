package llm

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const scorerSystemPrompt = `You are a technical recruiter assistant. Given a candidate profile and a job description, rate how well the candidate matches the role on a scale of 0 to 100, where 0 is no match at all and 100 is a perfect match. Consider skills, seniority, and domain experience. Respond with the number only.`

// Scorer computes AI match scores for candidates against job descriptions.
type Scorer struct {
	client LLMClient
}

// NewScorer creates a match scorer backed by an LLM client.
func NewScorer(client LLMClient) *Scorer {
	return &Scorer{client: client}
}

// ScoreMatch asks the model for a 0-100 match score. Out-of-range answers
// are clamped; non-numeric answers are an error.
func (s *Scorer) ScoreMatch(ctx context.Context, candidateProfile, jobDescription string) (int, error) {
	prompt := fmt.Sprintf("Candidate profile:\n%s\n\nJob description:\n%s\n\nMatch score (0-100):",
		candidateProfile, jobDescription)

	answer, err := s.client.Complete(ctx, prompt, scorerSystemPrompt)
	if err != nil {
		return 0, fmt.Errorf("failed to score match: %w", err)
	}

	score, err := parseScore(answer)
	if err != nil {
		return 0, err
	}
	return score, nil
}

var scorePattern = regexp.MustCompile(`\d+`)

// parseScore extracts the first integer from the model's answer. Models
// occasionally wrap the number in prose despite the prompt.
func parseScore(answer string) (int, error) {
	match := scorePattern.FindString(strings.TrimSpace(answer))
	if match == "" {
		return 0, fmt.Errorf("no score in model answer: %q", answer)
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("failed to parse score %q: %w", match, err)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
