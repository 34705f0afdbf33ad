package workflow

import "github.com/jordanlanch/talentdb/pkg/models"

// conditionsMet evaluates a workflow's gating conditions against a
// candidate. Pure predicate; absent values default safely (missing match
// score counts as 0).
func conditionsMet(w *models.Workflow, c *models.Candidate) bool {
	if w.MinMatchScore != nil && c.MatchScore() < *w.MinMatchScore {
		return false
	}
	if len(w.SourceFilter) > 0 {
		allowed := false
		for _, source := range w.SourceFilter {
			if c.Source == source {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}
	return true
}
