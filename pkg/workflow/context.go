package workflow

import (
	"context"

	"github.com/jordanlanch/talentdb/pkg/domain"
	"github.com/jordanlanch/talentdb/pkg/models"
)

// senderName is the fixed display name outbound workflow email is sent
// under. The {your_name} placeholder separately resolves to the acting
// user's profile name, falling back to this literal.
const senderName = "Recruiter"

// templateContext carries the values one rendering run substitutes into a
// template. The offer is only populated for offer-stage workflows.
type templateContext struct {
	candidateName string
	jobTitle      string
	companyName   string
	yourName      string
	offer         *models.Offer
}

// assembleContext resolves the candidate's job, the acting user's display
// name and, for offer-stage workflows, the latest open offer. Every lookup
// here is fail-soft: a missing or unreadable record degrades to a default
// instead of aborting the execution.
func (e *Engine) assembleContext(ctx context.Context, w *models.Workflow, c *models.Candidate, userID int) templateContext {
	tc := templateContext{
		candidateName: c.Name,
		jobTitle:      c.Role,
		companyName:   "Our Company",
		yourName:      senderName,
	}

	if c.JobID != nil {
		job, err := e.stores.Jobs.GetForUser(ctx, *c.JobID, userID)
		if err != nil {
			e.log.Warn("job lookup failed, using candidate role", "candidate_id", c.ID, "job_id", *c.JobID, "error", err)
		} else {
			tc.jobTitle = job.Title
			tc.companyName = job.Company
		}
	}

	user, err := e.stores.Users.GetByID(ctx, userID)
	if err != nil {
		e.log.Warn("user lookup failed, using default sender name", "user_id", userID, "error", err)
	} else if user.Name != "" {
		tc.yourName = user.Name
	}

	if w.TriggerStage == models.StageOffer {
		offer, err := e.stores.Offers.LatestOpen(ctx, c.ID)
		if err != nil {
			if !domain.IsNotFound(err) {
				e.log.Warn("offer lookup failed", "candidate_id", c.ID, "error", err)
			}
		} else {
			tc.offer = offer
		}
	}

	return tc
}
