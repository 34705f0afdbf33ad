// Package store provides the Postgres-backed repositories behind the
// domain store interfaces, plus an in-memory implementation used in tests.
package store

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/jordanlanch/talentdb/pkg/domain"
)

// New builds the full repository bundle on top of a database handle.
func New(db *sql.DB) domain.Stores {
	return domain.Stores{
		Workflows:  &WorkflowStore{db: db},
		Candidates: &CandidateStore{db: db},
		Templates:  &TemplateStore{db: db},
		Jobs:       &JobStore{db: db},
		Offers:     &OfferStore{db: db},
		Executions: &ExecutionStore{db: db},
		EmailLogs:  &EmailLogStore{db: db},
		Users:      &UserStore{db: db},
	}
}

// uniqueViolation is the Postgres error code for unique constraint
// violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
