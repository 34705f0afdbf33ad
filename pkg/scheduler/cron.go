package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jordanlanch/talentdb/pkg/domain"
)

// staleExecutionAge is how long a pending execution may sit before the
// sweep declares it dead. Pending rows block re-runs for their
// (workflow, candidate) pair, so a crashed execution must eventually be
// failed out.
const staleExecutionAge = time.Hour

// timedOutMessage is recorded on swept executions.
const timedOutMessage = "execution timed out"

// CronManager manages scheduled maintenance jobs
type CronManager struct {
	cron       *cron.Cron
	executions domain.ExecutionStore
	candidates domain.CandidateStore
	logger     *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(executions domain.ExecutionStore, candidates domain.CandidateStore, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:       cron.New(),
		executions: executions,
		candidates: candidates,
		logger:     logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Hourly: fail pending executions older than an hour
	_, err := cm.cron.AddFunc("0 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-staleExecutionAge)
		swept, err := cm.executions.FailStalePending(ctx, cutoff, timedOutMessage)
		if err != nil {
			cm.logger.Printf("❌ Failed to sweep stale executions: %v", err)
			return
		}
		if swept > 0 {
			cm.logger.Printf("🧹 Swept %d stale pending executions", swept)
		}
	})
	if err != nil {
		return err
	}

	// Daily at 3 AM: clear expired CV upload tokens
	_, err = cm.cron.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		purged, err := cm.candidates.PurgeExpiredUploadTokens(ctx, time.Now())
		if err != nil {
			cm.logger.Printf("❌ Failed to purge expired upload tokens: %v", err)
			return
		}
		if purged > 0 {
			cm.logger.Printf("🧹 Purged %d expired CV upload tokens", purged)
		}
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Hourly: sweep stale pending executions")
	cm.logger.Println("  - Daily at 3 AM: purge expired CV upload tokens")

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}
