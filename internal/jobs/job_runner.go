package jobs

import (
	"time"

	"rental-backend/internal/config"
	"rental-backend/internal/events"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository"
	"rental-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentals  repository.RentalRepository
	items    repository.ItemRepository
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Ledger    service.LedgerService
	Email     service.EmailService
	Publisher events.Publisher
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos repository.Repos, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		rentals:  repos.Rentals,
		items:    repos.Items,
		services: services,
		config:   cfg,
		now:      time.Now,
	}
}

// Config returns the configuration the runner was built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs every daily job (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.CancelStalePending()
	jr.SendTeardownReminders()
	jr.SendOutOfStockDigest()
}
