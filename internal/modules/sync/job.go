package sync

import (
	"context"
	"time"
)

// syncTimeout bounds a scheduled sync. The player directory alone is a
// multi-megabyte download, so this is generous.
const syncTimeout = 10 * time.Minute

// NightlyJob adapts the sync service to the scheduler's Job interface.
type NightlyJob struct {
	service *Service
}

// NewNightlyJob creates the scheduled sync job.
func NewNightlyJob(service *Service) *NightlyJob {
	return &NightlyJob{service: service}
}

// Name returns the job's name.
func (j *NightlyJob) Name() string { return "league-sync" }

// Run executes one sync with a bounded context.
func (j *NightlyJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	_, err := j.service.Run(ctx)
	return err
}
