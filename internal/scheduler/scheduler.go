// Package scheduler runs background jobs on cron schedules: the nightly
// league sync and the daily database backup.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a schedulable unit of work.
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs.
type Scheduler struct {
	cron    *cron.Cron
	history *History
	log     zerolog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHistory records every run in the job history table.
func WithHistory(history *History) Option {
	return func(s *Scheduler) { s.history = history }
}

// New creates a scheduler. Schedules use six fields (seconds first).
func New(log zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins running registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a job on a cron schedule ("0 0 5 * * *" for 5 AM daily,
// "@hourly", "@every 30m", ...).
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(job)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("schedule", schedule).Str("job", job.Name()).Msg("Job registered")
	return nil
}

// RunNow executes a job immediately, outside its schedule.
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")

	var historyID int64
	if s.history != nil {
		historyID = s.history.RecordStart(job.Name())
	}

	if err := job.Run(); err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		if s.history != nil {
			s.history.RecordFinish(historyID, false, err.Error())
		}
		return err
	}

	if s.history != nil {
		s.history.RecordFinish(historyID, true, "")
	}
	s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	return nil
}

// JobFunc adapts a plain function to the Job interface.
type JobFunc struct {
	JobName string
	Fn      func() error
}

// Name returns the job's name.
func (j JobFunc) Name() string { return j.JobName }

// Run executes the wrapped function.
func (j JobFunc) Run() error { return j.Fn() }
