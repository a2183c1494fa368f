// Package scheduler runs the engine's recurring jobs: nightly calibration
// evaluation and the off-season decay pass.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is a named unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler manages cron-driven maintenance jobs.
type Scheduler struct {
	cron       *cron.Cron
	log        *logrus.Entry
	jobTimeout time.Duration

	mu        sync.RWMutex
	isRunning bool
	jobIDs    []cron.EntryID
}

// NewScheduler creates a scheduler running in UTC.
func NewScheduler(log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		log:        log.WithField("component", "scheduler"),
		jobTimeout: 30 * time.Minute,
	}
}

// AddJob registers a job under a cron expression. Jobs cannot be added
// while the scheduler is running.
func (s *Scheduler) AddJob(name, cronExpression string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		started := time.Now()
		s.log.WithField("job", name).Info("scheduled job starting")

		if err := job(ctx); err != nil {
			s.log.WithField("job", name).WithError(err).Error("scheduled job failed")
			return
		}
		s.log.WithFields(logrus.Fields{
			"job":      name,
			"duration": time.Since(started).String(),
		}).Info("scheduled job completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job %q: %w", name, err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.log.WithFields(logrus.Fields{
		"job":  name,
		"cron": cronExpression,
	}).Info("job scheduled")
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithField("jobs", len(s.jobIDs)).Info("scheduler started")
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs up to a
// bounded timeout.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn("scheduler stop timed out with jobs still running")
	}

	s.isRunning = false
	s.log.Info("scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled job run.
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}

	next := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (next.IsZero() || entry.Next.Before(next)) {
			next = entry.Next
		}
	}
	return next
}
