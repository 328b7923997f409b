// Package jobs runs recurring background work on a gocron scheduler.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hotel_ops/internal/logger"

	"github.com/go-co-op/gocron"
)

// Job is a unit of recurring work. At is a daily "HH:MM" time in UTC.
type Job interface {
	Name() string
	At() string
	Execute(ctx context.Context) error
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      []Job
	log       *logger.Logger
	started   bool
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewScheduler(log *logger.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		log:       log.Named("scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Scheduler) run(job Job) {
	s.log.Infow("job_started", "job", job.Name())
	if err := job.Execute(s.ctx); err != nil {
		s.log.Errorw("job_failed", "job", job.Name(), "err", err)
		return
	}
	s.log.Infow("job_completed", "job", job.Name())
}

// Add registers job to run once a day at job.At().
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.scheduler.Every(1).Day().At(job.At()).Do(func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s: %w", job.Name(), err)
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || len(s.jobs) == 0 {
		return
	}
	s.scheduler.StartAsync()
	s.started = true
	for _, j := range s.scheduler.Jobs() {
		s.log.Infow("job_scheduled", "next_run", j.NextRun())
	}
}

// Stop cancels running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	if !s.started {
		return
	}
	s.scheduler.Stop()
	s.started = false
}

func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
