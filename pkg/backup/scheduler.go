package backup

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is the work run on every scheduled cycle
type Job interface {
	CreateBackup(ctx context.Context) (string, error)
	ExportToSQL(ctx context.Context) (string, error)
}

// NextRun returns the first time strictly after now at hour:00 local time.
// The date is advanced by calendar day, so a DST change keeps the
// wall-clock hour.
func NextRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, now.Location())
	}
	return next
}

// Scheduler runs a Job once a day at a fixed local hour
type Scheduler struct {
	job  Job
	hour int
	log  logrus.FieldLogger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a scheduler for job at hour (0-23)
func NewScheduler(job Job, hour int, log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		job:   job,
		hour:  hour,
		log:   log,
		now:   time.Now,
		after: time.After,
	}
}

// Start launches the scheduling loop. Calling Start on a running scheduler
// does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
}

// Stop cancels the loop and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		now := s.now()
		next := NextRun(now, s.hour)
		s.log.WithField("next_run", next.Format(time.RFC3339)).Info("automatic backup scheduled")

		select {
		case <-ctx.Done():
			return
		case <-s.after(next.Sub(now)):
		}
		s.runOnce(ctx)
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	ctx = WithTrigger(ctx, TriggerSchedule)
	if _, err := s.job.CreateBackup(ctx); err != nil {
		s.log.WithError(err).Error("scheduled backup failed")
	}
	if _, err := s.job.ExportToSQL(ctx); err != nil {
		s.log.WithError(err).Error("scheduled SQL export failed")
	}
}
