// Package cron runs periodic maintenance jobs.
package cron

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler is a cron-like job scheduler.
type Scheduler struct {
	*cron.Cron
	ctx    context.Context
	logger *log.Logger
}

// cronLogger is a wrapper around the logger to make it compatible with the
// cron logger.
type cronLogger struct {
	logger *log.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error logs an error condition.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

// NewScheduler returns a new Scheduler. Jobs never overlap with themselves
// and a panicking job does not take the scheduler down.
func NewScheduler(ctx context.Context) *Scheduler {
	logger := log.FromContext(ctx).WithPrefix("cron")
	clog := cronLogger{logger}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(clog),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		ctx:    ctx,
		logger: logger,
	}
}

// Shutdown gracefully shuts down the Scheduler.
func (s *Scheduler) Shutdown() {
	ctx, cancel := context.WithTimeout(s.Cron.Stop(), 30*time.Second)
	defer func() { cancel() }()
	<-ctx.Done()
}

// Start starts the Scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
}

// AddFunc adds a job to the Scheduler.
func (s *Scheduler) AddFunc(spec string, fn func()) (int, error) {
	id, err := s.Cron.AddFunc(spec, fn)
	return int(id), err
}

// AddJob adds a named job that receives the scheduler's context.
func (s *Scheduler) AddJob(name, spec string, fn func(context.Context) error) (int, error) {
	return s.AddFunc(spec, func() {
		start := time.Now()
		if err := fn(s.ctx); err != nil {
			s.logger.Error("job failed", "job", name, "err", err)
			return
		}
		s.logger.Debug("job done", "job", name, "took", time.Since(start))
	})
}

// Remove removes a job from the Scheduler.
func (s *Scheduler) Remove(id int) {
	s.Cron.Remove(cron.EntryID(id))
}
