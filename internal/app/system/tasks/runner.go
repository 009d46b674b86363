// internal/app/system/tasks/runner.go

// Package tasks runs recurring background jobs on fixed intervals.
// Jobs never overlap themselves: a tick that arrives while the previous
// run is still executing is skipped, not queued.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one recurring unit of background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner schedules jobs on a shared cron engine.
type Runner struct {
	cron *cron.Cron
	log  *zap.Logger
}

func NewRunner(logger *zap.Logger) *Runner {
	return &Runner{
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DiscardLogger),
			cron.Recover(cron.DiscardLogger),
		)),
		log: logger,
	}
}

// Add registers a job. Errors from the job are logged, never fatal; the
// job runs again on its next tick regardless.
func (r *Runner) Add(job Job) error {
	spec := fmt.Sprintf("@every %s", job.Interval)
	_, err := r.cron.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			r.log.Error("background job failed",
				zap.String("job", job.Name),
				zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("add job %q: %w", job.Name, err)
	}
	r.log.Info("background job registered",
		zap.String("job", job.Name),
		zap.Duration("interval", job.Interval))
	return nil
}

// Start begins firing registered jobs.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts scheduling and waits for any in-flight run to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.log.Info("background jobs stopped")
}
