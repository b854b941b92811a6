// Package jobs runs periodic maintenance work on fixed intervals.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/recipebook/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Job is a self-contained periodic operation. It fetches its own data from
// its dependencies and must be safe to run repeatedly.
type Job interface {
	// Name returns a unique identifier for the job.
	Name() string

	// Interval returns how often the job runs.
	Interval() time.Duration

	// Run executes one iteration.
	Run(ctx context.Context) error
}

// Runner drives registered jobs, each on its own ticker.
type Runner struct {
	jobs []Job

	stopCh    chan struct{}
	stoppedCh chan struct{}

	log logger.Logger
}

// NewRunner creates a runner over the given jobs.
func NewRunner(log logger.Logger, jobs ...Job) *Runner {
	return &Runner{
		jobs:      jobs,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
		log:       log.Named("jobs"),
	}
}

// Start begins the job loops. Blocks until Stop is called or the context is
// cancelled. Each job also runs once immediately on start.
func (r *Runner) Start(ctx context.Context) error {
	var wg sync.WaitGroup

	for _, job := range r.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			r.runLoop(ctx, job)
		}(job)
	}

	wg.Wait()
	close(r.stoppedCh)
	return nil
}

// Stop gracefully shuts down the runner.
func (r *Runner) Stop() error {
	close(r.stopCh)

	select {
	case <-r.stoppedCh:
		return nil
	case <-time.After(shutdownTimeout):
		return errx.New("jobs runner shutdown timeout exceeded")
	}
}

func (r *Runner) runLoop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval())
	defer ticker.Stop()

	r.runOnce(ctx, job)

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce(ctx, job)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context, job Job) {
	if err := job.Run(ctx); err != nil {
		r.log.With("job", job.Name()).Error("job run failed: " + err.Error())
		return
	}
	r.log.With("job", job.Name()).Debug("job run completed")
}
