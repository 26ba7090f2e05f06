package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-intel/internal/observability"
	apperrors "github.com/spec-kit/helpdesk-intel/pkg/util"
)

// Job is a periodic background task. Run must be safe to call repeatedly
// and should honor ctx cancellation on its DB calls.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type scheduledJob struct {
	job      Job
	interval time.Duration
	running  atomic.Bool
}

// Runner schedules jobs on fixed intervals within a single process. Each job
// carries its own re-entrancy guard: a tick that arrives while the previous
// run is still going is skipped, not queued.
type Runner struct {
	mu           sync.Mutex
	jobs         map[string]*scheduledJob
	logger       *zap.Logger
	queryTimeout time.Duration
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewRunner creates a runner. queryTimeout bounds every job execution so a
// slow aggregation cannot hold pool connections indefinitely.
func NewRunner(logger *zap.Logger, queryTimeout time.Duration) *Runner {
	if queryTimeout <= 0 {
		queryTimeout = 30 * time.Second
	}
	return &Runner{
		jobs:         make(map[string]*scheduledJob),
		logger:       logger,
		queryTimeout: queryTimeout,
	}
}

// Register adds a job with its schedule. Must be called before Start.
func (r *Runner) Register(job Job, interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.Name()] = &scheduledJob{job: job, interval: interval}
}

// Start launches one ticker goroutine per registered job.
func (r *Runner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancel = cancel
	jobs := make([]*scheduledJob, 0, len(r.jobs))
	for _, sj := range r.jobs {
		jobs = append(jobs, sj)
	}
	r.mu.Unlock()

	for _, sj := range jobs {
		r.wg.Add(1)
		go r.loop(ctx, sj)
	}
}

// Stop cancels all job loops and waits for in-flight runs to return.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// RunOnceNow forces an out-of-band execution of the named job, bypassing the
// timer but still respecting the re-entrancy guard. Returns a conflict when
// the job is already running.
func (r *Runner) RunOnceNow(ctx context.Context, name string) error {
	r.mu.Lock()
	sj, ok := r.jobs[name]
	r.mu.Unlock()
	if !ok {
		return apperrors.NewNotFound("job", map[string]any{"job": name})
	}
	if !r.execute(ctx, sj) {
		return apperrors.NewConflict("job already running", map[string]any{"job": name})
	}
	return nil
}

func (r *Runner) loop(ctx context.Context, sj *scheduledJob) {
	defer r.wg.Done()
	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.execute(ctx, sj) {
				r.logger.Warn("job still running, skipping tick", zap.String("job", sj.job.Name()))
				observability.ObserveJobRun(sj.job.Name(), 0, observability.OutcomeSkipped)
			}
		}
	}
}

// execute runs the job once if its guard is free. Errors are logged and the
// job exits cleanly so the next tick can retry; they never crash the host.
func (r *Runner) execute(ctx context.Context, sj *scheduledJob) bool {
	if !sj.running.CompareAndSwap(false, true) {
		return false
	}
	defer sj.running.Store(false)

	runCtx, cancel := context.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	started := time.Now()
	err := r.runJob(runCtx, sj.job)
	elapsed := time.Since(started)

	outcome := observability.OutcomeSuccess
	if err != nil {
		outcome = observability.OutcomeError
		r.logger.Error("job run failed",
			zap.String("job", sj.job.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		r.logger.Info("job run complete",
			zap.String("job", sj.job.Name()),
			zap.Duration("elapsed", elapsed))
	}
	if sj.interval > 0 && elapsed > sj.interval {
		r.logger.Warn("job run exceeded its own period",
			zap.String("job", sj.job.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Duration("period", sj.interval))
	}
	observability.ObserveJobRun(sj.job.Name(), elapsed, outcome)
	return true
}

// runJob invokes the job, converting a panic into an error so a faulty job
// can never take down the host process.
func (r *Runner) runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("job panicked",
				zap.String("job", job.Name()),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()))
			err = fmt.Errorf("job %s panicked: %v", job.Name(), rec)
		}
	}()
	return job.Run(ctx)
}
