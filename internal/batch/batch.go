// Package batch runs many independent measurements in parallel.
package batch

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/signalsfoundry/longitude/core"
	"github.com/signalsfoundry/longitude/internal/logging"
	"golang.org/x/sync/errgroup"
)

// Measurer is satisfied by *core.Engine.
type Measurer interface {
	Measure(ctx context.Context, req core.Request) (float64, error)
}

// JobRecorder observes job lifecycles. observability.BatchCollector
// implements it.
type JobRecorder interface {
	JobStarted()
	JobFinished(d time.Duration, err error)
}

// Result pairs a request with its outcome. Results keep input order.
type Result struct {
	Request core.Request
	ID      string
	Degrees float64
	Err     error
}

// Runner fans requests out over a bounded number of workers.
type Runner struct {
	measurer Measurer
	workers  int
	log      logging.Logger
	metrics  JobRecorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds concurrency. Values below one mean runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

func WithLogger(l logging.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func WithRecorder(m JobRecorder) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner constructs a Runner around m.
func NewRunner(m Measurer, opts ...Option) *Runner {
	r := &Runner{measurer: m, log: logging.Noop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.NumCPU()
	}
	return r
}

// Run measures every request. A failing request is reported in its Result
// and does not stop the others; Run itself fails only when ctx is cancelled
// before all jobs were dispatched.
func (r *Runner) Run(ctx context.Context, reqs []core.Request) ([]Result, error) {
	runID := uuid.NewString()
	log := r.log.With(logging.String("run_id", runID))
	results := make([]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	log.Info(ctx, "batch started", logging.Int("jobs", len(reqs)), logging.Int("workers", r.workers))
	started := time.Now()

	for i, req := range reqs {
		if err := gctx.Err(); err != nil {
			_ = g.Wait()
			return results, err
		}
		g.Go(func() error {
			id := uuid.NewString()
			jobCtx := logging.ContextWithRequestID(gctx, id)
			results[i] = r.runOne(jobCtx, log, id, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	log.Info(ctx, "batch finished",
		logging.Int("jobs", len(reqs)),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return results, ctx.Err()
}

func (r *Runner) runOne(ctx context.Context, log logging.Logger, id string, req core.Request) Result {
	if r.metrics != nil {
		r.metrics.JobStarted()
	}
	started := time.Now()
	deg, err := r.measurer.Measure(ctx, req)
	if r.metrics != nil {
		r.metrics.JobFinished(time.Since(started), err)
	}
	if err != nil {
		log.Warn(ctx, "measurement failed",
			logging.String("measurement_id", id),
			logging.String("body", req.Body),
			logging.Err(err),
		)
	}
	return Result{Request: req, ID: id, Degrees: deg, Err: err}
}
