package watcher

import (
	"context"
	"time"

	"libredit/internal/domain"
	"libredit/internal/ports"
)

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithPollInterval sets the delay between polls while jobs are active
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithReportHandler registers a callback for every poll report. It runs on
// the runner goroutine and must not call back into the Runner.
func WithReportHandler(fn func(Report)) RunnerOption {
	return func(r *Runner) {
		r.onReport = fn
	}
}

// Runner drives a Watcher from a single goroutine. Other goroutines talk to
// it through a mailbox, so the Watcher itself needs no locking. A poll
// timer is armed only while jobs are active.
type Runner struct {
	watcher  *Watcher
	interval time.Duration
	onReport func(Report)

	requests chan func()
	waiters  []chan struct{}
}

// Ensure Runner implements JobTracker
var _ ports.JobTracker = (*Runner)(nil)

// NewRunner creates a runner for w. Call Run to start it.
func NewRunner(w *Watcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		watcher:  w,
		interval: DefaultPollInterval,
		requests: make(chan func()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes requests and polls until ctx is cancelled
func (r *Runner) Run(ctx context.Context) error {
	timer := time.NewTimer(r.interval)
	timer.Stop()
	defer timer.Stop()
	armed := false

	arm := func() {
		if !armed {
			timer.Reset(r.interval)
			armed = true
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case req := <-r.requests:
			req()
			if r.watcher.Active() > 0 {
				arm()
			} else {
				r.releaseWaiters()
			}

		case <-timer.C:
			armed = false
			rep := r.watcher.Poll(ctx)
			if r.onReport != nil {
				r.onReport(rep)
			}
			if rep.Rearm() {
				arm()
			} else {
				r.releaseWaiters()
			}
		}
	}
}

// Submit implements ports.JobTracker
func (r *Runner) Submit(ctx context.Context, bookID int64, format domain.Format, workingPath, title, libraryID string) (ports.JobHandle, error) {
	type result struct {
		handle ports.JobHandle
		err    error
	}
	ch := make(chan result, 1)
	err := r.do(ctx, func() {
		h, err := r.watcher.Submit(ctx, bookID, format, workingPath, title, libraryID)
		ch <- result{h, err}
	})
	if err != nil {
		return "", err
	}
	res := <-ch
	return res.handle, res.err
}

// Jobs returns the jobs currently tracked
func (r *Runner) Jobs(ctx context.Context) ([]domain.Job, error) {
	ch := make(chan []domain.Job, 1)
	if err := r.do(ctx, func() { ch <- r.watcher.Jobs() }); err != nil {
		return nil, err
	}
	return <-ch, nil
}

// Wait blocks until no job is tracked
func (r *Runner) Wait(ctx context.Context) error {
	done := make(chan struct{})
	err := r.do(ctx, func() {
		if r.watcher.Active() == 0 {
			close(done)
			return
		}
		r.waiters = append(r.waiters, done)
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// do hands fn to the run loop. Once the loop has accepted fn it runs it
// before taking the next request.
func (r *Runner) do(ctx context.Context, fn func()) error {
	select {
	case r.requests <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) releaseWaiters() {
	for _, w := range r.waiters {
		close(w)
	}
	r.waiters = nil
}
