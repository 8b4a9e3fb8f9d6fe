package mcp

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"libredit/internal/application"
	"libredit/internal/application/watcher"
	"libredit/internal/domain"
)

// DefaultResultsSize is how many finished jobs are kept for job_results
const DefaultResultsSize = 50

// Result is a finished or abandoned edit job
type Result struct {
	Job        domain.Job
	ExitCode   int
	Applied    bool
	TimedOut   bool
	Err        error
	FinishedAt time.Time
}

// Results keeps the most recent job results. Record is meant to be the
// runner's report handler; reads may come from any goroutine.
type Results struct {
	mu      sync.Mutex
	size    int
	entries []Result
	now     func() time.Time
}

// NewResults creates a ring of at most size results
func NewResults(size int) *Results {
	if size <= 0 {
		size = DefaultResultsSize
	}
	return &Results{size: size, now: time.Now}
}

// Record stores the completed and timed out jobs of a poll report
func (r *Results) Record(rep watcher.Report) {
	if rep.Empty() {
		return
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range rep.Completed {
		r.push(Result{Job: o.Job, ExitCode: o.ExitCode, Applied: o.Applied, Err: o.Err, FinishedAt: now})
	}
	for _, j := range rep.TimedOut {
		r.push(Result{Job: j, ExitCode: -1, TimedOut: true, FinishedAt: now})
	}
}

func (r *Results) push(res Result) {
	r.entries = append(r.entries, res)
	if over := len(r.entries) - r.size; over > 0 {
		r.entries = append(r.entries[:0], r.entries[over:]...)
	}
}

// Recent returns the stored results, newest first
func (r *Results) Recent() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	return out
}

// Summary describes what happened to the edit
func (res Result) Summary() string {
	switch {
	case res.TimedOut:
		return "timed out waiting for the editor, changes not saved"
	case errors.Is(res.Err, application.ErrLibraryChanged):
		return "warning: " + res.Err.Error()
	case res.Applied && res.Err != nil:
		return "saved, with errors: " + res.Err.Error()
	case res.Applied:
		return "saved"
	case res.ExitCode > 0:
		return fmt.Sprintf("editor exited with code %d, changes discarded", res.ExitCode)
	case res.Err != nil:
		return "not saved: " + res.Err.Error()
	default:
		return "not saved"
	}
}
