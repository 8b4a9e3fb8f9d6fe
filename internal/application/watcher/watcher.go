// Package watcher tracks edit jobs running in external editor processes.
//
// The editor and the watcher share nothing but the filesystem. For a job
// whose working file is P the editor creates P.started once it is running
// and P.result (holding an integer exit code) when it exits. The watcher
// polls for those files, and on a zero exit code imports P back into the
// library the job was launched against.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"libredit/internal/application"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

const (
	// DefaultTimeout is how long a job is tracked, measured from submission
	DefaultTimeout = 120 * time.Second
	// DefaultPollInterval is the delay between polls while jobs are active
	DefaultPollInterval = 100 * time.Millisecond
)

// Outcome describes a job whose result sentinel was consumed
type Outcome struct {
	Job      domain.Job
	ExitCode int  // -1 when the result could not be read
	Applied  bool // The working file was imported into the library
	Err      error
}

// Report summarizes one poll
type Report struct {
	Started   []domain.Job
	Completed []Outcome
	TimedOut  []domain.Job
	Errors    []error
	Active    int // Jobs still tracked after the poll
}

// Rearm reports whether another poll should be scheduled
func (r Report) Rearm() bool {
	return r.Active > 0
}

// Err joins every error recorded during the poll
func (r Report) Err() error {
	return errors.Join(r.Errors...)
}

// Empty reports whether the poll changed nothing
func (r Report) Empty() bool {
	return len(r.Started) == 0 && len(r.Completed) == 0 && len(r.TimedOut) == 0 && len(r.Errors) == 0
}

// Option configures a Watcher
type Option func(*Watcher)

// WithTimeout sets how long a job is tracked before it is abandoned
func WithTimeout(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(w *Watcher) {
		w.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithRetry sets the retry policy for sentinel reads and deletes
func WithRetry(p application.RetryPolicy) Option {
	return func(w *Watcher) {
		w.retry = p
	}
}

// Watcher owns the set of active jobs. It is not safe for concurrent use:
// Submit and Poll must be called from one goroutine (see Runner).
type Watcher struct {
	provider ports.LibraryProvider
	timeout  time.Duration
	now      func() time.Time
	retry    application.RetryPolicy
	logger   zerolog.Logger

	jobs []*domain.Job
}

// New creates a watcher that reconciles finished edits into the library
// returned by provider at completion time
func New(provider ports.LibraryProvider, opts ...Option) *Watcher {
	w := &Watcher{
		provider: provider,
		timeout:  DefaultTimeout,
		now:      time.Now,
		retry:    application.DefaultRetryPolicy,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit starts tracking an edit job. The working path must not belong to
// another active job.
func (w *Watcher) Submit(_ context.Context, bookID int64, format domain.Format, workingPath, title, libraryID string) (ports.JobHandle, error) {
	if err := application.ValidateRequired("workingPath", workingPath); err != nil {
		return "", err
	}
	if err := application.ValidateBookID(bookID); err != nil {
		return "", err
	}
	if err := application.ValidateEditableFormat(format); err != nil {
		return "", err
	}
	if w.find(workingPath) >= 0 {
		return "", fmt.Errorf("%w: %s", application.ErrJobExists, workingPath)
	}

	job := &domain.Job{
		WorkingPath: workingPath,
		Title:       title,
		BookID:      bookID,
		Format:      format,
		LibraryID:   libraryID,
		StartTime:   w.now(),
	}
	w.jobs = append(w.jobs, job)

	w.logger.Debug().
		Str("path", workingPath).
		Int64("book_id", bookID).
		Str("format", string(format)).
		Msg("tracking edit job")

	return ports.JobHandle(workingPath), nil
}

// Poll advances every active job by one step. It never blocks on the
// editor; the only waits are retries of transient filesystem errors.
func (w *Watcher) Poll(ctx context.Context) Report {
	var rep Report
	for _, job := range slices.Clone(w.jobs) {
		w.step(ctx, job, &rep)
	}
	rep.Active = len(w.jobs)
	return rep
}

func (w *Watcher) step(ctx context.Context, job *domain.Job, rep *Report) {
	if job.Started && exists(job.ResultPath()) {
		w.remove(job)
		out := w.complete(ctx, *job)
		rep.Completed = append(rep.Completed, out)
		if out.Err != nil {
			rep.Errors = append(rep.Errors, out.Err)
		}
		return
	}

	// Measured from submission, so a running job is abandoned too
	if w.now().Sub(job.StartTime) > w.timeout {
		w.remove(job)
		rep.TimedOut = append(rep.TimedOut, *job)
		w.logger.Debug().
			Str("path", job.WorkingPath).
			Bool("started", job.Started).
			Msg("edit job timed out, no longer tracked")
		return
	}

	if !job.Started && exists(job.StartedPath()) {
		job.Started = true
		rep.Started = append(rep.Started, *job)
		w.logger.Info().Str("title", job.Title).Msg("editor started")
		if err := w.retry.RemoveFile(ctx, job.StartedPath()); err != nil {
			rep.Errors = append(rep.Errors, fmt.Errorf("remove start sentinel of %s: %w", job.Title, err))
		}
	}
}

// complete consumes the result sentinel of a removed job
func (w *Watcher) complete(ctx context.Context, job domain.Job) Outcome {
	out := Outcome{Job: job, ExitCode: -1}
	var errs []error

	code, err := w.retry.ReadExitCode(ctx, job.ResultPath())
	if err != nil {
		errs = append(errs, fmt.Errorf("read result of %s: %w", job.Title, err))
	} else {
		out.ExitCode = code
	}
	if err := w.retry.RemoveFile(ctx, job.ResultPath()); err != nil {
		errs = append(errs, fmt.Errorf("remove result of %s: %w", job.Title, err))
	}

	if out.ExitCode == 0 {
		if err := w.apply(ctx, job); err != nil {
			errs = append(errs, err)
		} else {
			out.Applied = true
		}
	}

	// The working file goes whatever the result
	if err := w.retry.RemoveFile(ctx, job.WorkingPath); err != nil {
		errs = append(errs, fmt.Errorf("remove working file of %s: %w", job.Title, err))
	}

	out.Err = errors.Join(errs...)

	event := w.logger.Info()
	if out.Err != nil {
		event = w.logger.Warn().Err(out.Err)
	}
	var changed *application.LibraryChangedError
	if errors.As(out.Err, &changed) {
		event = event.Str("library_id", changed.Want).Str("current_library_id", changed.Got)
	}
	event.Str("title", job.Title).
		Int("exit_code", out.ExitCode).
		Bool("applied", out.Applied).
		Msg("editor finished")

	return out
}

func (w *Watcher) apply(ctx context.Context, job domain.Job) error {
	var lib ports.Library
	if w.provider != nil {
		lib = w.provider.Current()
	}
	current := ""
	if lib != nil {
		current = lib.ID()
	}
	if lib == nil || current != job.LibraryID {
		return &application.LibraryChangedError{
			Title:  job.Title,
			BookID: job.BookID,
			Want:   job.LibraryID,
			Got:    current,
		}
	}
	if err := lib.ImportFormat(ctx, job.BookID, job.Format, job.WorkingPath); err != nil {
		return fmt.Errorf("import %s: %w", job.Title, err)
	}
	return nil
}

// Active returns the number of tracked jobs
func (w *Watcher) Active() int {
	return len(w.jobs)
}

// Jobs returns copies of the tracked jobs in submission order
func (w *Watcher) Jobs() []domain.Job {
	out := make([]domain.Job, len(w.jobs))
	for i, j := range w.jobs {
		out[i] = *j
	}
	return out
}

// Job returns a copy of the job for handle
func (w *Watcher) Job(h ports.JobHandle) (domain.Job, bool) {
	if i := w.find(string(h)); i >= 0 {
		return *w.jobs[i], true
	}
	return domain.Job{}, false
}

func (w *Watcher) find(path string) int {
	return slices.IndexFunc(w.jobs, func(j *domain.Job) bool {
		return j.WorkingPath == path
	})
}

func (w *Watcher) remove(job *domain.Job) {
	w.jobs = slices.DeleteFunc(w.jobs, func(j *domain.Job) bool {
		return j == job
	})
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
