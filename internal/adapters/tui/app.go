package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"libredit/internal/adapters/tui/styles"
	"libredit/internal/adapters/tui/views"
	"libredit/internal/application/commands"
	"libredit/internal/application/watcher"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewLibrary ViewState = iota
	ViewConfirm
	ViewFormats
	ViewHelp
)

// Option configures an App
type Option func(*App)

// WithPollInterval sets the delay between completion polls
func WithPollInterval(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithFolderOpener enables opening book folders from the library view
func WithFolderOpener(open func(context.Context, string) error) Option {
	return func(a *App) {
		a.library.SetFolderOpener(open)
	}
}

// App is the main TUI application model. It owns the completion watcher:
// jobs are submitted and polled only from Update.
type App struct {
	provider     ports.LibraryProvider
	launcher     ports.JobLauncher
	watcher      *watcher.Watcher
	pollInterval time.Duration
	polling      bool
	logger       zerolog.Logger

	state   ViewState
	library *views.LibraryModel
	confirm *views.ConfirmationModel
	formats *views.FormatsModel
	jobs    *views.JobsModel
	help    *views.HelpModel

	// batch in progress between the edit request and the launch
	edit       *commands.EditBooksCommand
	candidates []commands.Candidate
	preferred  []domain.Format

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(provider ports.LibraryProvider, launcher ports.JobLauncher, w *watcher.Watcher, opts ...Option) *App {
	a := &App{
		provider:     provider,
		launcher:     launcher,
		watcher:      w,
		pollInterval: watcher.DefaultPollInterval,
		logger:       zerolog.Nop(),
		state:        ViewLibrary,
		library:      views.NewLibraryModel(provider),
		confirm:      views.NewConfirmationModel(),
		formats:      views.NewFormatsModel(),
		jobs:         views.NewJobsModel(),
		help:         views.NewHelpModel(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.library.Init()
}

type candidatesMsg struct {
	candidates []commands.Candidate
	preferred  []domain.Format
	err        error
}

type jobLaunchedMsg struct {
	job *commands.LaunchedJob
	err error
}

type pollMsg struct{}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.library.SetSize(msg.Width, msg.Height)
		a.confirm.SetSize(msg.Width, msg.Height)
		a.formats.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		return a, a.jobs.Update(msg)

	case pollMsg:
		return a, a.poll()

	case jobLaunchedMsg:
		return a, a.track(msg)

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToLibraryMsg:
		a.state = ViewLibrary
		return a, nil

	case views.EditRequestMsg:
		a.edit = commands.NewEditBooksCommand(a.provider, a.launcher, a.watcher, msg.BookIDs)
		return a, a.loadCandidates(a.edit)

	case candidatesMsg:
		return a, a.startBatch(msg)

	case views.ConfirmedMsg:
		return a, a.chooseFormats()

	case views.FormatsChosenMsg:
		a.state = ViewLibrary
		return a, tea.Batch(a.rememberFormats(msg.Formats), a.launch(commands.DefaultSelections(a.candidates, msg.Formats)))

	case views.EditCancelledMsg:
		a.resetBatch()
		a.state = ViewLibrary
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewLibrary:
		_, cmd = a.library.Update(msg)
	case ViewConfirm:
		_, cmd = a.confirm.Update(msg)
	case ViewFormats:
		_, cmd = a.formats.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

func (a *App) loadCandidates(edit *commands.EditBooksCommand) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		cands, err := edit.Candidates(ctx)
		if err != nil {
			return candidatesMsg{err: err}
		}
		return candidatesMsg{candidates: cands, preferred: commands.PreferredFormats(ctx, a.provider.Current())}
	}
}

// startBatch asks for confirmation of large batches, then moves on to
// the format choice
func (a *App) startBatch(msg candidatesMsg) tea.Cmd {
	if msg.err != nil {
		a.resetBatch()
		a.library.SetError(msg.err)
		return nil
	}

	a.candidates = msg.candidates
	a.preferred = msg.preferred

	if commands.NeedsConfirmation(len(a.candidates)) {
		a.confirm.SetQuestion(commands.ConfirmationPrompt(len(a.candidates)))
		a.state = ViewConfirm
		return nil
	}
	return a.chooseFormats()
}

// chooseFormats shows the format chooser when some book has more than one
// editable format; otherwise every book is edited in its only format
func (a *App) chooseFormats() tea.Cmd {
	var all []domain.Format
	multi := false
	for _, cand := range a.candidates {
		if len(cand.Formats) > 1 {
			multi = true
		}
		for _, f := range cand.Formats {
			if !slices.Contains(all, f) {
				all = append(all, f)
			}
		}
	}
	slices.Sort(all)

	if !multi {
		a.state = ViewLibrary
		return a.launch(commands.DefaultSelections(a.candidates, nil))
	}

	a.formats.Reset(all, a.preferred, len(a.candidates))
	a.state = ViewFormats
	return nil
}

func (a *App) rememberFormats(formats []domain.Format) tea.Cmd {
	lib := a.provider.Current()
	logger := a.logger
	return func() tea.Msg {
		if err := commands.RememberFormats(context.Background(), lib, formats); err != nil {
			logger.Warn().Err(err).Msg("failed to remember format choice")
		}
		return nil
	}
}

// launch starts one editor per selected format. The launches run as
// commands; each result comes back as a jobLaunchedMsg.
func (a *App) launch(selections []commands.Selection) tea.Cmd {
	edit := a.edit
	a.resetBatch()
	a.library.ClearSelection()

	var cmds []tea.Cmd
	for _, sel := range selections {
		for _, format := range sel.Formats {
			cmds = append(cmds, func() tea.Msg {
				job, err := edit.LaunchOne(context.Background(), sel.BookID, format)
				return jobLaunchedMsg{job: job, err: err}
			})
		}
	}
	return tea.Batch(cmds...)
}

// track registers a launched editor with the watcher and starts polling
func (a *App) track(msg jobLaunchedMsg) tea.Cmd {
	if msg.err != nil {
		a.logger.Error().Err(msg.err).Msg("editor launch failed")
		a.library.SetError(msg.err)
		return nil
	}

	job := msg.job
	if _, err := a.watcher.Submit(context.Background(), job.BookID, job.Format, job.WorkingPath, job.Title, job.LibraryID); err != nil {
		a.logger.Error().Err(err).Str("path", job.WorkingPath).Msg("failed to track editor job")
		a.library.SetError(err)
		return nil
	}
	a.logger.Info().Str("title", job.Title).Str("path", job.WorkingPath).Msg("editing")
	a.library.SetMessage(fmt.Sprintf("Editing %s", job.Title), views.MessageInfo)

	return tea.Batch(a.jobs.SetJobs(a.watcher.Jobs()), a.schedulePoll())
}

// schedulePoll arms one poll unless one is already pending
func (a *App) schedulePoll() tea.Cmd {
	if a.polling {
		return nil
	}
	a.polling = true
	return tea.Tick(a.pollInterval, func(time.Time) tea.Msg { return pollMsg{} })
}

func (a *App) poll() tea.Cmd {
	a.polling = false
	rep := a.watcher.Poll(context.Background())
	a.report(rep)

	cmds := []tea.Cmd{a.jobs.SetJobs(a.watcher.Jobs())}
	if rep.Rearm() {
		cmds = append(cmds, a.schedulePoll())
	}
	if slices.ContainsFunc(rep.Completed, func(o watcher.Outcome) bool { return o.Applied }) {
		cmds = append(cmds, a.library.Reload())
	}
	return tea.Batch(cmds...)
}

// report shows the most relevant outcome of a poll in the status line
func (a *App) report(rep watcher.Report) {
	for _, job := range rep.TimedOut {
		a.library.SetMessage(fmt.Sprintf("Stopped watching %s: the editor did not finish in time", job.Title), views.MessageWarning)
	}
	for _, o := range rep.Completed {
		switch {
		case o.Err != nil:
			a.library.SetError(o.Err)
		case o.Applied:
			a.library.SetMessage(fmt.Sprintf("Saved changes to %s", o.Job.Title), views.MessageInfo)
		default:
			a.library.SetMessage(fmt.Sprintf("Editor for %s exited with code %d, changes discarded", o.Job.Title, o.ExitCode), views.MessageWarning)
		}
	}
	if err := rep.Err(); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Debug().Err(err).Msg("poll finished with errors")
	}
}

// Abandon stops tracking the remaining jobs when the program exits and
// returns them. Their working files are left in place.
func (a *App) Abandon() []domain.Job {
	jobs := a.watcher.Jobs()
	for _, job := range jobs {
		a.logger.Warn().Str("title", job.Title).Str("path", job.WorkingPath).Msg("abandoning editor job")
	}
	return jobs
}

func (a *App) resetBatch() {
	a.edit = nil
	a.candidates = nil
	a.preferred = nil
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewConfirm:
		return styles.App.Render(a.confirm.View())
	case ViewFormats:
		return styles.App.Render(a.formats.View())
	case ViewHelp:
		return a.help.View()
	default:
		return styles.App.Render(a.library.View() + "\n" + a.jobs.View())
	}
}
