package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"libredit/internal/adapters/tui/styles"
	"libredit/internal/domain"
)

// JobsModel renders the editor jobs being watched
type JobsModel struct {
	jobs    []domain.Job
	spinner spinner.Model
	ticking bool
	now     func() time.Time
}

// NewJobsModel creates an empty jobs panel
func NewJobsModel() *JobsModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.JobRunning
	return &JobsModel{spinner: s, now: time.Now}
}

// SetJobs replaces the displayed jobs. It returns a spinner tick when the
// panel goes from empty to busy.
func (m *JobsModel) SetJobs(jobs []domain.Job) tea.Cmd {
	m.jobs = jobs
	if len(jobs) > 0 && !m.ticking {
		m.ticking = true
		return m.spinner.Tick
	}
	return nil
}

// Len returns the number of displayed jobs
func (m *JobsModel) Len() int {
	return len(m.jobs)
}

// Update advances the spinner while jobs are shown
func (m *JobsModel) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(spinner.TickMsg); ok {
		if len(m.jobs) == 0 {
			m.ticking = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	}
	return nil
}

// View renders the panel, or nothing when no job is active
func (m *JobsModel) View() string {
	if len(m.jobs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.InputLabel.Render(fmt.Sprintf("Editing %d", len(m.jobs))))
	for _, job := range m.jobs {
		b.WriteString("\n")
		b.WriteString(m.renderJob(job))
	}
	return styles.Panel.Render(b.String())
}

func (m *JobsModel) renderJob(job domain.Job) string {
	elapsed := m.now().Sub(job.StartTime).Truncate(time.Second)

	var state string
	switch job.State() {
	case domain.JobPendingStart:
		state = styles.JobPending.Render("waiting for editor")
	default:
		state = styles.JobRunning.Render("editing")
	}
	return fmt.Sprintf("%s %s  %s %s", m.spinner.View(), job.Title, state, styles.MutedText.Render(elapsed.String()))
}
