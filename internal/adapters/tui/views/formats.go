package views

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"libredit/internal/adapters/tui/styles"
	"libredit/internal/domain"
)

// FormatsKeyMap defines key bindings for the format chooser
type FormatsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Accept key.Binding
	Cancel key.Binding
}

var FormatsKeys = FormatsKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "toggle"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "edit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "cancel"),
	),
}

// FormatsModel asks which formats to edit when the chosen books have
// more than one editable format
type FormatsModel struct {
	ViewState
	formats []domain.Format
	checked map[domain.Format]bool
	cursor  int
	books   int
}

// NewFormatsModel creates a new format chooser
func NewFormatsModel() *FormatsModel {
	return &FormatsModel{checked: make(map[domain.Format]bool)}
}

// Reset shows formats for n books, checking the preferred ones
func (m *FormatsModel) Reset(formats, preferred []domain.Format, n int) {
	m.formats = slices.Clone(formats)
	m.books = n
	m.cursor = 0
	clear(m.checked)
	for _, f := range formats {
		if slices.Contains(preferred, f) {
			m.checked[f] = true
		}
	}
	if len(m.checked) == 0 && len(formats) > 0 {
		m.checked[formats[0]] = true
	}
	m.ClearMessage()
}

// Chosen returns the checked formats in display order
func (m *FormatsModel) Chosen() []domain.Format {
	var out []domain.Format
	for _, f := range m.formats {
		if m.checked[f] {
			out = append(out, f)
		}
	}
	return out
}

// Init initializes the format chooser
func (m *FormatsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the format chooser
func (m *FormatsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, FormatsKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, FormatsKeys.Down):
			if m.cursor < len(m.formats)-1 {
				m.cursor++
			}
		case key.Matches(msg, FormatsKeys.Toggle):
			if m.cursor < len(m.formats) {
				f := m.formats[m.cursor]
				m.checked[f] = !m.checked[f]
			}
		case key.Matches(msg, FormatsKeys.Accept):
			chosen := m.Chosen()
			if len(chosen) == 0 {
				m.SetMessage("Choose at least one format", MessageWarning)
				return m, nil
			}
			return m, func() tea.Msg { return FormatsChosenMsg{Formats: chosen} }
		case key.Matches(msg, FormatsKeys.Cancel):
			return m, func() tea.Msg { return EditCancelledMsg{} }
		}
	}
	return m, nil
}

// View renders the format chooser
func (m *FormatsModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Choose formats"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("Some of the selected books have more than one editable format"))
	b.WriteString("\n\n")

	for i, f := range m.formats {
		box := styles.Unchecked.String()
		if m.checked[f] {
			box = styles.Checked.String()
		}
		line := box + " " + styles.FormatTag(f)
		if i == m.cursor {
			line = styles.BookCursor.Render(">") + " " + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if msg := m.RenderMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(renderHelpLine([]helpEntry{
		{"space", "toggle"},
		{"enter", "edit"},
		{"esc", "cancel"},
	}))
	return b.String()
}

// FormatsChosenMsg is sent when the user accepts a format choice
type FormatsChosenMsg struct {
	Formats []domain.Format
}

// EditCancelledMsg is sent when the user backs out of an edit
type EditCancelledMsg struct{}
