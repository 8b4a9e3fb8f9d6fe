package views

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"libredit/internal/textedit"
)

// FilterKeyMap defines the keys the filter input handles itself
type FilterKeyMap struct {
	Home      key.Binding
	Tab       key.Binding
	Backspace key.Binding
}

var FilterKeys = FilterKeyMap{
	Home: key.NewBinding(
		key.WithKeys("home", "ctrl+a"),
		key.WithHelp("home", "line start"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "indent"),
	),
	Backspace: key.NewBinding(
		key.WithKeys("backspace"),
		key.WithHelp("backspace", "delete"),
	),
}

// FilterInput is a single-line text input with smart home, tab and
// backspace handling
type FilterInput struct {
	textinput.Model
	TabWidth int
}

// NewFilterInput creates a focused filter input
func NewFilterInput() FilterInput {
	input := textinput.New()
	input.Placeholder = "Filter by title or author..."
	input.Prompt = "/ "
	return FilterInput{Model: input, TabWidth: textedit.DefaultTabWidth}
}

// Update handles the smart keys and delegates everything else to the
// underlying textinput
func (f FilterInput) Update(msg tea.Msg) (FilterInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		line, col := f.Value(), f.Position()

		switch {
		case key.Matches(msg, FilterKeys.Home):
			f.SetCursor(textedit.SmartHome(line, col))
			return f, nil

		case key.Matches(msg, FilterKeys.Tab):
			if newLine, newCol, ok := textedit.SmartTab(line, col, f.TabWidth); ok {
				f.setLine(newLine, newCol)
			}
			return f, nil

		case key.Matches(msg, FilterKeys.Backspace):
			if newLine, newCol, ok := textedit.SmartBackspace(line, col, f.TabWidth); ok {
				f.setLine(newLine, newCol)
				return f, nil
			}
		}
	}

	var cmd tea.Cmd
	f.Model, cmd = f.Model.Update(msg)
	return f, cmd
}

func (f *FilterInput) setLine(line string, col int) {
	f.SetValue(line)
	f.SetCursor(col)
}
