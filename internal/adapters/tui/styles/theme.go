package styles

import (
	"github.com/charmbracelet/lipgloss"

	"libredit/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Format colors
	FormatEPUB  = lipgloss.Color("#60A5FA") // Blue
	FormatAZW3  = lipgloss.Color("#F97316") // Orange
	FormatOther = Muted

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Book list
	BookTitle = lipgloss.NewStyle().
			Bold(true)

	BookAuthor = lipgloss.NewStyle().
			Foreground(Muted)

	BookCursor = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	Checked   = lipgloss.NewStyle().Foreground(Secondary).SetString("[x]")
	Unchecked = lipgloss.NewStyle().Foreground(Muted).SetString("[ ]")

	// Jobs panel
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1).
		MarginTop(1)

	JobPending = lipgloss.NewStyle().
			Foreground(Warning)

	JobRunning = lipgloss.NewStyle().
			Foreground(Secondary)

	// Status bar
	StatusText = lipgloss.NewStyle().
			Foreground(Muted)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputField = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	WarningMsg = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// FormatColor returns the color used for a format tag
func FormatColor(f domain.Format) lipgloss.Color {
	switch f {
	case domain.FormatEPUB:
		return FormatEPUB
	case domain.FormatAZW3:
		return FormatAZW3
	default:
		return FormatOther
	}
}

// FormatTag renders a format name in its color
func FormatTag(f domain.Format) string {
	return lipgloss.NewStyle().Foreground(FormatColor(f)).Render(f.String())
}
