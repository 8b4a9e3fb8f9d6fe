package views

import (
	"errors"
	"fmt"
	"strings"

	"libredit/internal/adapters/tui/styles"
	"libredit/internal/application"
)

// MessageKind selects how a status message is rendered
type MessageKind int

const (
	MessageInfo MessageKind = iota
	MessageWarning
	MessageError
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width       int
	Height      int
	Message     string
	MessageKind MessageKind
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, kind MessageKind) {
	s.Message = msg
	s.MessageKind = kind
}

// SetError shows err as a message. User input errors and library changes
// are warnings; anything else is an error.
func (s *ViewState) SetError(err error) {
	var inputErr *application.UserInputError
	switch {
	case errors.As(err, &inputErr):
		s.SetMessage(inputErr.Title+": "+inputErr.Message, MessageWarning)
	case errors.Is(err, application.ErrLibraryChanged):
		s.SetMessage(err.Error(), MessageWarning)
	default:
		s.SetMessage(err.Error(), MessageError)
	}
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageKind = MessageInfo
}

// RenderMessage renders the current message, or nothing
func (s *ViewState) RenderMessage() string {
	if s.Message == "" {
		return ""
	}
	switch s.MessageKind {
	case MessageWarning:
		return styles.WarningMsg.Render(s.Message)
	case MessageError:
		return styles.ErrorMsg.Render(s.Message)
	default:
		return styles.Success.Render(s.Message)
	}
}

// helpEntry is one key hint in a help line
type helpEntry struct {
	key  string
	desc string
}

func renderHelpLine(keys []helpEntry) string {
	var parts []string
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s",
			styles.HelpKey.Render(k.key),
			styles.HelpDesc.Render(k.desc),
		))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}
