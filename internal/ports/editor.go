package ports

import (
	"context"
	"os/exec"
)

// EditorOpener defines the interface for opening files in an external editor
type EditorOpener interface {
	// Command returns an exec.Cmd for opening a file in the editor.
	// It uses the configured command, then a book editor on PATH, then $VISUAL/$EDITOR.
	Command(ctx context.Context, path string) (*exec.Cmd, error)
}
