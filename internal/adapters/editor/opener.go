package editor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"libredit/internal/ports"
)

// bookEditors are tried before $VISUAL and $EDITOR when no command is
// configured. The editor runs detached from any terminal, so terminal
// editors from the environment are a last resort.
var bookEditors = []string{"ebook-edit", "sigil"}

// Opener implements ports.EditorOpener
type Opener struct {
	command string
}

// Ensure Opener implements EditorOpener
var _ ports.EditorOpener = (*Opener)(nil)

// NewOpener creates an editor opener. command may carry arguments
// ("ebook-edit --detach"); an empty command falls back to the environment.
func NewOpener(command string) *Opener {
	return &Opener{command: command}
}

// Command returns an exec.Cmd for opening a file in the editor
func (o *Opener) Command(ctx context.Context, path string) (*exec.Cmd, error) {
	argv := o.resolve()
	if len(argv) == 0 {
		return nil, fmt.Errorf("no editor found: install ebook-edit or sigil, or set editor.command")
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// resolve returns the editor argv: the configured command, then the first
// book editor found on PATH, then $VISUAL, then $EDITOR
func (o *Opener) resolve() []string {
	if fields := strings.Fields(o.command); len(fields) > 0 {
		return fields
	}

	for _, editor := range bookEditors {
		if path, err := exec.LookPath(editor); err == nil {
			return []string{path}
		}
	}

	for _, candidate := range []string{os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields
		}
	}

	return nil
}
