package desktop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Opener opens files and folders with the desktop's default application
type Opener struct {
	goos string
}

// NewOpener creates an opener for the running operating system
func NewOpener() *Opener {
	return &Opener{goos: runtime.GOOS}
}

// Open opens target, typically a book folder, in the file manager
func (o *Opener) Open(ctx context.Context, target string) error {
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("cannot open %s: %w", target, err)
	}
	cmd, err := o.Command(ctx, target)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command builds the platform command that opens target
func (o *Opener) Command(ctx context.Context, target string) (*exec.Cmd, error) {
	switch o.goos {
	case "darwin":
		return exec.CommandContext(ctx, "open", target), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.CommandContext(ctx, "xdg-open", target), nil
	case "windows":
		return exec.CommandContext(ctx, "explorer", target), nil
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", o.goos)
	}
}
