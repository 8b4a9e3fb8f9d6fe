package editor

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"libredit/internal/domain"
	"libredit/internal/ports"
)

// RunEditorCommand is the helper subcommand that performs the editor side
// of the completion handshake
const RunEditorCommand = "run-editor"

// Launcher implements ports.JobLauncher by spawning the handshake helper
// (libredit-cli run-editor) detached from the caller
type Launcher struct {
	helper  string
	command string
	logger  zerolog.Logger
}

// Ensure Launcher implements JobLauncher
var _ ports.JobLauncher = (*Launcher)(nil)

// LauncherOption configures a Launcher
type LauncherOption func(*Launcher)

// WithEditorCommand passes an explicit editor command to the helper
func WithEditorCommand(command string) LauncherOption {
	return func(l *Launcher) {
		l.command = command
	}
}

// WithLauncherLogger sets the logger used for spawn diagnostics
func WithLauncherLogger(logger zerolog.Logger) LauncherOption {
	return func(l *Launcher) {
		l.logger = logger
	}
}

// NewLauncher creates a launcher that runs helper for every job
func NewLauncher(helper string, opts ...LauncherOption) *Launcher {
	l := &Launcher{
		helper: helper,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Args returns the helper arguments for a job
func (l *Launcher) Args(params map[string]string) []string {
	args := []string{RunEditorCommand}
	if title := params[ports.ParamTitle]; title != "" {
		args = append(args, "--title", title)
	}
	if l.command != "" {
		args = append(args, "--editor", l.command)
	}
	return append(args, "--", params[ports.ParamPath])
}

// Launch starts the helper and returns once it is running. The process
// outlives ctx; it is reaped in the background.
func (l *Launcher) Launch(ctx context.Context, kind domain.JobKind, params map[string]string) error {
	if kind != domain.JobKindEditor {
		return fmt.Errorf("unsupported job kind %q", kind)
	}
	if params[ports.ParamPath] == "" {
		return fmt.Errorf("missing %q parameter", ports.ParamPath)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	helper, err := exec.LookPath(l.helper)
	if err != nil {
		return fmt.Errorf("editor helper %q not found: %w", l.helper, err)
	}

	cmd := exec.Command(helper, l.Args(params)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start editor helper: %w", err)
	}

	l.logger.Debug().
		Int("pid", cmd.Process.Pid).
		Str("path", params[ports.ParamPath]).
		Msg("editor job launched")

	go func() {
		if err := cmd.Wait(); err != nil {
			l.logger.Debug().Err(err).Str("path", params[ports.ParamPath]).Msg("editor helper exited")
		}
	}()
	return nil
}
