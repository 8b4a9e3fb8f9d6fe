package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"libredit/internal/domain"
	"libredit/internal/ports"
)

// ExitNotStarted is recorded when the editor could not be started at all
const ExitNotStarted = 127

// RunEditor performs the editor side of the completion handshake: it
// creates the started sentinel, runs the editor on path and records the
// exit code in the result sentinel. The result is written even when the
// editor fails, so the watcher never waits for the timeout on a broken
// editor.
func RunEditor(ctx context.Context, opener ports.EditorOpener, path string) (int, error) {
	if err := os.WriteFile(domain.StartedSentinel(path), nil, 0644); err != nil {
		return ExitNotStarted, fmt.Errorf("failed to write started sentinel: %w", err)
	}

	code, runErr := runEditor(ctx, opener, path)

	if err := WriteResult(path, code); err != nil {
		return code, errors.Join(runErr, err)
	}
	return code, runErr
}

func runEditor(ctx context.Context, opener ports.EditorOpener, path string) (int, error) {
	cmd, err := opener.Command(ctx, path)
	if err != nil {
		return ExitNotStarted, err
	}

	err = cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Non-zero exit is an outcome, not a helper failure
		return exitErr.ExitCode(), nil
	}
	return ExitNotStarted, err
}

// WriteResult records an exit code in the result sentinel. The file is
// renamed into place so a poll never reads a partial number.
func WriteResult(path string, code int) error {
	result := domain.ResultSentinel(path)
	tmp := result + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(code)), 0644); err != nil {
		return fmt.Errorf("failed to write result sentinel: %w", err)
	}
	if err := os.Rename(tmp, result); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write result sentinel: %w", err)
	}
	return nil
}
