package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"libredit/internal/adapters/desktop"
	"libredit/internal/adapters/editor"
	"libredit/internal/adapters/filesystem"
	"libredit/internal/adapters/sqlite"
	"libredit/internal/adapters/tui"
	"libredit/internal/application"
	"libredit/internal/application/watcher"
	"libredit/internal/config"
	"libredit/internal/logging"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "path to the config file")
	libraryFlag := flag.String("library", "", "path to the library (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *libraryFlag != "" {
		cfg.LibraryPath = *libraryFlag
	}

	// The terminal belongs to the UI, so logs go to a file
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = logging.DefaultFile()
	}
	logger, f, err := logging.NewFile(cfg.Log, logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Initialize adapters
	lib, err := sqlite.Open(filesystem.ExpandHome(cfg.LibraryPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer lib.Close()

	session := application.NewSession(lib)
	launcher := editor.NewLauncher(cfg.Editor.Helper,
		editor.WithEditorCommand(cfg.Editor.Command),
		editor.WithLauncherLogger(logger),
	)
	w := watcher.New(session,
		watcher.WithTimeout(cfg.Watcher.Timeout),
		watcher.WithLogger(logger),
	)

	// Create and run TUI app
	app := tui.NewApp(session, launcher, w,
		tui.WithPollInterval(cfg.Watcher.PollInterval),
		tui.WithLogger(logger),
		tui.WithFolderOpener(desktop.NewOpener().Open),
	)

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if jobs := app.Abandon(); len(jobs) > 0 {
		fmt.Fprintf(os.Stderr, "Stopped watching %d editor(s); their changes will not be imported.\n", len(jobs))
	}
}
