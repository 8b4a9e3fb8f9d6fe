package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"libredit/internal/adapters/editor"
	"libredit/internal/adapters/filesystem"
	mcpadapter "libredit/internal/adapters/mcp"
	"libredit/internal/adapters/sqlite"
	"libredit/internal/application"
	"libredit/internal/application/watcher"
	"libredit/internal/config"
	"libredit/internal/logging"
	"libredit/internal/ports"
)

func main() {
	configFlag := flag.String("config", config.DefaultPath(), "path to the config file")
	libraryFlag := flag.String("library", "", "path to the library (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		os.Stderr.WriteString("libredit-mcp: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *libraryFlag != "" {
		cfg.LibraryPath = *libraryFlag
	}

	// stdout carries the protocol
	logger := logging.New(cfg.Log, os.Stderr)

	open := func(path string) (ports.Library, error) {
		return sqlite.OpenLibrary(filesystem.ExpandHome(path))
	}
	lib, err := open(cfg.LibraryPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open library")
	}
	session := application.NewSession(lib)
	defer func() { session.Current().Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := watcher.New(session,
		watcher.WithTimeout(cfg.Watcher.Timeout),
		watcher.WithLogger(logger),
	)
	results := mcpadapter.NewResults(mcpadapter.DefaultResultsSize)
	runner := watcher.NewRunner(w,
		watcher.WithPollInterval(cfg.Watcher.PollInterval),
		watcher.WithReportHandler(results.Record),
	)
	go runner.Run(ctx)

	launcher := editor.NewLauncher(cfg.Editor.Helper,
		editor.WithEditorCommand(cfg.Editor.Command),
		editor.WithLauncherLogger(logger),
	)

	mcpServer := server.NewMCPServer(
		"libredit-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, session, runner, results)
	mcpadapter.RegisterWriteTools(mcpServer, session, launcher, runner, open)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("libredit-mcp stopped")
	}
}
