package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"libredit/internal/adapters/editor"
	"libredit/internal/adapters/filesystem"
	"libredit/internal/adapters/sqlite"
	"libredit/internal/application"
	"libredit/internal/config"
	"libredit/internal/logging"
)

var (
	configPath  string
	libraryPath string

	cfg     *config.Config
	logger  zerolog.Logger
	lib     *sqlite.Library
	session *application.Session
)

var rootCmd = &cobra.Command{
	Use:   "libredit-cli",
	Short: "CLI for editing the books of a libredit library",
	Long: `libredit-cli is a command-line interface for a libredit book library.

It lists and adds books, and edits them in an external editor: every
edited file is imported back into the library once the editor exits
successfully.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if libraryPath != "" {
			cfg.LibraryPath = libraryPath
		}
		logger = logging.New(cfg.Log, os.Stderr)

		// The editor helper works on a single file and never opens the library
		if cmd.Name() == editor.RunEditorCommand {
			return nil
		}

		lib, err = sqlite.Open(filesystem.ExpandHome(cfg.LibraryPath))
		if err != nil {
			return fmt.Errorf("failed to open library: %w", err)
		}
		session = application.NewSession(lib)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if lib != nil {
			return lib.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVarP(&libraryPath, "library", "l", "", "path to the library (overrides config)")
}

// GetSession returns the session over the opened library
func GetSession() *application.Session {
	return session
}
