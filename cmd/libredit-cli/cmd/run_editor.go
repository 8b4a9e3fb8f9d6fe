package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"libredit/internal/adapters/editor"
)

var (
	runEditorTitle   string
	runEditorCommand string
)

var runEditorCmd = &cobra.Command{
	Use:    editor.RunEditorCommand + " <path>",
	Short:  "Run the editor on a working file and record its exit code",
	Hidden: true,
	Args:   cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		command := runEditorCommand
		if command == "" {
			command = cfg.Editor.Command
		}
		path := args[0]

		log := logger.With().Str("path", path).Str("title", runEditorTitle).Logger()
		log.Debug().Msg("starting editor")

		code, err := editor.RunEditor(ctx, editor.NewOpener(command), path)
		if err != nil {
			log.Error().Err(err).Int("exit_code", code).Msg("editor failed")
			return err
		}
		log.Debug().Int("exit_code", code).Msg("editor exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runEditorCmd)
	runEditorCmd.Flags().StringVar(&runEditorTitle, "title", "", "job title, for logs")
	runEditorCmd.Flags().StringVar(&runEditorCommand, "editor", "", "editor command (overrides config)")
}
