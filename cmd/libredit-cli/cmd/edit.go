package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"libredit/internal/adapters/editor"
	"libredit/internal/application"
	"libredit/internal/application/commands"
	"libredit/internal/application/watcher"
	"libredit/internal/domain"
)

var (
	editFormats []string
	editYes     bool
)

var editCmd = &cobra.Command{
	Use:   "edit <book-id>...",
	Short: "Edit books in the external editor",
	Long: `Open one editor per book format and wait for the editors to exit.
Changes are imported when an editor exits with status 0. Books with more
than one editable format are edited in the formats given with --format, or
in the formats chosen last time.

Examples:
  libredit-cli edit 12
  libredit-cli edit 12 14 --format azw3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var ids []int64
		for _, arg := range args {
			id, err := parseBookID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		w := watcher.New(GetSession(),
			watcher.WithTimeout(cfg.Watcher.Timeout),
			watcher.WithLogger(logger),
		)
		runner := watcher.NewRunner(w,
			watcher.WithPollInterval(cfg.Watcher.PollInterval),
			watcher.WithReportHandler(printReport),
		)
		runCtx, cancelRun := context.WithCancel(ctx)
		defer cancelRun()
		go runner.Run(runCtx)

		launcher := editor.NewLauncher(cfg.Editor.Helper,
			editor.WithEditorCommand(cfg.Editor.Command),
			editor.WithLauncherLogger(logger),
		)
		edit := commands.NewEditBooksCommand(GetSession(), launcher, runner, ids)

		cands, err := edit.Candidates(ctx)
		if err != nil {
			return err
		}
		if commands.NeedsConfirmation(len(cands)) && !editYes && !confirm(commands.ConfirmationPrompt(len(cands))) {
			return nil
		}

		formats, err := chosenFormats(ctx)
		if err != nil {
			return err
		}

		result, err := edit.Execute(ctx, commands.DefaultSelections(cands, formats))
		if result != nil {
			fmt.Println(result.Message)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		if result == nil || len(result.Jobs) == 0 {
			return errors.New("no editor was started")
		}

		if err := runner.Wait(ctx); err != nil {
			jobs, _ := runner.Jobs(context.Background())
			for _, job := range jobs {
				logger.Warn().Str("title", job.Title).Str("path", job.WorkingPath).Msg("abandoning editor job")
			}
			return fmt.Errorf("stopped waiting for %d editor(s): %w", len(jobs), err)
		}
		return nil
	},
}

// chosenFormats parses --format, remembering the choice, or falls back to
// the last remembered choice
func chosenFormats(ctx context.Context) ([]domain.Format, error) {
	lib := GetSession().Current()
	if len(editFormats) == 0 {
		return commands.PreferredFormats(ctx, lib), nil
	}

	var formats []domain.Format
	for _, name := range editFormats {
		f, err := domain.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if err := application.ValidateEditableFormat(f); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	if err := commands.RememberFormats(ctx, lib, formats); err != nil {
		logger.Warn().Err(err).Msg("failed to remember format choice")
	}
	return formats, nil
}

// printReport prints the outcome of every job that finished in a poll
func printReport(rep watcher.Report) {
	for _, job := range rep.TimedOut {
		fmt.Printf("%s: the editor did not finish in time, stopped watching\n", job.Title)
	}
	for _, o := range rep.Completed {
		switch {
		case o.Err != nil:
			fmt.Fprintf(os.Stderr, "%s: %v\n", o.Job.Title, o.Err)
		case o.Applied:
			fmt.Printf("%s: saved\n", o.Job.Title)
		default:
			fmt.Printf("%s: editor exited with code %d, changes discarded\n", o.Job.Title, o.ExitCode)
		}
	}
}

func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringSliceVarP(&editFormats, "format", "f", nil, "formats to edit (AZW3, EPUB)")
	editCmd.Flags().BoolVarP(&editYes, "yes", "y", false, "do not ask before editing many books")
}
