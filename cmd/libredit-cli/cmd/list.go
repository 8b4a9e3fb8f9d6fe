package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"libredit/internal/application/commands"
)

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List books in the library",
	Long: `List books, optionally filtered by title or author.

Examples:
  libredit-cli list
  libredit-cli list herbert`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		books, err := commands.NewListBooksCommand(GetSession(), query).Execute(ctx)
		if err != nil {
			return err
		}
		for _, b := range books {
			fmt.Println(commands.FormatBook(b))
		}
		return nil
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats <book-id>",
	Short: "List the formats of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		id, err := parseBookID(args[0])
		if err != nil {
			return err
		}

		all, editable, err := commands.NewBookFormatsCommand(GetSession(), id).Execute(ctx)
		if err != nil {
			return err
		}
		for _, f := range all {
			if slices.Contains(editable, f) {
				fmt.Printf("%s (editable)\n", f)
			} else {
				fmt.Println(f)
			}
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the library path and identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		current := GetSession().Current()
		fmt.Printf("path: %s\nid:   %s\n", current.Root(), current.ID())
		return nil
	},
}

func parseBookID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid book ID %q", s)
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(infoCmd)
}
