package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"libredit/internal/application/commands"
)

var (
	addTitle  string
	addAuthor string
)

var addCmd = &cobra.Command{
	Use:   "add <file>...",
	Short: "Add a book from one file per format",
	Long: `Add a book to the library. Each file becomes one format of the book;
the format is taken from the file extension.

Examples:
  libredit-cli add --title "Dune" --author "Frank Herbert" dune.epub dune.azw3`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		addCmd := commands.NewAddBookCommand(GetSession(), addTitle, addAuthor, args)
		result, err := addCmd.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "book title")
	addCmd.Flags().StringVarP(&addAuthor, "author", "a", "", "book author")
	addCmd.MarkFlagRequired("title")
}
