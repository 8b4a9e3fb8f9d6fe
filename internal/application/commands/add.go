package commands

import (
	"context"
	"fmt"
	"os"

	"libredit/internal/application"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// AddBookResult contains the result of adding a book
type AddBookResult struct {
	Book    *domain.Book
	Message string
}

// AddBookCommand adds a book and its format files to the active library
type AddBookCommand struct {
	provider ports.LibraryProvider
	Title    string
	Author   string
	Files    []string
}

// NewAddBookCommand creates a new AddBookCommand
func NewAddBookCommand(provider ports.LibraryProvider, title, author string, files []string) *AddBookCommand {
	return &AddBookCommand{
		provider: provider,
		Title:    title,
		Author:   author,
		Files:    files,
	}
}

// Validate checks the title and that every file exists with a known extension
func (c *AddBookCommand) Validate() error {
	if err := application.ValidateRequired("title", c.Title); err != nil {
		return err
	}
	seen := make(map[domain.Format]string)
	for _, file := range c.Files {
		f, err := domain.FormatFromPath(file)
		if err != nil {
			return &application.ValidationError{Field: "files", Message: err.Error()}
		}
		if prev, ok := seen[f]; ok {
			return &application.ValidationError{
				Field:   "files",
				Message: fmt.Sprintf("%s and %s are both %s", prev, file, f),
			}
		}
		seen[f] = file
		info, err := os.Stat(file)
		if err != nil {
			return &application.ValidationError{Field: "files", Message: err.Error()}
		}
		if info.IsDir() {
			return &application.ValidationError{
				Field:   "files",
				Message: fmt.Sprintf("%s is a directory", file),
			}
		}
	}
	return nil
}

// Execute runs the add book command
func (c *AddBookCommand) Execute(ctx context.Context) (*AddBookResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	book, err := c.provider.Current().AddBook(ctx, c.Title, c.Author, c.Files...)
	if err != nil {
		return nil, fmt.Errorf("failed to add book: %w", err)
	}

	return &AddBookResult{
		Book:    book,
		Message: fmt.Sprintf("Added %d %s", book.ID, book.Title),
	}, nil
}
