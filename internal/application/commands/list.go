package commands

import (
	"context"
	"fmt"
	"strings"

	"libredit/internal/application"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// ListBooksCommand lists the books in the active library
type ListBooksCommand struct {
	provider ports.LibraryProvider
	Query    string // Case-insensitive title/author filter; empty lists all
}

// NewListBooksCommand creates a new ListBooksCommand
func NewListBooksCommand(provider ports.LibraryProvider, query string) *ListBooksCommand {
	return &ListBooksCommand{provider: provider, Query: query}
}

// Execute runs the list books command
func (c *ListBooksCommand) Execute(ctx context.Context) ([]domain.Book, error) {
	books, err := c.provider.Current().ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return FilterBooks(books, c.Query), nil
}

// FilterBooks keeps books whose title or author contains query
func FilterBooks(books []domain.Book, query string) []domain.Book {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return books
	}
	var out []domain.Book
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), query) ||
			strings.Contains(strings.ToLower(b.Author), query) {
			out = append(out, b)
		}
	}
	return out
}

// BookFormatsCommand lists the formats of one book
type BookFormatsCommand struct {
	provider ports.LibraryProvider
	BookID   int64
}

// NewBookFormatsCommand creates a new BookFormatsCommand
func NewBookFormatsCommand(provider ports.LibraryProvider, bookID int64) *BookFormatsCommand {
	return &BookFormatsCommand{provider: provider, BookID: bookID}
}

// Execute returns the book's formats and which of them are editable
func (c *BookFormatsCommand) Execute(ctx context.Context) (all, editable []domain.Format, err error) {
	if err := application.ValidateBookID(c.BookID); err != nil {
		return nil, nil, err
	}
	all, err = c.provider.Current().Formats(ctx, c.BookID)
	if err != nil {
		return nil, nil, err
	}
	return all, domain.EditableFormats(all), nil
}

// FormatBook renders a book as one line with its ID, title, author and formats
func FormatBook(b domain.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-4d %s", b.ID, b.Title)
	if b.Author != "" {
		sb.WriteString(" - ")
		sb.WriteString(b.Author)
	}
	if len(b.Formats) > 0 {
		fmt.Fprintf(&sb, " [%s]", domain.JoinFormats(b.Formats, ", "))
	}
	return sb.String()
}
