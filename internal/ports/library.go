package ports

import (
	"context"

	"libredit/internal/domain"
)

// Library defines the book storage operations the edit workflow needs
type Library interface {
	// ID returns the library identity, stable for the life of the library
	ID() string
	Root() string

	// Queries
	ListBooks(ctx context.Context) ([]domain.Book, error)
	Book(ctx context.Context, bookID int64) (*domain.Book, error)
	Formats(ctx context.Context, bookID int64) ([]domain.Format, error)
	Title(ctx context.Context, bookID int64) (string, error)

	// FormatPath copies the stored file of a format to a fresh temporary
	// path and returns it. The caller owns the copy.
	FormatPath(ctx context.Context, bookID int64, format domain.Format) (string, error)

	// ImportFormat replaces (or adds) the stored file of a format with the
	// file at path
	ImportFormat(ctx context.Context, bookID int64, format domain.Format, path string) error

	AddBook(ctx context.Context, title, author string, files ...string) (*domain.Book, error)

	Close() error
}

// Preferences stores small per-library UI choices
type Preferences interface {
	LastSelectedFormats(ctx context.Context) ([]domain.Format, error)
	SetLastSelectedFormats(ctx context.Context, formats []domain.Format) error
}

// LibraryProvider returns the library that is active right now
type LibraryProvider interface {
	Current() Library
}
