// Package testutil provides in-memory fakes of the ports for tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"libredit/internal/application"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// Import records one ImportFormat call
type Import struct {
	BookID int64
	Format domain.Format
	Path   string
	Data   string // Content of the file at import time
}

// FakeLibrary is an in-memory ports.Library. Working copies handed out by
// FormatPath are written under Dir.
type FakeLibrary struct {
	mu sync.Mutex

	LibraryID string
	Dir       string
	ImportErr error

	books   map[int64]*domain.Book
	content map[string]string // "id/FORMAT" -> file content
	imports []Import
	prefs   []domain.Format
	nextID  int64
	copies  int
}

// Ensure FakeLibrary implements Library and Preferences
var (
	_ ports.Library     = (*FakeLibrary)(nil)
	_ ports.Preferences = (*FakeLibrary)(nil)
)

// NewFakeLibrary creates an empty library with the given identity
func NewFakeLibrary(id, dir string) *FakeLibrary {
	return &FakeLibrary{
		LibraryID: id,
		Dir:       dir,
		books:     make(map[int64]*domain.Book),
		content:   make(map[string]string),
	}
}

// Seed adds a book with one file per format and returns its ID
func (l *FakeLibrary) Seed(title string, formats ...domain.Format) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	l.books[l.nextID] = &domain.Book{ID: l.nextID, Title: title, Formats: slices.Clone(formats)}
	for _, f := range formats {
		l.content[contentKey(l.nextID, f)] = fmt.Sprintf("%s %s", title, f)
	}
	return l.nextID
}

// Imports returns the ImportFormat calls so far
func (l *FakeLibrary) Imports() []Import {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.imports)
}

// Content returns the stored content of a book format
func (l *FakeLibrary) Content(bookID int64, f domain.Format) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.content[contentKey(bookID, f)]
}

func (l *FakeLibrary) ID() string   { return l.LibraryID }
func (l *FakeLibrary) Root() string { return l.Dir }
func (l *FakeLibrary) Close() error { return nil }

func (l *FakeLibrary) ListBooks(_ context.Context) ([]domain.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Book
	for _, b := range l.books {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b domain.Book) int { return int(a.ID - b.ID) })
	return out, nil
}

func (l *FakeLibrary) Book(_ context.Context, bookID int64) (*domain.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.books[bookID]
	if !ok {
		return nil, fmt.Errorf("book %d: %w", bookID, application.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (l *FakeLibrary) Formats(ctx context.Context, bookID int64) ([]domain.Format, error) {
	b, err := l.Book(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return b.Formats, nil
}

func (l *FakeLibrary) Title(ctx context.Context, bookID int64) (string, error) {
	b, err := l.Book(ctx, bookID)
	if err != nil {
		return "", err
	}
	return b.Title, nil
}

func (l *FakeLibrary) FormatPath(_ context.Context, bookID int64, f domain.Format) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, ok := l.content[contentKey(bookID, f)]
	if !ok {
		return "", fmt.Errorf("book %d has no %s: %w", bookID, f, application.ErrNotFound)
	}
	l.copies++
	path := filepath.Join(l.Dir, fmt.Sprintf("work-%d-%d.%s", bookID, l.copies, f.Ext()))
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (l *FakeLibrary) ImportFormat(_ context.Context, bookID int64, f domain.Format, path string) error {
	if l.ImportErr != nil {
		return l.ImportErr
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.imports = append(l.imports, Import{BookID: bookID, Format: f, Path: path, Data: string(data)})
	l.content[contentKey(bookID, f)] = string(data)
	if b, ok := l.books[bookID]; ok && !b.HasFormat(f) {
		b.Formats = append(b.Formats, f)
	}
	return nil
}

func (l *FakeLibrary) AddBook(_ context.Context, title, author string, files ...string) (*domain.Book, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	b := &domain.Book{ID: l.nextID, Title: title, Author: author}
	for _, file := range files {
		f, err := domain.FormatFromPath(file)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		b.Formats = append(b.Formats, f)
		l.content[contentKey(b.ID, f)] = string(data)
	}
	l.books[b.ID] = b
	cp := *b
	return &cp, nil
}

func (l *FakeLibrary) LastSelectedFormats(_ context.Context) ([]domain.Format, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.prefs), nil
}

func (l *FakeLibrary) SetLastSelectedFormats(_ context.Context, formats []domain.Format) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefs = slices.Clone(formats)
	return nil
}

func contentKey(bookID int64, f domain.Format) string {
	return fmt.Sprintf("%d/%s", bookID, f)
}
