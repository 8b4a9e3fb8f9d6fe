package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"libredit/internal/adapters/filesystem"
	"libredit/internal/application"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

const (
	schemaVersion = "1"
	// DatabaseName is the metadata database file inside the library root
	DatabaseName = "metadata.db"
)

// Library implements ports.Library with a SQLite metadata database and
// format files stored under the library root
type Library struct {
	db    *sql.DB
	store *filesystem.Store
	id    string
}

// Ensure Library implements Library and Preferences
var (
	_ ports.Library     = (*Library)(nil)
	_ ports.Preferences = (*Library)(nil)
)

// Open opens the library at root, creating it if needed
func Open(root string) (*Library, error) {
	store := filesystem.NewStore(root)

	if err := os.MkdirAll(store.Root(), 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	dsn := filepath.Join(store.Root(), DatabaseName) + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;

		CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT '',
			added_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS formats (
			book_id INTEGER NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			format TEXT NOT NULL,
			name TEXT NOT NULL,
			size INTEGER NOT NULL,
			PRIMARY KEY (book_id, format)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_books_title ON books(title);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	lib := &Library{db: db, store: store}
	if err := lib.loadIdentity(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load library identity: %w", err)
	}
	return lib, nil
}

// loadIdentity mints the library ID on first open and reads it afterwards
func (l *Library) loadIdentity() error {
	if _, err := l.db.Exec(`INSERT OR IGNORE INTO meta (key, value) VALUES ('library_id', ?)`, uuid.NewString()); err != nil {
		return err
	}
	if _, err := l.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		return err
	}
	return l.db.QueryRow(`SELECT value FROM meta WHERE key = 'library_id'`).Scan(&l.id)
}

// ID returns the library identity
func (l *Library) ID() string {
	return l.id
}

// Root returns the library directory
func (l *Library) Root() string {
	return l.store.Root()
}

// Close closes the database connection
func (l *Library) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}

// ListBooks returns every book ordered by title
func (l *Library) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.author, b.path, b.added_at, COALESCE(GROUP_CONCAT(f.format), '')
		FROM books b LEFT JOIN formats f ON f.book_id = b.id
		GROUP BY b.id
		ORDER BY b.title COLLATE NOCASE, b.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// Book returns one book with its formats
func (l *Library) Book(ctx context.Context, bookID int64) (*domain.Book, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT b.id, b.title, b.author, b.path, b.added_at, COALESCE(GROUP_CONCAT(f.format), '')
		FROM books b LEFT JOIN formats f ON f.book_id = b.id
		WHERE b.id = ?
		GROUP BY b.id
	`, bookID)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("book %d: %w", bookID, application.ErrNotFound)
	}
	return b, err
}

// Formats returns the stored formats of a book
func (l *Library) Formats(ctx context.Context, bookID int64) ([]domain.Format, error) {
	b, err := l.Book(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return b.Formats, nil
}

// Title returns the title of a book
func (l *Library) Title(ctx context.Context, bookID int64) (string, error) {
	var title string
	err := l.db.QueryRowContext(ctx, `SELECT title FROM books WHERE id = ?`, bookID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("book %d: %w", bookID, application.ErrNotFound)
	}
	return title, err
}

// FormatPath copies a stored format to a new temporary working file
func (l *Library) FormatPath(ctx context.Context, bookID int64, format domain.Format) (string, error) {
	var dir, name string
	err := l.db.QueryRowContext(ctx, `
		SELECT b.path, f.name
		FROM formats f JOIN books b ON b.id = f.book_id
		WHERE f.book_id = ? AND f.format = ?
	`, bookID, string(format)).Scan(&dir, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("book %d has no %s format: %w", bookID, format, application.ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return l.store.WorkingCopy(dir+"/"+name, format)
}

// ImportFormat stores the file at path as the book's format, replacing
// any existing file of that format
func (l *Library) ImportFormat(ctx context.Context, bookID int64, format domain.Format, path string) error {
	b, err := l.Book(ctx, bookID)
	if err != nil {
		return err
	}
	name := domain.FormatFileName(b.Title, format)

	return l.withTx(ctx, func(tx *sql.Tx) error {
		size, err := l.store.Put(b.Path, name, path)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO formats (book_id, format, name, size)
			VALUES (?, ?, ?, ?)
		`, bookID, string(format), name, size)
		return err
	})
}

// AddBook creates a book record and stores one file per format. Nothing is
// left behind if any file fails to copy.
func (l *Library) AddBook(ctx context.Context, title, author string, files ...string) (*domain.Book, error) {
	var dir string
	var bookID int64

	err := l.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO books (title, author, added_at) VALUES (?, ?, ?)
		`, title, author, time.Now().Unix())
		if err != nil {
			return err
		}
		bookID, err = res.LastInsertId()
		if err != nil {
			return err
		}

		dir = domain.BookDir(author, title, bookID)
		if _, err := tx.ExecContext(ctx, `UPDATE books SET path = ? WHERE id = ?`, dir, bookID); err != nil {
			return err
		}

		for _, file := range files {
			format, err := domain.FormatFromPath(file)
			if err != nil {
				return err
			}
			name := domain.FormatFileName(title, format)
			size, err := l.store.Put(dir, name, file)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO formats (book_id, format, name, size)
				VALUES (?, ?, ?, ?)
			`, bookID, string(format), name, size); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if dir != "" {
			l.store.RemoveDir(dir)
		}
		return nil, err
	}

	return l.Book(ctx, bookID)
}

// LastSelectedFormats returns the formats chosen in the last format prompt
func (l *Library) LastSelectedFormats(ctx context.Context) ([]domain.Format, error) {
	var value string
	err := l.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'last_selected_formats'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return splitFormats(value), nil
}

// SetLastSelectedFormats remembers a format choice
func (l *Library) SetLastSelectedFormats(ctx context.Context, formats []domain.Format) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO meta (key, value) VALUES ('last_selected_formats', ?)
	`, domain.JoinFormats(formats, ","))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var b domain.Book
	var addedAt int64
	var formats string
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Path, &addedAt, &formats); err != nil {
		return nil, err
	}
	b.AddedAt = time.Unix(addedAt, 0)
	b.Formats = splitFormats(formats)
	return &b, nil
}

func splitFormats(s string) []domain.Format {
	var out []domain.Format
	for _, part := range strings.Split(s, ",") {
		if f, err := domain.ParseFormat(part); err == nil {
			out = append(out, f)
		}
	}
	slices.Sort(out)
	return out
}

// OpenLibrary is Open returning the ports.Library interface
func OpenLibrary(root string) (ports.Library, error) {
	lib, err := Open(root)
	if err != nil {
		return nil, err
	}
	return lib, nil
}
