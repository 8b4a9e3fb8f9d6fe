package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libredit/internal/application"
	"libredit/internal/application/watcher"
	"libredit/internal/domain"
	"libredit/internal/ports"
	"libredit/internal/testutil"
)

type toolsFixture struct {
	lib      *testutil.FakeLibrary
	session  *application.Session
	launcher *testutil.FakeLauncher
	runner   *watcher.Runner
	results  *Results
}

func newToolsFixture(t *testing.T) *toolsFixture {
	t.Helper()
	lib := testutil.NewFakeLibrary("lib-1", t.TempDir())
	session := application.NewSession(lib)
	results := NewResults(10)
	runner := watcher.NewRunner(watcher.New(session),
		watcher.WithPollInterval(5*time.Millisecond),
		watcher.WithReportHandler(results.Record),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runner.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return &toolsFixture{
		lib:      lib,
		session:  session,
		launcher: &testutil.FakeLauncher{},
		runner:   runner,
		results:  results,
	}
}

// finish plays the editor side of the handshake with the given exit code
// and waits until the job is no longer tracked
func (f *toolsFixture) finish(t *testing.T, path, exitCode string) {
	t.Helper()
	require.NoError(t, os.WriteFile(domain.StartedSentinel(path), nil, 0644))
	require.NoError(t, os.WriteFile(path, []byte("edited"), 0644))
	require.NoError(t, os.WriteFile(domain.ResultSentinel(path), []byte(exitCode), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.runner.Wait(ctx))
}

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestListBooks(t *testing.T) {
	f := newToolsFixture(t)
	f.lib.Seed("Dune", domain.FormatEPUB)
	f.lib.Seed("Emma", domain.FormatAZW3)

	text, isErr := call(t, listBooksHandler(f.session), nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "Dune")
	assert.Contains(t, text, "Emma")

	text, _ = call(t, listBooksHandler(f.session), map[string]any{"query": "emm"})
	assert.NotContains(t, text, "Dune")
	assert.Contains(t, text, "Emma")

	text, _ = call(t, listBooksHandler(f.session), map[string]any{"query": "zzz"})
	assert.Equal(t, "No results.", text)
}

func TestBookFormats(t *testing.T) {
	f := newToolsFixture(t)
	id := f.lib.Seed("Dune", domain.FormatEPUB, "PDF")

	text, isErr := call(t, bookFormatsHandler(f.session), map[string]any{"book_id": float64(id)})
	assert.False(t, isErr)
	assert.Contains(t, text, "EPUB  (editable)")
	assert.Contains(t, text, "PDF\n")

	_, isErr = call(t, bookFormatsHandler(f.session), map[string]any{"book_id": float64(0)})
	assert.True(t, isErr)
}

func TestEditBooks_TracksAndImports(t *testing.T) {
	f := newToolsFixture(t)
	id := f.lib.Seed("Dune", domain.FormatEPUB)
	h := editBooksHandler(f.session, f.launcher, f.runner)

	text, isErr := call(t, h, map[string]any{"book_ids": []any{float64(id)}})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Launched 1 edit job(s)")

	launches := f.launcher.Launches()
	require.Len(t, launches, 1)
	path := launches[0].Params[ports.ParamPath]

	jobsText, _ := call(t, jobsHandler(f.runner, time.Now), nil)
	assert.Contains(t, jobsText, "Dune [EPUB]")

	require.NoError(t, os.WriteFile(domain.StartedSentinel(path), nil, 0644))
	require.NoError(t, os.WriteFile(path, []byte("edited"), 0644))
	require.NoError(t, os.WriteFile(domain.ResultSentinel(path), []byte("0"), 0644))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.runner.Wait(ctx))

	assert.Equal(t, "edited", f.lib.Content(id, domain.FormatEPUB))
	jobsText, _ = call(t, jobsHandler(f.runner, time.Now), nil)
	assert.Equal(t, "No results.", jobsText)

	resultsText, _ := call(t, jobResultsHandler(f.results), nil)
	assert.Contains(t, resultsText, "Dune [EPUB]  saved")
}

func TestJobResults_LibraryChanged(t *testing.T) {
	f := newToolsFixture(t)
	id := f.lib.Seed("Dune", domain.FormatEPUB)

	text, isErr := call(t, jobResultsHandler(f.results), nil)
	assert.False(t, isErr)
	assert.Equal(t, "No finished jobs.", text)

	_, isErr = call(t, editBooksHandler(f.session, f.launcher, f.runner), map[string]any{"book_ids": []any{float64(id)}})
	require.False(t, isErr)
	path := f.launcher.Launches()[0].Params[ports.ParamPath]

	other := testutil.NewFakeLibrary("lib-2", t.TempDir())
	f.session.Switch(other)
	f.finish(t, path, "0")

	assert.Empty(t, f.lib.Imports())
	assert.Empty(t, other.Imports())

	text, isErr = call(t, jobResultsHandler(f.results), nil)
	assert.False(t, isErr)
	assert.Contains(t, text, "Dune [EPUB]")
	assert.Contains(t, text, "warning:")
	assert.Contains(t, text, "the library has changed")
}

func TestJobResults_NonZeroExit(t *testing.T) {
	f := newToolsFixture(t)
	id := f.lib.Seed("Emma", domain.FormatAZW3)

	_, isErr := call(t, editBooksHandler(f.session, f.launcher, f.runner), map[string]any{"book_ids": []any{float64(id)}})
	require.False(t, isErr)
	f.finish(t, f.launcher.Launches()[0].Params[ports.ParamPath], "3")

	assert.Empty(t, f.lib.Imports())
	text, _ := call(t, jobResultsHandler(f.results), nil)
	assert.Contains(t, text, "Emma [AZW3]  editor exited with code 3, changes discarded")
}

func TestResults_KeepsNewestFirstWithinSize(t *testing.T) {
	r := NewResults(2)
	for _, title := range []string{"A", "B", "C"} {
		r.Record(watcher.Report{Completed: []watcher.Outcome{{Job: domain.Job{Title: title}, Applied: true}}})
	}
	r.Record(watcher.Report{Active: 1})

	recent := r.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "C", recent[0].Job.Title)
	assert.Equal(t, "B", recent[1].Job.Title)
}

func TestResult_Summary(t *testing.T) {
	tests := []struct {
		name string
		res  Result
		want string
	}{
		{name: "saved", res: Result{Applied: true}, want: "saved"},
		{name: "timed out", res: Result{TimedOut: true, ExitCode: -1}, want: "timed out waiting for the editor, changes not saved"},
		{name: "exit code", res: Result{ExitCode: 2}, want: "editor exited with code 2, changes discarded"},
		{
			name: "library changed",
			res:  Result{Err: &application.LibraryChangedError{Title: "Dune [EPUB]", Want: "a", Got: "b"}},
			want: "warning: cannot save changes made to Dune [EPUB]: the library has changed",
		},
		{name: "unreadable", res: Result{ExitCode: -1, Err: errors.New("read result: denied")}, want: "not saved: read result: denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.Summary())
		})
	}
}

func TestEditBooks_Confirmation(t *testing.T) {
	f := newToolsFixture(t)
	var ids []any
	for range 6 {
		ids = append(ids, float64(f.lib.Seed("Book", domain.FormatEPUB)))
	}
	h := editBooksHandler(f.session, f.launcher, f.runner)

	text, isErr := call(t, h, map[string]any{"book_ids": ids})
	assert.True(t, isErr)
	assert.Contains(t, text, "confirm=true")
	assert.Empty(t, f.launcher.Launches())

	_, isErr = call(t, h, map[string]any{"book_ids": ids, "confirm": true})
	assert.False(t, isErr)
	assert.Len(t, f.launcher.Launches(), 6)
}

func TestEditBooks_Formats(t *testing.T) {
	f := newToolsFixture(t)
	id := f.lib.Seed("Emma", domain.FormatEPUB, domain.FormatAZW3)
	h := editBooksHandler(f.session, f.launcher, f.runner)

	_, isErr := call(t, h, map[string]any{"book_ids": []any{float64(id)}, "formats": []any{"pdf"}})
	assert.True(t, isErr)

	text, isErr := call(t, h, map[string]any{"book_ids": []any{float64(id)}, "formats": []any{"azw3"}})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Emma [AZW3]")

	prefs, err := f.lib.LastSelectedFormats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Format{domain.FormatAZW3}, prefs)
}

func TestEditBooks_Errors(t *testing.T) {
	f := newToolsFixture(t)
	pdf := f.lib.Seed("Scan", "PDF")
	h := editBooksHandler(f.session, f.launcher, f.runner)

	text, isErr := call(t, h, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "No books selected")

	text, isErr = call(t, h, map[string]any{"book_ids": []any{float64(pdf)}})
	assert.True(t, isErr)
	assert.Contains(t, text, "AZW3 or EPUB")

	f.launcher.Err = errors.New("helper missing")
	id := f.lib.Seed("Dune", domain.FormatEPUB)
	text, isErr = call(t, h, map[string]any{"book_ids": []any{float64(id)}})
	assert.True(t, isErr)
	assert.Contains(t, text, "helper missing")
}

func TestAddBook(t *testing.T) {
	f := newToolsFixture(t)
	src := filepath.Join(t.TempDir(), "dune.epub")
	require.NoError(t, os.WriteFile(src, []byte("epub"), 0644))

	text, isErr := call(t, addBookHandler(f.session), map[string]any{
		"title":  "Dune",
		"author": "Frank Herbert",
		"files":  []any{src},
	})
	require.False(t, isErr, text)
	assert.Contains(t, text, "Added")

	_, isErr = call(t, addBookHandler(f.session), map[string]any{"files": []any{src}})
	assert.True(t, isErr)
}

func TestSwitchLibrary(t *testing.T) {
	f := newToolsFixture(t)
	other := testutil.NewFakeLibrary("lib-2", t.TempDir())
	open := func(path string) (ports.Library, error) {
		if path != other.Root() {
			return nil, os.ErrNotExist
		}
		return other, nil
	}

	_, isErr := call(t, switchLibraryHandler(f.session, open), map[string]any{"path": "/nowhere"})
	assert.True(t, isErr)
	assert.Equal(t, "lib-1", f.session.Current().ID())

	text, isErr := call(t, switchLibraryHandler(f.session, open), map[string]any{"path": other.Root()})
	assert.False(t, isErr)
	assert.Contains(t, text, other.Root())
	assert.Equal(t, "lib-2", f.session.Current().ID())

	_, isErr = call(t, switchLibraryHandler(f.session, open), map[string]any{})
	assert.True(t, isErr)
}
