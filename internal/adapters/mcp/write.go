package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"libredit/internal/application"
	"libredit/internal/application/commands"
	"libredit/internal/application/watcher"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// LibraryOpener opens the library stored at path
type LibraryOpener func(path string) (ports.Library, error)

// RegisterWriteTools adds all tools that change the library or start
// editors to the MCP server.
func RegisterWriteTools(s *server.MCPServer, session *application.Session, launcher ports.JobLauncher, runner *watcher.Runner, open LibraryOpener) {
	s.AddTool(addBookTool(), addBookHandler(session))
	s.AddTool(editBooksTool(), editBooksHandler(session, launcher, runner))
	s.AddTool(switchLibraryTool(), switchLibraryHandler(session, open))
}

// --- add_book ---

func addBookTool() mcp.Tool {
	return mcp.NewTool("add_book",
		mcp.WithDescription("Add a book to the library from one file per format. The format is taken from each file's extension."),
		mcp.WithString("title",
			mcp.Description("Book title"),
			mcp.Required(),
		),
		mcp.WithString("author",
			mcp.Description("Book author"),
		),
		mcp.WithArray("files",
			mcp.Description("Absolute paths of the format files (e.g. /tmp/dune.epub)"),
			mcp.WithStringItems(),
		),
	)
}

func addBookHandler(provider ports.LibraryProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewAddBookCommand(provider,
			req.GetString("title", ""),
			req.GetString("author", ""),
			req.GetStringSlice("files", nil),
		)
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- edit_books ---

func editBooksTool() mcp.Tool {
	return mcp.NewTool("edit_books",
		mcp.WithDescription("Open books in the external editor. Each edited file is imported back into the library when the editor exits successfully."),
		mcp.WithArray("book_ids",
			mcp.Description("IDs of the books to edit"),
			mcp.Required(),
			mcp.WithNumberItems(),
		),
		mcp.WithArray("formats",
			mcp.Description("Formats to edit when a book has several (AZW3, EPUB). Defaults to the last choice."),
			mcp.WithStringItems(),
		),
		mcp.WithBoolean("confirm",
			mcp.Description(fmt.Sprintf("Required to edit more than %d books at once", commands.BatchConfirmThreshold)),
		),
	)
}

func editBooksHandler(provider ports.LibraryProvider, launcher ports.JobLauncher, runner *watcher.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var ids []int64
		for _, id := range req.GetIntSlice("book_ids", nil) {
			ids = append(ids, int64(id))
		}

		cmd := commands.NewEditBooksCommand(provider, launcher, runner, ids)
		cands, err := cmd.Candidates(ctx)
		if err != nil {
			return toolError(err)
		}
		if commands.NeedsConfirmation(len(cands)) && !req.GetBool("confirm", false) {
			return toolError(fmt.Errorf("%s Call again with confirm=true to proceed.", commands.ConfirmationPrompt(len(cands))))
		}

		lib := provider.Current()
		formats, err := parseFormats(req.GetStringSlice("formats", nil))
		if err != nil {
			return toolError(err)
		}
		if len(formats) == 0 {
			formats = commands.PreferredFormats(ctx, lib)
		} else if err := commands.RememberFormats(ctx, lib, formats); err != nil {
			return toolError(err)
		}

		result, err := cmd.Execute(ctx, commands.DefaultSelections(cands, formats))
		if result == nil {
			return toolError(err)
		}

		var sb strings.Builder
		sb.WriteString(result.Message)
		sb.WriteByte('\n')
		for _, job := range result.Jobs {
			fmt.Fprintf(&sb, "%s  %s\n", job.Title, job.WorkingPath)
		}
		if err != nil {
			fmt.Fprintf(&sb, "Errors:\n%s\n", err)
		}
		if len(result.Jobs) == 0 {
			return mcp.NewToolResultError(sb.String()), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func parseFormats(names []string) ([]domain.Format, error) {
	var out []domain.Format
	var errs []error
	for _, name := range names {
		f, err := domain.ParseFormat(name)
		if err == nil {
			err = application.ValidateEditableFormat(f)
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, f)
	}
	return out, errors.Join(errs...)
}

// --- switch_library ---

func switchLibraryTool() mcp.Tool {
	return mcp.NewTool("switch_library",
		mcp.WithDescription("Make another library the active one. Edits still open in the previous library can no longer be saved."),
		mcp.WithString("path",
			mcp.Description("Library directory"),
			mcp.Required(),
		),
	)
}

func switchLibraryHandler(session *application.Session, open LibraryOpener) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if err := application.ValidateRequired("path", path); err != nil {
			return toolError(err)
		}

		lib, err := open(path)
		if err != nil {
			return toolError(err)
		}
		if prev := session.Switch(lib); prev != nil {
			prev.Close()
		}
		return mcp.NewToolResultText(fmt.Sprintf("Switched to %s", lib.Root())), nil
	}
}
