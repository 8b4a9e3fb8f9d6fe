package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"libredit/internal/application/commands"
	"libredit/internal/application/watcher"
	"libredit/internal/domain"
	"libredit/internal/ports"
)

// RegisterReadTools adds all read-only library tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, provider ports.LibraryProvider, runner *watcher.Runner, results *Results) {
	s.AddTool(listBooksTool(), listBooksHandler(provider))
	s.AddTool(bookFormatsTool(), bookFormatsHandler(provider))
	s.AddTool(jobsTool(), jobsHandler(runner, time.Now))
	s.AddTool(jobResultsTool(), jobResultsHandler(results))
	s.AddTool(libraryTool(), libraryHandler(provider))
}

// --- list_books ---

func listBooksTool() mcp.Tool {
	return mcp.NewTool("list_books",
		mcp.WithDescription("List the books in the library with their IDs and formats."),
		mcp.WithString("query",
			mcp.Description("Case-insensitive filter on title or author. Omit to list every book."),
		),
	)
}

func listBooksHandler(provider ports.LibraryProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		books, err := commands.NewListBooksCommand(provider, req.GetString("query", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(books, commands.FormatBook)
	}
}

// --- book_formats ---

func bookFormatsTool() mcp.Tool {
	return mcp.NewTool("book_formats",
		mcp.WithDescription("List the formats of a book and which of them can be edited."),
		mcp.WithNumber("book_id",
			mcp.Description("Book ID as shown by list_books"),
			mcp.Required(),
		),
	)
}

func bookFormatsHandler(provider ports.LibraryProvider) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(req.GetInt("book_id", 0))

		all, editable, err := commands.NewBookFormatsCommand(provider, id).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(all) == 0 {
			return mcp.NewToolResultText("No formats."), nil
		}

		var sb strings.Builder
		for _, f := range all {
			mark := ""
			if slices.Contains(editable, f) {
				mark = "  (editable)"
			}
			fmt.Fprintf(&sb, "%s%s\n", f, mark)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- jobs ---

func jobsTool() mcp.Tool {
	return mcp.NewTool("jobs",
		mcp.WithDescription("List the editor jobs still waiting for the editor to finish."),
	)
}

func jobsHandler(runner *watcher.Runner, now func() time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jobs, err := runner.Jobs(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(jobs, func(j domain.Job) string {
			return fmt.Sprintf("%s  %s  %s", j.Title, j.State(), now().Sub(j.StartTime).Truncate(time.Second))
		})
	}
}

// --- job_results ---

func jobResultsTool() mcp.Tool {
	return mcp.NewTool("job_results",
		mcp.WithDescription("Show what happened to recently finished editor jobs, newest first. "+
			"An edit is not saved when the editor fails or the library was switched while it ran."),
	)
}

func jobResultsHandler(results *Results) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		recent := results.Recent()
		if len(recent) == 0 {
			return mcp.NewToolResultText("No finished jobs."), nil
		}
		return formatEntities(recent, func(r Result) string {
			return fmt.Sprintf("%s  %s  %s", r.FinishedAt.Format(time.TimeOnly), r.Job.Title, r.Summary())
		})
	}
}

// --- library ---

func libraryTool() mcp.Tool {
	return mcp.NewTool("library",
		mcp.WithDescription("Show the path and identity of the active library."),
	)
}

func libraryHandler(provider ports.LibraryProvider) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lib := provider.Current()
		return mcp.NewToolResultText(fmt.Sprintf("%s  %s", lib.Root(), lib.ID())), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}
