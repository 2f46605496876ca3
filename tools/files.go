package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/lexandro/filetally-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FilesArgs defines the input parameters for the filetally_files tool.
type FilesArgs struct {
	Pattern    string `json:"pattern" jsonschema:"Glob pattern matched against relative paths (e.g. **/*.jpg or photos/**)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// FilesHandler lists files of the current set matching a glob.
type FilesHandler struct {
	Session    *index.Session
	MaxResults int // used when the request sets none
	Logger     *slog.Logger
}

// Handle processes a filetally_files request.
func (h *FilesHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args FilesArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Pattern == "" {
		h.Logger.Warn("filetally_files called with empty pattern")
		return errorResult("Error: pattern parameter is required"), nil, nil
	}

	matches, err := h.Session.Files().SearchByGlob(args.Pattern, resultLimit(args.MaxResults, h.MaxResults))
	if err != nil {
		h.Logger.Error("filetally_files failed", "pattern", args.Pattern, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}
	if len(matches) == 0 {
		return textResult("No files matched."), nil, nil
	}

	report, err := h.Session.Classifier().Classify(matches)
	if err != nil {
		return errorResult(fmt.Sprintf("Classification error: %v", err)), nil, nil
	}

	h.Logger.Info("filetally_files",
		"pattern", args.Pattern,
		"results", len(matches),
		"elapsed", time.Since(start),
	)
	return textResult(fmt.Sprintf("Found %d files:\n\n%s", len(matches), FormatEntries(report.ByName, 0))), nil, nil
}

// SearchArgs defines the input parameters for the filetally_search tool.
type SearchArgs struct {
	Query      string `json:"query,omitempty" jsonschema:"Name query. Plain words, quoted for exact phrase, /regex/ for a regular expression"`
	Category   string `json:"category,omitempty" jsonschema:"Optional category filter (images, documents, spreadsheets, presentations, archives, audio, video, code, data, executables, other)"`
	MaxResults int    `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50)"`
}

// SearchHandler runs full-text name searches over the current report.
type SearchHandler struct {
	Session    *index.Session
	MaxResults int // used when the request sets none
	Logger     *slog.Logger
}

// Handle processes a filetally_search request.
func (h *SearchHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if args.Query == "" && args.Category == "" {
		h.Logger.Warn("filetally_search called without query or category")
		return errorResult("Error: query or category parameter is required"), nil, nil
	}

	var category classify.Category
	if args.Category != "" {
		var ok bool
		category, ok = classify.ParseCategory(args.Category)
		if !ok {
			return errorResult(fmt.Sprintf("Error: unknown category %q", args.Category)), nil, nil
		}
	}

	results, err := h.Session.Search(index.SearchOptions{
		Query:      args.Query,
		Category:   category,
		MaxResults: resultLimit(args.MaxResults, h.MaxResults),
	})
	if err != nil {
		h.Logger.Error("filetally_search failed", "query", args.Query, "error", err)
		return errorResult(fmt.Sprintf("Search error: %v", err)), nil, nil
	}

	h.Logger.Info("filetally_search",
		"query", args.Query,
		"category", args.Category,
		"results", len(results),
		"elapsed", time.Since(start),
	)

	if len(results) == 0 {
		return textResult("No matches found."), nil, nil
	}
	return textResult(fmt.Sprintf("Found %d files:\n\n%s", len(results), FormatEntries(results, 0))), nil, nil
}

// resultLimit picks the requested limit, then the configured one; 0 leaves the index default.
func resultLimit(requested int, configured int) int {
	if requested > 0 {
		return requested
	}
	return configured
}
