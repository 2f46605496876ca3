package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/lexandro/filetally-mcp/index"
	"github.com/lexandro/filetally-mcp/organize"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OrganizeArgs defines the input parameters for the filetally_organize tool.
type OrganizeArgs struct {
	Action     string   `json:"action,omitempty" jsonschema:"plan (default, changes nothing), apply, or undo"`
	Copy       bool     `json:"copy,omitempty" jsonschema:"Copy files instead of moving them (apply only; copies cannot be undone)"`
	Categories []string `json:"categories,omitempty" jsonschema:"Only organize these categories (default all)"`
}

// OrganizeHandler sorts scanned files into one folder per category.
type OrganizeHandler struct {
	Session  *index.Session
	RootDir  string
	DoRescan RescanFunc // optional; refreshes the file set after files moved
	Logger   *slog.Logger
}

// Handle processes a filetally_organize request.
func (h *OrganizeHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args OrganizeArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	switch args.Action {
	case "", "plan", "apply":
	case "undo":
		return h.undo(ctx, start)
	default:
		return errorResult(fmt.Sprintf("Error: unknown action %q (use plan, apply or undo)", args.Action)), nil, nil
	}

	categories := make([]classify.Category, 0, len(args.Categories))
	for _, name := range args.Categories {
		category, ok := classify.ParseCategory(name)
		if !ok {
			return errorResult(fmt.Sprintf("Error: unknown category %q", name)), nil, nil
		}
		categories = append(categories, category)
	}

	// Only scanned files have a location on disk.
	report := h.Session.Report()
	entries := make([]classify.Entry, 0, len(report.ByName))
	for _, entry := range report.ByName {
		if entry.Path != "" {
			entries = append(entries, entry)
		}
	}

	moves, err := organize.Plan(h.RootDir, entries, categories)
	if err != nil {
		h.Logger.Error("filetally_organize plan failed", "error", err)
		return errorResult(fmt.Sprintf("Organize error: %v", err)), nil, nil
	}

	if args.Action != "apply" {
		h.Logger.Info("filetally_organize", "action", "plan", "moves", len(moves), "elapsed", time.Since(start))
		return textResult(FormatMoves(moves, "Planned")), nil, nil
	}

	journal, err := organize.Apply(ctx, h.RootDir, moves, organize.Options{Copy: args.Copy})
	h.rescan(ctx)
	if err != nil {
		h.Logger.Error("filetally_organize apply failed", "applied", len(journal.Moves), "error", err)
		return errorResult(fmt.Sprintf("Organize error after %d files: %v", len(journal.Moves), err)), nil, nil
	}

	header := "Moved"
	if args.Copy {
		header = "Copied"
	}
	h.Logger.Info("filetally_organize", "action", "apply", "copy", args.Copy,
		"moves", len(journal.Moves), "elapsed", time.Since(start))
	return textResult(FormatMoves(journal.Moves, header)), nil, nil
}

func (h *OrganizeHandler) undo(ctx context.Context, start time.Time) (*mcp.CallToolResult, any, error) {
	restored, err := organize.Undo(h.RootDir)
	if errors.Is(err, organize.ErrNoJournal) {
		return errorResult("Nothing to undo: no organize run recorded."), nil, nil
	}
	h.rescan(ctx)
	if err != nil {
		h.Logger.Error("filetally_organize undo failed", "restored", restored, "error", err)
		return errorResult(fmt.Sprintf("Undo error after %d files: %v", restored, err)), nil, nil
	}
	h.Logger.Info("filetally_organize", "action", "undo", "restored", restored, "elapsed", time.Since(start))
	return textResult(fmt.Sprintf("Undo complete: restored %d files.", restored)), nil, nil
}

func (h *OrganizeHandler) rescan(ctx context.Context) {
	if h.DoRescan == nil {
		return
	}
	if _, _, _, err := h.DoRescan(ctx); err != nil {
		h.Logger.Warn("rescan after organize failed", "error", err)
	}
}
