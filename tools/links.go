package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lexandro/filetally-mcp/links"
	"github.com/lexandro/filetally-mcp/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LinksArgs defines the input parameters for the filetally_links tool.
type LinksArgs struct {
	Group string `json:"group" jsonschema:"Link group: sites or games"`
	Open  string `json:"open,omitempty" jsonschema:"Optional link name to open; counts one opening of the group"`
}

// LinksHandler lists link groups and records openings in the tracker.
type LinksHandler struct {
	Tracker *tracker.Tracker
	Logger  *slog.Logger
}

// Handle processes a filetally_links request.
func (h *LinksHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args LinksArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	list, err := links.Group(args.Group)
	if err != nil {
		h.Logger.Warn("filetally_links unknown group", "group", args.Group)
		return errorResult(fmt.Sprintf("Error: %v (use %s)", err, strings.Join(links.Groups(), " or "))), nil, nil
	}

	if args.Open == "" {
		h.Logger.Info("filetally_links", "group", args.Group, "links", len(list), "elapsed", time.Since(start))
		return textResult(FormatLinks(args.Group, list)), nil, nil
	}

	link, err := links.Find(args.Group, args.Open)
	if err != nil {
		h.Logger.Warn("filetally_links unknown link", "group", args.Group, "open", args.Open)
		return errorResult(fmt.Sprintf("Error: %v", err)), nil, nil
	}

	var stats tracker.Stats
	if isGamesGroup(args.Group) {
		stats, err = h.Tracker.IncrementGames()
	} else {
		stats, err = h.Tracker.IncrementSites()
	}
	if err != nil {
		h.Logger.Error("filetally_links counter update failed", "error", err)
		return errorResult(fmt.Sprintf("Counter error: %v", err)), nil, nil
	}

	h.Logger.Info("filetally_links opened", "group", args.Group, "link", link.Name, "elapsed", time.Since(start))
	return textResult(fmt.Sprintf("Open %s %s: %s\n%s", link.Emoji, link.Name, link.URL, stats.Summary())), nil, nil
}

func isGamesGroup(group string) bool {
	return strings.EqualFold(strings.TrimSpace(group), links.GroupGames)
}

// CountersArgs defines the input parameters for the filetally_counters tool.
type CountersArgs struct {
	Action string `json:"action,omitempty" jsonschema:"show (default) or reset"`
}

// CountersHandler shows or resets the open counters.
type CountersHandler struct {
	Tracker *tracker.Tracker
	Logger  *slog.Logger
}

// Handle processes a filetally_counters request.
func (h *CountersHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args CountersArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	switch args.Action {
	case "", "show":
		stats := h.Tracker.Stats()
		h.Logger.Info("filetally_counters", "action", "show", "elapsed", time.Since(start))
		return textResult(formatCounters(stats)), nil, nil
	case "reset":
		stats, err := h.Tracker.Reset()
		if err != nil {
			h.Logger.Error("filetally_counters reset failed", "error", err)
			return errorResult(fmt.Sprintf("Counter error: %v", err)), nil, nil
		}
		h.Logger.Info("filetally_counters", "action", "reset", "elapsed", time.Since(start))
		return textResult("Counters reset.\n" + formatCounters(stats)), nil, nil
	default:
		return errorResult(fmt.Sprintf("Error: unknown action %q (use show or reset)", args.Action)), nil, nil
	}
}

func formatCounters(stats tracker.Stats) string {
	text := stats.Summary()
	if !stats.LastUpdated.IsZero() {
		text += fmt.Sprintf("\nLast updated: %s", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}
	return text
}
