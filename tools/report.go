package tools

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lexandro/filetally-mcp/index"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReportArgs defines the input parameters for the filetally_report tool.
type ReportArgs struct {
	MaxFiles int `json:"maxFiles,omitempty" jsonschema:"Maximum number of file lines in the listing (default 100)"`
}

// ReportHandler renders the report of the current file set.
type ReportHandler struct {
	Session *index.Session
	Logger  *slog.Logger
}

// Handle processes a filetally_report request.
func (h *ReportHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ReportArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	report := h.Session.Report()
	h.Logger.Info("filetally_report",
		"files", report.TotalCount,
		"categories", len(report.ByCategory),
		"elapsed", time.Since(start),
	)
	return textResult(FormatReport(report, listingLimit(args.MaxFiles))), nil, nil
}

// ResetArgs defines the input parameters for the filetally_reset tool (none required).
type ResetArgs struct{}

// ResetHandler clears the file set.
type ResetHandler struct {
	Session *index.Session
	Logger  *slog.Logger
}

// Handle processes a filetally_reset request.
func (h *ResetHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ResetArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	cleared := h.Session.Files().Count()
	if _, err := h.Session.Reset(); err != nil {
		h.Logger.Error("filetally_reset failed", "error", err)
		return errorResult(fmt.Sprintf("Reset error: %v", err)), nil, nil
	}
	h.Logger.Info("filetally_reset", "cleared", cleared, "elapsed", time.Since(start))
	return textResult(fmt.Sprintf("Reset: cleared %d files.", cleared)), nil, nil
}
