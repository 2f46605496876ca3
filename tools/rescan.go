package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RescanArgs defines the input parameters for the filetally_rescan tool.
type RescanArgs struct{}

// RescanFunc performs a full rescan. It is provided by main to avoid circular dependencies.
type RescanFunc func(ctx context.Context) (fileCount int, totalSize int64, elapsed string, err error)

// RescanHandler holds the dependencies for the rescan tool.
type RescanHandler struct {
	DoRescan RescanFunc
	Logger   *slog.Logger
}

// Handle processes a filetally_rescan request.
func (h *RescanHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args RescanArgs) (*mcp.CallToolResult, any, error) {
	h.Logger.Info("filetally_rescan started")

	fileCount, totalSize, elapsed, err := h.DoRescan(ctx)
	if err != nil {
		h.Logger.Error("filetally_rescan failed", "error", err)
		return errorResult(fmt.Sprintf("Rescan error: %v", err)), nil, nil
	}

	h.Logger.Info("filetally_rescan complete",
		"files", fileCount,
		"totalSize", totalSize,
		"elapsed", elapsed,
	)

	return textResult(fmt.Sprintf("Rescan complete: %d files (%s) in %s",
		fileCount, formatFileSize(totalSize), elapsed)), nil, nil
}
