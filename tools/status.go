package tools

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/lexandro/filetally-mcp/index"
	"github.com/lexandro/filetally-mcp/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// StatusArgs defines the input parameters for the filetally_status tool (none required).
type StatusArgs struct{}

// StatusHandler holds the dependencies for the status tool.
type StatusHandler struct {
	Session   *index.Session
	Tracker   *tracker.Tracker
	StartTime time.Time
	RootDir   string
	Watching  bool
	Logger    *slog.Logger
}

// Handle processes a filetally_status request.
func (h *StatusHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args StatusArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()
	var builder strings.Builder

	report := h.Session.Report()
	uptime := time.Since(h.StartTime)

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	h.Logger.Info("filetally_status",
		"files", report.TotalCount,
		"totalSize", report.TotalSizeBytes,
		"memory", memStats.Alloc,
		"uptime", uptime,
		"elapsed", time.Since(start),
	)

	builder.WriteString("=== filetally-mcp Status ===\n\n")
	builder.WriteString(fmt.Sprintf("Root directory: %s\n", h.RootDir))
	builder.WriteString(fmt.Sprintf("Uptime: %s\n", formatDuration(uptime)))
	builder.WriteString(fmt.Sprintf("Watching: %t\n", h.Watching))
	builder.WriteString(fmt.Sprintf("Files: %d\n", report.TotalCount))
	builder.WriteString(fmt.Sprintf("Total size: %s\n", formatFileSize(int64(report.TotalSizeBytes))))
	builder.WriteString(fmt.Sprintf("Indexed names: %d\n", h.Session.IndexedNames()))
	builder.WriteString(fmt.Sprintf("Set generation: %d\n", h.Session.Files().Generation()))
	builder.WriteString(fmt.Sprintf("Memory usage: %s (heap: %s)\n",
		formatFileSize(int64(memStats.Alloc)),
		formatFileSize(int64(memStats.HeapAlloc)),
	))

	if buckets := report.Buckets(); len(buckets) > 0 {
		builder.WriteString("\nCategories:\n")
		for _, bucket := range buckets {
			builder.WriteString(fmt.Sprintf("  %s %-14s %d files\n", bucket.Icon, bucket.Category, bucket.Count))
		}
	}

	if h.Tracker != nil {
		builder.WriteString("\n")
		builder.WriteString(h.Tracker.Stats().Summary())
		builder.WriteString("\n")
	}

	return textResult(builder.String()), nil, nil
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	if totalSeconds < 60 {
		return fmt.Sprintf("%ds", totalSeconds)
	}
	totalMinutes := totalSeconds / 60
	remainderSeconds := totalSeconds % 60
	if totalMinutes < 60 {
		return fmt.Sprintf("%dm%ds", totalMinutes, remainderSeconds)
	}
	hours := totalMinutes / 60
	remainderMinutes := totalMinutes % 60
	return fmt.Sprintf("%dh%dm", hours, remainderMinutes)
}
