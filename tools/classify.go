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

// FileArg is one file passed in by a client.
type FileArg struct {
	Name      string `json:"name" jsonschema:"File name including extension (e.g. Holiday.JPG)"`
	SizeBytes uint64 `json:"sizeBytes,omitempty" jsonschema:"Optional file size in bytes"`
}

func toDescriptors(files []FileArg) []classify.FileDescriptor {
	out := make([]classify.FileDescriptor, 0, len(files))
	for _, f := range files {
		out = append(out, classify.FileDescriptor{Name: f.Name, SizeBytes: f.SizeBytes})
	}
	return out
}

// ClassifyArgs defines the input parameters for the filetally_classify tool.
type ClassifyArgs struct {
	Files    []FileArg `json:"files" jsonschema:"Files to classify"`
	MaxFiles int       `json:"maxFiles,omitempty" jsonschema:"Maximum number of file lines in the listing (default all)"`
}

// ClassifyHandler classifies an ad-hoc list without touching the session.
type ClassifyHandler struct {
	Classifier *classify.Classifier
	Logger     *slog.Logger
}

// Handle processes a filetally_classify request.
func (h *ClassifyHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args ClassifyArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	// An empty list classifies to the empty report.
	report, err := h.Classifier.Classify(toDescriptors(args.Files))
	if err != nil {
		h.Logger.Warn("filetally_classify rejected input", "error", err)
		return errorResult(fmt.Sprintf("Classification error: %v", err)), nil, nil
	}

	h.Logger.Info("filetally_classify",
		"files", report.TotalCount,
		"categories", len(report.ByCategory),
		"elapsed", time.Since(start),
	)
	return textResult(FormatReport(report, args.MaxFiles)), nil, nil
}

// AddArgs defines the input parameters for the filetally_add tool.
type AddArgs struct {
	Files    []FileArg `json:"files" jsonschema:"Files to append to the current file set"`
	MaxFiles int       `json:"maxFiles,omitempty" jsonschema:"Maximum number of file lines in the listing (default 100)"`
}

// AddHandler appends files to the session's file set.
type AddHandler struct {
	Session *index.Session
	Logger  *slog.Logger
}

// Handle processes a filetally_add request.
func (h *AddHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args AddArgs) (*mcp.CallToolResult, any, error) {
	start := time.Now()

	if len(args.Files) == 0 {
		h.Logger.Warn("filetally_add called without files")
		return errorResult("Error: files parameter is required"), nil, nil
	}

	report, err := h.Session.Add(toDescriptors(args.Files)...)
	if err != nil {
		h.Logger.Warn("filetally_add failed", "error", err)
		return errorResult(fmt.Sprintf("Add error: %v", err)), nil, nil
	}

	h.Logger.Info("filetally_add", "added", len(args.Files), "total", report.TotalCount, "elapsed", time.Since(start))
	return textResult(FormatReport(report, listingLimit(args.MaxFiles))), nil, nil
}

// listingLimit applies the default cap for session-sized listings.
func listingLimit(maxFiles int) int {
	if maxFiles <= 0 {
		return 100
	}
	return maxFiles
}
