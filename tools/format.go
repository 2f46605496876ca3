package tools

import (
	"fmt"
	"strings"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/lexandro/filetally-mcp/links"
	"github.com/lexandro/filetally-mcp/organize"
)

// emptyReportText is shown instead of a report when there are no files.
const emptyReportText = "No files yet. Add files with filetally_add or rescan the root directory."

// FormatReport renders a report as category tiles followed by the sorted file list.
// At most maxFiles listing lines are written (0 means all).
func FormatReport(report classify.Report, maxFiles int) string {
	if report.TotalCount == 0 {
		return emptyReportText
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Total files: %d\n", report.TotalCount))
	builder.WriteString(fmt.Sprintf("File types: %d\n", len(report.ByCategory)))
	if report.TotalSizeBytes > 0 {
		builder.WriteString(fmt.Sprintf("Total size: %s\n", formatFileSize(int64(report.TotalSizeBytes))))
	}

	builder.WriteString("\nCategories:\n")
	for _, bucket := range report.Buckets() {
		builder.WriteString(fmt.Sprintf("  %s %-14s %d\n", bucket.Icon, bucket.Category, bucket.Count))
	}

	builder.WriteString("\nFiles:\n")
	builder.WriteString(FormatEntries(report.ByName, maxFiles))
	return builder.String()
}

// FormatEntries renders one line per entry: icon, name, and path/size when known.
func FormatEntries(entries []classify.Entry, maxFiles int) string {
	var builder strings.Builder
	for i, entry := range entries {
		if maxFiles > 0 && i >= maxFiles {
			builder.WriteString(fmt.Sprintf("  ... and %d more\n", len(entries)-maxFiles))
			break
		}
		builder.WriteString(fmt.Sprintf("  %s %s", entry.Icon, entry.Name))

		var details []string
		if entry.Path != "" && entry.Path != entry.Name {
			details = append(details, entry.Path)
		}
		details = append(details, string(entry.Category))
		if entry.SizeBytes > 0 {
			details = append(details, formatFileSize(int64(entry.SizeBytes)))
		}
		builder.WriteString(fmt.Sprintf("  (%s)\n", strings.Join(details, ", ")))
	}
	return builder.String()
}

// FormatLinks renders a link group.
func FormatLinks(group string, list []links.Link) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s (%d):\n", group, len(list)))
	for _, link := range list {
		builder.WriteString(fmt.Sprintf("  %s %-12s %s\n", link.Emoji, link.Name, link.URL))
	}
	return builder.String()
}

// FormatMoves renders an organize plan or result.
func FormatMoves(moves []organize.Move, header string) string {
	if len(moves) == 0 {
		return "Nothing to organize."
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s (%d files):\n", header, len(moves)))
	for _, move := range moves {
		builder.WriteString(fmt.Sprintf("  %s -> %s\n", move.Source, move.Destination))
	}
	return builder.String()
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	switch {
	case bytes >= 1024*1024*1024:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(1024*1024*1024))
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
