package server

import (
	"github.com/lexandro/filetally-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// Handlers bundles every tool handler the server exposes.
type Handlers struct {
	Classify *tools.ClassifyHandler
	Add      *tools.AddHandler
	Report   *tools.ReportHandler
	Files    *tools.FilesHandler
	Search   *tools.SearchHandler
	Reset    *tools.ResetHandler
	Rescan   *tools.RescanHandler
	Links    *tools.LinksHandler
	Counters *tools.CountersHandler
	Organize *tools.OrganizeHandler
	Status   *tools.StatusHandler
}

// Setup creates and configures the MCP server with all tool registrations.
func Setup(h Handlers) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "filetally-mcp",
			Version: Version,
		},
		&mcp.ServerOptions{
			Instructions: `This server classifies files by extension into categories (images, documents, spreadsheets, presentations, archives, audio, video, code, data, executables, other) and keeps a live, locale-sorted file set for a root directory.

- Use filetally_report for per-category counts and the sorted file list of the root directory
- Use filetally_classify to classify a list of names without changing the file set
- Use filetally_files (glob) and filetally_search (name words, phrases, /regex/, category) to find files
- Use filetally_organize to preview (default) or apply moving files into category folders; undo reverts the last run
- The file set updates automatically when files change (via filesystem watcher)`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "filetally_classify",
		Description: `Classify a list of file names without touching the current file set.

Returns total count, per-category tiles (icon, category, count) and the names sorted in locale order.
Extensions are matched case-insensitively; names without an extension are "other".
An empty name rejects the whole call.`,
	}, h.Classify.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "filetally_add",
		Description: "Append file names to the current file set (duplicates are kept) and return the updated report.",
	}, h.Add.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "filetally_report",
		Description: "Show the report for the current file set: totals, category tiles and the sorted file list.",
	}, h.Report.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "filetally_files",
		Description: `Find files of the current set by glob pattern, with category and icon.

Pattern examples:
  - "**/*.jpg" - all JPEG files
  - "photos/**" - everything under photos/
  - "*.pdf" - PDF files in the root only`,
	}, h.Files.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "filetally_search",
		Description: `Search file names using the in-memory full-text index.

Query formats:
  - Plain text: word-level matching (e.g., "invoice")
  - "quoted text": exact phrase over name words (e.g., "\"holiday photo\"")
  - /regex/: regular expression over name terms (e.g., "/invoic.*/")

Filtering:
  - category: restrict results to one category (may be used without a query).`,
	}, h.Search.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "filetally_reset",
		Description: "Clear the current file set. The report becomes empty until files are added or the root is rescanned.",
	}, h.Reset.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "filetally_rescan",
		Description: "Replace the file set with a fresh scan of the root directory.",
	}, h.Rescan.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "filetally_links",
		Description: "List the sites or games link group. Passing open=<name> returns that link and counts one opening of its group.",
	}, h.Links.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "filetally_counters",
		Description: "Show (default) or reset the persisted counters of opened sites and games.",
	}, h.Counters.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "filetally_organize",
		Description: `Sort scanned files into one folder per category (<root>/<category>/<name>).

Actions:
  - plan (default): list the moves without touching anything
  - apply: perform the moves (copy=true copies instead; copies are not undoable)
  - undo: move the files of the last apply back`,
	}, h.Organize.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "filetally_status",
		Description: "Show server status: root, uptime, file count, size, categories, counters and memory usage.",
	}, h.Status.Handle)

	return mcpServer
}
