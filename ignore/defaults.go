package ignore

// IgnoreFileName is the project-local ignore file read next to .gitignore.
const IgnoreFileName = ".tallyignore"

// SkippedDirs are directory names never descended into during a scan.
var SkippedDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, "__pycache__": true, "bower_components": true,
	".idea": true, ".vscode": true, ".vs": true,
	".cache": true, ".venv": true, "venv": true,
	".Trash": true, "$RECYCLE.BIN": true, "System Volume Information": true,
}

// DefaultIgnorePatterns contains file patterns that are never tallied.
// Unlike a code indexer, media and binaries are exactly what gets counted,
// so only OS noise, editor leftovers and this tool's own artifacts are listed.
var DefaultIgnorePatterns = []string{
	// OS files
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",
	"._*",

	// Editor leftovers
	"*.swp",
	"*.swo",
	"*~",

	// Partial downloads
	"*.crdownload",
	"*.part",

	// filetally artifacts
	".filetally-undo.yaml",
	"filetally.yaml",
	"filetally.log",
	"filetally.db",
	IgnoreFileName,
}
