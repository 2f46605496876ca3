package ignore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which files a directory scan tallies.
// It combines default patterns, .gitignore, .tallyignore and custom patterns.
// Reload takes the write lock; ShouldIgnore and ShouldIgnoreDir take the read lock.
type Matcher struct {
	mu               sync.RWMutex
	rootDir          string
	gitIgnore        gitignore.GitIgnore
	tallyIgnore      gitignore.GitIgnore
	customPatterns   []string
	ownFiles         map[string]bool // relative paths, forward slashes
	maxFileSizeBytes int64
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	RootDir          string
	CustomPatterns   []string // doublestar patterns, matched against the relative path and the base name
	MaxFileSizeBytes int64    // 0 means no limit
	OwnFiles         []string // files the server itself writes (log, counters, config); ignored when under RootDir
}

// NewMatcher creates a matcher rooted at options.RootDir.
func NewMatcher(options MatcherOptions) *Matcher {
	m := &Matcher{
		rootDir:          options.RootDir,
		customPatterns:   normalizePatterns(options.CustomPatterns),
		ownFiles:         relativeOwnFiles(options.RootDir, options.OwnFiles),
		maxFileSizeBytes: options.MaxFileSizeBytes,
	}
	if m.maxFileSizeBytes < 0 {
		m.maxFileSizeBytes = 0
	}
	m.gitIgnore, m.tallyIgnore = m.loadIgnoreFiles()
	return m
}

func normalizePatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
		if p == "" || !doublestar.ValidatePattern(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// relativeOwnFiles keeps the paths that sit under rootDir, relative to it.
func relativeOwnFiles(rootDir string, paths []string) map[string]bool {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		root = rootDir
	}
	own := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		absolutePath, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, absolutePath)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		own[filepath.ToSlash(rel)] = true
	}
	return own
}

// IsIgnoreFile reports whether path is one of the ignore files the matcher reads.
func IsIgnoreFile(path string) bool {
	base := filepath.Base(path)
	return base == ".gitignore" || base == IgnoreFileName
}

// ShouldIgnore returns true if the file at absolutePath should not be tallied.
func (m *Matcher) ShouldIgnore(absolutePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	relativePath, err := filepath.Rel(m.rootDir, absolutePath)
	if err != nil {
		relativePath = absolutePath
	}
	relativePath = filepath.ToSlash(relativePath)

	if m.ownFiles[relativePath] || matchesDefaultPatterns(relativePath) {
		return true
	}

	isDir := false
	if info, err := os.Stat(absolutePath); err == nil {
		isDir = info.IsDir()
	}

	// Relative() does not require the path to exist on disk.
	for _, gi := range []gitignore.GitIgnore{m.gitIgnore, m.tallyIgnore} {
		if gi == nil {
			continue
		}
		if match := gi.Relative(relativePath, isDir); match != nil && match.Ignore() {
			return true
		}
	}

	return m.matchesCustomPatterns(relativePath)
}

// ShouldIgnoreDir returns true if a directory should be skipped entirely.
func (m *Matcher) ShouldIgnoreDir(absolutePath string) bool {
	if SkippedDirs[filepath.Base(absolutePath)] {
		return true
	}
	return m.ShouldIgnore(absolutePath)
}

// IsFileTooLarge returns true if the file exceeds the configured limit.
func (m *Matcher) IsFileTooLarge(fileSize int64) bool {
	return m.maxFileSizeBytes > 0 && fileSize > m.maxFileSizeBytes
}

func matchesDefaultPatterns(relativePath string) bool {
	baseName := strings.ToLower(filepath.Base(relativePath))
	for _, pattern := range DefaultIgnorePatterns {
		matched, err := filepath.Match(strings.ToLower(pattern), baseName)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (m *Matcher) matchesCustomPatterns(relativePath string) bool {
	baseName := filepath.Base(relativePath)
	for _, pattern := range m.customPatterns {
		if ok, _ := doublestar.Match(pattern, relativePath); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, baseName); ok {
			return true
		}
	}
	return false
}

// Reload re-reads .gitignore and .tallyignore, typically after the watcher saw them change.
func (m *Matcher) Reload() {
	gitIgnore, tallyIgnore := m.loadIgnoreFiles()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.gitIgnore = gitIgnore
	m.tallyIgnore = tallyIgnore
}

func (m *Matcher) loadIgnoreFiles() (gitignore.GitIgnore, gitignore.GitIgnore) {
	return loadIgnoreFile(filepath.Join(m.rootDir, ".gitignore"), m.rootDir),
		loadIgnoreFile(filepath.Join(m.rootDir, IgnoreFileName), m.rootDir)
}

// loadIgnoreFile parses an ignore file through an io.Reader so the handle is
// closed before returning (Windows keeps open files locked).
func loadIgnoreFile(filePath string, baseDir string) gitignore.GitIgnore {
	f, err := os.Open(filePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	return gitignore.New(f, baseDir, nil)
}
