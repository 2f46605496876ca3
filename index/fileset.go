package index

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lexandro/filetally-mcp/classify"
)

// FileSet is the accumulated list of files to classify.
// It is append-only until Reset or Replace; adding a name twice keeps both entries.
type FileSet struct {
	mu         sync.RWMutex
	files      []classify.FileDescriptor
	generation uint64
}

// NewFileSet creates an empty file set.
func NewFileSet() *FileSet {
	return &FileSet{files: make([]classify.FileDescriptor, 0)}
}

// Add appends files in the given order.
func (fs *FileSet) Add(files ...classify.FileDescriptor) {
	if len(files) == 0 {
		return
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.files = append(fs.files, files...)
	fs.generation++
}

// Reset empties the set.
func (fs *FileSet) Reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.files = make([]classify.FileDescriptor, 0)
	fs.generation++
}

// Replace swaps the whole contents in one step, so readers never see a half-built rescan.
func (fs *FileSet) Replace(files []classify.FileDescriptor) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.files = append(make([]classify.FileDescriptor, 0, len(files)), files...)
	fs.generation++
}

// Snapshot returns a copy of the current files in insertion order.
func (fs *FileSet) Snapshot() []classify.FileDescriptor {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return append(make([]classify.FileDescriptor, 0, len(fs.files)), fs.files...)
}

// Count returns the number of files in the set.
func (fs *FileSet) Count() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.files)
}

// TotalSizeBytes returns the summed size of files with a known size.
func (fs *FileSet) TotalSizeBytes() uint64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var total uint64
	for _, f := range fs.files {
		total += f.SizeBytes
	}
	return total
}

// Generation increases on every change to the set.
func (fs *FileSet) Generation() uint64 {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.generation
}

// SearchByGlob returns files whose path (or name, when no path is known)
// matches a doublestar pattern, in insertion order.
func (fs *FileSet) SearchByGlob(pattern string, maxResults int) ([]classify.FileDescriptor, error) {
	if maxResults <= 0 {
		maxResults = 50
	}

	pattern = strings.ReplaceAll(pattern, "\\", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var results []classify.FileDescriptor
	for _, f := range fs.files {
		if len(results) >= maxResults {
			break
		}
		target := f.Path
		if target == "" {
			target = f.Name
		}
		matched, err := doublestar.Match(pattern, target)
		if err != nil || !matched {
			continue
		}
		results = append(results, f)
	}
	return results, nil
}
