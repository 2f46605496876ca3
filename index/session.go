package index

import (
	"fmt"
	"sync"

	"github.com/lexandro/filetally-mcp/classify"
)

// nameSearcher is the part of NameIndex a session depends on.
type nameSearcher interface {
	Rebuild(report classify.Report) error
	Search(options SearchOptions) ([]classify.Entry, error)
	DocumentCount() uint64
	Close() error
}

// Session ties the file set to its current report and name index.
// Every change re-classifies the whole set from a snapshot and rebuilds the
// name index before anything is committed, so a failed change leaves the
// set, the report and the index as they were.
type Session struct {
	mu         sync.Mutex // serializes classify -> rebuild -> commit
	files      *FileSet
	names      nameSearcher
	classifier *classify.Classifier

	reportMu sync.RWMutex
	report   classify.Report
}

// NewSession creates a session with an empty file set.
func NewSession(classifier *classify.Classifier) (*Session, error) {
	names, err := NewNameIndex()
	if err != nil {
		return nil, err
	}
	s := &Session{
		files:      NewFileSet(),
		names:      names,
		classifier: classifier,
	}
	empty, _ := classifier.Classify(nil)
	s.report = empty
	return s, nil
}

// Add appends files and re-classifies. If any new file is invalid nothing is added.
func (s *Session) Add(files ...classify.FileDescriptor) (classify.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := append(s.files.Snapshot(), files...)
	report, err := s.classifier.Classify(candidate)
	if err != nil {
		return s.Report(), err
	}
	return s.publish(report, func() { s.files.Add(files...) })
}

// Replace swaps the whole file set, as a rescan does.
func (s *Session) Replace(files []classify.FileDescriptor) (classify.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.classifier.Classify(files)
	if err != nil {
		return s.Report(), err
	}
	return s.publish(report, func() { s.files.Replace(files) })
}

// ReplaceScanned swaps the scanned part of the set (descriptors with a Path)
// and keeps client-added names, which have none, after the scanned files.
func (s *Session) ReplaceScanned(scanned []classify.FileDescriptor) (classify.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := append([]classify.FileDescriptor(nil), scanned...)
	for _, f := range s.files.Snapshot() {
		if f.Path == "" {
			files = append(files, f)
		}
	}

	report, err := s.classifier.Classify(files)
	if err != nil {
		return s.Report(), err
	}
	return s.publish(report, func() { s.files.Replace(files) })
}

// Reset clears the file set.
func (s *Session) Reset() (classify.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.classifier.Classify(nil)
	if err != nil {
		return s.Report(), err
	}
	return s.publish(report, s.files.Reset)
}

// publish rebuilds the name index for report, then runs commit and stores
// the report. On a rebuild failure nothing changes and the previous report is returned.
func (s *Session) publish(report classify.Report, commit func()) (classify.Report, error) {
	if err := s.names.Rebuild(report); err != nil {
		return s.Report(), fmt.Errorf("rebuilding name index: %w", err)
	}

	commit()
	s.reportMu.Lock()
	s.report = report
	s.reportMu.Unlock()
	return report, nil
}

// Report returns the report for the current file set.
func (s *Session) Report() classify.Report {
	s.reportMu.RLock()
	defer s.reportMu.RUnlock()
	return s.report
}

// Files exposes the underlying file set for read-only queries.
func (s *Session) Files() *FileSet {
	return s.files
}

// Classifier returns the classifier the session reports with.
func (s *Session) Classifier() *classify.Classifier {
	return s.classifier
}

// IndexedNames returns how many entries the name index currently holds.
func (s *Session) IndexedNames() uint64 {
	return s.names.DocumentCount()
}

// Search runs a name search against the current report.
func (s *Session) Search(options SearchOptions) ([]classify.Entry, error) {
	return s.names.Search(options)
}

// Close releases the name index.
func (s *Session) Close() error {
	return s.names.Close()
}
