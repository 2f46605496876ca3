package index

import (
	"errors"
	"testing"

	"github.com/lexandro/filetally-mcp/classify"
	"golang.org/x/text/language"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(classify.NewClassifier(language.English))
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func Test_Session_StartsEmpty(t *testing.T) {
	s := newTestSession(t)
	report := s.Report()
	if report.TotalCount != 0 || len(report.ByName) != 0 || report.ByCategory == nil {
		t.Errorf("expected empty report, got %+v", report)
	}
}

func Test_Session_AddAccumulates(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.Add(classify.FileDescriptor{Name: "b.txt"}); err != nil {
		t.Fatal(err)
	}
	report, err := s.Add(classify.FileDescriptor{Name: "a.png"}, classify.FileDescriptor{Name: "b.txt"})
	if err != nil {
		t.Fatal(err)
	}

	if report.TotalCount != 3 {
		t.Errorf("expected 3 files, got %d", report.TotalCount)
	}
	if report.ByCategory[classify.CategoryDocuments].Count != 2 {
		t.Errorf("expected the duplicate to count twice, got %d", report.ByCategory[classify.CategoryDocuments].Count)
	}
	if s.Report().TotalCount != 3 {
		t.Error("expected stored report to match the returned one")
	}
}

func Test_Session_AddRejectsInvalidBatch(t *testing.T) {
	s := newTestSession(t)
	s.Add(classify.FileDescriptor{Name: "keep.txt"})

	_, err := s.Add(classify.FileDescriptor{Name: "new.txt"}, classify.FileDescriptor{Name: ""})
	if !errors.Is(err, classify.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if s.Files().Count() != 1 {
		t.Errorf("expected rejected batch to add nothing, got %d files", s.Files().Count())
	}
}

func Test_Session_ResetAndSearch(t *testing.T) {
	s := newTestSession(t)
	s.Add(classify.FileDescriptor{Name: "holiday.jpg"})

	results, err := s.Search(SearchOptions{Query: "holiday"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	report, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalCount != 0 || s.Files().Count() != 0 {
		t.Error("expected reset to empty the session")
	}
	results, err = s.Search(SearchOptions{Query: "holiday"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results after reset, got %d", len(results))
	}
}

func Test_Session_Replace(t *testing.T) {
	s := newTestSession(t)
	s.Add(classify.FileDescriptor{Name: "old.txt"})

	report, err := s.Replace([]classify.FileDescriptor{{Name: "x.mp3", Path: "music/x.mp3"}})
	if err != nil {
		t.Fatal(err)
	}
	if report.TotalCount != 1 || report.ByName[0].Path != "music/x.mp3" {
		t.Errorf("unexpected report %+v", report)
	}
}

func Test_Session_ReplaceScannedKeepsClientNames(t *testing.T) {
	s := newTestSession(t)

	if _, err := s.Add(
		classify.FileDescriptor{Name: "old.txt", Path: "old.txt"},
		classify.FileDescriptor{Name: "manual.png"},
	); err != nil {
		t.Fatal(err)
	}

	report, err := s.ReplaceScanned([]classify.FileDescriptor{{Name: "new.mp3", Path: "music/new.mp3"}})
	if err != nil {
		t.Fatal(err)
	}

	files := s.Files().Snapshot()
	if len(files) != 2 || files[0].Path != "music/new.mp3" || files[1].Name != "manual.png" {
		t.Errorf("expected scanned file then client name, got %+v", files)
	}
	if report.ByCategory[classify.CategoryDocuments].Count != 0 {
		t.Error("expected the old scanned file to be gone")
	}
	if report.TotalCount != 2 {
		t.Errorf("expected 2 files, got %d", report.TotalCount)
	}
}

// failingNames wraps a real index and fails every rebuild once armed.
type failingNames struct {
	*NameIndex
	fail bool
}

func (f *failingNames) Rebuild(report classify.Report) error {
	if f.fail {
		return errors.New("index unavailable")
	}
	return f.NameIndex.Rebuild(report)
}

func Test_Session_FailedRebuildCommitsNothing(t *testing.T) {
	s := newTestSession(t)
	names := &failingNames{NameIndex: s.names.(*NameIndex)}
	s.names = names

	if _, err := s.Add(classify.FileDescriptor{Name: "keep.txt"}); err != nil {
		t.Fatal(err)
	}
	generation := s.Files().Generation()

	names.fail = true
	report, err := s.Add(classify.FileDescriptor{Name: "new.png"})
	if err == nil {
		t.Fatal("expected rebuild failure to be returned")
	}
	if report.TotalCount != 1 {
		t.Errorf("expected the previous report back, got %d files", report.TotalCount)
	}
	if _, err := s.Reset(); err == nil {
		t.Fatal("expected reset to fail as well")
	}

	if s.Files().Count() != 1 || s.Files().Generation() != generation {
		t.Errorf("expected file set untouched, got %d files at generation %d", s.Files().Count(), s.Files().Generation())
	}
	if s.Report().TotalCount != 1 || s.Report().ByName[0].Name != "keep.txt" {
		t.Errorf("expected stored report untouched, got %+v", s.Report())
	}
	if s.IndexedNames() != 1 {
		t.Errorf("expected name index untouched, got %d documents", s.IndexedNames())
	}
}

func Test_Session_ResetAdvancesGeneration(t *testing.T) {
	s := newTestSession(t)
	s.Add(classify.FileDescriptor{Name: "a.txt"}, classify.FileDescriptor{Name: "b.txt"})
	before := s.Files().Generation()

	if _, err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if s.Files().Generation() <= before {
		t.Error("expected reset to advance the generation")
	}
	if s.IndexedNames() != 0 {
		t.Errorf("expected empty name index, got %d documents", s.IndexedNames())
	}
}
