package index

import (
	"fmt"
	"testing"

	"github.com/lexandro/filetally-mcp/classify"
)

func newTestFile(relPath string, size uint64) classify.FileDescriptor {
	name := relPath
	for i := len(relPath) - 1; i >= 0; i-- {
		if relPath[i] == '/' {
			name = relPath[i+1:]
			break
		}
	}
	return classify.FileDescriptor{Name: name, Path: relPath, SizeBytes: size}
}

func Test_FileSet_AddKeepsOrderAndDuplicates(t *testing.T) {
	fs := NewFileSet()
	fs.Add(newTestFile("b.txt", 1), newTestFile("a.png", 2))
	fs.Add(newTestFile("b.txt", 1))

	snapshot := fs.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 files, got %d", len(snapshot))
	}
	expected := []string{"b.txt", "a.png", "b.txt"}
	for i, name := range expected {
		if snapshot[i].Name != name {
			t.Errorf("file[%d]: expected %s, got %s", i, name, snapshot[i].Name)
		}
	}
}

func Test_FileSet_SnapshotIsCopy(t *testing.T) {
	fs := NewFileSet()
	fs.Add(newTestFile("a.txt", 1))

	snapshot := fs.Snapshot()
	snapshot[0].Name = "changed.txt"

	if fs.Snapshot()[0].Name != "a.txt" {
		t.Error("expected snapshot mutation to leave the set untouched")
	}
}

func Test_FileSet_Reset(t *testing.T) {
	fs := NewFileSet()
	fs.Add(newTestFile("a.txt", 1))
	before := fs.Generation()
	fs.Reset()

	if fs.Count() != 0 {
		t.Errorf("expected 0 after reset, got %d", fs.Count())
	}
	if fs.Generation() <= before {
		t.Error("expected generation to advance on reset")
	}
}

func Test_FileSet_Replace(t *testing.T) {
	fs := NewFileSet()
	fs.Add(newTestFile("old.txt", 1))

	replacement := []classify.FileDescriptor{newTestFile("new.txt", 5)}
	fs.Replace(replacement)
	replacement[0].Name = "mutated.txt"

	snapshot := fs.Snapshot()
	if len(snapshot) != 1 || snapshot[0].Name != "new.txt" {
		t.Errorf("expected only new.txt, got %+v", snapshot)
	}
	if fs.TotalSizeBytes() != 5 {
		t.Errorf("expected 5 bytes, got %d", fs.TotalSizeBytes())
	}
}

func Test_FileSet_AddNothingKeepsGeneration(t *testing.T) {
	fs := NewFileSet()
	before := fs.Generation()
	fs.Add()
	if fs.Generation() != before {
		t.Error("expected empty add to be a no-op")
	}
}

func Test_FileSet_SearchByGlob(t *testing.T) {
	fs := NewFileSet()
	fs.Add(
		newTestFile("photos/2024/beach.jpg", 100),
		newTestFile("photos/notes.txt", 10),
		newTestFile("music/song.mp3", 300),
		classify.FileDescriptor{Name: "dropped.jpg"},
	)

	tests := []struct {
		pattern  string
		expected int
	}{
		{"**/*.jpg", 2},
		{"photos/**", 2},
		{"music/*.mp3", 1},
		{"*.jpg", 1},
		{"**/*.png", 0},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			results, err := fs.SearchByGlob(tt.pattern, 50)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.expected {
				t.Errorf("expected %d results, got %d", tt.expected, len(results))
			}
		})
	}
}

func Test_FileSet_SearchByGlob_InvalidPattern(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.SearchByGlob("[invalid", 50); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func Test_FileSet_SearchByGlob_MaxResults(t *testing.T) {
	fs := NewFileSet()
	for i := 0; i < 20; i++ {
		fs.Add(newTestFile(fmt.Sprintf("file%d.txt", i), 1))
	}

	results, err := fs.SearchByGlob("*.txt", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("expected 5 results, got %d", len(results))
	}
	if results[0].Name != "file0.txt" {
		t.Errorf("expected insertion order, got %s first", results[0].Name)
	}
}
