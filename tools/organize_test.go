package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/lexandro/filetally-mcp/organize"
)

func writeTestFile(t *testing.T, root string, rel string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(rel), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestOrganizeHandler(t *testing.T) (*OrganizeHandler, string) {
	t.Helper()
	root := t.TempDir()
	writeTestFile(t, root, "a.png")
	writeTestFile(t, root, "b.txt")

	session := newTestSession(t,
		classify.FileDescriptor{Name: "a.png", Path: "a.png"},
		classify.FileDescriptor{Name: "b.txt", Path: "b.txt"},
		classify.FileDescriptor{Name: "added.pdf"}, // no location, never organized
	)
	return &OrganizeHandler{Session: session, RootDir: root, Logger: discardLogger()}, root
}

func Test_OrganizeHandler_PlanChangesNothing(t *testing.T) {
	h, root := newTestOrganizeHandler(t)

	result, _, err := h.Handle(context.Background(), nil, OrganizeArgs{})
	if err != nil || result.IsError {
		t.Fatalf("unexpected failure: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Planned (2 files):") || !strings.Contains(text, "a.png -> images/a.png") {
		t.Errorf("unexpected plan:\n%s", text)
	}
	if _, err := os.Stat(filepath.Join(root, "a.png")); err != nil {
		t.Error("expected plan to leave files in place")
	}
}

func Test_OrganizeHandler_ApplyAndUndo(t *testing.T) {
	h, root := newTestOrganizeHandler(t)
	rescans := 0
	h.DoRescan = func(ctx context.Context) (int, int64, string, error) {
		rescans++
		return 0, 0, "0s", nil
	}

	result, _, _ := h.Handle(context.Background(), nil, OrganizeArgs{Action: "apply", Categories: []string{"images"}})
	if result.IsError {
		t.Fatalf("expected success, got %q", resultText(t, result))
	}
	if _, err := os.Stat(filepath.Join(root, "images", "a.png")); err != nil {
		t.Errorf("expected a.png moved into images/: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "b.txt")); err != nil {
		t.Error("expected b.txt untouched by the category filter")
	}
	if _, err := os.Stat(filepath.Join(root, organize.JournalFileName)); err != nil {
		t.Errorf("expected journal to be written: %v", err)
	}

	result, _, _ = h.Handle(context.Background(), nil, OrganizeArgs{Action: "undo"})
	if got := resultText(t, result); got != "Undo complete: restored 1 files." {
		t.Errorf("unexpected undo text %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "a.png")); err != nil {
		t.Error("expected a.png restored")
	}
	if rescans != 2 {
		t.Errorf("expected a rescan after apply and undo, got %d", rescans)
	}
}

func Test_OrganizeHandler_UndoWithoutJournal(t *testing.T) {
	h, _ := newTestOrganizeHandler(t)
	result, _, _ := h.Handle(context.Background(), nil, OrganizeArgs{Action: "undo"})
	if !result.IsError || !strings.Contains(resultText(t, result), "Nothing to undo") {
		t.Errorf("expected nothing-to-undo error, got %+v", result)
	}
}

func Test_OrganizeHandler_Validation(t *testing.T) {
	h, _ := newTestOrganizeHandler(t)

	result, _, _ := h.Handle(context.Background(), nil, OrganizeArgs{Action: "shuffle"})
	if !result.IsError {
		t.Error("expected IsError=true for unknown action")
	}

	result, _, _ = h.Handle(context.Background(), nil, OrganizeArgs{Categories: []string{"pictures"}})
	if !result.IsError {
		t.Error("expected IsError=true for unknown category")
	}
}
