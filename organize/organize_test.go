package organize

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, relPaths ...string) {
	t.Helper()
	for _, rel := range relPaths {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(rel), 0644))
	}
}

func entriesFor(t *testing.T, relPaths ...string) []classify.Entry {
	t.Helper()
	files := make([]classify.FileDescriptor, 0, len(relPaths))
	for _, rel := range relPaths {
		files = append(files, classify.FileDescriptor{Name: filepath.Base(rel), Path: rel})
	}
	report, err := classify.Classify(files)
	require.NoError(t, err)
	return report.ByName
}

func Test_Plan_GroupsByCategory(t *testing.T) {
	root := t.TempDir()
	moves, err := Plan(root, entriesFor(t, "b.txt", "a.png", "music/c.mp3"), nil)
	require.NoError(t, err)

	assert.Equal(t, []Move{
		{Source: "a.png", Destination: "images/a.png"},
		{Source: "b.txt", Destination: "documents/b.txt"},
		{Source: "music/c.mp3", Destination: "audio/c.mp3"},
	}, moves)
}

func Test_Plan_SkipsAlreadyOrganized(t *testing.T) {
	moves, err := Plan(t.TempDir(), entriesFor(t, "images/a.png", "images/b.txt"), nil)
	require.NoError(t, err)
	assert.Equal(t, []Move{{Source: "images/b.txt", Destination: "documents/b.txt"}}, moves)
}

func Test_Plan_CollisionSuffixes(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "images/photo.jpg")

	moves, err := Plan(root, entriesFor(t, "a/photo.jpg", "b/photo.jpg"), nil)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, "images/photo_1.jpg", moves[0].Destination)
	assert.Equal(t, "images/photo_2.jpg", moves[1].Destination)
}

func Test_Plan_CategoryFilter(t *testing.T) {
	moves, err := Plan(t.TempDir(), entriesFor(t, "a.png", "b.txt"), []classify.Category{classify.CategoryDocuments})
	require.NoError(t, err)
	assert.Equal(t, []Move{{Source: "b.txt", Destination: "documents/b.txt"}}, moves)
}

func Test_Plan_MissingPath(t *testing.T) {
	_, err := Plan(t.TempDir(), []classify.Entry{{Name: "dropped.txt", Category: classify.CategoryDocuments}}, nil)
	assert.ErrorIs(t, err, ErrMissingPath)
}

func Test_Apply_DryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.png")
	moves, err := Plan(root, entriesFor(t, "a.png"), nil)
	require.NoError(t, err)

	journal, err := Apply(context.Background(), root, moves, Options{DryRun: true})
	require.NoError(t, err)
	assert.Len(t, journal.Moves, 1)
	assert.FileExists(t, filepath.Join(root, "a.png"))
	assert.NoDirExists(t, filepath.Join(root, "images"))
	assert.NoFileExists(t, filepath.Join(root, JournalFileName))
}

func Test_Apply_MoveAndUndo(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.png", "docs/b.txt")
	moves, err := Plan(root, entriesFor(t, "a.png", "docs/b.txt"), nil)
	require.NoError(t, err)

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	journal, err := Apply(context.Background(), root, moves, Options{Now: func() time.Time { return created }})
	require.NoError(t, err)
	assert.Len(t, journal.Moves, 2)

	assert.FileExists(t, filepath.Join(root, "images", "a.png"))
	assert.FileExists(t, filepath.Join(root, "documents", "b.txt"))
	assert.NoFileExists(t, filepath.Join(root, "a.png"))

	stored, err := ReadJournal(root)
	require.NoError(t, err)
	assert.Equal(t, moves, stored.Moves)
	assert.True(t, created.Equal(stored.CreatedAt))

	restored, err := Undo(root)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)
	assert.FileExists(t, filepath.Join(root, "a.png"))
	assert.FileExists(t, filepath.Join(root, "docs", "b.txt"))
	assert.NoDirExists(t, filepath.Join(root, "images"))
	assert.NoFileExists(t, filepath.Join(root, JournalFileName))
}

func Test_Apply_CopyKeepsSourcesAndSkipsJournal(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "song.mp3")
	moves, err := Plan(root, entriesFor(t, "song.mp3"), nil)
	require.NoError(t, err)

	_, err = Apply(context.Background(), root, moves, Options{Copy: true})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "song.mp3"))
	data, err := os.ReadFile(filepath.Join(root, "audio", "song.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", string(data))
	assert.NoFileExists(t, filepath.Join(root, JournalFileName))
}

func Test_Apply_StopsOnError(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.png")
	moves := []Move{
		{Source: "a.png", Destination: "images/a.png"},
		{Source: "gone.txt", Destination: "documents/gone.txt"},
	}

	journal, err := Apply(context.Background(), root, moves, Options{})
	require.Error(t, err)
	assert.Len(t, journal.Moves, 1)

	stored, err := ReadJournal(root)
	require.NoError(t, err)
	assert.Len(t, stored.Moves, 1)
}

func Test_Apply_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Apply(ctx, root, []Move{{Source: "a.png", Destination: "images/a.png"}}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.FileExists(t, filepath.Join(root, "a.png"))
}

func Test_Undo_NoJournal(t *testing.T) {
	_, err := Undo(t.TempDir())
	assert.ErrorIs(t, err, ErrNoJournal)
}
