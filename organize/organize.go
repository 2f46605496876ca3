// Package organize moves scanned files into one folder per category and can
// undo the last such run from a journal kept in the root directory.
package organize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/filetally-mcp/classify"
	"gopkg.in/yaml.v3"
)

// JournalFileName is written into the root after files were moved.
const JournalFileName = ".filetally-undo.yaml"

var (
	ErrNoJournal   = errors.New("no organize journal")
	ErrMissingPath = errors.New("entry has no path")
)

// Move relocates one file. Paths are relative to the root, with forward slashes.
type Move struct {
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

// Journal records a completed run so it can be undone.
type Journal struct {
	CreatedAt time.Time `yaml:"createdAt"`
	Copy      bool      `yaml:"copy"`
	Moves     []Move    `yaml:"moves"`
}

// Options configures Apply.
type Options struct {
	Copy   bool // copy instead of move; copies are not journaled
	DryRun bool // touch nothing, only report what would happen
	Now    func() time.Time
}

// Plan computes where every entry would go: <category>/<name>. Entries already
// in their category folder are skipped. Name collisions, on disk or within the
// plan, get a numeric suffix before the extension. An empty categories list
// selects all categories.
func Plan(rootDir string, entries []classify.Entry, categories []classify.Category) ([]Move, error) {
	wanted := make(map[classify.Category]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	taken := make(map[string]bool)
	var moves []Move
	for _, entry := range entries {
		if len(wanted) > 0 && !wanted[entry.Category] {
			continue
		}
		if entry.Path == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingPath, entry.Name)
		}

		source := path.Clean(entry.Path)
		if path.Dir(source) == string(entry.Category) {
			continue
		}

		destination := uniqueDestination(rootDir, path.Join(string(entry.Category), entry.Name), taken)
		taken[destination] = true
		moves = append(moves, Move{Source: source, Destination: destination})
	}
	return moves, nil
}

// uniqueDestination appends _1, _2 ... until the path is free on disk and in the plan.
func uniqueDestination(rootDir string, candidate string, taken map[string]bool) string {
	ext := path.Ext(candidate)
	base := strings.TrimSuffix(candidate, ext)
	for counter := 1; ; counter++ {
		if !taken[candidate] && !exists(filepath.Join(rootDir, filepath.FromSlash(candidate))) {
			return candidate
		}
		candidate = fmt.Sprintf("%s_%d%s", base, counter, ext)
	}
}

func exists(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}

// Apply performs the planned moves. After a real (non-copy, non-dry) run the
// journal is written, also when the run stopped early, so finished moves can
// still be undone.
func Apply(ctx context.Context, rootDir string, moves []Move, options Options) (Journal, error) {
	if options.Now == nil {
		options.Now = time.Now
	}
	journal := Journal{CreatedAt: options.Now(), Copy: options.Copy}
	if options.DryRun {
		journal.Moves = append(journal.Moves, moves...)
		return journal, nil
	}

	var runErr error
	for _, move := range moves {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if err := applyOne(rootDir, move, options.Copy); err != nil {
			runErr = fmt.Errorf("%s -> %s: %w", move.Source, move.Destination, err)
			break
		}
		journal.Moves = append(journal.Moves, move)
	}

	if !options.Copy && len(journal.Moves) > 0 {
		if err := writeJournal(rootDir, journal); err != nil {
			return journal, errors.Join(runErr, err)
		}
	}
	return journal, runErr
}

func applyOne(rootDir string, move Move, copyOnly bool) error {
	source := filepath.Join(rootDir, filepath.FromSlash(move.Source))
	destination := filepath.Join(rootDir, filepath.FromSlash(move.Destination))

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return err
	}
	if copyOnly {
		return copyFile(source, destination)
	}
	return moveFile(source, destination)
}

// moveFile renames, falling back to copy and remove across file systems.
func moveFile(source string, destination string) error {
	if err := os.Rename(source, destination); err == nil {
		return nil
	}
	if err := copyFile(source, destination); err != nil {
		return err
	}
	return os.Remove(source)
}

// copyFile copies content, permissions and modification time.
func copyFile(source string, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(destination, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(destination)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(destination)
		return err
	}
	return os.Chtimes(destination, info.ModTime(), info.ModTime())
}

func writeJournal(rootDir string, journal Journal) error {
	data, err := yaml.Marshal(journal)
	if err != nil {
		return fmt.Errorf("encoding journal: %w", err)
	}
	journalPath := filepath.Join(rootDir, JournalFileName)
	if err := os.WriteFile(journalPath, data, 0644); err != nil {
		return fmt.Errorf("writing journal %s: %w", journalPath, err)
	}
	return nil
}

// ReadJournal loads the journal of the last run.
func ReadJournal(rootDir string) (Journal, error) {
	data, err := os.ReadFile(filepath.Join(rootDir, JournalFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Journal{}, ErrNoJournal
		}
		return Journal{}, fmt.Errorf("reading journal: %w", err)
	}
	var journal Journal
	if err := yaml.Unmarshal(data, &journal); err != nil {
		return Journal{}, fmt.Errorf("parsing journal: %w", err)
	}
	return journal, nil
}

// Undo moves the files of the last run back and removes the journal.
// Files that vanished since are skipped; the number restored is returned.
func Undo(rootDir string) (int, error) {
	journal, err := ReadJournal(rootDir)
	if err != nil {
		return 0, err
	}

	restored := 0
	dirs := make(map[string]bool)
	for i := len(journal.Moves) - 1; i >= 0; i-- {
		move := journal.Moves[i]
		current := filepath.Join(rootDir, filepath.FromSlash(move.Destination))
		original := filepath.Join(rootDir, filepath.FromSlash(move.Source))
		if !exists(current) || exists(original) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(original), 0755); err != nil {
			return restored, err
		}
		if err := moveFile(current, original); err != nil {
			return restored, fmt.Errorf("restoring %s: %w", move.Source, err)
		}
		dirs[filepath.Dir(current)] = true
		restored++
	}

	// Category folders created by the run go away again once empty.
	for dir := range dirs {
		os.Remove(dir)
	}

	if err := os.Remove(filepath.Join(rootDir, JournalFileName)); err != nil {
		return restored, fmt.Errorf("removing journal: %w", err)
	}
	return restored, nil
}
