package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lexandro/filetally-mcp/classify"
	"github.com/lexandro/filetally-mcp/ignore"
	"github.com/lexandro/filetally-mcp/index"
	"github.com/lexandro/filetally-mcp/watcher"
	"golang.org/x/time/rate"
)

// scanWorkerCount bounds the goroutines statting and sniffing files.
const scanWorkerCount = 8

// ScanResult summarizes one walk of the root directory.
type ScanResult struct {
	Files     int
	TotalSize int64
	Binary    int // files whose first bytes look binary
	Duration  time.Duration
}

// scanCandidate is a file the walk accepted, in walk order.
type scanCandidate struct {
	absolutePath string
	relativePath string
	name         string
}

// scannedFile is a worker's verdict on one candidate; nil slots were skipped.
type scannedFile struct {
	descriptor classify.FileDescriptor
	binary     bool
}

// performScan walks rootDir and returns a descriptor for every eligible file.
// Files are statted and sniffed by a bounded worker pool, but the result keeps
// walk order: category icons are taken from the first file seen.
func performScan(
	ctx context.Context,
	rootDir string,
	ignoreMatcher *ignore.Matcher,
	logger *slog.Logger,
) ([]classify.FileDescriptor, ScanResult, error) {
	start := time.Now()
	var result ScanResult

	candidates, err := walkCandidates(ctx, rootDir, ignoreMatcher)
	if err != nil {
		return nil, result, err
	}

	slots := make([]*scannedFile, len(candidates))
	jobs := make(chan int, 100)

	var wg sync.WaitGroup
	for i := 0; i < scanWorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seq := range jobs {
				if ctx.Err() != nil {
					continue
				}
				scanned, err := scanSingleFile(candidates[seq], ignoreMatcher)
				if err != nil {
					logger.Debug("skipped file", "path", candidates[seq].relativePath, "error", err)
					continue
				}
				slots[seq] = scanned
			}
		}()
	}

	for seq := range candidates {
		jobs <- seq
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, result, err
	}

	files := make([]classify.FileDescriptor, 0, len(candidates))
	for _, scanned := range slots {
		if scanned == nil {
			continue
		}
		files = append(files, scanned.descriptor)
		result.Files++
		result.TotalSize += int64(scanned.descriptor.SizeBytes)
		if scanned.binary {
			result.Binary++
		}
	}
	result.Duration = time.Since(start)
	return files, result, nil
}

// walkCandidates lists the regular files under rootDir that pass the ignore rules.
func walkCandidates(ctx context.Context, rootDir string, ignoreMatcher *ignore.Matcher) ([]scanCandidate, error) {
	var candidates []scanCandidate
	err := filepath.WalkDir(rootDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != rootDir && ignoreMatcher.ShouldIgnoreDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || ignoreMatcher.ShouldIgnore(path) {
			return nil
		}
		relPath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return nil
		}
		candidates = append(candidates, scanCandidate{
			absolutePath: path,
			relativePath: filepath.ToSlash(relPath),
			name:         d.Name(),
		})
		return nil
	})
	return candidates, err
}

// scanSingleFile stats one candidate and sniffs its head for binary content.
func scanSingleFile(candidate scanCandidate, ignoreMatcher *ignore.Matcher) (*scannedFile, error) {
	info, err := os.Stat(candidate.absolutePath)
	if err != nil {
		return nil, err
	}
	if ignoreMatcher.IsFileTooLarge(info.Size()) {
		return nil, errFileTooLarge
	}

	head, err := readHeadWithRetry(candidate.absolutePath, classify.SniffSize)
	if err != nil {
		return nil, err
	}

	return &scannedFile{
		descriptor: classify.FileDescriptor{
			Name:      candidate.name,
			Path:      candidate.relativePath,
			SizeBytes: uint64(info.Size()),
		},
		binary: classify.IsBinaryContent(head),
	}, nil
}

var errFileTooLarge = errors.New("file too large")

// readHeadWithRetry reads up to limit bytes, retrying once after a short delay
// if the file is locked (common on Windows when a download or editor holds it).
func readHeadWithRetry(path string, limit int) ([]byte, error) {
	head, err := readHead(path, limit)
	if err != nil {
		time.Sleep(50 * time.Millisecond)
		return readHead(path, limit)
	}
	return head, nil
}

func readHead(path string, limit int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, limit)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

// rootScanner serializes rescans of one root into a session.
type rootScanner struct {
	mu            sync.Mutex
	rootDir       string
	session       *index.Session
	ignoreMatcher *ignore.Matcher
	logger        *slog.Logger
}

// Rescan replaces the scanned files of the session with a fresh walk.
func (s *rootScanner) Rescan(ctx context.Context) (ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, result, err := performScan(ctx, s.rootDir, s.ignoreMatcher, s.logger)
	if err != nil {
		return result, err
	}
	if _, err := s.session.ReplaceScanned(files); err != nil {
		return result, err
	}
	s.logger.Debug("rescan complete",
		"files", result.Files,
		"totalSize", result.TotalSize,
		"binary", result.Binary,
		"duration", result.Duration,
	)
	return result, nil
}

// handleWatcherEvents rescans the root after every debounced batch, reloading
// ignore rules first when an ignore file changed. limiter spaces rescans out;
// batches queued while it waits are folded into the next rescan.
func handleWatcherEvents(
	ctx context.Context,
	batches <-chan []watcher.Event,
	scanner *rootScanner,
	limiter *rate.Limiter,
	logger *slog.Logger,
) {
	for batch := range batches {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		batch = append(batch, drainBatches(batches)...)

		for _, event := range batch {
			if ignore.IsIgnoreFile(event.Path) {
				scanner.ignoreMatcher.Reload()
				logger.Info("reloaded ignore rules", "trigger", filepath.Base(event.Path))
				break
			}
		}

		result, err := scanner.Rescan(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("rescan after file change failed", "error", err)
			continue
		}
		logger.Info("rescanned after file change", "events", len(batch), "files", result.Files)
	}
}

// drainBatches returns the batches already queued without blocking.
func drainBatches(batches <-chan []watcher.Event) []watcher.Event {
	var events []watcher.Event
	for {
		select {
		case batch, ok := <-batches:
			if !ok {
				return events
			}
			events = append(events, batch...)
		default:
			return events
		}
	}
}
