package main

import (
	"context"
	"log/slog"
	"time"
)

// SyncResult holds the outcome of a single sync verification run.
type SyncResult struct {
	MissingFiles  int // files on disk but not in the set
	StaleFiles    int // files in the set but not on disk
	ModifiedFiles int // files whose size differs
	Duration      time.Duration
}

// Drift reports whether disk and file set disagree.
func (r SyncResult) Drift() int {
	return r.MissingFiles + r.StaleFiles + r.ModifiedFiles
}

// runPeriodicSync verifies the file set against disk at the given interval and
// rescans on drift. It runs until ctx is cancelled.
func runPeriodicSync(ctx context.Context, intervalSeconds int, scanner *rootScanner, logger *slog.Logger) {
	interval := time.Duration(intervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("periodic sync started", "intervalSeconds", intervalSeconds)

	for {
		select {
		case <-ctx.Done():
			logger.Info("periodic sync stopped")
			return
		case <-ticker.C:
			result := performSyncVerification(scanner)
			if result.Drift() == 0 {
				logger.Debug("sync verification complete, file set is in sync", "duration", result.Duration)
				continue
			}
			logger.Info("sync verification found drift",
				"missing", result.MissingFiles,
				"stale", result.StaleFiles,
				"modified", result.ModifiedFiles,
				"duration", result.Duration,
			)
			if _, err := scanner.Rescan(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("rescan after sync drift failed", "error", err)
			}
		}
	}
}

// performSyncVerification compares the eligible files on disk with the scanned
// part of the file set. Client-added names have no path and are not compared.
func performSyncVerification(scanner *rootScanner) SyncResult {
	start := time.Now()
	var result SyncResult

	// Step 1: files a scan would keep, keyed by relative path
	candidates, _ := walkCandidates(context.Background(), scanner.rootDir, scanner.ignoreMatcher)
	diskSizes := make(map[string]uint64, len(candidates))
	for _, candidate := range candidates {
		scanned, err := scanSingleFile(candidate, scanner.ignoreMatcher)
		if err != nil {
			continue
		}
		diskSizes[candidate.relativePath] = scanned.descriptor.SizeBytes
	}

	// Step 2: scanned files in the set
	setSizes := make(map[string]uint64)
	for _, f := range scanner.session.Files().Snapshot() {
		if f.Path != "" {
			setSizes[f.Path] = f.SizeBytes
		}
	}

	// Step 3: compare both ways
	for relPath, diskSize := range diskSizes {
		size, exists := setSizes[relPath]
		switch {
		case !exists:
			result.MissingFiles++
		case diskSize != size:
			result.ModifiedFiles++
		}
	}
	for relPath := range setSizes {
		if _, exists := diskSizes[relPath]; !exists {
			result.StaleFiles++
		}
	}

	result.Duration = time.Since(start)
	return result
}
