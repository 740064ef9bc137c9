package fdup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Find walks the configured roots and returns the run's statistics,
// including every duplicate group discovered. Eligible files are looked up
// in the hash database first; only misses and invalidated entries are read
// and hashed. The walk itself runs on the calling goroutine, hashing on the
// worker pool, and all database writes on a single collector goroutine.
//
// Find fails before any work if a root is missing or not a directory.
// Per-file errors are logged, counted and skipped. Cancelling ctx stops the
// walk and abandons in-flight hash jobs without writing partial results.
func (f *Finder) Find(ctx context.Context) (*Stats, error) {
	for _, root := range f.roots {
		info, err := f.fs.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
		}
	}

	var counters runCounters
	groups := newGrouper()

	pool := newHasherPool(f.fs, f.hashFunc, f.workers, f.logger)
	pool.start(ctx)

	// Single committing path: every hash result is persisted and grouped
	// here, so the database has exactly one writer per run.
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range pool.results {
			if res.err != nil {
				counters.failed.Add(1)
				continue
			}
			if f.db != nil {
				entry := CacheEntry{
					Path:    res.record.Path,
					Size:    res.record.Size,
					ModTime: res.record.ModTime,
					Hash:    res.digest,
				}
				if err := f.db.Upsert(ctx, entry); err != nil {
					f.logger.Warn("hash database update failed",
						slog.String("path", res.record.Path),
						slog.String("error", err.Error()),
					)
				}
			}
			groups.add(res.digest, res.record, res.seq)
		}
	}()

	seen := make(map[string]struct{})
	var seq uint64
	var walkErr error
	for _, root := range f.roots {
		walkErr = afero.Walk(f.fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if isNotExist(err) {
					// Vanished between enumeration and stat.
					return nil
				}
				counters.failed.Add(1)
				msg := "walk error"
				if isPermission(err) {
					msg = "permission denied"
				}
				f.logger.Warn(msg,
					slog.String("path", path),
					slog.String("error", err.Error()),
				)
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			record, ok := f.resolveEntry(path, info, &counters)
			if !ok {
				return nil
			}

			clean := filepath.Clean(path)
			if _, dup := seen[clean]; dup {
				// Overlapping roots: each file produces at most one result.
				return nil
			}
			seen[clean] = struct{}{}
			record.Path = clean

			// Discovery order survives into group members no matter which
			// worker hashes the file first.
			fileSeq := seq
			seq++

			counters.processed.Add(1)
			counters.bytes.Add(record.Size)

			if f.db != nil {
				entry, err := f.db.Lookup(ctx, clean)
				switch {
				case err == nil && entry.Valid(record):
					counters.hits.Add(1)
					groups.add(entry.Hash, record, fileSeq)
					return nil
				case err != nil && !errors.Is(err, ErrCacheMiss):
					f.logger.Warn("hash database lookup failed",
						slog.String("path", clean),
						slog.String("error", err.Error()),
					)
				}
			}

			counters.misses.Add(1)
			if !pool.submit(ctx, hashJob{record: record, seq: fileSeq}) {
				return ctx.Err()
			}
			return nil
		})
		if walkErr != nil {
			break
		}
	}

	pool.shutdown()
	<-collectorDone

	if walkErr != nil {
		return nil, walkErr
	}

	stats := counters.snapshot()
	stats.Groups = groups.groups(f.logger)
	return stats, nil
}

// resolveEntry applies the type filter, the symlink policy and the size
// threshold to a walked entry, resolving symlink targets when they are
// eligible. The second return value is false when the entry is excluded.
func (f *Finder) resolveEntry(path string, info os.FileInfo, counters *runCounters) (FileRecord, bool) {
	if !f.filter.acceptType(info) {
		counters.filtered.Add(1)
		return FileRecord{}, false
	}

	if info.Mode()&os.ModeSymlink != 0 {
		// Eligible symlink: hash the target's content. Stat follows the
		// link; a target that is not a regular file is excluded.
		target, err := f.fs.Stat(path)
		if err != nil {
			if isNotExist(err) {
				// Dangling link.
				counters.filtered.Add(1)
				return FileRecord{}, false
			}
			counters.failed.Add(1)
			f.logger.Warn("stat failed",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return FileRecord{}, false
		}
		if !target.Mode().IsRegular() {
			counters.filtered.Add(1)
			return FileRecord{}, false
		}
		info = target
	}

	if !f.filter.acceptSize(info.Size()) {
		counters.filtered.Add(1)
		return FileRecord{}, false
	}

	return FileRecord{Path: path, Size: info.Size(), ModTime: info.ModTime()}, true
}
