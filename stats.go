package fdup

import "sync/atomic"

// runCounters tracks scan progress with atomic counters so walker and
// collector goroutines can update them without a lock.
type runCounters struct {
	processed atomic.Int64 // eligible files routed through cache or pool
	bytes     atomic.Int64 // total size of processed files
	filtered  atomic.Int64 // entries excluded by type, symlink policy or size
	failed    atomic.Int64 // per-file errors (stat, read, hash)
	hits      atomic.Int64 // valid cache entries reused
	misses    atomic.Int64 // files that had to be hashed
}

// Stats summarizes a completed Find run.
type Stats struct {
	// FilesProcessed counts the eligible files that produced a digest
	// (cached or freshly computed).
	FilesProcessed int64
	// BytesProcessed is the total size of those files.
	BytesProcessed int64
	// FilesFiltered counts entries excluded by the filter before hashing.
	FilesFiltered int64
	// FilesFailed counts per-file errors; such files never reach a group.
	FilesFailed int64
	// CacheHits and CacheMisses describe how much hashing the database saved.
	CacheHits   int64
	CacheMisses int64

	// Groups holds every duplicate group found, deterministic for a fixed
	// tree.
	Groups []Group
}

func (c *runCounters) snapshot() *Stats {
	return &Stats{
		FilesProcessed: c.processed.Load(),
		BytesProcessed: c.bytes.Load(),
		FilesFiltered:  c.filtered.Load(),
		FilesFailed:    c.failed.Load(),
		CacheHits:      c.hits.Load(),
		CacheMisses:    c.misses.Load(),
	}
}

// DuplicateBytes reports the disk space occupied by redundant copies: the
// space that removing all but one member of every clean group would reclaim.
func (s *Stats) DuplicateBytes() int64 {
	var total int64
	for _, group := range s.Groups {
		if group.SizeMismatch {
			continue
		}
		total += int64(len(group.Members)-1) * group.Size
	}
	return total
}
