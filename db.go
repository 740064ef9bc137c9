package fdup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// CacheEntry is a persisted `(path, size, mtime, digest)` row of the hash
// database. The path is the identity key: rename-robustness was not a
// requirement, so a renamed file is simply re-hashed under its new path and
// the old row goes stale (harmless, it is never looked up again).
type CacheEntry struct {
	Path    string
	Size    int64
	ModTime time.Time
	Hash    string
}

// Valid reports whether the entry may stand in for hashing record's content:
// both size and modification time have to match exactly. Any mismatch means
// the file changed since the entry was written, and the entry must be
// treated as a miss.
func (e CacheEntry) Valid(record FileRecord) bool {
	return e.Size == record.Size && e.ModTime.UnixNano() == record.ModTime.UnixNano()
}

// HashDB persists content digests keyed by file path inside a SQLite
// database, shared across runs and across concurrent readers within a run.
// All writes happen on the scan's single collector goroutine, but each
// upsert is atomic per path, so stray concurrent writers are tolerated
// (last writer wins).
type HashDB struct {
	db *sql.DB
}

// OpenHashDB initializes (or reuses) a hash database at the provided path.
// Parent directories are created if needed.
func OpenHashDB(path string) (*HashDB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path cannot be empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &HashDB{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the underlying database resources.
func (d *HashDB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *HashDB) initSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS files (
        path  TEXT PRIMARY KEY,
        size  INTEGER NOT NULL,
        mtime INTEGER NOT NULL,
        hash  TEXT NOT NULL
);
`

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}

// Lookup retrieves the entry stored for path. It returns ErrCacheMiss when
// no entry exists. Safe for concurrent use.
func (d *HashDB) Lookup(ctx context.Context, path string) (CacheEntry, error) {
	var (
		size  int64
		mtime int64
		hash  string
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT size, mtime, hash FROM files WHERE path = ?`, path,
	).Scan(&size, &mtime, &hash)

	if errors.Is(err, sql.ErrNoRows) {
		return CacheEntry{}, ErrCacheMiss
	}
	if err != nil {
		return CacheEntry{}, fmt.Errorf("lookup %s: %w", path, err)
	}

	return CacheEntry{
		Path:    path,
		Size:    size,
		ModTime: time.Unix(0, mtime),
		Hash:    hash,
	}, nil
}

// Upsert inserts or updates the entry for entry.Path. The write is atomic
// per path and idempotent: the last write always reflects the most recently
// computed digest.
func (d *HashDB) Upsert(ctx context.Context, entry CacheEntry) error {
	_, err := d.db.ExecContext(ctx, `
INSERT INTO files(path, size, mtime, hash)
VALUES(?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
        size=excluded.size,
        mtime=excluded.mtime,
        hash=excluded.hash
`, entry.Path, entry.Size, entry.ModTime.UnixNano(), entry.Hash)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", entry.Path, err)
	}
	return nil
}

// Remove deletes the entry for path, if any.
func (d *HashDB) Remove(ctx context.Context, path string) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
