package fdup

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *HashDB {
	t.Helper()
	db, err := OpenHashDB(filepath.Join(t.TempDir(), "fdup.db"))
	if err != nil {
		t.Fatalf("failed to open hash database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestHashDBInsertAndRemove(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	entry := CacheEntry{
		Path:    "/home/foo",
		Size:    10,
		ModTime: time.Unix(0, 2),
		Hash:    "00ff",
	}

	if err := db.Upsert(ctx, entry); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	got, err := db.Lookup(ctx, entry.Path)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != entry {
		t.Fatalf("Lookup = %+v, want %+v", got, entry)
	}

	// An upsert for the same path must update in place.
	entry.ModTime = time.Unix(0, 3)
	entry.Hash = "11aa"
	if err := db.Upsert(ctx, entry); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}
	got, err = db.Lookup(ctx, entry.Path)
	if err != nil {
		t.Fatalf("Lookup after update failed: %v", err)
	}
	if got != entry {
		t.Fatalf("Lookup after update = %+v, want %+v", got, entry)
	}

	if err := db.Remove(ctx, entry.Path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := db.Lookup(ctx, entry.Path); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss after Remove, got %v", err)
	}
}

func TestHashDBLookupMiss(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Lookup(context.Background(), "/never/seen")
	if !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestHashDBCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dirs", "fdup.db")
	db, err := OpenHashDB(path)
	if err != nil {
		t.Fatalf("failed to open hash database: %v", err)
	}
	db.Close()
}

func TestOpenHashDBEmptyPath(t *testing.T) {
	if _, err := OpenHashDB("  "); err == nil {
		t.Fatal("expected an error for an empty database path")
	}
}

func TestHashDBCloseNil(t *testing.T) {
	var db *HashDB
	if err := db.Close(); err != nil {
		t.Fatalf("closing a nil HashDB should be a no-op, got %v", err)
	}
}

func TestCacheEntryValid(t *testing.T) {
	mtime := time.Unix(100, 500)
	entry := CacheEntry{Path: "/a", Size: 42, ModTime: mtime, Hash: "ff"}

	testCases := []struct {
		name   string
		record FileRecord
		want   bool
	}{
		{"unchanged", FileRecord{Path: "/a", Size: 42, ModTime: mtime}, true},
		{"size changed", FileRecord{Path: "/a", Size: 43, ModTime: mtime}, false},
		{"mtime changed", FileRecord{Path: "/a", Size: 42, ModTime: mtime.Add(time.Nanosecond)}, false},
		{"both changed", FileRecord{Path: "/a", Size: 1, ModTime: mtime.Add(time.Hour)}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := entry.Valid(tc.record); got != tc.want {
				t.Errorf("Valid(%+v) = %v, want %v", tc.record, got, tc.want)
			}
		})
	}
}
