package fdup

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrCacheMiss is returned by HashDB.Lookup when no entry exists for a path.
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoRoots is returned by New when no root directories are provided.
	ErrNoRoots = errors.New("no root directories provided")

	// ErrNotDirectory is returned by Find when a configured root exists but
	// is not a directory.
	ErrNotDirectory = errors.New("root is not a directory")
)

// GroupMismatchError reports a duplicate group whose members turned out not
// to be identical after all: either a paranoid byte comparison found
// differing content, or members sharing a digest disagreed on size. It marks
// an internal inconsistency (hash collision, cache staleness or a concurrent
// modification), never a user error.
type GroupMismatchError struct {
	Hash   string // digest shared by the group
	Keep   string // the member every other member was compared against
	Path   string // the member that failed the comparison
	Reason string
}

// Error implements the error interface.
func (e *GroupMismatchError) Error() string {
	return fmt.Sprintf("group %s is not a true duplicate set: %q vs %q: %s",
		e.Hash, e.Keep, e.Path, e.Reason)
}
