package fdup

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// Finder scans root directories for duplicate files and optionally removes
// them. It is configured once through New and safe to reuse for sequential
// runs; a single Find runs its hashing workers concurrently internally.
type Finder struct {
	roots    []string
	fs       afero.Fs
	filter   entryFilter
	workers  int
	hashFunc HashFunc
	logger   *slog.Logger
	db       *HashDB

	promptIn  io.Reader
	promptOut io.Writer
}

// Option defines a function that configures a Finder.
type Option func(*Finder)

// New creates a Finder over the given root directories. Roots are normalized
// to clean absolute paths; at least one is required. The roots themselves
// are only validated when Find runs, so a Finder can be built before the
// tree exists.
func New(roots []string, options ...Option) (*Finder, error) {
	normalized := make([]string, 0, len(roots))
	for _, root := range roots {
		if root == "" {
			continue
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %q: %w", root, err)
		}
		normalized = append(normalized, filepath.Clean(abs))
	}
	if len(normalized) == 0 {
		return nil, ErrNoRoots
	}

	finder := &Finder{
		roots:     normalized,
		fs:        afero.NewOsFs(),
		workers:   runtime.NumCPU(),
		hashFunc:  defaultHashFunc,
		logger:    slog.Default(),
		promptIn:  os.Stdin,
		promptOut: os.Stdout,
	}

	// Apply options
	for _, option := range options {
		option(finder)
	}
	if finder.workers < 1 {
		finder.workers = 1
	}

	return finder, nil
}

// Roots returns the configured root directories.
func (f *Finder) Roots() []string {
	roots := make([]string, len(f.roots))
	copy(roots, f.roots)
	return roots
}

// Close releases the hash database, if one is attached.
func (f *Finder) Close() error {
	return f.db.Close()
}
