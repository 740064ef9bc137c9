package fdup

import (
	"io"
	"log/slog"

	"github.com/spf13/afero"
)

// WithFs sets a custom filesystem for the finder.
// This is primarily useful for testing with in-memory filesystems.
//
// Example:
//
//	finder, err := fdup.New(roots, fdup.WithFs(afero.NewMemMapFs()))
func WithFs(fsys afero.Fs) Option {
	return func(f *Finder) {
		f.fs = fsys
	}
}

// WithMinSize sets the minimum file size, in bytes. Files strictly smaller
// than the limit are never hashed and never appear in a duplicate group.
// The default is 0 (every regular file is eligible).
func WithMinSize(bytes int64) Option {
	return func(f *Finder) {
		f.filter.minSize = bytes
	}
}

// WithWorkers sets the number of hashing workers. The default is the number
// of available hardware threads; non-positive values keep the default.
func WithWorkers(workers int) Option {
	return func(f *Finder) {
		if workers > 0 {
			f.workers = workers
		}
	}
}

// WithHashFunc sets a custom digest function. The default is SHA-256.
//
// Note: changing the digest function invalidates existing hash database
// entries only implicitly (old digests never match new ones), so switching
// functions on a shared database mixes digest families in the same table.
// Use a fresh database per digest function.
func WithHashFunc(hashFunc HashFunc) Option {
	return func(f *Finder) {
		f.hashFunc = hashFunc
	}
}

// WithSymlinks makes symlinks to regular files eligible scan entries; the
// link target's content is hashed. The default is to skip symlinks entirely
// so a file reachable both directly and through a link is counted once.
// Symlinked directories are never followed either way.
func WithSymlinks(follow bool) Option {
	return func(f *Finder) {
		f.filter.symlinks = follow
	}
}

// WithStore attaches a persistent hash database at the given path, creating
// it if needed. If the database cannot be opened (unwritable path, corrupt
// file) the finder logs a warning and degrades to hashing every file; the
// cache is an optimization, never a correctness requirement.
func WithStore(path string) Option {
	return func(f *Finder) {
		db, err := OpenHashDB(path)
		if err != nil {
			f.logger.Warn("hash database unavailable, continuing without cache",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return
		}
		f.db = db
	}
}

// WithDB attaches an already-open hash database. The caller keeps ownership;
// Close still closes it, matching WithStore.
func WithDB(db *HashDB) Option {
	return func(f *Finder) {
		f.db = db
	}
}

// WithLogger sets the logger used for per-file warnings and progress
// events. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Finder) {
		f.logger = logger
	}
}

// WithPrompt sets the reader and writer used by interactive removal. The
// defaults are os.Stdin and os.Stdout; tests inject buffers here.
func WithPrompt(in io.Reader, out io.Writer) Option {
	return func(f *Finder) {
		f.promptIn = in
		f.promptOut = out
	}
}
