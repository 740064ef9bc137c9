package fdup

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/afero"
)

// FileRecord describes a file observed during a scan: its path, size and
// modification time. Records are re-read on every run and never persisted on
// their own; they only exist to validate and propose cache entries.
type FileRecord struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// statRecord reads the metadata of path. The returned error can be
// classified with isNotExist (the file vanished between enumeration and
// stat, treated as a skip) and isPermission (reported and counted, never
// fatal to the run).
func statRecord(fsys afero.Fs, path string) (FileRecord, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return FileRecord{}, err
	}
	return FileRecord{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// isNotExist reports whether err means the file is gone.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// isPermission reports whether err is a permission failure.
func isPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
