package fdup

import "os"

// entryFilter decides, from metadata alone, whether a directory entry is
// eligible for hashing. It is a pure function of the configured size
// threshold and the file type; it never touches file content.
type entryFilter struct {
	minSize  int64
	symlinks bool // whether symlinks to regular files are eligible
}

// acceptType reports whether the entry's file type is eligible. Directories
// are handled by the walk itself; everything that is neither a regular file
// nor (optionally) a symlink is excluded here.
func (f entryFilter) acceptType(info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink != 0 {
		return f.symlinks
	}
	return info.Mode().IsRegular()
}

// acceptSize reports whether a file of the given size clears the minimum
// size threshold. Files strictly smaller than the threshold are skipped.
func (f entryFilter) acceptSize(size int64) bool {
	return size >= f.minSize
}
