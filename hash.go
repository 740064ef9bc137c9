package fdup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/spf13/afero"
)

// Default size for the buffer used when hashing and comparing files
const defaultBufferSize = 32 * 1024 // 32KB

// bufferPool is a pool of byte slices used for file I/O during hashing
var bufferPool = sync.Pool{
	New: func() interface{} {
		buffer := make([]byte, defaultBufferSize)
		return &buffer
	},
}

// HashFunc defines a function that creates a new hash.Hash instance.
type HashFunc func() hash.Hash

// defaultHashFunc returns the default digest function (SHA-256). Duplicate
// decisions ultimately delete files, so the default has to be
// collision-resistant; faster non-cryptographic hashes can still be plugged
// in through WithHashFunc.
func defaultHashFunc() hash.Hash {
	return sha256.New()
}

// hashReader hashes the content from a reader using the provided hash,
// reading through a pooled buffer so peak memory stays bounded regardless of
// the input size.
func hashReader(content io.Reader, h hash.Hash) error {
	bufPtr := bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer bufferPool.Put(bufPtr)

	_, err := io.CopyBuffer(h, content, buffer)
	if err != nil {
		return fmt.Errorf("failed to copy content: %w", err)
	}
	return nil
}

// digestFile streams the file at path through a fresh hash instance and
// returns the hex-encoded digest.
func digestFile(fsys afero.Fs, path string, newHash HashFunc) (string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	h := newHash()
	if err := hashReader(file, h); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
