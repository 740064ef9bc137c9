package fdup

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"path/filepath"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
)

// TestDigestFile checks that streaming a file through digestFile yields the
// same digest as hashing its content directly, and that repeating the
// operation is idempotent.
func TestDigestFile(t *testing.T) {
	memFs := afero.NewMemMapFs()

	testCases := []struct {
		name    string
		content []byte
	}{
		{name: "Normal file", content: []byte("test content")},
		{name: "Empty file", content: []byte{}},
		{name: "Larger than one buffer", content: bytes.Repeat([]byte("x"), defaultBufferSize*3+17)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join("/hash-test", tc.name)
			if err := afero.WriteFile(memFs, path, tc.content, 0o644); err != nil {
				t.Fatalf("failed to write test file: %v", err)
			}

			got, err := digestFile(memFs, path, defaultHashFunc)
			if err != nil {
				t.Fatalf("digestFile() error = %v", err)
			}

			direct := sha256.Sum256(tc.content)
			if want := hex.EncodeToString(direct[:]); got != want {
				t.Errorf("digestFile() = %s, want %s", got, want)
			}

			again, err := digestFile(memFs, path, defaultHashFunc)
			if err != nil {
				t.Fatalf("second digestFile() error = %v", err)
			}
			if again != got {
				t.Errorf("digestFile() is not idempotent: %s vs %s", got, again)
			}
		})
	}
}

// TestDigestFileCustomHash exercises a pluggable digest function, xxHash64
// here, against hashing the content directly.
func TestDigestFileCustomHash(t *testing.T) {
	memFs := afero.NewMemMapFs()
	content := []byte("custom hash content")
	path := "/hash-test/custom.txt"
	if err := afero.WriteFile(memFs, path, content, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	newHash := func() hash.Hash { return xxhash.New() }

	got, err := digestFile(memFs, path, newHash)
	if err != nil {
		t.Fatalf("digestFile() error = %v", err)
	}

	h := xxhash.New()
	h.Write(content)
	if want := hex.EncodeToString(h.Sum(nil)); got != want {
		t.Errorf("digestFile() = %s, want %s", got, want)
	}
}

func TestDigestFileMissing(t *testing.T) {
	memFs := afero.NewMemMapFs()
	if _, err := digestFile(memFs, "/nope", defaultHashFunc); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSameContent(t *testing.T) {
	memFs := afero.NewMemMapFs()

	big := bytes.Repeat([]byte("y"), defaultBufferSize*2+5)
	bigDiff := append(bytes.Repeat([]byte("y"), defaultBufferSize*2+4), 'z')

	writeTree(t, memFs, "/cmp", map[string][]byte{
		"a":        []byte("a"),
		"a2":       []byte("a"),
		"a3":       []byte("b"),
		"big":      big,
		"big2":     append([]byte(nil), big...),
		"big-diff": bigDiff,
		"short":    []byte("y"),
	})

	testCases := []struct {
		name  string
		path1 string
		path2 string
		want  bool
	}{
		{"identical", "/cmp/a", "/cmp/a2", true},
		{"different content", "/cmp/a", "/cmp/a3", false},
		{"same file", "/cmp/a3", "/cmp/a3", true},
		{"identical beyond one buffer", "/cmp/big", "/cmp/big2", true},
		{"differs in last byte", "/cmp/big", "/cmp/big-diff", false},
		{"prefix of the other", "/cmp/short", "/cmp/big", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			same, err := sameContent(memFs, tc.path1, tc.path2)
			if err != nil {
				t.Fatalf("sameContent() error = %v", err)
			}
			if same != tc.want {
				t.Errorf("sameContent(%s, %s) = %v, want %v", tc.path1, tc.path2, same, tc.want)
			}
		})
	}
}

func TestSameContentMissingFile(t *testing.T) {
	memFs := afero.NewMemMapFs()
	writeTree(t, memFs, "/cmp", map[string][]byte{"a": []byte("a")})

	if _, err := sameContent(memFs, "/cmp/a", "/cmp/missing"); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
