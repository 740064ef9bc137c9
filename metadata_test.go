package fdup

import (
	"testing"

	"github.com/spf13/afero"
)

func TestStatRecord(t *testing.T) {
	memFs := afero.NewMemMapFs()
	writeTree(t, memFs, "/data", map[string][]byte{"a": []byte("hello")})

	record, err := statRecord(memFs, "/data/a")
	if err != nil {
		t.Fatalf("statRecord failed: %v", err)
	}
	if record.Path != "/data/a" || record.Size != 5 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.ModTime.IsZero() {
		t.Fatal("expected a modification time")
	}
}

func TestStatRecordMissing(t *testing.T) {
	memFs := afero.NewMemMapFs()

	_, err := statRecord(memFs, "/gone")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !isNotExist(err) {
		t.Fatalf("expected a not-exist error, got %v", err)
	}
	if isPermission(err) {
		t.Fatalf("a missing file is not a permission error: %v", err)
	}
}
