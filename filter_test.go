package fdup

import (
	"os"
	"testing"
	"time"
)

type fakeInfo struct {
	mode os.FileMode
	size int64
}

func (f fakeInfo) Name() string       { return "fake" }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() os.FileMode  { return f.mode }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return f.mode.IsDir() }
func (f fakeInfo) Sys() interface{}   { return nil }

func TestFilterAcceptType(t *testing.T) {
	testCases := []struct {
		name   string
		filter entryFilter
		mode   os.FileMode
		want   bool
	}{
		{"regular file", entryFilter{}, 0, true},
		{"symlink, default policy", entryFilter{}, os.ModeSymlink, false},
		{"symlink, opted in", entryFilter{symlinks: true}, os.ModeSymlink, true},
		{"named pipe", entryFilter{}, os.ModeNamedPipe, false},
		{"socket", entryFilter{}, os.ModeSocket, false},
		{"device", entryFilter{}, os.ModeDevice, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.filter.acceptType(fakeInfo{mode: tc.mode})
			if got != tc.want {
				t.Errorf("acceptType(%v) = %v, want %v", tc.mode, got, tc.want)
			}
		})
	}
}

func TestFilterAcceptSize(t *testing.T) {
	filter := entryFilter{minSize: 5}

	testCases := []struct {
		size int64
		want bool
	}{
		{0, false},
		{4, false},
		{5, true},
		{6, true},
	}

	for _, tc := range testCases {
		if got := filter.acceptSize(tc.size); got != tc.want {
			t.Errorf("acceptSize(%d) = %v, want %v", tc.size, got, tc.want)
		}
	}
}
