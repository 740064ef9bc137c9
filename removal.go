package fdup

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// RemovalMode selects a removal strategy. Strategies are mutually exclusive
// within a run.
type RemovalMode int

const (
	// RemovalInteractive prompts for every group: all members are listed
	// with indices and sizes, the user picks which ones to remove (or skips
	// the group). The first member is the suggested keep candidate, but the
	// user decides.
	RemovalInteractive RemovalMode = iota + 1
	// RemovalSameName automatically removes members after the first whose
	// base name equals the keeper's base name.
	RemovalSameName
	// RemovalParanoid byte-compares every member against the keeper before
	// deleting anything, and rejects the whole group on any mismatch.
	RemovalParanoid
)

// String implements fmt.Stringer.
func (m RemovalMode) String() string {
	switch m {
	case RemovalInteractive:
		return "interactive"
	case RemovalSameName:
		return "same-name"
	case RemovalParanoid:
		return "paranoid"
	default:
		return fmt.Sprintf("RemovalMode(%d)", int(m))
	}
}

// RemovalOutcome summarizes what a Remove call did.
type RemovalOutcome struct {
	FilesRemoved   int
	BytesReclaimed int64
	// GroupsRejected counts groups refused because verification failed
	// (paranoid mismatch or a size-inconsistent group).
	GroupsRejected int
	// GroupsSkipped counts groups the user skipped interactively.
	GroupsSkipped int
}

// Remove applies the chosen strategy to the given groups. Per-file removal
// failures are logged and do not abort remaining work; only a cancelled
// context or a broken interactive input stream ends the call early. No
// strategy ever removes the last remaining member of a group.
func (f *Finder) Remove(ctx context.Context, groups []Group, mode RemovalMode) (RemovalOutcome, error) {
	var out RemovalOutcome

	var prompt *bufio.Reader
	if mode == RemovalInteractive {
		prompt = bufio.NewReader(f.promptIn)
	}

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if len(group.Members) < 2 {
			continue
		}
		if group.SizeMismatch {
			out.GroupsRejected++
			f.logger.Error("refusing removal for size-inconsistent group",
				slog.String("hash", group.Hash))
			continue
		}

		switch mode {
		case RemovalInteractive:
			if err := f.removeInteractive(ctx, group, prompt, &out); err != nil {
				return out, err
			}
		case RemovalSameName:
			f.removeSameName(ctx, group, &out)
		case RemovalParanoid:
			f.removeParanoid(ctx, group, &out)
		default:
			return out, fmt.Errorf("unknown removal mode %d", int(mode))
		}
	}
	return out, nil
}

func (f *Finder) removeInteractive(ctx context.Context, group Group, in *bufio.Reader, out *RemovalOutcome) error {
	fmt.Fprintf(f.promptOut, "Hash: %s\n", group.Hash)
	for i, m := range group.Members {
		fmt.Fprintf(f.promptOut, "(%d) %s (size %d)\n", i+1, m.Path, m.Size)
	}

	for {
		fmt.Fprint(f.promptOut, "Remove which? (indices, s to skip, suggested keep: 1): ")

		line, readErr := in.ReadString('\n')
		choice := strings.TrimSpace(line)
		if choice == "" {
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					// Input exhausted: keep everything in this group.
					out.GroupsSkipped++
					return nil
				}
				return fmt.Errorf("read removal choice: %w", readErr)
			}
			continue
		}
		if choice == "s" {
			out.GroupsSkipped++
			return nil
		}

		indices, err := parseSelection(choice, len(group.Members))
		if err != nil {
			fmt.Fprintf(f.promptOut, "%v\n", err)
			continue
		}
		if len(indices) == len(group.Members) {
			fmt.Fprintln(f.promptOut, "at least one member of the group must remain")
			continue
		}

		for _, idx := range indices {
			if err := ctx.Err(); err != nil {
				return err
			}
			f.removeVerified(ctx, group.Hash, group.Members[idx], out)
		}
		return nil
	}
}

// parseSelection parses a whitespace- or comma-separated list of 1-based
// member indices.
func parseSelection(choice string, members int) ([]int, error) {
	fields := strings.FieldsFunc(choice, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})

	seen := make(map[int]struct{}, len(fields))
	indices := make([]int, 0, len(fields))
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q", field)
		}
		if n < 1 || n > members {
			return nil, fmt.Errorf("index %d out of range (1-%d)", n, members)
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		indices = append(indices, n-1)
	}
	if len(indices) == 0 {
		return nil, errors.New("no indices given")
	}
	return indices, nil
}

// removeVerified deletes a member picked interactively, but only after
// confirming it still exists and still hashes to the group's digest. Time
// has passed since grouping, so stale state is never trusted.
func (f *Finder) removeVerified(ctx context.Context, hash string, m Member, out *RemovalOutcome) {
	if _, err := statRecord(f.fs, m.Path); err != nil {
		f.logger.Warn("not removing, stat failed",
			slog.String("path", m.Path),
			slog.String("error", err.Error()),
		)
		return
	}
	digest, err := digestFile(f.fs, m.Path, f.hashFunc)
	if err != nil {
		f.logger.Warn("not removing, re-hash failed",
			slog.String("path", m.Path),
			slog.String("error", err.Error()),
		)
		return
	}
	if digest != hash {
		f.logger.Error("file no longer matches its group, not removing",
			slog.String("path", m.Path),
			slog.String("group_hash", hash),
			slog.String("current_hash", digest),
		)
		return
	}
	f.removeFile(ctx, m, out)
}

func (f *Finder) removeSameName(ctx context.Context, group Group, out *RemovalOutcome) {
	keep := group.Members[0]
	for _, m := range group.Members[1:] {
		if ctx.Err() != nil {
			return
		}
		if filepath.Base(m.Path) != filepath.Base(keep.Path) {
			continue
		}
		f.logger.Info("removing duplicate",
			slog.String("path", m.Path),
			slog.String("duplicate_of", keep.Path),
		)
		f.removeFile(ctx, m, out)
	}
}

func (f *Finder) removeParanoid(ctx context.Context, group Group, out *RemovalOutcome) {
	keep := group.Members[0]

	// Verify first, delete after: a group is only touched once every member
	// is confirmed byte-identical to the keeper.
	for _, m := range group.Members[1:] {
		same, err := sameContent(f.fs, keep.Path, m.Path)
		if err != nil {
			out.GroupsRejected++
			f.logger.Warn("rejecting group, byte comparison failed",
				slog.String("hash", group.Hash),
				slog.String("path", m.Path),
				slog.String("error", err.Error()),
			)
			return
		}
		if !same {
			out.GroupsRejected++
			mismatch := &GroupMismatchError{
				Hash:   group.Hash,
				Keep:   keep.Path,
				Path:   m.Path,
				Reason: "content differs",
			}
			f.logger.Error("paranoid verification failed",
				slog.String("error", mismatch.Error()))
			return
		}
	}

	for _, m := range group.Members[1:] {
		if ctx.Err() != nil {
			return
		}
		f.logger.Info("removing duplicate",
			slog.String("path", m.Path),
			slog.String("duplicate_of", keep.Path),
		)
		f.removeFile(ctx, m, out)
	}
}

// removeFile deletes the file and drops its hash database entry. Removal is
// all-or-nothing at the filesystem level; a failure leaves the file intact
// and is reported without aborting the rest of the run.
func (f *Finder) removeFile(ctx context.Context, m Member, out *RemovalOutcome) {
	if err := f.fs.Remove(m.Path); err != nil {
		f.logger.Warn("failed to remove file",
			slog.String("path", m.Path),
			slog.String("error", err.Error()),
		)
		return
	}
	out.FilesRemoved++
	out.BytesReclaimed += m.Size

	if f.db != nil {
		if err := f.db.Remove(ctx, m.Path); err != nil {
			f.logger.Warn("failed to drop hash database entry",
				slog.String("path", m.Path),
				slog.String("error", err.Error()),
			)
		}
	}
}

// sameContent compares two files byte for byte using pooled buffers.
func sameContent(fsys afero.Fs, path1, path2 string) (bool, error) {
	file1, err := fsys.Open(path1)
	if err != nil {
		return false, err
	}
	defer file1.Close()

	file2, err := fsys.Open(path2)
	if err != nil {
		return false, err
	}
	defer file2.Close()

	buf1Ptr := bufferPool.Get().(*[]byte)
	buf2Ptr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(buf1Ptr)
	defer bufferPool.Put(buf2Ptr)
	buf1, buf2 := *buf1Ptr, *buf2Ptr

	for {
		n1, err1 := io.ReadFull(file1, buf1)
		if err1 != nil && !errors.Is(err1, io.EOF) && !errors.Is(err1, io.ErrUnexpectedEOF) {
			return false, err1
		}
		n2, err2 := io.ReadFull(file2, buf2)
		if err2 != nil && !errors.Is(err2, io.EOF) && !errors.Is(err2, io.ErrUnexpectedEOF) {
			return false, err2
		}

		if n1 != n2 || !bytes.Equal(buf1[:n1], buf2[:n2]) {
			return false, nil
		}
		if n1 < len(buf1) {
			// Both streams ended at the same offset with equal content.
			return true, nil
		}
	}
}
