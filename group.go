package fdup

import (
	"log/slog"
	"sort"
	"sync"
)

// Member is a single file inside a duplicate group.
type Member struct {
	Path string
	Size int64
}

// Group is a set of files sharing an identical content digest. Members keep
// the order they were discovered in; by construction a Group emitted by Find
// has at least two members. Groups are rebuilt on every run and never
// persisted.
type Group struct {
	Hash    string
	Size    int64
	Members []Member

	// SizeMismatch is set when members sharing the digest disagree on size.
	// Under a correct digest function this cannot happen, so it flags an
	// internal inconsistency; every removal strategy refuses such a group.
	SizeMismatch bool
}

// pendingMember is a Member plus the discovery sequence number the walk
// stamped on its record, so groups can be ordered by traversal rather than
// by hash completion.
type pendingMember struct {
	Member
	seq uint64
}

// grouper accumulates (digest, path, size) triples as the scan produces
// them. Cache hits are added from the walk goroutine and fresh digests from
// the collector goroutine, so adds are serialized with a mutex.
type grouper struct {
	mu      sync.Mutex
	order   []string
	buckets map[string][]pendingMember
}

func newGrouper() *grouper {
	return &grouper{buckets: make(map[string][]pendingMember)}
}

func (g *grouper) add(digest string, record FileRecord, seq uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.buckets[digest]; !ok {
		g.order = append(g.order, digest)
	}
	g.buckets[digest] = append(g.buckets[digest], pendingMember{
		Member: Member{Path: record.Path, Size: record.Size},
		seq:    seq,
	})
}

// groups emits one Group per digest with at least two members. Members are
// ordered by their discovery sequence and groups by their first member's
// path, so output is deterministic for a fixed tree regardless of which
// worker finished hashing first. Buckets whose members disagree on size are
// flagged and reported.
func (g *grouper) groups(logger *slog.Logger) []Group {
	g.mu.Lock()
	defer g.mu.Unlock()

	var groups []Group
	for _, digest := range g.order {
		pending := g.buckets[digest]
		if len(pending) < 2 {
			continue
		}
		sort.Slice(pending, func(i, j int) bool {
			return pending[i].seq < pending[j].seq
		})
		members := make([]Member, len(pending))
		for i, p := range pending {
			members[i] = p.Member
		}

		group := Group{Hash: digest, Size: members[0].Size, Members: members}
		for _, m := range members[1:] {
			if m.Size != group.Size {
				group.SizeMismatch = true
				logger.Error("group members share a digest but differ in size",
					slog.String("hash", digest),
					slog.String("path", members[0].Path),
					slog.Int64("size", group.Size),
					slog.String("other_path", m.Path),
					slog.Int64("other_size", m.Size),
				)
				break
			}
		}
		groups = append(groups, group)
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Members[0].Path < groups[j].Members[0].Path
	})
	return groups
}
