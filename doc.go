/*
Package fdup finds duplicate files under one or more root directories by
comparing content digests, and can optionally remove the redundant copies.

It is built for repeated runs over large trees: digests are stored in a
persistent hash database keyed by file path, and a cached digest is reused
as long as the file's size and modification time are unchanged. Re-running
the tool after incremental changes therefore costs work proportional only
to what changed.

# Overview

A run has three phases:

 1. Scan: the tree is walked, eligible files are looked up in the hash
    database, and cache misses are hashed by a fixed pool of workers that
    read files in bounded chunks.
 2. Group: files sharing a digest are collected into duplicate groups.
 3. Removal (optional): an interactive, same-filename, or paranoid strategy
    deletes all but one member of each group.

# Basic Usage

Finding duplicates:

	finder, err := fdup.New([]string{"/data"},
	    fdup.WithMinSize(1<<20),
	    fdup.WithStore("/home/me/.config/fdup.db"),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer finder.Close()

	stats, err := finder.Find(ctx)
	if err != nil {
	    log.Fatal(err)
	}
	for _, group := range stats.Groups {
	    fmt.Printf("%s: %d copies\n", group.Hash, len(group.Members))
	}

Removing them automatically, with a byte-for-byte re-check of every member
before anything is deleted:

	outcome, err := finder.Remove(ctx, stats.Groups, fdup.RemovalParanoid)

# Hash Database

The database lives in a single SQLite file. Each entry records the path,
size, modification time and content digest of a file; an entry is only
trusted when size and modification time still match the file on disk, so a
stale digest is never reused for a changed file. If the database cannot be
opened the run degrades to hashing everything, it never fails because of
the cache.

# Configuration Options

	finder, err := fdup.New(roots,
	    fdup.WithFs(afero.NewMemMapFs()),
	    fdup.WithWorkers(8),
	    fdup.WithHashFunc(sha512.New),
	    fdup.WithSymlinks(true),
	)

The default digest is SHA-256. Symbolic links are never followed into
directories, and symlinks to regular files are skipped unless WithSymlinks
is set, so a file reachable both directly and through a link is counted
once.

# Removal Safety

No strategy ever removes the last remaining member of a group. Interactive
removal re-checks that a selected file still exists and still hashes to the
group's digest immediately before deleting it. Paranoid removal re-reads
and byte-compares every member against the keeper first and rejects the
whole group on any mismatch.
*/
package fdup
