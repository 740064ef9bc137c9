package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dustin/go-humanize"
	fdup "github.com/rbartlensky/file-duplicates"
)

// config captures the runtime configuration parsed from the command line.
type config struct {
	roots      []string
	lowerLimit uint64
	database   string
	workers    int
	mode       fdup.RemovalMode // zero means report only
}

func parseFlags(args []string) (config, error) {
	fs := flag.NewFlagSet("fdup", flag.ContinueOnError)

	var (
		lowerLimit  string
		database    string
		workers     int
		interactive bool
		sameName    bool
		paranoid    bool
	)
	fs.StringVar(&lowerLimit, "lower-limit", "1 KiB",
		"files smaller than this size are ignored (accepts units, e.g. '1 MiB')")
	fs.StringVar(&lowerLimit, "l", "1 KiB", "shorthand for -lower-limit")
	fs.StringVar(&database, "database", "",
		"path to the hash database (default $HOME/.config/fdup.db)")
	fs.IntVar(&workers, "workers", 0,
		"number of hashing workers (default: number of CPUs)")
	fs.BoolVar(&interactive, "remove", false,
		"interactively remove duplicate files")
	fs.BoolVar(&interactive, "r", false, "shorthand for -remove")
	fs.BoolVar(&sameName, "remove-with-same-filename", false,
		"remove duplicate files that have the same filename")
	fs.BoolVar(&paranoid, "remove-paranoid", false,
		"remove duplicate files, but re-compare their content first")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := config{workers: workers}

	limit, err := humanize.ParseBytes(lowerLimit)
	if err != nil {
		return config{}, fmt.Errorf("invalid -lower-limit %q: %w", lowerLimit, err)
	}
	cfg.lowerLimit = limit

	cfg.database = database
	if cfg.database == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config{}, errors.New("-database is required if $HOME is not set")
		}
		cfg.database = filepath.Join(home, ".config", "fdup.db")
	}

	modes := 0
	if interactive {
		cfg.mode = fdup.RemovalInteractive
		modes++
	}
	if sameName {
		cfg.mode = fdup.RemovalSameName
		modes++
	}
	if paranoid {
		cfg.mode = fdup.RemovalParanoid
		modes++
	}
	if modes > 1 {
		return config{}, errors.New("removal modes are mutually exclusive")
	}

	cfg.roots = fs.Args()
	if len(cfg.roots) == 0 {
		return config{}, errors.New("at least one PATH argument is required")
	}

	return cfg, nil
}

func printReport(stats *fdup.Stats) {
	if len(stats.Groups) > 0 {
		fmt.Println("The following duplicate files have been found:")
	}
	for _, group := range stats.Groups {
		fmt.Printf("Hash: %s\n", group.Hash)
		for _, m := range group.Members {
			fmt.Printf("-> size: %s, file: '%s'\n", humanize.IBytes(uint64(m.Size)), m.Path)
		}
	}
	fmt.Printf("Processed %d files (total of %s)\n",
		stats.FilesProcessed, humanize.IBytes(uint64(stats.BytesProcessed)))
	fmt.Printf("Duplicate files take up %s of space on disk.\n",
		humanize.IBytes(uint64(stats.DuplicateBytes())))
}

func run() error {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	finder, err := fdup.New(cfg.roots,
		fdup.WithLogger(logger),
		fdup.WithMinSize(int64(cfg.lowerLimit)),
		fdup.WithWorkers(cfg.workers),
		fdup.WithStore(cfg.database),
	)
	if err != nil {
		return err
	}
	defer finder.Close()

	stats, err := finder.Find(ctx)
	if err != nil {
		return err
	}
	printReport(stats)

	if cfg.mode == 0 {
		return nil
	}

	outcome, err := finder.Remove(ctx, stats.Groups, cfg.mode)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d files, reclaimed %s (%d groups rejected, %d skipped)\n",
		outcome.FilesRemoved, humanize.IBytes(uint64(outcome.BytesReclaimed)),
		outcome.GroupsRejected, outcome.GroupsSkipped)
	return nil
}

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "fdup:", err)
		os.Exit(1)
	}
}
