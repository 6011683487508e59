// Command compactor rebuilds a project's lifecycle snapshot from its
// event log and compacts the log prefix the snapshot covers. It is an
// offline maintenance tool; correctness never depends on running it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/partflow/partflow/internal/config"
	"github.com/partflow/partflow/internal/filestore"
	"github.com/partflow/partflow/internal/memstore"
	"github.com/partflow/partflow/internal/domain/projection"
	"github.com/partflow/partflow/internal/repository"
	"github.com/partflow/partflow/internal/sqlite"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <project-id> [<project-id>...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	store, cleanup, err := openStore(cfg)
	if err != nil {
		logger.Error("failed to open event store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx := context.Background()
	failed := false
	for _, projectID := range flag.Args() {
		if err := compactProject(ctx, store, projectID); err != nil {
			logger.Error("compaction failed", "project_id", projectID, "error", err)
			failed = true
			continue
		}
		logger.Info("project compacted", "project_id", projectID)
	}
	if failed {
		os.Exit(1)
	}
}

// compactProject folds the post-snapshot tail onto the stored snapshot
// and persists the result, truncating the covered log prefix.
func compactProject(ctx context.Context, store repository.EventStore, projectID string) error {
	base, err := store.LoadSnapshot(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}
	tail, err := store.LoadByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading events: %w", err)
	}
	if len(tail) == 0 {
		// Nothing newer than the last snapshot.
		return nil
	}

	snap := projection.ExtendSnapshot(base, projectID, tail)
	if err := store.Compact(ctx, projectID, snap); err != nil {
		return fmt.Errorf("compacting: %w", err)
	}
	return nil
}

func openStore(cfg config.Config) (repository.EventStore, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		return memstore.New(), func() {}, nil
	case "file":
		return filestore.New(cfg.Store.Dir), func() {}, nil
	case "sqlite":
		if err := ensureDBDir(cfg.Store.DBPath); err != nil {
			return nil, nil, fmt.Errorf("preparing database path: %w", err)
		}
		db, err := sqlite.New(cfg.Store.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.RunMigrations(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		return sqlite.NewStore(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
