package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/yeabuddy/core/logger"
)

const (
	readyTimeout    = 30 * time.Second
	previewMaxFiles = 6
)

type migrationFile struct {
	version uint64
	name    string
}

// migrationSet is the sorted list of *.up.sql files found on disk.
type migrationSet []migrationFile

func loadMigrationSet(dir string) migrationSet {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var set migrationSet
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		v, _ := strconv.ParseUint(prefix, 10, 64)
		set = append(set, migrationFile{version: v, name: name})
	}
	slices.SortFunc(set, func(a, b migrationFile) int { return strings.Compare(a.name, b.name) })
	return set
}

// between keeps files with from < version <= to.
func (s migrationSet) between(from, to uint64) migrationSet {
	var out migrationSet
	for _, f := range s {
		if f.version > from && f.version <= to {
			out = append(out, f)
		}
	}
	return out
}

func (s migrationSet) names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.name
	}
	return out
}

func (s migrationSet) previewAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.Int("files_total", len(s))}
	preview, truncated := logger.SummarizeStrings(s.names(), previewMaxFiles)
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

func migLog(ctx context.Context, level slog.Level, event string, attrs ...slog.Attr) {
	logger.LogEvent(ctx, logger.MIG, level, event, attrs...)
}

// RunMigrations brings the workout history schema up to date. The directory
// defaults to ./migrations relative to the working directory.
func RunMigrations(ctx context.Context, cfg Config) error {
	dsn := cfg.DSN()
	if err := WaitForPostgres(ctx, dsn, readyTimeout); err != nil {
		migLog(ctx, slog.LevelError, "db.not_ready", slog.String("err", err.Error()))
		return fmt.Errorf("database not ready: %w", err)
	}

	dir, err := migrationsDir(cfg.MigrationsDir)
	if err != nil {
		return err
	}
	files := loadMigrationSet(dir)
	migLog(ctx, slog.LevelDebug, "migrate.resolve", append([]slog.Attr{slog.String("path", dir)}, files.previewAttrs()...)...)

	m, err := migrate.New("file://"+filepath.ToSlash(dir), dsn)
	if err != nil {
		migLog(ctx, slog.LevelError, "migrate.init", slog.String("err", err.Error()))
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		if err := errors.Join(m.Close()); err != nil {
			migLog(ctx, slog.LevelWarn, "migrate.close", slog.String("err", err.Error()))
		}
	}()

	from := currentVersion(m)
	start := time.Now()
	err = m.Up()
	took := logger.RoundMS(time.Since(start))
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		migLog(ctx, slog.LevelError, "migrate.apply",
			slog.Uint64("from_ver", from),
			slog.Duration("duration", took),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migration execution failed: %w", err)
	}

	to := currentVersion(m)
	applied := files.between(from, to)
	if len(applied) > 0 {
		migLog(ctx, slog.LevelDebug, "migrate.applied", applied.previewAttrs()...)
	}
	migLog(ctx, slog.LevelInfo, "migrate.summary",
		slog.Uint64("from_ver", from),
		slog.Uint64("to_ver", to),
		slog.Int("files", len(applied)),
		slog.Duration("duration", took),
	)
	return nil
}

// currentVersion reports 0 for a database that never ran a migration.
func currentVersion(m *migrate.Migrate) uint64 {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return uint64(v)
}

func migrationsDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "migrations"
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve migrations dir: %w", err)
	}
	return abs, nil
}
