package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/yeabuddy/core/logger"
)

const (
	driverName     = "postgres"
	connectTimeout = 5 * time.Second
	readyPoll      = 2 * time.Second
)

func (c Config) logAttrs() []slog.Attr {
	host, port, name := c.Target()
	return []slog.Attr{
		slog.String("driver", driverName),
		slog.String("host", host),
		slog.String("port", port),
		slog.String("db", name),
	}
}

// Connect opens the pool used by the postgres history store and pings it.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	attrs := append(cfg.logAttrs(), slog.Duration("duration", logger.RoundMS(time.Since(start))))
	if err != nil {
		logger.Error(ctx, "db", "db.connect", append(attrs, slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if n := cfg.MaxConnections; n > 0 {
		db.SetMaxOpenConns(n)
		db.SetMaxIdleConns(n)
	}
	logger.Info(ctx, "db", "db.connect", append(attrs,
		slog.String("status", "ok"),
		slog.Int("pool_open", cfg.MaxConnections),
	)...)
	return db, nil
}

// WaitForPostgres pings dsn every couple of seconds until the server answers,
// ctx is done or timeout elapses.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		if lastErr = db.PingContext(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		case <-time.After(readyPoll):
		}
	}
}
