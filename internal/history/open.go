package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/internal/workout"
)

// Options select and configure a backend.
type Options struct {
	Backend  string
	BoltPath string
	Mongo    MongoOptions
	// DB must be set for the postgres backend.
	DB *sqlx.DB
}

// Open builds the configured store wrapped with logging.
// The "none" backend yields a nil Store and no error.
func Open(ctx context.Context, opts Options) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	var (
		st  Store
		err error
	)
	switch backend {
	case "", BackendNone:
		logger.Info(ctx, logger.ComponentHistory, "history.disabled")
		return nil, nil
	case BackendMemory:
		st = NewMemoryStore()
	case BackendBolt:
		st, err = OpenBolt(opts.BoltPath)
	case BackendMongo:
		st, err = OpenMongo(ctx, opts.Mongo)
	case BackendPostgres:
		if opts.DB == nil {
			return nil, fmt.Errorf("history: postgres backend needs a database connection")
		}
		st = NewPostgresStore(opts.DB)
	default:
		return nil, fmt.Errorf("history: unknown backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, logger.ComponentHistory, "history.open", slog.String("backend", backend))
	return Logged(st, backend), nil
}

type loggedStore struct {
	Store
	backend string
}

// Logged reports every save and failed read of st under the history component.
func Logged(st Store, backend string) Store {
	if st == nil {
		return nil
	}
	return loggedStore{Store: st, backend: backend}
}

func (l loggedStore) Save(ctx context.Context, s workout.Session) (string, error) {
	start := time.Now()
	id, err := l.Store.Save(ctx, s)
	attrs := []slog.Attr{
		slog.String("backend", l.backend),
		slog.Int64("user_id", s.Owner),
		slog.Int("exercises", len(s.Exercises)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	if err != nil {
		logger.Error(ctx, logger.ComponentHistory, "history.save", append(attrs, slog.String("err", err.Error()))...)
		return "", err
	}
	logger.Info(ctx, logger.ComponentHistory, "history.save", append(attrs, slog.String("id", id))...)
	return id, nil
}

func (l loggedStore) Recent(ctx context.Context, owner int64, limit int) ([]Record, error) {
	recs, err := l.Store.Recent(ctx, owner, limit)
	if err != nil {
		logger.Error(ctx, logger.ComponentHistory, "history.recent",
			slog.String("backend", l.backend),
			slog.Int64("user_id", owner),
			slog.String("err", err.Error()),
		)
	}
	return recs, err
}
