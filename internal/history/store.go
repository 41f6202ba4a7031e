// Package history persists finished workouts so users can look back at them.
package history

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/m3rciful/yeabuddy/internal/workout"
)

// Backend names accepted in configuration.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
	BackendBolt     = "bolt"
)

// DefaultLimit is how many workouts /history shows.
const DefaultLimit = 10

// ErrInvalidSession is returned when saving a session without an owner or start time.
var ErrInvalidSession = errors.New("history: session needs an owner and a start time")

// Record is a saved workout.
type Record struct {
	ID string `json:"id"`
	workout.Session
}

// Store saves finished sessions and lists them newest first.
type Store interface {
	Save(ctx context.Context, s workout.Session) (string, error)
	Recent(ctx context.Context, owner int64, limit int) ([]Record, error)
	Count(ctx context.Context, owner int64) (int, error)
	Close() error
}

func newID() string {
	return uuid.NewString()
}

func validate(s workout.Session) error {
	if s.Owner == 0 || s.StartTime.IsZero() {
		return ErrInvalidSession
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// MemoryStore keeps history in process memory. It backs tests and the "memory" backend.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64][]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64][]Record)}
}

// Save stores a copy of s and returns its id.
func (m *MemoryStore) Save(_ context.Context, s workout.Session) (string, error) {
	if err := validate(s); err != nil {
		return "", err
	}
	rec := Record{ID: newID(), Session: s.Clone()}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.records[s.Owner], rec)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartTime.After(list[j].StartTime)
	})
	m.records[s.Owner] = list
	return rec.ID, nil
}

// Recent lists up to limit records for owner, newest first.
func (m *MemoryStore) Recent(_ context.Context, owner int64, limit int) ([]Record, error) {
	limit = normalizeLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.records[owner]
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]Record, len(list))
	for i, r := range list {
		out[i] = Record{ID: r.ID, Session: r.Clone()}
	}
	return out, nil
}

// Count returns how many records owner has.
func (m *MemoryStore) Count(_ context.Context, owner int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records[owner]), nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
