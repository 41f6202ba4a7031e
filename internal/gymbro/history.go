package gymbro

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// Roles used in stored turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultHistorySize is how many turns are kept per user, user and assistant combined.
const DefaultHistorySize = 10

// Message is a single stored chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// HistoryStore keeps the last few turns of each user's conversation.
// Append evicts the oldest turns once the size cap is exceeded.
type HistoryStore interface {
	Load(ctx context.Context, owner int64) ([]Message, error)
	Append(ctx context.Context, owner int64, msgs ...Message) error
}

// MemoryHistory is a process-local HistoryStore.
type MemoryHistory struct {
	mu    sync.Mutex
	size  int
	turns map[int64][]Message
}

// NewMemoryHistory returns a history capped at size turns per user.
func NewMemoryHistory(size int) *MemoryHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &MemoryHistory{size: size, turns: make(map[int64][]Message)}
}

func (h *MemoryHistory) Load(_ context.Context, owner int64) ([]Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Message(nil), h.turns[owner]...), nil
}

func (h *MemoryHistory) Append(_ context.Context, owner int64, msgs ...Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := append(h.turns[owner], msgs...)
	if over := len(list) - h.size; over > 0 {
		list = append([]Message(nil), list[over:]...)
	}
	h.turns[owner] = list
	return nil
}

// RedisHistory stores turns in a redis list per user so several bot replicas
// share one conversation.
type RedisHistory struct {
	client *redis.Client
	size   int
	ttl    time.Duration
	prefix string
}

// NewRedisHistory wraps client. A zero ttl keeps lists forever.
func NewRedisHistory(client *redis.Client, size int, ttl time.Duration) *RedisHistory {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &RedisHistory{client: client, size: size, ttl: ttl, prefix: "yeabuddy:chat:"}
}

func (h *RedisHistory) key(owner int64) string {
	return h.prefix + formatOwner(owner)
}

func (h *RedisHistory) Load(ctx context.Context, owner int64) ([]Message, error) {
	raw, err := h.client.LRange(ctx, h.key(owner), 0, -1).Result()
	if err != nil {
		return nil, oops.In("gymbro").Code("history_load").With("user_id", owner).Wrapf(err, "load chat history")
	}
	out := make([]Message, 0, len(raw))
	for _, item := range raw {
		var m Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (h *RedisHistory) Append(ctx context.Context, owner int64, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		data, err := json.Marshal(m)
		if err != nil {
			return oops.In("gymbro").Code("history_encode").Wrapf(err, "encode turn")
		}
		values = append(values, string(data))
	}
	key := h.key(owner)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-h.size), -1)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return oops.In("gymbro").Code("history_append").With("user_id", owner).Wrapf(err, "append chat history")
	}
	return nil
}
