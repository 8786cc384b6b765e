package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend keeps encoded session values keyed by session id.
// Load returns nil, nil for an unknown or expired id.
type Backend interface {
	Load(ctx context.Context, id string) ([]byte, error)
	Save(ctx context.Context, id string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data    []byte
	expires time.Time // zero: never
}

// sweepEvery is the least time between two scans for expired records.
const sweepEvery = time.Minute

// MemoryBackend is a process-local backend for tests and single-node development.
// Expired records are dropped on Load and by a sweep run from Save.
type MemoryBackend struct {
	mu        sync.Mutex
	m         map[string]memoryEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{m: make(map[string]memoryEntry), now: time.Now}
}

func (b *MemoryBackend) Load(_ context.Context, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.m[id]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && b.now().After(e.expires) {
		delete(b.m, id)
		return nil, nil
	}
	return append([]byte(nil), e.data...), nil
}

func (b *MemoryBackend) Save(_ context.Context, id string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expires = b.now().Add(ttl)
	}
	b.mu.Lock()
	b.sweep()
	b.m[id] = e
	b.mu.Unlock()
	return nil
}

// sweep drops expired records; b.mu must be held.
func (b *MemoryBackend) sweep() {
	now := b.now()
	if now.Sub(b.lastSweep) < sweepEvery {
		return
	}
	b.lastSweep = now
	for id, e := range b.m {
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(b.m, id)
		}
	}
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	delete(b.m, id)
	b.mu.Unlock()
	return nil
}

// Len reports the number of stored sessions, expired ones included.
func (b *MemoryBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}

type RedisBackend struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{RDB: rdb, Prefix: "portal:session:"}
}

func (b *RedisBackend) Load(ctx context.Context, id string) ([]byte, error) {
	data, err := b.RDB.Get(ctx, b.Prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return data, err
}

func (b *RedisBackend) Save(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	return b.RDB.Set(ctx, b.Prefix+id, data, ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.RDB.Del(ctx, b.Prefix+id).Err()
}
