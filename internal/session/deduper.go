package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// startrun:idem:{actorID}:{key} -> runID（预占期间为 pendingMarker）
	keyIdemPrefix = "startrun:idem:"
	pendingMarker = "-"

	// DefaultDedupTTL 幂等键保留时长
	DefaultDedupTTL = 10 * time.Minute
)

// ErrDuplicateInFlight 同一幂等键的首个请求尚未拿到运行 ID
var ErrDuplicateInFlight = errors.New("duplicate start request in flight")

// Deduper 启动请求幂等键去重。
// Reserve 首次出现返回 ("", nil)；已绑定运行返回其 ID；仍在预占返回 ErrDuplicateInFlight。
type Deduper interface {
	Reserve(ctx context.Context, key string) (string, error)
	Bind(ctx context.Context, key, runID string) error
	Release(ctx context.Context, key string) error
}

func idemKey(key string) string { return keyIdemPrefix + key }

// RedisDeduper 基于 SetNX 的跨实例去重
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper 创建去重器
func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func (d *RedisDeduper) Reserve(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("idempotency key is empty")
	}
	// 键不存在时设置成功，表示首次出现
	ok, err := d.client.SetNX(ctx, idemKey(key), pendingMarker, d.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return "", nil
	}
	v, err := d.client.Get(ctx, idemKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		// 期间过期，按首次处理
		return d.Reserve(ctx, key)
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	if v == pendingMarker {
		return "", ErrDuplicateInFlight
	}
	return v, nil
}

func (d *RedisDeduper) Bind(ctx context.Context, key, runID string) error {
	if err := d.client.Set(ctx, idemKey(key), runID, d.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (d *RedisDeduper) Release(ctx context.Context, key string) error {
	return d.client.Del(ctx, idemKey(key)).Err()
}

// MemoryDeduper 单实例去重
type MemoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]dedupEntry
	now  func() time.Time
}

type dedupEntry struct {
	runID     string
	expiresAt time.Time
}

func NewMemoryDeduper(ttl time.Duration) *MemoryDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupTTL
	}
	return &MemoryDeduper{ttl: ttl, keys: make(map[string]dedupEntry), now: time.Now}
}

func (d *MemoryDeduper) Reserve(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("idempotency key is empty")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	for k, e := range d.keys {
		if now.After(e.expiresAt) {
			delete(d.keys, k)
		}
	}
	if e, ok := d.keys[key]; ok {
		if e.runID == pendingMarker {
			return "", ErrDuplicateInFlight
		}
		return e.runID, nil
	}
	d.keys[key] = dedupEntry{runID: pendingMarker, expiresAt: now.Add(d.ttl)}
	return "", nil
}

func (d *MemoryDeduper) Bind(_ context.Context, key, runID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[key] = dedupEntry{runID: runID, expiresAt: d.now().Add(d.ttl)}
	return nil
}

func (d *MemoryDeduper) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.keys, key)
	return nil
}
