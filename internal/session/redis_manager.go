package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// startrun:view:{runID} -> View JSON
const keyViewPrefix = "startrun:view:"

// RedisStore Redis 视图存储，多实例部署时共享运行视图
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func viewKey(runID string) string { return keyViewPrefix + runID }

func (s *RedisStore) Save(ctx context.Context, v *View) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	if err := s.client.Set(ctx, viewKey(v.RunID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save view %s: %w", v.RunID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, runID string) (*View, error) {
	b, err := s.client.Get(ctx, viewKey(runID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get view %s: %w", runID, err)
	}
	var v View
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("unmarshal view %s: %w", runID, err)
	}
	return &v, nil
}

func (s *RedisStore) Delete(ctx context.Context, runID string) error {
	return s.client.Del(ctx, viewKey(runID)).Err()
}
