package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
	"github.com/taoyao-code/charge-console/internal/health"
	"github.com/taoyao-code/charge-console/internal/session"
	redisstorage "github.com/taoyao-code/charge-console/internal/storage/redis"
)

// NewRedisClient 创建Redis客户端；未启用返回 nil
func NewRedisClient(ctx context.Context, cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis is disabled, skipping initialization")
		return nil, nil
	}

	client, err := redisstorage.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("pool_size", cfg.PoolSize))

	return client, nil
}

// NewViewStore 运行视图存储：启用 Redis 时多实例共享，否则进程内存储
func NewViewStore(ctx context.Context, redisClient *redisstorage.Client, cfg cfgpkg.SessionConfig, logger *zap.Logger) session.Store {
	if redisClient != nil {
		logger.Info("start run views stored in redis", zap.Duration("ttl", cfg.TTL))
		return session.NewRedisStore(redisClient.Client, cfg.TTL)
	}
	mem := session.NewMemoryStore(cfg.TTL)
	go mem.RunSweeper(ctx, sweepInterval(cfg.TTL))
	logger.Info("start run views stored in memory", zap.Duration("ttl", cfg.TTL))
	return mem
}

// NewDeduper 启动请求幂等键去重，存储位置与运行视图一致
func NewDeduper(redisClient *redisstorage.Client) session.Deduper {
	if redisClient != nil {
		return session.NewRedisDeduper(redisClient.Client, session.DefaultDedupTTL)
	}
	return session.NewMemoryDeduper(session.DefaultDedupTTL)
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > 10*time.Minute {
		return time.Minute
	}
	return ttl / 10
}

// AddRedisChecker 添加Redis检查器到聚合器
func AddRedisChecker(aggregator *health.Aggregator, redisClient *redisstorage.Client) {
	if redisClient != nil {
		aggregator.AddChecker(health.NewRedisChecker(redisClient))
	}
}
