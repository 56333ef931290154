package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
	"github.com/taoyao-code/charge-console/internal/migrate"
	"github.com/taoyao-code/charge-console/internal/storage"
	"github.com/taoyao-code/charge-console/internal/storage/gormrepo"
	pgstorage "github.com/taoyao-code/charge-console/internal/storage/pg"
)

// ConnectDBAndMigrate 建立数据库连接并按需执行内嵌迁移
func ConnectDBAndMigrate(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	dbpool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, err
	}
	if cfg.AutoMigrate {
		runner, err := migrate.NewRunner(log)
		if err != nil {
			return dbpool, err
		}
		n, err := runner.Up(ctx, dbpool)
		if err != nil {
			log.Error("db migrate error", zap.Error(err))
			return dbpool, err
		}
		log.Info("db migrations applied", zap.Int("count", n))
	}
	return dbpool, nil
}

// NewAuditRepo 基于连接池创建 gorm 审计仓库
func NewAuditRepo(dbpool *pgxpool.Pool) (storage.AuditRepo, error) {
	db, err := gormrepo.Open(dbpool)
	if err != nil {
		return nil, err
	}
	return gormrepo.New(db), nil
}
