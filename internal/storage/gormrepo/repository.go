package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/taoyao-code/charge-console/internal/storage"
	"github.com/taoyao-code/charge-console/internal/storage/models"
)

const defaultListLimit = 50

// Repository 基于 GORM 的 AuditRepo 实现。
type Repository struct {
	db *gorm.DB
}

// New 返回一个使用给定 *gorm.DB 的 AuditRepo 实例。
func New(db *gorm.DB) storage.AuditRepo {
	return &Repository{db: db}
}

// Open 在现有 pgx 连接池之上打开 GORM，连接池由调用方负责关闭。
func Open(pool *pgxpool.Pool) (*gorm.DB, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return db, nil
}

// RecordAttempt 按 run_id 幂等插入。
func (r *Repository) RecordAttempt(ctx context.Context, a *models.StartAttempt) error {
	if a == nil || a.RunID == "" {
		return errors.New("attempt run id is required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "run_id"}},
			DoNothing: true,
		}).
		Create(a).Error
}

// GetAttempt 通过运行 ID 查询。
func (r *Repository) GetAttempt(ctx context.Context, runID string) (*models.StartAttempt, error) {
	var a models.StartAttempt
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAttempts 按 finished_at 倒序。
func (r *Repository) ListAttempts(ctx context.Context, f storage.AttemptFilter) ([]models.StartAttempt, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultListLimit
	}
	q := r.db.WithContext(ctx).Model(&models.StartAttempt{})
	if f.StationID != "" {
		q = q.Where("station_id = ?", f.StationID)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	var out []models.StartAttempt
	err := q.Order("finished_at DESC").Limit(limit).Offset(f.Offset).Find(&out).Error
	return out, err
}
