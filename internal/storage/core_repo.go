package storage

import (
	"context"
	"embed"
	"errors"

	"github.com/taoyao-code/charge-console/internal/storage/models"
)

// Migrations 内置 SQL 迁移（*_up.sql）
//
//go:embed migrations/*.sql
var Migrations embed.FS

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// AttemptFilter 启动记录查询条件，零值字段不过滤
type AttemptFilter struct {
	StationID string
	ActorID   string
	Limit     int
	Offset    int
}

// AuditRepo 启动记录审计存储。
// 约束：
// - 上层不直接写 SQL，统一通过本接口访问
// - 同一 RunID 重复写入视为幂等（保留首条）
type AuditRepo interface {
	// RecordAttempt 写入一次运行的终态
	RecordAttempt(ctx context.Context, a *models.StartAttempt) error
	// GetAttempt 按运行 ID 查询，不存在返回 ErrNotFound
	GetAttempt(ctx context.Context, runID string) (*models.StartAttempt, error)
	// ListAttempts 按完成时间倒序列出
	ListAttempts(ctx context.Context, f AttemptFilter) ([]models.StartAttempt, error)
}
