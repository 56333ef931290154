// Package migrate 执行 storage 内嵌的启动记录表迁移
package migrate

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/taoyao-code/charge-console/internal/storage"
)

const (
	upSuffix     = "_up.sql"
	versionTable = "start_console_migrations"
	// 多副本同时启动时串行化迁移
	advisoryLockKey int64 = 0x63686367
)

// Migration 一条向上迁移
type Migration struct {
	Version int64
	Name    string
	SQL     string
}

// Load 读取 fsys 根目录下的 NNNN_name_up.sql，按版本升序返回。
// 文件名不符合格式的忽略，版本重复返回错误。
func Load(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]string)
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), upSuffix) {
			continue
		}
		ver, name, ok := parseName(e.Name())
		if !ok {
			continue
		}
		if prev, dup := seen[ver]; dup {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", ver, prev, e.Name())
		}
		seen[ver] = e.Name()
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Version: ver, Name: name, SQL: string(data)})
	}
	slices.SortFunc(out, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return out, nil
}

func parseName(file string) (int64, string, bool) {
	num, name, _ := strings.Cut(strings.TrimSuffix(file, upSuffix), "_")
	ver, err := strconv.ParseInt(num, 10, 64)
	if err != nil || ver <= 0 {
		return 0, "", false
	}
	return ver, name, true
}

// Runner 迁移执行器
type Runner struct {
	migrations []Migration
	logger     *zap.Logger
}

// NewRunner 加载 storage.Migrations 中的迁移
func NewRunner(logger *zap.Logger) (*Runner, error) {
	sub, err := fs.Sub(storage.Migrations, "migrations")
	if err != nil {
		return nil, err
	}
	ms, err := Load(sub)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("no embedded migrations found")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{migrations: ms, logger: logger}, nil
}

// Migrations 已加载的迁移（按版本升序）
func (r *Runner) Migrations() []Migration {
	return slices.Clone(r.migrations)
}

// Up 依次执行未应用的迁移，返回本次应用的条数。
// 每条迁移在独立事务中执行，并持有事务级 advisory lock。
func (r *Runner) Up(ctx context.Context, db *pgxpool.Pool) (int, error) {
	if _, err := db.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+versionTable+` (
        version    BIGINT PRIMARY KEY,
        name       TEXT NOT NULL,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`); err != nil {
		return 0, fmt.Errorf("create %s: %w", versionTable, err)
	}

	applied := 0
	for _, m := range r.migrations {
		done, err := r.apply(ctx, db, m)
		if err != nil {
			return applied, err
		}
		if done {
			applied++
			r.logger.Info("migration applied", zap.Int64("version", m.Version), zap.String("name", m.Name))
		}
	}
	return applied, nil
}

func (r *Runner) apply(ctx context.Context, db *pgxpool.Pool, m Migration) (bool, error) {
	done := false
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey); err != nil {
			return err
		}
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+versionTable+` WHERE version = $1)`, m.Version).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}
		if _, err := tx.Exec(ctx, m.SQL); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO `+versionTable+` (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
			return err
		}
		done = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("migration %d_%s: %w", m.Version, m.Name, err)
	}
	return done, nil
}
