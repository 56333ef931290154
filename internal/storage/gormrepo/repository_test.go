package gormrepo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/taoyao-code/charge-console/internal/config"
	"github.com/taoyao-code/charge-console/internal/migrate"
	"github.com/taoyao-code/charge-console/internal/storage"
	"github.com/taoyao-code/charge-console/internal/storage/models"
	"github.com/taoyao-code/charge-console/internal/storage/pg"
)

// 需要真实 PostgreSQL：设置 CHARGE_TEST_DSN
func setupRepo(t *testing.T) storage.AuditRepo {
	dsn := os.Getenv("CHARGE_TEST_DSN")
	if dsn == "" {
		t.Skip("CHARGE_TEST_DSN not set, skipping test")
	}
	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfgpkg.DatabaseConfig{DSN: dsn, MaxOpenConns: 4, MaxIdleConns: 1}, nil)
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	t.Cleanup(pool.Close)
	runner, err := migrate.NewRunner(nil)
	require.NoError(t, err)
	_, err = runner.Up(ctx, pool)
	require.NoError(t, err)

	db, err := Open(pool)
	require.NoError(t, err)
	return New(db)
}

func attempt(station string, finished time.Time) *models.StartAttempt {
	return &models.StartAttempt{
		RunID:       uuid.NewString(),
		StationID:   station,
		ConnectorID: 1,
		ActorID:     "u1",
		State:       "completed",
		Reason:      "accepted",
		Submitted:   true,
		StartedAt:   finished.Add(-time.Second),
		FinishedAt:  finished,
	}
}

func TestRepository_RecordAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := attempt("CB-"+uuid.NewString()[:8], time.Now())
	require.NoError(t, repo.RecordAttempt(ctx, a))
	// 重复写入不报错
	require.NoError(t, repo.RecordAttempt(ctx, attempt(a.StationID, time.Now())))
	dup := *a
	dup.ID = 0
	dup.Reason = "rejected"
	require.NoError(t, repo.RecordAttempt(ctx, &dup))

	got, err := repo.GetAttempt(ctx, a.RunID)
	require.NoError(t, err)
	assert.Equal(t, "accepted", got.Reason)

	_, err = repo.GetAttempt(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRepository_ListByStation(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	station := "CB-" + uuid.NewString()[:8]
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordAttempt(ctx, attempt(station, base.Add(time.Duration(i)*time.Minute))))
	}

	list, err := repo.ListAttempts(ctx, storage.AttemptFilter{StationID: station, Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].FinishedAt.After(list[1].FinishedAt))
}

func TestRepository_RecordRequiresRunID(t *testing.T) {
	r := &Repository{}
	assert.Error(t, r.RecordAttempt(context.Background(), &models.StartAttempt{}))
	assert.Error(t, r.RecordAttempt(context.Background(), nil))
}
