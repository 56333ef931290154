package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseDeduper(t *testing.T, d Deduper) {
	ctx := context.Background()

	existing, err := d.Reserve(ctx, "u1:k1")
	require.NoError(t, err)
	assert.Empty(t, existing)

	_, err = d.Reserve(ctx, "u1:k1")
	assert.ErrorIs(t, err, ErrDuplicateInFlight)

	require.NoError(t, d.Bind(ctx, "u1:k1", "run-1"))
	existing, err = d.Reserve(ctx, "u1:k1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", existing)

	existing, err = d.Reserve(ctx, "u2:k1")
	require.NoError(t, err)
	assert.Empty(t, existing)
	require.NoError(t, d.Release(ctx, "u2:k1"))
	existing, err = d.Reserve(ctx, "u2:k1")
	require.NoError(t, err)
	assert.Empty(t, existing)

	_, err = d.Reserve(ctx, "")
	assert.Error(t, err)
}

func TestMemoryDeduper(t *testing.T) {
	exerciseDeduper(t, NewMemoryDeduper(time.Minute))
}

func TestMemoryDeduper_Expiry(t *testing.T) {
	d := NewMemoryDeduper(time.Minute)
	now := time.Unix(1700000000, 0)
	d.now = func() time.Time { return now }

	_, err := d.Reserve(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, d.Bind(context.Background(), "k", "run-1"))

	now = now.Add(2 * time.Minute)
	existing, err := d.Reserve(context.Background(), "k")
	require.NoError(t, err)
	assert.Empty(t, existing)
}

func TestRedisDeduper(t *testing.T) {
	exerciseDeduper(t, NewRedisDeduper(setupTestRedis(t), time.Minute))
}
