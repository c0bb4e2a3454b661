package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker-api/tests"
)

const testOwner = "11111111-1111-1111-1111-111111111111"

func TestPool_PurgesExpiredKeys(t *testing.T) {
	pool, cleanup := tests.SetupTestDB(t)
	defer cleanup()

	logger := zap.NewNop()
	ctx := context.Background()

	tests.TruncateTables(t, pool)
	// Половина ключей протухла, половина свежая
	for i := 0; i < 5; i++ {
		tests.SeedIdempotencyKey(t, pool, testOwner, fmt.Sprintf("old-%d", i), int64(i+1), 48*time.Hour)
		tests.SeedIdempotencyKey(t, pool, testOwner, fmt.Sprintf("fresh-%d", i), int64(i+100), time.Minute)
	}

	janitor := NewPool(pool, logger, 2, 100*time.Millisecond, 24*time.Hour)
	janitor.Start(ctx)

	purged := tests.WaitForCondition(t, 10*time.Second, func() bool {
		var old int
		pool.QueryRow(ctx, "SELECT COUNT(*) FROM idempotency_keys WHERE key LIKE 'old-%'").Scan(&old)
		return old == 0
	})

	janitor.Stop()
	assert.True(t, purged, "expired keys should be purged")

	var fresh int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM idempotency_keys WHERE key LIKE 'fresh-%'").Scan(&fresh))
	assert.Equal(t, 5, fresh, "fresh keys must survive")
}

func TestPool_PurgeBatch(t *testing.T) {
	pool, cleanup := tests.SetupTestDB(t)
	defer cleanup()

	logger := zap.NewNop()
	ctx := context.Background()

	tests.TruncateTables(t, pool)
	tests.SeedIdempotencyKey(t, pool, testOwner, "expired", 1, 48*time.Hour)
	tests.SeedIdempotencyKey(t, pool, testOwner, "fresh", 2, time.Minute)

	janitor := NewPool(pool, logger, 1, time.Minute, 24*time.Hour)

	purged, err := janitor.purgeBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// Повторный проход ничего не находит
	purged, err = janitor.purgeBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)
}

func TestPool_GracefulShutdown(t *testing.T) {
	pool, cleanup := tests.SetupTestDB(t)
	defer cleanup()

	logger := zap.NewNop()
	ctx := context.Background()

	tests.TruncateTables(t, pool)

	janitor := NewPool(pool, logger, 2, 100*time.Millisecond, 24*time.Hour)
	janitor.Start(ctx)

	time.Sleep(300 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		janitor.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("janitor pool did not stop gracefully within 10 seconds")
	}
}
