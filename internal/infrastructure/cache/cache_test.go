package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryLease(t *testing.T) {
	ctx := context.Background()

	t.Run("single holder until release", func(t *testing.T) {
		l := NewInMemoryLease()
		defer l.Close()

		token, ok, err := l.Acquire(ctx, "alert-scan:a", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		_, ok, err = l.Acquire(ctx, "alert-scan:a", time.Minute)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, _ = l.Acquire(ctx, "alert-scan:b", time.Minute)
		assert.True(t, ok, "keys are independent")

		require.NoError(t, l.Release(ctx, "alert-scan:a", "someone-else"))
		_, ok, _ = l.Acquire(ctx, "alert-scan:a", time.Minute)
		assert.False(t, ok, "a foreign token does not release")

		require.NoError(t, l.Release(ctx, "alert-scan:a", token))
		_, ok, _ = l.Acquire(ctx, "alert-scan:a", time.Minute)
		assert.True(t, ok)
	})

	t.Run("expired lease can be taken over", func(t *testing.T) {
		l := NewInMemoryLease()
		defer l.Close()
		now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
		l.now = func() time.Time { return now }

		first, ok, _ := l.Acquire(ctx, "k", 30*time.Second)
		require.True(t, ok)

		now = now.Add(31 * time.Second)
		second, ok, _ := l.Acquire(ctx, "k", 30*time.Second)
		require.True(t, ok)
		assert.NotEqual(t, first, second)

		require.NoError(t, l.Release(ctx, "k", first))
		_, ok, _ = l.Acquire(ctx, "k", 30*time.Second)
		assert.False(t, ok, "stale holder cannot release the successor")

		now = now.Add(time.Hour)
		l.cleanup()
		assert.Zero(t, l.Size())
	})

	t.Run("concurrent acquirers get exactly one lease", func(t *testing.T) {
		l := NewInMemoryLease()
		defer l.Close()

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok, _ := l.Acquire(ctx, "race", time.Minute); ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		l := NewInMemoryLease()
		assert.NoError(t, l.Close())
		assert.NoError(t, l.Close())
	})
}

func TestInMemoryRetryQueue(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryRetryQueue()

	p, err := q.Pop(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)

	payload := []byte(`{"n":1}`)
	require.NoError(t, q.Push(ctx, payload))
	require.NoError(t, q.Push(ctx, []byte(`{"n":2}`)))
	payload[5] = '9'

	p, err = q.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(p), "oldest first and copied on push")

	require.NoError(t, q.DeadLetter(ctx, []byte("bad")))
	queued, dead, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), queued)
	assert.Equal(t, int64(1), dead)
}

func TestFactory_CreateCoordination(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to memory without redis", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		f := NewFactory(config.RedisConfig{}, WithLogger(zap.New(core)))

		c, err := f.CreateCoordination(ctx)
		require.NoError(t, err)
		defer c.Close()
		assert.False(t, c.Distributed)
		assert.IsType(t, &InMemoryLease{}, c.Lease)
		assert.IsType(t, &InMemoryRetryQueue{}, c.Retries)
		assert.Equal(t, 1, logs.FilterMessageSnippet("falling back").Len())
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		f := NewFactory(config.RedisConfig{}, WithInMemoryFallback(false))
		_, err := f.CreateCoordination(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}
