package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samarkand-dashboard/internal/common/logger"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// countingBuild returns "context #n" on the n-th call.
func countingBuild(calls *atomic.Int32) BuildFunc {
	return func(ctx context.Context) (string, error) {
		n := calls.Add(1)
		return fmt.Sprintf("context #%d", n), nil
	}
}

func TestContextCache_WarmWithinTTL(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	cache := NewContextCache(NewMemoryBackend(), countingBuild(&calls), DefaultContextTTL,
		logger.NewTestLogger(t), WithClock(clock.Now))

	ctx := context.Background()
	first, err := cache.Get(ctx)
	require.NoError(t, err)

	clock.Advance(599 * time.Second)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestContextCache_RebuildsAfterTTL(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	cache := NewContextCache(NewMemoryBackend(), countingBuild(&calls), DefaultContextTTL,
		logger.NewTestLogger(t), WithClock(clock.Now))

	ctx := context.Background()
	first, err := cache.Get(ctx)
	require.NoError(t, err)

	clock.Advance(600 * time.Second)
	second, err := cache.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "context #2", second.Text)
	assert.True(t, second.BuiltAt.After(first.BuiltAt))
}

func TestContextCache_SameDataRebuildsEqualText(t *testing.T) {
	clock := newFakeClock()
	build := func(ctx context.Context) (string, error) { return "stable", nil }
	cache := NewContextCache(NewMemoryBackend(), build, time.Minute, logger.NewNoOpLogger(), WithClock(clock.Now))

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	clock.Advance(time.Hour)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.NotEqual(t, first.BuiltAt, second.BuiltAt)
}

func TestContextCache_FailureIsNotCached(t *testing.T) {
	var calls atomic.Int32
	fail := true
	build := func(ctx context.Context) (string, error) {
		calls.Add(1)
		if fail {
			return "", errors.New("school file missing")
		}
		return "ok", nil
	}
	backend := NewMemoryBackend()
	cache := NewContextCache(backend, build, DefaultContextTTL, logger.NewTestLogger(t))

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrContextUnavailable)

	_, ok, _ := backend.Load(context.Background())
	assert.False(t, ok)

	fail = false
	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", snap.Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestContextCache_DefaultTTL(t *testing.T) {
	cache := NewContextCache(NewMemoryBackend(), countingBuild(new(atomic.Int32)), 0, logger.NewNoOpLogger())
	assert.Equal(t, DefaultContextTTL, cache.ttl)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisBackend_SharedBetweenReplicas(t *testing.T) {
	mr, client := setupRedis(t)
	clock := newFakeClock()

	var callsA, callsB atomic.Int32
	replicaA := NewContextCache(NewRedisBackend(client), countingBuild(&callsA), DefaultContextTTL,
		logger.NewTestLogger(t), WithClock(clock.Now))
	replicaB := NewContextCache(NewRedisBackend(client), countingBuild(&callsB), DefaultContextTTL,
		logger.NewTestLogger(t), WithClock(clock.Now))

	ctx := context.Background()
	fromA, err := replicaA.Get(ctx)
	require.NoError(t, err)
	fromB, err := replicaB.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, fromA.Text, fromB.Text)
	assert.True(t, fromA.BuiltAt.Equal(fromB.BuiltAt))
	assert.Equal(t, int32(1), callsA.Load())
	assert.Equal(t, int32(0), callsB.Load())

	assert.True(t, mr.Exists(ContextKey))
	assert.Equal(t, DefaultContextTTL, mr.TTL(ContextKey))

	mr.FastForward(DefaultContextTTL)
	clock.Advance(DefaultContextTTL)

	_, err = replicaB.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), callsB.Load())
}

func TestRedisBackend_CorruptValueRebuilds(t *testing.T) {
	mr, client := setupRedis(t)
	require.NoError(t, mr.Set(ContextKey, "{not json"))

	var calls atomic.Int32
	cache := NewContextCache(NewRedisBackend(client), countingBuild(&calls), DefaultContextTTL, logger.NewTestLogger(t))

	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "context #1", snap.Text)

	stored, err := mr.Get(ContextKey)
	require.NoError(t, err)
	var decoded Snapshot
	require.NoError(t, json.Unmarshal([]byte(stored), &decoded))
	assert.Equal(t, "context #1", decoded.Text)
}

func TestRedisBackend_ErrorsDegradeToRebuild(t *testing.T) {
	client, mock := redismock.NewClientMock()
	clock := newFakeClock()

	expected, err := json.Marshal(Snapshot{Text: "context #1", BuiltAt: clock.Now()})
	require.NoError(t, err)

	mock.ExpectGet(ContextKey).SetErr(errors.New("connection refused"))
	mock.ExpectSet(ContextKey, expected, DefaultContextTTL).SetErr(errors.New("connection refused"))

	var calls atomic.Int32
	cache := NewContextCache(NewRedisBackend(client), countingBuild(&calls), DefaultContextTTL,
		logger.NewTestLogger(t), WithClock(clock.Now))

	snap, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "context #1", snap.Text)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisBackend_MissReturnsNotFound(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.ExpectGet(ContextKey).RedisNil()

	_, ok, err := NewRedisBackend(client).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
