package viewcache

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/resilience"
)

var start = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

func TestMemoryStore_SetGetExpire(t *testing.T) {
	clk := clock.NewMockClock(start)
	s := NewMemoryStore(clk)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "/dashboard", []byte("users"), time.Minute))

	v, ok, err := s.Get(ctx, "/dashboard")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("users"), v)

	clk.Advance(time.Minute)
	_, ok, err = s.Get(ctx, "/dashboard")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_ZeroTTLNeverExpires(t *testing.T) {
	clk := clock.NewMockClock(start)
	s := NewMemoryStore(clk)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	clk.Advance(24 * time.Hour)

	_, ok, _ := s.Get(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryStore_Delete(t *testing.T) {
	s := NewMemoryStore(clock.NewMockClock(start))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, s.Delete(ctx, "k"))

	_, ok, _ := s.Get(ctx, "k")
	assert.False(t, ok)
}

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	err     error
	deleted []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		f.deleted = append(f.deleted, k)
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func newBreaker(threshold int32) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  threshold,
		Timeout:    time.Second,
		ResetAfter: time.Minute,
		Ignore:     IsMiss,
	})
}

func TestRedisStore_RoundTripWithPrefix(t *testing.T) {
	fake := newFakeRedis()
	s := NewRedisStore(fake, newBreaker(3))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "/dashboard", []byte(`{"users":[]}`), time.Minute))
	assert.Contains(t, fake.data, "viewcache:/dashboard")

	v, ok, err := s.Get(ctx, "/dashboard")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"users":[]}`, string(v))

	require.NoError(t, s.Delete(ctx, "/dashboard"))
	_, ok, err = s.Get(ctx, "/dashboard")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_MissesDoNotTripBreaker(t *testing.T) {
	s := NewRedisStore(newFakeRedis(), newBreaker(1))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, ok, err := s.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestRedisStore_OutageOpensBreaker(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection refused")
	s := NewRedisStore(fake, newBreaker(1))
	ctx := context.Background()

	_, _, err := s.Get(ctx, "k")
	assert.ErrorContains(t, err, "connection refused")

	err = s.Set(ctx, "k", []byte("v"), time.Minute)
	assert.ErrorIs(t, err, commonerrors.ErrCircuitOpen)
}

func TestInvalidator_DeletesThenNotifies(t *testing.T) {
	s := NewMemoryStore(clock.NewMockClock(start))
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "/dashboard", []byte("v"), time.Minute))

	inv := NewInvalidator(s, logger.NewWithWriter(&bytes.Buffer{}, "test", "error"))
	var notified []string
	inv.Subscribe(func(_ context.Context, key string) {
		_, ok, _ := s.Get(ctx, key)
		assert.False(t, ok)
		notified = append(notified, key)
	})

	require.NoError(t, inv.Invalidate(ctx, "/dashboard"))
	assert.Equal(t, []string{"/dashboard"}, notified)
}

type failingStore struct{ Store }

func (failingStore) Delete(context.Context, string) error { return errors.New("unreachable") }

func TestInvalidator_DeleteFailureSkipsSubscribers(t *testing.T) {
	inv := NewInvalidator(failingStore{}, logger.NewWithWriter(&bytes.Buffer{}, "test", "error"))
	called := false
	inv.Subscribe(func(context.Context, string) { called = true })

	err := inv.Invalidate(context.Background(), "/dashboard")

	assert.ErrorContains(t, err, "unreachable")
	assert.False(t, called)
}

func TestInvalidator_StoreIfCurrentSkipsValueReadBeforeInvalidation(t *testing.T) {
	s := NewMemoryStore(clock.NewMockClock(start))
	ctx := context.Background()
	inv := NewInvalidator(s, logger.NewWithWriter(&bytes.Buffer{}, "test", "error"))

	gen := inv.Generation("/dashboard")
	require.NoError(t, inv.Invalidate(ctx, "/dashboard"))

	stored, err := inv.StoreIfCurrent(ctx, "/dashboard", gen, []byte("stale"), time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	_, ok, _ := s.Get(ctx, "/dashboard")
	assert.False(t, ok)

	stored, err = inv.StoreIfCurrent(ctx, "/dashboard", inv.Generation("/dashboard"), []byte("fresh"), time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)
	got, ok, _ := s.Get(ctx, "/dashboard")
	assert.True(t, ok)
	assert.Equal(t, []byte("fresh"), got)
}

func TestInvalidator_GenerationIsPerKey(t *testing.T) {
	inv := NewInvalidator(NewMemoryStore(clock.NewMockClock(start)), logger.NewWithWriter(&bytes.Buffer{}, "test", "error"))

	require.NoError(t, inv.Invalidate(context.Background(), "/dashboard"))

	assert.Equal(t, uint64(1), inv.Generation("/dashboard"))
	assert.Zero(t, inv.Generation("/other"))
}
