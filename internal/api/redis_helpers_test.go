package api

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	expires map[string]time.Duration
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func TestIncrWithTTL_SetsExpiryOnFirstHit(t *testing.T) {
	f := &fakeCounter{counts: map[string]int64{}, expires: map[string]time.Duration{}}
	ctx := context.Background()

	n, err := incrWithTTL(ctx, f, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, f.expires["k"])

	delete(f.expires, "k")
	n, err = incrWithTTL(ctx, f, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NotContains(t, f.expires, "k")
}

func TestLoginThrottle_NilIsPermissive(t *testing.T) {
	throttle := NewLoginThrottle(nil, 1, 1, time.Minute)
	assert.Nil(t, throttle)

	ctx := context.Background()
	for range 5 {
		assert.True(t, throttle.Allow(ctx, "127.0.0.1", "a@example.com"))
		throttle.Fail(ctx, "a@example.com")
	}
	throttle.Reset(ctx, "a@example.com")
}
