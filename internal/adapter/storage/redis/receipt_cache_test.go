package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })
	return s, client
}

func TestReceiptCache_SetAndGet(t *testing.T) {
	s, client := newMiniClient(t)
	cache := NewReceiptCache(client)
	ctx := context.Background()

	key := "itn:ORD-1001:COMPLETE"
	value := []byte(`{"order_id":"7d1c","applied":true}`)

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, key, value, 72*time.Hour))

	got, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	assert.True(t, s.Exists("pos:receipt:"+key))
	assert.Equal(t, 72*time.Hour, s.TTL("pos:receipt:"+key))
}

func TestReceiptCache_Expiry(t *testing.T) {
	s, client := newMiniClient(t)
	cache := NewReceiptCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "itn:ORD-1:CANCELLED", []byte(`{}`), time.Hour))
	s.FastForward(61 * time.Minute)

	got, err := cache.Get(ctx, "itn:ORD-1:CANCELLED")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestReceiptCache_StatusesAreSeparate(t *testing.T) {
	_, client := newMiniClient(t)
	cache := NewReceiptCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "itn:ORD-2:COMPLETE", []byte(`"paid"`), time.Hour))

	got, err := cache.Get(ctx, "itn:ORD-2:CANCELLED")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReceiptCache_ServerDown(t *testing.T) {
	s, client := newMiniClient(t)
	cache := NewReceiptCache(client)
	s.Close()

	_, err := cache.Get(context.Background(), "itn:ORD-3:COMPLETE")
	assert.ErrorContains(t, err, "redis receipt get")

	err = cache.Set(context.Background(), "itn:ORD-3:COMPLETE", []byte(`{}`), time.Hour)
	assert.ErrorContains(t, err, "redis receipt set")
}
