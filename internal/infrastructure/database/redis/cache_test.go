package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovesx/OncoPurpose/internal/infrastructure/monitoring/logging"
)

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	return NewCache(NewFromRedis(rdb, logging.NewNopLogger())), mr
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Score float64 `json:"score"`
	}

	require.NoError(t, c.Set(ctx, "drug:metformin", payload{Name: "Metformin", Score: 0.89}, time.Minute))

	var got payload
	hit, err := c.GetJSON(ctx, "drug:metformin", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Metformin", got.Name)
	assert.Equal(t, 0.89, got.Score)
}

func TestCache_StringPassthrough(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "refresh:abc", "user-42", time.Minute))
	raw, hit, err := c.Get(ctx, "refresh:abc")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "user-42", string(raw))
}

func TestCache_MissAndExpiry(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "search:fp1", "result", time.Second))
	mr.FastForward(2 * time.Second)
	_, hit, err = c.Get(ctx, "search:fp1")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_DeleteAndExists(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, c.Delete(ctx, "k"))
	exists, err = c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCache_ClearPattern(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "search:a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "search:b", "2", time.Minute))
	require.NoError(t, c.Set(ctx, "drug:x", "3", time.Minute))

	n, err := c.ClearPattern(ctx, "search:*")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exists, _ := c.Exists(ctx, "drug:x")
	assert.True(t, exists)
}

func TestCache_IncrBy(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	n, err := c.IncrBy(ctx, "counter", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.IncrBy(ctx, "counter", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}

func TestCache_DisconnectedIsNeutral(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()

	assert.False(t, c.Connected())
	assert.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	_, hit, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, hit)

	exists, err := c.Exists(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, exists)

	keys, err := c.Keys(ctx, "*")
	assert.NoError(t, err)
	assert.Nil(t, keys)

	assert.Error(t, c.Ping(ctx))
}
