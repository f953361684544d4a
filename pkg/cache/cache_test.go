package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewCacheWithClient(client, "test")
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set(ctx, "k1", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	hit, err := c.Get(ctx, "k1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got string
	hit, err := c.Get(context.Background(), "missing", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestKeyPrefix(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, c.SetString(context.Background(), "k", "v", 0))
	assert.True(t, mr.Exists("test:k"))
}

func TestSetGetString(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetString(ctx, "s", "hello", time.Minute))
	val, err := c.GetString(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	val, err = c.GetString(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestDelete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetString(ctx, "a", "1", 0))
	require.NoError(t, c.SetString(ctx, "b", "2", 0))
	require.NoError(t, c.Delete(ctx, "a", "b"))

	val, err := c.GetString(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestDeletePattern(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetString(ctx, "menu:tree:1:true", "x", 0))
	require.NoError(t, c.SetString(ctx, "menu:tree:1:false", "y", 0))
	require.NoError(t, c.SetString(ctx, "menu:tree:2:true", "z", 0))

	deleted, err := c.DeletePattern(ctx, "menu:tree:1:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	val, err := c.GetString(ctx, "menu:tree:2:true")
	require.NoError(t, err)
	assert.Equal(t, "z", val)
}

func TestIncr(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	v, err := c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = c.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetString(ctx, "tmp", "v", 0))
	require.NoError(t, c.Expire(ctx, "tmp", time.Second))

	mr.FastForward(2 * time.Second)
	val, err := c.GetString(ctx, "tmp")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}
