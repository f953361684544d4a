package services

import (
	"context"
	"testing"

	"riveredge/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVersionService(t *testing.T) *PermissionVersionService {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewCacheWithClient(client, "test")
	t.Cleanup(func() { c.Close() })
	return NewPermissionVersionService(c)
}

func TestPermissionVersionStartsAtZero(t *testing.T) {
	s := newVersionService(t)
	version, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}

func TestPermissionVersionBump(t *testing.T) {
	s := newVersionService(t)
	ctx := context.Background()

	v1, err := s.Bump(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)

	v2, err := s.Bump(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v2)

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)
}

func TestPermissionVersionPerTenant(t *testing.T) {
	s := newVersionService(t)
	ctx := context.Background()

	_, err := s.Bump(ctx, 1)
	require.NoError(t, err)

	// 其他租户的版本不受影响
	other, err := s.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), other)
}

func TestUserPermissionKey(t *testing.T) {
	s := newVersionService(t)
	assert.Equal(t, "perm:user:1:7:3", s.UserPermissionKey(1, 7, 3))
}
