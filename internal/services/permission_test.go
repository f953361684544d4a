package services

import (
	"context"
	"testing"
	"time"

	"riveredge/pkg/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *cache.Cache {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewCacheWithClient(client, "test")
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPermissionDeleteCascade(t *testing.T) {
	db, mock := newMockGorm(t)
	c := newTestCache(t)
	s := NewPermissionServiceWith(db, c)
	ctx := context.Background()

	// 预置菜单树缓存，删除权限后应被清空
	require.NoError(t, c.Set(ctx, "menu:tree:1:all", []string{"cached"}, time.Minute))

	mock.ExpectQuery(`SELECT \* FROM "core_permissions" WHERE \(tenant_id = \$1 AND uuid = \$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "tenant_id", "code", "name"}).
			AddRow(7, "perm-uuid", 1, "order:delete", "删除订单"))

	mock.ExpectBegin()
	// 引用菜单置空并停用
	mock.ExpectExec(`UPDATE "core_menus" SET`).
		WithArgs(false, nil, sqlmock.AnyArg(), 1, "order:delete").
		WillReturnResult(sqlmock.NewResult(0, 2))
	// 角色权限关联物理删除
	mock.ExpectExec(`DELETE FROM "core_role_permissions" WHERE permission_id = \$1`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	// 权限本身软删除
	mock.ExpectExec(`UPDATE "core_permissions" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Delete(1, "perm-uuid")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// 菜单树缓存已清
	var cached []string
	hit, err := c.Get(ctx, "menu:tree:1:all", &cached)
	require.NoError(t, err)
	assert.False(t, hit)

	// 权限版本只递增一次
	version, err := NewPermissionVersionService(c).Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestPermissionDeleteNotFound(t *testing.T) {
	db, mock := newMockGorm(t)
	c := newTestCache(t)
	s := NewPermissionServiceWith(db, c)

	mock.ExpectQuery(`SELECT \* FROM "core_permissions" WHERE \(tenant_id = \$1 AND uuid = \$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := s.Delete(1, "missing-uuid")
	assert.Error(t, err)

	// 找不到权限时版本不动
	version, err := NewPermissionVersionService(c).Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
}
