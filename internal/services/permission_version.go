package services

import (
	"context"
	"fmt"

	"riveredge/pkg/cache"
)

// 权限版本：每租户一个单调递增整数
// 任何权限/角色/用户角色/角色权限的变更都会递增它，
// 用户有效权限集按 (tenant, user, version) 缓存，版本一变旧缓存自然失效
type PermissionVersionService struct {
	cache *cache.Cache
}

func NewPermissionVersionService(c *cache.Cache) *PermissionVersionService {
	return &PermissionVersionService{cache: c}
}

func (s *PermissionVersionService) versionKey(tenantID uint) string {
	return fmt.Sprintf("perm:version:%d", tenantID)
}

// Get 获取当前权限版本，不存在时为0
func (s *PermissionVersionService) Get(ctx context.Context, tenantID uint) (int64, error) {
	val, err := s.cache.GetString(ctx, s.versionKey(tenantID))
	if err != nil {
		return 0, err
	}
	if val == "" {
		return 0, nil
	}
	var version int64
	if _, err := fmt.Sscanf(val, "%d", &version); err != nil {
		return 0, nil
	}
	return version, nil
}

// Bump 递增权限版本
func (s *PermissionVersionService) Bump(ctx context.Context, tenantID uint) (int64, error) {
	return s.cache.Incr(ctx, s.versionKey(tenantID))
}

// UserPermissionKey 用户有效权限集的缓存键
func (s *PermissionVersionService) UserPermissionKey(tenantID, userID uint, version int64) string {
	return fmt.Sprintf("perm:user:%d:%d:%d", tenantID, userID, version)
}
