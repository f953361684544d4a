package services

import (
	"context"
	"fmt"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/cache"
	"riveredge/pkg/logger"

	"gorm.io/gorm"
)

type PermissionService struct {
	db      *gorm.DB
	cache   *cache.Cache
	version *PermissionVersionService
}

func NewPermissionService() *PermissionService {
	c := database.GetCache()
	return &PermissionService{
		db:      database.GetDB(),
		cache:   c,
		version: NewPermissionVersionService(c),
	}
}

// NewPermissionServiceWith 注入依赖的构造方式（测试用）
func NewPermissionServiceWith(db *gorm.DB, c *cache.Cache) *PermissionService {
	return &PermissionService{
		db:      db,
		cache:   c,
		version: NewPermissionVersionService(c),
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建权限
func (s *PermissionService) Create(tenantID uint, code, name, description, resource, action, permissionType string) (*models.Permission, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("权限代码和名称不能为空")
	}
	if permissionType == "" {
		permissionType = models.PermissionTypeFunction
	}

	// 租户内代码唯一
	var count int64
	s.db.Model(&models.Permission{}).Where("tenant_id = ? AND code = ?", tenantID, code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("权限代码已存在")
	}

	permission := &models.Permission{
		TenantID:       tenantID,
		Code:           code,
		Name:           name,
		Description:    description,
		Resource:       resource,
		Action:         action,
		PermissionType: permissionType,
	}

	if err := s.db.Create(permission).Error; err != nil {
		return nil, err
	}

	s.bumpVersion(tenantID)
	return permission, nil
}

// GetByUUID 根据UUID获取权限
func (s *PermissionService) GetByUUID(tenantID uint, uuid string) (*models.Permission, error) {
	var permission models.Permission
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

// GetByTenant 获取租户的全部权限
func (s *PermissionService) GetByTenant(tenantID uint) ([]models.Permission, error) {
	var permissions []models.Permission
	err := s.db.Where("tenant_id = ?", tenantID).Order("resource, action").Find(&permissions).Error
	return permissions, err
}

// Update 更新权限
func (s *PermissionService) Update(tenantID uint, uuid, name, description string) (*models.Permission, error) {
	permission, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}

	permission.Name = name
	permission.Description = description

	if err := s.db.Save(permission).Error; err != nil {
		return nil, err
	}

	s.bumpVersion(tenantID)
	return permission, nil
}

// Delete 删除权限
// 引用该权限代码的菜单会被置空并停用，角色权限关联一并清理
func (s *PermissionService) Delete(tenantID uint, uuid string) error {
	permission, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// 置空引用菜单并停用
		if err := tx.Model(&models.Menu{}).
			Where("tenant_id = ? AND permission_code = ?", tenantID, permission.Code).
			Updates(map[string]interface{}{"permission_code": nil, "is_active": false}).Error; err != nil {
			return err
		}

		// 清理角色权限关联
		if err := tx.Where("permission_id = ?", permission.ID).
			Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(permission).Error
	})
	if err != nil {
		return err
	}

	// 菜单被停用，菜单树缓存也要清
	s.invalidateMenuCache(tenantID)
	s.bumpVersion(tenantID)
	return nil
}

// ========== 权限判定 ==========

// GetUserPermissionCodes 计算用户的有效权限集（角色权限并集）
// 结果按 (tenant, user, version) 缓存，版本递增后旧缓存自然失效
func (s *PermissionService) GetUserPermissionCodes(ctx context.Context, tenantID, userID uint) ([]string, error) {
	version, err := s.version.Get(ctx, tenantID)
	if err != nil {
		version = 0
	}

	cacheKey := s.version.UserPermissionKey(tenantID, userID, version)
	var codes []string
	if hit, err := s.cache.Get(ctx, cacheKey, &codes); err == nil && hit {
		return codes, nil
	}

	codes, err = s.computeUserPermissionCodes(tenantID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, codes, 30*time.Minute); err != nil {
		logger.GetLogger().Warnf("缓存用户权限集失败: %v", err)
	}
	return codes, nil
}

func (s *PermissionService) computeUserPermissionCodes(tenantID, userID uint) ([]string, error) {
	var roles []models.Role
	err := s.db.Joins("JOIN core_user_roles ON core_user_roles.role_id = core_roles.id").
		Where("core_user_roles.user_id = ? AND core_roles.tenant_id = ? AND core_roles.status = ?",
			userID, tenantID, models.RoleStatusActive).
		Find(&roles).Error
	if err != nil {
		return nil, err
	}

	codeSet := make(map[string]struct{})
	for _, role := range roles {
		// 系统管理员角色未显式配置权限时，按全量权限处理
		if role.IsSystemAdminRole() {
			var count int64
			s.db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count)
			if count == 0 {
				all, err := s.GetByTenant(tenantID)
				if err != nil {
					return nil, err
				}
				for _, p := range all {
					codeSet[p.Code] = struct{}{}
				}
				continue
			}
		}

		var permissions []models.Permission
		err := s.db.Joins("JOIN core_role_permissions ON core_role_permissions.permission_id = core_permissions.id").
			Where("core_role_permissions.role_id = ?", role.ID).
			Find(&permissions).Error
		if err != nil {
			return nil, err
		}
		for _, p := range permissions {
			codeSet[p.Code] = struct{}{}
		}
	}

	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	return codes, nil
}

// HasPermission 判断用户是否拥有指定权限
// 平台管理员直接放行；租户管理员持系统管理员角色放行；否则查有效权限集
func (s *PermissionService) HasPermission(ctx context.Context, tc *models.TenantContext, code string) (bool, error) {
	if tc.IsInfraAdmin {
		return true, nil
	}

	if tc.IsTenantAdmin {
		hasAdminRole, err := s.userHasSystemAdminRole(tc.TenantID, tc.UserID)
		if err == nil && hasAdminRole {
			return true, nil
		}
	}

	codes, err := s.GetUserPermissionCodes(ctx, tc.TenantID, tc.UserID)
	if err != nil {
		return false, err
	}
	for _, c := range codes {
		if c == code {
			return true, nil
		}
	}
	return false, nil
}

func (s *PermissionService) userHasSystemAdminRole(tenantID, userID uint) (bool, error) {
	var roles []models.Role
	err := s.db.Joins("JOIN core_user_roles ON core_user_roles.role_id = core_roles.id").
		Where("core_user_roles.user_id = ? AND core_roles.tenant_id = ?", userID, tenantID).
		Find(&roles).Error
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if role.IsSystemAdminRole() {
			return true, nil
		}
	}
	return false, nil
}

// ========== 缓存辅助 ==========

func (s *PermissionService) bumpVersion(tenantID uint) {
	if _, err := s.version.Bump(context.Background(), tenantID); err != nil {
		logger.GetLogger().Warnf("递增权限版本失败: %v", err)
	}
}

func (s *PermissionService) invalidateMenuCache(tenantID uint) {
	ctx := context.Background()
	if _, err := s.cache.DeletePattern(ctx, fmt.Sprintf("menu:tree:%d:*", tenantID)); err != nil {
		logger.GetLogger().Warnf("清理菜单树缓存失败: %v", err)
	}
	if _, err := s.cache.DeletePattern(ctx, fmt.Sprintf("menu:list:%d:*", tenantID)); err != nil {
		logger.GetLogger().Warnf("清理菜单列表缓存失败: %v", err)
	}
}
