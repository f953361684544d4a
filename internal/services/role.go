package services

import (
	"context"
	"fmt"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/cache"

	"gorm.io/gorm"
)

type RoleService struct {
	db      *gorm.DB
	version *PermissionVersionService
}

func NewRoleService() *RoleService {
	return &RoleService{
		db:      database.GetDB(),
		version: NewPermissionVersionService(database.GetCache()),
	}
}

// NewRoleServiceWith 注入依赖的构造方式（测试用）
func NewRoleServiceWith(db *gorm.DB, c *cache.Cache) *RoleService {
	return &RoleService{
		db:      db,
		version: NewPermissionVersionService(c),
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
func (s *RoleService) Create(tenantID uint, code, name, description string) (*models.Role, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("角色代码和名称不能为空")
	}

	// 检查角色代码是否重复（在同一租户内）
	var count int64
	s.db.Model(&models.Role{}).Where("tenant_id = ? AND code = ?", tenantID, code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("角色代码已存在")
	}

	role := &models.Role{
		TenantID:    tenantID,
		Code:        code,
		Name:        name,
		Description: description,
		Status:      models.RoleStatusActive,
		IsSystem:    false,
	}

	if err := s.db.Create(role).Error; err != nil {
		return nil, err
	}

	s.bumpVersion(tenantID)
	return role, nil
}

// GetByUUID 根据UUID获取角色
func (s *RoleService) GetByUUID(tenantID uint, uuid string) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).
		Preload("Permissions").First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByTenant 获取租户的角色列表
func (s *RoleService) GetByTenant(tenantID uint) ([]*models.Role, error) {
	var roles []*models.Role
	err := s.db.Where("tenant_id = ?", tenantID).Preload("Permissions").Find(&roles).Error
	return roles, err
}

// Update 更新角色
func (s *RoleService) Update(tenantID uint, uuid, name, description, status string) (*models.Role, error) {
	role, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}

	// 系统角色属性不允许修改
	if role.IsSystem {
		return nil, fmt.Errorf("系统角色不允许修改")
	}

	role.Name = name
	role.Description = description
	if status != "" {
		role.Status = status
	}

	if err := s.db.Save(role).Error; err != nil {
		return nil, err
	}

	s.bumpVersion(tenantID)
	return role, nil
}

// Delete 删除角色
func (s *RoleService) Delete(tenantID uint, uuid string) error {
	role, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}

	// 系统角色不能删除
	if role.IsSystem {
		return fmt.Errorf("系统角色不允许删除")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(role).Error
	})
	if err != nil {
		return err
	}

	s.bumpVersion(tenantID)
	return nil
}

// ========== 权限管理方法 ==========

// GetRolePermissions 读取角色权限
// 系统管理员角色未显式配置权限时，返回租户全量权限（前端默认全选）
func (s *RoleService) GetRolePermissions(role *models.Role) ([]models.Permission, error) {
	var count int64
	s.db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&count)

	if count == 0 && role.IsSystemAdminRole() {
		var all []models.Permission
		err := s.db.Where("tenant_id = ?", role.TenantID).Order("resource, action").Find(&all).Error
		return all, err
	}

	var permissions []models.Permission
	err := s.db.Joins("JOIN core_role_permissions ON core_role_permissions.permission_id = core_permissions.id").
		Where("core_role_permissions.role_id = ?", role.ID).
		Find(&permissions).Error
	return permissions, err
}

// AssignPermissions 为角色分配权限，覆盖式保存
// 所有权限UUID必须属于同一租户
func (s *RoleService) AssignPermissions(tenantID uint, roleUUID string, permissionUUIDs []string) error {
	role, err := s.GetByUUID(tenantID, roleUUID)
	if err != nil {
		return err
	}

	// 系统角色只有系统管理员角色可以改权限集
	if role.IsSystem && !role.IsSystemAdminRole() {
		return fmt.Errorf("系统角色不允许修改权限")
	}

	var permissions []models.Permission
	if len(permissionUUIDs) > 0 {
		if err := s.db.Where("tenant_id = ? AND uuid IN ?", tenantID, permissionUUIDs).
			Find(&permissions).Error; err != nil {
			return err
		}
		if len(permissions) != len(permissionUUIDs) {
			return fmt.Errorf("存在无效的权限")
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		for _, p := range permissions {
			rp := models.RolePermission{RoleID: role.ID, PermissionID: p.ID}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.bumpVersion(tenantID)
	return nil
}

func (s *RoleService) bumpVersion(tenantID uint) {
	s.version.Bump(context.Background(), tenantID)
}
