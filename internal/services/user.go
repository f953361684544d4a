package services

import (
	"context"
	"fmt"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/pagination"
	"riveredge/pkg/search"

	"gorm.io/gorm"
)

type UserService struct {
	db      *gorm.DB
	version *PermissionVersionService
}

func NewUserService() *UserService {
	return &UserService{
		db:      database.GetDB(),
		version: NewPermissionVersionService(database.GetCache()),
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
func (s *UserService) Create(tenantID uint, username, password, email, name string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("用户名和密码不能为空")
	}

	// 用户名租户内唯一
	var count int64
	s.db.Model(&models.User{}).Where("tenant_id = ? AND username = ?", tenantID, username).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("用户名已存在")
	}

	// 租户用户数上限
	var tenant models.Tenant
	if err := s.db.First(&tenant, tenantID).Error; err != nil {
		return nil, fmt.Errorf("租户不存在")
	}
	var userCount int64
	s.db.Model(&models.User{}).Where("tenant_id = ?", tenantID).Count(&userCount)
	if tenant.MaxUsers > 0 && int(userCount) >= tenant.MaxUsers {
		return nil, fmt.Errorf("租户用户数已达上限")
	}

	user := &models.User{
		TenantID: tenantID,
		Username: username,
		Email:    email,
		Name:     name,
		IsActive: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	err := s.db.Create(user).Error
	return user, err
}

// GetByUUID 根据UUID获取用户
func (s *UserService) GetByUUID(tenantID uint, uuid string) (*models.User, error) {
	var user models.User
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).
		Preload("Roles").Preload("Department").Preload("Position").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID 根据ID获取用户，供认证中间件使用
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(tenantID uint, username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("tenant_id = ? AND username = ?", tenantID, username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List 分页查询用户
func (s *UserService) List(tenantID uint, params *pagination.PageParams, keyword string) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{}).Where("tenant_id = ?", tenantID)
	query = search.Apply(query, search.Options{
		Keyword:       keyword,
		KeywordFields: []string{"username", "name", "email"},
		SortBy:        "created_at",
		SortDesc:      true,
		AllowedSorts:  []string{"created_at", "username"},
	})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Preload("Department").Preload("Position").
		Offset(params.GetOffset()).Limit(params.GetLimit()).
		Find(&users).Error
	return users, total, err
}

// Update 更新用户基本信息
func (s *UserService) Update(tenantID uint, uuid string, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}

	allowed := map[string]bool{
		"name": true, "email": true, "phone": true, "avatar": true,
		"is_active": true, "department_id": true, "position_id": true,
	}
	filtered := make(map[string]interface{})
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}

	if err := s.db.Model(user).Updates(filtered).Error; err != nil {
		return nil, err
	}
	return s.GetByUUID(tenantID, uuid)
}

// ChangePassword 修改密码
func (s *UserService) ChangePassword(tenantID uint, uuid, oldPassword, newPassword string) error {
	user, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return fmt.Errorf("原密码不正确")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", user.PasswordHash).Error
}

// Delete 删除用户
func (s *UserService) Delete(tenantID uint, uuid string) error {
	user, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return err
	}

	s.version.Bump(context.Background(), tenantID)
	return nil
}

// ========== 角色管理 ==========

// AssignRoles 为用户分配角色，覆盖式保存
func (s *UserService) AssignRoles(tenantID uint, userUUID string, roleUUIDs []string) error {
	user, err := s.GetByUUID(tenantID, userUUID)
	if err != nil {
		return err
	}

	var roles []models.Role
	if len(roleUUIDs) > 0 {
		if err := s.db.Where("tenant_id = ? AND uuid IN ?", tenantID, roleUUIDs).
			Find(&roles).Error; err != nil {
			return err
		}
		if len(roles) != len(roleUUIDs) {
			return fmt.Errorf("存在无效的角色")
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		for _, role := range roles {
			ur := models.UserRole{UserID: user.ID, RoleID: role.ID}
			if err := tx.Create(&ur).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.version.Bump(context.Background(), tenantID)
	return nil
}
