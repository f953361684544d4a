package main

import (
	"fmt"
	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 创建默认租户（含租户级种子：权限、角色、语言、站点设置、编码规则）
	if err := createDefaultTenant(db); err != nil {
		return fmt.Errorf("创建默认租户失败: %v", err)
	}

	// 2. 创建平台管理员用户
	if err := createInfraAdmin(db); err != nil {
		return fmt.Errorf("创建平台管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultTenant 创建默认租户
func createDefaultTenant(db *gorm.DB) error {
	var count int64
	db.Model(&models.Tenant{}).Where("domain = ?", "default").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("默认租户已存在，跳过创建")
		return nil
	}

	// 通过服务创建，自动完成租户级种子初始化
	_, err := services.NewTenantService().Create("默认租户", "default", "standard", 50, nil)
	if err != nil {
		return err
	}

	logger.GetLogger().Info("默认租户创建成功")
	return nil
}

// createInfraAdmin 创建平台管理员用户
func createInfraAdmin(db *gorm.DB) error {
	var tenant models.Tenant
	if err := db.Where("domain = ?", "default").First(&tenant).Error; err != nil {
		return fmt.Errorf("获取默认租户失败: %v", err)
	}

	var count int64
	db.Model(&models.User{}).
		Where("tenant_id = ? AND username = ?", tenant.ID, "admin").
		Count(&count)
	if count > 0 {
		logger.GetLogger().Info("管理员用户已存在，跳过创建")
		return nil
	}

	user := &models.User{
		TenantID:      tenant.ID,
		Username:      "admin",
		Email:         "admin@example.com",
		Name:          "系统管理员",
		IsActive:      true,
		IsInfraAdmin:  true,
		IsTenantAdmin: true,
	}

	if err := user.SetPassword("Admin@123"); err != nil {
		return fmt.Errorf("设置密码失败: %v", err)
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	// 绑定系统管理员角色
	var role models.Role
	if err := db.Where("tenant_id = ? AND code = ?", tenant.ID, "SYSTEM_ADMIN").First(&role).Error; err == nil {
		db.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID})
	}

	logger.GetLogger().Infof("默认管理员创建成功 - 用户名: admin, 密码: Admin@123")
	return nil
}
