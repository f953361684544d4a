package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/cache"
	"riveredge/pkg/config"
	"riveredge/pkg/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationService struct {
	db      *gorm.DB
	cache   *cache.Cache
	version *PermissionVersionService
	appsDir string
}

func NewApplicationService() *ApplicationService {
	c := database.GetCache()
	return &ApplicationService{
		db:      database.GetDB(),
		cache:   c,
		version: NewPermissionVersionService(c),
		appsDir: config.GetConfig().Plugin.AppsDir,
	}
}

// PluginManifest 插件清单 apps/<code>/manifest.json
type PluginManifest struct {
	Code         string               `json:"code"`
	Name         string               `json:"name"`
	Version      string               `json:"version"`
	Description  string               `json:"description"`
	Icon         string               `json:"icon"`
	EntryPoint   string               `json:"entry_point"`
	RoutePath    string               `json:"route_path"`
	SortOrder    int                  `json:"sort_order"`
	MenuConfig   json.RawMessage      `json:"menu_config"`
	Permissions  []ManifestPermission `json:"permissions"`
	Dependencies []string             `json:"dependencies"`
}

// ManifestPermission 清单声明的权限
type ManifestPermission struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ========== 插件扫描 ==========

// ScanManifests 扫描插件目录，解析全部清单
func (s *ApplicationService) ScanManifests() ([]PluginManifest, error) {
	entries, err := os.ReadDir(s.appsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var manifests []PluginManifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifestPath := filepath.Join(s.appsDir, entry.Name(), "manifest.json")
		data, err := os.ReadFile(manifestPath)
		if err != nil {
			continue
		}
		var manifest PluginManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			logger.GetLogger().Warnf("解析插件清单失败 %s: %v", manifestPath, err)
			continue
		}
		if manifest.Code == "" {
			logger.GetLogger().Warnf("插件清单缺少code: %s", manifestPath)
			continue
		}
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}

// ScanPluginsForTenant 为单个租户同步扫描到的插件
func (s *ApplicationService) ScanPluginsForTenant(tenantID uint) error {
	manifests, err := s.ScanManifests()
	if err != nil {
		return err
	}
	for _, manifest := range manifests {
		if err := s.upsertApplication(tenantID, &manifest); err != nil {
			logger.GetLogger().Errorf("同步插件 %s 到租户 %d 失败: %v", manifest.Code, tenantID, err)
		}
	}
	return nil
}

// ScanPluginsAllTenants 为全部租户执行插件扫描
func (s *ApplicationService) ScanPluginsAllTenants() error {
	var tenants []models.Tenant
	if err := s.db.Find(&tenants).Error; err != nil {
		return err
	}
	for _, tenant := range tenants {
		if err := s.ScanPluginsForTenant(tenant.ID); err != nil {
			return err
		}
	}
	return nil
}

// upsertApplication 按code对账应用行
// 用户改过的名称与排序不被清单覆盖；扫描到的内置应用强制安装
func (s *ApplicationService) upsertApplication(tenantID uint, manifest *PluginManifest) error {
	var app models.Application
	err := s.db.Where("tenant_id = ? AND code = ?", tenantID, manifest.Code).First(&app).Error
	isNew := err == gorm.ErrRecordNotFound
	if err != nil && !isNew {
		return err
	}

	if isNew {
		app = models.Application{
			TenantID:    tenantID,
			Code:        manifest.Code,
			Name:        manifest.Name,
			Version:     manifest.Version,
			Description: manifest.Description,
			Icon:        manifest.Icon,
			RoutePath:   manifest.RoutePath,
			EntryPoint:  manifest.EntryPoint,
			SortOrder:   manifest.SortOrder,
			IsSystem:    true,
			IsActive:    true,
			IsInstalled: true,
		}
		if len(manifest.MenuConfig) > 0 {
			app.MenuConfig = datatypes.JSON(manifest.MenuConfig)
		}
		if err := s.db.Create(&app).Error; err != nil {
			return err
		}
	} else {
		if !app.IsCustomName {
			app.Name = manifest.Name
		}
		if !app.IsCustomSort {
			app.SortOrder = manifest.SortOrder
		}
		app.Version = manifest.Version
		app.Description = manifest.Description
		app.Icon = manifest.Icon
		app.RoutePath = manifest.RoutePath
		app.EntryPoint = manifest.EntryPoint
		if len(manifest.MenuConfig) > 0 {
			app.MenuConfig = datatypes.JSON(manifest.MenuConfig)
		}
		// 扫描到即视为内置应用，强制安装
		app.IsSystem = true
		app.IsInstalled = true
		if err := s.db.Save(&app).Error; err != nil {
			return err
		}
	}

	// 清单声明的权限自动补齐
	if err := s.seedManifestPermissions(tenantID, manifest); err != nil {
		return err
	}

	// 菜单同步
	if len(app.MenuConfig) > 0 {
		menuService := NewMenuService()
		if err := menuService.SyncMenusFromApplicationConfig(tenantID, &app); err != nil {
			return err
		}
	}

	s.invalidateCaches(tenantID)
	return nil
}

func (s *ApplicationService) seedManifestPermissions(tenantID uint, manifest *PluginManifest) error {
	// 清单权限 + 菜单引用的权限代码
	codes := make(map[string]string)
	for _, p := range manifest.Permissions {
		codes[p.Code] = p.Name
	}
	if len(manifest.MenuConfig) > 0 {
		var nodes []MenuConfigNode
		if err := json.Unmarshal(manifest.MenuConfig, &nodes); err == nil {
			collectMenuPermissionCodes(nodes, codes)
		}
	}

	for code, name := range codes {
		if code == "" {
			continue
		}
		var count int64
		s.db.Model(&models.Permission{}).Where("tenant_id = ? AND code = ?", tenantID, code).Count(&count)
		if count > 0 {
			continue
		}
		if name == "" {
			name = code
		}
		perm := models.Permission{
			TenantID:       tenantID,
			Code:           code,
			Name:           name,
			Resource:       manifest.Code,
			Action:         models.ActionRead,
			PermissionType: models.PermissionTypeMenu,
		}
		if err := s.db.Create(&perm).Error; err != nil {
			return err
		}
	}
	return nil
}

func collectMenuPermissionCodes(nodes []MenuConfigNode, codes map[string]string) {
	for _, node := range nodes {
		if node.PermissionCode != "" {
			if _, ok := codes[node.PermissionCode]; !ok {
				codes[node.PermissionCode] = node.Name
			}
		}
		if len(node.Children) > 0 {
			collectMenuPermissionCodes(node.Children, codes)
		}
	}
}

// ========== 查询与自定义 ==========

// GetByTenant 获取租户的应用列表
func (s *ApplicationService) GetByTenant(tenantID uint) ([]models.Application, error) {
	var apps []models.Application
	err := s.db.Where("tenant_id = ?", tenantID).Order("sort_order").Find(&apps).Error
	return apps, err
}

// GetByUUID 根据UUID获取应用
func (s *ApplicationService) GetByUUID(tenantID uint, uuid string) (*models.Application, error) {
	var app models.Application
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Rename 重命名应用并标记自定义，后续扫描不再覆盖
func (s *ApplicationService) Rename(tenantID uint, uuid, name string) (*models.Application, error) {
	app, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}
	app.Name = name
	app.IsCustomName = true
	if err := s.db.Save(app).Error; err != nil {
		return nil, err
	}
	s.invalidateCaches(tenantID)
	return app, nil
}

// Reorder 调整应用排序并标记自定义
func (s *ApplicationService) Reorder(tenantID uint, uuid string, sortOrder int) (*models.Application, error) {
	app, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}
	app.SortOrder = sortOrder
	app.IsCustomSort = true
	if err := s.db.Save(app).Error; err != nil {
		return nil, err
	}
	s.invalidateCaches(tenantID)
	return app, nil
}

// ========== 安装/卸载/启停 ==========

// Install 安装应用，有菜单配置时同步菜单
func (s *ApplicationService) Install(tenantID uint, uuid string) error {
	app, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}
	if !app.IsInstalled {
		app.IsInstalled = true
		if err := s.db.Save(app).Error; err != nil {
			return err
		}
	}
	if len(app.MenuConfig) > 0 {
		if err := NewMenuService().SyncMenusFromApplicationConfig(tenantID, app); err != nil {
			return err
		}
	}
	s.invalidateCaches(tenantID)
	return nil
}

// Uninstall 卸载应用，软删除其菜单
func (s *ApplicationService) Uninstall(tenantID uint, uuid string) error {
	app, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}
	if app.IsInstalled {
		app.IsInstalled = false
		if err := s.db.Save(app).Error; err != nil {
			return err
		}
	}
	if err := NewMenuService().SoftDeleteApplicationMenus(tenantID, app.UUID); err != nil {
		return err
	}
	s.invalidateCaches(tenantID)
	return nil
}

// Enable 启用应用，重新同步菜单
func (s *ApplicationService) Enable(tenantID uint, uuid string) error {
	app, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}
	if !app.IsActive {
		app.IsActive = true
		if err := s.db.Save(app).Error; err != nil {
			return err
		}
	}
	if len(app.MenuConfig) > 0 {
		if err := NewMenuService().SyncMenusFromApplicationConfig(tenantID, app); err != nil {
			return err
		}
	}
	s.invalidateCaches(tenantID)
	return nil
}

// Disable 停用应用，其菜单全部置为不可用
func (s *ApplicationService) Disable(tenantID uint, uuid string) error {
	app, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}
	if app.IsActive {
		app.IsActive = false
		if err := s.db.Save(app).Error; err != nil {
			return err
		}
	}
	if err := NewMenuService().SetApplicationMenusActive(tenantID, app.UUID, false); err != nil {
		return err
	}
	s.invalidateCaches(tenantID)
	return nil
}

func (s *ApplicationService) invalidateCaches(tenantID uint) {
	ctx := context.Background()
	s.cache.DeletePattern(ctx, fmt.Sprintf("menu:tree:%d:*", tenantID))
	s.cache.DeletePattern(ctx, fmt.Sprintf("menu:list:%d:*", tenantID))
	s.version.Bump(ctx, tenantID)
}
