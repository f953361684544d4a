package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/cache"
	"riveredge/pkg/logger"

	"gorm.io/gorm"
)

type MenuService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewMenuService() *MenuService {
	return &MenuService{
		db:    database.GetDB(),
		cache: database.GetCache(),
	}
}

// NewMenuServiceWith 注入依赖的构造方式（测试用）
func NewMenuServiceWith(db *gorm.DB, c *cache.Cache) *MenuService {
	return &MenuService{db: db, cache: c}
}

// ========== 基础CRUD方法 ==========

// Create 创建菜单
// 引用的权限代码必须存在于本租户
func (s *MenuService) Create(tenantID uint, menu *models.Menu) (*models.Menu, error) {
	if menu.Name == "" {
		return nil, fmt.Errorf("菜单名称不能为空")
	}

	if menu.PermissionCode != nil && *menu.PermissionCode != "" {
		var count int64
		s.db.Model(&models.Permission{}).
			Where("tenant_id = ? AND code = ?", tenantID, *menu.PermissionCode).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("权限代码不存在")
		}
	}

	menu.TenantID = tenantID
	if err := s.db.Create(menu).Error; err != nil {
		return nil, err
	}

	s.InvalidateCache(tenantID)
	return menu, nil
}

// GetByUUID 根据UUID获取菜单
func (s *MenuService) GetByUUID(tenantID uint, uuid string) (*models.Menu, error) {
	var menu models.Menu
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&menu).Error
	if err != nil {
		return nil, err
	}
	return &menu, nil
}

// Update 更新菜单
func (s *MenuService) Update(tenantID uint, uuid string, updates map[string]interface{}) (*models.Menu, error) {
	menu, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}

	if code, ok := updates["permission_code"].(string); ok && code != "" {
		var count int64
		s.db.Model(&models.Permission{}).
			Where("tenant_id = ? AND code = ?", tenantID, code).Count(&count)
		if count == 0 {
			return nil, fmt.Errorf("权限代码不存在")
		}
	}

	allowed := map[string]bool{
		"name": true, "path": true, "icon": true, "component": true,
		"permission_code": true, "sort_order": true, "is_active": true,
		"is_external": true, "external_url": true, "meta": true, "parent_id": true,
	}
	filtered := make(map[string]interface{})
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}

	if err := s.db.Model(menu).Updates(filtered).Error; err != nil {
		return nil, err
	}

	s.InvalidateCache(tenantID)
	return s.GetByUUID(tenantID, uuid)
}

// Delete 删除菜单及其子树
func (s *MenuService) Delete(tenantID uint, uuid string) error {
	menu, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.deleteSubtree(tx, tenantID, menu.ID)
	})
	if err != nil {
		return err
	}

	s.InvalidateCache(tenantID)
	return nil
}

func (s *MenuService) deleteSubtree(tx *gorm.DB, tenantID, menuID uint) error {
	var children []models.Menu
	if err := tx.Where("tenant_id = ? AND parent_id = ?", tenantID, menuID).Find(&children).Error; err != nil {
		return err
	}
	for _, child := range children {
		if err := s.deleteSubtree(tx, tenantID, child.ID); err != nil {
			return err
		}
	}
	return tx.Delete(&models.Menu{}, menuID).Error
}

// ========== 菜单树 ==========

// GetTree 获取菜单树，结果缓存
// activeOnly为真时只返回启用的菜单
func (s *MenuService) GetTree(ctx context.Context, tenantID uint, activeOnly bool) ([]*models.Menu, error) {
	cacheKey := fmt.Sprintf("menu:tree:%d:%t", tenantID, activeOnly)
	var cached []*models.Menu
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	query := s.db.Where("tenant_id = ?", tenantID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var menus []*models.Menu
	if err := query.Order("sort_order").Find(&menus).Error; err != nil {
		return nil, err
	}

	tree := s.buildTree(tenantID, menus)

	if err := s.cache.Set(ctx, cacheKey, tree, 30*time.Minute); err != nil {
		logger.GetLogger().Warnf("缓存菜单树失败: %v", err)
	}
	return tree, nil
}

// 平铺列表组装菜单树，根节点按 (应用排序, 菜单排序) 排列
func (s *MenuService) buildTree(tenantID uint, menus []*models.Menu) []*models.Menu {
	byID := make(map[uint]*models.Menu, len(menus))
	for _, m := range menus {
		byID[m.ID] = m
	}

	var roots []*models.Menu
	for _, m := range menus {
		if m.ParentID != nil {
			if parent, ok := byID[*m.ParentID]; ok {
				parent.Children = append(parent.Children, m)
				continue
			}
		}
		roots = append(roots, m)
	}

	// 应用排序值
	appSort := make(map[string]int)
	var apps []models.Application
	if err := s.db.Where("tenant_id = ?", tenantID).Find(&apps).Error; err == nil {
		for _, app := range apps {
			appSort[app.UUID] = app.SortOrder
		}
	}

	sort.SliceStable(roots, func(i, j int) bool {
		si, sj := 0, 0
		if roots[i].ApplicationUUID != nil {
			si = appSort[*roots[i].ApplicationUUID]
		}
		if roots[j].ApplicationUUID != nil {
			sj = appSort[*roots[j].ApplicationUUID]
		}
		if si != sj {
			return si < sj
		}
		return roots[i].SortOrder < roots[j].SortOrder
	})
	return roots
}

// InvalidateCache 清理菜单缓存
func (s *MenuService) InvalidateCache(tenantID uint) {
	ctx := context.Background()
	if _, err := s.cache.DeletePattern(ctx, fmt.Sprintf("menu:tree:%d:*", tenantID)); err != nil {
		logger.GetLogger().Warnf("清理菜单树缓存失败: %v", err)
	}
	if _, err := s.cache.DeletePattern(ctx, fmt.Sprintf("menu:list:%d:*", tenantID)); err != nil {
		logger.GetLogger().Warnf("清理菜单列表缓存失败: %v", err)
	}
}

// ========== 应用菜单同步 ==========

// MenuConfigNode 应用清单中的菜单节点
type MenuConfigNode struct {
	UUID           string           `json:"uuid"`
	Name           string           `json:"name"`
	Path           string           `json:"path"`
	Icon           string           `json:"icon"`
	Component      string           `json:"component"`
	PermissionCode string           `json:"permission_code"`
	SortOrder      int              `json:"sort_order"`
	IsExternal     bool             `json:"is_external"`
	ExternalURL    string           `json:"external_url"`
	Children       []MenuConfigNode `json:"children"`
}

// SyncMenusFromApplicationConfig 按应用的menu_config对账菜单
// 先按 (application_uuid, uuid) 匹配，再按 (application_uuid, path) 匹配，
// 新建未匹配项，软删除孤儿
func (s *MenuService) SyncMenusFromApplicationConfig(tenantID uint, app *models.Application) error {
	if len(app.MenuConfig) == 0 {
		return nil
	}

	var nodes []MenuConfigNode
	if err := json.Unmarshal(app.MenuConfig, &nodes); err != nil {
		return fmt.Errorf("解析menu_config失败: %v", err)
	}

	var existing []models.Menu
	if err := s.db.Where("tenant_id = ? AND application_uuid = ?", tenantID, app.UUID).
		Find(&existing).Error; err != nil {
		return err
	}
	byUUID := make(map[string]*models.Menu)
	byPath := make(map[string]*models.Menu)
	for i := range existing {
		byUUID[existing[i].UUID] = &existing[i]
		if existing[i].Path != "" {
			byPath[existing[i].Path] = &existing[i]
		}
	}

	seen := make(map[uint]bool)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.syncNodes(tx, tenantID, app.UUID, nodes, nil, byUUID, byPath, seen)
	})
	if err != nil {
		return err
	}

	// 软删除清单中已不存在的菜单
	for i := range existing {
		if !seen[existing[i].ID] {
			if err := s.db.Delete(&existing[i]).Error; err != nil {
				logger.GetLogger().Warnf("清理孤儿菜单失败: %v", err)
			}
		}
	}

	s.InvalidateCache(tenantID)
	return nil
}

func (s *MenuService) syncNodes(tx *gorm.DB, tenantID uint, appUUID string, nodes []MenuConfigNode, parentID *uint, byUUID, byPath map[string]*models.Menu, seen map[uint]bool) error {
	for _, node := range nodes {
		var menu *models.Menu
		if node.UUID != "" {
			menu = byUUID[node.UUID]
		}
		if menu == nil && node.Path != "" {
			menu = byPath[node.Path]
		}

		var permCode *string
		if node.PermissionCode != "" {
			code := node.PermissionCode
			permCode = &code
		}

		if menu == nil {
			menu = &models.Menu{
				TenantID:        tenantID,
				Name:            node.Name,
				Path:            node.Path,
				Icon:            node.Icon,
				Component:       node.Component,
				PermissionCode:  permCode,
				ApplicationUUID: &appUUID,
				ParentID:        parentID,
				SortOrder:       node.SortOrder,
				IsActive:        true,
				IsExternal:      node.IsExternal,
				ExternalURL:     node.ExternalURL,
			}
			if node.UUID != "" {
				menu.UUID = node.UUID
			}
			if err := tx.Create(menu).Error; err != nil {
				return err
			}
		} else {
			menu.Name = node.Name
			menu.Path = node.Path
			menu.Icon = node.Icon
			menu.Component = node.Component
			menu.PermissionCode = permCode
			menu.ParentID = parentID
			menu.SortOrder = node.SortOrder
			menu.IsExternal = node.IsExternal
			menu.ExternalURL = node.ExternalURL
			if err := tx.Save(menu).Error; err != nil {
				return err
			}
		}
		seen[menu.ID] = true

		if len(node.Children) > 0 {
			if err := s.syncNodes(tx, tenantID, appUUID, node.Children, &menu.ID, byUUID, byPath, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetApplicationMenusActive 启用/停用应用下全部菜单
func (s *MenuService) SetApplicationMenusActive(tenantID uint, appUUID string, active bool) error {
	err := s.db.Model(&models.Menu{}).
		Where("tenant_id = ? AND application_uuid = ?", tenantID, appUUID).
		Update("is_active", active).Error
	if err != nil {
		return err
	}
	s.InvalidateCache(tenantID)
	return nil
}

// SoftDeleteApplicationMenus 软删除应用下全部菜单
func (s *MenuService) SoftDeleteApplicationMenus(tenantID uint, appUUID string) error {
	err := s.db.Where("tenant_id = ? AND application_uuid = ?", tenantID, appUUID).
		Delete(&models.Menu{}).Error
	if err != nil {
		return err
	}
	s.InvalidateCache(tenantID)
	return nil
}
