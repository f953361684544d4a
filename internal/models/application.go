package models

import "gorm.io/datatypes"

// Application 应用（插件）模型
type Application struct {
	BaseModel
	TenantID       uint           `json:"tenant_id" gorm:"not null;index:idx_app_tenant_code"`
	Code           string         `json:"code" gorm:"size:100;not null;index:idx_app_tenant_code"` // 租户内唯一
	Name           string         `json:"name" gorm:"size:100;not null"`
	Version        string         `json:"version" gorm:"size:50"`
	Description    string         `json:"description" gorm:"size:500"`
	Icon           string         `json:"icon" gorm:"size:255"`
	RoutePath      string         `json:"route_path" gorm:"size:255"`
	EntryPoint     string         `json:"entry_point" gorm:"size:255"`
	MenuConfig     datatypes.JSON `json:"menu_config" gorm:"type:jsonb"` // 嵌套菜单树
	PermissionCode string         `json:"permission_code" gorm:"size:100"`
	IsSystem       bool           `json:"is_system" gorm:"default:false"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
	IsInstalled    bool           `json:"is_installed" gorm:"default:false"`
	SortOrder      int            `json:"sort_order" gorm:"default:0"`
	IsCustomName   bool           `json:"is_custom_name" gorm:"default:false"` // 用户改过名称，扫描不覆盖
	IsCustomSort   bool           `json:"is_custom_sort" gorm:"default:false"` // 用户改过排序，扫描不覆盖
}

// TableName 表名
func (a *Application) TableName() string {
	return "core_applications"
}
