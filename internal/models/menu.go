package models

import "gorm.io/datatypes"

// Menu 菜单模型，ParentID构成租户内菜单树
type Menu struct {
	BaseModel
	TenantID        uint              `json:"tenant_id" gorm:"not null;index"`
	Name            string            `json:"name" gorm:"size:100;not null"`
	Path            string            `json:"path" gorm:"size:255"`
	Icon            string            `json:"icon" gorm:"size:100"`
	Component       string            `json:"component" gorm:"size:255"`
	PermissionCode  *string           `json:"permission_code" gorm:"size:100"` // 可为空，引用的权限删除时置空
	ApplicationUUID *string           `json:"application_uuid" gorm:"size:36;index"`
	ParentID        *uint             `json:"parent_id" gorm:"index"`
	SortOrder       int               `json:"sort_order" gorm:"default:0"`
	IsActive        bool              `json:"is_active" gorm:"default:true"`
	IsExternal      bool              `json:"is_external" gorm:"default:false"`
	ExternalURL     string            `json:"external_url" gorm:"size:500"`
	Meta            datatypes.JSONMap `json:"meta" gorm:"type:jsonb"`

	Children []*Menu `json:"children,omitempty" gorm:"-"`
}

// TableName 表名
func (m *Menu) TableName() string {
	return "core_menus"
}
