package models

import "time"

// Role 角色模型
type Role struct {
	BaseModel
	TenantID    uint   `gorm:"not null;index" json:"tenant_id"`
	Code        string `gorm:"size:100;not null" json:"code"` // 角色代码，如 "SYSTEM_ADMIN"
	Name        string `gorm:"size:100;not null" json:"name"` // 角色名称，如 "系统管理员"
	Description string `gorm:"size:255" json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"` // 系统角色不可删除、不可改属性
	Status      string `gorm:"size:20;default:'active'" json:"status"`

	// 关联关系
	Tenant      *Tenant      `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Permissions []Permission `gorm:"many2many:core_role_permissions;" json:"permissions,omitempty"`
}

// TableName 表名
func (r *Role) TableName() string {
	return "core_roles"
}

// 角色状态常量
const (
	RoleStatusActive   = "active"
	RoleStatusInactive = "inactive"
)

// 系统管理员角色识别：命中任一代码或名称即视为系统管理员角色
var SystemAdminRoleCodes = []string{"ADMIN", "SYSTEM_ADMIN", "SUPER_ADMIN"}

const SystemAdminRoleName = "系统管理员"

// IsSystemAdminRole 是否系统管理员角色
func (r *Role) IsSystemAdminRole() bool {
	for _, code := range SystemAdminRoleCodes {
		if r.Code == code {
			return true
		}
	}
	return r.Name == SystemAdminRoleName
}

// Permission 权限模型
type Permission struct {
	BaseModel
	TenantID       uint   `gorm:"not null;index:idx_perm_tenant_code" json:"tenant_id"`
	Code           string `gorm:"size:100;not null;index:idx_perm_tenant_code" json:"code"` // 权限代码，如 "user:create"，租户内唯一
	Name           string `gorm:"size:100;not null" json:"name"`
	Description    string `gorm:"size:255" json:"description"`
	Resource       string `gorm:"size:50;not null" json:"resource"` // 资源，如 "user", "menu"
	Action         string `gorm:"size:50;not null" json:"action"`   // 操作，如 "create", "read"
	PermissionType string `gorm:"size:20;default:'function'" json:"permission_type"`
}

// TableName 表名
func (p *Permission) TableName() string {
	return "core_permissions"
}

// 权限类型常量
const (
	PermissionTypeFunction = "function"
	PermissionTypeData     = "data"
	PermissionTypeMenu     = "menu"
)

// 权限操作常量
const (
	ActionCreate = "create" // 创建
	ActionRead   = "read"   // 读取
	ActionUpdate = "update" // 更新
	ActionDelete = "delete" // 删除
	ActionList   = "list"   // 列表
)

// RolePermission 角色权限关联表
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	PermissionID uint      `gorm:"not null;index" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 表名
func (rp *RolePermission) TableName() string {
	return "core_role_permissions"
}

// UserRole 用户角色关联表
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	RoleID    uint      `gorm:"not null;index" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 表名
func (ur *UserRole) TableName() string {
	return "core_user_roles"
}
