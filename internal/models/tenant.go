package models

import (
	"time"

	"gorm.io/datatypes"
)

// Tenant 租户模型 - 贫血模型，只包含数据结构
type Tenant struct {
	BaseModel
	Name       string            `json:"name" gorm:"not null;size:100"`
	Domain     string            `json:"domain" gorm:"uniqueIndex;not null;size:100"` // 租户域名，全局唯一
	Status     string            `json:"status" gorm:"default:'active';size:20"`
	Plan       string            `json:"plan" gorm:"size:50;default:'standard'"` // 订阅套餐
	Settings   datatypes.JSONMap `json:"settings" gorm:"type:jsonb"`             // 租户级配置
	MaxUsers   int               `json:"max_users" gorm:"default:50"`
	MaxStorage int64             `json:"max_storage" gorm:"default:10737418240"` // 存储上限（字节）
	ExpiresAt  *time.Time        `json:"expires_at"`

	UserCount int `json:"user_count" gorm:"-"` // 用户数量，不存储在数据库中
}

// TableName 表名
func (t *Tenant) TableName() string {
	return "core_tenants"
}

// 租户状态常量
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
	TenantStatusExpired  = "expired"
)

// CanLogin 租户是否允许登录
func (t *Tenant) CanLogin() bool {
	return t.Status == TenantStatusActive
}
