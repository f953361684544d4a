package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel 基础模型
// 内部自增ID不对外暴露，外部统一使用UUID
type BaseModel struct {
	ID        uint           `json:"-" gorm:"primarykey"`
	UUID      string         `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate 创建前自动生成UUID
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.UUID == "" {
		m.UUID = uuid.New().String()
	}
	return nil
}

// TenantContext 请求级租户上下文，由认证中间件构造后显式传入服务层
type TenantContext struct {
	TenantID          uint
	UserID            uint
	Username          string
	IsInfraAdmin      bool
	IsTenantAdmin     bool
	PermissionVersion int64
}
