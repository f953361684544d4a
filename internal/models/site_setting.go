package models

import "gorm.io/datatypes"

// SiteSetting 租户站点设置
type SiteSetting struct {
	BaseModel
	TenantID uint              `json:"tenant_id" gorm:"not null;uniqueIndex"`
	Settings datatypes.JSONMap `json:"settings" gorm:"type:jsonb"`
}

// TableName 表名
func (s *SiteSetting) TableName() string {
	return "core_site_settings"
}

// SystemParameter 租户系统参数，键值对
type SystemParameter struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index:idx_sysparam_tenant_key"`
	Key         string `json:"key" gorm:"size:100;not null;index:idx_sysparam_tenant_key"`
	Value       string `json:"value" gorm:"size:1000"`
	Description string `json:"description" gorm:"size:255"`
}

// TableName 表名
func (p *SystemParameter) TableName() string {
	return "core_system_parameters"
}

// Language 语言配置
type Language struct {
	BaseModel
	TenantID  uint   `json:"tenant_id" gorm:"not null;index"`
	Code      string `json:"code" gorm:"size:20;not null"` // 如 zh-CN、en-US
	Name      string `json:"name" gorm:"size:50;not null"`
	IsDefault bool   `json:"is_default" gorm:"default:false"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (l *Language) TableName() string {
	return "core_languages"
}
