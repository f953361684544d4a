package models

import "time"

// OperationLog 操作日志
type OperationLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TenantID  uint      `json:"tenant_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Username  string    `json:"username" gorm:"size:50"`
	Module    string    `json:"module" gorm:"size:50"`
	Action    string    `json:"action" gorm:"size:50"`
	Target    string    `json:"target" gorm:"size:255"`
	Detail    string    `json:"detail" gorm:"size:1000"`
	IP        string    `json:"ip" gorm:"size:50"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 表名
func (l *OperationLog) TableName() string {
	return "core_operation_logs"
}

// LoginLog 登录日志
type LoginLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	TenantID  uint      `json:"tenant_id" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Username  string    `json:"username" gorm:"size:50"`
	IP        string    `json:"ip" gorm:"size:50"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	Success   bool      `json:"success"`
	Message   string    `json:"message" gorm:"size:255"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 表名
func (l *LoginLog) TableName() string {
	return "core_login_logs"
}
