package models

import (
	"time"

	"gorm.io/datatypes"
)

// MessageLog 消息发送记录
type MessageLog struct {
	BaseModel
	TenantID    uint              `json:"tenant_id" gorm:"not null;index"`
	Channel     string            `json:"channel" gorm:"size:20;not null"` // email/sms/in_app
	Recipient   string            `json:"recipient" gorm:"size:255;not null"`
	RecipientID *uint             `json:"recipient_id" gorm:"index"` // 站内消息接收人
	Subject     string            `json:"subject" gorm:"size:255"`
	Content     string            `json:"content" gorm:"type:text"`
	Extra       datatypes.JSONMap `json:"extra" gorm:"type:jsonb"`
	Status      string            `json:"status" gorm:"size:20;default:'pending';index"` // pending/sent/failed
	Error       string            `json:"error" gorm:"size:1000"`
	SentAt      *time.Time        `json:"sent_at"`
	IsRead      bool              `json:"is_read" gorm:"default:false"` // 站内消息已读标记
}

// TableName 表名
func (m *MessageLog) TableName() string {
	return "core_message_logs"
}

// 消息通道常量
const (
	MessageChannelEmail = "email"
	MessageChannelSMS   = "sms"
	MessageChannelInApp = "in_app"
)

// 消息状态常量
const (
	MessageStatusPending = "pending"
	MessageStatusSent    = "sent"
	MessageStatusFailed  = "failed"
)
