package models

import (
	"time"

	"gorm.io/datatypes"
)

// CodeRule 编码规则模型
// 组件列表为权威表示；expression是由组件推导出的旧式模板，读取时兼容两者
type CodeRule struct {
	BaseModel
	TenantID       uint           `json:"tenant_id" gorm:"not null;index:idx_code_rule_tenant_code"`
	Code           string         `json:"code" gorm:"size:100;not null;index:idx_code_rule_tenant_code"` // 租户内唯一
	Name           string         `json:"name" gorm:"size:100;not null"`
	Description    string         `json:"description" gorm:"size:255"`
	Expression     string         `json:"expression" gorm:"size:500"`       // 旧式模板，如 GD{YYYY}{MM}{SEQ:4}
	RuleComponents datatypes.JSON `json:"rule_components" gorm:"type:jsonb"` // 有序组件列表
	SeqStart       int64          `json:"seq_start" gorm:"default:1"`
	SeqStep        int64          `json:"seq_step" gorm:"default:1"`
	SeqResetRule   string         `json:"seq_reset_rule" gorm:"size:20;default:'never'"` // never/daily/monthly/yearly
	IsSystem       bool           `json:"is_system" gorm:"default:false"`
	IsActive       bool           `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (r *CodeRule) TableName() string {
	return "core_code_rules"
}

// 序号重置周期常量
const (
	ResetNever   = "never"
	ResetDaily   = "daily"
	ResetMonthly = "monthly"
	ResetYearly  = "yearly"
)

// 组件类型常量
const (
	ComponentFixedText = "fixed_text"
	ComponentDate      = "date"
	ComponentFieldRef  = "field_ref"
	ComponentDictRef   = "dict_ref"
	ComponentCounter   = "counter"
)

// RuleComponent 编码规则组件
type RuleComponent struct {
	Type        string   `json:"type"`
	Value       string   `json:"value,omitempty"`        // fixed_text 固定文本
	Format      string   `json:"format,omitempty"`       // date 格式，如 YYYY、MM
	FieldName   string   `json:"field_name,omitempty"`   // field_ref 上下文字段名
	DictCode    string   `json:"dict_code,omitempty"`    // dict_ref 字典代码
	Width       int      `json:"width,omitempty"`        // counter 位数
	Initial     int64    `json:"initial,omitempty"`      // counter 初始值
	ResetCycle  string   `json:"reset_cycle,omitempty"`  // counter 重置周期
	ScopeFields []string `json:"scope_fields,omitempty"` // counter 作用域字段
}

// CodeSequence 编码序号表，(规则, 租户, 作用域)唯一
type CodeSequence struct {
	ID         uint       `json:"-" gorm:"primarykey"`
	CodeRuleID uint       `json:"code_rule_id" gorm:"not null;uniqueIndex:idx_seq_rule_tenant_scope"`
	TenantID   uint       `json:"tenant_id" gorm:"not null;uniqueIndex:idx_seq_rule_tenant_scope"`
	ScopeKey   string     `json:"scope_key" gorm:"size:255;not null;default:'';uniqueIndex:idx_seq_rule_tenant_scope"`
	CurrentSeq int64      `json:"current_seq" gorm:"default:0"`
	ResetDate  *time.Time `json:"reset_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName 表名
func (s *CodeSequence) TableName() string {
	return "core_code_sequences"
}
