package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApprovalProcess 审批流程模板
// Nodes为设计器产出的节点列表 {nodes: [{id, type, data{...}}]}
type ApprovalProcess struct {
	BaseModel
	TenantID    uint           `json:"tenant_id" gorm:"not null;index:idx_approval_process_tenant_code"`
	Code        string         `json:"code" gorm:"size:100;not null;index:idx_approval_process_tenant_code"` // 租户内唯一
	Name        string         `json:"name" gorm:"size:100;not null"`
	Description string         `json:"description" gorm:"size:255"`
	Nodes       datatypes.JSON `json:"nodes" gorm:"type:jsonb"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
}

// TableName 表名
func (p *ApprovalProcess) TableName() string {
	return "core_approval_processes"
}

// 审批方式常量
const (
	ApprovalTypeAnd = "AND" // 会签，全部通过
	ApprovalTypeOr  = "OR"  // 或签，任一通过
)

// ProcessNode 流程节点
type ProcessNode struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data ProcessNodeData `json:"data"`
}

// ProcessNodeData 节点数据
type ProcessNodeData struct {
	Label        string        `json:"label,omitempty"`
	ApproverType string        `json:"approver_type,omitempty"` // user/role
	ApprovalType string        `json:"approval_type,omitempty"` // AND/OR
	UserIDs      []uint        `json:"user_ids,omitempty"`
	Edges        []ProcessEdge `json:"edges,omitempty"`
}

// ProcessEdge 节点出边
type ProcessEdge struct {
	Target string `json:"target"`
}

// ApprovalInstance 审批实例
type ApprovalInstance struct {
	BaseModel
	TenantID          uint              `json:"tenant_id" gorm:"not null;index"`
	ProcessID         uint              `json:"process_id" gorm:"not null;index"`
	Title             string            `json:"title" gorm:"size:255;not null"`
	Data              datatypes.JSONMap `json:"data" gorm:"type:jsonb"` // 含 entity_type/entity_id/entity_uuid
	Status            string            `json:"status" gorm:"size:20;default:'pending';index"`
	CurrentNode       *string           `json:"current_node" gorm:"size:100"` // pending时非空，终态为空
	CurrentApproverID *uint             `json:"current_approver_id"`
	SubmitterID       uint              `json:"submitter_id" gorm:"not null;index"`
	SubmittedAt       time.Time         `json:"submitted_at"`
	CompletedAt       *time.Time        `json:"completed_at"`

	Process *ApprovalProcess `gorm:"foreignKey:ProcessID" json:"process,omitempty"`
	Tasks   []ApprovalTask   `gorm:"foreignKey:InstanceID" json:"tasks,omitempty"`
}

// TableName 表名
func (i *ApprovalInstance) TableName() string {
	return "core_approval_instances"
}

// 审批状态常量，实例与任务共用
const (
	ApprovalStatusPending   = "pending"
	ApprovalStatusApproved  = "approved"
	ApprovalStatusRejected  = "rejected"
	ApprovalStatusCancelled = "cancelled"
)

// ApprovalTask 审批任务，节点上每个审批人一条
type ApprovalTask struct {
	BaseModel
	TenantID   uint       `json:"tenant_id" gorm:"not null;index"`
	InstanceID uint       `json:"instance_id" gorm:"not null;index"`
	NodeID     string     `json:"node_id" gorm:"size:100;not null"`
	ApproverID uint       `json:"approver_id" gorm:"not null;index"`
	Status     string     `json:"status" gorm:"size:20;default:'pending';index"`
	ActionAt   *time.Time `json:"action_at"`
	Comment    string     `json:"comment" gorm:"size:500"`

	Instance *ApprovalInstance `gorm:"foreignKey:InstanceID" json:"instance,omitempty"`
	Approver *User             `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
}

// TableName 表名
func (t *ApprovalTask) TableName() string {
	return "core_approval_tasks"
}

// ApprovalHistory 审批流转记录，只追加
type ApprovalHistory struct {
	ID           uint      `json:"-" gorm:"primarykey"`
	UUID         string    `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	TenantID     uint      `json:"tenant_id" gorm:"not null;index"`
	InstanceID   uint      `json:"instance_id" gorm:"not null;index"`
	Action       string    `json:"action" gorm:"size:50;not null"` // submit/approve/reject/transfer/cancel
	ActionBy     uint      `json:"action_by" gorm:"not null"`
	ActionAt     time.Time `json:"action_at"`
	Comment      string    `json:"comment" gorm:"size:500"`
	FromNode     string    `json:"from_node" gorm:"size:100"`
	ToNode       string    `json:"to_node" gorm:"size:100"`
	FromApprover *uint     `json:"from_approver"`
	ToApprover   *uint     `json:"to_approver"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 表名
func (h *ApprovalHistory) TableName() string {
	return "core_approval_histories"
}

// BeforeCreate 创建前自动生成UUID
func (h *ApprovalHistory) BeforeCreate(tx *gorm.DB) error {
	if h.UUID == "" {
		h.UUID = uuid.New().String()
	}
	return nil
}

// 审批操作常量
const (
	ApprovalActionSubmit   = "submit"
	ApprovalActionApprove  = "approve"
	ApprovalActionReject   = "reject"
	ApprovalActionTransfer = "transfer"
	ApprovalActionCancel   = "cancel"
)
