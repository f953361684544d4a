package services

import (
	"time"

	"riveredge/internal/models"

	"gorm.io/gorm"
)

// ApprovalAdapter 审批终态回写业务单据的适配器
type ApprovalAdapter func(db *gorm.DB, tenantID, entityID uint, status string, reviewerID uint) error

// 按entity_type注册，避免审批引擎反向依赖业务模块
var approvalAdapters = map[string]ApprovalAdapter{
	"sales_order":    reviewWriteback(&models.SalesOrder{}),
	"purchase_order": reviewWriteback(&models.PurchaseOrder{}),
	"demand":         reviewWriteback(&models.Demand{}),
	"work_order":     reviewWriteback(&models.WorkOrder{}),
}

// RegisterApprovalAdapter 注册实体适配器
func RegisterApprovalAdapter(entityType string, adapter ApprovalAdapter) {
	approvalAdapters[entityType] = adapter
}

// reviewWriteback 通用回写：审批人、时间、审批结论与单据状态
func reviewWriteback(model interface{}) ApprovalAdapter {
	return func(db *gorm.DB, tenantID, entityID uint, status string, reviewerID uint) error {
		var reviewer models.User
		reviewerName := ""
		if err := db.Where("tenant_id = ? AND id = ?", tenantID, reviewerID).First(&reviewer).Error; err == nil {
			reviewerName = reviewer.Name
			if reviewerName == "" {
				reviewerName = reviewer.Username
			}
		}

		docStatus := "approved"
		if status == models.ApprovalStatusRejected {
			docStatus = "rejected"
		}

		now := time.Now()
		return db.Model(model).
			Where("tenant_id = ? AND id = ?", tenantID, entityID).
			Updates(map[string]interface{}{
				"reviewer_id":   reviewerID,
				"reviewer_name": reviewerName,
				"review_time":   now,
				"review_status": docStatus,
				"status":        docStatus,
				"updated_by":    reviewerID,
			}).Error
	}
}
