package services

import (
	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/logger"

	"gorm.io/gorm"
)

type OperationLogService struct {
	db *gorm.DB
}

func NewOperationLogService() *OperationLogService {
	return &OperationLogService{db: database.GetDB()}
}

// NewOperationLogServiceWith 注入依赖的构造方式（测试用）
func NewOperationLogServiceWith(db *gorm.DB) *OperationLogService {
	return &OperationLogService{db: db}
}

// Record 写入操作日志，失败只记录不上抛
func (s *OperationLogService) Record(ctx *models.TenantContext, module, action, target, detail, ip string) {
	log := models.OperationLog{
		TenantID: ctx.TenantID,
		UserID:   ctx.UserID,
		Username: ctx.Username,
		Module:   module,
		Action:   action,
		Target:   target,
		Detail:   detail,
		IP:       ip,
	}
	if err := s.db.Create(&log).Error; err != nil {
		logger.GetLogger().WithError(err).Warn("写入操作日志失败")
	}
}

// ListOperationLogs 查询操作日志
func (s *OperationLogService) ListOperationLogs(tenantID uint, module, action string, page, pageSize int) ([]models.OperationLog, int64, error) {
	var logs []models.OperationLog
	var total int64

	query := s.db.Model(&models.OperationLog{}).Where("tenant_id = ?", tenantID)
	if module != "" {
		query = query.Where("module = ?", module)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ListLoginLogs 查询登录日志
func (s *OperationLogService) ListLoginLogs(tenantID uint, username string, page, pageSize int) ([]models.LoginLog, int64, error) {
	var logs []models.LoginLog
	var total int64

	query := s.db.Model(&models.LoginLog{}).Where("tenant_id = ?", tenantID)
	if username != "" {
		query = query.Where("username ILIKE ?", "%"+username+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
