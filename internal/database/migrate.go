package database

import (
	"riveredge/internal/models"
	"riveredge/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		// 租户与身份
		&models.Tenant{},
		&models.User{},
		&models.Department{},
		&models.Position{},
		// RBAC
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserRole{},
		// 应用与菜单
		&models.Application{},
		&models.Menu{},
		// 编码规则
		&models.CodeRule{},
		&models.CodeSequence{},
		// 审批流
		&models.ApprovalProcess{},
		&models.ApprovalInstance{},
		&models.ApprovalTask{},
		&models.ApprovalHistory{},
		// 集成与数据集
		&models.IntegrationConfig{},
		&models.Dataset{},
		&models.API{},
		// 单据与追溯
		&models.DocumentRelation{},
		&models.SalesOrder{},
		&models.SalesForecast{},
		&models.PurchaseOrder{},
		&models.Demand{},
		&models.DemandComputation{},
		&models.ProductionPlan{},
		&models.WorkOrder{},
		&models.ProductionPicking{},
		&models.ReportingRecord{},
		&models.FinishedGoodsReceipt{},
		&models.PurchaseReceipt{},
		&models.IncomingInspection{},
		&models.ProcessInspection{},
		&models.FinishedGoodsInspection{},
		&models.SalesDelivery{},
		&models.Payable{},
		&models.Receivable{},
		&models.Material{},
		// 基础设施
		&models.MessageLog{},
		&models.File{},
		&models.SiteSetting{},
		&models.SystemParameter{},
		&models.Language{},
		&models.Dictionary{},
		&models.DictionaryItem{},
		&models.OperationLog{},
		&models.LoginLog{},
	)

	if err != nil {
		appLogger.Errorf("Database migration failed: %v", err)
		return err
	}

	appLogger.Info("Database migration completed successfully")

	return nil
}
