package models

import "time"

// DocumentRelation 单据关联表
// 当业务表的外键列不足以表达边时使用的通用边表
type DocumentRelation struct {
	ID         uint      `json:"-" gorm:"primarykey"`
	TenantID   uint      `json:"tenant_id" gorm:"not null;index:idx_doc_rel_source;index:idx_doc_rel_target"`
	SourceType string    `json:"source_type" gorm:"size:50;not null;index:idx_doc_rel_source"`
	SourceID   uint      `json:"source_id" gorm:"not null;index:idx_doc_rel_source"`
	TargetType string    `json:"target_type" gorm:"size:50;not null;index:idx_doc_rel_target"`
	TargetID   uint      `json:"target_id" gorm:"not null;index:idx_doc_rel_target"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 表名
func (r *DocumentRelation) TableName() string {
	return "core_document_relations"
}

// 单据类型常量
const (
	DocSalesOrder              = "sales_order"
	DocSalesForecast           = "sales_forecast"
	DocPurchaseOrder           = "purchase_order"
	DocDemand                  = "demand"
	DocDemandComputation       = "demand_computation"
	DocProductionPlan          = "production_plan"
	DocWorkOrder               = "work_order"
	DocProductionPicking       = "production_picking"
	DocReportingRecord         = "reporting_record"
	DocFinishedGoodsReceipt    = "finished_goods_receipt"
	DocPurchaseReceipt         = "purchase_receipt"
	DocIncomingInspection      = "incoming_inspection"
	DocProcessInspection       = "process_inspection"
	DocFinishedGoodsInspection = "finished_goods_inspection"
	DocSalesDelivery           = "sales_delivery"
	DocPayable                 = "payable"
	DocReceivable              = "receivable"
	DocMaterial                = "material"
)

// ReviewFields 审批回写字段，由审批回调写入业务单据
type ReviewFields struct {
	ReviewerID   *uint      `json:"reviewer_id"`
	ReviewerName string     `json:"reviewer_name" gorm:"size:100"`
	ReviewTime   *time.Time `json:"review_time"`
	ReviewStatus string     `json:"review_status" gorm:"size:20"` // approved/rejected
	UpdatedBy    *uint      `json:"updated_by"`
}

// SalesOrder 销售订单
type SalesOrder struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index:idx_sales_order_tenant_code"`
	Code         string `json:"code" gorm:"size:100;not null;index:idx_sales_order_tenant_code"`
	CustomerName string `json:"customer_name" gorm:"size:200"`
	Status       string `json:"status" gorm:"size:20;default:'draft'"`
	ReviewFields `gorm:"embedded"`
}

// TableName 表名
func (s *SalesOrder) TableName() string {
	return "core_sales_orders"
}

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index:idx_purchase_order_tenant_code"`
	Code         string `json:"code" gorm:"size:100;not null;index:idx_purchase_order_tenant_code"`
	SupplierName string `json:"supplier_name" gorm:"size:200"`
	Status       string `json:"status" gorm:"size:20;default:'draft'"`
	ReviewFields `gorm:"embedded"`
}

// TableName 表名
func (p *PurchaseOrder) TableName() string {
	return "core_purchase_orders"
}

// Demand 需求单，来源为销售订单或销售预测
type Demand struct {
	BaseModel
	TenantID        uint   `json:"tenant_id" gorm:"not null;index:idx_demand_tenant_code"`
	Code            string `json:"code" gorm:"size:100;not null;index:idx_demand_tenant_code"`
	Name            string `json:"name" gorm:"size:200"`
	SalesOrderID    *uint  `json:"sales_order_id" gorm:"index"`
	SalesForecastID *uint  `json:"sales_forecast_id" gorm:"index"`
	Status          string `json:"status" gorm:"size:20;default:'draft'"`
	ReviewFields    `gorm:"embedded"`
}

// TableName 表名
func (d *Demand) TableName() string {
	return "core_demands"
}

// DemandComputation 需求运算单
type DemandComputation struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;index:idx_demand_comp_tenant_code"`
	Code     string `json:"code" gorm:"size:100;not null;index:idx_demand_comp_tenant_code"`
	DemandID *uint  `json:"demand_id" gorm:"index"`
	Status   string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (c *DemandComputation) TableName() string {
	return "core_demand_computations"
}

// ProductionPlan 生产计划
type ProductionPlan struct {
	BaseModel
	TenantID       uint   `json:"tenant_id" gorm:"not null;index:idx_plan_tenant_code"`
	Code           string `json:"code" gorm:"size:100;not null;index:idx_plan_tenant_code"`
	Name           string `json:"name" gorm:"size:200"`
	DemandID       *uint  `json:"demand_id" gorm:"index"`
	Status         string `json:"status" gorm:"size:20;default:'draft'"` // draft/submitted/locked/executing
	NeedsRecompute bool   `json:"needs_recompute" gorm:"default:false"`  // 上游变更后待重算
}

// TableName 表名
func (p *ProductionPlan) TableName() string {
	return "core_production_plans"
}

// 生产计划状态常量
const (
	PlanStatusDraft     = "draft"
	PlanStatusSubmitted = "submitted"
	PlanStatusLocked    = "locked"
	PlanStatusExecuting = "executing"
)

// WorkOrder 工单
type WorkOrder struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index:idx_work_order_tenant_code"`
	Code         string `json:"code" gorm:"size:100;not null;index:idx_work_order_tenant_code"`
	Name         string `json:"name" gorm:"size:200"`
	SalesOrderID *uint  `json:"sales_order_id" gorm:"index"`
	PlanID       *uint  `json:"plan_id" gorm:"index"`
	Status       string `json:"status" gorm:"size:20;default:'draft'"`
	ReviewFields `gorm:"embedded"`
}

// TableName 表名
func (w *WorkOrder) TableName() string {
	return "core_work_orders"
}

// SalesForecast 销售预测
type SalesForecast struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index:idx_forecast_tenant_code"`
	Code         string `json:"code" gorm:"size:100;not null;index:idx_forecast_tenant_code"`
	Name         string `json:"name" gorm:"size:200"`
	Status       string `json:"status" gorm:"size:20;default:'draft'"`
	ReviewFields `gorm:"embedded"`
}

// TableName 表名
func (f *SalesForecast) TableName() string {
	return "core_sales_forecasts"
}

// ProductionPicking 生产领料单
type ProductionPicking struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index:idx_picking_tenant_code"`
	Code        string `json:"code" gorm:"size:100;not null;index:idx_picking_tenant_code"`
	WorkOrderID *uint  `json:"work_order_id" gorm:"index"`
	Status      string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (p *ProductionPicking) TableName() string {
	return "core_production_pickings"
}

// ReportingRecord 报工记录
type ReportingRecord struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index:idx_reporting_tenant_code"`
	Code        string `json:"code" gorm:"size:100;not null;index:idx_reporting_tenant_code"`
	WorkOrderID *uint  `json:"work_order_id" gorm:"index"`
	PickingID   *uint  `json:"picking_id" gorm:"index"`
	Status      string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (r *ReportingRecord) TableName() string {
	return "core_reporting_records"
}

// FinishedGoodsReceipt 成品入库单
type FinishedGoodsReceipt struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index:idx_fg_receipt_tenant_code"`
	Code         string `json:"code" gorm:"size:100;not null;index:idx_fg_receipt_tenant_code"`
	WorkOrderID  *uint  `json:"work_order_id" gorm:"index"`
	SalesOrderID *uint  `json:"sales_order_id" gorm:"index"`
	Status       string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (r *FinishedGoodsReceipt) TableName() string {
	return "core_finished_goods_receipts"
}

// IncomingInspection 来料检验单
type IncomingInspection struct {
	BaseModel
	TenantID          uint   `json:"tenant_id" gorm:"not null;index:idx_incoming_insp_tenant_code"`
	Code              string `json:"code" gorm:"size:100;not null;index:idx_incoming_insp_tenant_code"`
	PurchaseReceiptID *uint  `json:"purchase_receipt_id" gorm:"index"`
	Status            string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (i *IncomingInspection) TableName() string {
	return "core_incoming_inspections"
}

// ProcessInspection 过程检验单
type ProcessInspection struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index:idx_process_insp_tenant_code"`
	Code        string `json:"code" gorm:"size:100;not null;index:idx_process_insp_tenant_code"`
	WorkOrderID *uint  `json:"work_order_id" gorm:"index"`
	Status      string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (i *ProcessInspection) TableName() string {
	return "core_process_inspections"
}

// FinishedGoodsInspection 成品检验单
type FinishedGoodsInspection struct {
	BaseModel
	TenantID    uint   `json:"tenant_id" gorm:"not null;index:idx_fg_insp_tenant_code"`
	Code        string `json:"code" gorm:"size:100;not null;index:idx_fg_insp_tenant_code"`
	WorkOrderID *uint  `json:"work_order_id" gorm:"index"`
	Status      string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (i *FinishedGoodsInspection) TableName() string {
	return "core_finished_goods_inspections"
}

// PurchaseReceipt 采购收货单
type PurchaseReceipt struct {
	BaseModel
	TenantID        uint   `json:"tenant_id" gorm:"not null;index:idx_receipt_tenant_code"`
	Code            string `json:"code" gorm:"size:100;not null;index:idx_receipt_tenant_code"`
	PurchaseOrderID *uint  `json:"purchase_order_id" gorm:"index"`
	Status          string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (r *PurchaseReceipt) TableName() string {
	return "core_purchase_receipts"
}

// SalesDelivery 销售发货单
type SalesDelivery struct {
	BaseModel
	TenantID     uint   `json:"tenant_id" gorm:"not null;index:idx_delivery_tenant_code"`
	Code         string `json:"code" gorm:"size:100;not null;index:idx_delivery_tenant_code"`
	SalesOrderID *uint  `json:"sales_order_id" gorm:"index"`
	Status       string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (d *SalesDelivery) TableName() string {
	return "core_sales_deliveries"
}

// Payable 应付单，来源单据用 source_type + source_id 表示
type Payable struct {
	BaseModel
	TenantID   uint   `json:"tenant_id" gorm:"not null;index:idx_payable_tenant_code"`
	Code       string `json:"code" gorm:"size:100;not null;index:idx_payable_tenant_code"`
	SourceType string `json:"source_type" gorm:"size:50;index:idx_payable_source"`
	SourceID   *uint  `json:"source_id" gorm:"index:idx_payable_source"`
	Status     string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (p *Payable) TableName() string {
	return "core_payables"
}

// Receivable 应收单
type Receivable struct {
	BaseModel
	TenantID   uint   `json:"tenant_id" gorm:"not null;index:idx_receivable_tenant_code"`
	Code       string `json:"code" gorm:"size:100;not null;index:idx_receivable_tenant_code"`
	SourceType string `json:"source_type" gorm:"size:50;index:idx_receivable_source"`
	SourceID   *uint  `json:"source_id" gorm:"index:idx_receivable_source"`
	Status     string `json:"status" gorm:"size:20;default:'draft'"`
}

// TableName 表名
func (r *Receivable) TableName() string {
	return "core_receivables"
}

// Material 物料
type Material struct {
	BaseModel
	TenantID uint   `json:"tenant_id" gorm:"not null;index:idx_material_tenant_code"`
	Code     string `json:"code" gorm:"size:100;not null;index:idx_material_tenant_code"`
	Name     string `json:"name" gorm:"size:200"`
	Spec     string `json:"spec" gorm:"size:200"`
	Status   string `json:"status" gorm:"size:20;default:'active'"`
}

// TableName 表名
func (m *Material) TableName() string {
	return "core_materials"
}
