package services

import (
	"fmt"

	"riveredge/internal/database"
	"riveredge/internal/models"

	"gorm.io/gorm"
)

// DocumentNode 追溯图中的单据节点
type DocumentNode struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
	UUID string `json:"uuid"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// DocumentChainNode 链路追溯的嵌套节点
type DocumentChainNode struct {
	DocumentNode
	Upstream   []*DocumentChainNode `json:"upstream,omitempty"`
	Downstream []*DocumentChainNode `json:"downstream,omitempty"`
}

// edgeFunc 单据类型的上/下游发现函数
type edgeFunc func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error)

// documentType 单据类型注册项：表、编码列、名称列与两个方向的边发现
type documentType struct {
	table      string
	codeField  string
	nameField  string
	upstream   edgeFunc
	downstream edgeFunc
}

// 每跳结果上限，约束遍历规模
const relationHopLimit = 10

type DocumentRelationService struct {
	db *gorm.DB
}

func NewDocumentRelationService() *DocumentRelationService {
	return &DocumentRelationService{db: database.GetDB()}
}

// NewDocumentRelationServiceWith 注入依赖的构造方式（测试用）
func NewDocumentRelationServiceWith(db *gorm.DB) *DocumentRelationService {
	return &DocumentRelationService{db: db}
}

// 单据类型注册表
// 新增类型 = 一条注册项 + 两个边发现闭包
// 在init中填充：闭包经byID等方法回读本表，复合字面量会形成初始化环
var documentTypes map[string]documentType

func init() {
	documentTypes = map[string]documentType{
		models.DocSalesOrder: {
			table: "core_sales_orders", codeField: "code", nameField: "customer_name",
			upstream: noEdges,
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				nodes, err := s.byForeignKey(models.DocDemand, tenantID, "sales_order_id", id)
				if err != nil {
					return nil, err
				}
				workOrders, err := s.byForeignKey(models.DocWorkOrder, tenantID, "sales_order_id", id)
				if err != nil {
					return nil, err
				}
				deliveries, err := s.byForeignKey(models.DocSalesDelivery, tenantID, "sales_order_id", id)
				if err != nil {
					return nil, err
				}
				receivables, err := s.bySource(models.DocReceivable, tenantID, models.DocSalesOrder, id)
				if err != nil {
					return nil, err
				}
				nodes = append(nodes, workOrders...)
				nodes = append(nodes, deliveries...)
				nodes = append(nodes, receivables...)
				return capNodes(nodes), nil
			},
		},
		models.DocPurchaseOrder: {
			table: "core_purchase_orders", codeField: "code", nameField: "supplier_name",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				return s.fromRelationTable(tenantID, models.DocPurchaseOrder, id, false)
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				receipts, err := s.byForeignKey(models.DocPurchaseReceipt, tenantID, "purchase_order_id", id)
				if err != nil {
					return nil, err
				}
				payables, err := s.bySource(models.DocPayable, tenantID, models.DocPurchaseOrder, id)
				if err != nil {
					return nil, err
				}
				return capNodes(append(receipts, payables...)), nil
			},
		},
		models.DocDemand: {
			table: "core_demands", codeField: "code", nameField: "name",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var demand models.Demand
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&demand).Error; err != nil {
					return nil, nil
				}
				var nodes []DocumentNode
				if demand.SalesOrderID != nil {
					more, err := s.byID(models.DocSalesOrder, tenantID, *demand.SalesOrderID)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, more...)
				}
				if demand.SalesForecastID != nil {
					more, err := s.byID(models.DocSalesForecast, tenantID, *demand.SalesForecastID)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, more...)
				}
				return nodes, nil
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				computations, err := s.byForeignKey(models.DocDemandComputation, tenantID, "demand_id", id)
				if err != nil {
					return nil, err
				}
				plans, err := s.byForeignKey(models.DocProductionPlan, tenantID, "demand_id", id)
				if err != nil {
					return nil, err
				}
				return capNodes(append(computations, plans...)), nil
			},
		},
		models.DocDemandComputation: {
			table: "core_demand_computations", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var comp models.DemandComputation
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&comp).Error; err != nil {
					return nil, nil
				}
				if comp.DemandID == nil {
					return nil, nil
				}
				return s.byID(models.DocDemand, tenantID, *comp.DemandID)
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				// 运算到工单的边只存在于关系表（工单是运算产物）
				return s.fromRelationTable(tenantID, models.DocDemandComputation, id, true)
			},
		},
		models.DocProductionPlan: {
			table: "core_production_plans", codeField: "code", nameField: "name",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var plan models.ProductionPlan
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&plan).Error; err != nil {
					return nil, nil
				}
				if plan.DemandID == nil {
					return nil, nil
				}
				return s.byID(models.DocDemand, tenantID, *plan.DemandID)
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				return s.byForeignKey(models.DocWorkOrder, tenantID, "plan_id", id)
			},
		},
		models.DocWorkOrder: {
			table: "core_work_orders", codeField: "code", nameField: "name",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var wo models.WorkOrder
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&wo).Error; err != nil {
					return nil, nil
				}
				var nodes []DocumentNode
				if wo.SalesOrderID != nil {
					more, err := s.byID(models.DocSalesOrder, tenantID, *wo.SalesOrderID)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, more...)
				}
				if wo.PlanID != nil {
					more, err := s.byID(models.DocProductionPlan, tenantID, *wo.PlanID)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, more...)
				}
				// 工单拆分等边走关系表
				fallback, err := s.fromRelationTable(tenantID, models.DocWorkOrder, id, false)
				if err != nil {
					return nil, err
				}
				return capNodes(append(nodes, fallback...)), nil
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var nodes []DocumentNode
				for _, edge := range []struct {
					docType  string
					fkColumn string
				}{
					{models.DocProductionPicking, "work_order_id"},
					{models.DocReportingRecord, "work_order_id"},
					{models.DocFinishedGoodsReceipt, "work_order_id"},
					{models.DocProcessInspection, "work_order_id"},
					{models.DocFinishedGoodsInspection, "work_order_id"},
				} {
					more, err := s.byForeignKey(edge.docType, tenantID, edge.fkColumn, id)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, more...)
				}
				// 工单拆分、返工等边走关系表
				fallback, err := s.fromRelationTable(tenantID, models.DocWorkOrder, id, true)
				if err != nil {
					return nil, err
				}
				return capNodes(append(nodes, fallback...)), nil
			},
		},
		models.DocPurchaseReceipt: {
			table: "core_purchase_receipts", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var receipt models.PurchaseReceipt
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&receipt).Error; err != nil {
					return nil, nil
				}
				if receipt.PurchaseOrderID == nil {
					return nil, nil
				}
				return s.byID(models.DocPurchaseOrder, tenantID, *receipt.PurchaseOrderID)
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				return s.byForeignKey(models.DocIncomingInspection, tenantID, "purchase_receipt_id", id)
			},
		},
		models.DocSalesDelivery: {
			table: "core_sales_deliveries", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var delivery models.SalesDelivery
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&delivery).Error; err != nil {
					return nil, nil
				}
				if delivery.SalesOrderID == nil {
					return nil, nil
				}
				return s.byID(models.DocSalesOrder, tenantID, *delivery.SalesOrderID)
			},
			downstream: noEdges,
		},
		models.DocPayable: {
			table: "core_payables", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var payable models.Payable
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&payable).Error; err != nil {
					return nil, nil
				}
				if payable.SourceID == nil || payable.SourceType == "" {
					return nil, nil
				}
				return s.byID(payable.SourceType, tenantID, *payable.SourceID)
			},
			downstream: noEdges,
		},
		models.DocReceivable: {
			table: "core_receivables", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var receivable models.Receivable
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&receivable).Error; err != nil {
					return nil, nil
				}
				if receivable.SourceID == nil || receivable.SourceType == "" {
					return nil, nil
				}
				return s.byID(receivable.SourceType, tenantID, *receivable.SourceID)
			},
			downstream: noEdges,
		},
		models.DocSalesForecast: {
			table: "core_sales_forecasts", codeField: "code", nameField: "name",
			upstream: noEdges,
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				return s.byForeignKey(models.DocDemand, tenantID, "sales_forecast_id", id)
			},
		},
		models.DocProductionPicking: {
			table: "core_production_pickings", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var picking models.ProductionPicking
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&picking).Error; err != nil {
					return nil, nil
				}
				if picking.WorkOrderID == nil {
					return nil, nil
				}
				return s.byID(models.DocWorkOrder, tenantID, *picking.WorkOrderID)
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				return s.byForeignKey(models.DocReportingRecord, tenantID, "picking_id", id)
			},
		},
		models.DocReportingRecord: {
			table: "core_reporting_records", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var record models.ReportingRecord
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&record).Error; err != nil {
					return nil, nil
				}
				var nodes []DocumentNode
				if record.WorkOrderID != nil {
					more, err := s.byID(models.DocWorkOrder, tenantID, *record.WorkOrderID)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, more...)
				}
				if record.PickingID != nil {
					more, err := s.byID(models.DocProductionPicking, tenantID, *record.PickingID)
					if err != nil {
						return nil, err
					}
					nodes = append(nodes, more...)
				}
				return nodes, nil
			},
			downstream: noEdges,
		},
		models.DocFinishedGoodsReceipt: {
			table: "core_finished_goods_receipts", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var receipt models.FinishedGoodsReceipt
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&receipt).Error; err != nil {
					return nil, nil
				}
				if receipt.WorkOrderID == nil {
					return nil, nil
				}
				return s.byID(models.DocWorkOrder, tenantID, *receipt.WorkOrderID)
			},
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				// 成品入库到销售发货经由同一销售订单
				var receipt models.FinishedGoodsReceipt
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&receipt).Error; err != nil {
					return nil, nil
				}
				if receipt.SalesOrderID == nil {
					return nil, nil
				}
				return s.byForeignKey(models.DocSalesDelivery, tenantID, "sales_order_id", *receipt.SalesOrderID)
			},
		},
		models.DocIncomingInspection: {
			table: "core_incoming_inspections", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var inspection models.IncomingInspection
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&inspection).Error; err != nil {
					return nil, nil
				}
				if inspection.PurchaseReceiptID == nil {
					return nil, nil
				}
				return s.byID(models.DocPurchaseReceipt, tenantID, *inspection.PurchaseReceiptID)
			},
			downstream: noEdges,
		},
		models.DocProcessInspection: {
			table: "core_process_inspections", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var inspection models.ProcessInspection
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&inspection).Error; err != nil {
					return nil, nil
				}
				if inspection.WorkOrderID == nil {
					return nil, nil
				}
				return s.byID(models.DocWorkOrder, tenantID, *inspection.WorkOrderID)
			},
			downstream: noEdges,
		},
		models.DocFinishedGoodsInspection: {
			table: "core_finished_goods_inspections", codeField: "code", nameField: "code",
			upstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				var inspection models.FinishedGoodsInspection
				if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&inspection).Error; err != nil {
					return nil, nil
				}
				if inspection.WorkOrderID == nil {
					return nil, nil
				}
				return s.byID(models.DocWorkOrder, tenantID, *inspection.WorkOrderID)
			},
			downstream: noEdges,
		},
		models.DocMaterial: {
			table: "core_materials", codeField: "code", nameField: "name",
			upstream: noEdges,
			downstream: func(s *DocumentRelationService, tenantID, id uint) ([]DocumentNode, error) {
				return s.fromRelationTable(tenantID, models.DocMaterial, id, true)
			},
		},
	}
}

func noEdges(*DocumentRelationService, uint, uint) ([]DocumentNode, error) {
	return nil, nil
}

func capNodes(nodes []DocumentNode) []DocumentNode {
	if len(nodes) > relationHopLimit {
		return nodes[:relationHopLimit]
	}
	return nodes
}

// ========== 节点查询 ==========

func (s *DocumentRelationService) byID(docType string, tenantID, id uint) ([]DocumentNode, error) {
	dt, ok := documentTypes[docType]
	if !ok {
		return nil, nil
	}
	var row struct {
		ID   uint
		UUID string
		Code string
		Name string
	}
	err := s.db.Table(dt.table).
		Select(fmt.Sprintf("id, uuid, %s AS code, %s AS name", dt.codeField, dt.nameField)).
		Where("tenant_id = ? AND id = ? AND deleted_at IS NULL", tenantID, id).
		Scan(&row).Error
	if err != nil || row.ID == 0 {
		return nil, err
	}
	return []DocumentNode{{Type: docType, ID: row.ID, UUID: row.UUID, Code: row.Code, Name: row.Name}}, nil
}

func (s *DocumentRelationService) byForeignKey(docType string, tenantID uint, fkColumn string, fkValue uint) ([]DocumentNode, error) {
	dt, ok := documentTypes[docType]
	if !ok {
		return nil, nil
	}
	var rows []struct {
		ID   uint
		UUID string
		Code string
		Name string
	}
	err := s.db.Table(dt.table).
		Select(fmt.Sprintf("id, uuid, %s AS code, %s AS name", dt.codeField, dt.nameField)).
		Where(fmt.Sprintf("tenant_id = ? AND %s = ? AND deleted_at IS NULL", fkColumn), tenantID, fkValue).
		Limit(relationHopLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	nodes := make([]DocumentNode, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, DocumentNode{Type: docType, ID: row.ID, UUID: row.UUID, Code: row.Code, Name: row.Name})
	}
	return nodes, nil
}

func (s *DocumentRelationService) bySource(docType string, tenantID uint, sourceType string, sourceID uint) ([]DocumentNode, error) {
	dt, ok := documentTypes[docType]
	if !ok {
		return nil, nil
	}
	var rows []struct {
		ID   uint
		UUID string
		Code string
		Name string
	}
	err := s.db.Table(dt.table).
		Select(fmt.Sprintf("id, uuid, %s AS code, %s AS name", dt.codeField, dt.nameField)).
		Where("tenant_id = ? AND source_type = ? AND source_id = ? AND deleted_at IS NULL", tenantID, sourceType, sourceID).
		Limit(relationHopLimit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	nodes := make([]DocumentNode, 0, len(rows))
	for _, row := range rows {
		nodes = append(nodes, DocumentNode{Type: docType, ID: row.ID, UUID: row.UUID, Code: row.Code, Name: row.Name})
	}
	return nodes, nil
}

// fromRelationTable 通用边表兜底：downstream为真查source侧，否则查target侧
func (s *DocumentRelationService) fromRelationTable(tenantID uint, docType string, id uint, downstream bool) ([]DocumentNode, error) {
	var relations []models.DocumentRelation
	query := s.db.Where("tenant_id = ?", tenantID).Limit(relationHopLimit)
	if downstream {
		query = query.Where("source_type = ? AND source_id = ?", docType, id)
	} else {
		query = query.Where("target_type = ? AND target_id = ?", docType, id)
	}
	if err := query.Find(&relations).Error; err != nil {
		return nil, err
	}

	var nodes []DocumentNode
	for _, rel := range relations {
		otherType, otherID := rel.TargetType, rel.TargetID
		if !downstream {
			otherType, otherID = rel.SourceType, rel.SourceID
		}
		more, err := s.byID(otherType, tenantID, otherID)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, more...)
	}
	return nodes, nil
}

// AddRelation 登记一条通用边
func (s *DocumentRelationService) AddRelation(tenantID uint, sourceType string, sourceID uint, targetType string, targetID uint) error {
	if _, ok := documentTypes[sourceType]; !ok {
		return fmt.Errorf("未知的单据类型 %s", sourceType)
	}
	if _, ok := documentTypes[targetType]; !ok {
		return fmt.Errorf("未知的单据类型 %s", targetType)
	}

	var count int64
	s.db.Model(&models.DocumentRelation{}).
		Where("tenant_id = ? AND source_type = ? AND source_id = ? AND target_type = ? AND target_id = ?",
			tenantID, sourceType, sourceID, targetType, targetID).Count(&count)
	if count > 0 {
		return nil
	}

	relation := models.DocumentRelation{
		TenantID:   tenantID,
		SourceType: sourceType,
		SourceID:   sourceID,
		TargetType: targetType,
		TargetID:   targetID,
	}
	return s.db.Create(&relation).Error
}

// ========== 关联查询与链路追溯 ==========

// GetDocumentRelations 查询单据的直接上下游
func (s *DocumentRelationService) GetDocumentRelations(tenantID uint, docType string, id uint) (map[string]interface{}, error) {
	dt, ok := documentTypes[docType]
	if !ok {
		return nil, fmt.Errorf("未知的单据类型 %s", docType)
	}

	upstream, err := dt.upstream(s, tenantID, id)
	if err != nil {
		return nil, err
	}
	downstream, err := dt.downstream(s, tenantID, id)
	if err != nil {
		return nil, err
	}

	if upstream == nil {
		upstream = []DocumentNode{}
	}
	if downstream == nil {
		downstream = []DocumentNode{}
	}
	return map[string]interface{}{
		"upstream_documents":   upstream,
		"downstream_documents": downstream,
		"upstream_total":       len(upstream),
		"downstream_total":     len(downstream),
	}, nil
}

// TraceDocumentChain 递归追溯单据链路
// visited集合以 "type:id" 为键防环，重访节点产出空子树
func (s *DocumentRelationService) TraceDocumentChain(tenantID uint, docType string, id uint, direction string) (*DocumentChainNode, error) {
	if direction != "upstream" && direction != "downstream" && direction != "both" {
		return nil, fmt.Errorf("无效的追溯方向")
	}
	if _, ok := documentTypes[docType]; !ok {
		return nil, fmt.Errorf("未知的单据类型 %s", docType)
	}

	self, err := s.byID(docType, tenantID, id)
	if err != nil || len(self) == 0 {
		return nil, fmt.Errorf("单据不存在")
	}

	visited := map[string]bool{}
	return s.trace(tenantID, self[0], direction, visited), nil
}

func visitKey(node DocumentNode) string {
	return fmt.Sprintf("%s:%d", node.Type, node.ID)
}

func (s *DocumentRelationService) trace(tenantID uint, node DocumentNode, direction string, visited map[string]bool) *DocumentChainNode {
	chain := &DocumentChainNode{DocumentNode: node}
	key := visitKey(node)
	if visited[key] {
		return chain
	}
	visited[key] = true

	dt := documentTypes[node.Type]
	if direction == "upstream" || direction == "both" {
		if upstream, err := dt.upstream(s, tenantID, node.ID); err == nil {
			for _, up := range upstream {
				chain.Upstream = append(chain.Upstream, s.trace(tenantID, up, direction, visited))
			}
		}
	}
	if direction == "downstream" || direction == "both" {
		if downstream, err := dt.downstream(s, tenantID, node.ID); err == nil {
			for _, down := range downstream {
				chain.Downstream = append(chain.Downstream, s.trace(tenantID, down, direction, visited))
			}
		}
	}
	return chain
}

// ========== 变更影响 ==========

// ChangeImpact 变更影响分析结果
type ChangeImpact struct {
	UpstreamChange       DocumentNode   `json:"upstream_change"`
	AffectedDemands      []DocumentNode `json:"affected_demands"`
	AffectedComputations []DocumentNode `json:"affected_computations"`
	AffectedPlans        []DocumentNode `json:"affected_plans"`
	AffectedWorkOrders   []DocumentNode `json:"affected_work_orders"`
	RecommendedActions   []string       `json:"recommended_actions"`
}

// GetChangeImpactSalesOrder 销售订单的变更影响
func (s *DocumentRelationService) GetChangeImpactSalesOrder(tenantID, id uint) (*ChangeImpact, error) {
	self, err := s.byID(models.DocSalesOrder, tenantID, id)
	if err != nil || len(self) == 0 {
		return nil, fmt.Errorf("销售订单不存在")
	}

	impact := &ChangeImpact{UpstreamChange: self[0]}
	impact.AffectedDemands, _ = s.byForeignKey(models.DocDemand, tenantID, "sales_order_id", id)
	impact.AffectedWorkOrders, _ = s.byForeignKey(models.DocWorkOrder, tenantID, "sales_order_id", id)
	for _, demand := range impact.AffectedDemands {
		computations, _ := s.byForeignKey(models.DocDemandComputation, tenantID, "demand_id", demand.ID)
		plans, _ := s.byForeignKey(models.DocProductionPlan, tenantID, "demand_id", demand.ID)
		impact.AffectedComputations = append(impact.AffectedComputations, computations...)
		impact.AffectedPlans = append(impact.AffectedPlans, plans...)
	}

	impact.RecommendedActions = recommendActions(impact)
	return impact, nil
}

// GetChangeImpactDemand 需求单的变更影响
func (s *DocumentRelationService) GetChangeImpactDemand(tenantID, id uint) (*ChangeImpact, error) {
	self, err := s.byID(models.DocDemand, tenantID, id)
	if err != nil || len(self) == 0 {
		return nil, fmt.Errorf("需求单不存在")
	}

	impact := &ChangeImpact{UpstreamChange: self[0]}
	impact.AffectedComputations, _ = s.byForeignKey(models.DocDemandComputation, tenantID, "demand_id", id)
	impact.AffectedPlans, _ = s.byForeignKey(models.DocProductionPlan, tenantID, "demand_id", id)
	for _, plan := range impact.AffectedPlans {
		workOrders, _ := s.byForeignKey(models.DocWorkOrder, tenantID, "plan_id", plan.ID)
		impact.AffectedWorkOrders = append(impact.AffectedWorkOrders, workOrders...)
	}

	impact.RecommendedActions = recommendActions(impact)
	return impact, nil
}

func recommendActions(impact *ChangeImpact) []string {
	var actions []string
	if len(impact.AffectedPlans) > 0 {
		actions = append(actions, "相关生产计划需要重新运算")
	}
	if len(impact.AffectedWorkOrders) > 0 {
		actions = append(actions, "请确认已下达工单是否需要调整")
	}
	if len(impact.AffectedComputations) > 0 {
		actions = append(actions, "相关需求运算结果可能已失效")
	}
	if len(actions) == 0 {
		actions = append(actions, "无下游单据受影响")
	}
	return actions
}

// ApplyUpstreamChangeImpact 上游变更落地
// 草稿/已提交的计划标记待重算；锁定/执行中的计划不动
func (s *DocumentRelationService) ApplyUpstreamChangeImpact(tenantID uint, upstreamType string, upstreamID uint, autoMarkPendingRecompute bool) (int64, error) {
	if !autoMarkPendingRecompute {
		return 0, nil
	}

	var impact *ChangeImpact
	var err error
	switch upstreamType {
	case models.DocSalesOrder:
		impact, err = s.GetChangeImpactSalesOrder(tenantID, upstreamID)
	case models.DocDemand:
		impact, err = s.GetChangeImpactDemand(tenantID, upstreamID)
	default:
		return 0, fmt.Errorf("不支持的上游单据类型 %s", upstreamType)
	}
	if err != nil {
		return 0, err
	}

	planIDs := make([]uint, 0, len(impact.AffectedPlans))
	for _, plan := range impact.AffectedPlans {
		planIDs = append(planIDs, plan.ID)
	}
	if len(planIDs) == 0 {
		return 0, nil
	}

	result := s.db.Model(&models.ProductionPlan{}).
		Where("tenant_id = ? AND id IN ? AND status IN ?",
			tenantID, planIDs, []string{models.PlanStatusDraft, models.PlanStatusSubmitted}).
		Update("needs_recompute", true)
	return result.RowsAffected, result.Error
}
