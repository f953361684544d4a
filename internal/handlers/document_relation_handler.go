package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type AddRelationRequest struct {
	SourceType string `json:"source_type" binding:"required"`
	SourceID   uint   `json:"source_id" binding:"required"`
	TargetType string `json:"target_type" binding:"required"`
	TargetID   uint   `json:"target_id" binding:"required"`
}

type ApplyImpactRequest struct {
	UpstreamType             string `json:"upstream_type" binding:"required"`
	UpstreamID               uint   `json:"upstream_id" binding:"required"`
	AutoMarkPendingRecompute *bool  `json:"auto_mark_pending_recompute"`
}

type DocumentRelationHandler struct {
	service *services.DocumentRelationService
}

func NewDocumentRelationHandler(service *services.DocumentRelationService) *DocumentRelationHandler {
	return &DocumentRelationHandler{service: service}
}

// Relations 单据直接上下游
func (h *DocumentRelationHandler) Relations(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	docType := c.Param("type")
	id := paramUint(c, "id")
	if id == 0 {
		response.BadRequest(c, "ID格式错误")
		return
	}

	relations, err := h.service.GetDocumentRelations(tc.TenantID, docType, id)
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, relations)
}

// Trace 链路追溯
func (h *DocumentRelationHandler) Trace(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	docType := c.Param("type")
	id := paramUint(c, "id")
	if id == 0 {
		response.BadRequest(c, "ID格式错误")
		return
	}
	direction := c.DefaultQuery("direction", "both")

	chain, err := h.service.TraceDocumentChain(tc.TenantID, docType, id, direction)
	if err != nil {
		fail(c, err, "追溯失败")
		return
	}
	response.Success(c, chain)
}

// AddRelation 登记通用边
func (h *DocumentRelationHandler) AddRelation(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req AddRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.service.AddRelation(tc.TenantID, req.SourceType, req.SourceID, req.TargetType, req.TargetID); err != nil {
		fail(c, err, "登记关联失败")
		return
	}
	response.SuccessWithMessage(c, "已登记", nil)
}

// ChangeImpact 变更影响分析
func (h *DocumentRelationHandler) ChangeImpact(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	docType := c.Param("type")
	id := paramUint(c, "id")
	if id == 0 {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var impact *services.ChangeImpact
	var err error
	switch docType {
	case models.DocSalesOrder:
		impact, err = h.service.GetChangeImpactSalesOrder(tc.TenantID, id)
	case models.DocDemand:
		impact, err = h.service.GetChangeImpactDemand(tc.TenantID, id)
	default:
		response.BadRequest(c, "该单据类型不支持变更影响分析")
		return
	}
	if err != nil {
		fail(c, err, "分析失败")
		return
	}
	response.Success(c, impact)
}

// ApplyImpact 上游变更落地，标记待重算计划
func (h *DocumentRelationHandler) ApplyImpact(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req ApplyImpactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	autoMark := true
	if req.AutoMarkPendingRecompute != nil {
		autoMark = *req.AutoMarkPendingRecompute
	}

	affected, err := h.service.ApplyUpstreamChangeImpact(tc.TenantID, req.UpstreamType, req.UpstreamID, autoMark)
	if err != nil {
		fail(c, err, "处理失败")
		return
	}
	response.Success(c, gin.H{"affected_plans": affected})
}
