package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateProcessRequest struct {
	Code        string               `json:"code" binding:"required"`
	Name        string               `json:"name" binding:"required"`
	Description string               `json:"description"`
	Nodes       []models.ProcessNode `json:"nodes" binding:"required"`
}

type StartApprovalRequest struct {
	ProcessCode string `json:"process_code" binding:"required"`
	EntityType  string `json:"entity_type" binding:"required"`
	EntityID    uint   `json:"entity_id" binding:"required"`
	EntityUUID  string `json:"entity_uuid"`
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
}

type ExecuteApprovalRequest struct {
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   uint   `json:"entity_id" binding:"required"`
	Approved   *bool  `json:"approved" binding:"required"`
	Comment    string `json:"comment"`
}

type TaskActionRequest struct {
	Comment          string `json:"comment"`
	TransferToUserID uint   `json:"transfer_to_user_id"`
}

type ApprovalHandler struct {
	service *services.ApprovalService
}

func NewApprovalHandler(service *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{service: service}
}

// ========== 流程模板 ==========

// CreateProcess 创建审批流程模板
func (h *ApprovalHandler) CreateProcess(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req CreateProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	process, err := h.service.CreateProcess(tc.TenantID, req.Code, req.Name, req.Description, req.Nodes)
	if err != nil {
		fail(c, err, "创建流程失败")
		return
	}
	response.Success(c, process)
}

// ListProcesses 流程模板列表
func (h *ApprovalHandler) ListProcesses(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	processes, err := h.service.GetProcesses(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, processes)
}

// ========== 统一入口 ==========

// Start 发起审批，无匹配流程时返回空让调用方走自有简单审批
func (h *ApprovalHandler) Start(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req StartApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	instance, err := h.service.StartApproval(tc.TenantID, tc.UserID, req.ProcessCode,
		req.EntityType, req.EntityID, req.EntityUUID, req.Title, req.Content)
	if err != nil {
		fail(c, err, "发起审批失败")
		return
	}
	response.Success(c, instance)
}

// Status 按业务单据查询审批状态
func (h *ApprovalHandler) Status(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	entityType := c.Query("entity_type")
	entityID := queryUint(c, "entity_id")
	if entityType == "" || entityID == 0 {
		response.BadRequest(c, "entity_type和entity_id必填")
		return
	}

	status, err := h.service.GetApprovalStatus(tc.TenantID, entityType, entityID)
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, status)
}

// Execute 按业务单据执行审批
func (h *ApprovalHandler) Execute(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req ExecuteApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	err := h.service.ExecuteApproval(tc.TenantID, req.EntityType, req.EntityID, tc.UserID, *req.Approved, req.Comment)
	if err != nil {
		fail(c, err, "审批失败")
		return
	}
	response.SuccessWithMessage(c, "审批已提交", nil)
}

// CancelByEntity 按业务单据撤销审批
func (h *ApprovalHandler) CancelByEntity(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	entityType := c.Query("entity_type")
	entityID := queryUint(c, "entity_id")
	if entityType == "" || entityID == 0 {
		response.BadRequest(c, "entity_type和entity_id必填")
		return
	}

	if err := h.service.CancelApproval(tc.TenantID, entityType, entityID, tc.UserID); err != nil {
		fail(c, err, "撤销失败")
		return
	}
	response.SuccessWithMessage(c, "已撤销", nil)
}

// ========== 任务操作 ==========

// PendingTasks 我的待办任务
func (h *ApprovalHandler) PendingTasks(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	tasks, err := h.service.GetPendingTasks(tc.TenantID, tc.UserID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, tasks)
}

// Approve 通过任务
func (h *ApprovalHandler) Approve(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req TaskActionRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Approve(tc.TenantID, c.Param("uuid"), tc.UserID, req.Comment); err != nil {
		fail(c, err, "操作失败")
		return
	}
	response.SuccessWithMessage(c, "已通过", nil)
}

// Reject 驳回任务
func (h *ApprovalHandler) Reject(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req TaskActionRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Reject(tc.TenantID, c.Param("uuid"), tc.UserID, req.Comment); err != nil {
		fail(c, err, "操作失败")
		return
	}
	response.SuccessWithMessage(c, "已驳回", nil)
}

// Transfer 转交任务
func (h *ApprovalHandler) Transfer(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req TaskActionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TransferToUserID == 0 {
		response.BadRequest(c, "transfer_to_user_id必填")
		return
	}

	if err := h.service.Transfer(tc.TenantID, c.Param("uuid"), tc.UserID, req.TransferToUserID, req.Comment); err != nil {
		fail(c, err, "转交失败")
		return
	}
	response.SuccessWithMessage(c, "已转交", nil)
}

// Cancel 撤销审批实例
func (h *ApprovalHandler) Cancel(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req TaskActionRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Cancel(tc.TenantID, c.Param("uuid"), tc.UserID, req.Comment); err != nil {
		fail(c, err, "撤销失败")
		return
	}
	response.SuccessWithMessage(c, "已撤销", nil)
}
