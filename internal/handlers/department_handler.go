package handlers

import (
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateDepartmentRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	ParentID  *uint  `json:"parent_id"`
	SortOrder int    `json:"sort_order"`
}

type UpdateDepartmentRequest struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	SortOrder int    `json:"sort_order"`
}

type DepartmentHandler struct {
	service         *services.DepartmentService
	positionService *services.PositionService
}

func NewDepartmentHandler(service *services.DepartmentService, positionService *services.PositionService) *DepartmentHandler {
	return &DepartmentHandler{service: service, positionService: positionService}
}

// Create 创建部门
func (h *DepartmentHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	department, err := h.service.Create(tc.TenantID, req.Name, req.Code, req.ParentID, req.SortOrder)
	if err != nil {
		fail(c, err, "创建部门失败")
		return
	}
	response.Success(c, department)
}

// GetTree 部门树
func (h *DepartmentHandler) GetTree(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	tree, err := h.service.GetTree(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, tree)
}

// Update 更新部门
func (h *DepartmentHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req UpdateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	department, err := h.service.Update(tc.TenantID, c.Param("uuid"), req.Name, req.Code, req.SortOrder)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, department)
}

// Delete 删除部门，有子部门时拒绝
func (h *DepartmentHandler) Delete(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.service.Delete(tc.TenantID, c.Param("uuid")); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}

// ========== 岗位 ==========

type PositionRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

// CreatePosition 创建岗位
func (h *DepartmentHandler) CreatePosition(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	position, err := h.positionService.Create(tc.TenantID, req.Name, req.Code, req.SortOrder)
	if err != nil {
		fail(c, err, "创建岗位失败")
		return
	}
	response.Success(c, position)
}

// ListPositions 岗位列表
func (h *DepartmentHandler) ListPositions(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	positions, err := h.positionService.GetByTenant(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, positions)
}

// UpdatePosition 更新岗位
func (h *DepartmentHandler) UpdatePosition(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	position, err := h.positionService.Update(tc.TenantID, c.Param("uuid"), req.Name, req.Code, req.SortOrder)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, position)
}

// DeletePosition 删除岗位
func (h *DepartmentHandler) DeletePosition(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.positionService.Delete(tc.TenantID, c.Param("uuid")); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}
