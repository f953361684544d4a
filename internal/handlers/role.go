package handlers

import (
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateRoleRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type AssignPermissionsRequest struct {
	PermissionUUIDs []string `json:"permission_uuids"`
}

type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
func (h *RoleHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	role, err := h.service.Create(tc.TenantID, req.Code, req.Name, req.Description)
	if err != nil {
		fail(c, err, "创建角色失败")
		return
	}
	response.Success(c, role)
}

// List 角色列表
func (h *RoleHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	roles, err := h.service.GetByTenant(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, roles)
}

// GetByUUID 查询角色
func (h *RoleHandler) GetByUUID(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	role, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, role)
}

// Update 更新角色
func (h *RoleHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	role, err := h.service.Update(tc.TenantID, c.Param("uuid"), req.Name, req.Description, req.Status)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, role)
}

// Delete 删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
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

// ========== 权限分配 ==========

// GetPermissions 查询角色权限，系统管理员角色无显式行时合成全量
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	role, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	permissions, err := h.service.GetRolePermissions(role)
	if err != nil {
		response.ServerError(c, "查询权限失败")
		return
	}
	response.Success(c, permissions)
}

// AssignPermissions 分配权限
func (h *RoleHandler) AssignPermissions(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req AssignPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.AssignPermissions(tc.TenantID, c.Param("uuid"), req.PermissionUUIDs); err != nil {
		fail(c, err, "分配权限失败")
		return
	}
	response.SuccessWithMessage(c, "权限已更新", nil)
}
