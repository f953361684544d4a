package handlers

import (
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreatePermissionRequest struct {
	Code           string `json:"code" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	Resource       string `json:"resource" binding:"required"`
	Action         string `json:"action" binding:"required"`
	PermissionType string `json:"permission_type"`
}

type UpdatePermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler(service *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: service}
}

// Create 创建权限
func (h *PermissionHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	permission, err := h.service.Create(tc.TenantID, req.Code, req.Name, req.Description,
		req.Resource, req.Action, req.PermissionType)
	if err != nil {
		fail(c, err, "创建权限失败")
		return
	}
	response.Success(c, permission)
}

// List 权限列表
func (h *PermissionHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	permissions, err := h.service.GetByTenant(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, permissions)
}

// Update 更新权限
func (h *PermissionHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req UpdatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	permission, err := h.service.Update(tc.TenantID, c.Param("uuid"), req.Name, req.Description)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, permission)
}

// Delete 删除权限，引用该编码的菜单置空并停用
func (h *PermissionHandler) Delete(c *gin.Context) {
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

// MyPermissions 当前用户的有效权限编码集合
func (h *PermissionHandler) MyPermissions(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	codes, err := h.service.GetUserPermissionCodes(c.Request.Context(), tc.TenantID, tc.UserID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, codes)
}
