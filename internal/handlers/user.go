package handlers

import (
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

type AssignRolesRequest struct {
	RoleUUIDs []string `json:"role_uuids"`
}

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.Create(tc.TenantID, req.Username, req.Password, req.Email, req.Name)
	if err != nil {
		fail(c, err, "创建用户失败")
		return
	}
	response.Success(c, user)
}

// List 用户列表
func (h *UserHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	users, total, err := h.service.List(tc.TenantID, params, c.Query("keyword"))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByUUID 查询用户
func (h *UserHandler) GetByUUID(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	user, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, user)
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.Update(tc.TenantID, c.Param("uuid"), updates)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, user)
}

// ChangePassword 修改密码
func (h *UserHandler) ChangePassword(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.ChangePassword(tc.TenantID, c.Param("uuid"), req.OldPassword, req.NewPassword); err != nil {
		fail(c, err, "修改密码失败")
		return
	}
	response.SuccessWithMessage(c, "密码已修改", nil)
}

// Delete 删除用户
func (h *UserHandler) Delete(c *gin.Context) {
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

// AssignRoles 分配角色
func (h *UserHandler) AssignRoles(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req AssignRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.AssignRoles(tc.TenantID, c.Param("uuid"), req.RoleUUIDs); err != nil {
		fail(c, err, "分配角色失败")
		return
	}
	response.SuccessWithMessage(c, "角色已更新", nil)
}
