package handlers

import (
	"time"

	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateTenantRequest struct {
	Name      string     `json:"name" binding:"required"`
	Domain    string     `json:"domain" binding:"required"`
	Plan      string     `json:"plan"`
	MaxUsers  int        `json:"max_users"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type UpdateTenantRequest struct {
	Name      string     `json:"name"`
	Plan      string     `json:"plan"`
	MaxUsers  int        `json:"max_users"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type SetTenantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TenantHandler struct {
	service *services.TenantService
}

func NewTenantHandler(service *services.TenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// Create 创建租户并初始化种子数据
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tenant, err := h.service.Create(req.Name, req.Domain, req.Plan, req.MaxUsers, req.ExpiresAt)
	if err != nil {
		fail(c, err, "创建租户失败")
		return
	}
	response.Success(c, tenant)
}

// List 租户列表
func (h *TenantHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	tenants, total, err := h.service.List(params)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, tenants, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByUUID 查询租户
func (h *TenantHandler) GetByUUID(c *gin.Context) {
	tenant, err := h.service.GetByUUID(c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, tenant)
}

// Update 更新租户
func (h *TenantHandler) Update(c *gin.Context) {
	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tenant, err := h.service.Update(c.Param("uuid"), req.Name, req.Plan, req.MaxUsers, req.ExpiresAt)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, tenant)
}

// SetStatus 启停租户，不提供物理删除
func (h *TenantHandler) SetStatus(c *gin.Context) {
	var req SetTenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tenant, err := h.service.SetStatus(c.Param("uuid"), req.Status)
	if err != nil {
		fail(c, err, "更新状态失败")
		return
	}
	response.Success(c, tenant)
}
