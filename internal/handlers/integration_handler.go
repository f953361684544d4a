package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"
	"riveredge/pkg/search"

	"github.com/gin-gonic/gin"
)

type IntegrationHandler struct {
	service *services.IntegrationService
}

func NewIntegrationHandler(service *services.IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{service: service}
}

// Create 创建数据连接
func (h *IntegrationHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var config models.IntegrationConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.service.Create(tc.TenantID, &config); err != nil {
		fail(c, err, "创建连接失败")
		return
	}
	response.Success(c, config)
}

// List 数据连接列表
func (h *IntegrationHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	opts := search.Options{
		Keyword: c.Query("keyword"),
		Filters: map[string]string{"type": c.Query("type")},
		SortBy:  c.Query("sort_by"),
	}

	configs, total, err := h.service.List(tc.TenantID, opts, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, configs, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByUUID 查询数据连接
func (h *IntegrationHandler) GetByUUID(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	config, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, config)
}

// Update 更新数据连接
func (h *IntegrationHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	config, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.service.Update(tc.TenantID, config.ID, updates)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, updated)
}

// Delete 删除数据连接
func (h *IntegrationHandler) Delete(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	config, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	if err := h.service.Delete(tc.TenantID, config.ID); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}

// TestConnection 测试连接
func (h *IntegrationHandler) TestConnection(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	config, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	if err := h.service.TestConnection(tc.TenantID, config.ID); err != nil {
		fail(c, err, "连接测试失败")
		return
	}
	response.SuccessWithMessage(c, "连接正常", nil)
}
