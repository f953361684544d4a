package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"
	"riveredge/pkg/search"

	"github.com/gin-gonic/gin"
)

type APIHandler struct {
	service *services.APIService
}

func NewAPIHandler(service *services.APIService) *APIHandler {
	return &APIHandler{service: service}
}

// Create 登记托管接口
func (h *APIHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var api models.API
	if err := c.ShouldBindJSON(&api); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.service.Create(tc.TenantID, &api); err != nil {
		fail(c, err, "创建接口失败")
		return
	}
	response.Success(c, api)
}

// List 托管接口列表
func (h *APIHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	opts := search.Options{
		Keyword: c.Query("keyword"),
		Filters: map[string]string{"method": c.Query("method")},
		SortBy:  c.Query("sort_by"),
	}

	apis, total, err := h.service.List(tc.TenantID, opts, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, apis, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByUUID 查询托管接口
func (h *APIHandler) GetByUUID(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	api, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, api)
}

// Update 更新托管接口
func (h *APIHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	api, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.service.Update(tc.TenantID, api.ID, updates)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, updated)
}

// Delete 删除托管接口
func (h *APIHandler) Delete(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	api, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	if err := h.service.Delete(tc.TenantID, api.ID); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}
