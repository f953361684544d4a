package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"
	"riveredge/pkg/search"

	"github.com/gin-gonic/gin"
)

type ExecuteDatasetRequest struct {
	Parameters map[string]interface{} `json:"parameters"`
}

type DatasetHandler struct {
	service *services.DatasetService
}

func NewDatasetHandler(service *services.DatasetService) *DatasetHandler {
	return &DatasetHandler{service: service}
}

// Create 创建数据集
func (h *DatasetHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var dataset models.Dataset
	if err := c.ShouldBindJSON(&dataset); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.service.Create(tc.TenantID, &dataset); err != nil {
		fail(c, err, "创建数据集失败")
		return
	}
	response.Success(c, dataset)
}

// List 数据集列表
func (h *DatasetHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	opts := search.Options{
		Keyword: c.Query("keyword"),
		Filters: map[string]string{"query_type": c.Query("query_type")},
		SortBy:  c.Query("sort_by"),
	}

	datasets, total, err := h.service.List(tc.TenantID, opts, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, datasets, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByUUID 查询数据集
func (h *DatasetHandler) GetByUUID(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	dataset, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, dataset)
}

// Update 更新数据集
func (h *DatasetHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	dataset, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.service.Update(tc.TenantID, dataset.ID, updates)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, updated)
}

// Delete 删除数据集
func (h *DatasetHandler) Delete(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	dataset, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	if err := h.service.Delete(tc.TenantID, dataset.ID); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}

// Execute 执行数据集
func (h *DatasetHandler) Execute(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req ExecuteDatasetRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.Execute(tc.TenantID, c.Param("uuid"), req.Parameters)
	if err != nil && result == nil {
		fail(c, err, "执行失败")
		return
	}
	response.Success(c, result)
}

// ExecuteByCode 按编码执行数据集，供低码页面引用
func (h *DatasetHandler) ExecuteByCode(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req ExecuteDatasetRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.ExecuteByCode(tc.TenantID, c.Param("code"), req.Parameters)
	if err != nil && result == nil {
		fail(c, err, "执行失败")
		return
	}
	response.Success(c, result)
}

// Schema 数据源结构内省
func (h *DatasetHandler) Schema(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	tables, err := h.service.GetSchema(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询结构失败")
		return
	}
	response.Success(c, gin.H{"tables": tables})
}
