package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"
	"riveredge/pkg/search"

	"github.com/gin-gonic/gin"
)

type DictionaryHandler struct {
	service *services.DictionaryService
}

func NewDictionaryHandler(service *services.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{service: service}
}

// Create 创建字典
func (h *DictionaryHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var dict models.Dictionary
	if err := c.ShouldBindJSON(&dict); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.service.Create(tc.TenantID, &dict); err != nil {
		fail(c, err, "创建字典失败")
		return
	}
	response.Success(c, dict)
}

// List 字典列表
func (h *DictionaryHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	opts := search.Options{Keyword: c.Query("keyword"), SortBy: c.Query("sort_by")}

	dicts, total, err := h.service.List(tc.TenantID, opts, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, dicts, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByCode 按编码查询字典及启用项
func (h *DictionaryHandler) GetByCode(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	dict, err := h.service.GetByCode(tc.TenantID, c.Param("code"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, dict)
}

// Update 更新字典
func (h *DictionaryHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	dict, err := h.service.GetByCode(tc.TenantID, c.Param("code"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	updated, err := h.service.Update(tc.TenantID, dict.ID, updates)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, updated)
}

// Delete 删除字典
func (h *DictionaryHandler) Delete(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	dict, err := h.service.GetByCode(tc.TenantID, c.Param("code"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	if err := h.service.Delete(tc.TenantID, dict.ID); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}

// ========== 字典项 ==========

// AddItem 添加字典项
func (h *DictionaryHandler) AddItem(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	dict, err := h.service.GetByCode(tc.TenantID, c.Param("code"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}

	var item models.DictionaryItem
	if err := c.ShouldBindJSON(&item); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.service.AddItem(tc.TenantID, dict.ID, &item); err != nil {
		fail(c, err, "添加字典项失败")
		return
	}
	response.Success(c, item)
}

// UpdateItem 更新字典项
func (h *DictionaryHandler) UpdateItem(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	itemID := paramUint(c, "item_id")
	if itemID == 0 {
		response.BadRequest(c, "ID格式错误")
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	item, err := h.service.UpdateItem(tc.TenantID, itemID, updates)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, item)
}

// DeleteItem 删除字典项
func (h *DictionaryHandler) DeleteItem(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	itemID := paramUint(c, "item_id")
	if itemID == 0 {
		response.BadRequest(c, "ID格式错误")
		return
	}

	if err := h.service.DeleteItem(tc.TenantID, itemID); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}
