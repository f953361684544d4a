package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct {
	service *services.MenuService
}

func NewMenuHandler(service *services.MenuService) *MenuHandler {
	return &MenuHandler{service: service}
}

// Create 创建菜单
func (h *MenuHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var menu models.Menu
	if err := c.ShouldBindJSON(&menu); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	created, err := h.service.Create(tc.TenantID, &menu)
	if err != nil {
		fail(c, err, "创建菜单失败")
		return
	}
	response.Success(c, created)
}

// GetTree 菜单树，根节点按（应用排序, 菜单排序）排列
func (h *MenuHandler) GetTree(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	activeOnly := c.DefaultQuery("active_only", "true") == "true"
	tree, err := h.service.GetTree(c.Request.Context(), tc.TenantID, activeOnly)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, tree)
}

// Update 更新菜单
func (h *MenuHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	menu, err := h.service.Update(tc.TenantID, c.Param("uuid"), updates)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, menu)
}

// Delete 删除菜单及其子树
func (h *MenuHandler) Delete(c *gin.Context) {
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
