package handlers

import (
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type RenameApplicationRequest struct {
	Name string `json:"name" binding:"required"`
}

type ReorderApplicationRequest struct {
	SortOrder int `json:"sort_order"`
}

type ApplicationHandler struct {
	service *services.ApplicationService
}

func NewApplicationHandler(service *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// List 应用列表
func (h *ApplicationHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	apps, err := h.service.GetByTenant(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, apps)
}

// Scan 重新扫描插件清单
func (h *ApplicationHandler) Scan(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.service.ScanPluginsForTenant(tc.TenantID); err != nil {
		fail(c, err, "扫描插件失败")
		return
	}
	response.SuccessWithMessage(c, "扫描完成", nil)
}

// Rename 重命名应用，后续清单扫描保留用户命名
func (h *ApplicationHandler) Rename(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req RenameApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	app, err := h.service.Rename(tc.TenantID, c.Param("uuid"), req.Name)
	if err != nil {
		fail(c, err, "重命名失败")
		return
	}
	response.Success(c, app)
}

// Reorder 调整应用排序
func (h *ApplicationHandler) Reorder(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req ReorderApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	app, err := h.service.Reorder(tc.TenantID, c.Param("uuid"), req.SortOrder)
	if err != nil {
		fail(c, err, "排序失败")
		return
	}
	response.Success(c, app)
}

// Install 安装应用
func (h *ApplicationHandler) Install(c *gin.Context) {
	h.toggle(c, h.service.Install, "安装失败", "已安装")
}

// Uninstall 卸载应用
func (h *ApplicationHandler) Uninstall(c *gin.Context) {
	h.toggle(c, h.service.Uninstall, "卸载失败", "已卸载")
}

// Enable 启用应用
func (h *ApplicationHandler) Enable(c *gin.Context) {
	h.toggle(c, h.service.Enable, "启用失败", "已启用")
}

// Disable 停用应用
func (h *ApplicationHandler) Disable(c *gin.Context) {
	h.toggle(c, h.service.Disable, "停用失败", "已停用")
}

func (h *ApplicationHandler) toggle(c *gin.Context, op func(uint, string) error, failMsg, okMsg string) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := op(tc.TenantID, c.Param("uuid")); err != nil {
		fail(c, err, failMsg)
		return
	}
	response.SuccessWithMessage(c, okMsg, nil)
}
