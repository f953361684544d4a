package handlers

import (
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type LogHandler struct {
	service *services.OperationLogService
}

func NewLogHandler(service *services.OperationLogService) *LogHandler {
	return &LogHandler{service: service}
}

// ListOperationLogs 操作日志列表
func (h *LogHandler) ListOperationLogs(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	logs, total, err := h.service.ListOperationLogs(tc.TenantID, c.Query("module"), c.Query("action"), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, logs, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// ListLoginLogs 登录日志列表
func (h *LogHandler) ListLoginLogs(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	logs, total, err := h.service.ListLoginLogs(tc.TenantID, c.Query("username"), params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, logs, pagination.NewPageInfo(params.Page, params.PageSize, total))
}
