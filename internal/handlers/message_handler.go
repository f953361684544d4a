package handlers

import (
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// SendRequest 发送消息请求
type SendRequest struct {
	Channel     string                 `json:"channel" binding:"required"`
	Recipient   string                 `json:"recipient" binding:"required"`
	RecipientID *uint                  `json:"recipient_id"`
	Subject     string                 `json:"subject" binding:"required"`
	Content     string                 `json:"content" binding:"required"`
	Extra       map[string]interface{} `json:"extra"`
}

// Send 发送消息
func (h *MessageHandler) Send(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	log, err := h.service.Send(tc.TenantID, req.Channel, req.Recipient, req.RecipientID, req.Subject, req.Content, req.Extra)
	if err != nil {
		fail(c, err, "发送消息失败")
		return
	}
	response.Success(c, log)
}

// ListInApp 站内消息列表
func (h *MessageHandler) ListInApp(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	unreadOnly := c.Query("unread_only") == "true"

	messages, total, err := h.service.ListInApp(tc.TenantID, tc.UserID, params, unreadOnly)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, messages, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// MarkRead 标记站内消息已读
func (h *MessageHandler) MarkRead(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.service.MarkRead(tc.TenantID, tc.UserID, c.Param("uuid")); err != nil {
		fail(c, err, "标记失败")
		return
	}
	response.SuccessWithMessage(c, "已标记为已读", nil)
}

// TestSMTPRequest SMTP连接测试请求
type TestSMTPRequest struct {
	Host     string `json:"host" binding:"required"`
	Port     int    `json:"port" binding:"required"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// TestSMTP 测试SMTP连接
func (h *MessageHandler) TestSMTP(c *gin.Context) {
	var req TestSMTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.TestSMTP(req.Host, req.Port, req.Username, req.Password); err != nil {
		fail(c, err, "SMTP连接测试失败")
		return
	}
	response.SuccessWithMessage(c, "连接成功", nil)
}
