package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/pagination"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateCodeRuleRequest struct {
	Code         string                 `json:"code" binding:"required"`
	Name         string                 `json:"name" binding:"required"`
	Components   []models.RuleComponent `json:"rule_components" binding:"required"`
	SeqStart     int64                  `json:"seq_start"`
	SeqStep      int64                  `json:"seq_step"`
	SeqResetRule string                 `json:"seq_reset_rule"`
}

type UpdateCodeRuleRequest struct {
	Name         string                 `json:"name"`
	Components   []models.RuleComponent `json:"rule_components"`
	SeqStart     int64                  `json:"seq_start"`
	SeqStep      int64                  `json:"seq_step"`
	SeqResetRule string                 `json:"seq_reset_rule"`
	IsActive     bool                   `json:"is_active"`
}

type GenerateCodeRequest struct {
	RuleCode string            `json:"rule_code"`
	Page     string            `json:"page"`
	Context  map[string]string `json:"context"`
	Probe    bool              `json:"probe"`
}

type CodeRuleHandler struct {
	service *services.CodeRuleService
}

func NewCodeRuleHandler(service *services.CodeRuleService) *CodeRuleHandler {
	return &CodeRuleHandler{service: service}
}

// Create 创建编码规则
func (h *CodeRuleHandler) Create(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req CreateCodeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	rule, err := h.service.Create(tc.TenantID, req.Code, req.Name, req.Components,
		req.SeqStart, req.SeqStep, req.SeqResetRule)
	if err != nil {
		fail(c, err, "创建规则失败")
		return
	}
	response.Success(c, rule)
}

// List 规则列表
func (h *CodeRuleHandler) List(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params := pagination.ParsePageParams(c)
	rules, total, err := h.service.List(tc.TenantID, params)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.SuccessWithPage(c, rules, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// GetByUUID 查询规则
func (h *CodeRuleHandler) GetByUUID(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	rule, err := h.service.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, rule)
}

// Update 更新规则
func (h *CodeRuleHandler) Update(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req UpdateCodeRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	rule, err := h.service.Update(tc.TenantID, c.Param("uuid"), req.Name, req.Components,
		req.SeqStart, req.SeqStep, req.SeqResetRule, req.IsActive)
	if err != nil {
		fail(c, err, "更新失败")
		return
	}
	response.Success(c, rule)
}

// Delete 删除规则
func (h *CodeRuleHandler) Delete(c *gin.Context) {
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

// Generate 生成编码并推进序号
// rule_code缺省时按page兜底到预置前缀规则
func (h *CodeRuleHandler) Generate(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req GenerateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	ruleCode := req.RuleCode
	if ruleCode == "" && req.Page != "" {
		ruleCode = req.Page
	}
	if ruleCode == "" {
		response.BadRequest(c, "rule_code或page必填其一")
		return
	}

	code, err := h.service.Generate(tc.TenantID, ruleCode, services.RenderContext(req.Context))
	if err != nil {
		fail(c, err, "生成编码失败")
		return
	}
	response.Success(c, gin.H{"code": code})
}

// TestGenerate 试算编码，不推进序号
func (h *CodeRuleHandler) TestGenerate(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req GenerateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	ruleCode := req.RuleCode
	if ruleCode == "" {
		ruleCode = req.Page
	}
	code, err := h.service.TestGenerate(tc.TenantID, ruleCode, services.RenderContext(req.Context), req.Probe)
	if err != nil {
		fail(c, err, "试算失败")
		return
	}
	response.Success(c, gin.H{"code": code})
}
