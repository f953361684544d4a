package handlers

import (
	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type SiteSettingHandler struct {
	service *services.SiteSettingService
}

func NewSiteSettingHandler(service *services.SiteSettingService) *SiteSettingHandler {
	return &SiteSettingHandler{service: service}
}

// Get 获取站点配置
func (h *SiteSettingHandler) Get(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	setting, err := h.service.Get(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, setting)
}

// Save 保存站点配置（合并更新）
func (h *SiteSettingHandler) Save(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var settings map[string]interface{}
	if err := c.ShouldBindJSON(&settings); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	setting, err := h.service.Save(tc.TenantID, settings)
	if err != nil {
		fail(c, err, "保存失败")
		return
	}
	response.Success(c, setting)
}

// ========== 系统参数 ==========

// SetParameterRequest 设置系统参数请求
type SetParameterRequest struct {
	Key         string `json:"key" binding:"required"`
	Value       string `json:"value" binding:"required"`
	Description string `json:"description"`
}

// ListParameters 系统参数列表
func (h *SiteSettingHandler) ListParameters(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	params, err := h.service.ListParameters(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, params)
}

// GetParameter 查询系统参数
func (h *SiteSettingHandler) GetParameter(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	param, err := h.service.GetParameter(tc.TenantID, c.Param("key"))
	if err != nil {
		fail(c, err, "查询失败")
		return
	}
	response.Success(c, param)
}

// SetParameter 设置系统参数
func (h *SiteSettingHandler) SetParameter(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var req SetParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	param, err := h.service.SetParameter(tc.TenantID, req.Key, req.Value, req.Description)
	if err != nil {
		fail(c, err, "保存失败")
		return
	}
	response.Success(c, param)
}

// DeleteParameter 删除系统参数
func (h *SiteSettingHandler) DeleteParameter(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.service.DeleteParameter(tc.TenantID, c.Param("key")); err != nil {
		fail(c, err, "删除失败")
		return
	}
	response.SuccessWithMessage(c, "已删除", nil)
}

// ========== 语言 ==========

// ListLanguages 语言列表
func (h *SiteSettingHandler) ListLanguages(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	languages, err := h.service.ListLanguages(tc.TenantID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, languages)
}

// AddLanguage 添加语言
func (h *SiteSettingHandler) AddLanguage(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	var language models.Language
	if err := c.ShouldBindJSON(&language); err != nil {
		response.BadRequest(c, "请求参数错误: "+err.Error())
		return
	}

	if err := h.service.AddLanguage(tc.TenantID, &language); err != nil {
		fail(c, err, "添加语言失败")
		return
	}
	response.Success(c, language)
}

// SetDefaultLanguage 设置默认语言
func (h *SiteSettingHandler) SetDefaultLanguage(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.service.SetDefaultLanguage(tc.TenantID, c.Param("code")); err != nil {
		fail(c, err, "设置默认语言失败")
		return
	}
	response.SuccessWithMessage(c, "设置成功", nil)
}
