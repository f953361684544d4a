package handlers

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"riveredge/internal/middleware"
	"riveredge/internal/models"
	"riveredge/pkg/errors"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// tenantOf 取出请求的租户上下文，缺失时已写响应并返回nil
func tenantOf(c *gin.Context) *models.TenantContext {
	tc := middleware.GetTenantContext(c)
	if tc == nil {
		response.Unauthorized(c, "请先登录")
	}
	return tc
}

// fail 按错误码写响应
func fail(c *gin.Context, err error, fallback string) {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		response.NotFound(c, "记录不存在")
		return
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		response.Error(c, appErr.Code, appErr.Message)
		return
	}

	response.ServerError(c, fallback)
}

// queryUint 解析查询参数里的无符号整数，非法时返回0
func queryUint(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(c.Query(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// paramUint 解析路径参数里的无符号整数，非法时返回0
func paramUint(c *gin.Context, key string) uint {
	v, err := strconv.ParseUint(c.Param(key), 10, 32)
	if err != nil {
		return 0
	}
	return uint(v)
}

// bindError 解析请求绑定错误，对验证错误给出字段级提示
func bindError(c *gin.Context, err error) {
	if validationErr, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErr {
			var msg string
			switch fieldErr.Tag() {
			case "required":
				msg = fmt.Sprintf("参数验证失败：字段 %s 不能为空", fieldErr.Field())
			case "email":
				msg = fmt.Sprintf("参数验证失败：字段 %s 必须是合法的邮箱地址", fieldErr.Field())
			case "min", "max":
				msg = fmt.Sprintf("参数验证失败：字段 %s 长度或取值超出范围", fieldErr.Field())
			case "oneof":
				msg = fmt.Sprintf("参数验证失败：字段 %s 必须是 %s 之一",
					fieldErr.Field(), strings.ReplaceAll(fieldErr.Param(), " ", "、"))
			default:
				msg = fmt.Sprintf("参数验证失败：字段 %s 不符合 %s 规则", fieldErr.Field(), fieldErr.Tag())
			}
			// 只返回第一个错误
			response.BadRequest(c, msg)
			return
		}
	}
	response.BadRequest(c, "请求参数格式错误")
}
