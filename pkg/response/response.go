package response

import (
	"net/http"

	"riveredge/pkg/errors"
	"riveredge/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式，业务码与HTTP状态解耦（HTTP恒为200）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func write(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: code, Message: message, Data: data})
}

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	write(c, errors.CodeSuccess, "success", data)
}

// SuccessWithMessage 成功返回，自定义提示
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, errors.CodeSuccess, message, data)
}

// SuccessWithPage 分页成功返回，额外携带page_info
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error 按业务码返回错误
func Error(c *gin.Context, code int, message string) {
	write(c, code, message, nil)
}

// ========== 错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}
