package errors

import "fmt"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// 业务错误码 (1000+)
const (
	CodeDependencyConflict     = 1001 // 存在下游依赖，拒绝删除
	CodeUnsafeQuery            = 1002 // 数据集SQL未通过安全校验
	CodeIntegrationUnavailable = 1003 // 集成配置不可用或连接失败
	CodeApprovalState          = 1004 // 审批流程状态不允许该操作
	CodeCodeRuleExhausted      = 1005 // 编码序号超出位数上限
)

// AppError 业务错误，携带错误码
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// New 创建业务错误
func New(code int, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound 资源不存在
func NewNotFound(format string, args ...interface{}) *AppError {
	return New(CodeNotFound, format, args...)
}

// NewInvalidParam 参数错误
func NewInvalidParam(format string, args ...interface{}) *AppError {
	return New(CodeInvalidParam, format, args...)
}

// NewForbidden 权限不足
func NewForbidden(format string, args ...interface{}) *AppError {
	return New(CodeForbidden, format, args...)
}

// NewConflict 资源冲突
func NewConflict(format string, args ...interface{}) *AppError {
	return New(CodeConflict, format, args...)
}

// CodeOf 提取错误码，非业务错误按500处理
func CodeOf(err error) int {
	if err == nil {
		return CodeSuccess
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeServerError
}
