package middleware

import (
	"riveredge/pkg/logger"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorHandler 兜住处理链中的panic，返回统一错误封装
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.GetLogger().WithField("path", c.Request.URL.Path).
					Errorf("Panic recovered: %v", err)
				response.ServerError(c, "服务器内部错误")
				c.Abort()
			}
		}()

		c.Next()
	}
}
