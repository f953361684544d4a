package middleware

import (
	"time"

	"riveredge/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupCORS 按配置构建CORS中间件
// AllowOrigins含"*"时凭证必须关闭，gin-contrib/cors会直接panic
func SetupCORS() gin.HandlerFunc {
	cfg := config.GetConfig()

	corsConfig := cors.Config{
		AllowMethods:  cfg.CORS.AllowMethods,
		AllowHeaders:  cfg.CORS.AllowHeaders,
		ExposeHeaders: cfg.CORS.ExposeHeaders,
		MaxAge:        time.Duration(cfg.CORS.MaxAge) * time.Hour,
	}

	allowAll := false
	for _, origin := range cfg.CORS.AllowOrigins {
		if origin == "*" {
			allowAll = true
			break
		}
	}
	if allowAll {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORS.AllowOrigins
		corsConfig.AllowCredentials = cfg.CORS.AllowCredentials
	}

	return cors.New(corsConfig)
}
