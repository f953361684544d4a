package middleware

import (
	"strings"

	"riveredge/internal/models"
	"riveredge/internal/services"
	"riveredge/pkg/jwt"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证与权限中间件
type AuthMiddleware struct {
	userService       *services.UserService
	permissionService *services.PermissionService
	authService       *services.AuthService
	jwtManager        *jwt.JWTManager
}

func NewAuthMiddleware() *AuthMiddleware {
	return &AuthMiddleware{
		userService:       services.NewUserService(),
		permissionService: services.NewPermissionService(),
		authService:       services.NewAuthService(),
		jwtManager:        jwt.GetJWTManager(),
	}
}

// RequireLogin 解析JWT并把租户上下文写入请求
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.Unauthorized(c, "认证头格式错误")
			c.Abort()
			return
		}
		tokenString := authHeader[7:]

		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.Unauthorized(c, "Token无效或已过期")
			c.Abort()
			return
		}

		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.Unauthorized(c, "用户不存在")
			c.Abort()
			return
		}
		if !user.IsActive {
			response.Unauthorized(c, "用户已被禁用")
			c.Abort()
			return
		}

		tc := &models.TenantContext{
			TenantID:          claims.TenantID,
			UserID:            claims.UserID,
			Username:          claims.Username,
			IsInfraAdmin:      claims.IsInfraAdmin,
			IsTenantAdmin:     claims.IsTenantAdmin,
			PermissionVersion: claims.PermissionVersion,
		}

		c.Set("user", user)
		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Set("username", claims.Username)
		c.Set("is_infra_admin", claims.IsInfraAdmin)
		c.Set("is_tenant_admin", claims.IsTenantAdmin)
		c.Set("tenant_context", tc)

		// 在线状态跟踪
		m.authService.TouchActivity(claims.TenantID, claims.UserID, c.ClientIP(), nil)

		c.Next()
	}
}

// RequirePermission 要求特定权限编码
func (m *AuthMiddleware) RequirePermission(permissionCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := GetTenantContext(c)
		if tc == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}

		hasPermission, err := m.permissionService.HasPermission(c.Request.Context(), tc, permissionCode)
		if err != nil {
			response.ServerError(c, "权限检查失败")
			c.Abort()
			return
		}
		if !hasPermission {
			response.Forbidden(c, "权限不足：需要 "+permissionCode+" 权限")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireInfraAdmin 要求平台级管理员
func (m *AuthMiddleware) RequireInfraAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := GetTenantContext(c)
		if tc == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if !tc.IsInfraAdmin {
			response.Forbidden(c, "需要平台管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireTenantAdmin 要求租户管理员或平台管理员
func (m *AuthMiddleware) RequireTenantAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := GetTenantContext(c)
		if tc == nil {
			response.Unauthorized(c, "请先登录")
			c.Abort()
			return
		}
		if !tc.IsInfraAdmin && !tc.IsTenantAdmin {
			response.Forbidden(c, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetTenantContext 取出请求的租户上下文
func GetTenantContext(c *gin.Context) *models.TenantContext {
	v, exists := c.Get("tenant_context")
	if !exists {
		return nil
	}
	tc, ok := v.(*models.TenantContext)
	if !ok {
		return nil
	}
	return tc
}
