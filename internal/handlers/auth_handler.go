package handlers

import (
	"strings"

	"riveredge/internal/services"
	"riveredge/pkg/jwt"
	"riveredge/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService       *services.AuthService
	userService       *services.UserService
	permissionService *services.PermissionService
	jwtManager        *jwt.JWTManager
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService, permissionService *services.PermissionService) *AuthHandler {
	return &AuthHandler{
		authService:       authService,
		userService:       userService,
		permissionService: permissionService,
		jwtManager:        jwt.GetJWTManager(),
	}
}

type LoginRequest struct {
	Domain   string `json:"domain" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authService.Login(req.Domain, req.Username, req.Password, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	response.Success(c, result)
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		response.Unauthorized(c, "认证头格式错误")
		return
	}

	token, err := h.jwtManager.RefreshToken(authHeader[7:])
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}

	response.Success(c, gin.H{"token": token})
}

// Profile 当前用户信息与权限编码
func (h *AuthHandler) Profile(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	user, _ := c.Get("user")
	codes, err := h.permissionService.GetUserPermissionCodes(c.Request.Context(), tc.TenantID, tc.UserID)
	if err != nil {
		response.ServerError(c, "查询权限失败")
		return
	}

	response.Success(c, gin.H{
		"user":        user,
		"permissions": codes,
	})
}

// Logout 退出登录，清除在线状态
func (h *AuthHandler) Logout(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	if err := h.authService.ForceLogout(tc.TenantID, tc.UserID); err != nil {
		response.ServerError(c, "退出失败")
		return
	}
	response.SuccessWithMessage(c, "已退出登录", nil)
}

// OnlineStatus 查询指定用户在线状态
func (h *AuthHandler) OnlineStatus(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	user, err := h.userService.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	online, err := h.authService.IsOnline(tc.TenantID, user.ID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	active, _ := h.authService.IsUserActive(tc.TenantID, user.ID)

	response.Success(c, gin.H{"online": online, "active": active})
}

// ForceLogout 管理员强制下线指定用户
func (h *AuthHandler) ForceLogout(c *gin.Context) {
	tc := tenantOf(c)
	if tc == nil {
		return
	}

	user, err := h.userService.GetByUUID(tc.TenantID, c.Param("uuid"))
	if err != nil {
		response.NotFound(c, "用户不存在")
		return
	}

	if err := h.authService.ForceLogout(tc.TenantID, user.ID); err != nil {
		response.ServerError(c, "强制下线失败")
		return
	}
	response.SuccessWithMessage(c, "已强制下线", nil)
}
