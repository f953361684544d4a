package jwt

import (
	"errors"
	"sync"
	"time"

	"riveredge/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims JWT声明
type JWTClaims struct {
	UserID            uint   `json:"user_id"`
	TenantID          uint   `json:"tenant_id"` // 用户所属租户
	Username          string `json:"username"`
	IsInfraAdmin      bool   `json:"is_infra_admin"`  // 平台级管理员
	IsTenantAdmin     bool   `json:"is_tenant_admin"` // 租户管理员
	PermissionVersion int64  `json:"permission_version"`
	jwt.RegisteredClaims
}

// PreviewClaims 文件预览令牌声明，只允许访问指定文件
type PreviewClaims struct {
	FileUUID string `json:"file_uuid"`
	TenantID uint   `json:"tenant_id"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// JWTManager JWT管理器
type JWTManager struct {
	secretKey       string
	tokenDuration   time.Duration
	previewDuration time.Duration
}

// NewJWTManager 创建JWT管理器
func NewJWTManager(secretKey string, tokenDuration, previewDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:       secretKey,
		tokenDuration:   tokenDuration,
		previewDuration: previewDuration,
	}
}

// GenerateToken 生成JWT令牌
func (manager *JWTManager) GenerateToken(userID, tenantID uint, username string, isInfraAdmin, isTenantAdmin bool, permissionVersion int64) (string, error) {
	claims := JWTClaims{
		UserID:            userID,
		TenantID:          tenantID,
		Username:          username,
		IsInfraAdmin:      isInfraAdmin,
		IsTenantAdmin:     isTenantAdmin,
		PermissionVersion: permissionVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(manager.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "RiverEdge",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyToken 验证JWT令牌
func (manager *JWTManager) VerifyToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&JWTClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// 验证签名方法
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("意外的签名方法")
			}
			return []byte(manager.secretKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok {
		return nil, errors.New("无法解析token声明")
	}

	return claims, nil
}

// RefreshToken 刷新令牌
func (manager *JWTManager) RefreshToken(tokenString string) (string, error) {
	claims, err := manager.VerifyToken(tokenString)
	if err != nil {
		return "", err
	}

	return manager.GenerateToken(
		claims.UserID,
		claims.TenantID,
		claims.Username,
		claims.IsInfraAdmin,
		claims.IsTenantAdmin,
		claims.PermissionVersion,
	)
}

// GeneratePreviewToken 生成文件预览短时令牌
func (manager *JWTManager) GeneratePreviewToken(fileUUID string, tenantID uint) (string, error) {
	claims := PreviewClaims{
		FileUUID: fileUUID,
		TenantID: tenantID,
		Scope:    "preview",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(manager.previewDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "RiverEdge",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(manager.secretKey))
}

// VerifyPreviewToken 验证文件预览令牌
func (manager *JWTManager) VerifyPreviewToken(tokenString string) (*PreviewClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&PreviewClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("意外的签名方法")
			}
			return []byte(manager.secretKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*PreviewClaims)
	if !ok || claims.Scope != "preview" {
		return nil, errors.New("无效的预览令牌")
	}

	return claims, nil
}

// GetTokenDuration 获取令牌有效期
func (manager *JWTManager) GetTokenDuration() time.Duration {
	return manager.tokenDuration
}

// 单例实现
var (
	defaultManager *JWTManager
	once           sync.Once
)

// GetJWTManager 获取全局JWT管理器实例
func GetJWTManager() *JWTManager {
	once.Do(func() {
		cfg := config.GetConfig()
		tokenDuration, err := time.ParseDuration(cfg.JWT.TokenDuration)
		if err != nil {
			tokenDuration = 24 * time.Hour
		}
		previewDuration, err := time.ParseDuration(cfg.JWT.PreviewDuration)
		if err != nil {
			previewDuration = time.Hour
		}
		defaultManager = NewJWTManager(cfg.JWT.SecretKey, tokenDuration, previewDuration)
	})
	return defaultManager
}
