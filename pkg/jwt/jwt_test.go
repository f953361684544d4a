package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *JWTManager {
	return NewJWTManager("test-secret", time.Hour, 30*time.Minute)
}

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GenerateToken(7, 3, "zhangsan", false, true, 12)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, uint(3), claims.TenantID)
	assert.Equal(t, "zhangsan", claims.Username)
	assert.False(t, claims.IsInfraAdmin)
	assert.True(t, claims.IsTenantAdmin)
	assert.Equal(t, int64(12), claims.PermissionVersion)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := newTestManager().GenerateToken(1, 1, "user", false, false, 0)
	require.NoError(t, err)

	other := NewJWTManager("another-secret", time.Hour, time.Hour)
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute, time.Hour)
	token, err := manager.GenerateToken(1, 1, "user", false, false, 0)
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	manager := newTestManager()
	token, err := manager.GenerateToken(5, 2, "lisi", true, false, 3)
	require.NoError(t, err)

	refreshed, err := manager.RefreshToken(token)
	require.NoError(t, err)

	claims, err := manager.VerifyToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.UserID)
	assert.True(t, claims.IsInfraAdmin)
	assert.Equal(t, int64(3), claims.PermissionVersion)
}

func TestPreviewToken(t *testing.T) {
	manager := newTestManager()

	token, err := manager.GeneratePreviewToken("f8a0c1e2-1111-2222-3333-444455556666", 9)
	require.NoError(t, err)

	claims, err := manager.VerifyPreviewToken(token)
	require.NoError(t, err)
	assert.Equal(t, "f8a0c1e2-1111-2222-3333-444455556666", claims.FileUUID)
	assert.Equal(t, uint(9), claims.TenantID)
	assert.Equal(t, "preview", claims.Scope)
}

func TestPreviewTokenRejectsLoginToken(t *testing.T) {
	manager := newTestManager()
	token, err := manager.GenerateToken(1, 1, "user", false, false, 0)
	require.NoError(t, err)

	// 登录令牌没有preview作用域，不能当预览令牌用
	_, err = manager.VerifyPreviewToken(token)
	assert.Error(t, err)
}
