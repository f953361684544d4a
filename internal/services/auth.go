package services

import (
	"context"
	"fmt"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/cache"
	"riveredge/pkg/config"
	"riveredge/pkg/jwt"
	"riveredge/pkg/logger"

	"gorm.io/gorm"
)

type AuthService struct {
	db      *gorm.DB
	cache   *cache.Cache
	version *PermissionVersionService
}

func NewAuthService() *AuthService {
	c := database.GetCache()
	return &AuthService{
		db:      database.GetDB(),
		cache:   c,
		version: NewPermissionVersionService(c),
	}
}

// LoginResult 登录结果
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login 用户登录
// 租户非active状态拒绝登录；成功写登录日志并更新最后登录时间
func (s *AuthService) Login(domain, username, password, ip, userAgent string) (*LoginResult, error) {
	var tenant models.Tenant
	if err := s.db.Where("domain = ?", domain).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("租户不存在")
	}
	if !tenant.CanLogin() {
		s.writeLoginLog(tenant.ID, 0, username, ip, userAgent, false, "租户已停用")
		return nil, fmt.Errorf("租户已停用或过期，禁止登录")
	}

	var user models.User
	err := s.db.Where("tenant_id = ? AND username = ?", tenant.ID, username).First(&user).Error
	if err != nil {
		s.writeLoginLog(tenant.ID, 0, username, ip, userAgent, false, "用户不存在")
		return nil, fmt.Errorf("用户名或密码错误")
	}

	if !user.IsActive {
		s.writeLoginLog(tenant.ID, user.ID, username, ip, userAgent, false, "用户已停用")
		return nil, fmt.Errorf("用户已停用")
	}

	if !user.CheckPassword(password) {
		s.writeLoginLog(tenant.ID, user.ID, username, ip, userAgent, false, "密码错误")
		return nil, fmt.Errorf("用户名或密码错误")
	}

	version, _ := s.version.Get(context.Background(), tenant.ID)
	token, err := jwt.GetJWTManager().GenerateToken(
		user.ID, tenant.ID, user.Username,
		user.IsInfraAdmin, user.IsTenantAdmin, version)
	if err != nil {
		return nil, fmt.Errorf("生成令牌失败: %v", err)
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", now)
	s.writeLoginLog(tenant.ID, user.ID, username, ip, userAgent, true, "")
	s.TouchActivity(tenant.ID, user.ID, ip, &now)

	return &LoginResult{Token: token, User: &user}, nil
}

func (s *AuthService) writeLoginLog(tenantID, userID uint, username, ip, userAgent string, success bool, message string) {
	log := models.LoginLog{
		TenantID:  tenantID,
		UserID:    userID,
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Success:   success,
		Message:   message,
	}
	if err := s.db.Create(&log).Error; err != nil {
		logger.GetLogger().Warnf("写入登录日志失败: %v", err)
	}
}

// ========== 在线用户 ==========

// OnlineEntry 在线用户记录
type OnlineEntry struct {
	TenantID         uint      `json:"tenant_id"`
	UserID           uint      `json:"user_id"`
	LastActivityTime time.Time `json:"last_activity_time"`
	LoginIP          string    `json:"login_ip"`
	LoginTime        time.Time `json:"login_time"`
}

func onlineKey(tenantID, userID uint) string {
	return fmt.Sprintf("online:%d:%d", tenantID, userID)
}

// TouchActivity 每次认证请求刷新活动时间
// loginTime非空表示登录动作，会重置登录时间和IP
func (s *AuthService) TouchActivity(tenantID, userID uint, ip string, loginTime *time.Time) {
	ctx := context.Background()
	cfg := config.GetConfig()
	ttl := time.Duration(cfg.Online.ThresholdMinutes+10) * time.Minute

	entry := OnlineEntry{
		TenantID:         tenantID,
		UserID:           userID,
		LastActivityTime: time.Now(),
	}
	var existing OnlineEntry
	if hit, err := s.cache.Get(ctx, onlineKey(tenantID, userID), &existing); err == nil && hit {
		entry.LoginIP = existing.LoginIP
		entry.LoginTime = existing.LoginTime
	}
	if loginTime != nil {
		entry.LoginTime = *loginTime
		entry.LoginIP = ip
	}

	if err := s.cache.Set(ctx, onlineKey(tenantID, userID), entry, ttl); err != nil {
		logger.GetLogger().Warnf("刷新在线状态失败: %v", err)
	}
}

// IsOnline 是否在线：缓存命中且最近活动在阈值内
func (s *AuthService) IsOnline(tenantID, userID uint) (bool, error) {
	ctx := context.Background()
	cfg := config.GetConfig()

	var entry OnlineEntry
	hit, err := s.cache.Get(ctx, onlineKey(tenantID, userID), &entry)
	if err != nil || !hit {
		return false, err
	}
	threshold := time.Duration(cfg.Online.ThresholdMinutes) * time.Minute
	return time.Since(entry.LastActivityTime) <= threshold, nil
}

// IsUserActive 是否活跃：最近活动5分钟内
func (s *AuthService) IsUserActive(tenantID, userID uint) (bool, error) {
	ctx := context.Background()
	cfg := config.GetConfig()

	var entry OnlineEntry
	hit, err := s.cache.Get(ctx, onlineKey(tenantID, userID), &entry)
	if err != nil || !hit {
		return false, err
	}
	active := time.Duration(cfg.Online.ActiveMinutes) * time.Minute
	return time.Since(entry.LastActivityTime) <= active, nil
}

// ForceLogout 强制下线，删除在线记录
func (s *AuthService) ForceLogout(tenantID, userID uint) error {
	return s.cache.Delete(context.Background(), onlineKey(tenantID, userID))
}
