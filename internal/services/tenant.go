package services

import (
	"encoding/json"
	"fmt"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/logger"
	"riveredge/pkg/pagination"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TenantService struct {
	db *gorm.DB
}

func NewTenantService() *TenantService {
	return &TenantService{db: database.GetDB()}
}

// ========== 基础CRUD方法 ==========

// Create 创建租户并初始化种子数据
// 仅平台管理员可调用（在handler层校验）
func (s *TenantService) Create(name, domain, plan string, maxUsers int, expiresAt *time.Time) (*models.Tenant, error) {
	if name == "" || domain == "" {
		return nil, fmt.Errorf("租户名称和域名不能为空")
	}

	var count int64
	s.db.Model(&models.Tenant{}).Where("domain = ?", domain).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("域名已被占用")
	}

	if maxUsers <= 0 {
		maxUsers = 50
	}
	if plan == "" {
		plan = "standard"
	}

	tenant := &models.Tenant{
		Name:      name,
		Domain:    domain,
		Status:    models.TenantStatusActive,
		Plan:      plan,
		MaxUsers:  maxUsers,
		ExpiresAt: expiresAt,
		Settings:  datatypes.JSONMap{},
	}

	if err := s.db.Create(tenant).Error; err != nil {
		return nil, err
	}

	if err := s.Seed(tenant); err != nil {
		return nil, fmt.Errorf("租户初始化失败: %v", err)
	}

	return tenant, nil
}

// GetByUUID 根据UUID获取租户
func (s *TenantService) GetByUUID(uuid string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := s.db.Where("uuid = ?", uuid).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// List 分页查询租户
func (s *TenantService) List(params *pagination.PageParams) ([]models.Tenant, int64, error) {
	query := s.db.Model(&models.Tenant{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tenants []models.Tenant
	err := query.Order("created_at DESC").
		Offset(params.GetOffset()).Limit(params.GetLimit()).
		Find(&tenants).Error
	if err != nil {
		return nil, 0, err
	}

	for i := range tenants {
		var userCount int64
		s.db.Model(&models.User{}).Where("tenant_id = ?", tenants[i].ID).Count(&userCount)
		tenants[i].UserCount = int(userCount)
	}
	return tenants, total, nil
}

// Update 更新租户
func (s *TenantService) Update(uuid string, name, plan string, maxUsers int, expiresAt *time.Time) (*models.Tenant, error) {
	tenant, err := s.GetByUUID(uuid)
	if err != nil {
		return nil, err
	}

	tenant.Name = name
	if plan != "" {
		tenant.Plan = plan
	}
	if maxUsers > 0 {
		tenant.MaxUsers = maxUsers
	}
	tenant.ExpiresAt = expiresAt

	err = s.db.Save(tenant).Error
	return tenant, err
}

// SetStatus 启用/停用租户
// 租户不允许物理删除，只能停用；停用后该租户所有用户禁止登录
func (s *TenantService) SetStatus(uuid, status string) (*models.Tenant, error) {
	if status != models.TenantStatusActive && status != models.TenantStatusInactive {
		return nil, fmt.Errorf("无效的租户状态")
	}

	tenant, err := s.GetByUUID(uuid)
	if err != nil {
		return nil, err
	}

	tenant.Status = status
	err = s.db.Save(tenant).Error
	return tenant, err
}

// ========== 种子数据 ==========

// Seed 初始化租户默认数据：角色、权限、语言、站点设置，并执行插件扫描
func (s *TenantService) Seed(tenant *models.Tenant) error {
	appLogger := logger.GetLogger()

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 默认权限
		for _, p := range defaultPermissions(tenant.ID) {
			perm := p
			if err := tx.Create(&perm).Error; err != nil {
				return err
			}
		}

		// 系统管理员角色：不建RolePermission行，读取时合成全量权限
		adminRole := models.Role{
			TenantID:    tenant.ID,
			Code:        "SYSTEM_ADMIN",
			Name:        models.SystemAdminRoleName,
			Description: "拥有租户内全部权限",
			IsSystem:    true,
			Status:      models.RoleStatusActive,
		}
		if err := tx.Create(&adminRole).Error; err != nil {
			return err
		}

		// 默认语言
		languages := []models.Language{
			{TenantID: tenant.ID, Code: "zh-CN", Name: "简体中文", IsDefault: true, IsActive: true},
			{TenantID: tenant.ID, Code: "en-US", Name: "English", IsActive: true},
		}
		for _, l := range languages {
			lang := l
			if err := tx.Create(&lang).Error; err != nil {
				return err
			}
		}

		// 站点设置
		setting := models.SiteSetting{
			TenantID: tenant.ID,
			Settings: datatypes.JSONMap{"site_name": tenant.Name},
		}
		if err := tx.Create(&setting).Error; err != nil {
			return err
		}

		// 各业务页的默认编码规则，前缀+年月+4位序号，按月重置
		return seedDefaultCodeRules(tx, tenant.ID)
	})
	if err != nil {
		return err
	}

	// 插件扫描同步应用与菜单，失败不影响租户创建
	appService := NewApplicationService()
	if err := appService.ScanPluginsForTenant(tenant.ID); err != nil {
		appLogger.Warnf("租户 %s 插件扫描失败: %v", tenant.Domain, err)
	}

	appLogger.Infof("租户 %s 初始化完成", tenant.Domain)
	return nil
}

func defaultPermissions(tenantID uint) []models.Permission {
	specs := []struct {
		resource string
		name     string
	}{
		{"user", "用户"}, {"role", "角色"}, {"permission", "权限"},
		{"menu", "菜单"}, {"department", "部门"}, {"position", "岗位"},
		{"application", "应用"}, {"code_rule", "编码规则"},
		{"approval", "审批流程"}, {"integration", "数据连接"},
		{"dataset", "数据集"}, {"dictionary", "数据字典"},
		{"api", "接口"}, {"file", "文件"},
		{"document_relation", "单据关联"}, {"log", "日志"},
	}
	actions := []struct {
		action string
		label  string
	}{
		{models.ActionCreate, "创建"}, {models.ActionRead, "查看"},
		{models.ActionUpdate, "更新"}, {models.ActionDelete, "删除"},
		{models.ActionList, "列表"},
	}

	var permissions []models.Permission
	for _, spec := range specs {
		for _, act := range actions {
			permissions = append(permissions, models.Permission{
				TenantID:       tenantID,
				Code:           fmt.Sprintf("%s:%s", spec.resource, act.action),
				Name:           act.label + spec.name,
				Resource:       spec.resource,
				Action:         act.action,
				PermissionType: models.PermissionTypeFunction,
			})
		}
	}

	// 页面操作之外的动作权限
	extras := []models.Permission{
		{TenantID: tenantID, Code: "user:assign_role", Name: "分配角色", Resource: "user", Action: "assign_role"},
		{TenantID: tenantID, Code: "dataset:execute", Name: "执行数据集", Resource: "dataset", Action: "execute"},
		{TenantID: tenantID, Code: "message:send", Name: "发送消息", Resource: "message", Action: "send"},
		{TenantID: tenantID, Code: "approval:manage", Name: "管理审批流程", Resource: "approval", Action: "manage"},
		{TenantID: tenantID, Code: "document_relation:apply", Name: "应用变更影响", Resource: "document_relation", Action: "apply"},
	}
	for i := range extras {
		extras[i].PermissionType = models.PermissionTypeFunction
	}
	return append(permissions, extras...)
}

func seedDefaultCodeRules(tx *gorm.DB, tenantID uint) error {
	for page, prefix := range codeRulePagePrefixes {
		components := []models.RuleComponent{
			{Type: models.ComponentFixedText, Value: prefix},
			{Type: models.ComponentDate, Format: "YYYY"},
			{Type: models.ComponentDate, Format: "MM"},
			{Type: models.ComponentCounter, Width: 4, ResetCycle: models.ResetMonthly},
		}
		raw, err := json.Marshal(components)
		if err != nil {
			return err
		}
		rule := models.CodeRule{
			TenantID:       tenantID,
			Code:           page,
			Name:           prefix + "编码规则",
			Expression:     BuildExpression(components),
			RuleComponents: raw,
			SeqStart:       1,
			SeqStep:        1,
			SeqResetRule:   models.ResetMonthly,
			IsSystem:       true,
			IsActive:       true,
		}
		if err := tx.Create(&rule).Error; err != nil {
			return err
		}
	}
	return nil
}

// ========== 到期巡检 ==========

// TenantExpirySweeper 租户到期巡检，定时把过期租户置为expired
type TenantExpirySweeper struct {
	db   *gorm.DB
	cron *cron.Cron
}

func NewTenantExpirySweeper() *TenantExpirySweeper {
	return &TenantExpirySweeper{
		db:   database.GetDB(),
		cron: cron.New(),
	}
}

// Start 启动巡检，每小时执行一次
func (w *TenantExpirySweeper) Start() error {
	_, err := w.cron.AddFunc("@hourly", w.sweep)
	if err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Stop 停止巡检
func (w *TenantExpirySweeper) Stop() {
	w.cron.Stop()
}

func (w *TenantExpirySweeper) sweep() {
	result := w.db.Model(&models.Tenant{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?",
			models.TenantStatusActive, time.Now()).
		Update("status", models.TenantStatusExpired)
	if result.Error != nil {
		logger.GetLogger().Errorf("租户到期巡检失败: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		logger.GetLogger().Infof("已将 %d 个到期租户置为expired", result.RowsAffected)
	}
}
