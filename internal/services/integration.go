package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/errors"
	"riveredge/pkg/logger"
	"riveredge/pkg/search"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// 连接测试超时
const connectTestTimeout = 5 * time.Second

type IntegrationService struct {
	db         *gorm.DB
	httpClient *http.Client
}

func NewIntegrationService() *IntegrationService {
	return &IntegrationService{
		db:         database.GetDB(),
		httpClient: &http.Client{Timeout: connectTestTimeout},
	}
}

// NewIntegrationServiceWith 注入依赖的构造方式（测试用）
func NewIntegrationServiceWith(db *gorm.DB, client *http.Client) *IntegrationService {
	if client == nil {
		client = &http.Client{Timeout: connectTestTimeout}
	}
	return &IntegrationService{db: db, httpClient: client}
}

// 各连接类型必填的配置字段
var integrationRequiredFields = map[string][]string{
	models.IntegrationPostgreSQL: {"host", "port", "database", "username"},
	models.IntegrationMySQL:      {"host", "port", "database", "username"},
	models.IntegrationMongoDB:    {"host", "port", "database"},
	models.IntegrationOracle:     {"host", "port", "service_name", "username"},
	models.IntegrationSQLServer:  {"host", "port", "database", "username"},
	models.IntegrationRedis:      {"host", "port"},
	models.IntegrationClickHouse: {"host", "port", "database"},
	models.IntegrationInfluxDB:   {"host", "port", "bucket"},
	models.IntegrationDoris:      {"host", "port", "database"},
	models.IntegrationStarRocks:  {"host", "port", "database"},
	models.IntegrationElastic:    {"host", "port"},
	models.IntegrationAPI:        {"base_url"},
}

// validateConfig 校验连接配置必填字段
func validateConfig(integrationType string, config map[string]interface{}) error {
	required, ok := integrationRequiredFields[integrationType]
	if !ok {
		// 应用连接器统一要求base_url
		required = []string{"base_url"}
	}
	for _, field := range required {
		v, exists := config[field]
		if !exists || v == nil || fmt.Sprintf("%v", v) == "" {
			return fmt.Errorf("连接配置缺少必填字段: %s", field)
		}
	}
	return nil
}

// Create 创建数据连接
func (s *IntegrationService) Create(tenantID uint, config *models.IntegrationConfig) error {
	known := false
	if _, ok := integrationRequiredFields[config.Type]; ok {
		known = true
	}
	if config.IsAppConnector() {
		known = true
	}
	if !known {
		return fmt.Errorf("不支持的连接类型: %s", config.Type)
	}
	if err := validateConfig(config.Type, config.Config); err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.IntegrationConfig{}).
		Where("tenant_id = ? AND code = ?", tenantID, config.Code).Count(&count)
	if count > 0 {
		return fmt.Errorf("连接编码已存在: %s", config.Code)
	}

	config.TenantID = tenantID
	return s.db.Create(config).Error
}

// Update 更新数据连接
func (s *IntegrationService) Update(tenantID uint, id uint, updates map[string]interface{}) (*models.IntegrationConfig, error) {
	var config models.IntegrationConfig
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&config).Error; err != nil {
		return nil, err
	}

	delete(updates, "tenant_id")
	delete(updates, "code")
	if err := s.db.Model(&config).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

// Delete 删除数据连接，有数据集引用时拒绝
func (s *IntegrationService) Delete(tenantID uint, id uint) error {
	var datasetCount int64
	s.db.Model(&models.Dataset{}).
		Where("tenant_id = ? AND integration_config_id = ?", tenantID, id).Count(&datasetCount)
	if datasetCount > 0 {
		return errors.New(errors.CodeDependencyConflict, "该连接被 %d 个数据集引用，无法删除", datasetCount)
	}

	return s.db.Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&models.IntegrationConfig{}).Error
}

// GetByID 查询数据连接
func (s *IntegrationService) GetByID(tenantID uint, id uint) (*models.IntegrationConfig, error) {
	var config models.IntegrationConfig
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

// GetByUUID 按UUID查询数据连接
func (s *IntegrationService) GetByUUID(tenantID uint, uuid string) (*models.IntegrationConfig, error) {
	var config models.IntegrationConfig
	if err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&config).Error; err != nil {
		return nil, err
	}
	return &config, nil
}

// List 查询数据连接列表
func (s *IntegrationService) List(tenantID uint, opts search.Options, page, pageSize int) ([]models.IntegrationConfig, int64, error) {
	var configs []models.IntegrationConfig
	var total int64

	opts.KeywordFields = []string{"code", "name"}
	opts.AllowedSorts = []string{"code", "name", "type", "created_at"}
	query := s.db.Model(&models.IntegrationConfig{}).Where("tenant_id = ?", tenantID)
	query = search.Apply(query, opts)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Find(&configs).Error; err != nil {
		return nil, 0, err
	}
	return configs, total, nil
}

// ========== 连接测试 ==========

// TestConnection 测试连接并回写连接状态
func (s *IntegrationService) TestConnection(tenantID uint, id uint) error {
	config, err := s.GetByID(tenantID, id)
	if err != nil {
		return err
	}

	testErr := s.probe(config)

	updates := map[string]interface{}{
		"is_connected": testErr == nil,
		"last_error":   "",
	}
	if testErr == nil {
		now := time.Now()
		updates["last_connected_at"] = &now
	} else {
		updates["last_error"] = testErr.Error()
	}
	if err := s.db.Model(config).Updates(updates).Error; err != nil {
		logger.GetLogger().WithError(err).Warn("更新连接状态失败")
	}

	if testErr != nil {
		return errors.New(errors.CodeIntegrationUnavailable, "%s", testErr.Error())
	}
	return nil
}

func (s *IntegrationService) probe(config *models.IntegrationConfig) error {
	if err := validateConfig(config.Type, config.Config); err != nil {
		return err
	}

	switch {
	case config.Type == models.IntegrationPostgreSQL:
		return s.probePostgres(config.Config)
	case config.Type == models.IntegrationAPI || config.IsAppConnector():
		return s.probeREST(config.Config)
	default:
		// 其他数据源在内核侧只做配置校验
		return nil
	}
}

// probePostgres 建立原生连接并Ping
func (s *IntegrationService) probePostgres(cfg map[string]interface{}) error {
	dsn := buildPostgresDSN(cfg)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("连接失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), connectTestTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("连接失败: %v", err)
	}
	return nil
}

// probeREST 对base_url发起健康检查GET
func (s *IntegrationService) probeREST(cfg map[string]interface{}) error {
	baseURL := strings.TrimRight(fmt.Sprintf("%v", cfg["base_url"]), "/")
	endpoint := "/"
	if v, ok := cfg["health_endpoint"]; ok && v != nil {
		endpoint = fmt.Sprintf("%v", v)
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	req, err := http.NewRequest(http.MethodGet, baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	if authType, ok := cfg["auth_type"]; ok && fmt.Sprintf("%v", authType) == "bearer" {
		if token, ok := cfg["token"]; ok {
			req.Header.Set("Authorization", "Bearer "+fmt.Sprintf("%v", token))
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("连接失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("服务端返回状态码 %d", resp.StatusCode)
	}
	return nil
}

func buildPostgresDSN(cfg map[string]interface{}) string {
	sslMode := "disable"
	if v, ok := cfg["ssl_mode"]; ok && v != nil && fmt.Sprintf("%v", v) != "" {
		sslMode = fmt.Sprintf("%v", v)
	}
	password := ""
	if v, ok := cfg["password"]; ok && v != nil {
		password = fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("host=%v port=%v user=%v password=%s dbname=%v sslmode=%s",
		cfg["host"], cfg["port"], cfg["username"], password, cfg["database"], sslMode)
}
