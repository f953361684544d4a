package services

import (
	"testing"

	"riveredge/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	err := validateConfig(models.IntegrationPostgreSQL, map[string]interface{}{
		"host": "db.local", "port": 5432, "database": "erp", "username": "app",
	})
	assert.NoError(t, err)
}

func TestValidateConfigMissingField(t *testing.T) {
	err := validateConfig(models.IntegrationPostgreSQL, map[string]interface{}{
		"host": "db.local", "port": 5432, "database": "erp",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "username")
}

func TestValidateConfigEmptyValue(t *testing.T) {
	err := validateConfig(models.IntegrationRedis, map[string]interface{}{
		"host": "", "port": 6379,
	})
	assert.Error(t, err)
}

func TestValidateConfigAppConnector(t *testing.T) {
	// 应用连接器统一要求base_url
	assert.Error(t, validateConfig("feishu", map[string]interface{}{}))
	assert.NoError(t, validateConfig("feishu", map[string]interface{}{"base_url": "https://open.feishu.cn"}))
}

func TestBuildPostgresDSN(t *testing.T) {
	dsn := buildPostgresDSN(map[string]interface{}{
		"host": "db.local", "port": 5432, "username": "app",
		"password": "secret", "database": "erp",
	})
	assert.Equal(t, "host=db.local port=5432 user=app password=secret dbname=erp sslmode=disable", dsn)
}

func TestBuildPostgresDSNSSLMode(t *testing.T) {
	dsn := buildPostgresDSN(map[string]interface{}{
		"host": "db.local", "port": "5432", "username": "app",
		"database": "erp", "ssl_mode": "require",
	})
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "password= ")
}

func TestIsAppConnector(t *testing.T) {
	assert.True(t, (&models.IntegrationConfig{Type: "sap"}).IsAppConnector())
	assert.True(t, (&models.IntegrationConfig{Type: "dingtalk"}).IsAppConnector())
	assert.False(t, (&models.IntegrationConfig{Type: models.IntegrationPostgreSQL}).IsAppConnector())
}
