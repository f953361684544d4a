package models

import (
	"time"

	"gorm.io/datatypes"
)

// IntegrationConfig 数据连接配置
type IntegrationConfig struct {
	BaseModel
	TenantID        uint              `json:"tenant_id" gorm:"not null;index:idx_integration_tenant_code"`
	Code            string            `json:"code" gorm:"size:100;not null;index:idx_integration_tenant_code"` // 租户内唯一
	Name            string            `json:"name" gorm:"size:100;not null"`
	Type            string            `json:"type" gorm:"size:50;not null"` // postgresql/mysql/api/feishu/...
	Config          datatypes.JSONMap `json:"config" gorm:"type:jsonb"`     // 按类型解释的连接配置
	IsActive        bool              `json:"is_active" gorm:"default:true"`
	IsConnected     bool              `json:"is_connected" gorm:"default:false"`
	LastConnectedAt *time.Time        `json:"last_connected_at"`
	LastError       string            `json:"last_error" gorm:"size:1000"`
}

// TableName 表名
func (c *IntegrationConfig) TableName() string {
	return "core_integration_configs"
}

// 连接类型常量
const (
	IntegrationPostgreSQL = "postgresql"
	IntegrationMySQL      = "mysql"
	IntegrationMongoDB    = "mongodb"
	IntegrationOracle     = "oracle"
	IntegrationSQLServer  = "sqlserver"
	IntegrationRedis      = "redis"
	IntegrationClickHouse = "clickhouse"
	IntegrationInfluxDB   = "influxdb"
	IntegrationDoris      = "doris"
	IntegrationStarRocks  = "starrocks"
	IntegrationElastic    = "elasticsearch"
	IntegrationAPI        = "api"
)

// 应用连接器类型，统一按REST调用
var AppConnectorTypes = []string{
	"feishu", "dingtalk", "wecom", "sap", "kingdee",
	"yonyou", "teamcenter", "windchill", "salesforce",
}

// IsAppConnector 是否应用连接器类型
func (c *IntegrationConfig) IsAppConnector() bool {
	for _, t := range AppConnectorTypes {
		if c.Type == t {
			return true
		}
	}
	return false
}

// Dataset 数据集模型
type Dataset struct {
	BaseModel
	TenantID            uint              `json:"tenant_id" gorm:"not null;index:idx_dataset_tenant_code"`
	Code                string            `json:"code" gorm:"size:100;not null;index:idx_dataset_tenant_code"` // 租户内唯一
	Name                string            `json:"name" gorm:"size:100;not null"`
	Description         string            `json:"description" gorm:"size:500"`
	IntegrationConfigID uint              `json:"integration_config_id" gorm:"not null;index"`
	QueryType           string            `json:"query_type" gorm:"size:20;not null"` // sql/api
	QueryConfig         datatypes.JSONMap `json:"query_config" gorm:"type:jsonb"`
	IsActive            bool              `json:"is_active" gorm:"default:true"`
	LastExecutedAt      *time.Time        `json:"last_executed_at"`
	LastError           string            `json:"last_error" gorm:"size:1000"`

	IntegrationConfig *IntegrationConfig `gorm:"foreignKey:IntegrationConfigID" json:"integration_config,omitempty"`
}

// TableName 表名
func (d *Dataset) TableName() string {
	return "core_datasets"
}

// 数据集查询类型常量
const (
	QueryTypeSQL = "sql"
	QueryTypeAPI = "api"
)

// API 托管接口模型
type API struct {
	BaseModel
	TenantID       uint              `json:"tenant_id" gorm:"not null;index:idx_api_tenant_code"`
	Code           string            `json:"code" gorm:"size:100;not null;index:idx_api_tenant_code"` // 租户内唯一
	Name           string            `json:"name" gorm:"size:100;not null"`
	Path           string            `json:"path" gorm:"size:500;not null"`
	Method         string            `json:"method" gorm:"size:10;default:'GET'"`
	RequestHeaders datatypes.JSONMap `json:"request_headers" gorm:"type:jsonb"`
	RequestParams  datatypes.JSONMap `json:"request_params" gorm:"type:jsonb"`
	RequestBody    datatypes.JSONMap `json:"request_body" gorm:"type:jsonb"`
	ResponseFormat string            `json:"response_format" gorm:"size:50;default:'json'"`
	IsActive       bool              `json:"is_active" gorm:"default:true"`
	IsSystem       bool              `json:"is_system" gorm:"default:false"`
}

// TableName 表名
func (a *API) TableName() string {
	return "core_apis"
}
