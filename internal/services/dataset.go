package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/cache"
	"riveredge/pkg/errors"
	"riveredge/pkg/logger"
	"riveredge/pkg/search"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatasetResult 数据集执行结果
type DatasetResult struct {
	Success     bool                     `json:"success"`
	Data        []map[string]interface{} `json:"data"`
	Total       int                      `json:"total"`
	Columns     []string                 `json:"columns"`
	ElapsedTime float64                  `json:"elapsed_time"` // 毫秒
	Error       string                   `json:"error,omitempty"`
}

// SchemaTable 数据源表结构
type SchemaTable struct {
	Name    string         `json:"name"` // schema.table
	Columns []SchemaColumn `json:"columns"`
}

// SchemaColumn 列定义
type SchemaColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

const (
	datasetDefaultLimit = 1000
	datasetMaxLimit     = 10000
	datasetHTTPTimeout  = 30 * time.Second
	schemaCacheTTL      = 10 * time.Minute
)

type DatasetService struct {
	db         *gorm.DB
	cache      *cache.Cache
	httpClient *http.Client
}

func NewDatasetService() *DatasetService {
	return &DatasetService{
		db:         database.GetDB(),
		cache:      database.GetCache(),
		httpClient: &http.Client{Timeout: datasetHTTPTimeout},
	}
}

// NewDatasetServiceWith 注入依赖的构造方式（测试用）
func NewDatasetServiceWith(db *gorm.DB, c *cache.Cache, client *http.Client) *DatasetService {
	if client == nil {
		client = &http.Client{Timeout: datasetHTTPTimeout}
	}
	return &DatasetService{db: db, cache: c, httpClient: client}
}

// ========== 数据集管理 ==========

// Create 创建数据集
func (s *DatasetService) Create(tenantID uint, dataset *models.Dataset) error {
	if err := s.validateQueryConfig(dataset); err != nil {
		return err
	}

	var count int64
	s.db.Model(&models.Dataset{}).
		Where("tenant_id = ? AND code = ?", tenantID, dataset.Code).Count(&count)
	if count > 0 {
		return fmt.Errorf("数据集编码已存在: %s", dataset.Code)
	}

	var integrationCount int64
	s.db.Model(&models.IntegrationConfig{}).
		Where("tenant_id = ? AND id = ?", tenantID, dataset.IntegrationConfigID).Count(&integrationCount)
	if integrationCount == 0 {
		return errors.NewInvalidParam("数据连接不存在")
	}

	dataset.TenantID = tenantID
	return s.db.Create(dataset).Error
}

// Update 更新数据集
func (s *DatasetService) Update(tenantID uint, id uint, updates map[string]interface{}) (*models.Dataset, error) {
	var dataset models.Dataset
	if err := s.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&dataset).Error; err != nil {
		return nil, err
	}

	delete(updates, "tenant_id")
	delete(updates, "code")
	if err := s.db.Model(&dataset).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &dataset, nil
}

// Delete 删除数据集
func (s *DatasetService) Delete(tenantID uint, id uint) error {
	return s.db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Dataset{}).Error
}

// GetByUUID 按UUID查询数据集
func (s *DatasetService) GetByUUID(tenantID uint, uuid string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := s.db.Preload("IntegrationConfig").
		Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// GetByCode 按编码查询数据集
func (s *DatasetService) GetByCode(tenantID uint, code string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := s.db.Preload("IntegrationConfig").
		Where("tenant_id = ? AND code = ?", tenantID, code).First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// List 查询数据集列表
func (s *DatasetService) List(tenantID uint, opts search.Options, page, pageSize int) ([]models.Dataset, int64, error) {
	var datasets []models.Dataset
	var total int64

	opts.KeywordFields = []string{"code", "name", "description"}
	opts.AllowedSorts = []string{"code", "name", "query_type", "created_at", "last_executed_at"}
	query := s.db.Model(&models.Dataset{}).Where("tenant_id = ?", tenantID)
	query = search.Apply(query, opts)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize
	if err := query.Preload("IntegrationConfig").Offset(offset).Limit(pageSize).Find(&datasets).Error; err != nil {
		return nil, 0, err
	}
	return datasets, total, nil
}

func (s *DatasetService) validateQueryConfig(dataset *models.Dataset) error {
	switch dataset.QueryType {
	case models.QueryTypeSQL:
		sqlText := configString(dataset.QueryConfig, "sql")
		if sqlText == "" {
			return errors.NewInvalidParam("SQL数据集缺少sql配置")
		}
		if !isSelectOnly(sqlText) {
			return errors.New(errors.CodeUnsafeQuery, "仅允许SELECT查询")
		}
	case models.QueryTypeAPI:
		if configString(dataset.QueryConfig, "endpoint") == "" &&
			configString(dataset.QueryConfig, "api_uuid") == "" &&
			configString(dataset.QueryConfig, "api_code") == "" {
			return errors.NewInvalidParam("API数据集缺少endpoint或api_uuid/api_code配置")
		}
	default:
		return errors.NewInvalidParam("不支持的查询类型: %s", dataset.QueryType)
	}
	return nil
}

// ========== 执行 ==========

// Execute 执行数据集并回写执行状态
func (s *DatasetService) Execute(tenantID uint, datasetUUID string, params map[string]interface{}) (*DatasetResult, error) {
	dataset, err := s.GetByUUID(tenantID, datasetUUID)
	if err != nil {
		return nil, errors.NewNotFound("数据集不存在")
	}
	return s.execute(tenantID, dataset, params)
}

// ExecuteByCode 按编码执行数据集
func (s *DatasetService) ExecuteByCode(tenantID uint, code string, params map[string]interface{}) (*DatasetResult, error) {
	dataset, err := s.GetByCode(tenantID, code)
	if err != nil {
		return nil, errors.NewNotFound("数据集不存在: %s", code)
	}
	return s.execute(tenantID, dataset, params)
}

func (s *DatasetService) execute(tenantID uint, dataset *models.Dataset, params map[string]interface{}) (*DatasetResult, error) {
	if !dataset.IsActive {
		return nil, errors.NewInvalidParam("数据集已停用")
	}
	if dataset.IntegrationConfig == nil || !dataset.IntegrationConfig.IsActive {
		return nil, errors.New(errors.CodeIntegrationUnavailable, "数据连接不可用")
	}
	if params == nil {
		params = map[string]interface{}{}
	}

	start := time.Now()
	var result *DatasetResult
	var err error
	switch dataset.QueryType {
	case models.QueryTypeSQL:
		result, err = s.executeSQL(tenantID, dataset, params)
	case models.QueryTypeAPI:
		result, err = s.executeAPI(tenantID, dataset, params)
	default:
		err = errors.NewInvalidParam("不支持的查询类型: %s", dataset.QueryType)
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	now := time.Now()
	updates := map[string]interface{}{"last_executed_at": &now}
	if err != nil {
		updates["last_error"] = err.Error()
		s.db.Model(&models.Dataset{}).Where("id = ?", dataset.ID).Updates(updates)
		return &DatasetResult{Success: false, Data: []map[string]interface{}{}, Columns: []string{}, ElapsedTime: elapsed, Error: err.Error()}, err
	}

	updates["last_error"] = ""
	s.db.Model(&models.Dataset{}).Where("id = ?", dataset.ID).Updates(updates)
	result.Success = true
	result.ElapsedTime = elapsed
	return result, nil
}

// ========== SQL驱动 ==========

func (s *DatasetService) executeSQL(tenantID uint, dataset *models.Dataset, params map[string]interface{}) (*DatasetResult, error) {
	if dataset.IntegrationConfig.Type != models.IntegrationPostgreSQL {
		return nil, errors.New(errors.CodeIntegrationUnavailable,
			"数据源类型 %s 暂不支持SQL执行", dataset.IntegrationConfig.Type)
	}

	sqlText := configString(dataset.QueryConfig, "sql")
	if !isSelectOnly(sqlText) {
		return nil, errors.New(errors.CodeUnsafeQuery, "仅允许SELECT查询")
	}

	// 租户隔离默认开启，强制绑定调用方租户
	if tenantIsolationEnabled(dataset.QueryConfig) {
		sqlText = injectTenantFilter(sqlText)
		params["tenant_id"] = tenantID
	} else {
		// 作者自行负责过滤，但仍提供tenant_id参数
		if _, ok := params["tenant_id"]; !ok {
			params["tenant_id"] = tenantID
		}
	}

	// 合并数据集预置参数，调用方参数优先
	if preset, ok := dataset.QueryConfig["parameters"].(map[string]interface{}); ok {
		for k, v := range preset {
			if _, exists := params[k]; !exists {
				params[k] = v
			}
		}
	}
	if tenantIsolationEnabled(dataset.QueryConfig) {
		params["tenant_id"] = tenantID
	}

	sqlText = appendLimitOffset(sqlText, params)

	translated, args, err := translateNamedParams(sqlText, params)
	if err != nil {
		return nil, err
	}

	sqlDB, closeFn, err := s.openPostgres(dataset.IntegrationConfig.Config)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	ctx, cancel := context.WithTimeout(context.Background(), datasetHTTPTimeout)
	defer cancel()
	rows, err := sqlDB.QueryContext(ctx, translated, args...)
	if err != nil {
		return nil, fmt.Errorf("查询执行失败: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	data := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &DatasetResult{Data: data, Total: len(data), Columns: columns}, nil
}

// openPostgres 打开目标库的原生连接，调用方负责关闭
func (s *DatasetService) openPostgres(cfg map[string]interface{}) (*sql.DB, func(), error) {
	dsn := buildPostgresDSN(cfg)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, nil, errors.New(errors.CodeIntegrationUnavailable, "连接数据源失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	return sqlDB, func() { sqlDB.Close() }, nil
}

// ========== SQL改写 ==========

var sqlTailKeywords = []string{"GROUP BY", "ORDER BY", "LIMIT", "OFFSET"}

// isSelectOnly 语句trim并大写后必须以SELECT开头
func isSelectOnly(sqlText string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlText)), "SELECT")
}

func tenantIsolationEnabled(config map[string]interface{}) bool {
	v, ok := config["tenant_isolation"]
	if !ok {
		return true
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// injectTenantFilter 把tenant_id条件机械注入WHERE子句
// 无WHERE时在GROUP BY/ORDER BY/LIMIT之前合成一个
func injectTenantFilter(sqlText string) string {
	sqlText = strings.TrimSpace(sqlText)
	sqlText = strings.TrimRight(sqlText, ";")
	upper := strings.ToUpper(sqlText)

	tailStart := len(sqlText)
	for _, kw := range sqlTailKeywords {
		if idx := strings.Index(upper, kw); idx >= 0 && idx < tailStart {
			tailStart = idx
		}
	}

	head := strings.TrimRight(sqlText[:tailStart], " \t\n")
	tail := sqlText[tailStart:]

	condition := "tenant_id = :tenant_id"
	if strings.Contains(strings.ToUpper(head), " WHERE ") {
		head = head + " AND " + condition
	} else {
		head = head + " WHERE " + condition
	}
	if tail == "" {
		return head
	}
	return head + " " + tail
}

// appendLimitOffset 未显式分页的语句补LIMIT/OFFSET
func appendLimitOffset(sqlText string, params map[string]interface{}) string {
	upper := strings.ToUpper(sqlText)

	if !strings.Contains(upper, "LIMIT") {
		limit := paramInt(params, "limit", datasetDefaultLimit)
		if limit <= 0 || limit > datasetMaxLimit {
			limit = datasetDefaultLimit
		}
		sqlText = fmt.Sprintf("%s LIMIT %d", strings.TrimSpace(sqlText), limit)
		upper = strings.ToUpper(sqlText)
	}
	if !strings.Contains(upper, "OFFSET") {
		offset := paramInt(params, "offset", 0)
		if offset < 0 {
			offset = 0
		}
		sqlText = fmt.Sprintf("%s OFFSET %d", sqlText, offset)
	}
	return sqlText
}

var namedParamPattern = regexp.MustCompile(`:([a-zA-Z_][a-zA-Z0-9_]*)`)

// translateNamedParams 将:name占位符按首次出现顺序翻译成$n
// 跳过::类型转换
func translateNamedParams(sqlText string, params map[string]interface{}) (string, []interface{}, error) {
	order := make([]string, 0)
	position := make(map[string]int)
	var missing []string

	var builder strings.Builder
	lastEnd := 0
	for _, loc := range namedParamPattern.FindAllStringSubmatchIndex(sqlText, -1) {
		start, end := loc[0], loc[1]
		name := sqlText[loc[2]:loc[3]]

		// 跳过形如 col::text 的类型转换
		if start > 0 && sqlText[start-1] == ':' {
			continue
		}

		builder.WriteString(sqlText[lastEnd:start])
		pos, seen := position[name]
		if !seen {
			if _, exists := params[name]; !exists {
				missing = append(missing, name)
			}
			order = append(order, name)
			pos = len(order)
			position[name] = pos
		}
		builder.WriteString(fmt.Sprintf("$%d", pos))
		lastEnd = end
	}
	builder.WriteString(sqlText[lastEnd:])

	if len(missing) > 0 {
		return "", nil, errors.NewInvalidParam("缺少查询参数: %s", strings.Join(missing, ", "))
	}

	args := make([]interface{}, 0, len(order))
	for _, name := range order {
		args = append(args, params[name])
	}
	return builder.String(), args, nil
}

func paramInt(params map[string]interface{}, key string, fallback int) int {
	v, ok := params[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return fallback
}

// ========== API驱动 ==========

func (s *DatasetService) executeAPI(tenantID uint, dataset *models.Dataset, params map[string]interface{}) (*DatasetResult, error) {
	integration := dataset.IntegrationConfig
	cfg := dataset.QueryConfig

	endpoint := configString(cfg, "endpoint")
	method := strings.ToUpper(configString(cfg, "method"))
	headers := configMap(cfg, "headers")
	queryParams := configMap(cfg, "params")
	body := configMap(cfg, "body")

	// 托管接口引用：接口定义兜底，数据集配置覆盖
	if apiRef := configString(cfg, "api_uuid"); apiRef != "" || configString(cfg, "api_code") != "" {
		api, err := s.resolveAPI(tenantID, apiRef, configString(cfg, "api_code"))
		if err != nil {
			return nil, err
		}
		if endpoint == "" {
			endpoint = api.Path
		}
		if method == "" {
			method = strings.ToUpper(api.Method)
		}
		headers = mergeStringMaps(toStringMap(api.RequestHeaders), headers)
		queryParams = mergeStringMaps(toStringMap(api.RequestParams), queryParams)
		if len(body) == 0 && len(api.RequestBody) > 0 {
			body = map[string]interface{}(api.RequestBody)
		}
	}

	if method == "" {
		method = http.MethodGet
	}
	if endpoint == "" {
		return nil, errors.NewInvalidParam("API数据集缺少endpoint配置")
	}

	// 连接级配置在前，数据集级覆盖
	connHeaders := toStringMap(integration.Config["headers"])
	headers = mergeStringMaps(connHeaders, headers)

	requestURL := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		base := strings.TrimRight(configString(integration.Config, "base_url"), "/")
		if base == "" {
			return nil, errors.NewInvalidParam("数据连接缺少base_url配置")
		}
		if !strings.HasPrefix(endpoint, "/") {
			endpoint = "/" + endpoint
		}
		requestURL = base + endpoint
	}

	var bodyReader io.Reader
	if len(body) > 0 && method != http.MethodGet {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, v := range queryParams {
		query.Set(k, fmt.Sprintf("%v", v))
	}
	for k, v := range params {
		if k == "limit" || k == "offset" {
			continue
		}
		query.Set(k, fmt.Sprintf("%v", v))
	}
	query.Set("limit", strconv.Itoa(paramInt(params, "limit", datasetDefaultLimit)))
	query.Set("offset", strconv.Itoa(paramInt(params, "offset", 0)))
	req.URL.RawQuery = query.Encode()

	for k, v := range headers {
		req.Header.Set(k, fmt.Sprintf("%v", v))
	}
	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if configString(integration.Config, "auth_type") == "bearer" {
		if token := configString(integration.Config, "token"); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.CodeIntegrationUnavailable, "接口调用失败: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.New(errors.CodeIntegrationUnavailable,
			"接口返回状态码 %d", resp.StatusCode)
	}

	data := normalizeAPIResponse(raw)
	columns := collectColumns(data)
	return &DatasetResult{Data: data, Total: len(data), Columns: columns}, nil
}

// resolveAPI 按uuid或编码解析托管接口，停用即失败
func (s *DatasetService) resolveAPI(tenantID uint, apiUUID, apiCode string) (*models.API, error) {
	var api models.API
	query := s.db.Where("tenant_id = ?", tenantID)
	if apiUUID != "" {
		query = query.Where("uuid = ?", apiUUID)
	} else {
		query = query.Where("code = ?", apiCode)
	}
	if err := query.First(&api).Error; err != nil {
		return nil, errors.NewInvalidParam("数据集引用的接口不存在")
	}
	if !api.IsActive {
		return nil, errors.NewInvalidParam("数据集引用的接口已停用: %s", api.Code)
	}
	return &api, nil
}

// normalizeAPIResponse 响应归一化成行集
// 顶层数组→行；data数组→行；items数组→行；否则整体视为单行
func normalizeAPIResponse(raw []byte) []map[string]interface{} {
	var asList []map[string]interface{}
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList
	}

	var asObject map[string]interface{}
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return []map[string]interface{}{}
	}

	for _, key := range []string{"data", "items"} {
		if nested, ok := asObject[key].([]interface{}); ok {
			rows := make([]map[string]interface{}, 0, len(nested))
			for _, item := range nested {
				if row, ok := item.(map[string]interface{}); ok {
					rows = append(rows, row)
				}
			}
			return rows
		}
	}
	return []map[string]interface{}{asObject}
}

func collectColumns(rows []map[string]interface{}) []string {
	if len(rows) == 0 {
		return []string{}
	}
	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

// ========== 结构内省 ==========

// GetSchema 查询数据源的表结构，仅支持PostgreSQL
func (s *DatasetService) GetSchema(tenantID uint, datasetUUID string) ([]SchemaTable, error) {
	dataset, err := s.GetByUUID(tenantID, datasetUUID)
	if err != nil {
		return nil, errors.NewNotFound("数据集不存在")
	}
	if dataset.IntegrationConfig == nil || dataset.IntegrationConfig.Type != models.IntegrationPostgreSQL {
		return nil, errors.NewInvalidParam("仅PostgreSQL数据源支持结构内省")
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("dataset:schema:%d:%s", tenantID, datasetUUID)
	var cached []SchemaTable
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	sqlDB, closeFn, err := s.openPostgres(dataset.IntegrationConfig.Config)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	queryCtx, cancel := context.WithTimeout(ctx, datasetHTTPTimeout)
	defer cancel()
	rows, err := sqlDB.QueryContext(queryCtx, `
		SELECT table_schema, table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		ORDER BY table_schema, table_name, ordinal_position`)
	if err != nil {
		return nil, fmt.Errorf("结构查询失败: %v", err)
	}
	defer rows.Close()

	tables := make([]SchemaTable, 0)
	index := map[string]int{}
	for rows.Next() {
		var schema, table, column, dataType string
		if err := rows.Scan(&schema, &table, &column, &dataType); err != nil {
			return nil, err
		}
		name := schema + "." + table
		i, ok := index[name]
		if !ok {
			tables = append(tables, SchemaTable{Name: name})
			i = len(tables) - 1
			index[name] = i
		}
		tables[i].Columns = append(tables[i].Columns, SchemaColumn{Name: column, Type: dataType})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, tables, schemaCacheTTL); err != nil {
		logger.GetLogger().WithError(err).Warn("缓存数据源结构失败")
	}
	return tables, nil
}

// ========== 配置取值 ==========

func configString(config map[string]interface{}, key string) string {
	if v, ok := config[key]; ok && v != nil {
		if str, ok := v.(string); ok {
			return str
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func configMap(config map[string]interface{}, key string) map[string]interface{} {
	if v, ok := config[key].(map[string]interface{}); ok {
		return v
	}
	return map[string]interface{}{}
}

func toStringMap(v interface{}) map[string]string {
	result := map[string]string{}
	switch m := v.(type) {
	case map[string]interface{}:
		for k, val := range m {
			result[k] = fmt.Sprintf("%v", val)
		}
	case datatypes.JSONMap:
		for k, val := range m {
			result[k] = fmt.Sprintf("%v", val)
		}
	}
	return result
}

func mergeStringMaps(base map[string]string, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
