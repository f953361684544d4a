package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSelectOnly(t *testing.T) {
	assert.True(t, isSelectOnly("SELECT * FROM biz_work_orders"))
	assert.True(t, isSelectOnly("  select id from biz_materials  "))
	assert.False(t, isSelectOnly("DELETE FROM biz_work_orders"))
	assert.False(t, isSelectOnly("UPDATE biz_materials SET name = 'x'"))
	assert.False(t, isSelectOnly("INSERT INTO t VALUES (1)"))
	assert.False(t, isSelectOnly(""))
}

func TestTenantIsolationEnabled(t *testing.T) {
	// 缺省开启
	assert.True(t, tenantIsolationEnabled(map[string]interface{}{}))
	assert.True(t, tenantIsolationEnabled(map[string]interface{}{"tenant_isolation": true}))
	assert.False(t, tenantIsolationEnabled(map[string]interface{}{"tenant_isolation": false}))
	// 非bool值按开启处理
	assert.True(t, tenantIsolationEnabled(map[string]interface{}{"tenant_isolation": "no"}))
}

func TestInjectTenantFilterNoWhere(t *testing.T) {
	got := injectTenantFilter("SELECT * FROM biz_work_orders")
	assert.Equal(t, "SELECT * FROM biz_work_orders WHERE tenant_id = :tenant_id", got)
}

func TestInjectTenantFilterWithWhere(t *testing.T) {
	got := injectTenantFilter("SELECT * FROM biz_work_orders WHERE status = :status")
	assert.Equal(t, "SELECT * FROM biz_work_orders WHERE status = :status AND tenant_id = :tenant_id", got)
}

func TestInjectTenantFilterBeforeTail(t *testing.T) {
	got := injectTenantFilter("SELECT status, count(*) FROM biz_work_orders GROUP BY status")
	assert.Equal(t, "SELECT status, count(*) FROM biz_work_orders WHERE tenant_id = :tenant_id GROUP BY status", got)

	got = injectTenantFilter("SELECT * FROM biz_materials ORDER BY created_at DESC")
	assert.Equal(t, "SELECT * FROM biz_materials WHERE tenant_id = :tenant_id ORDER BY created_at DESC", got)
}

func TestInjectTenantFilterTrimsSemicolon(t *testing.T) {
	got := injectTenantFilter("SELECT * FROM biz_materials;")
	assert.Equal(t, "SELECT * FROM biz_materials WHERE tenant_id = :tenant_id", got)
}

func TestAppendLimitOffset(t *testing.T) {
	got := appendLimitOffset("SELECT * FROM t WHERE tenant_id = $1", map[string]interface{}{})
	assert.Equal(t, "SELECT * FROM t WHERE tenant_id = $1 LIMIT 1000 OFFSET 0", got)
}

func TestAppendLimitOffsetFromParams(t *testing.T) {
	params := map[string]interface{}{"limit": 50, "offset": 100}
	got := appendLimitOffset("SELECT * FROM t", params)
	assert.Equal(t, "SELECT * FROM t LIMIT 50 OFFSET 100", got)
}

func TestAppendLimitOffsetCapsLimit(t *testing.T) {
	params := map[string]interface{}{"limit": 999999}
	got := appendLimitOffset("SELECT * FROM t", params)
	assert.Equal(t, "SELECT * FROM t LIMIT 1000 OFFSET 0", got)
}

func TestAppendLimitOffsetKeepsExisting(t *testing.T) {
	got := appendLimitOffset("SELECT * FROM t LIMIT 5 OFFSET 10", map[string]interface{}{})
	assert.Equal(t, "SELECT * FROM t LIMIT 5 OFFSET 10", got)
}

func TestTranslateNamedParams(t *testing.T) {
	params := map[string]interface{}{"tenant_id": uint(3), "status": "released"}
	sqlText, args, err := translateNamedParams(
		"SELECT * FROM t WHERE tenant_id = :tenant_id AND status = :status", params)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE tenant_id = $1 AND status = $2", sqlText)
	assert.Equal(t, []interface{}{uint(3), "released"}, args)
}

func TestTranslateNamedParamsRepeated(t *testing.T) {
	params := map[string]interface{}{"code": "GD01"}
	sqlText, args, err := translateNamedParams(
		"SELECT * FROM t WHERE code = :code OR parent_code = :code", params)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE code = $1 OR parent_code = $1", sqlText)
	assert.Equal(t, []interface{}{"GD01"}, args)
}

func TestTranslateNamedParamsSkipsCasts(t *testing.T) {
	params := map[string]interface{}{"tenant_id": uint(1)}
	sqlText, args, err := translateNamedParams(
		"SELECT id::text FROM t WHERE tenant_id = :tenant_id", params)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id::text FROM t WHERE tenant_id = $1", sqlText)
	assert.Len(t, args, 1)
}

func TestTranslateNamedParamsMissing(t *testing.T) {
	_, _, err := translateNamedParams("SELECT * FROM t WHERE a = :a AND b = :b", map[string]interface{}{"a": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
}

func TestNormalizeAPIResponseTopLevelList(t *testing.T) {
	rows := normalizeAPIResponse([]byte(`[{"id":1},{"id":2}]`))
	require.Len(t, rows, 2)
	assert.Equal(t, float64(1), rows[0]["id"])
}

func TestNormalizeAPIResponseDataList(t *testing.T) {
	rows := normalizeAPIResponse([]byte(`{"total":2,"data":[{"id":1},{"id":2}]}`))
	assert.Len(t, rows, 2)
}

func TestNormalizeAPIResponseItemsList(t *testing.T) {
	rows := normalizeAPIResponse([]byte(`{"items":[{"name":"a"}]}`))
	require.Len(t, rows, 1)
	assert.Equal(t, "a", rows[0]["name"])
}

func TestNormalizeAPIResponseSingleObject(t *testing.T) {
	rows := normalizeAPIResponse([]byte(`{"id":7,"name":"x"}`))
	require.Len(t, rows, 1)
	assert.Equal(t, "x", rows[0]["name"])
}

func TestNormalizeAPIResponseInvalid(t *testing.T) {
	assert.Empty(t, normalizeAPIResponse([]byte(`not json`)))
}

func TestCollectColumns(t *testing.T) {
	rows := []map[string]interface{}{{"b": 1, "a": 2, "c": 3}}
	assert.Equal(t, []string{"a", "b", "c"}, collectColumns(rows))
	assert.Equal(t, []string{}, collectColumns(nil))
}

func TestMergeStringMapsOverridePrecedence(t *testing.T) {
	base := map[string]string{"Authorization": "Bearer abc", "Accept": "application/json"}
	override := map[string]interface{}{"Authorization": "Bearer xyz"}

	merged := mergeStringMaps(base, override)
	assert.Equal(t, "Bearer xyz", merged["Authorization"])
	assert.Equal(t, "application/json", merged["Accept"])
}

func TestConfigHelpers(t *testing.T) {
	config := map[string]interface{}{
		"endpoint": "/api/orders",
		"port":     5432,
		"headers":  map[string]interface{}{"X-Key": "v"},
	}
	assert.Equal(t, "/api/orders", configString(config, "endpoint"))
	assert.Equal(t, "5432", configString(config, "port"))
	assert.Equal(t, "", configString(config, "missing"))
	assert.Equal(t, map[string]interface{}{"X-Key": "v"}, configMap(config, "headers"))
	assert.Empty(t, configMap(config, "missing"))
}
