package search

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDryRunDB(t *testing.T) *gorm.DB {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		DryRun: true,
	})
	require.NoError(t, err)
	return db
}

func buildSQL(t *testing.T, db *gorm.DB, opts Options) string {
	var rows []map[string]interface{}
	tx := Apply(db.Table("core_users"), opts).Find(&rows)
	require.NoError(t, tx.Error)
	return tx.Statement.SQL.String()
}

func TestApplyKeyword(t *testing.T) {
	db := newDryRunDB(t)
	sql := buildSQL(t, db, Options{
		Keyword:       "zhang",
		KeywordFields: []string{"username", "name"},
	})
	assert.Contains(t, sql, "username ILIKE $1 OR name ILIKE $2")
}

func TestApplyKeywordWithoutFields(t *testing.T) {
	db := newDryRunDB(t)
	sql := buildSQL(t, db, Options{Keyword: "zhang"})
	assert.NotContains(t, sql, "ILIKE")
}

func TestApplyFilters(t *testing.T) {
	db := newDryRunDB(t)
	sql := buildSQL(t, db, Options{
		Filters: map[string]string{"status": "active", "empty": ""},
	})
	assert.Contains(t, sql, "status = $1")
	assert.NotContains(t, sql, "empty")
}

func TestApplySortAllowed(t *testing.T) {
	db := newDryRunDB(t)
	sql := buildSQL(t, db, Options{
		SortBy:       "created_at",
		SortDesc:     true,
		AllowedSorts: []string{"created_at", "name"},
	})
	assert.Contains(t, sql, "ORDER BY created_at DESC")
}

func TestApplySortRejected(t *testing.T) {
	db := newDryRunDB(t)
	// 白名单外的排序字段直接忽略
	sql := buildSQL(t, db, Options{
		SortBy:       "1; DROP TABLE core_users",
		AllowedSorts: []string{"created_at"},
	})
	assert.NotContains(t, sql, "DROP TABLE")
	assert.NotContains(t, sql, "ORDER BY 1")
}
