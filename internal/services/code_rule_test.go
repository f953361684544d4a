package services

import (
	"testing"

	"riveredge/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxExistingSequenceRecalibrates(t *testing.T) {
	db, mock := newMockGorm(t)
	s := NewCodeRuleServiceWith(db)

	rule := &models.CodeRule{TenantID: 1, Code: "material"}
	components := []models.RuleComponent{
		{Type: models.ComponentFixedText, Value: "M-"},
		{Type: models.ComponentCounter, Width: 4},
	}
	counter := &components[1]

	// 历史数据里混有后缀非数字的编码，跳过不计
	mock.ExpectQuery(`SELECT "code" FROM "core_materials" WHERE tenant_id = \$1 AND deleted_at IS NULL AND code LIKE \$2`).
		WithArgs(1, "M-%").
		WillReturnRows(sqlmock.NewRows([]string{"code"}).
			AddRow("M-0005").
			AddRow("M-0020").
			AddRow("M-0007").
			AddRow("M-DRAFT"))

	max, ok := s.maxExistingSequence(db, rule, components, counter)
	require.True(t, ok)
	assert.Equal(t, int64(20), max)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxExistingSequenceUnknownTarget(t *testing.T) {
	db, _ := newMockGorm(t)
	s := NewCodeRuleServiceWith(db)

	// 未注册业务表的规则不做重校准
	rule := &models.CodeRule{TenantID: 1, Code: "custom_doc"}
	components := []models.RuleComponent{
		{Type: models.ComponentFixedText, Value: "X-"},
		{Type: models.ComponentCounter, Width: 4},
	}
	_, ok := s.maxExistingSequence(db, rule, components, &components[1])
	assert.False(t, ok)
}

func TestMaxExistingSequenceNoStaticPrefix(t *testing.T) {
	db, _ := newMockGorm(t)
	s := NewCodeRuleServiceWith(db)

	// 以日期开头的规则没有静态前缀，无法按LIKE扫描
	rule := &models.CodeRule{TenantID: 1, Code: "material"}
	components := []models.RuleComponent{
		{Type: models.ComponentDate, Format: "YYYYMMDD"},
		{Type: models.ComponentCounter, Width: 4},
	}
	_, ok := s.maxExistingSequence(db, rule, components, &components[1])
	assert.False(t, ok)
}
