package services

import (
	"testing"
	"time"

	"riveredge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression(t *testing.T) {
	components := ParseExpression("GD{YYYY}{MM}{SEQ:4}")
	require.Len(t, components, 4)
	assert.Equal(t, models.ComponentFixedText, components[0].Type)
	assert.Equal(t, "GD", components[0].Value)
	assert.Equal(t, models.ComponentDate, components[1].Type)
	assert.Equal(t, "YYYY", components[1].Format)
	assert.Equal(t, models.ComponentDate, components[2].Type)
	assert.Equal(t, "MM", components[2].Format)
	assert.Equal(t, models.ComponentCounter, components[3].Type)
	assert.Equal(t, 4, components[3].Width)
}

func TestParseExpressionTokens(t *testing.T) {
	components := ParseExpression("{DICT:order_type}-{FIELD:warehouse}-{customer}{SEQ}")
	require.Len(t, components, 6)
	assert.Equal(t, models.ComponentDictRef, components[0].Type)
	assert.Equal(t, "order_type", components[0].DictCode)
	// 占位符之间的分隔符是独立的固定文本组件
	assert.Equal(t, models.ComponentFixedText, components[1].Type)
	assert.Equal(t, "-", components[1].Value)
	assert.Equal(t, models.ComponentFieldRef, components[2].Type)
	assert.Equal(t, "warehouse", components[2].FieldName)
	assert.Equal(t, models.ComponentFixedText, components[3].Type)
	// 裸{name}按FIELD别名处理
	assert.Equal(t, models.ComponentFieldRef, components[4].Type)
	assert.Equal(t, "customer", components[4].FieldName)
	// {SEQ}默认4位
	assert.Equal(t, models.ComponentCounter, components[5].Type)
	assert.Equal(t, 4, components[5].Width)
}

func TestParseExpressionEmpty(t *testing.T) {
	assert.Nil(t, ParseExpression(""))
}

func TestBuildExpressionRoundTrip(t *testing.T) {
	components := []models.RuleComponent{
		{Type: models.ComponentFixedText, Value: "CG"},
		{Type: models.ComponentDate, Format: "YY"},
		{Type: models.ComponentCounter, Width: 6},
		{Type: models.ComponentDictRef, DictCode: "region"},
	}
	expr := BuildExpression(components)
	assert.Equal(t, "CG{YY}{SEQ:6}{DICT:region}", expr)
}

func TestBuildExpressionDefaultsCounterWidth(t *testing.T) {
	expr := BuildExpression([]models.RuleComponent{{Type: models.ComponentCounter}})
	assert.Equal(t, "{SEQ:4}", expr)
}

func TestRenderComponents(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	components := []models.RuleComponent{
		{Type: models.ComponentFixedText, Value: "GD"},
		{Type: models.ComponentDate, Format: "YYYY"},
		{Type: models.ComponentDate, Format: "MM"},
		{Type: models.ComponentCounter, Width: 4},
	}

	code, err := RenderComponents(components, 7, nil, now, nil)
	require.NoError(t, err)
	assert.Equal(t, "GD2026030007", code)
}

func TestRenderComponentsFieldRef(t *testing.T) {
	components := []models.RuleComponent{
		{Type: models.ComponentFieldRef, FieldName: "warehouse"},
		{Type: models.ComponentFixedText, Value: "-"},
		{Type: models.ComponentCounter, Width: 3},
	}
	ctx := RenderContext{"warehouse": "WH1"}

	code, err := RenderComponents(components, 42, ctx, time.Now(), nil)
	require.NoError(t, err)
	assert.Equal(t, "WH1-042", code)

	// 缺字段要报错
	_, err = RenderComponents(components, 1, RenderContext{}, time.Now(), nil)
	assert.Error(t, err)
}

func TestRenderComponentsDictRef(t *testing.T) {
	components := []models.RuleComponent{
		{Type: models.ComponentDictRef, DictCode: "order_type"},
		{Type: models.ComponentCounter, Width: 2},
	}

	code, err := RenderComponents(components, 9, nil, time.Now(), func(dictCode string) (string, error) {
		assert.Equal(t, "order_type", dictCode)
		return "XS", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "XS09", code)

	_, err = RenderComponents(components, 9, nil, time.Now(), nil)
	assert.Error(t, err)
}

func TestRenderComponentsSeqOverflow(t *testing.T) {
	components := []models.RuleComponent{{Type: models.ComponentCounter, Width: 2}}
	_, err := RenderComponents(components, 100, nil, time.Now(), nil)
	assert.Error(t, err)
}

func TestFindCounter(t *testing.T) {
	components := []models.RuleComponent{
		{Type: models.ComponentFixedText, Value: "A"},
		{Type: models.ComponentCounter, Width: 5},
	}
	counter := FindCounter(components)
	require.NotNil(t, counter)
	assert.Equal(t, 5, counter.Width)

	assert.Nil(t, FindCounter([]models.RuleComponent{{Type: models.ComponentFixedText, Value: "A"}}))
}

func TestStaticPrefix(t *testing.T) {
	components := []models.RuleComponent{
		{Type: models.ComponentFixedText, Value: "GD"},
		{Type: models.ComponentDate, Format: "YYYY"},
		{Type: models.ComponentFixedText, Value: "-"},
	}
	assert.Equal(t, "GD", StaticPrefix(&models.CodeRule{}, components))

	rule := &models.CodeRule{Expression: "WL{SEQ:4}"}
	assert.Equal(t, "WL", StaticPrefix(rule, nil))

	rule = &models.CodeRule{Expression: "FIXED"}
	assert.Equal(t, "FIXED", StaticPrefix(rule, nil))
}

func TestScopeKey(t *testing.T) {
	counter := &models.RuleComponent{Type: models.ComponentCounter, ScopeFields: []string{"warehouse", "line"}}
	ctx := RenderContext{"warehouse": "WH1", "line": "L2"}
	assert.Equal(t, "WH1:L2", ScopeKey(counter, ctx))

	assert.Equal(t, "", ScopeKey(nil, ctx))
	assert.Equal(t, "", ScopeKey(&models.RuleComponent{Type: models.ComponentCounter}, ctx))
}

func TestShouldReset(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	sameDay := time.Date(2026, 3, 15, 1, 0, 0, 0, time.UTC)
	prevDay := time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
	prevMonth := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	prevYear := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.False(t, shouldReset(models.ResetDaily, nil, now))
	assert.False(t, shouldReset(models.ResetDaily, &sameDay, now))
	assert.True(t, shouldReset(models.ResetDaily, &prevDay, now))

	assert.False(t, shouldReset(models.ResetMonthly, &prevDay, now))
	assert.True(t, shouldReset(models.ResetMonthly, &prevMonth, now))

	assert.False(t, shouldReset(models.ResetYearly, &prevMonth, now))
	assert.True(t, shouldReset(models.ResetYearly, &prevYear, now))

	assert.False(t, shouldReset(models.ResetNever, &prevYear, now))
	assert.False(t, shouldReset("", &prevYear, now))
}
