package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"riveredge/internal/database"
	"riveredge/internal/models"
	"riveredge/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 编码规则到目标业务表的静态映射，用于重校准与查重
type codeRuleTarget struct {
	table      string
	codeColumn string
}

var codeRuleTargets = map[string]codeRuleTarget{
	"work_order":         {"core_work_orders", "code"},
	"purchase_order":     {"core_purchase_orders", "code"},
	"sales_order":        {"core_sales_orders", "code"},
	"material":           {"core_materials", "code"},
	"demand":             {"core_demands", "code"},
	"demand_computation": {"core_demand_computations", "code"},
	"production_plan":    {"core_production_plans", "code"},
	"purchase_receipt":   {"core_purchase_receipts", "code"},
	"sales_delivery":     {"core_sales_deliveries", "code"},
	"payable":            {"core_payables", "code"},
	"receivable":         {"core_receivables", "code"},
}

// 页面默认前缀预设，建规则时的推荐值
var codeRulePagePrefixes = map[string]string{
	"work_order":       "GD", // 工单
	"purchase_order":   "CG", // 采购
	"sales_order":      "XS", // 销售
	"material":         "WL", // 物料
	"demand":           "XQ", // 需求
	"production_plan":  "JH", // 计划
	"purchase_receipt": "SH", // 收货
	"sales_delivery":   "FH", // 发货
}

type CodeRuleService struct {
	db *gorm.DB
}

func NewCodeRuleService() *CodeRuleService {
	return &CodeRuleService{db: database.GetDB()}
}

// NewCodeRuleServiceWith 注入依赖的构造方式（测试用）
func NewCodeRuleServiceWith(db *gorm.DB) *CodeRuleService {
	return &CodeRuleService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建编码规则
// 组件为权威表示，expression由组件推导
func (s *CodeRuleService) Create(tenantID uint, code, name string, components []models.RuleComponent, seqStart, seqStep int64, seqResetRule string) (*models.CodeRule, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("规则代码和名称不能为空")
	}
	if err := validateResetRule(seqResetRule); err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.CodeRule{}).Where("tenant_id = ? AND code = ?", tenantID, code).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("规则代码已存在")
	}

	if seqStart <= 0 {
		seqStart = 1
	}
	if seqStep <= 0 {
		seqStep = 1
	}
	if seqResetRule == "" {
		seqResetRule = models.ResetNever
	}

	componentsJSON, err := json.Marshal(components)
	if err != nil {
		return nil, err
	}

	rule := &models.CodeRule{
		TenantID:       tenantID,
		Code:           code,
		Name:           name,
		Expression:     BuildExpression(components),
		RuleComponents: componentsJSON,
		SeqStart:       seqStart,
		SeqStep:        seqStep,
		SeqResetRule:   seqResetRule,
		IsActive:       true,
	}
	err = s.db.Create(rule).Error
	return rule, err
}

func validateResetRule(rule string) error {
	switch rule {
	case "", models.ResetNever, models.ResetDaily, models.ResetMonthly, models.ResetYearly:
		return nil
	}
	return fmt.Errorf("无效的重置周期")
}

// GetByUUID 根据UUID获取规则
func (s *CodeRuleService) GetByUUID(tenantID uint, uuid string) (*models.CodeRule, error) {
	var rule models.CodeRule
	err := s.db.Where("tenant_id = ? AND uuid = ?", tenantID, uuid).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetByCode 根据代码获取规则
func (s *CodeRuleService) GetByCode(tenantID uint, code string) (*models.CodeRule, error) {
	var rule models.CodeRule
	err := s.db.Where("tenant_id = ? AND code = ?", tenantID, code).First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// List 分页查询规则
func (s *CodeRuleService) List(tenantID uint, params *pagination.PageParams) ([]models.CodeRule, int64, error) {
	query := s.db.Model(&models.CodeRule{}).Where("tenant_id = ?", tenantID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rules []models.CodeRule
	err := query.Order("created_at DESC").
		Offset(params.GetOffset()).Limit(params.GetLimit()).
		Find(&rules).Error
	return rules, total, err
}

// Update 更新编码规则
func (s *CodeRuleService) Update(tenantID uint, uuid, name string, components []models.RuleComponent, seqStart, seqStep int64, seqResetRule string, isActive bool) (*models.CodeRule, error) {
	rule, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return nil, err
	}
	if err := validateResetRule(seqResetRule); err != nil {
		return nil, err
	}

	componentsJSON, err := json.Marshal(components)
	if err != nil {
		return nil, err
	}

	rule.Name = name
	rule.RuleComponents = componentsJSON
	rule.Expression = BuildExpression(components)
	if seqStart > 0 {
		rule.SeqStart = seqStart
	}
	if seqStep > 0 {
		rule.SeqStep = seqStep
	}
	if seqResetRule != "" {
		rule.SeqResetRule = seqResetRule
	}
	rule.IsActive = isActive

	err = s.db.Save(rule).Error
	return rule, err
}

// Delete 删除编码规则
func (s *CodeRuleService) Delete(tenantID uint, uuid string) error {
	rule, err := s.GetByUUID(tenantID, uuid)
	if err != nil {
		return err
	}
	if rule.IsSystem {
		return fmt.Errorf("系统规则不允许删除")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("code_rule_id = ?", rule.ID).Delete(&models.CodeSequence{}).Error; err != nil {
			return err
		}
		return tx.Delete(rule).Error
	})
}

// PagePrefix 页面默认前缀预设
func (s *CodeRuleService) PagePrefix(page string) string {
	return codeRulePagePrefixes[page]
}

// ========== 编码生成 ==========

// Generate 生成下一个编码
// 无计数器的规则直接渲染，不写序号表；有计数器时在行锁下
// 做周期重置、重校准，再递增保存
func (s *CodeRuleService) Generate(tenantID uint, ruleCode string, ctx RenderContext) (string, error) {
	rule, err := s.GetByCode(tenantID, ruleCode)
	if err != nil {
		return "", fmt.Errorf("编码规则 %s 不存在", ruleCode)
	}
	if !rule.IsActive {
		return "", fmt.Errorf("编码规则 %s 已停用", ruleCode)
	}

	components, err := ParseComponents(rule)
	if err != nil {
		return "", err
	}

	counter := FindCounter(components)
	if counter == nil {
		return RenderComponents(components, 0, ctx, time.Now(), s.dictFor(tenantID))
	}

	scopeKey := ScopeKey(counter, ctx)

	var code string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		seq, err := s.nextSequence(tx, rule, components, counter, scopeKey, time.Now())
		if err != nil {
			return err
		}
		code, err = RenderComponents(components, seq, ctx, time.Now(), s.dictFor(rule.TenantID))
		return err
	})
	return code, err
}

// nextSequence 在事务内取下一个序号值
func (s *CodeRuleService) nextSequence(tx *gorm.DB, rule *models.CodeRule, components []models.RuleComponent, counter *models.RuleComponent, scopeKey string, now time.Time) (int64, error) {
	seqStart := rule.SeqStart
	if counter.Initial > 0 {
		seqStart = counter.Initial
	}
	resetRule := rule.SeqResetRule
	if counter.ResetCycle != "" {
		resetRule = counter.ResetCycle
	}

	// 行锁串行化同一作用域的并发生成
	var seq models.CodeSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code_rule_id = ? AND tenant_id = ? AND scope_key = ?", rule.ID, rule.TenantID, scopeKey).
		First(&seq).Error
	if err == gorm.ErrRecordNotFound {
		seq = models.CodeSequence{
			CodeRuleID: rule.ID,
			TenantID:   rule.TenantID,
			ScopeKey:   scopeKey,
			CurrentSeq: seqStart - rule.SeqStep,
			ResetDate:  &now,
		}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	// 周期重置
	if shouldReset(resetRule, seq.ResetDate, now) {
		seq.CurrentSeq = seqStart - rule.SeqStep
		seq.ResetDate = &now
	}

	// 重校准：已有数据里同前缀的最大序号不能被跳过
	if maxExisting, ok := s.maxExistingSequence(tx, rule, components, counter); ok && seq.CurrentSeq < maxExisting {
		seq.CurrentSeq = maxExisting
	}

	seq.CurrentSeq += rule.SeqStep
	if err := tx.Save(&seq).Error; err != nil {
		return 0, err
	}
	return seq.CurrentSeq, nil
}

func shouldReset(resetRule string, resetDate *time.Time, now time.Time) bool {
	if resetDate == nil {
		return false
	}
	switch resetRule {
	case models.ResetDaily:
		return resetDate.Format("2006-01-02") != now.Format("2006-01-02")
	case models.ResetMonthly:
		return resetDate.Format("2006-01") != now.Format("2006-01")
	case models.ResetYearly:
		return resetDate.Year() != now.Year()
	}
	return false
}

// maxExistingSequence 扫描目标业务表，取静态前缀匹配的最大纯数字后缀
func (s *CodeRuleService) maxExistingSequence(tx *gorm.DB, rule *models.CodeRule, components []models.RuleComponent, counter *models.RuleComponent) (int64, bool) {
	target, ok := codeRuleTargets[rule.Code]
	if !ok {
		return 0, false
	}
	prefix := StaticPrefix(rule, components)
	if prefix == "" {
		return 0, false
	}

	var codes []string
	err := tx.Table(target.table).
		Where("tenant_id = ? AND deleted_at IS NULL AND "+target.codeColumn+" LIKE ?", rule.TenantID, prefix+"%").
		Pluck(target.codeColumn, &codes).Error
	if err != nil {
		return 0, false
	}

	width := counter.Width
	if width <= 0 {
		width = 4
	}

	var max int64
	found := false
	for _, code := range codes {
		suffix := strings.TrimPrefix(code, prefix)
		// 计数器总在末尾，取末尾width位数字
		if len(suffix) >= width {
			suffix = suffix[len(suffix)-width:]
		}
		n, err := strconv.ParseInt(suffix, 10, 64)
		if err != nil {
			continue
		}
		if !found || n > max {
			max = n
			found = true
		}
	}
	return max, found
}

// TestGenerate 预测下一个编码，不写任何状态
// probeEntity非空时对目标表做查重探测，最多尝试100次，找不到返回空串
func (s *CodeRuleService) TestGenerate(tenantID uint, ruleCode string, ctx RenderContext, probeEntity bool) (string, error) {
	rule, err := s.GetByCode(tenantID, ruleCode)
	if err != nil {
		return "", fmt.Errorf("编码规则 %s 不存在", ruleCode)
	}

	components, err := ParseComponents(rule)
	if err != nil {
		return "", err
	}
	now := time.Now()

	counter := FindCounter(components)
	if counter == nil {
		return RenderComponents(components, 0, ctx, now, s.dictFor(tenantID))
	}

	scopeKey := ScopeKey(counter, ctx)
	seqStart := rule.SeqStart
	if counter.Initial > 0 {
		seqStart = counter.Initial
	}
	resetRule := rule.SeqResetRule
	if counter.ResetCycle != "" {
		resetRule = counter.ResetCycle
	}

	current := seqStart - rule.SeqStep
	var seq models.CodeSequence
	err = s.db.Where("code_rule_id = ? AND tenant_id = ? AND scope_key = ?", rule.ID, tenantID, scopeKey).
		First(&seq).Error
	if err == nil {
		current = seq.CurrentSeq
		if shouldReset(resetRule, seq.ResetDate, now) {
			current = seqStart - rule.SeqStep
		}
	}
	if maxExisting, ok := s.maxExistingSequence(s.db, rule, components, counter); ok && current < maxExisting {
		current = maxExisting
	}

	next := current + rule.SeqStep
	if !probeEntity {
		return RenderComponents(components, next, ctx, now, s.dictFor(tenantID))
	}

	target, hasTarget := codeRuleTargets[rule.Code]
	for attempt := 0; attempt < 100; attempt++ {
		code, err := RenderComponents(components, next, ctx, now, s.dictFor(tenantID))
		if err != nil {
			return "", err
		}
		if !hasTarget {
			return code, nil
		}
		var count int64
		s.db.Table(target.table).
			Where("tenant_id = ? AND deleted_at IS NULL AND "+target.codeColumn+" = ?", tenantID, code).
			Count(&count)
		if count == 0 {
			return code, nil
		}
		next += rule.SeqStep
	}
	return "", nil
}

func (s *CodeRuleService) dictFor(tenantID uint) DictResolver {
	return func(dictCode string) (string, error) {
		return s.resolveDictForTenant(tenantID, dictCode)
	}
}

func (s *CodeRuleService) resolveDictForTenant(tenantID uint, dictCode string) (string, error) {
	var dict models.Dictionary
	err := s.db.Where("tenant_id = ? AND code = ?", tenantID, dictCode).First(&dict).Error
	if err != nil {
		return "", fmt.Errorf("字典 %s 不存在", dictCode)
	}
	var item models.DictionaryItem
	err = s.db.Where("dictionary_id = ? AND is_default = ?", dict.ID, true).First(&item).Error
	if err != nil {
		err = s.db.Where("dictionary_id = ?", dict.ID).Order("sort_order").First(&item).Error
	}
	if err != nil {
		return "", fmt.Errorf("字典 %s 没有可用项", dictCode)
	}
	return item.Value, nil
}
