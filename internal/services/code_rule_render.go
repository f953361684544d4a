package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"riveredge/internal/models"
)

// RenderContext 编码生成上下文，FIELD占位符从这里取值
type RenderContext map[string]string

// DictResolver 字典占位符解析钩子
type DictResolver func(dictCode string) (string, error)

// ParseComponents 解析规则的组件列表
// 组件为空时回退到旧式expression的尽力解析
func ParseComponents(rule *models.CodeRule) ([]models.RuleComponent, error) {
	if len(rule.RuleComponents) > 0 {
		var components []models.RuleComponent
		if err := json.Unmarshal(rule.RuleComponents, &components); err != nil {
			return nil, fmt.Errorf("解析规则组件失败: %v", err)
		}
		if len(components) > 0 {
			return components, nil
		}
	}
	return ParseExpression(rule.Expression), nil
}

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// ParseExpression 旧式模板的尽力解析
// 支持 {YYYY} {YY} {MM} {DD} {SEQ[:width]} {DICT:code} {FIELD:name}，
// 其他裸 {name} 按FIELD别名处理
func ParseExpression(expression string) []models.RuleComponent {
	if expression == "" {
		return nil
	}

	var components []models.RuleComponent
	last := 0
	for _, match := range placeholderPattern.FindAllStringSubmatchIndex(expression, -1) {
		if match[0] > last {
			components = append(components, models.RuleComponent{
				Type:  models.ComponentFixedText,
				Value: expression[last:match[0]],
			})
		}
		token := expression[match[2]:match[3]]
		components = append(components, parseToken(token))
		last = match[1]
	}
	if last < len(expression) {
		components = append(components, models.RuleComponent{
			Type:  models.ComponentFixedText,
			Value: expression[last:],
		})
	}
	return components
}

func parseToken(token string) models.RuleComponent {
	switch {
	case token == "YYYY" || token == "YY" || token == "MM" || token == "DD":
		return models.RuleComponent{Type: models.ComponentDate, Format: token}
	case token == "SEQ":
		return models.RuleComponent{Type: models.ComponentCounter, Width: 4}
	case strings.HasPrefix(token, "SEQ:"):
		width, err := strconv.Atoi(token[len("SEQ:"):])
		if err != nil || width <= 0 {
			width = 4
		}
		return models.RuleComponent{Type: models.ComponentCounter, Width: width}
	case strings.HasPrefix(token, "DICT:"):
		return models.RuleComponent{Type: models.ComponentDictRef, DictCode: token[len("DICT:"):]}
	case strings.HasPrefix(token, "FIELD:"):
		return models.RuleComponent{Type: models.ComponentFieldRef, FieldName: token[len("FIELD:"):]}
	default:
		// 裸{name}按FIELD别名处理
		return models.RuleComponent{Type: models.ComponentFieldRef, FieldName: token}
	}
}

// BuildExpression 由组件推导旧式模板，组件为权威表示
func BuildExpression(components []models.RuleComponent) string {
	var b strings.Builder
	for _, c := range components {
		switch c.Type {
		case models.ComponentFixedText:
			b.WriteString(c.Value)
		case models.ComponentDate:
			b.WriteString("{" + c.Format + "}")
		case models.ComponentCounter:
			width := c.Width
			if width <= 0 {
				width = 4
			}
			b.WriteString(fmt.Sprintf("{SEQ:%d}", width))
		case models.ComponentDictRef:
			b.WriteString("{DICT:" + c.DictCode + "}")
		case models.ComponentFieldRef:
			b.WriteString("{FIELD:" + c.FieldName + "}")
		}
	}
	return b.String()
}

// RenderComponents 渲染编码
// 日期取now，FIELD取上下文，SEQ按位数补零
func RenderComponents(components []models.RuleComponent, seq int64, ctx RenderContext, now time.Time, dict DictResolver) (string, error) {
	var b strings.Builder
	for _, c := range components {
		switch c.Type {
		case models.ComponentFixedText:
			b.WriteString(c.Value)
		case models.ComponentDate:
			b.WriteString(renderDate(c.Format, now))
		case models.ComponentCounter:
			width := c.Width
			if width <= 0 {
				width = 4
			}
			rendered := fmt.Sprintf("%0*d", width, seq)
			if len(rendered) > width {
				return "", fmt.Errorf("序号 %d 超出 %d 位上限", seq, width)
			}
			b.WriteString(rendered)
		case models.ComponentDictRef:
			if dict == nil {
				return "", fmt.Errorf("规则引用字典 %s 但未提供字典解析器", c.DictCode)
			}
			value, err := dict(c.DictCode)
			if err != nil {
				return "", err
			}
			b.WriteString(value)
		case models.ComponentFieldRef:
			value, ok := ctx[c.FieldName]
			if !ok {
				return "", fmt.Errorf("上下文缺少字段 %s", c.FieldName)
			}
			b.WriteString(value)
		default:
			return "", fmt.Errorf("未知的组件类型 %s", c.Type)
		}
	}
	return b.String(), nil
}

func renderDate(format string, now time.Time) string {
	switch format {
	case "YYYY":
		return now.Format("2006")
	case "YY":
		return now.Format("06")
	case "MM":
		return now.Format("01")
	case "DD":
		return now.Format("02")
	default:
		return ""
	}
}

// FindCounter 返回第一个计数器组件，没有则为nil
func FindCounter(components []models.RuleComponent) *models.RuleComponent {
	for i := range components {
		if components[i].Type == models.ComponentCounter {
			return &components[i]
		}
	}
	return nil
}

// StaticPrefix 计算规则的静态前缀：开头连续的固定文本
// 组件为空时取expression中{SEQ之前的子串
func StaticPrefix(rule *models.CodeRule, components []models.RuleComponent) string {
	if len(components) > 0 {
		var b strings.Builder
		for _, c := range components {
			if c.Type != models.ComponentFixedText {
				break
			}
			b.WriteString(c.Value)
		}
		return b.String()
	}
	if idx := strings.Index(rule.Expression, "{SEQ"); idx >= 0 {
		return rule.Expression[:idx]
	}
	return rule.Expression
}

// ScopeKey 计算计数器作用域键：scope_fields对应的上下文值按":"连接
func ScopeKey(counter *models.RuleComponent, ctx RenderContext) string {
	if counter == nil || len(counter.ScopeFields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(counter.ScopeFields))
	for _, field := range counter.ScopeFields {
		parts = append(parts, ctx[field])
	}
	return strings.Join(parts, ":")
}
