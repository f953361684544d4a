package search

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Options 列表查询条件
type Options struct {
	Keyword       string            // 关键字，对KeywordFields做OR模糊匹配
	KeywordFields []string          // 参与关键字匹配的文本字段
	Filters       map[string]string // 精确过滤条件，字段名 -> 值
	SortBy        string            // 排序字段
	SortDesc      bool              // 是否倒序
	AllowedSorts  []string          // 排序字段白名单
}

// Apply 将查询条件应用到gorm查询上
// 排序字段不在白名单内时忽略排序，防止注入
func Apply(query *gorm.DB, opts Options) *gorm.DB {
	for field, value := range opts.Filters {
		if value == "" {
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", field), value)
	}

	if opts.Keyword != "" && len(opts.KeywordFields) > 0 {
		pattern := "%" + opts.Keyword + "%"
		conditions := make([]string, 0, len(opts.KeywordFields))
		args := make([]interface{}, 0, len(opts.KeywordFields))
		for _, field := range opts.KeywordFields {
			conditions = append(conditions, fmt.Sprintf("%s ILIKE ?", field))
			args = append(args, pattern)
		}
		query = query.Where(strings.Join(conditions, " OR "), args...)
	}

	if opts.SortBy != "" && sortAllowed(opts.SortBy, opts.AllowedSorts) {
		direction := "ASC"
		if opts.SortDesc {
			direction = "DESC"
		}
		query = query.Order(fmt.Sprintf("%s %s", opts.SortBy, direction))
	}

	return query
}

func sortAllowed(field string, allowed []string) bool {
	for _, a := range allowed {
		if a == field {
			return true
		}
	}
	return false
}
