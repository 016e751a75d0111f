// Package repository 定义数据访问层接口
package repository

// ListLimit 列表查询的条数约束
type ListLimit struct {
	Default int
	Max     int
}

// DefaultListLimit 未配置时使用的约束
var DefaultListLimit = ListLimit{Default: 10, Max: 100}

// Normalize 将调用方传入的 limit 归一化：非正数取默认值，超过上限截断
func (l ListLimit) Normalize(limit int) int {
	def := l.Default
	if def < 1 {
		def = DefaultListLimit.Default
	}
	max := l.Max
	if max < def {
		max = def
	}
	if limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
