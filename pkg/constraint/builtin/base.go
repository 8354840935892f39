// Package builtin 提供内置约束模块实现，按 constraint_list[] 在启动时显式注册。
package builtin

import (
	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// Base 为约束模块提供 ID/Category/Weight/配置读取的公共实现，具体模块只需
// 嵌入 Base 并实现 CanAssign/Evaluate。
type Base struct {
	id       constraint.ID
	category constraint.Category
	weight   int
	config   map[string]interface{}
}

// NewBase 创建约束基类。
func NewBase(id constraint.ID, cat constraint.Category, weight int) *Base {
	return &Base{id: id, category: cat, weight: weight, config: make(map[string]interface{})}
}

// ID 返回约束标识。
func (b *Base) ID() constraint.ID { return b.id }

// Category 返回约束类别。
func (b *Base) Category() constraint.Category { return b.category }

// Weight 返回约束权重。
func (b *Base) Weight() int { return b.weight }

// SetConfig 设置本约束模块的参数。
func (b *Base) SetConfig(config map[string]interface{}) { b.config = config }

// SetWeight 覆盖约束权重，供 constraint_list[] 按条目自定义权重使用。
func (b *Base) SetWeight(weight int) { b.weight = weight }

// Config 返回本约束模块的参数。
func (b *Base) Config() map[string]interface{} { return b.config }

// ConfigInt 读取整数配置，缺省返回 defaultVal。
func (b *Base) ConfigInt(key string, defaultVal int) int {
	if v, ok := b.config[key]; ok {
		switch t := v.(type) {
		case int:
			return t
		case int64:
			return int(t)
		case float64:
			return int(t)
		}
	}
	return defaultVal
}

// ConfigFloat 读取浮点配置，缺省返回 defaultVal。
func (b *Base) ConfigFloat(key string, defaultVal float64) float64 {
	if v, ok := b.config[key]; ok {
		switch t := v.(type) {
		case float64:
			return t
		case int:
			return float64(t)
		}
	}
	return defaultVal
}

// ConfigBool 读取布尔配置，缺省返回 defaultVal。
func (b *Base) ConfigBool(key string, defaultVal bool) bool {
	if v, ok := b.config[key].(bool); ok {
		return v
	}
	return defaultVal
}

// violation 构造一条违反详情，严重程度按类别推断。
func (b *Base) violation(empID, slotID string, date model.Date, message string, penalty int) constraint.ViolationDetail {
	severity := "warning"
	if b.category == constraint.CategoryHard {
		severity = "error"
	}
	return constraint.ViolationDetail{
		ConstraintID: b.id,
		EmployeeID:   empID,
		SlotID:       slotID,
		Date:         date,
		Message:      message,
		Severity:     severity,
		Penalty:      penalty,
	}
}
