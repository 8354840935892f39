// Package builtin 提供内置约束模块实现，按 constraint_list[] 在启动时显式
// 注册，没有运行期目录扫描或插件加载。
package builtin

import (
	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// RegisterDefaultConstraints 注册全部内置约束，权重使用各自默认值。
func RegisterDefaultConstraints(manager *constraint.Manager) {
	manager.Register(NewMaxHoursPerDay())
	manager.Register(NewWeeklyHourCap(12.0))
	manager.Register(NewConsecutiveDaysCap())
	manager.Register(NewMinRestBetweenShifts())
	manager.Register(NewPatternAdherence())
	manager.Register(NewHeadcountCoverage())
	manager.Register(NewGenderMatch())
	manager.Register(NewAPGDD10Override())
	manager.Register(NewQualification())
	manager.Register(NewRotationOffset())
	manager.Register(NewAvailability())
	manager.Register(NewStrictAdherence(1.0))
}

// newByID 按 ID 构造对应约束模块的缺省实例，供 RegisterActivated 按
// constraint_list[] 逐条激活时使用。
func newByID(id constraint.ID) constraint.Constraint {
	switch id {
	case constraint.IDMaxHoursPerDay:
		return NewMaxHoursPerDay()
	case constraint.IDWeeklyHourCap:
		return NewWeeklyHourCap(12.0)
	case constraint.IDConsecutiveDaysCap:
		return NewConsecutiveDaysCap()
	case constraint.IDMinRestBetweenShifts:
		return NewMinRestBetweenShifts()
	case constraint.IDPatternAdherence:
		return NewPatternAdherence()
	case constraint.IDHeadcountCoverage:
		return NewHeadcountCoverage()
	case constraint.IDGenderMatch:
		return NewGenderMatch()
	case constraint.IDAPGDD10Override:
		return NewAPGDD10Override()
	case constraint.IDQualification:
		return NewQualification()
	case constraint.IDRotationOffset:
		return NewRotationOffset()
	case constraint.IDAvailability:
		return NewAvailability()
	case constraint.IDStrictAdherence:
		return NewStrictAdherence(1.0)
	default:
		return nil
	}
}

// applyParams 把 Problem.ConstraintList[] 中的 params/weight 应用到已构造的
// 约束实例上，复用各模块 Base.SetConfig 的弱类型配置读取。
func applyParams(c constraint.Constraint, activation model.ConstraintActivation) {
	type configurable interface {
		SetConfig(map[string]interface{})
		SetWeight(int)
	}
	cfg, ok := c.(configurable)
	if !ok {
		return
	}
	if activation.Params != nil {
		cfg.SetConfig(activation.Params)
	}
	if activation.Weight > 0 {
		cfg.SetWeight(activation.Weight)
	}
}

// RegisterActivated 按 Problem.ConstraintList[] 中 enabled=true 的条目逐一
// 构造并注册约束模块；未在列表中出现的模块不会被激活。未知 ID 被跳过。
func RegisterActivated(manager *constraint.Manager, activations []model.ConstraintActivation) {
	for _, a := range activations {
		if !a.Enabled {
			continue
		}
		c := newByID(constraint.ID(a.ID))
		if c == nil {
			continue
		}
		applyParams(c, a)
		manager.Register(c)
	}
}
