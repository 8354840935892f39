package builtin

import (
	"fmt"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// PatternAdherence 实现 C5：软约束，记录偏离循环班表原定轮转偏移的指派
// （换班/顶班），用于计算结果文档的遵从度评分，但不阻止求解器按需调整。
type PatternAdherence struct {
	*Base
}

// NewPatternAdherence 创建 C5 约束。
func NewPatternAdherence() *PatternAdherence {
	return &PatternAdherence{Base: NewBase(constraint.IDPatternAdherence, constraint.CategorySoft, 20)}
}

func (c *PatternAdherence) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	return true, ""
}

func (c *PatternAdherence) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		emp := ctx.Arena.Employee(a.Emp)
		if emp.RotationOffset == nil {
			continue
		}
		if slot.RotationOffsetForSlot != *emp.RotationOffset {
			totalPenalty += c.Weight()
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				EmployeeID:   emp.EmployeeID,
				SlotID:       slot.SlotID,
				Date:         slot.Date,
				Message:      fmt.Sprintf("员工 %s 的指派偏离了原定循环班表位置", emp.EmployeeID),
				Severity:     "warning",
				Penalty:      c.Weight(),
			})
		}
	}
	// 软约束不影响 IsValid。
	return isValid, totalPenalty, violations
}
