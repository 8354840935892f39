package builtin

import (
	"fmt"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// RotationOffset 实现 C_OFFSET：已锁定轮转偏移的员工只能被指派到与其偏移
// 一致生成的槽位，禁止求解器为其挪用另一偏移下的循环位置。
type RotationOffset struct {
	*Base
}

// NewRotationOffset 创建 C_OFFSET 约束。
func NewRotationOffset() *RotationOffset {
	return &RotationOffset{Base: NewBase(constraint.IDRotationOffset, constraint.CategoryHard, 95)}
}

func (c *RotationOffset) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)
	if emp.RotationOffset == nil {
		return true, ""
	}
	if slot.RotationOffsetForSlot != *emp.RotationOffset {
		return false, fmt.Sprintf("槽位按偏移 %d 生成，员工锁定偏移为 %d", slot.RotationOffsetForSlot, *emp.RotationOffset)
	}
	return true, ""
}

func (c *RotationOffset) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
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
			isValid = false
			totalPenalty += c.Weight()
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				EmployeeID:   emp.EmployeeID,
				SlotID:       slot.SlotID,
				Date:         slot.Date,
				Message:      fmt.Sprintf("员工 %s 锁定偏移 %d，但被指派到按偏移 %d 生成的槽位", emp.EmployeeID, *emp.RotationOffset, slot.RotationOffsetForSlot),
				Severity:     "error",
				Penalty:      c.Weight(),
			})
		}
	}
	return isValid, totalPenalty, violations
}
