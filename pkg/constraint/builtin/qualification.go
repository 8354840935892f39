package builtin

import (
	"fmt"
	"strings"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// Qualification 实现 C_QUAL：员工须满足槽位上全部资质组的要求（ALL/ANY）。
type Qualification struct {
	*Base
}

// NewQualification 创建 C_QUAL 约束。
func NewQualification() *Qualification {
	return &Qualification{Base: NewBase(constraint.IDQualification, constraint.CategoryHard, 100)}
}

func unmetGroups(slot *model.Slot, emp *model.Employee) []string {
	var unmet []string
	for _, g := range slot.QualificationGroups {
		if !emp.SatisfiesGroup(g, slot.Date) {
			unmet = append(unmet, g.GroupID)
		}
	}
	return unmet
}

func (c *Qualification) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)
	if unmet := unmetGroups(slot, emp); len(unmet) > 0 {
		return false, fmt.Sprintf("未满足资质组: %s", strings.Join(unmet, ","))
	}
	return true, ""
}

func (c *Qualification) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		emp := ctx.Arena.Employee(a.Emp)
		if unmet := unmetGroups(slot, emp); len(unmet) > 0 {
			isValid = false
			totalPenalty += c.Weight()
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				EmployeeID:   emp.EmployeeID,
				SlotID:       slot.SlotID,
				Date:         slot.Date,
				Message:      fmt.Sprintf("员工 %s 未满足槽位 %s 的资质组: %s", emp.EmployeeID, slot.SlotID, strings.Join(unmet, ",")),
				Severity:     "error",
				Penalty:      c.Weight(),
			})
		}
	}
	return isValid, totalPenalty, violations
}

// Availability 实现 C_AVAILABILITY：员工在不可用日期（请假/长期休假）不得被指派。
type Availability struct {
	*Base
}

// NewAvailability 创建 C_AVAILABILITY 约束。
func NewAvailability() *Availability {
	return &Availability{Base: NewBase(constraint.IDAvailability, constraint.CategoryHard, 100)}
}

func (c *Availability) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	slot := ctx.Arena.Slot(slotIdx)
	emp := ctx.Arena.Employee(empIdx)
	if emp.IsUnavailableOn(slot.Date) {
		return false, fmt.Sprintf("员工在 %s 不可用（请假/长期休假）", slot.Date.String())
	}
	return true, ""
}

func (c *Availability) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail

	for _, a := range ctx.Assignments {
		if a.Status != model.StatusAssigned {
			continue
		}
		slot := ctx.Arena.Slot(a.Slot)
		emp := ctx.Arena.Employee(a.Emp)
		if emp.IsUnavailableOn(slot.Date) {
			isValid = false
			totalPenalty += c.Weight()
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				EmployeeID:   emp.EmployeeID,
				SlotID:       slot.SlotID,
				Date:         slot.Date,
				Message:      fmt.Sprintf("员工 %s 在不可用日期 %s 被指派工作", emp.EmployeeID, slot.Date.String()),
				Severity:     "error",
				Penalty:      c.Weight(),
			})
		}
	}
	return isValid, totalPenalty, violations
}
