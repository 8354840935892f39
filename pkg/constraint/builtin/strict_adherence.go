package builtin

import (
	"fmt"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// StrictAdherence 实现 C_STRICT_ADHERENCE：需求项设定了 strict_adherence_ratio
// 时，要求该需求下至少该比例的槽位被填补，否则整体判为不可行（由比例自动
// 搜索循环驱动，参见求解流程）。ratio 通过配置注入，默认为 1.0（完全遵从）。
type StrictAdherence struct {
	*Base
}

// NewStrictAdherence 创建 C_STRICT_ADHERENCE 约束，ratio 为目标遵从率。
func NewStrictAdherence(ratio float64) *StrictAdherence {
	b := NewBase(constraint.IDStrictAdherence, constraint.CategoryHard, 100)
	b.config["ratio"] = ratio
	return &StrictAdherence{Base: b}
}

func (c *StrictAdherence) ratio() float64 {
	return c.ConfigFloat("ratio", 1.0)
}

func (c *StrictAdherence) CanAssign(ctx *constraint.Context, slotIdx model.SlotIdx, empIdx model.EmpIdx) (bool, string) {
	return true, ""
}

func (c *StrictAdherence) Evaluate(ctx *constraint.Context) (bool, int, []constraint.ViolationDetail) {
	byReq := map[string]struct{ total, filled int }{}

	for idx := range ctx.Arena.Slots {
		slotIdx := model.SlotIdx(idx)
		slot := ctx.Arena.Slot(slotIdx)
		entry := byReq[slot.RequirementID]
		entry.total++
		if _, ok := ctx.AssignmentForSlot(slotIdx); ok {
			entry.filled++
		}
		byReq[slot.RequirementID] = entry
	}

	isValid := true
	totalPenalty := 0
	var violations []constraint.ViolationDetail
	target := c.ratio()

	for reqID, e := range byReq {
		if e.total == 0 {
			continue
		}
		actual := float64(e.filled) / float64(e.total)
		if actual < target {
			isValid = false
			shortBy := e.total - e.filled
			penalty := c.Weight() * shortBy
			totalPenalty += penalty
			violations = append(violations, constraint.ViolationDetail{
				ConstraintID: c.ID(),
				Message: fmt.Sprintf("需求 %s 实际遵从率 %.2f 低于目标 %.2f（缺 %d 个槽位）",
					reqID, actual, target, shortBy),
				Severity: "error",
				Penalty:  penalty,
			})
		}
	}
	return isValid, totalPenalty, violations
}
