// Package localsearch 是 cpsolver.Solver 的唯一进程内实现：两阶段均衡
// 贪心构造初始解，再用模拟退火/禁忌局部搜索对其逐步优化。
package localsearch

import (
	"sort"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/model"
)

// cloneContext 复制一份约束上下文，使局部搜索可以在候选解上试探而不
// 影响原解；Arena 只读共享，仅指派列表是各自独立的。
func cloneContext(ctx *constraint.Context) *constraint.Context {
	clone := constraint.NewContext(ctx.Arena)
	for _, a := range ctx.Assignments {
		clone.Assign(a.Slot, a.Emp)
	}
	return clone
}

// Construct 按 (date, requirement_id, shift_code, position) 顺序逐个槽位
// 贪心指派：候选按累计工时升序排列，取第一个通过硬约束检查的候选。这样
// 即使候选池吃紧，工时也会在全体候选间尽量摊平——等价于教师两阶段轮次
// 分配达成的公平性目标，只是这里每个槽位已经代表一个独立的人头位置，
// 不需要再按轮次拆分。
func Construct(manager *constraint.Manager, arena *model.Arena, slots []model.SlotIdx, candidates cpsolver.CandidateFunc) *constraint.Context {
	sctx := constraint.NewContext(arena)
	hours := make(map[model.EmpIdx]float64)

	for _, slot := range slots {
		cands := candidates(slot)
		if len(cands) == 0 {
			continue
		}

		ordered := make([]model.EmpIdx, len(cands))
		copy(ordered, cands)
		sort.Slice(ordered, func(i, j int) bool {
			if hours[ordered[i]] != hours[ordered[j]] {
				return hours[ordered[i]] < hours[ordered[j]]
			}
			return ordered[i] < ordered[j]
		})

		for _, emp := range ordered {
			if ok, _ := manager.CanAssign(sctx, slot, emp); !ok {
				continue
			}
			sctx.Assign(slot, emp)
			s := arena.Slot(slot)
			hours[emp] += s.End.Sub(s.Start).Hours()
			break
		}
	}

	return sctx
}

// UnmetSlots 返回 slots 中尚未获得指派的数量，供求解状态分类使用。
func UnmetSlots(ctx *constraint.Context, slots []model.SlotIdx) int {
	unmet := 0
	for _, slot := range slots {
		if _, ok := ctx.AssignmentForSlot(slot); !ok {
			unmet++
		}
	}
	return unmet
}
