package localsearch

import (
	"math/rand"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/model"
)

// MoveType 是邻域移动的种类。相对教师的六种移动，2-opt 与链式移动是
// 针对有序分配列表的操作，在这里的集合式槽位-员工指派模型里没有对应
// 语义，因此只保留在本模型下有明确含义的四种。
type MoveType int

const (
	MoveSwap MoveType = iota
	MoveRelocate
	MoveInsert
	MoveRemove
)

// Generator 按权重随机选择移动类型并生成候选解。
type Generator struct {
	rng     *rand.Rand
	weights map[MoveType]float64
}

// NewGenerator 创建一个邻域生成器；rng 为 nil 时使用默认来源。
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Generator{
		rng: rng,
		weights: map[MoveType]float64{
			MoveSwap:     0.40,
			MoveRelocate: 0.35,
			MoveInsert:   0.15,
			MoveRemove:   0.10,
		},
	}
}

func (g *Generator) selectMoveType() MoveType {
	r := g.rng.Float64()
	cumulative := 0.0
	for _, mt := range []MoveType{MoveSwap, MoveRelocate, MoveInsert, MoveRemove} {
		cumulative += g.weights[mt]
		if r < cumulative {
			return mt
		}
	}
	return MoveSwap
}

// Generate 从 current 出发生成一个邻域解；候选不可行（无法生成有效移动）
// 时返回 nil。
func (g *Generator) Generate(current *constraint.Context, slots []model.SlotIdx, candidates cpsolver.CandidateFunc) *constraint.Context {
	if len(current.Assignments) == 0 && len(slots) == 0 {
		return nil
	}

	switch g.selectMoveType() {
	case MoveSwap:
		return g.swap(current)
	case MoveRelocate:
		return g.relocate(current, candidates)
	case MoveInsert:
		return g.insert(current, slots, candidates)
	case MoveRemove:
		return g.remove(current)
	default:
		return g.swap(current)
	}
}

// swap 交换两个已指派槽位的员工。
func (g *Generator) swap(current *constraint.Context) *constraint.Context {
	if len(current.Assignments) < 2 {
		return nil
	}
	neighbor := cloneContext(current)

	i := g.rng.Intn(len(neighbor.Assignments))
	j := g.rng.Intn(len(neighbor.Assignments))
	for j == i {
		j = g.rng.Intn(len(neighbor.Assignments))
	}

	slotI, slotJ := neighbor.Assignments[i].Slot, neighbor.Assignments[j].Slot
	empI, empJ := neighbor.Assignments[i].Emp, neighbor.Assignments[j].Emp

	neighbor.Unassign(slotI)
	neighbor.Unassign(slotJ)
	neighbor.Assign(slotI, empJ)
	neighbor.Assign(slotJ, empI)
	return neighbor
}

// relocate 把某个已指派槽位换成另一位候选员工。
func (g *Generator) relocate(current *constraint.Context, candidates cpsolver.CandidateFunc) *constraint.Context {
	if len(current.Assignments) == 0 {
		return nil
	}
	neighbor := cloneContext(current)

	idx := g.rng.Intn(len(neighbor.Assignments))
	a := neighbor.Assignments[idx]

	cands := candidates(a.Slot)
	if len(cands) == 0 {
		return nil
	}
	newEmp := cands[g.rng.Intn(len(cands))]
	if newEmp == a.Emp {
		return nil
	}

	neighbor.Unassign(a.Slot)
	neighbor.Assign(a.Slot, newEmp)
	return neighbor
}

// insert 为一个当前未指派的槽位补上一名候选员工。
func (g *Generator) insert(current *constraint.Context, slots []model.SlotIdx, candidates cpsolver.CandidateFunc) *constraint.Context {
	var unassigned []model.SlotIdx
	for _, s := range slots {
		if _, ok := current.AssignmentForSlot(s); !ok {
			unassigned = append(unassigned, s)
		}
	}
	if len(unassigned) == 0 {
		return nil
	}

	slot := unassigned[g.rng.Intn(len(unassigned))]
	cands := candidates(slot)
	if len(cands) == 0 {
		return nil
	}

	neighbor := cloneContext(current)
	neighbor.Assign(slot, cands[g.rng.Intn(len(cands))])
	return neighbor
}

// remove 撤销一个随机已指派槽位的分配。
func (g *Generator) remove(current *constraint.Context) *constraint.Context {
	if len(current.Assignments) == 0 {
		return nil
	}
	neighbor := cloneContext(current)
	idx := g.rng.Intn(len(neighbor.Assignments))
	neighbor.Unassign(neighbor.Assignments[idx].Slot)
	return neighbor
}
