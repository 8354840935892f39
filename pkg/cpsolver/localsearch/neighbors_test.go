package localsearch

import (
	"math/rand"
	"testing"

	"github.com/paiban/engine/pkg/constraint"
)

func TestGenerator_SwapExchangesEmployees(t *testing.T) {
	arena, slots, e1, e2 := twoSlotArena()
	manager := constraint.NewManager()
	ctx := Construct(manager, arena, slots, allCandidates(e1, e2))

	gen := &Generator{rng: rand.New(rand.NewSource(1)), weights: map[MoveType]float64{MoveSwap: 1}}
	neighbor := gen.swap(ctx)
	if neighbor == nil {
		t.Fatal("swap() 不应返回 nil（存在 >=2 个指派）")
	}

	a1, _ := neighbor.AssignmentForSlot(slots[0])
	a2, _ := neighbor.AssignmentForSlot(slots[1])
	orig1, _ := ctx.AssignmentForSlot(slots[0])
	orig2, _ := ctx.AssignmentForSlot(slots[1])
	if a1.Emp != orig2.Emp || a2.Emp != orig1.Emp {
		t.Error("swap() 应互换两个槽位上的员工")
	}
	// 原上下文不应被修改（clone 语义）。
	if o1, _ := ctx.AssignmentForSlot(slots[0]); o1.Emp != orig1.Emp {
		t.Error("swap() 不应修改原上下文")
	}
}

func TestGenerator_RemoveUnassignsOneSlot(t *testing.T) {
	arena, slots, e1, e2 := twoSlotArena()
	manager := constraint.NewManager()
	ctx := Construct(manager, arena, slots, allCandidates(e1, e2))

	gen := NewGenerator(rand.New(rand.NewSource(2)))
	neighbor := gen.remove(ctx)
	if neighbor == nil {
		t.Fatal("remove() 不应返回 nil")
	}
	if len(neighbor.Assignments) != len(ctx.Assignments)-1 {
		t.Errorf("remove() 后指派数 = %d, want %d", len(neighbor.Assignments), len(ctx.Assignments)-1)
	}
}

func TestGenerator_InsertFillsUnassignedSlot(t *testing.T) {
	arena, slots, e1, e2 := twoSlotArena()
	manager := constraint.NewManager()
	empty := constraint.NewContext(arena)

	gen := NewGenerator(rand.New(rand.NewSource(3)))
	neighbor := gen.insert(empty, slots, allCandidates(e1, e2))
	_ = manager
	if neighbor == nil {
		t.Fatal("insert() 在存在未指派槽位时不应返回 nil")
	}
	if len(neighbor.Assignments) != 1 {
		t.Errorf("insert() 后指派数 = %d, want 1", len(neighbor.Assignments))
	}
}

func TestGenerator_RelocateChangesEmployee(t *testing.T) {
	arena, slots, e1, e2 := twoSlotArena()
	manager := constraint.NewManager()
	ctx := Construct(manager, arena, slots, allCandidates(e1, e2))

	gen := NewGenerator(rand.New(rand.NewSource(42)))
	// 多试几次，relocate 有一定概率选到相同员工而返回 nil。
	var neighbor *constraint.Context
	for i := 0; i < 20 && neighbor == nil; i++ {
		neighbor = gen.relocate(ctx, allCandidates(e1, e2))
	}
	if neighbor == nil {
		t.Fatal("relocate() 多次尝试后仍未生成候选解")
	}
	if len(neighbor.Assignments) != len(ctx.Assignments) {
		t.Errorf("relocate() 不应改变已指派槽位总数")
	}
}
