package localsearch

import (
	"testing"
	"time"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/model"
)

func twoSlotArena() (*model.Arena, []model.SlotIdx, model.EmpIdx, model.EmpIdx) {
	a := model.NewArena()
	e1 := a.AddEmployee(model.Employee{EmployeeID: "E1", Scheme: model.SchemeA})
	e2 := a.AddEmployee(model.Employee{EmployeeID: "E2", Scheme: model.SchemeA})

	d1, d2 := model.MustDate("2026-01-01"), model.MustDate("2026-01-02")
	s1 := a.AddSlot(model.Slot{SlotID: "S1", Date: d1, Start: d1.Time(), End: d1.Time().Add(8 * time.Hour)})
	s2 := a.AddSlot(model.Slot{SlotID: "S2", Date: d2, Start: d2.Time(), End: d2.Time().Add(8 * time.Hour)})

	return a, []model.SlotIdx{s1, s2}, e1, e2
}

func allCandidates(e1, e2 model.EmpIdx) cpsolver.CandidateFunc {
	return func(model.SlotIdx) []model.EmpIdx { return []model.EmpIdx{e1, e2} }
}

func TestConstruct_AssignsLeastLoadedFirst(t *testing.T) {
	arena, slots, e1, e2 := twoSlotArena()
	manager := constraint.NewManager()

	ctx := Construct(manager, arena, slots, allCandidates(e1, e2))

	if len(ctx.Assignments) != 2 {
		t.Fatalf("指派数 = %d, want 2", len(ctx.Assignments))
	}
	a1, ok := ctx.AssignmentForSlot(slots[0])
	if !ok {
		t.Fatal("第一个槽位应已指派")
	}
	a2, ok := ctx.AssignmentForSlot(slots[1])
	if !ok {
		t.Fatal("第二个槽位应已指派")
	}
	if a1.Emp == a2.Emp {
		t.Error("贪心构造应在两名空闲员工间均衡分配，不应都指派给同一人")
	}
}

func TestConstruct_SkipsSlotsWithNoCandidates(t *testing.T) {
	arena, slots, _, _ := twoSlotArena()
	manager := constraint.NewManager()

	ctx := Construct(manager, arena, slots, func(model.SlotIdx) []model.EmpIdx { return nil })

	if len(ctx.Assignments) != 0 {
		t.Fatalf("无候选时不应产生指派, got %d", len(ctx.Assignments))
	}
	if UnmetSlots(ctx, slots) != 2 {
		t.Errorf("UnmetSlots() = %d, want 2", UnmetSlots(ctx, slots))
	}
}
