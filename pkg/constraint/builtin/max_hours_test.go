package builtin

import (
	"testing"
	"time"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

func addSlot(a *model.Arena, id, date, start, end string) model.SlotIdx {
	startT, _ := time.Parse("2006-01-02 15:04", date+" "+start)
	endT, _ := time.Parse("2006-01-02 15:04", date+" "+end)
	return a.AddSlot(model.Slot{SlotID: id, Date: model.MustDate(date), ShiftCode: "D", Start: startT, End: endT})
}

func TestMaxHoursPerDay_CanAssign(t *testing.T) {
	a := model.NewArena()
	emp := a.AddEmployee(model.Employee{EmployeeID: "E1", Scheme: model.SchemeA})
	s1 := addSlot(a, "S1", "2026-01-12", "08:00", "16:00")
	s2 := addSlot(a, "S2", "2026-01-12", "17:00", "23:00")

	ctx := constraint.NewContext(a)
	c := NewMaxHoursPerDay()

	if ok, _ := c.CanAssign(ctx, s1, emp); !ok {
		t.Fatal("首个指派不应被 C1 阻止")
	}
	ctx.Assign(s1, emp)

	// 8h + 6h = 14h，等于 Scheme A 单日上限，不应违反。
	if ok, reason := c.CanAssign(ctx, s2, emp); !ok {
		t.Fatalf("14 小时未超过 Scheme A 单日上限 14h，不应阻止，reason=%s", reason)
	}
}

func TestMaxHoursPerDay_Evaluate(t *testing.T) {
	a := model.NewArena()
	emp := a.AddEmployee(model.Employee{EmployeeID: "E1", Scheme: model.SchemeP})
	s1 := addSlot(a, "S1", "2026-01-12", "06:00", "18:00") // 12h，超过 Scheme P 的 9h 单日上限

	ctx := constraint.NewContext(a)
	ctx.Assign(s1, emp)

	c := NewMaxHoursPerDay()
	valid, penalty, violations := c.Evaluate(ctx)
	if valid {
		t.Fatal("超过单日上限应判为无效")
	}
	if penalty <= 0 {
		t.Errorf("penalty = %d, want > 0", penalty)
	}
	if len(violations) != 1 {
		t.Fatalf("violations 长度 = %d, want 1", len(violations))
	}
}

func TestWeeklyHourCap_Evaluate(t *testing.T) {
	a := model.NewArena()
	emp := a.AddEmployee(model.Employee{EmployeeID: "E1", Scheme: model.SchemeA})
	dates := []string{"2026-01-12", "2026-01-13", "2026-01-14", "2026-01-15", "2026-01-16", "2026-01-17"}
	ctx := constraint.NewContext(a)
	for i, d := range dates {
		s := addSlot(a, "S"+d, d, "08:00", "18:00") // 10h/天 * 6 天 = 60h
		_ = i
		ctx.Assign(s, emp)
	}

	c := NewWeeklyHourCap(12.0) // 44h 上限 + 12h 容差 = 56h
	valid, penalty, violations := c.Evaluate(ctx)
	if valid {
		t.Fatal("60h 超过 56h（上限+容差）应判为无效")
	}
	if penalty <= 0 || len(violations) != 1 {
		t.Errorf("penalty=%d violations=%d, want > 0 / 1", penalty, len(violations))
	}
}
