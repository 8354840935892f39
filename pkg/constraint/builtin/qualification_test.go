package builtin

import (
	"testing"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

func TestQualification_CanAssign(t *testing.T) {
	a := model.NewArena()
	qualified := a.AddEmployee(model.Employee{
		EmployeeID:     "E1",
		Qualifications: []model.Qualification{{Code: "CPR", ValidFrom: model.MustDate("2025-01-01"), Expiry: model.MustDate("2027-01-01")}},
	})
	unqualified := a.AddEmployee(model.Employee{EmployeeID: "E2"})

	slotIdx := a.AddSlot(model.Slot{
		SlotID: "S1", Date: model.MustDate("2026-01-12"),
		QualificationGroups: []model.QualificationGroup{{GroupID: "g1", MatchType: model.MatchAll, QualificationCodes: []string{"CPR"}}},
	})

	ctx := constraint.NewContext(a)
	c := NewQualification()

	if ok, _ := c.CanAssign(ctx, slotIdx, qualified); !ok {
		t.Fatal("持有有效资质的员工不应被阻止")
	}
	if ok, reason := c.CanAssign(ctx, slotIdx, unqualified); ok {
		t.Fatalf("缺少资质的员工应被阻止, reason=%s", reason)
	}
}

func TestAvailability_CanAssign(t *testing.T) {
	a := model.NewArena()
	emp := a.AddEmployee(model.Employee{
		EmployeeID: "E1",
		Unavailable: []model.DateRange{{Start: model.MustDate("2026-01-10"), End: model.MustDate("2026-01-15")}},
	})
	slotInRange := a.AddSlot(model.Slot{SlotID: "S1", Date: model.MustDate("2026-01-12")})
	slotOutOfRange := a.AddSlot(model.Slot{SlotID: "S2", Date: model.MustDate("2026-01-20")})

	ctx := constraint.NewContext(a)
	c := NewAvailability()

	if ok, _ := c.CanAssign(ctx, slotInRange, emp); ok {
		t.Fatal("不可用区间内的槽位应被阻止")
	}
	if ok, reason := c.CanAssign(ctx, slotOutOfRange, emp); !ok {
		t.Fatalf("不可用区间外的槽位不应被阻止, reason=%s", reason)
	}
}
