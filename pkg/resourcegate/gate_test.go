package resourcegate

import (
	"testing"

	"github.com/paiban/engine/pkg/enginerr"
	"github.com/paiban/engine/pkg/model"
)

func smallProblem() model.Problem {
	return model.Problem{
		PlanningHorizon: model.DateRange{Start: model.MustDate("2026-01-01"), End: model.MustDate("2026-01-31")},
		Employees: []model.Employee{
			{EmployeeID: "E1", Scheme: model.SchemeA},
			{EmployeeID: "E2", Scheme: model.SchemeA},
		},
		DemandItems: []model.DemandItem{
			{
				DemandID: "D1",
				Requirements: []model.Requirement{
					{RequirementID: "R1", Headcount: 2, WorkPattern: model.WorkPattern{"D", "D", "O"}},
				},
			},
		},
	}
}

func TestEstimateComplexity_Basic(t *testing.T) {
	report := EstimateComplexity(smallProblem(), TierSmall)
	if report.Slots <= 0 {
		t.Fatalf("Slots = %d, want > 0", report.Slots)
	}
	if report.Employees != 2 {
		t.Errorf("Employees = %d, want 2", report.Employees)
	}
	if !report.CanSolve {
		t.Errorf("小规模问题应可求解, reason=%s", report.Reason)
	}
}

func TestCheck_WithinSoftThresholdPasses(t *testing.T) {
	_, err := Check(smallProblem(), TierLarge)
	if err != nil {
		t.Fatalf("小规模问题不应被拒绝: %v", err)
	}
}

func TestCheck_ExceedsHardCapRejects(t *testing.T) {
	problem := smallProblem()
	problem.DemandItems[0].Requirements[0].Headcount = 10_000_000

	report, err := Check(problem, TierSmall)
	if err == nil {
		t.Fatal("超出硬上限应返回错误")
	}
	if enginerr.GetKind(err) != enginerr.KindProblemTooLarge {
		t.Errorf("错误类别 = %v, want KindProblemTooLarge", enginerr.GetKind(err))
	}
	if report.CanSolve {
		t.Error("report.CanSolve 应为 false")
	}
}

func TestTierFromCapacity(t *testing.T) {
	cases := []struct {
		gb   float64
		want Tier
	}{
		{2, TierSmall},
		{4, TierSmall},
		{6, TierMedium},
		{8, TierMedium},
		{16, TierLarge},
	}
	for _, tc := range cases {
		if got := TierFromCapacity(tc.gb); got != tc.want {
			t.Errorf("TierFromCapacity(%v) = %v, want %v", tc.gb, got, tc.want)
		}
	}
}
