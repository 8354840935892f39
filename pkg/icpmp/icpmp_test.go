package icpmp

import (
	"testing"

	"github.com/paiban/engine/pkg/enginerr"
	"github.com/paiban/engine/pkg/model"
)

func baseProblem(employees []model.Employee, req model.Requirement, demand model.DemandItem) model.Problem {
	demand.Requirements = []model.Requirement{req}
	return model.Problem{
		PlanningHorizon: model.DateRange{Start: model.MustDate("2026-01-01"), End: model.MustDate("2026-01-31")},
		Shifts:          []model.ShiftType{{Code: "D", StartTime: "07:00", EndTime: "19:00", GrossHours: 12}},
		Employees:       employees,
		DemandItems:     []model.DemandItem{demand},
		SolverConfig:    model.DefaultSolverConfig(),
	}
}

func TestPreprocess_SelectsEmployeesWithinCapacity(t *testing.T) {
	employees := []model.Employee{
		{EmployeeID: "E1", Scheme: model.SchemeA, Rank: "SER"},
		{EmployeeID: "E2", Scheme: model.SchemeA, Rank: "SER"},
		{EmployeeID: "E3", Scheme: model.SchemeA, Rank: "SER"},
	}
	req := model.Requirement{
		RequirementID:  "R1",
		Headcount:      1,
		WorkPattern:    model.WorkPattern{"D", "D", "O"},
		CoverageAnchor: model.MustDate("2026-01-01"),
		ShiftCodes:     []string{"D"},
		RankIDs:        []string{"SER"},
		Schemes:        []model.Scheme{model.SchemeA},
	}
	demand := model.DemandItem{DemandID: "D1", RosteringBasis: model.RosteringOutcomeBased, OffsetMode: model.OffsetAuto}

	trace, err := Preprocess(baseProblem(employees, req, demand))
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if len(trace.Plans) != 1 {
		t.Fatalf("Plans 数 = %d, want 1", len(trace.Plans))
	}
	plan := trace.Plans[0]
	if plan.EstimatedEmployees <= 0 {
		t.Fatal("EstimatedEmployees 应为正数")
	}
	if len(plan.SelectedEmployeeIDs) == 0 {
		t.Fatal("应选中至少一名员工")
	}
	for _, id := range plan.SelectedEmployeeIDs {
		if _, ok := plan.OffsetsByEmployee[id]; !ok {
			t.Errorf("员工 %s 在 auto 模式下应分配到偏移", id)
		}
	}
}

func TestPreprocess_InfeasiblePatternReturnsError(t *testing.T) {
	employees := []model.Employee{{EmployeeID: "E1", Scheme: model.SchemeP}}
	req := model.Requirement{
		RequirementID: "R1",
		Headcount:     1,
		// 全工作、无休息位置的 7 天循环，超过 Scheme P 的 6 天连续上限。
		WorkPattern:    model.WorkPattern{"D", "D", "D", "D", "D", "D", "D"},
		CoverageAnchor: model.MustDate("2026-01-01"),
		ShiftCodes:     []string{"D"},
		Schemes:        []model.Scheme{model.SchemeP},
	}
	demand := model.DemandItem{DemandID: "D1", RosteringBasis: model.RosteringOutcomeBased, OffsetMode: model.OffsetAuto}

	_, err := Preprocess(baseProblem(employees, req, demand))
	if err == nil {
		t.Fatal("超过连续工作上限的班表应返回错误")
	}
	if enginerr.GetKind(err) != enginerr.KindPatternInfeasible {
		t.Errorf("错误类别 = %v, want KindPatternInfeasible", enginerr.GetKind(err))
	}
}

func TestPreprocess_InsufficientPoolTriggersFallback(t *testing.T) {
	employees := []model.Employee{{EmployeeID: "E1", Scheme: model.SchemeA, Rank: "SER"}}
	req := model.Requirement{
		RequirementID:  "R1",
		Headcount:      1,
		WorkPattern:    model.WorkPattern{"D", "D", "D", "D", "D", "O", "O"},
		CoverageAnchor: model.MustDate("2026-01-01"),
		ShiftCodes:     []string{"D"},
		RankIDs:        []string{"SER"},
		Schemes:        []model.Scheme{model.SchemeA},
	}
	demand := model.DemandItem{DemandID: "D1", RosteringBasis: model.RosteringDemandBased, OffsetMode: model.OffsetAuto}

	problem := baseProblem(employees, req, demand)
	problem.SolverConfig.FallbackToOutcomeBased = true

	trace, err := Preprocess(problem)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if !trace.FallbackTriggered {
		t.Fatal("候选池不足且 demand_based 时应触发 fallback")
	}
	if len(trace.Plans[0].Warnings) == 0 {
		t.Fatal("人力不足应记录告警")
	}
}

func TestPreprocess_OUOffsetsOutOfRangeFails(t *testing.T) {
	employees := []model.Employee{
		{EmployeeID: "E1", Scheme: model.SchemeA, Rank: "SER", OrganizationalUnit: "OU1"},
	}
	req := model.Requirement{
		RequirementID:  "R1",
		Headcount:      1,
		WorkPattern:    model.WorkPattern{"D", "D", "O"},
		CoverageAnchor: model.MustDate("2026-01-01"),
		ShiftCodes:     []string{"D"},
		RankIDs:        []string{"SER"},
		Schemes:        []model.Scheme{model.SchemeA},
	}
	demand := model.DemandItem{
		DemandID:       "D1",
		RosteringBasis: model.RosteringOutcomeBased,
		OffsetMode:     model.OffsetOUOffsets,
		OUOffsets:      map[string]int{"OU1": 99},
	}

	_, err := Preprocess(baseProblem(employees, req, demand))
	if err == nil {
		t.Fatal("超出范围的 OU 偏移应返回错误")
	}
	if enginerr.GetKind(err) != enginerr.KindInvalidInput {
		t.Errorf("错误类别 = %v, want KindInvalidInput", enginerr.GetKind(err))
	}
}

func TestPreprocess_SchemeDiversityRoundRobin(t *testing.T) {
	employees := []model.Employee{
		{EmployeeID: "A1", Scheme: model.SchemeA, Rank: "SER"},
		{EmployeeID: "A2", Scheme: model.SchemeA, Rank: "SER"},
		{EmployeeID: "B1", Scheme: model.SchemeB, Rank: "SER"},
		{EmployeeID: "B2", Scheme: model.SchemeB, Rank: "SER"},
	}
	req := model.Requirement{
		RequirementID:  "R1",
		Headcount:      2,
		WorkPattern:    model.WorkPattern{"D", "O"},
		CoverageAnchor: model.MustDate("2026-01-01"),
		ShiftCodes:     []string{"D"},
		RankIDs:        []string{"SER"},
		Schemes:        []model.Scheme{model.SchemeA, model.SchemeB},
	}
	demand := model.DemandItem{DemandID: "D1", RosteringBasis: model.RosteringOutcomeBased, OffsetMode: model.OffsetAuto}

	trace, err := Preprocess(baseProblem(employees, req, demand))
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	plan := trace.Plans[0]
	if len(plan.SelectedEmployeeIDs) < 2 {
		t.Fatal("应至少选中两名员工以体现方案分桶")
	}
	if plan.SelectedEmployeeIDs[0][0] == plan.SelectedEmployeeIDs[1][0] {
		t.Errorf("方案≥2 时应轮流选取不同方案的员工，got %v", plan.SelectedEmployeeIDs)
	}
}
