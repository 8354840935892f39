package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/paiban/engine/pkg/model"
	"github.com/paiban/engine/pkg/ratiocache/filestore"
)

func twoEmployeeProblem() model.Problem {
	start, end := model.MustDate("2026-01-01"), model.MustDate("2026-01-02")
	return model.Problem{
		SchemaVersion:   "1.0",
		PlanningHorizon: model.DateRange{Start: start, End: end},
		Shifts: []model.ShiftType{
			{Code: "D", StartTime: "08:00", EndTime: "16:00", GrossHours: 8},
		},
		Employees: []model.Employee{
			{EmployeeID: "E1", Scheme: model.SchemeA, Gender: model.GenderAny},
			{EmployeeID: "E2", Scheme: model.SchemeA, Gender: model.GenderAny},
		},
		DemandItems: []model.DemandItem{
			{
				DemandID:       "DM1",
				RosteringBasis: model.RosteringDemandBased,
				OffsetMode:     model.OffsetAuto,
				Requirements: []model.Requirement{
					{
						RequirementID:  "R1",
						Headcount:      1,
						WorkPattern:    model.WorkPattern{"D", "D"},
						CoverageAnchor: start,
						ShiftCodes:     []string{"D"},
						Schemes:        []model.Scheme{model.SchemeA},
						Gender:         model.GenderAny,
					},
				},
			},
		},
		SolverConfig: model.SolverConfig{TimeLimit: 2 * time.Second},
	}
}

func TestSolve_FeasibleProblemYieldsResult(t *testing.T) {
	result, err := Solve(context.Background(), twoEmployeeProblem(), Options{})
	if err != nil {
		t.Fatalf("Solve() 返回错误: %v", err)
	}
	if len(result.Assignments) == 0 {
		t.Error("可行问题应产生指派")
	}
}

func TestSolve_PopulatesFileCacheWhenCachePathSet(t *testing.T) {
	problem := twoEmployeeProblem()
	problem.SolverConfig.AutoOptimizeStrictRatio = true
	problem.SolverConfig.RatioRange = model.AutoRatioConfig{Min: 0.8, Max: 1.0, Step: 0.1}

	cachePath := filepath.Join(t.TempDir(), "ratio_cache.json")
	result, err := Solve(context.Background(), problem, Options{CachePath: cachePath})
	if err != nil {
		t.Fatalf("Solve() 返回错误: %v", err)
	}
	if len(result.Assignments) == 0 {
		t.Fatal("可行问题应产生指派")
	}

	store, err := filestore.New(cachePath)
	if err != nil {
		t.Fatalf("filestore.New() 返回错误: %v", err)
	}
	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats() 返回错误: %v", err)
	}
	if stats.EntryCount == 0 {
		t.Error("设置 CachePath 后完整扫描应写入遵从率缓存")
	}
}

func TestEstimateComplexity_DefaultsToMediumTier(t *testing.T) {
	report := EstimateComplexity(twoEmployeeProblem(), "")
	if report.Tier != "medium" {
		t.Errorf("Tier = %s, want medium（未指定档位时的默认值）", report.Tier)
	}
	if !report.CanSolve {
		t.Error("两人两天的小问题应当判定为可求解")
	}
}

func TestValidatePattern_FeasiblePattern(t *testing.T) {
	res := ValidatePattern(model.WorkPattern{"D", "D", "D", "O", "O"}, model.SchemeA, 8)
	if !res.Feasible {
		t.Errorf("res.Feasible = false, want true: %+v", res.Violations)
	}
}

func TestValidatePattern_InfeasiblePatternReturnsAlternatives(t *testing.T) {
	pattern := make(model.WorkPattern, 13)
	for i := range pattern {
		pattern[i] = "D"
	}
	res := ValidatePattern(pattern, model.SchemeA, 8)
	if res.Feasible {
		t.Fatal("连续 13 天工作应判定为不可行")
	}
	if len(res.SuggestedAlternatives) == 0 {
		t.Error("不可行时应给出改写建议")
	}
}
