package solverdriver

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/paiban/engine/pkg/model"
	"github.com/paiban/engine/pkg/ratiocache"
	"github.com/paiban/engine/pkg/ratiocache/filestore"
)

func lockedAssignment(empID, date string, netHours int) model.Assignment {
	d := model.MustDate(date)
	base := d.Time()
	return model.Assignment{
		EmployeeID: empID,
		Date:       d,
		ShiftCode:  "D",
		Start:      time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC),
		End:        time.Date(base.Year(), base.Month(), base.Day(), netHours, 0, 0, 0, time.UTC),
		Status:     model.StatusAssigned,
	}
}

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
		SolverConfig: model.SolverConfig{
			TimeLimit: 2 * time.Second,
		},
	}
}

func TestRun_FullyStaffedProblemYieldsOK(t *testing.T) {
	problem := twoEmployeeProblem()

	result, err := Run(context.Background(), problem, Options{})
	if err != nil {
		t.Fatalf("Run() 返回错误: %v", err)
	}
	if result == nil {
		t.Fatal("Run() 不应返回 nil 结果")
	}
	if len(result.Assignments) == 0 {
		t.Error("两天均有需求、存在合格员工时应产生指派")
	}
}

func TestRun_CancelledContextReportsCancelled(t *testing.T) {
	problem := twoEmployeeProblem()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	problem.SolverConfig.AutoOptimizeStrictRatio = true
	problem.SolverConfig.RatioRange = model.AutoRatioConfig{Min: 0.5, Max: 1.0, Step: 0.1}

	result, err := Run(ctx, problem, Options{})
	if err != nil {
		t.Fatalf("Run() 返回错误: %v", err)
	}
	if result.Status != model.SolveStatusCancelled {
		t.Errorf("Status = %s, want CANCELLED", result.Status)
	}
}

func TestRun_NoEligibleEmployeesLeavesSlotsUnmet(t *testing.T) {
	problem := twoEmployeeProblem()
	problem.Employees = []model.Employee{
		{EmployeeID: "E1", Scheme: model.SchemeP, Gender: model.GenderAny},
	}

	result, err := Run(context.Background(), problem, Options{})
	if err != nil {
		t.Fatalf("Run() 返回错误: %v", err)
	}
	if len(result.UnmetDemand) == 0 {
		t.Error("唯一员工方案与需求不匹配时应产生未满足需求")
	}
	if result.Status == model.SolveStatusOK {
		t.Errorf("存在未满足需求时状态不应为 OK, got %s", result.Status)
	}
}

func TestSelectRatioCandidates_DescendingWhenAutoEnabled(t *testing.T) {
	problem := twoEmployeeProblem()
	problem.SolverConfig.AutoOptimizeStrictRatio = true
	problem.SolverConfig.RatioRange = model.AutoRatioConfig{Min: 0.6, Max: 1.0, Step: 0.2}

	got := selectRatioCandidates(problem)
	for i := 1; i < len(got); i++ {
		if got[i] > got[i-1] {
			t.Fatalf("候选比例应按降序排列: %v", got)
		}
	}
	if got[0] != 1.0 {
		t.Errorf("第一个候选应为最严格的比例 1.0, got %v", got[0])
	}
}

func TestSelectRatioCandidates_SingleWhenAutoDisabled(t *testing.T) {
	problem := twoEmployeeProblem()
	got := selectRatioCandidates(problem)
	if len(got) != 1 || got[0] != 1.0 {
		t.Errorf("未开启自动搜索时应只尝试 1.0, got %v", got)
	}
}

func TestRepresentativePatternHash_UsesFirstRequirementPattern(t *testing.T) {
	problem := twoEmployeeProblem()
	hash, ok := representativePatternHash(problem)
	if !ok {
		t.Fatal("存在 WorkPattern 时应返回可缓存的哈希")
	}
	want := ratiocache.ComputePatternHash(model.WorkPattern{"D", "D"})
	if hash != want {
		t.Errorf("hash = %s, want %s", hash, want)
	}
}

func TestRun_PopulatesRatioCacheOnFullSweep(t *testing.T) {
	problem := twoEmployeeProblem()
	problem.SolverConfig.AutoOptimizeStrictRatio = true
	problem.SolverConfig.RatioRange = model.AutoRatioConfig{Min: 0.8, Max: 1.0, Step: 0.1}

	store, err := filestore.New(filepath.Join(t.TempDir(), "ratio_cache.json"))
	if err != nil {
		t.Fatalf("filestore.New() 返回错误: %v", err)
	}

	result, err := Run(context.Background(), problem, Options{Cache: store})
	if err != nil {
		t.Fatalf("Run() 返回错误: %v", err)
	}
	if len(result.Assignments) == 0 {
		t.Fatal("可行问题应产生指派")
	}

	hash, _ := representativePatternHash(problem)
	entry, ok, err := store.Lookup(hash)
	if err != nil {
		t.Fatalf("Lookup() 返回错误: %v", err)
	}
	if !ok {
		t.Fatal("完整扫描找到可行解后应写入遵从率缓存")
	}
	if entry.EmployeesUsed == 0 {
		t.Error("缓存条目应记录使用的员工数")
	}
}

func TestRun_IncrementalBaselineBlocksOverCapEmployee(t *testing.T) {
	start, end := model.MustDate("2026-01-01"), model.MustDate("2026-01-09")
	problem := model.Problem{
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
						CoverageAnchor: model.MustDate("2026-01-08"),
						ShiftCodes:     []string{"D"},
						Schemes:        []model.Scheme{model.SchemeA},
						Gender:         model.GenderAny,
					},
				},
			},
		},
		SolverConfig: model.SolverConfig{TimeLimit: 2 * time.Second},
		Incremental: &model.IncrementalBlock{
			// 2026-01-08 是周四，所在 ISO 周（周一起）为 01-05 ~ 01-11，
			// 三天锁定班次与求解窗口落在同一周，基线工时据此与窗口内新增
			// 工时累加比较周上限。
			CutoffDate:    model.MustDate("2026-01-07"),
			SolveFromDate: model.MustDate("2026-01-08"),
			SolveToDate:   model.MustDate("2026-01-09"),
			PreviousAssignments: []model.Assignment{
				lockedAssignment("E1", "2026-01-05", 17),
				lockedAssignment("E1", "2026-01-06", 17),
				lockedAssignment("E1", "2026-01-07", 17),
			},
		},
	}

	result, err := Run(context.Background(), problem, Options{})
	if err != nil {
		t.Fatalf("Run() 返回错误: %v", err)
	}

	lockedCount := 0
	for _, a := range result.Assignments {
		if a.Locked {
			lockedCount++
			continue
		}
		if a.EmployeeID == "E1" {
			t.Errorf("E1 本周基线工时已达上限，不应在求解窗口内继续获得指派: %+v", a)
		}
	}
	if lockedCount != 3 {
		t.Errorf("lockedCount = %d, want 3（窗口前锁定的历史指派）", lockedCount)
	}
}

func TestRun_SkipsSweepOnCacheHit(t *testing.T) {
	problem := twoEmployeeProblem()
	problem.SolverConfig.AutoOptimizeStrictRatio = true
	problem.SolverConfig.RatioRange = model.AutoRatioConfig{Min: 0.5, Max: 1.0, Step: 0.05}

	store, _ := filestore.New(filepath.Join(t.TempDir(), "ratio_cache.json"))
	hash, _ := representativePatternHash(problem)
	if err := store.Upsert(hash, ratiocache.Entry{OptimalRatio: 1.0, EmployeesUsed: 1}); err != nil {
		t.Fatalf("Upsert() 返回错误: %v", err)
	}

	result, err := Run(context.Background(), problem, Options{Cache: store})
	if err != nil {
		t.Fatalf("Run() 返回错误: %v", err)
	}
	if result.Solver.UsedStrictRatio != 1.0 {
		t.Errorf("命中缓存时应直接使用缓存比例, got %v", result.Solver.UsedStrictRatio)
	}
}
