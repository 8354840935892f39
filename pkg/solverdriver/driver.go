// Package solverdriver 编排一次完整求解调用：资源闸门、ICPMP 预处理、
// 槽位装配、约束注册、严格遵从率自动搜索、CP 求解与结果文档组装。
package solverdriver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/paiban/engine/internal/metrics"
	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/constraint/builtin"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/cpsolver/localsearch"
	"github.com/paiban/engine/pkg/enginerr"
	"github.com/paiban/engine/pkg/icpmp"
	"github.com/paiban/engine/pkg/incremental"
	"github.com/paiban/engine/pkg/logger"
	"github.com/paiban/engine/pkg/model"
	"github.com/paiban/engine/pkg/ratiocache"
	"github.com/paiban/engine/pkg/resourcegate"
	"github.com/paiban/engine/pkg/resultbuilder"
	"github.com/paiban/engine/pkg/slotbuilder"
)

var driverLogger = logger.NewComponentLogger("solver_driver")

// Options 控制一次 Run 调用的可插拔行为。
type Options struct {
	// Solver 是注入的 CP 求解能力；留空时使用 localsearch.New()。
	Solver cpsolver.Solver
	// Tier 是资源闸门使用的主机容量档位；留空时按 TierMedium 处理。
	Tier resourcegate.Tier
	// Cache 是可选的严格遵从率缓存；留空时禁用缓存，每次都做完整扫描。
	Cache ratiocache.Store
}

// Run 执行完整求解管线，返回最终的结果文档。
func Run(ctx context.Context, problem model.Problem, opts Options) (*model.Result, error) {
	start := time.Now()
	runID := fmt.Sprintf("%s_%s", problem.PlanningHorizon.Start, problem.PlanningHorizon.End)

	originalProblem := problem
	proj, solveProblem := incremental.Project(problem)

	tier := opts.Tier
	if tier == "" {
		tier = resourcegate.TierMedium
	}
	if _, err := resourcegate.Check(solveProblem, tier); err != nil {
		return nil, err
	}

	trace, err := icpmp.Preprocess(solveProblem)
	if err != nil {
		return nil, err
	}

	working := applyOutcomeFallback(solveProblem, trace)
	working.Employees = applyLockedOffsets(working.Employees, trace)

	arena := model.NewArena()
	for _, e := range working.Employees {
		arena.AddEmployee(e)
	}
	slots, err := slotbuilder.Build(arena, working)
	if err != nil {
		return nil, err
	}

	manager := constraint.NewManager()
	if len(working.ConstraintList) > 0 {
		builtin.RegisterActivated(manager, working.ConstraintList)
	} else {
		builtin.RegisterDefaultConstraints(manager)
	}

	solver := opts.Solver
	if solver == nil {
		solver = localsearch.New()
	}

	candidates := candidateFuncFor(arena)
	baseline := proj.ByHandle(arena)
	driverLogger.SolveStart(runID, len(working.Employees), len(slots))

	patternHash, cacheable := representativePatternHash(working)
	ratioCandidates, cacheHit := resolveRatioCandidates(working, opts.Cache, patternHash, cacheable)

	var (
		best        *cpsolver.Solution
		winner      *cpsolver.Solution
		usedRatio   float64
		winnerRatio float64
		winnerCount = -1
		ratioTrace  []model.RatioSearchEntry
		cancelled   bool
	)

	for _, ratio := range ratioCandidates {
		if ctx.Err() != nil {
			cancelled = true
			break
		}

		manager.Register(builtin.NewStrictAdherence(ratio))

		sctx := constraint.NewContext(arena)
		sctx.Config["monthly_hour_limits"] = working.MonthlyHourLimits
		sctx.Baseline = baseline

		solution, serr := solver.Solve(ctx, sctx, manager, slots, candidates, cpsolver.Options{
			TimeLimit: working.SolverConfig.TimeLimit,
			Workers:   working.SolverConfig.ParallelWorkersOverride,
		})
		if serr != nil {
			return nil, enginerr.Internal(serr.Error()).WithCause(serr)
		}

		unmetCount := countUnmet(solution.Context, slots)
		driverLogger.RatioAttempt(runID, ratio, solution.ConstraintResult.IsValid, unmetCount)
		metrics.RecordRatioSearchAttempt(solution.ConstraintResult.IsValid)
		ratioTrace = append(ratioTrace, model.RatioSearchEntry{
			Ratio:      ratio,
			Feasible:   solution.ConstraintResult.IsValid,
			UnmetCount: unmetCount,
			Status:     mapStatus(solution.Status),
		})

		best = solution
		usedRatio = ratio

		if solution.Status == cpsolver.StatusOptimal && unmetCount == 0 {
			employeesUsed := distinctEmployeeCount(solution.Context)
			if winner == nil || employeesUsed < winnerCount || (employeesUsed == winnerCount && ratio < winnerRatio) {
				winner, winnerRatio, winnerCount = solution, ratio, employeesUsed
			}
			if cacheHit {
				break // 缓存命中时只验证该候选，不继续扫描
			}
		}
	}

	if ctx.Err() != nil {
		cancelled = true
	}
	if winner != nil {
		best, usedRatio = winner, winnerRatio
		if opts.Cache != nil && cacheable && !cancelled {
			_ = opts.Cache.Upsert(patternHash, ratiocache.Entry{OptimalRatio: winnerRatio, EmployeesUsed: winnerCount})
		}
	}
	if best == nil {
		if cancelled {
			metrics.RecordSolve(string(model.SolveStatusCancelled), time.Since(start))
			return &model.Result{Meta: model.ResultMeta{SchemaVersion: originalProblem.SchemaVersion}, Status: model.SolveStatusCancelled}, nil
		}
		metrics.RecordSolve("no_solution", time.Since(start))
		return nil, enginerr.Internal("求解器在全部遵从率候选下均未产生解")
	}

	recordConstraintEvaluations(manager, best.ConstraintResult)

	renderProblem := originalProblem
	renderProblem.Employees = working.Employees

	result := resultbuilder.Build(resultbuilder.Input{
		Problem:           renderProblem,
		Arena:             arena,
		Context:           best.Context,
		ConstraintResult:  best.ConstraintResult,
		CPStatus:          best.Status,
		ICPMP:             trace,
		ElapsedMillis:     time.Since(start).Milliseconds(),
		UsedStrictRatio:   usedRatio,
		RatioTrace:        ratioTrace,
		Workers:           best.Workers,
		FallbackToOutcome: trace.FallbackTriggered,
		Cancelled:         cancelled,
		LockedAssignments: proj.LockedAssignments,
		RunID:             runID,
	})

	driverLogger.SolveComplete(runID, time.Since(start), string(result.Status))
	metrics.RecordSolve(string(result.Status), time.Since(start))
	return result, nil
}

// recordConstraintEvaluations 把本次求解注册过的每个约束记为一次评估：
// 出现在最终解硬/软违规清单中的记为 violated，其余记为 satisfied。
func recordConstraintEvaluations(manager *constraint.Manager, result *constraint.Result) {
	if result == nil {
		return
	}
	violated := map[constraint.ID]bool{}
	for _, v := range result.HardViolations {
		violated[v.ConstraintID] = true
	}
	for _, v := range result.SoftViolations {
		violated[v.ConstraintID] = true
	}
	for _, c := range manager.GetAll() {
		metrics.RecordConstraintEvaluation(string(c.ID()), !violated[c.ID()])
	}
}

// selectRatioCandidates 返回严格遵从率的搜索序列，从高到低排列——扫描时
// 先尝试更严格的遵从率。未开启自动搜索时只尝试 1.0（完全遵从）。
func selectRatioCandidates(problem model.Problem) []float64 {
	if !problem.SolverConfig.AutoOptimizeStrictRatio {
		return []float64{1.0}
	}
	candidates := problem.SolverConfig.RatioRange.Candidates()
	if len(candidates) == 0 {
		return []float64{1.0}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(candidates)))
	return candidates
}

// representativePatternHash 取问题中第一条需求的循环班表计算遵从率缓存
// 键。本引擎把一次求解视为围绕单一主循环班表展开（军警排班的常见形态），
// 因此用第一条可用的 WorkPattern 代表整个问题；纯 outcome-based、无循环
// 班表的问题没有可供缓存的模式，返回 cacheable=false。
func representativePatternHash(problem model.Problem) (string, bool) {
	for _, ref := range problem.AllRequirements() {
		if ref.Requirement.WorkPattern.Length() > 0 {
			return ratiocache.ComputePatternHash(ref.Requirement.WorkPattern), true
		}
	}
	return "", false
}

// resolveRatioCandidates 在缓存命中时只返回缓存的比例（跳过扫描），
// 否则返回完整的候选序列。
func resolveRatioCandidates(problem model.Problem, cache ratiocache.Store, hash string, cacheable bool) ([]float64, bool) {
	if cache != nil && cacheable {
		if entry, ok, err := cache.Lookup(hash); err == nil && ok {
			return []float64{entry.OptimalRatio}, true
		}
	}
	return selectRatioCandidates(problem), false
}

// distinctEmployeeCount 统计一个求解上下文中实际承担了指派的不同员工数，
// 用于严格遵从率自动搜索按“用人最少”挑选获胜候选。
func distinctEmployeeCount(ctx *constraint.Context) int {
	seen := map[model.EmpIdx]struct{}{}
	for _, a := range ctx.Assignments {
		seen[a.Emp] = struct{}{}
	}
	return len(seen)
}

// mapStatus 把 CP 求解器的内部状态换算为遵从率搜索轨迹记录里使用的
// 粗粒度终态分类（最终文档状态由 resultbuilder 基于完整上下文重新计算）。
func mapStatus(s cpsolver.Status) model.SolveStatus {
	switch s {
	case cpsolver.StatusOptimal, cpsolver.StatusFeasible:
		return model.SolveStatusOK
	case cpsolver.StatusInfeasible:
		return model.SolveStatusInfeasible
	default:
		return model.SolveStatusTimeLimitExceeded
	}
}

func countUnmet(ctx *constraint.Context, slots []model.SlotIdx) int {
	unmet := 0
	for _, s := range slots {
		if _, ok := ctx.AssignmentForSlot(s); !ok {
			unmet++
		}
	}
	return unmet
}

// candidateFuncFor 构造槽位候选员工函数：只做静态、与求解状态无关的筛选
// （军衔/性别/方案/名单/资质/可用性），其余硬约束（工时、休息、轮转偏移）
// 留给 Manager.CanAssign 在指派时短路检查。
func candidateFuncFor(arena *model.Arena) cpsolver.CandidateFunc {
	return func(slotIdx model.SlotIdx) []model.EmpIdx {
		slot := arena.Slot(slotIdx)
		var out []model.EmpIdx
		for i := range arena.Employees {
			emp := &arena.Employees[i]
			if !slot.AcceptsEmployee(*emp) {
				continue
			}
			if emp.IsUnavailableOn(slot.Date) {
				continue
			}
			eligible := true
			for _, g := range slot.QualificationGroups {
				if !emp.SatisfiesGroup(g, slot.Date) {
					eligible = false
					break
				}
			}
			if !eligible {
				continue
			}
			out = append(out, model.EmpIdx(i))
		}
		return out
	}
}

// applyLockedOffsets 把 ICPMP 在 auto/ou_offsets 模式下为员工预先分配的
// 轮转偏移写回员工画像，使 C_OFFSET 约束能据此把员工锁定到对应偏移的槽位。
// solver_optimized 模式不产生偏移条目，对应员工保持未锁定。
func applyLockedOffsets(employees []model.Employee, trace icpmp.Trace) []model.Employee {
	offsetByEmp := map[string]int{}
	for _, p := range trace.Plans {
		for emp, off := range p.OffsetsByEmployee {
			offsetByEmp[emp] = off
		}
	}
	if len(offsetByEmp) == 0 {
		return employees
	}

	out := make([]model.Employee, len(employees))
	copy(out, employees)
	for i, e := range out {
		if off, ok := offsetByEmp[e.EmployeeID]; ok {
			v := off
			out[i].RotationOffset = &v
		}
	}
	return out
}

// applyOutcomeFallback 把 ICPMP 判定候选员工池不足、触发 fallback 的
// demand-based 需求项临时改写为 outcome-based，随后由槽位装配器按模板
// 位置重新展开槽位，而不是强行按固定 headcount 生成求解器填不满的槽位。
func applyOutcomeFallback(problem model.Problem, trace icpmp.Trace) model.Problem {
	fallbackDemands := map[string]bool{}
	for _, p := range trace.Plans {
		if p.FallbackTriggered {
			fallbackDemands[p.DemandID] = true
		}
	}
	if len(fallbackDemands) == 0 {
		return problem
	}

	items := make([]model.DemandItem, len(problem.DemandItems))
	copy(items, problem.DemandItems)
	for i, item := range items {
		if fallbackDemands[item.DemandID] && item.RosteringBasis == model.RosteringDemandBased {
			item.RosteringBasis = model.RosteringOutcomeBased
			items[i] = item
		}
	}
	problem.DemandItems = items
	return problem
}
