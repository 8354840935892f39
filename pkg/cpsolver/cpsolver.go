// Package cpsolver 定义可插拔的约束求解器接口。规范把 CP 求解器当作
// 外部可替换依赖；本仓库内置唯一的进程内实现见 cpsolver/localsearch，
// 调用方也可以接入别的 Solver 实现。
package cpsolver

import (
	"context"
	"time"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/model"
)

// Status 是一次求解的终态分类（规范 §4.5 步骤 6）。
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusUnknown    Status = "UNKNOWN"
)

// CandidateFunc 返回某槽位静态过滤后（含 ICPMP 选员结果）仍可考虑指派的
// 候选员工句柄集合；求解器本身不关心这个集合是怎么算出来的。
type CandidateFunc func(slot model.SlotIdx) []model.EmpIdx

// Options 控制一次求解调用的资源预算。
type Options struct {
	TimeLimit time.Duration
	// Workers 是并行搜索工作数；0 表示由求解器按问题规模自动决定。
	Workers int
}

// Solution 是一次求解调用的产出。
type Solution struct {
	Context          *constraint.Context
	ConstraintResult *constraint.Result
	Status           Status
	Iterations       int
	Workers          int
	Duration         time.Duration
}

// Solver 是可插拔 CP 求解器的接口。
type Solver interface {
	// Solve 在给定约束上下文（已绑定 Arena）上，为 slots 中的每个槽位从
	// candidates 给出的候选中选出指派，使 manager 的加权目标最优。
	Solve(ctx context.Context, sctx *constraint.Context, manager *constraint.Manager, slots []model.SlotIdx, candidates CandidateFunc, opts Options) (*Solution, error)
}

// workerSteps 是问题规模（决策变量数）到并行工作数的阶梯映射，按规范
// §4.5："1 worker under 5k variables, up to 16 at or above 150k"。
var workerSteps = []struct {
	minVariables int
	workers      int
}{
	{0, 1},
	{5_000, 2},
	{20_000, 4},
	{50_000, 8},
	{150_000, 16},
}

// WorkersForVariables 按决策变量数推断并行搜索工作数。
func WorkersForVariables(variables int) int {
	workers := 1
	for _, step := range workerSteps {
		if variables >= step.minVariables {
			workers = step.workers
		}
	}
	return workers
}

// ClassifyStatus 把内部求解结果分类为 {OPTIMAL, FEASIBLE, INFEASIBLE,
// UNKNOWN}；任何未满足的槽位都会把 OPTIMAL 降级为 FEASIBLE（步骤 6）。
func ClassifyStatus(result *constraint.Result, timedOut bool, unmetSlots int) Status {
	if !result.IsValid {
		if timedOut {
			return StatusUnknown
		}
		return StatusInfeasible
	}
	if unmetSlots > 0 {
		return StatusFeasible
	}
	if timedOut {
		return StatusFeasible
	}
	return StatusOptimal
}
