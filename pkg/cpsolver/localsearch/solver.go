package localsearch

import (
	"context"
	"time"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/model"
)

// Solver 实现 cpsolver.Solver：贪心构造初始解，再用模拟退火/禁忌局部
// 搜索优化，worker 数按问题规模自适应。
type Solver struct{}

// New 创建一个 localsearch 求解器实例。
func New() *Solver { return &Solver{} }

// Name 返回求解器名称，供求解运行元数据记录。
func (s *Solver) Name() string { return "localsearch" }

// Solve 实现 cpsolver.Solver。
func (s *Solver) Solve(ctx context.Context, sctx *constraint.Context, manager *constraint.Manager, slots []model.SlotIdx, candidates cpsolver.CandidateFunc, opts cpsolver.Options) (*cpsolver.Solution, error) {
	start := time.Now()

	initial := sctx
	if len(initial.Assignments) == 0 {
		initial = Construct(manager, sctx.Arena, slots, candidates)
	}

	variables := len(slots) * averageCandidates(slots, candidates)
	workers := opts.Workers
	if workers <= 0 {
		workers = cpsolver.WorkersForVariables(variables)
	}

	config := DefaultConfig()
	config.Workers = workers
	if opts.TimeLimit > 0 {
		config.MaxTime = opts.TimeLimit
	}

	optimizer := NewOptimizer(config, manager, slots, candidates)

	var best *constraint.Context
	var result *constraint.Result
	if workers > 1 {
		best, result = optimizer.ParallelOptimize(ctx, initial, workers)
	} else {
		best, result = optimizer.Optimize(ctx, initial)
	}

	timedOut := time.Since(start) >= config.MaxTime
	unmet := UnmetSlots(best, slots)
	status := cpsolver.ClassifyStatus(result, timedOut, unmet)

	return &cpsolver.Solution{
		Context:          best,
		ConstraintResult: result,
		Status:           status,
		Workers:          workers,
		Duration:         time.Since(start),
	}, nil
}

func averageCandidates(slots []model.SlotIdx, candidates cpsolver.CandidateFunc) int {
	if len(slots) == 0 {
		return 1
	}
	total := 0
	for _, s := range slots {
		total += len(candidates(s))
	}
	avg := total / len(slots)
	if avg < 1 {
		avg = 1
	}
	return avg
}

var _ cpsolver.Solver = (*Solver)(nil)
