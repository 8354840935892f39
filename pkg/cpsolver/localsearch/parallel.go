package localsearch

import (
	"context"
	"sync"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/model"
)

// parallelGenerate 并行生成 count 个邻域解，workers 个协程各自持有独立的
// 随机数来源以避免共享状态下的锁争用。
func parallelGenerate(seedRng func(i int) *Generator, workers, count int, current *constraint.Context, slots []model.SlotIdx, candidates cpsolver.CandidateFunc) []*constraint.Context {
	if workers <= 1 {
		gen := seedRng(0)
		out := make([]*constraint.Context, 0, count)
		for i := 0; i < count; i++ {
			if n := gen.Generate(current, slots, candidates); n != nil {
				out = append(out, n)
			}
		}
		return out
	}

	resultCh := make(chan *constraint.Context, count)
	var wg sync.WaitGroup
	perWorker := count / workers
	if perWorker < 1 {
		perWorker = 1
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			gen := seedRng(workerID)
			for i := 0; i < perWorker; i++ {
				if n := gen.Generate(current, slots, candidates); n != nil {
					resultCh <- n
				}
			}
		}(w)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	out := make([]*constraint.Context, 0, count)
	for n := range resultCh {
		out = append(out, n)
	}
	return out
}

// ParallelOptimize 运行 Optimize 的并行邻域生成变体：每轮在多个工作协程
// 间并行生成候选邻域，再在主协程上串行评估接受——评估依赖 manager 的
// 共享只读规则集，天然可重入，真正的并行收益来自邻域构造本身。
func (o *Optimizer) ParallelOptimize(ctx context.Context, initial *constraint.Context, workers int) (*constraint.Context, *constraint.Result) {
	if workers <= 1 {
		return o.Optimize(ctx, initial)
	}

	seedRng := func(i int) *Generator {
		return NewGenerator(newSeededRand(int64(i) + 1))
	}

	original := o.generateNeighborsFn
	o.generateNeighborsFn = func(current *constraint.Context) []*constraint.Context {
		return parallelGenerate(seedRng, workers, o.config.NeighborhoodSize, current, o.slots, o.candidates)
	}
	defer func() { o.generateNeighborsFn = original }()

	return o.Optimize(ctx, initial)
}
