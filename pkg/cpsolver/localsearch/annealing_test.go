package localsearch

import (
	"context"
	"testing"
	"time"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/constraint/builtin"
)

func TestOptimizer_ImprovesOrMaintainsScore(t *testing.T) {
	arena, slots, e1, e2 := twoSlotArena()
	manager := constraint.NewManager()
	builtin.RegisterDefaultConstraints(manager)

	initial := Construct(manager, arena, slots, allCandidates(e1, e2))
	initialResult, _ := (&Optimizer{manager: manager, slots: slots}).score(initial)

	config := DefaultConfig()
	config.MaxIterations = 50
	config.MaxTime = 2 * time.Second
	config.PlateauThreshold = 20

	opt := NewOptimizer(config, manager, slots, allCandidates(e1, e2))
	best, result := opt.Optimize(context.Background(), initial)

	if best == nil {
		t.Fatal("Optimize() 不应返回 nil 上下文")
	}
	if result.TotalPenalty > initialResult.TotalPenalty+1000 {
		t.Errorf("优化后惩罚值不应显著恶化: initial=%d, got=%d", initialResult.TotalPenalty, result.TotalPenalty)
	}
}

func TestOptimizer_RespectsContextCancellation(t *testing.T) {
	arena, slots, e1, e2 := twoSlotArena()
	manager := constraint.NewManager()
	builtin.RegisterDefaultConstraints(manager)

	initial := Construct(manager, arena, slots, allCandidates(e1, e2))

	config := DefaultConfig()
	config.MaxIterations = 1_000_000
	config.MaxTime = time.Minute

	opt := NewOptimizer(config, manager, slots, allCandidates(e1, e2))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	best, result := opt.Optimize(ctx, initial)
	if best == nil || result == nil {
		t.Fatal("取消后仍应返回已有的最优解")
	}
}

func TestTabuList_EvictsOldest(t *testing.T) {
	tl := newTabuList(2)
	tl.Add(1)
	tl.Add(2)
	tl.Add(3)
	if tl.Contains(1) {
		t.Error("容量为 2 时最旧的键应被淘汰")
	}
	if !tl.Contains(2) || !tl.Contains(3) {
		t.Error("最近两个键应仍在禁忌表中")
	}
}
