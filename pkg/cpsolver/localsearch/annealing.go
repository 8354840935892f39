package localsearch

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/paiban/engine/pkg/constraint"
	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/logger"
	"github.com/paiban/engine/pkg/model"
)

// Config 是局部搜索的调参项。
type Config struct {
	MaxIterations    int
	MaxTime          time.Duration
	InitialTemp      float64
	CoolingRate      float64
	TabuSize         int
	NeighborhoodSize int
	Workers          int
	StopOnPlateau    bool
	PlateauThreshold int
}

// DefaultConfig 返回默认调参项。
func DefaultConfig() Config {
	return Config{
		MaxIterations:    1000,
		MaxTime:          30 * time.Second,
		InitialTemp:      100.0,
		CoolingRate:      0.99,
		TabuSize:         50,
		NeighborhoodSize: 20,
		Workers:          1,
		StopOnPlateau:    true,
		PlateauThreshold: 100,
	}
}

// Optimizer 是模拟退火 + 禁忌表局部搜索优化器。
type Optimizer struct {
	config     Config
	manager    *constraint.Manager
	slots      []model.SlotIdx
	candidates cpsolver.CandidateFunc
	gen        *Generator
	tabu       *tabuList
	rng        *rand.Rand
	log        *logger.ComponentLogger

	generateNeighborsFn func(*constraint.Context) []*constraint.Context
}

// NewOptimizer 创建一个绑定到给定约束管理器与槽位集合的优化器。
func NewOptimizer(config Config, manager *constraint.Manager, slots []model.SlotIdx, candidates cpsolver.CandidateFunc) *Optimizer {
	rng := rand.New(rand.NewSource(1))
	o := &Optimizer{
		config:     config,
		manager:    manager,
		slots:      slots,
		candidates: candidates,
		gen:        NewGenerator(rng),
		tabu:       newTabuList(config.TabuSize),
		rng:        rng,
		log:        logger.NewComponentLogger("solver"),
	}
	o.generateNeighborsFn = o.generateNeighbors
	return o
}

// newSeededRand 创建一个独立的随机数来源，供并行工作协程各自持有。
func newSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// score 把约束评估结果折算为越小越优的目标值：惩罚值加上每个未指派槽位
// 的固定代价，驱动搜索优先填满槽位再优化软约束。
func (o *Optimizer) score(ctx *constraint.Context) (*constraint.Result, float64) {
	result := o.manager.Evaluate(ctx)
	unmet := UnmetSlots(ctx, o.slots)
	objective := float64(result.TotalPenalty) + float64(unmet)*1000.0
	return result, objective
}

// Optimize 从 initial 出发运行局部搜索，返回目标值最优的上下文及其约束
// 评估结果。
func (o *Optimizer) Optimize(ctx context.Context, initial *constraint.Context) (*constraint.Context, *constraint.Result) {
	start := time.Now()

	current := initial
	_, currentScore := o.score(current)
	best := current
	bestScore := currentScore
	var bestResult *constraint.Result

	temperature := o.config.InitialTemp
	noImprovement := 0

	for i := 0; i < o.config.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			return best, o.manager.Evaluate(best)
		default:
		}
		if time.Since(start) > o.config.MaxTime {
			break
		}

		neighbor, neighborScore, neighborResult := o.bestOf(o.generateNeighborsFn(current))
		if neighbor == nil {
			noImprovement++
			if o.config.StopOnPlateau && noImprovement >= o.config.PlateauThreshold {
				break
			}
			continue
		}

		moveKey := hashContext(neighbor)
		inTabu := o.tabu.Contains(moveKey)

		accept := false
		if neighborScore < currentScore {
			accept = true
		} else if !inTabu {
			delta := neighborScore - currentScore
			if o.rng.Float64() < boltzmannProbability(delta, temperature) {
				accept = true
			}
		}

		if accept {
			current = neighbor
			currentScore = neighborScore
			o.tabu.Add(moveKey)

			if currentScore < bestScore {
				best = current
				bestScore = currentScore
				bestResult = neighborResult
				noImprovement = 0
			} else {
				noImprovement++
			}
		} else {
			noImprovement++
		}

		if o.config.StopOnPlateau && noImprovement >= o.config.PlateauThreshold {
			break
		}
		temperature *= o.config.CoolingRate
	}

	if bestResult == nil {
		bestResult = o.manager.Evaluate(best)
	}
	o.log.SolveComplete("", time.Since(start), "local_search_complete")
	return best, bestResult
}

func (o *Optimizer) generateNeighbors(current *constraint.Context) []*constraint.Context {
	neighbors := make([]*constraint.Context, 0, o.config.NeighborhoodSize)
	for i := 0; i < o.config.NeighborhoodSize; i++ {
		if n := o.gen.Generate(current, o.slots, o.candidates); n != nil {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

func (o *Optimizer) bestOf(neighbors []*constraint.Context) (*constraint.Context, float64, *constraint.Result) {
	var best *constraint.Context
	var bestResult *constraint.Result
	bestScore := math.Inf(1)

	for _, n := range neighbors {
		result, s := o.score(n)
		if s < bestScore {
			best, bestScore, bestResult = n, s, result
		}
	}
	return best, bestScore, bestResult
}

func boltzmannProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-delta / temperature)
}

// hashContext 对一个上下文的指派集合做确定性哈希，用作禁忌表的移动键。
func hashContext(ctx *constraint.Context) uint64 {
	pairs := make([]constraint.Assignment, len(ctx.Assignments))
	copy(pairs, ctx.Assignments)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Slot != pairs[j].Slot {
			return pairs[i].Slot < pairs[j].Slot
		}
		return pairs[i].Emp < pairs[j].Emp
	})

	h := fnv.New64a()
	buf := make([]byte, 8)
	for _, a := range pairs {
		putInt32(buf[:4], int32(a.Slot))
		putInt32(buf[4:], int32(a.Emp))
		h.Write(buf)
	}
	return h.Sum64()
}

func putInt32(buf []byte, v int32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

// tabuList 是固定容量的近期移动记录，防止搜索立即撤销刚接受的移动。
type tabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
}

func newTabuList(size int) *tabuList {
	if size <= 0 {
		size = 1
	}
	return &tabuList{items: make(map[uint64]struct{}), maxSize: size}
}

func (t *tabuList) Add(key uint64) {
	if _, exists := t.items[key]; exists {
		return
	}
	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}
	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

func (t *tabuList) Contains(key uint64) bool {
	_, ok := t.items[key]
	return ok
}
