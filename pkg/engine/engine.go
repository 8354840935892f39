// Package engine 是整个排班引擎对外的库入口：三个纯函数式的顶层操作
// （Solve、EstimateComplexity、ValidatePattern），把资源闸门、预处理器、
// 求解器驱动、可行性探针这些内部组件组装成调用方唯一需要知道的表面。
package engine

import (
	"context"
	"strings"

	"github.com/paiban/engine/pkg/cpsolver"
	"github.com/paiban/engine/pkg/enginerr"
	"github.com/paiban/engine/pkg/feasibility"
	"github.com/paiban/engine/pkg/model"
	"github.com/paiban/engine/pkg/ratiocache"
	"github.com/paiban/engine/pkg/ratiocache/filestore"
	"github.com/paiban/engine/pkg/ratiocache/pgstore"
	"github.com/paiban/engine/pkg/resourcegate"
	"github.com/paiban/engine/pkg/solverdriver"
)

// Options 对应规范意义上的 SolverOptions：取消通过标准的 context.Context
// 传达（ctx 被取消时 Solve 返回 CANCELLED 状态），不再单设取消令牌类型。
type Options struct {
	// CachePath 为空时禁用遵从率缓存；"postgres://..." 选择共享的
	// Postgres 后端，其余值作为本地 JSON 文件路径。与 Cache 互斥——
	// Cache 非空时优先使用注入的存储，忽略 CachePath。
	CachePath string
	// Cache 允许调用方直接注入已构造的存储（例如跨多次调用复用同一个
	// *filestore.Store 以分摊文件锁开销）；优先于 CachePath。
	Cache ratiocache.Store
	// Tier 是资源闸门使用的主机容量档位；留空按 TierMedium 处理。
	Tier resourcegate.Tier
	// Solver 透传求解能力注入（测试用假求解器）；留空使用默认的
	// localsearch CP 求解器。
	Solver cpsolver.Solver
}

// Solve 是规范 §6.1 的 solve(problem, options?, cancellation?) -> Result。
func Solve(ctx context.Context, problem model.Problem, opts Options) (*model.Result, error) {
	cache := opts.Cache
	if cache == nil && opts.CachePath != "" {
		store, err := OpenCache(opts.CachePath)
		if err != nil {
			return nil, err
		}
		cache = store
	}

	return solverdriver.Run(ctx, problem, solverdriver.Options{
		Tier:   opts.Tier,
		Cache:  cache,
		Solver: opts.Solver,
	})
}

// OpenCache 依据路径的 scheme 选择遵从率缓存后端："postgres://" 前缀
// 连接共享的 Postgres 存储，否则按本地文件路径打开 JSON 文件存储。导出
// 供 cmd/paibanctl 的 cache 子命令复用同一套后端选择规则。
func OpenCache(path string) (ratiocache.Store, error) {
	if strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://") {
		store, err := pgstore.Open(path)
		if err != nil {
			return nil, enginerr.Internal("无法打开 Postgres 遵从率缓存").WithCause(err)
		}
		return store, nil
	}
	store, err := filestore.New(path)
	if err != nil {
		return nil, enginerr.Internal("无法打开文件遵从率缓存").WithCause(err)
	}
	return store, nil
}

// EstimateComplexity 是规范 §6.1 的 estimate_complexity(problem) ->
// ComplexityReport，纯函数，直接委托给资源闸门的规模估算。
func EstimateComplexity(problem model.Problem, tier resourcegate.Tier) resourcegate.Report {
	if tier == "" {
		tier = resourcegate.TierMedium
	}
	return resourcegate.EstimateComplexity(problem, tier)
}

// ValidatePattern 是规范 §6.1 的
// validate_pattern(pattern, scheme, shift_hours?) -> PatternValidationResult。
// 这里的方案级校验不携带员工个体的 APGD-D10 豁免标记（该标记只在员工画
// 像上声明），因此按未豁免处理；需要豁免版本的判断应改用
// pkg/feasibility.Probe 并显式传入 apgdD10=true。
func ValidatePattern(pattern model.WorkPattern, scheme model.Scheme, shiftHours float64) feasibility.Result {
	return feasibility.Probe(pattern, scheme, shiftHours, false)
}
