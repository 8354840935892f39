// Package resourcegate 在求解前估算问题规模，拒绝会拖垮主机的超大输入。
// 这是唯一允许以规模错误终止求解的组件——约束装配、ICPMP、求解器驱动都
// 假定规模已在容量范围内。
package resourcegate

import (
	"fmt"

	"github.com/paiban/engine/pkg/enginerr"
	"github.com/paiban/engine/pkg/model"
)

// Tier 是按可用内存/逻辑核数划分的主机容量档位。
type Tier string

const (
	TierSmall  Tier = "small"  // <= 4 GiB
	TierMedium Tier = "medium" // <= 8 GiB
	TierLarge  Tier = "large"  // > 8 GiB
)

// tierMaxVariables 是各档位的决策变量上限；独立于档位的全局硬上限见 HardCapVariables。
var tierMaxVariables = map[Tier]int{
	TierSmall:  50_000,
	TierMedium: 200_000,
	TierLarge:  1_000_000,
}

// HardCapVariables 是跨档位的决策变量硬上限。
const HardCapVariables = 2_000_000

// bytesPerVariable 近似每个决策变量（含搜索开销）占用的内存。
const bytesPerVariable = 100

// TierFromCapacity 按可用内存（GiB）推断容量档位。
func TierFromCapacity(availableMemGB float64) Tier {
	switch {
	case availableMemGB <= 4:
		return TierSmall
	case availableMemGB <= 8:
		return TierMedium
	default:
		return TierLarge
	}
}

// Report 是 estimate_complexity 的输出。
type Report struct {
	Variables int    `json:"variables"`
	MemoryMB  float64 `json:"memory_mb"`
	Slots     int    `json:"slots"`
	Employees int    `json:"employees"`
	Tier      Tier   `json:"tier"`
	CanSolve  bool   `json:"can_solve"`
	Reason    string `json:"reason,omitempty"`
}

// softThreshold 返回告警阈值：min(1_000_000, tierMax/2)。
func softThreshold(tier Tier) int {
	tierMax := tierMaxVariables[tier]
	soft := tierMax / 2
	if soft > 1_000_000 {
		soft = 1_000_000
	}
	return soft
}

// hardThreshold 返回该档位下的硬上限（不得超过 HardCapVariables）。
func hardThreshold(tier Tier) int {
	tierMax := tierMaxVariables[tier]
	if tierMax > HardCapVariables {
		return HardCapVariables
	}
	return tierMax
}

// EstimateComplexity 纯函数估算问题规模，不产生副作用，不修改 problem。
func EstimateComplexity(problem model.Problem, tier Tier) Report {
	horizonDays := len(problem.PlanningHorizon.Days())
	if horizonDays == 0 {
		horizonDays = 1
	}

	totalSlots := 0
	for _, ref := range problem.AllRequirements() {
		req := ref.Requirement
		headcount := req.Headcount
		if headcount <= 0 {
			headcount = 1
		}
		fraction := patternWorkFraction(req.WorkPattern)
		totalSlots += int(float64(headcount*horizonDays) * fraction)
	}

	avgEligible := averageEligibleEmployees(problem)
	variables := totalSlots * avgEligible

	memMB := float64(variables) * bytesPerVariable / (1024 * 1024)

	hard := hardThreshold(tier)
	report := Report{
		Variables: variables,
		MemoryMB:  memMB,
		Slots:     totalSlots,
		Employees: len(problem.Employees),
		Tier:      tier,
		CanSolve:  true,
	}
	if variables > hard {
		report.CanSolve = false
		report.Reason = fmt.Sprintf("决策变量数 %d 超过 %s 档位硬上限 %d", variables, tier, hard)
	}
	return report
}

// patternWorkFraction 返回循环班表中工作日所占比例；空班表按全工作日估算。
func patternWorkFraction(p model.WorkPattern) float64 {
	if p.Length() == 0 {
		return 1.0
	}
	return float64(p.WorkDaysPerCycle()) / float64(p.Length())
}

// averageEligibleEmployees 按 scheme/rank 过滤估算需求平均可用员工数，
// 下限为 1 以避免零乘导致变量数估算失真。
func averageEligibleEmployees(problem model.Problem) int {
	refs := problem.AllRequirements()
	if len(refs) == 0 || len(problem.Employees) == 0 {
		return 1
	}

	totalEligible := 0
	for _, ref := range refs {
		req := ref.Requirement
		count := 0
		for _, e := range problem.Employees {
			if req.AcceptsScheme(e.Scheme) && req.AcceptsRank(e.Rank) {
				count++
			}
		}
		if count == 0 {
			count = 1
		}
		totalEligible += count
	}
	avg := totalEligible / len(refs)
	if avg < 1 {
		avg = 1
	}
	return avg
}

// Check 是求解入口处的预求解闸门：软阈值以下直接放行；超过硬阈值以
// ProblemTooLarge 拒绝，附带规模缩减建议；介于两者之间放行但调用方应记录告警。
func Check(problem model.Problem, tier Tier) (Report, error) {
	report := EstimateComplexity(problem, tier)
	soft := softThreshold(tier)

	if report.Variables <= soft {
		return report, nil
	}
	if report.CanSolve {
		return report, nil
	}

	err := enginerr.ProblemTooLarge(report.Reason).
		WithField("variables", report.Variables).
		WithField("tier", string(report.Tier)).
		WithField("suggestions", []string{
			"降低 headcount",
			"缩短规划周期",
			"拆分需求项",
			"使用增量求解模式",
		})
	return report, err
}
