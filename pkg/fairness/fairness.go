// Package fairness 从最终指派集合计算工作量均衡度指标：基尼系数、方差、
// 标准差与加权综合评分，供结果文档的 solution_quality 部分使用。
package fairness

import (
	"math"
	"sort"

	"github.com/paiban/engine/pkg/model"
)

// EmployeeWorkload 是一名员工在规划期内的总净工时与分配槽位数。
type EmployeeWorkload struct {
	EmployeeID string
	Hours      float64
	ShiftCount int
}

// Metrics 是一次均衡度分析的结果。
type Metrics struct {
	WorkloadGini         float64
	WorkloadVariance     float64
	WorkloadStdDev       float64
	AvgHoursPerEmployee  float64
	MaxHours             float64
	MinHours             float64
	OverallFairnessScore float64
}

// Analyze 按员工聚合 assignments 的工时，计算工作量均衡度指标。未被指派
// 任何班次的员工也计入分母（贡献 0 工时），这样一部分员工完全闲置会被
// 正确地计入不均衡。
func Analyze(assignments []model.Assignment, employees []model.Employee) Metrics {
	if len(employees) == 0 {
		return Metrics{OverallFairnessScore: 100}
	}

	byEmp := map[string]*EmployeeWorkload{}
	for _, e := range employees {
		byEmp[e.EmployeeID] = &EmployeeWorkload{EmployeeID: e.EmployeeID}
	}
	for _, a := range assignments {
		if !a.IsWorking() {
			continue
		}
		w, ok := byEmp[a.EmployeeID]
		if !ok {
			continue
		}
		w.Hours += a.End.Sub(a.Start).Hours()
		w.ShiftCount++
	}

	hours := make([]float64, 0, len(byEmp))
	for _, w := range byEmp {
		hours = append(hours, w.Hours)
	}

	avg := mean(hours)
	variance := varianceOf(hours, avg)
	stdDev := math.Sqrt(variance)
	maxH, minH := rangeOf(hours)
	gini := giniCoefficient(hours)

	return Metrics{
		WorkloadGini:         gini,
		WorkloadVariance:     variance,
		WorkloadStdDev:       stdDev,
		AvgHoursPerEmployee:  avg,
		MaxHours:             maxH,
		MinHours:             minH,
		OverallFairnessScore: overallScore(gini, stdDev, avg),
	}
}

// CoverageRatio 返回已填补槽位数与总槽位数之比（0 总槽位时返回 1）。
func CoverageRatio(totalSlots, filledSlots int) float64 {
	if totalSlots == 0 {
		return 1.0
	}
	return float64(filledSlots) / float64(totalSlots)
}

// EfficiencyPercentage 返回 100 减去软约束违规带来的扣分比例的近似值：
// score 是约束评估得到的 0-100 满足度分数。保留一层转换是为了让结果文档
// 的字段名与求解内部的 Score 解耦。
func EfficiencyPercentage(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func varianceOf(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

func rangeOf(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// giniCoefficient 用排序累积和公式计算基尼系数，0 表示完全公平，1 表示
// 完全不公平。
func giniCoefficient(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}
	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// overallScore 按工作量基尼系数得分（权重 0.4）与变异系数得分（100-cv×200，
// 权重 0.6）的加权组合折算为 0-100 分，去掉了此处无数据来源的夜班/周末班分项（引擎的排班语义里没有"夜班"
// 这个独立概念，所有班次类型都由 shift_type 表自由定义）。
func overallScore(gini, stdDev, avgHours float64) float64 {
	const (
		workloadWeight = 0.4
		stdDevWeight   = 0.6
	)
	workloadScore := (1 - gini) * 100

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := workloadWeight*workloadScore + stdDevWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
