package model

import "time"

// HourCalculationMethod 选择每月工时核算方法（规范 §4.7）。
type HourCalculationMethod string

const (
	MethodWeeklyThreshold  HourCalculationMethod = "weekly_threshold"
	MethodDailyProrated    HourCalculationMethod = "daily_prorated"
	MethodMonthlyCumulative HourCalculationMethod = "monthly_cumulative"
)

// MonthlyHourLimitsKey 是月度工时限额表的查找键：(scheme, product_type, employee_type)。
type MonthlyHourLimitsKey struct {
	Scheme       Scheme
	ProductType  string
	EmployeeType string
}

// MonthlyHourLimitsRow 是按月份天数分档的一行限额记录。
type MonthlyHourLimitsRow struct {
	DaysInMonth             int                   `json:"days_in_month"`
	HourCalculationMethod   HourCalculationMethod `json:"hour_calculation_method"`
	MinimumContractualHours float64               `json:"minimum_contractual_hours"`
	MaxOvertimeHours        float64               `json:"max_overtime_hours"`
	TotalMaxHours           float64               `json:"total_max_hours"`
}

// MonthlyHourLimits 把键映射到按月份天数索引的行集合。
type MonthlyHourLimits map[MonthlyHourLimitsKey][]MonthlyHourLimitsRow

// RowFor 返回与给定月份天数最匹配的行；未找到时返回 ok=false。
func (m MonthlyHourLimits) RowFor(key MonthlyHourLimitsKey, daysInMonth int) (MonthlyHourLimitsRow, bool) {
	rows, ok := m[key]
	if !ok {
		return MonthlyHourLimitsRow{}, false
	}
	for _, r := range rows {
		if r.DaysInMonth == daysInMonth {
			return r, true
		}
	}
	// 退化：表中只有一行时直接使用，容忍月份天数未精确列出的测试数据。
	if len(rows) == 1 {
		return rows[0], true
	}
	return MonthlyHourLimitsRow{}, false
}

// OptimizationMode 控制求解目标的权重取向。
type OptimizationMode string

const (
	OptimizeMinimizeEmployeeCount OptimizationMode = "minimize_employee_count"
	OptimizeBalanceWorkload       OptimizationMode = "balance_workload"
)

// SolverConfig 是求解器的运行期配置。
type SolverConfig struct {
	TimeLimit               time.Duration    `json:"time_limit"`
	AutoOptimizeStrictRatio bool             `json:"auto_optimize_strict_ratio"`
	RatioRange              AutoRatioConfig  `json:"ratio_range"`
	FallbackToOutcomeBased  bool             `json:"fallback_to_outcome_based"`
	OptimizationMode        OptimizationMode `json:"optimization_mode"`
	CachePath               string           `json:"cache_path,omitempty"`
	ParallelWorkersOverride int              `json:"parallel_workers_override,omitempty"`
}

// DefaultSolverConfig 返回规范默认值：0.5–0.8 步长 0.05 的比例扫描，
// fallback 打开，outcome-based 优化模式为平衡工作量。
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		TimeLimit:              30 * time.Second,
		FallbackToOutcomeBased: true,
		OptimizationMode:       OptimizeBalanceWorkload,
		RatioRange:             AutoRatioConfig{Min: 0.5, Max: 0.8, Step: 0.05},
	}
}

// EmployeeChanges 描述增量求解中人员池的变更。
type EmployeeChanges struct {
	NewJoiners []Employee           `json:"new_joiners,omitempty"`
	Departures []string             `json:"departures,omitempty"`
	LongLeaves map[string]DateRange `json:"long_leaves,omitempty"`
}

// IncrementalBlock 是规范 §4.6 增量求解所需的输入块。
type IncrementalBlock struct {
	CutoffDate          Date             `json:"cutoff_date"`
	SolveFromDate       Date             `json:"solve_from_date"`
	SolveToDate         Date             `json:"solve_to_date"`
	PreviousAssignments []Assignment     `json:"previous_assignments"`
	EmployeeChanges     EmployeeChanges  `json:"employee_changes"`
}

// ConstraintActivation 激活并配置一个约束模块。
type ConstraintActivation struct {
	ID      string                 `json:"id"`
	Enabled bool                   `json:"enabled"`
	Weight  int                    `json:"weight,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

// Problem 是引擎的顶层输入文档（规范 §3 / §6.2）。
type Problem struct {
	SchemaVersion     string                 `json:"schema_version"`
	PlanningHorizon   DateRange              `json:"planning_horizon"`
	PublicHolidays    []Date                 `json:"public_holidays"`
	Shifts            []ShiftType            `json:"shifts"`
	Employees         []Employee             `json:"employees"`
	DemandItems       []DemandItem           `json:"demand_items"`
	MonthlyHourLimits MonthlyHourLimits      `json:"monthly_hour_limits"`
	ConstraintList    []ConstraintActivation `json:"constraint_list"`
	SolverConfig      SolverConfig           `json:"solver_config"`
	Incremental       *IncrementalBlock      `json:"incremental,omitempty"`
}

// ShiftByCode 在本问题的班次表中按代码查找。
func (p Problem) ShiftByCode(code string) (ShiftType, bool) {
	for _, s := range p.Shifts {
		if s.Code == code {
			return s, true
		}
	}
	return ShiftType{}, false
}

// IsPublicHoliday 判断给定日期是否为公众假期。
func (p Problem) IsPublicHoliday(d Date) bool {
	for _, h := range p.PublicHolidays {
		if h.Equal(d) {
			return true
		}
	}
	return false
}

// AllRequirements 按需求项顺序展开全部需求，保序便于结果确定性。
func (p Problem) AllRequirements() []RequirementRef {
	var out []RequirementRef
	for _, item := range p.DemandItems {
		for i := range item.Requirements {
			out = append(out, RequirementRef{Demand: item, Requirement: &item.Requirements[i]})
		}
	}
	return out
}

// RequirementRef 把一条需求与其所属的需求项配对。
type RequirementRef struct {
	Demand      DemandItem
	Requirement *Requirement
}
