package model

// SolveStatus 对应引擎对外报告的终态分类（规范 §7/§8）。
type SolveStatus string

const (
	SolveStatusOK                 SolveStatus = "OK"
	SolveStatusPartial            SolveStatus = "PARTIAL"
	SolveStatusInfeasible         SolveStatus = "INFEASIBLE"
	SolveStatusTimeLimitExceeded  SolveStatus = "TIME_LIMIT_EXCEEDED"
	SolveStatusCancelled          SolveStatus = "CANCELLED"
)

// DailyStatus 是某员工在某一天的最终呈现：工作、休息或未能指派。
type DailyStatus struct {
	Date       Date             `json:"date"`
	Status     AssignmentStatus `json:"status"`
	ShiftCode  string           `json:"shift_code,omitempty"`
	PatternDay int              `json:"pattern_day"`
}

// RosterSummary 汇总一名员工在整个规划期内的工时与合规指标。
type RosterSummary struct {
	TotalHours        float64 `json:"total_hours"`
	NormalHours       float64 `json:"normal_hours"`
	OvertimeHours     float64 `json:"overtime_hours"`
	PublicHolidayHours float64 `json:"public_holiday_hours"`
	RestDayPayHours   float64 `json:"rest_day_pay_hours"`
	WorkDays          int     `json:"work_days"`
	OffDays           int     `json:"off_days"`
	LongestRun        int     `json:"longest_consecutive_work_days"`
	MonthlyHourLimitBreached bool `json:"monthly_hour_limit_breached,omitempty"`
}

// EmployeeRoster 是结果文档中某一名员工的完整排班视图。
type EmployeeRoster struct {
	EmployeeID string        `json:"employee_id"`
	Days       []DailyStatus `json:"days"`
	Summary    RosterSummary `json:"summary"`
}

// RatioSearchEntry 记录严格遵从率自动搜索过程中尝试过的一个候选比例
// 及其求解结果，便于复盘（规范 §4.5 / §9 自动调优轨迹）。
type RatioSearchEntry struct {
	Ratio      float64     `json:"ratio"`
	Feasible   bool        `json:"feasible"`
	UnmetCount int         `json:"unmet_count"`
	Status     SolveStatus `json:"status"`
}

// ICPMPSummary 总结预处理阶段的决定：选中的员工池大小、轮转偏移分配方案、
// 是否触发了过量配置（over-provisioning）。
type ICPMPSummary struct {
	SelectedEmployeeCount int            `json:"selected_employee_count"`
	OffsetsAssigned       map[string]int `json:"offsets_assigned,omitempty"`
	OverProvisioned       bool           `json:"over_provisioned"`
	Notes                 string         `json:"notes,omitempty"`
}

// SolverRunMeta 携带一次求解运行的元信息：耗时、使用的遵从率、ICPMP 摘要
// 与自动搜索轨迹。
type SolverRunMeta struct {
	ElapsedMillis     int64              `json:"elapsed_millis"`
	UsedStrictRatio    float64            `json:"used_strict_adherence_ratio,omitempty"`
	RatioSearchTrace   []RatioSearchEntry `json:"ratio_search_trace,omitempty"`
	ICPMP              ICPMPSummary       `json:"icpmp"`
	ParallelWorkers    int                `json:"parallel_workers,omitempty"`
	FallbackToOutcome bool               `json:"fallback_to_outcome_based,omitempty"`
}

// SolutionQuality 携带公平性/均衡性等衍生质量指标（规范 §12 补充特性）。
type SolutionQuality struct {
	WorkloadGini          float64 `json:"workload_gini"`
	WorkloadStdDev        float64 `json:"workload_stddev"`
	CoverageRatio         float64 `json:"coverage_ratio"`
	EfficiencyPercentage  float64 `json:"efficiency_percentage"`
}

// UnmetDemandItem 记录未能完全满足的一条需求。
type UnmetDemandItem struct {
	DemandID      string `json:"demand_id"`
	RequirementID string `json:"requirement_id"`
	Date          Date   `json:"date"`
	ShiftCode     string `json:"shift_code"`
	ShortBy       int    `json:"short_by"`
	Reason        string `json:"reason,omitempty"`
}

// ResultMeta 携带结果文档的 schema 版本与规划引用信息。
type ResultMeta struct {
	SchemaVersion     string `json:"schema_version"`
	PlanningReference string `json:"planning_reference,omitempty"`
}

// Result 是引擎的顶层输出文档（规范 §3 / §6.3）。
type Result struct {
	Meta        ResultMeta       `json:"meta"`
	Status      SolveStatus      `json:"status"`
	Assignments []Assignment     `json:"assignments"`
	Employees   []EmployeeRoster `json:"employees"`
	Solver      SolverRunMeta    `json:"solver"`
	Quality     SolutionQuality  `json:"quality"`
	UnmetDemand []UnmetDemandItem `json:"unmet_demand,omitempty"`
}
