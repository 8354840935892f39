// Package hours 实现月度工时核算的三种方法（weekly_threshold、
// daily_prorated、monthly_cumulative），以及 Scheme P 与 APGD-D10 的
// 覆盖规则。内部一律用 model.Minutes 定点运算，只在返回值的
// model.HourBreakdown 字段中保留定点表示，调用方在文档边界转换为浮点小时。
package hours

import (
	"sort"
	"time"

	"github.com/paiban/engine/pkg/model"
)

// DayHours 是某员工在某日的毛工时输入，由 Slot Builder/求解器在装配
// Assignment 时一并算出；Lunch 取自该日班次在班次表中登记的午休时长。
type DayHours struct {
	Date            model.Date
	Gross           model.Minutes
	Lunch           model.Minutes
	IsPublicHoliday bool
	IsRestDay       bool // 该日为该员工循环班表中的 O 天但仍被指派工作（补班/顶班）
}

// Net 返回扣除午休后的净工时，是三种核算方法共同的分配基数。
func (d DayHours) Net() model.Minutes { return d.Gross - d.Lunch }

// Ledger 汇总一名员工在整个规划期内按三种方法均可复用的原始输入。
type Ledger struct {
	Employee model.Employee
	Days     []DayHours // 按日期升序
}

// sortedDays 返回按日期升序排列的副本。
func (l Ledger) sortedDays() []DayHours {
	out := make([]DayHours, len(l.Days))
	copy(out, l.Days)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// DayResult 把某一天的核算结果与日期配对；对一个 Ledger 的全部 DayResult
// 按分量逐一相加即得到 Compute 的月度合计，resultbuilder 用它填充单条
// Assignment 的 Hours。
type DayResult struct {
	Date  model.Date
	Hours model.HourBreakdown
}

// Compute 按给定方法与限额行核算整个 Ledger，返回月度合计。
func Compute(method model.HourCalculationMethod, scheme model.Scheme, apgdD10 bool, limits model.MonthlyHourLimitsRow, l Ledger) model.HourBreakdown {
	var total model.HourBreakdown
	for _, dr := range ComputeDaily(method, scheme, apgdD10, limits, l) {
		total = total.Add(dr.Hours)
	}
	return total
}

// ComputeDaily 按给定方法与限额行核算整个 Ledger，保留每一天各自的拆分，
// 使月度合计与单条 Assignment 的工时出自同一份核算结果，不会相互漂移。
func ComputeDaily(method model.HourCalculationMethod, scheme model.Scheme, apgdD10 bool, limits model.MonthlyHourLimitsRow, l Ledger) []DayResult {
	switch method {
	case model.MethodDailyProrated:
		return dailyProrated(limits, l)
	case model.MethodMonthlyCumulative:
		return monthlyCumulative(limits, l)
	default:
		return weeklyThreshold(scheme, apgdD10, l)
	}
}

// weeklyThreshold 按 ISO 周（周一起）维护一个随工作日递减的周工时余量：
// 工作日净工时先冲抵余量，超出部分记为加班；公众假期、补班（O 天顶班）
// 均不占用余量，单独计入对应分量。启用 APGD-D10 时，周内第 6、7 天
// （周六、周日）不参与周阈值余量，改为 normal=0、rest_day_pay 最多 8
// 小时、超出部分记为加班。
func weeklyThreshold(scheme model.Scheme, apgdD10 bool, l Ledger) []DayResult {
	days := l.sortedDays()

	byWeek := map[string][]DayHours{}
	var weekOrder []string
	for _, d := range days {
		wk := d.Date.WeekStart().String()
		if _, ok := byWeek[wk]; !ok {
			weekOrder = append(weekOrder, wk)
		}
		byWeek[wk] = append(byWeek[wk], d)
	}

	var out []DayResult
	for _, wk := range weekOrder {
		weekDays := byWeek[wk]
		remaining := model.MinutesFromHours(weeklyCapHours(scheme, weekDays))

		for _, d := range weekDays {
			var h model.HourBreakdown
			h.Gross = d.Gross
			h.Lunch = d.Lunch
			net := d.Net()

			switch {
			case d.IsPublicHoliday:
				h.PublicHoliday = net
			case d.IsRestDay:
				h.RestDayPay = net
			case apgdD10 && isWeekendDay(d.Date):
				restPay := model.MinutesFromHours(8)
				if net < restPay {
					restPay = net
				}
				h.RestDayPay = restPay
				if net > restPay {
					h.Overtime = net - restPay
				}
			case net <= remaining:
				h.Normal = net
				remaining -= net
			default:
				h.Normal = remaining
				h.Overtime = net - remaining
				remaining = 0
			}

			h.Paid = h.Normal + h.Overtime + h.PublicHoliday + h.RestDayPay
			out = append(out, DayResult{Date: d.Date, Hours: h})
		}
	}
	return out
}

// isWeekendDay 报告日期是否为 ISO 周的第 6、7 天（周六、周日），
// APGD-D10 覆盖规则据此区分标准工作日与需单独核算的休息日。
func isWeekendDay(d model.Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// weeklyCapHours 取 Ledger 中出现过的最长班次净工时作为 Scheme.WeeklyHourCap
// 的输入，近似 Scheme P 按班次时长分档的周工时上限；APGD-D10 不改变上限
// 数值本身，只改变哪些天消耗它，因此上限查找与 apgdD10 无关。
func weeklyCapHours(scheme model.Scheme, days []DayHours) float64 {
	if scheme != model.SchemeP {
		return scheme.WeeklyHourCap(0)
	}
	longest := 0.0
	for _, d := range days {
		if h := d.Net().Hours(); h > longest {
			longest = h
		}
	}
	return scheme.WeeklyHourCap(longest)
}

// dailyProrated 按日核算：阈值等于 minimum_contractual_hours 除以当月
// 预期工作天数（用该 Ledger 中当月非假期、非补班的天数近似），每日净工时
// 超过阈值的部分记为加班，不做跨日结转。
func dailyProrated(limits model.MonthlyHourLimitsRow, l Ledger) []DayResult {
	days := l.sortedDays()

	var out []DayResult
	for _, monthDays := range groupByMonth(days) {
		thresholdMinutes := model.MinutesFromHours(dailyProratedThreshold(limits, monthDays))
		for _, d := range monthDays {
			var h model.HourBreakdown
			h.Gross = d.Gross
			h.Lunch = d.Lunch
			net := d.Net()

			switch {
			case d.IsPublicHoliday:
				h.PublicHoliday = net
			case d.IsRestDay:
				h.RestDayPay = net
			case net <= thresholdMinutes:
				h.Normal = net
			default:
				h.Normal = thresholdMinutes
				h.Overtime = net - thresholdMinutes
			}

			h.Paid = h.Normal + h.Overtime + h.PublicHoliday + h.RestDayPay
			out = append(out, DayResult{Date: d.Date, Hours: h})
		}
	}
	return out
}

// dailyProratedThreshold 把月度最低合同工时摊到当月预期工作天数上，得到
// 每日正常工时阈值。
func dailyProratedThreshold(limits model.MonthlyHourLimitsRow, monthDays []DayHours) float64 {
	expected := 0
	for _, d := range monthDays {
		if !d.IsPublicHoliday && !d.IsRestDay {
			expected++
		}
	}
	if expected == 0 || limits.MinimumContractualHours <= 0 {
		return 0
	}
	return limits.MinimumContractualHours / float64(expected)
}

// monthlyCumulative 按日期顺序维护一个等于 minimum_contractual_hours 的
// 月度正常工时预算：预算充足时净工时计入正常，预算耗尽后全部计入加班，
// 预算可能在某一天中途耗尽，该天据此拆分。
func monthlyCumulative(limits model.MonthlyHourLimitsRow, l Ledger) []DayResult {
	days := l.sortedDays()

	var out []DayResult
	for _, monthDays := range groupByMonth(days) {
		budget := model.MinutesFromHours(limits.MinimumContractualHours)
		for _, d := range monthDays {
			var h model.HourBreakdown
			h.Gross = d.Gross
			h.Lunch = d.Lunch
			net := d.Net()

			switch {
			case d.IsPublicHoliday:
				h.PublicHoliday = net
			case d.IsRestDay:
				h.RestDayPay = net
			case budget <= 0:
				h.Overtime = net
			case net <= budget:
				h.Normal = net
				budget -= net
			default:
				h.Normal = budget
				h.Overtime = net - budget
				budget = 0
			}

			h.Paid = h.Normal + h.Overtime + h.PublicHoliday + h.RestDayPay
			out = append(out, DayResult{Date: d.Date, Hours: h})
		}
	}
	return out
}

// groupByMonth 把按日期升序排列的 days 拆成按日历月分组、且组内仍保持
// 升序的若干切片，dailyProrated/monthlyCumulative 的预算/阈值按月重置。
func groupByMonth(days []DayHours) [][]DayHours {
	var out [][]DayHours
	var cur []DayHours
	curKey := ""
	for _, d := range days {
		mk := d.Date.MonthKey()
		if mk != curKey {
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = nil
			curKey = mk
		}
		cur = append(cur, d)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
