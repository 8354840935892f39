package hours

import (
	"testing"

	"github.com/paiban/engine/pkg/model"
)

func daysOf(hoursPerDay float64, dates ...string) []DayHours {
	var out []DayHours
	for _, d := range dates {
		out = append(out, DayHours{Date: model.MustDate(d), Gross: model.MinutesFromHours(hoursPerDay)})
	}
	return out
}

func TestWeeklyThreshold_SchemeAWithinCap(t *testing.T) {
	l := Ledger{
		Employee: model.Employee{Scheme: model.SchemeA},
		Days:     daysOf(8, "2026-01-12", "2026-01-13", "2026-01-14", "2026-01-15", "2026-01-16"),
	}
	bd := Compute(model.MethodWeeklyThreshold, model.SchemeA, false, model.MonthlyHourLimitsRow{}, l)
	if bd.OvertimeHours() != 0 {
		t.Errorf("40h/周在44h上限内不应产生加班, got %v", bd.OvertimeHours())
	}
	if bd.NormalHours() != 40 {
		t.Errorf("NormalHours() = %v, want 40", bd.NormalHours())
	}
}

func TestWeeklyThreshold_SchemeAOverCap(t *testing.T) {
	l := Ledger{
		Employee: model.Employee{Scheme: model.SchemeA},
		Days:     daysOf(10, "2026-01-12", "2026-01-13", "2026-01-14", "2026-01-15", "2026-01-16"),
	}
	bd := Compute(model.MethodWeeklyThreshold, model.SchemeA, false, model.MonthlyHourLimitsRow{}, l)
	if bd.NormalHours() != 44 {
		t.Errorf("NormalHours() = %v, want 44", bd.NormalHours())
	}
	if bd.OvertimeHours() != 6 {
		t.Errorf("OvertimeHours() = %v, want 6", bd.OvertimeHours())
	}
}

// TestWeeklyThreshold_APGDD10WeekendOverride 复现六日工作周场景：周一至周五
// 每天净工时 11 小时（daysOf 只给毛工时 11 小时、无午休），周内正常工时合计应恰好
// 打满 44 小时周上限；周六（第 6 天）不占用周阈值余量，而是 normal=0、
// rest_day_pay 最多 8 小时、其余计入加班。
func TestWeeklyThreshold_APGDD10WeekendOverride(t *testing.T) {
	weekdays := daysOf(11, "2026-01-12", "2026-01-13", "2026-01-14", "2026-01-15", "2026-01-16")
	saturday := daysOf(11, "2026-01-17")
	l := Ledger{
		Employee: model.Employee{Scheme: model.SchemeA, EnableAPGDD10: true},
		Days:     append(append([]DayHours{}, weekdays...), saturday...),
	}

	results := ComputeDaily(model.MethodWeeklyThreshold, model.SchemeA, true, model.MonthlyHourLimitsRow{}, l)
	if len(results) != 6 {
		t.Fatalf("len(results) = %d, want 6", len(results))
	}

	var total model.HourBreakdown
	for _, r := range results {
		total = total.Add(r.Hours)
	}
	if total.NormalHours() != 44 {
		t.Errorf("NormalHours() = %v, want 44", total.NormalHours())
	}

	sat := results[5].Hours
	if sat.NormalHours() != 0 {
		t.Errorf("周六 NormalHours() = %v, want 0", sat.NormalHours())
	}
	if sat.RestDayPayHours() != 8 {
		t.Errorf("周六 RestDayPayHours() = %v, want 8", sat.RestDayPayHours())
	}
	if sat.OvertimeHours() != 3 {
		t.Errorf("周六 OvertimeHours() = %v, want 3", sat.OvertimeHours())
	}
}

func TestDailyProrated_OverDailyCap(t *testing.T) {
	evenDays := daysOf(8, "2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09",
		"2026-01-12", "2026-01-13", "2026-01-14", "2026-01-15")
	heavyDay := daysOf(11, "2026-01-16")
	l := Ledger{
		Employee: model.Employee{Scheme: model.SchemeP},
		Days:     append(append([]DayHours{}, evenDays...), heavyDay...),
	}
	// 10 个工作日、月度最低合同工时 80 小时 => 每日阈值 8 小时。
	limits := model.MonthlyHourLimitsRow{MinimumContractualHours: 80}
	bd := Compute(model.MethodDailyProrated, model.SchemeP, false, limits, l)
	if bd.NormalHours() != 80 {
		t.Errorf("NormalHours() = %v, want 80 (10 天 * 8 小时阈值)", bd.NormalHours())
	}
	if bd.OvertimeHours() != 3 {
		t.Errorf("OvertimeHours() = %v, want 3 (唯一一天超过每日阈值 3 小时)", bd.OvertimeHours())
	}
}

func TestMonthlyCumulative_OverContractualBudget(t *testing.T) {
	l := Ledger{
		Days: daysOf(8, "2026-01-05", "2026-01-06", "2026-01-07"),
	}
	// 核算预算取 MinimumContractualHours，而不是 TotalMaxHours。
	limits := model.MonthlyHourLimitsRow{MinimumContractualHours: 20}
	bd := Compute(model.MethodMonthlyCumulative, model.SchemeA, false, limits, l)
	if bd.NormalHours() != 20 {
		t.Errorf("NormalHours() = %v, want 20", bd.NormalHours())
	}
	if bd.OvertimeHours() != 4 {
		t.Errorf("OvertimeHours() = %v, want 4", bd.OvertimeHours())
	}
}

// TestMonthlyCumulative_SplitsWithinDay 确认预算在某一天中途耗尽时，该天
// 的工时会被正确拆分为 normal 与 overtime 两部分，而不是整天归入同一个
// 分量。
func TestMonthlyCumulative_SplitsWithinDay(t *testing.T) {
	l := Ledger{
		Days: daysOf(8, "2026-01-05", "2026-01-06"),
	}
	limits := model.MonthlyHourLimitsRow{MinimumContractualHours: 12}
	results := ComputeDaily(model.MethodMonthlyCumulative, model.SchemeA, false, limits, l)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Hours.NormalHours() != 8 || results[0].Hours.OvertimeHours() != 0 {
		t.Errorf("第一天 = %+v, want normal=8 overtime=0", results[0].Hours)
	}
	if results[1].Hours.NormalHours() != 4 || results[1].Hours.OvertimeHours() != 4 {
		t.Errorf("第二天 = %+v, want normal=4 overtime=4", results[1].Hours)
	}
}

func TestWeeklyThreshold_PublicHolidaySeparatedFromCap(t *testing.T) {
	days := daysOf(8, "2026-01-12", "2026-01-13")
	days[1].IsPublicHoliday = true
	l := Ledger{Days: days}
	bd := Compute(model.MethodWeeklyThreshold, model.SchemeA, false, model.MonthlyHourLimitsRow{}, l)
	if bd.PublicHolidayHours() != 8 {
		t.Errorf("PublicHolidayHours() = %v, want 8", bd.PublicHolidayHours())
	}
	if bd.NormalHours() != 8 {
		t.Errorf("NormalHours() = %v, want 8 (假期工时不计入周阈值)", bd.NormalHours())
	}
}

// TestComputeDaily_SatisfiesGrossLunchInvariant 核验每一天的拆分都满足
// normal+overtime+rest_day_pay == gross-lunch，这是 Result Builder 把
// 这些值原样写入单条 Assignment.Hours 的前提。
func TestComputeDaily_SatisfiesGrossLunchInvariant(t *testing.T) {
	days := []DayHours{
		{Date: model.MustDate("2026-01-12"), Gross: model.MinutesFromHours(12), Lunch: model.MinutesFromHours(1)},
		{Date: model.MustDate("2026-01-13"), Gross: model.MinutesFromHours(12), Lunch: model.MinutesFromHours(1)},
	}
	l := Ledger{Employee: model.Employee{Scheme: model.SchemeA}, Days: days}
	limits := model.MonthlyHourLimitsRow{MinimumContractualHours: 10}

	for _, method := range []model.HourCalculationMethod{model.MethodWeeklyThreshold, model.MethodDailyProrated, model.MethodMonthlyCumulative} {
		for _, r := range ComputeDaily(method, model.SchemeA, false, limits, l) {
			h := r.Hours
			got := h.NormalHours() + h.OvertimeHours() + h.RestDayPayHours()
			want := h.GrossHours() - h.LunchHours()
			if got != want {
				t.Errorf("%s %s: normal+overtime+rest_day_pay = %v, want gross-lunch = %v", method, r.Date, got, want)
			}
		}
	}
}
