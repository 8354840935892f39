package model

import (
	"encoding/json"
	"time"
)

// AssignmentStatus 是某员工在某日的最终状态（规范 §3 / §6.3）。
type AssignmentStatus string

const (
	StatusAssigned   AssignmentStatus = "ASSIGNED"
	StatusOffDay      AssignmentStatus = "OFF_DAY"
	StatusUnassigned AssignmentStatus = "UNASSIGNED"
)

// HourBreakdown 把一次指派的工时拆分为核算所需的各分量，内部以 Minutes
// 定点存储，只在结果文档边界（MarshalJSON/UnmarshalJSON）转换为浮点小时。
type HourBreakdown struct {
	Gross          Minutes
	Lunch          Minutes
	Normal         Minutes
	Overtime       Minutes
	PublicHoliday  Minutes
	RestDayPay     Minutes
	Paid           Minutes
}

// hourBreakdownWire 是 HourBreakdown 在文档边界上的浮点小时表示（规范 §3
// Assignment.hours）。
type hourBreakdownWire struct {
	Gross         float64 `json:"gross"`
	Lunch         float64 `json:"lunch"`
	Normal        float64 `json:"normal"`
	Overtime      float64 `json:"overtime"`
	PublicHoliday float64 `json:"public_holiday"`
	RestDayPay    float64 `json:"rest_day_pay"`
	Paid          float64 `json:"paid"`
}

func (h HourBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(hourBreakdownWire{
		Gross:         h.GrossHours(),
		Lunch:         h.LunchHours(),
		Normal:        h.NormalHours(),
		Overtime:      h.OvertimeHours(),
		PublicHoliday: h.PublicHolidayHours(),
		RestDayPay:    h.RestDayPayHours(),
		Paid:          h.PaidHours(),
	})
}

func (h *HourBreakdown) UnmarshalJSON(data []byte) error {
	var w hourBreakdownWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*h = HourBreakdown{
		Gross:         MinutesFromHours(w.Gross),
		Lunch:         MinutesFromHours(w.Lunch),
		Normal:        MinutesFromHours(w.Normal),
		Overtime:      MinutesFromHours(w.Overtime),
		PublicHoliday: MinutesFromHours(w.PublicHoliday),
		RestDayPay:    MinutesFromHours(w.RestDayPay),
		Paid:          MinutesFromHours(w.Paid),
	}
	return nil
}

// GrossHours 等为结果文档序列化提供的浮点小时访问器。
func (h HourBreakdown) GrossHours() float64         { return h.Gross.Hours() }
func (h HourBreakdown) LunchHours() float64         { return h.Lunch.Hours() }
func (h HourBreakdown) NormalHours() float64        { return h.Normal.Hours() }
func (h HourBreakdown) OvertimeHours() float64      { return h.Overtime.Hours() }
func (h HourBreakdown) PublicHolidayHours() float64 { return h.PublicHoliday.Hours() }
func (h HourBreakdown) RestDayPayHours() float64    { return h.RestDayPay.Hours() }
func (h HourBreakdown) PaidHours() float64          { return h.Paid.Hours() }

// Add 按分量累加两个工时拆分，用于月度/周度汇总。
func (h HourBreakdown) Add(o HourBreakdown) HourBreakdown {
	return HourBreakdown{
		Gross:         h.Gross + o.Gross,
		Lunch:         h.Lunch + o.Lunch,
		Normal:        h.Normal + o.Normal,
		Overtime:      h.Overtime + o.Overtime,
		PublicHoliday: h.PublicHoliday + o.PublicHoliday,
		RestDayPay:    h.RestDayPay + o.RestDayPay,
		Paid:          h.Paid + o.Paid,
	}
}

// Assignment 把一名员工绑定到某日期/某班次，并携带该次指派的工时拆分
// （规范 §3 Assignment 实体）。
type Assignment struct {
	AssignmentID  string           `json:"assignment_id"`
	SlotID        string           `json:"slot_id,omitempty"`
	RequirementID string           `json:"requirement_id,omitempty"`
	EmployeeID    string           `json:"employee_id"`
	Date          Date             `json:"date"`
	ShiftCode     string           `json:"shift_code"`
	Start         time.Time        `json:"start,omitempty"`
	End           time.Time        `json:"end,omitempty"`
	Status        AssignmentStatus `json:"status"`
	Hours         HourBreakdown    `json:"hours"`
	Locked        bool             `json:"locked,omitempty"`
}

// IsWorking 报告该指派是否代表实际上班（相对 OFF_DAY/UNASSIGNED）。
func (a Assignment) IsWorking() bool {
	return a.Status == StatusAssigned
}
