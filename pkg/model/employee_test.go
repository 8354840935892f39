package model

import "testing"

func TestQualification_ValidOn(t *testing.T) {
	q := Qualification{Code: "CPR", ValidFrom: MustDate("2026-01-01"), Expiry: MustDate("2026-06-30")}

	tests := []struct {
		name     string
		on       Date
		expected bool
	}{
		{"有效期内", MustDate("2026-03-01"), true},
		{"生效前", MustDate("2025-12-31"), false},
		{"过期后", MustDate("2026-07-01"), false},
		{"边界-生效日", MustDate("2026-01-01"), true},
		{"边界-到期日", MustDate("2026-06-30"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := q.ValidOn(tt.on); got != tt.expected {
				t.Errorf("ValidOn() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEmployee_HasQualification(t *testing.T) {
	e := &Employee{Qualifications: []Qualification{
		{Code: "CPR", ValidFrom: MustDate("2026-01-01"), Expiry: MustDate("2026-06-30")},
	}}

	if !e.HasQualification("CPR", MustDate("2026-03-01")) {
		t.Error("有效资质应返回 true")
	}
	if e.HasQualification("CPR", MustDate("2026-07-01")) {
		t.Error("已过期资质应返回 false")
	}
	if e.HasQualification("FIRST_AID", MustDate("2026-03-01")) {
		t.Error("不持有的资质应返回 false")
	}
}

func TestEmployee_SatisfiesGroup(t *testing.T) {
	e := &Employee{Qualifications: []Qualification{
		{Code: "A"},
		{Code: "B"},
	}}
	on := MustDate("2026-01-11")

	tests := []struct {
		name     string
		group    QualificationGroup
		expected bool
	}{
		{"空组总是满足", QualificationGroup{}, true},
		{"ALL全部持有", QualificationGroup{MatchType: MatchAll, QualificationCodes: []string{"A", "B"}}, true},
		{"ALL缺一项", QualificationGroup{MatchType: MatchAll, QualificationCodes: []string{"A", "C"}}, false},
		{"ANY至少一项", QualificationGroup{MatchType: MatchAny, QualificationCodes: []string{"C", "B"}}, true},
		{"ANY全不持有", QualificationGroup{MatchType: MatchAny, QualificationCodes: []string{"C", "D"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.SatisfiesGroup(tt.group, on); got != tt.expected {
				t.Errorf("SatisfiesGroup() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEmployee_IsUnavailableOn(t *testing.T) {
	e := &Employee{
		Unavailable: []DateRange{{Start: MustDate("2026-01-10"), End: MustDate("2026-01-12")}},
		Leaves:      []LeaveRecord{{Range: DateRange{Start: MustDate("2026-02-01"), End: MustDate("2026-02-05")}}},
	}

	tests := []struct {
		name     string
		date     Date
		expected bool
	}{
		{"不可用区间内", MustDate("2026-01-11"), true},
		{"休假区间内", MustDate("2026-02-03"), true},
		{"正常日期", MustDate("2026-03-01"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.IsUnavailableOn(tt.date); got != tt.expected {
				t.Errorf("IsUnavailableOn() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEmployee_CategoryForC19(t *testing.T) {
	tests := []struct {
		name     string
		emp      Employee
		expected string
	}{
		{"外籍下士", Employee{IsForeign: true, Rank: "CPL"}, "foreign_cpl_sgt"},
		{"外籍中士", Employee{IsForeign: true, Rank: "SGT"}, "foreign_cpl_sgt"},
		{"外籍军官", Employee{IsForeign: true, Rank: "OFFICER"}, "standard"},
		{"本地下士", Employee{IsForeign: false, Rank: "CPL"}, "standard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.emp.CategoryForC19(); got != tt.expected {
				t.Errorf("CategoryForC19() = %v, want %v", got, tt.expected)
			}
		})
	}
}
