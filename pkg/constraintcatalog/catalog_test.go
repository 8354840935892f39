package constraintcatalog

import (
	"testing"

	"github.com/paiban/engine/pkg/constraint"
)

func TestCatalog_CoversEveryBuiltinID(t *testing.T) {
	want := []constraint.ID{
		constraint.IDMaxHoursPerDay, constraint.IDWeeklyHourCap, constraint.IDConsecutiveDaysCap,
		constraint.IDMinRestBetweenShifts, constraint.IDPatternAdherence, constraint.IDHeadcountCoverage,
		constraint.IDGenderMatch, constraint.IDAPGDD10Override, constraint.IDQualification,
		constraint.IDRotationOffset, constraint.IDAvailability, constraint.IDStrictAdherence,
	}
	for _, id := range want {
		if _, ok := ByID(id); !ok {
			t.Errorf("目录缺少约束 %s 的模板", id)
		}
	}
	if len(Catalog) != len(want) {
		t.Errorf("len(Catalog) = %d, want %d", len(Catalog), len(want))
	}
}

func TestByID_UnknownReturnsFalse(t *testing.T) {
	if _, ok := ByID("NOT_A_REAL_ID"); ok {
		t.Error("未知 id 不应命中目录")
	}
}
