// Package slotbuilder 把每条激活需求展开为覆盖整个规划周期的具体 Slot
// 记录：需求 × 日历日期 × 班次代码 × 位置索引（outcome-based 定位模式）。
package slotbuilder

import (
	"fmt"
	"sort"

	"github.com/paiban/engine/pkg/model"
)

// Build 展开 problem 中全部需求项的槽位，写入给定 Arena 并返回按
// (date, requirement_id, shift_code, position) 排序的槽位句柄，保证
// 同一输入产生确定、稳定的槽位顺序。
func Build(arena *model.Arena, problem model.Problem) ([]model.SlotIdx, error) {
	var handles []model.SlotIdx

	for _, ref := range problem.AllRequirements() {
		req := ref.Requirement
		reqHandles, err := buildForRequirement(arena, problem, ref.Demand, *req)
		if err != nil {
			return nil, err
		}
		handles = append(handles, reqHandles...)
	}

	sort.Slice(handles, func(i, j int) bool {
		si, sj := arena.Slot(handles[i]), arena.Slot(handles[j])
		if !si.Date.Equal(sj.Date) {
			return si.Date.Before(sj.Date)
		}
		if si.RequirementID != sj.RequirementID {
			return si.RequirementID < sj.RequirementID
		}
		if si.ShiftCode != sj.ShiftCode {
			return si.ShiftCode < sj.ShiftCode
		}
		return si.Position < sj.Position
	})
	return handles, nil
}

func buildForRequirement(arena *model.Arena, problem model.Problem, demand model.DemandItem, req model.Requirement) ([]model.SlotIdx, error) {
	var out []model.SlotIdx
	positional := demand.RosteringBasis == model.RosteringOutcomeBased

	headcount := req.Headcount
	if headcount <= 0 {
		headcount = 1
	}

	for _, date := range problem.PlanningHorizon.Days() {
		if !req.CoversDay(date.Weekday()) {
			continue
		}

		daysSinceAnchor := date.DaysSince(req.CoverageAnchor)

		for position := 0; position < headcount; position++ {
			offset := position % max(req.WorkPattern.Length(), 1)

			if positional {
				code := req.WorkPattern.CodeAt(daysSinceAnchor, offset)
				if code == "O" {
					continue // 休息位置不产生待填补槽位
				}
				slot, err := newSlot(arena, problem, demand.DemandID, req, date, code, position, daysSinceAnchor, offset)
				if err != nil {
					return nil, err
				}
				out = append(out, slot)
				continue
			}

			// demand-based：无论循环班表如何，每个覆盖日均按 headcount 产生槽位；
			// 班表只影响后续谁可以被指派，这里对每个接受的班次代码各生成一份。
			codes := req.ShiftCodes
			if len(codes) == 0 {
				codes = []string{""}
			}
			for _, code := range codes {
				slot, err := newSlot(arena, problem, demand.DemandID, req, date, code, position, daysSinceAnchor, offset)
				if err != nil {
					return nil, err
				}
				out = append(out, slot)
			}
		}
	}
	return out, nil
}

func newSlot(arena *model.Arena, problem model.Problem, demandID string, req model.Requirement, date model.Date, shiftCode string, position, patternDay, offset int) (model.SlotIdx, error) {
	start, end := date.Time(), date.Time()
	if shiftCode != "" {
		shift, ok := problem.ShiftByCode(shiftCode)
		if !ok {
			return model.NoSlot, fmt.Errorf("未知班次代码 %q（需求 %s）", shiftCode, req.RequirementID)
		}
		start, end = shift.Window(date)
	}

	slotID := fmt.Sprintf("%s_%s_%s_%d", req.RequirementID, date.String(), shiftCode, position)

	slot := model.Slot{
		SlotID:                slotID,
		DemandID:              demandID,
		RequirementID:         req.RequirementID,
		Date:                  date,
		ShiftCode:             shiftCode,
		Start:                 start,
		End:                   end,
		RankIDs:               req.RankIDs,
		Gender:                req.Gender,
		Schemes:               req.Schemes,
		QualificationGroups:   req.QualificationGroups,
		Whitelist:             req.Whitelist,
		Blacklist:             req.Blacklist,
		Position:              position,
		PatternDay:            patternDay,
		RotationOffsetForSlot: offset,
		EnableAPGDD10:         req.EnableAPGDD10,
	}
	return arena.AddSlot(slot), nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
