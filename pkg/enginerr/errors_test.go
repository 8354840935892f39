package enginerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorString(t *testing.T) {
	e := New(KindInvalidInput, "排班周期不能为空")
	if got := e.Error(); got != "[INVALID_INPUT] 排班周期不能为空" {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Wrap(fmt.Errorf("底层故障"), KindInternalError, "求解器崩溃")
	if got := wrapped.Error(); got != "[INTERNAL_ERROR] 求解器崩溃: 底层故障" {
		t.Errorf("Error() = %q", got)
	}
}

func TestError_UnwrapAndIs(t *testing.T) {
	cause := errors.New("连接超时")
	e := Wrap(cause, KindTimeLimitExceeded, "求解超时")

	if !errors.Is(e, cause) {
		t.Error("应能通过 errors.Is 追溯到底层原因")
	}
	if !Is(e, KindTimeLimitExceeded) {
		t.Error("Is() 应识别出 KindTimeLimitExceeded")
	}
	if Is(e, KindCancelled) {
		t.Error("Is() 不应误判为其他类别")
	}
}

func TestGetKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"分类错误", New(KindInfeasible, "无可行解"), KindInfeasible},
		{"普通错误归为内部错误", errors.New("未分类"), KindInternalError},
		{"nil 错误归为内部错误", nil, KindInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetKind(tt.err); got != tt.want {
				t.Errorf("GetKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestError_WithFieldAndDetails(t *testing.T) {
	e := InvalidInput("planning_horizon", "结束日期早于开始日期").
		WithDetails("来自 ICPMP 预处理阶段").
		WithField("requirement_id", "REQ-001")

	if e.Details != "来自 ICPMP 预处理阶段" {
		t.Errorf("Details = %q", e.Details)
	}
	if e.Fields["requirement_id"] != "REQ-001" {
		t.Errorf("Fields[requirement_id] = %v", e.Fields["requirement_id"])
	}
}
