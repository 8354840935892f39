package constraint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/paiban/engine/pkg/logger"
	"github.com/paiban/engine/pkg/model"
)

// Manager 持有一组已注册约束，并按硬约束优先、权重降序的顺序评估。
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
	logger      *logger.ComponentLogger
}

// NewManager 创建约束管理器。
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
		logger:      logger.NewComponentLogger("constraint_manager"),
	}
}

// Register 注册一个约束模块；同 ID 已存在时替换。
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.constraints {
		if existing.ID() == c.ID() {
			m.constraints[i] = c
			return
		}
	}

	m.constraints = append(m.constraints, c)

	sort.Slice(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Weight() > cj.Weight()
	})
}

// GetAll 返回已注册约束的副本。
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Constraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}

// GetByCategory 返回指定类别的约束集合。
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			out = append(out, c)
		}
	}
	return out
}

// GetByID 返回指定 ID 的约束（若已注册）。
func (m *Manager) GetByID(id ID) (Constraint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.constraints {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Clear 移除全部已注册约束。
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = m.constraints[:0]
}

// CanAssign 只检查硬约束，供求解器做短路候选过滤。
func (m *Manager) CanAssign(ctx *Context, slot model.SlotIdx, emp model.EmpIdx) (bool, string) {
	m.mu.RLock()
	constraints := make([]Constraint, len(m.constraints))
	copy(constraints, m.constraints)
	m.mu.RUnlock()

	for _, c := range constraints {
		if c.Category() != CategoryHard {
			continue
		}
		if ok, reason := c.CanAssign(ctx, slot, emp); !ok {
			return false, fmt.Sprintf("违反硬约束 %s: %s", c.ID(), reason)
		}
	}
	return true, ""
}

// Evaluate 对当前解整体评估所有约束。
func (m *Manager) Evaluate(ctx *Context) *Result {
	m.mu.RLock()
	constraints := make([]Constraint, len(m.constraints))
	copy(constraints, m.constraints)
	m.mu.RUnlock()

	result := &Result{IsValid: true}
	maxPenalty := 0

	for _, c := range constraints {
		valid, penalty, details := c.Evaluate(ctx)
		maxPenalty += c.Weight() * 100

		if !valid {
			result.TotalPenalty += penalty
			for _, d := range details {
				if c.Category() == CategoryHard {
					result.IsValid = false
					result.HardViolations = append(result.HardViolations, d)
					m.logger.ConstraintViolation(string(c.ID()), d.Message)
				} else {
					result.SoftViolations = append(result.SoftViolations, d)
				}
			}
		}
	}

	result.CalculateScore(maxPenalty)
	return result
}

// Count 返回已注册约束数量。
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}

// Summary 返回硬/软约束计数摘要。
func (m *Manager) Summary() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	hard, soft := 0, 0
	for _, c := range m.constraints {
		if c.Category() == CategoryHard {
			hard++
		} else {
			soft++
		}
	}
	return map[string]interface{}{"total": len(m.constraints), "hard": hard, "soft": soft, "detail": fmt.Sprintf("%d hard / %d soft", hard, soft)}
}
