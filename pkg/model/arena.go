package model

// SlotIdx、EmpIdx、ReqIdx 是单次 solve() 调用内的稳定整数句柄，用于取代
// 跨引用结构（Assignment→Slot→Requirement→DemandItem）中的指针或 UUID 查找，
// 参见规范设计说明中的 arena/slab 模式。句柄只在一次 solve 调用的生命周期内
// 有效；Result 对外仍以字符串 ID 呈现。
type (
	SlotIdx int32
	EmpIdx  int32
	ReqIdx  int32
)

// NoSlot、NoEmp、NoReq 是“无句柄”哨兵值。
const (
	NoSlot SlotIdx = -1
	NoEmp  EmpIdx  = -1
	NoReq  ReqIdx  = -1
)

// Arena 持有一次 solve 调用内所有槽位/员工/需求的切片存储，并维护
// 字符串 ID 到句柄的反向索引，供 Slot Builder 和 Constraint Model 在
// 文档边界与内部句柄之间转换。
type Arena struct {
	Slots        []Slot
	Employees    []Employee
	Requirements []Requirement

	slotByID requirementIndex
	empByID  requirementIndex
	reqByID  requirementIndex
}

// requirementIndex 是一个保序的字符串到下标映射；规范要求需求/部门迭代顺序
// 必须确定，因此用切片+map 而不是单纯依赖 map 的随机遍历顺序。
type requirementIndex struct {
	order []string
	idx   map[string]int
}

func newRequirementIndex() requirementIndex {
	return requirementIndex{idx: make(map[string]int)}
}

func (r *requirementIndex) put(id string, pos int) {
	if _, exists := r.idx[id]; !exists {
		r.order = append(r.order, id)
	}
	r.idx[id] = pos
}

func (r *requirementIndex) get(id string) (int, bool) {
	pos, ok := r.idx[id]
	return pos, ok
}

// NewArena 构造一个空 Arena。
func NewArena() *Arena {
	return &Arena{
		slotByID: newRequirementIndex(),
		empByID:  newRequirementIndex(),
		reqByID:  newRequirementIndex(),
	}
}

// AddEmployee 登记一名员工，返回其句柄。
func (a *Arena) AddEmployee(e Employee) EmpIdx {
	idx := EmpIdx(len(a.Employees))
	a.Employees = append(a.Employees, e)
	a.empByID.put(e.EmployeeID, int(idx))
	return idx
}

// AddRequirement 登记一条需求，返回其句柄。
func (a *Arena) AddRequirement(r Requirement) ReqIdx {
	idx := ReqIdx(len(a.Requirements))
	a.Requirements = append(a.Requirements, r)
	a.reqByID.put(r.RequirementID, int(idx))
	return idx
}

// AddSlot 登记一个槽位，返回其句柄。
func (a *Arena) AddSlot(s Slot) SlotIdx {
	idx := SlotIdx(len(a.Slots))
	a.Slots = append(a.Slots, s)
	a.slotByID.put(s.SlotID, int(idx))
	return idx
}

// EmployeeHandle 按 employee_id 查找句柄。
func (a *Arena) EmployeeHandle(id string) (EmpIdx, bool) {
	pos, ok := a.empByID.get(id)
	if !ok {
		return NoEmp, false
	}
	return EmpIdx(pos), true
}

// RequirementHandle 按 requirement_id 查找句柄。
func (a *Arena) RequirementHandle(id string) (ReqIdx, bool) {
	pos, ok := a.reqByID.get(id)
	if !ok {
		return NoReq, false
	}
	return ReqIdx(pos), true
}

// Employee 按句柄取员工值的指针，便于原地修改（如锁定 offset）。
func (a *Arena) Employee(idx EmpIdx) *Employee { return &a.Employees[idx] }

// Requirement 按句柄取需求值的指针。
func (a *Arena) Requirement(idx ReqIdx) *Requirement { return &a.Requirements[idx] }

// Slot 按句柄取槽位值的指针。
func (a *Arena) Slot(idx SlotIdx) *Slot { return &a.Slots[idx] }
