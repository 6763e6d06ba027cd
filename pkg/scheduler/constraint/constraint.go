// Package constraint 定义约束接口、求解上下文和约束目录
package constraint

import (
	"sort"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
)

// Constraint 约束接口
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() model.ConstraintType

	// Kind 返回约束种类（硬/软）
	Kind() model.ConstraintKind

	// Weight 返回约束权重 [0,1]，硬约束恒为 1
	Weight() float64

	// Evaluate 评估整个排班方案，返回违反记录（Cost 已含权重）
	Evaluate(ctx *Context) []model.ConstraintViolation

	// EvaluateAssignment 评估加入单个分配后是否满足、惩罚值
	EvaluateAssignment(ctx *Context, a *model.Assignment) (valid bool, penalty float64)
}

// Context 求解上下文（输入数据 + 当前排班结果 + 索引缓存）
type Context struct {
	Input       *normalizer.Normalized
	Assignments []*model.Assignment

	byEmp   map[uuid.UUID][]*model.Assignment
	byCell  map[string][]*model.Assignment
	empByID map[uuid.UUID]*model.Employee
	shiftBy map[uuid.UUID]*model.Shift
}

// NewContext 创建求解上下文
func NewContext(input *normalizer.Normalized) *Context {
	c := &Context{
		Input:   input,
		byEmp:   make(map[uuid.UUID][]*model.Assignment),
		byCell:  make(map[string][]*model.Assignment),
		empByID: make(map[uuid.UUID]*model.Employee, len(input.Employees)),
		shiftBy: make(map[uuid.UUID]*model.Shift, len(input.Shifts)),
	}
	for _, e := range input.Employees {
		c.empByID[e.ID] = e
	}
	for _, s := range input.Shifts {
		c.shiftBy[s.ID] = s
	}
	return c
}

// SetAssignments 替换排班结果并重建索引
func (c *Context) SetAssignments(assignments []*model.Assignment) {
	c.Assignments = assignments
	c.byEmp = make(map[uuid.UUID][]*model.Assignment)
	c.byCell = make(map[string][]*model.Assignment)
	for _, a := range assignments {
		c.index(a)
	}
}

// AddAssignment 添加一条分配
func (c *Context) AddAssignment(a *model.Assignment) {
	c.Assignments = append(c.Assignments, a)
	c.index(a)
}

func (c *Context) index(a *model.Assignment) {
	c.byEmp[a.EmployeeID] = append(c.byEmp[a.EmployeeID], a)
	c.byCell[a.CellKey()] = append(c.byCell[a.CellKey()], a)
}

// Employee 按 ID 查找员工
func (c *Context) Employee(id uuid.UUID) *model.Employee {
	return c.empByID[id]
}

// Shift 按 ID 查找班次
func (c *Context) Shift(id uuid.UUID) *model.Shift {
	return c.shiftBy[id]
}

// EmployeeAssignments 返回员工的全部分配
func (c *Context) EmployeeAssignments(empID uuid.UUID) []*model.Assignment {
	return c.byEmp[empID]
}

// CellAssignments 返回某 (员工, 日期) 单元格的分配
func (c *Context) CellAssignments(empID uuid.UUID, date string) []*model.Assignment {
	return c.byCell[empID.String()+"@"+date]
}

// ShiftCodeAt 返回员工某日的班次代码（无分配时返回空串）
func (c *Context) ShiftCodeAt(empID uuid.UUID, date string) string {
	for _, a := range c.CellAssignments(empID, date) {
		if s := c.Shift(a.ShiftID); s != nil {
			return s.Code
		}
	}
	return ""
}

// WorkingDates 返回员工的工作日期（排除休班，升序）
func (c *Context) WorkingDates(empID uuid.UUID) []string {
	var dates []string
	for _, a := range c.byEmp[empID] {
		s := c.Shift(a.ShiftID)
		if s == nil || s.IsOffDuty() {
			continue
		}
		dates = append(dates, a.Date)
	}
	sort.Strings(dates)
	return dates
}

// NightDates 返回员工的大夜班日期（升序）
func (c *Context) NightDates(empID uuid.UUID) []string {
	var dates []string
	for _, a := range c.byEmp[empID] {
		s := c.Shift(a.ShiftID)
		if s == nil || !s.IsNight() {
			continue
		}
		dates = append(dates, a.Date)
	}
	sort.Strings(dates)
	return dates
}

// WeeklyHours 返回员工按 ISO 周聚合的工时
func (c *Context) WeeklyHours(empID uuid.UUID) map[string]float64 {
	weeks := make(map[string]float64)
	for _, a := range c.byEmp[empID] {
		s := c.Shift(a.ShiftID)
		if s == nil || s.IsOffDuty() {
			continue
		}
		weeks[model.ISOWeek(a.Date)] += s.DurationHours()
	}
	return weeks
}

// AssignedCount 返回某日某班次的已分配人数
func (c *Context) AssignedCount(date, shiftCode string) int {
	count := 0
	for _, a := range c.Assignments {
		if a.Date != date {
			continue
		}
		if s := c.Shift(a.ShiftID); s != nil && s.Code == shiftCode {
			count++
		}
	}
	return count
}

// MaxConsecutiveRun 返回升序日期集合中最长的连续日期段长度
func MaxConsecutiveRun(dates []string) int {
	maxRun, run := 0, 0
	prev := ""
	for _, d := range dates {
		if prev != "" && model.NextDate(prev) == d {
			run++
		} else {
			run = 1
		}
		if run > maxRun {
			maxRun = run
		}
		prev = d
	}
	return maxRun
}
