// Package accrual 跟踪员工的保障休假与实际休假结余
package accrual

import (
	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
)

// Tracker 休假结余跟踪器
// 上一周期的结转先作为起点，再叠加本周期的实际休假
type Tracker struct {
	previous map[uuid.UUID]int
}

// NewTracker 创建跟踪器
func NewTracker(previous map[uuid.UUID]int) *Tracker {
	if previous == nil {
		previous = make(map[uuid.UUID]int)
	}
	return &Tracker{previous: previous}
}

// CarriedOver 返回员工的上期结转
func (t *Tracker) CarriedOver(empID uuid.UUID) int {
	return t.previous[empID]
}

// Summarize 汇总一个周期内每员工的休假结余
func (t *Tracker) Summarize(assignments []*model.Assignment, employees []*model.Employee, shifts []*model.Shift) []model.OffAccrualSummary {
	shiftByID := make(map[uuid.UUID]*model.Shift, len(shifts))
	for _, s := range shifts {
		shiftByID[s.ID] = s
	}

	actual := make(map[uuid.UUID]int, len(employees))
	for _, a := range assignments {
		if s := shiftByID[a.ShiftID]; s != nil && s.IsOffDuty() {
			actual[a.EmployeeID]++
		}
	}

	summaries := make([]model.OffAccrualSummary, 0, len(employees))
	for _, emp := range employees {
		got := actual[emp.ID]
		extra := got - emp.GuaranteedOffDays
		if extra < 0 {
			extra = 0
		}
		carried := t.previous[emp.ID]
		summaries = append(summaries, model.OffAccrualSummary{
			EmployeeID:        emp.ID,
			GuaranteedOffDays: emp.GuaranteedOffDays,
			ActualOffDays:     got,
			ExtraOffDays:      extra,
			CarriedOver:       carried,
			Balance:           carried + got - emp.GuaranteedOffDays,
		})
	}
	return summaries
}

// NextPeriodBalances 把本周期结果转换为下一周期的结转映射
func NextPeriodBalances(summaries []model.OffAccrualSummary) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(summaries))
	for _, s := range summaries {
		out[s.EmployeeID] = s.Balance
	}
	return out
}
