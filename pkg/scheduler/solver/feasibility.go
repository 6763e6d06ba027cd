// Package solver 提供初始排班的可行性构造
package solver

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// Result 可行性构造结果
type Result struct {
	Assignments []*model.Assignment          `json:"assignments"`
	Shortages   []model.StaffingShortageInfo `json:"shortages"`
	Duration    time.Duration                `json:"duration"`
}

// FeasibilityPass 可行性构造器
// 按硬约束优先级贪心填充初始网格；最低人力无法满足时记录缺口而不是中止
type FeasibilityPass struct {
	catalog *constraint.Catalog
}

// New 创建可行性构造器
func New(cat *constraint.Catalog) *FeasibilityPass {
	return &FeasibilityPass{catalog: cat}
}

// Solve 构造初始排班网格
func (s *FeasibilityPass) Solve(ctx context.Context, schedCtx *constraint.Context, scheduleID uuid.UUID) (*Result, error) {
	start := time.Now()
	input := schedCtx.Input
	log := logger.NewEngineLogger(input.DeptID.String())

	result := &Result{}

	// 特殊请求优先落位
	s.applySpecialRequests(schedCtx, scheduleID)

	// 逐日逐班贪心填充
	for _, date := range input.Range.Days() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		for _, shift := range input.WorkingShifts() {
			required := input.RequiredStaffPerShift[shift.Code]
			if required == 0 {
				continue
			}

			assigned := schedCtx.AssignedCount(date, shift.Code)
			for _, emp := range s.candidates(schedCtx, date, shift) {
				if assigned >= required {
					break
				}
				a := newAssignment(scheduleID, emp.ID, shift.ID, date)
				if ok, _ := s.catalog.CanAssign(schedCtx, a); !ok {
					continue
				}
				schedCtx.AddAssignment(a)
				assigned++
			}

			if assigned < required {
				log.StaffingShortage(date, shift.Code, required, assigned)
				result.Shortages = append(result.Shortages, model.StaffingShortageInfo{
					Date:      date,
					ShiftCode: shift.Code,
					Required:  required,
					Assigned:  assigned,
					Shortage:  required - assigned,
				})
			}
		}
	}

	// 剩余单元格补休班
	s.fillOffDays(schedCtx, scheduleID)

	result.Assignments = schedCtx.Assignments
	result.Duration = time.Since(start)
	return result, nil
}

// applySpecialRequests 将特殊请求直接写入网格
// 请求的班次仍需通过硬约束检查，冲突的请求会被跳过并留给诊断
func (s *FeasibilityPass) applySpecialRequests(schedCtx *constraint.Context, scheduleID uuid.UUID) {
	for _, req := range schedCtx.Input.SpecialRequests {
		code := req.ShiftCode
		if code == "" {
			code = "O"
		}
		shift := schedCtx.Input.ShiftByCode(code)
		if shift == nil {
			shift = schedCtx.Input.OffShift()
		}
		if shift == nil {
			continue
		}

		a := newAssignment(scheduleID, req.EmployeeID, shift.ID, req.Date)
		if shift.IsOffDuty() {
			schedCtx.AddAssignment(a)
			continue
		}
		if ok, _ := s.catalog.CanAssign(schedCtx, a); ok {
			schedCtx.AddAssignment(a)
		}
	}
}

// candidates 返回按公平性排序的候选员工
// 已分配班次少的在前，并列时保持输入顺序（固定种子下结果确定）
func (s *FeasibilityPass) candidates(schedCtx *constraint.Context, date string, shift *model.Shift) []*model.Employee {
	input := schedCtx.Input
	weekend := model.IsWeekend(date) || input.Holidays[date]

	type ranked struct {
		emp   *model.Employee
		load  int
		bonus int
	}

	var pool []ranked
	for _, emp := range input.Employees {
		if !emp.IsActive() {
			continue
		}
		if emp.Pattern == model.PatternWeekdayOnly && weekend {
			continue
		}

		// 夜班集中制员工优先排大夜，其余班次靠后
		bonus := 0
		if emp.Pattern == model.PatternNightIntensive {
			if shift.IsNight() {
				bonus = -1
			} else {
				bonus = 1
			}
		}

		pool = append(pool, ranked{
			emp:   emp,
			load:  len(schedCtx.WorkingDates(emp.ID)),
			bonus: bonus,
		})
	}

	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].bonus != pool[j].bonus {
			return pool[i].bonus < pool[j].bonus
		}
		return pool[i].load < pool[j].load
	})

	out := make([]*model.Employee, len(pool))
	for i, r := range pool {
		out[i] = r.emp
	}
	return out
}

// fillOffDays 把没有分配的 (员工, 日期) 单元格补成休班
func (s *FeasibilityPass) fillOffDays(schedCtx *constraint.Context, scheduleID uuid.UUID) {
	off := schedCtx.Input.OffShift()
	if off == nil {
		return
	}
	for _, emp := range schedCtx.Input.Employees {
		for _, date := range schedCtx.Input.Range.Days() {
			if len(schedCtx.CellAssignments(emp.ID, date)) == 0 {
				schedCtx.AddAssignment(newAssignment(scheduleID, emp.ID, off.ID, date))
			}
		}
	}
}

func newAssignment(scheduleID, empID, shiftID uuid.UUID, date string) *model.Assignment {
	return &model.Assignment{
		BaseModel:  model.NewBaseModel(),
		ScheduleID: scheduleID,
		EmployeeID: empID,
		ShiftID:    shiftID,
		Date:       date,
	}
}
