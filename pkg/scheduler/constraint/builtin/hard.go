// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// SingleAssignmentConstraint 每员工每日至多一个班次
type SingleAssignmentConstraint struct {
	*BaseConstraint
}

// NewSingleAssignmentConstraint 创建单班次约束
func NewSingleAssignmentConstraint() *SingleAssignmentConstraint {
	return &SingleAssignmentConstraint{
		BaseConstraint: NewBaseConstraint("每日单班次", model.TypeSingleAssignment, model.ConstraintHard, 1.0),
	}
}

// Evaluate 评估整个排班
func (c *SingleAssignmentConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		seen := make(map[string]int)
		for _, a := range ctx.EmployeeAssignments(emp.ID) {
			seen[a.Date]++
		}
		for _, date := range sortedKeys(seen) {
			if count := seen[date]; count > 1 {
				violations = append(violations, c.violation(
					model.SeverityCritical,
					[]uuid.UUID{emp.ID}, []string{date},
					fmt.Sprintf("员工 %s 在 %s 被分配了 %d 个班次", emp.Name, date, count),
					hardUnitPenalty*float64(count-1),
				))
			}
		}
	}
	return violations
}

// EvaluateAssignment 评估单个分配
func (c *SingleAssignmentConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) (bool, float64) {
	existing := ctx.CellAssignments(a.EmployeeID, a.Date)
	for _, e := range existing {
		if e.ID != a.ID {
			return false, hardUnitPenalty
		}
	}
	return true, 0
}

// MinRestConstraint 班次间最小休息时间约束
type MinRestConstraint struct {
	*BaseConstraint
	minHours int
}

// NewMinRestConstraint 创建最小休息约束
func NewMinRestConstraint(minHours int) *MinRestConstraint {
	if minHours <= 0 {
		minHours = 11
	}
	return &MinRestConstraint{
		BaseConstraint: NewBaseConstraint("班次间最小休息", model.TypeMinRest, model.ConstraintHard, 1.0),
		minHours:       minHours,
	}
}

// Evaluate 评估整个排班
func (c *MinRestConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		for _, date := range ctx.Input.Range.Days() {
			next := model.NextDate(date)
			prevShift := workingShiftAt(ctx, emp.ID, date)
			nextShift := workingShiftAt(ctx, emp.ID, next)
			if prevShift == nil || nextShift == nil {
				continue
			}
			rest := restHoursBetween(prevShift, nextShift)
			if rest < float64(c.minHours) {
				violations = append(violations, c.violation(
					model.SeverityHigh,
					[]uuid.UUID{emp.ID}, []string{date, next},
					fmt.Sprintf("员工 %s 班次间隔仅 %.1f 小时，少于要求的 %d 小时", emp.Name, rest, c.minHours),
					hardUnitPenalty*(float64(c.minHours)-rest)/float64(c.minHours),
				))
			}
		}
	}
	return violations
}

// EvaluateAssignment 评估单个分配
func (c *MinRestConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) (bool, float64) {
	shift := ctx.Shift(a.ShiftID)
	if shift == nil || shift.IsOffDuty() {
		return true, 0
	}

	if prev := workingShiftAt(ctx, a.EmployeeID, model.PrevDate(a.Date)); prev != nil {
		if restHoursBetween(prev, shift) < float64(c.minHours) {
			return false, hardUnitPenalty
		}
	}
	if next := workingShiftAt(ctx, a.EmployeeID, model.NextDate(a.Date)); next != nil {
		if restHoursBetween(shift, next) < float64(c.minHours) {
			return false, hardUnitPenalty
		}
	}
	return true, 0
}

// sortedKeys 返回按字典序排序的键列表，保证违规输出顺序稳定
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// workingShiftAt 返回员工某日的工作班次（休班返回 nil）
func workingShiftAt(ctx *constraint.Context, empID uuid.UUID, date string) *model.Shift {
	for _, a := range ctx.CellAssignments(empID, date) {
		s := ctx.Shift(a.ShiftID)
		if s != nil && !s.IsOffDuty() {
			return s
		}
	}
	return nil
}

// ForbiddenSequenceConstraint 禁止的班次接续约束（如大夜接白班）
type ForbiddenSequenceConstraint struct {
	*BaseConstraint
	sequences []string // 两字符代码对，如 "ND"
}

// NewForbiddenSequenceConstraint 创建禁止接续约束
func NewForbiddenSequenceConstraint(sequences []string) *ForbiddenSequenceConstraint {
	return &ForbiddenSequenceConstraint{
		BaseConstraint: NewBaseConstraint("禁止班次接续", model.TypeForbiddenSequence, model.ConstraintHard, 1.0),
		sequences:      sequences,
	}
}

// Evaluate 评估整个排班
func (c *ForbiddenSequenceConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		for _, date := range ctx.Input.Range.Days() {
			next := model.NextDate(date)
			pair := ctx.ShiftCodeAt(emp.ID, date) + ctx.ShiftCodeAt(emp.ID, next)
			if c.forbidden(pair) {
				violations = append(violations, c.violation(
					model.SeverityHigh,
					[]uuid.UUID{emp.ID}, []string{date, next},
					fmt.Sprintf("员工 %s 出现禁止接续 %s（%s -> %s）", emp.Name, pair, date, next),
					hardUnitPenalty,
				))
			}
		}
	}
	return violations
}

// EvaluateAssignment 评估单个分配
func (c *ForbiddenSequenceConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) (bool, float64) {
	shift := ctx.Shift(a.ShiftID)
	if shift == nil {
		return true, 0
	}
	prevCode := ctx.ShiftCodeAt(a.EmployeeID, model.PrevDate(a.Date))
	nextCode := ctx.ShiftCodeAt(a.EmployeeID, model.NextDate(a.Date))
	if c.forbidden(prevCode+shift.Code) || c.forbidden(shift.Code+nextCode) {
		return false, hardUnitPenalty
	}
	return true, 0
}

func (c *ForbiddenSequenceConstraint) forbidden(pair string) bool {
	if len(pair) < 2 {
		return false
	}
	for _, seq := range c.sequences {
		if strings.EqualFold(seq, pair) {
			return true
		}
	}
	return false
}

// MaxConsecutiveConstraint 最大连续工作天数/夜班数约束
// 参数为零时回退到员工自身的连续上限
type MaxConsecutiveConstraint struct {
	*BaseConstraint
	maxDays   int
	maxNights int
}

// NewMaxConsecutiveConstraint 创建连续工作上限约束
func NewMaxConsecutiveConstraint(maxDays, maxNights int) *MaxConsecutiveConstraint {
	return &MaxConsecutiveConstraint{
		BaseConstraint: NewBaseConstraint("最大连续工作", model.TypeMaxConsecutiveWork, model.ConstraintHard, 1.0),
		maxDays:        maxDays,
		maxNights:      maxNights,
	}
}

func (c *MaxConsecutiveConstraint) limitsFor(emp *model.Employee) (days, nights int) {
	days, nights = c.maxDays, c.maxNights
	if days == 0 && emp != nil {
		days = emp.MaxConsecutiveDays
	}
	if nights == 0 && emp != nil {
		nights = emp.MaxConsecutiveNight
	}
	return days, nights
}

// Evaluate 评估整个排班
func (c *MaxConsecutiveConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		maxDays, maxNights := c.limitsFor(emp)

		if maxDays > 0 {
			if run := constraint.MaxConsecutiveRun(ctx.WorkingDates(emp.ID)); run > maxDays {
				violations = append(violations, c.violation(
					model.SeverityHigh,
					[]uuid.UUID{emp.ID}, nil,
					fmt.Sprintf("员工 %s 连续工作 %d 天，超过上限 %d 天", emp.Name, run, maxDays),
					hardUnitPenalty*float64(run-maxDays),
				))
			}
		}
		if maxNights > 0 {
			if run := constraint.MaxConsecutiveRun(ctx.NightDates(emp.ID)); run > maxNights {
				violations = append(violations, c.violation(
					model.SeverityHigh,
					[]uuid.UUID{emp.ID}, nil,
					fmt.Sprintf("员工 %s 连续大夜 %d 天，超过上限 %d 天", emp.Name, run, maxNights),
					hardUnitPenalty*float64(run-maxNights),
				))
			}
		}
	}
	return violations
}

// EvaluateAssignment 评估单个分配
func (c *MaxConsecutiveConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) (bool, float64) {
	shift := ctx.Shift(a.ShiftID)
	if shift == nil || shift.IsOffDuty() {
		return true, 0
	}
	emp := ctx.Employee(a.EmployeeID)
	maxDays, maxNights := c.limitsFor(emp)

	if maxDays > 0 {
		run := runAround(ctx, a.EmployeeID, a.Date, false) + 1
		if run > maxDays {
			return false, hardUnitPenalty
		}
	}
	if maxNights > 0 && shift.IsNight() {
		run := runAround(ctx, a.EmployeeID, a.Date, true) + 1
		if run > maxNights {
			return false, hardUnitPenalty
		}
	}
	return true, 0
}

// runAround 统计目标日期前后（不含当日）相邻的连续工作/夜班天数
func runAround(ctx *constraint.Context, empID uuid.UUID, date string, nightsOnly bool) int {
	matches := func(d string) bool {
		s := workingShiftAt(ctx, empID, d)
		if s == nil {
			return false
		}
		if nightsOnly {
			return s.IsNight()
		}
		return true
	}

	count := 0
	for d := model.PrevDate(date); matches(d) && count < 62; d = model.PrevDate(d) {
		count++
	}
	for d := model.NextDate(date); matches(d) && count < 62; d = model.NextDate(d) {
		count++
	}
	return count
}

// WeeklyHoursConstraint 周工时上限约束
type WeeklyHoursConstraint struct {
	*BaseConstraint
	maxHours float64
}

// NewWeeklyHoursConstraint 创建周工时上限约束
func NewWeeklyHoursConstraint(maxHours float64) *WeeklyHoursConstraint {
	if maxHours <= 0 {
		maxHours = 40
	}
	return &WeeklyHoursConstraint{
		BaseConstraint: NewBaseConstraint("周工时上限", model.TypeWeeklyHoursCap, model.ConstraintHard, 1.0),
		maxHours:       maxHours,
	}
}

// Evaluate 评估整个排班
func (c *WeeklyHoursConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		weekly := ctx.WeeklyHours(emp.ID)
		for _, week := range sortedKeys(weekly) {
			if hours := weekly[week]; hours > c.maxHours {
				violations = append(violations, c.violation(
					model.SeverityHigh,
					[]uuid.UUID{emp.ID}, nil,
					fmt.Sprintf("员工 %s 在 %s 工时 %.1f 小时，超过上限 %.1f 小时", emp.Name, week, hours, c.maxHours),
					hardUnitPenalty*(hours-c.maxHours)/c.maxHours,
				))
			}
		}
	}
	return violations
}

// EvaluateAssignment 评估单个分配
func (c *WeeklyHoursConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) (bool, float64) {
	shift := ctx.Shift(a.ShiftID)
	if shift == nil || shift.IsOffDuty() {
		return true, 0
	}
	week := model.ISOWeek(a.Date)
	if ctx.WeeklyHours(a.EmployeeID)[week]+shift.DurationHours() > c.maxHours {
		return false, hardUnitPenalty
	}
	return true, 0
}

// MinStaffingConstraint 每班人力区间与角色配比约束
// 缺口记为违规，超出 max_staff 同样记为违规并在单分配检查中直接拒绝；
// 生成阶段无法满足的缺口由求解器记录为诊断数据
type MinStaffingConstraint struct {
	*BaseConstraint
}

// NewMinStaffingConstraint 创建最低人力约束
func NewMinStaffingConstraint() *MinStaffingConstraint {
	return &MinStaffingConstraint{
		BaseConstraint: NewBaseConstraint("每班最低人力", model.TypeMinStaffing, model.ConstraintHard, 1.0),
	}
}

// Evaluate 评估整个排班
func (c *MinStaffingConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, date := range ctx.Input.Range.Days() {
		for _, code := range sortedKeys(ctx.Input.RequiredStaffPerShift) {
			required := ctx.Input.RequiredStaffPerShift[code]
			assigned := ctx.AssignedCount(date, code)
			if assigned < required {
				violations = append(violations, c.violation(
					model.SeverityCritical,
					nil, []string{date},
					fmt.Sprintf("%s 的 %s 班仅分配 %d 人，低于要求的 %d 人", date, code, assigned, required),
					hardUnitPenalty*float64(required-assigned),
				))
			}
		}

		// 人数上限与角色配比
		for _, shift := range ctx.Input.WorkingShifts() {
			if shift.MaxStaff > 0 {
				if assigned := ctx.AssignedCount(date, shift.Code); assigned > shift.MaxStaff {
					violations = append(violations, c.violation(
						model.SeverityHigh,
						nil, []string{date},
						fmt.Sprintf("%s 的 %s 班分配 %d 人，超过上限 %d 人", date, shift.Code, assigned, shift.MaxStaff),
						hardUnitPenalty*float64(assigned-shift.MaxStaff),
					))
				}
			}

			for _, role := range sortedKeys(shift.RequiredRoles) {
				minCount := shift.RequiredRoles[role]
				have := 0
				for _, a := range ctx.Assignments {
					if a.Date != date || a.ShiftID != shift.ID {
						continue
					}
					if emp := ctx.Employee(a.EmployeeID); emp != nil && emp.Role == role {
						have++
					}
				}
				if have < minCount {
					violations = append(violations, c.violation(
						model.SeverityCritical,
						nil, []string{date},
						fmt.Sprintf("%s 的 %s 班缺少角色 %s（%d/%d）", date, shift.Code, role, have, minCount),
						hardUnitPenalty*float64(minCount-have),
					))
				}
			}
		}
	}
	return violations
}

// EvaluateAssignment 评估单个分配（班次已满员时拒绝新增）
func (c *MinStaffingConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) (bool, float64) {
	shift := ctx.Shift(a.ShiftID)
	if shift == nil || shift.IsOffDuty() || shift.MaxStaff <= 0 {
		return true, 0
	}

	assigned := ctx.AssignedCount(a.Date, shift.Code)
	counted := false
	for _, existing := range ctx.CellAssignments(a.EmployeeID, a.Date) {
		if existing.ID == a.ID {
			counted = true
			break
		}
	}
	if !counted {
		assigned++
	}
	if assigned > shift.MaxStaff {
		return false, hardUnitPenalty
	}
	return true, 0
}
