// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// ShiftPreferenceConstraint 班次偏好约束
// 偏离员工偏好表按程度惩罚
type ShiftPreferenceConstraint struct {
	*BaseConstraint
}

// NewShiftPreferenceConstraint 创建班次偏好约束
func NewShiftPreferenceConstraint(weight float64) *ShiftPreferenceConstraint {
	return &ShiftPreferenceConstraint{
		BaseConstraint: NewBaseConstraint("班次偏好", model.TypeShiftPreference, model.ConstraintSoft, weight),
	}
}

// Evaluate 评估整个排班
func (c *ShiftPreferenceConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		var deviation float64
		count := 0
		for _, a := range ctx.EmployeeAssignments(emp.ID) {
			s := ctx.Shift(a.ShiftID)
			if s == nil || s.IsOffDuty() {
				continue
			}
			deviation += 1.0 - emp.PreferenceFor(s.Code)
			count++
		}
		if count == 0 || deviation == 0 {
			continue
		}
		violations = append(violations, c.violation(
			model.SeverityLow,
			[]uuid.UUID{emp.ID}, nil,
			fmt.Sprintf("员工 %s 的班次偏好匹配偏差 %.2f（%d 个班次）", emp.Name, deviation, count),
			c.Weight()*deviation,
		))
	}
	return violations
}

// WeekendBalanceConstraint 周末/节假日分布均衡约束
type WeekendBalanceConstraint struct {
	*BaseConstraint
}

// NewWeekendBalanceConstraint 创建周末均衡约束
func NewWeekendBalanceConstraint(weight float64) *WeekendBalanceConstraint {
	return &WeekendBalanceConstraint{
		BaseConstraint: NewBaseConstraint("周末节假日均衡", model.TypeWeekendBalance, model.ConstraintSoft, weight),
	}
}

// Evaluate 评估整个排班
func (c *WeekendBalanceConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	counts := make(map[uuid.UUID]float64, len(ctx.Input.Employees))
	for _, emp := range ctx.Input.Employees {
		for _, d := range ctx.WorkingDates(emp.ID) {
			if model.IsWeekend(d) || ctx.Input.Holidays[d] {
				counts[emp.ID]++
			}
		}
	}
	return deviationViolations(c.BaseConstraint, ctx, counts, 1.0, "周末/节假日班次")
}

// CoverageBalanceConstraint 团队/年资组覆盖均衡约束
// 每个工作班次尽量覆盖各年资组
type CoverageBalanceConstraint struct {
	*BaseConstraint
}

// NewCoverageBalanceConstraint 创建覆盖均衡约束
func NewCoverageBalanceConstraint(weight float64) *CoverageBalanceConstraint {
	return &CoverageBalanceConstraint{
		BaseConstraint: NewBaseConstraint("年资组覆盖均衡", model.TypeCoverageBalance, model.ConstraintSoft, weight),
	}
}

// Evaluate 评估整个排班
func (c *CoverageBalanceConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	groups := make(map[string]bool)
	for _, alias := range ctx.Input.CareerGroupOf {
		groups[alias] = true
	}
	if len(groups) < 2 {
		return nil
	}

	var violations []model.ConstraintViolation
	for _, date := range ctx.Input.Range.Days() {
		for _, shift := range ctx.Input.WorkingShifts() {
			if ctx.Input.RequiredStaffPerShift[shift.Code] < 2 {
				continue
			}
			present := make(map[string]bool)
			staffed := false
			for _, a := range ctx.Assignments {
				if a.Date != date || a.ShiftID != shift.ID {
					continue
				}
				staffed = true
				if alias, ok := ctx.Input.CareerGroupOf[a.EmployeeID]; ok {
					present[alias] = true
				}
			}
			if !staffed {
				continue
			}
			missing := len(groups) - len(present)
			if missing > 0 {
				violations = append(violations, c.violation(
					model.SeverityMedium,
					nil, []string{date},
					fmt.Sprintf("%s 的 %s 班缺少 %d 个年资组的覆盖", date, shift.Code, missing),
					c.Weight()*float64(missing),
				))
			}
		}
	}
	return violations
}

// OffBalanceConstraint 休假结余均衡约束
// 以累计结余（含上期结转）的组内偏差计算，容差带内不惩罚
type OffBalanceConstraint struct {
	*BaseConstraint
	toleranceDays float64
}

// NewOffBalanceConstraint 创建休假结余均衡约束
func NewOffBalanceConstraint(weight, toleranceDays float64) *OffBalanceConstraint {
	if toleranceDays <= 0 {
		toleranceDays = 1.0
	}
	return &OffBalanceConstraint{
		BaseConstraint: NewBaseConstraint("休假结余均衡", model.TypeOffBalance, model.ConstraintSoft, weight),
		toleranceDays:  toleranceDays,
	}
}

// Evaluate 评估整个排班
func (c *OffBalanceConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	balances := make(map[uuid.UUID]float64, len(ctx.Input.Employees))
	for _, emp := range ctx.Input.Employees {
		actual := 0
		for _, a := range ctx.EmployeeAssignments(emp.ID) {
			if s := ctx.Shift(a.ShiftID); s != nil && s.IsOffDuty() {
				actual++
			}
		}
		balances[emp.ID] = float64(ctx.Input.PrevOffAccruals[emp.ID] + actual - emp.GuaranteedOffDays)
	}
	return deviationViolations(c.BaseConstraint, ctx, balances, c.toleranceDays, "累计休假结余")
}

// deviationViolations 按组内平均值的偏差生成违反记录（容差带内跳过）
func deviationViolations(b *BaseConstraint, ctx *constraint.Context, values map[uuid.UUID]float64, tolerance float64, what string) []model.ConstraintViolation {
	if len(values) < 2 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))

	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		dev := math.Abs(values[emp.ID] - avg)
		if dev <= tolerance {
			continue
		}
		excess := dev - tolerance
		violations = append(violations, b.violation(
			model.SeverityMedium,
			[]uuid.UUID{emp.ID}, nil,
			fmt.Sprintf("员工 %s 的%s偏离平均 %.1f（容差 %.1f）", emp.Name, what, dev, tolerance),
			b.Weight()*excess,
		))
	}
	return violations
}

// AvoidPatternConstraint 禁用序列出现约束
// 按出现次数惩罚，不做硬阻断
type AvoidPatternConstraint struct {
	*BaseConstraint
	patterns []string
}

// NewAvoidPatternConstraint 创建禁用序列约束
func NewAvoidPatternConstraint(weight float64, patterns []string) *AvoidPatternConstraint {
	return &AvoidPatternConstraint{
		BaseConstraint: NewBaseConstraint("禁用班次序列", model.TypeAvoidPattern, model.ConstraintSoft, weight),
		patterns:       patterns,
	}
}

// Evaluate 评估整个排班
func (c *AvoidPatternConstraint) Evaluate(ctx *constraint.Context) []model.ConstraintViolation {
	if len(c.patterns) == 0 {
		return nil
	}

	days := ctx.Input.Range.Days()
	var violations []model.ConstraintViolation
	for _, emp := range ctx.Input.Employees {
		codes := make([]byte, 0, len(days))
		for _, d := range days {
			code := ctx.ShiftCodeAt(emp.ID, d)
			if code == "" {
				code = "?"
			}
			codes = append(codes, code[0])
		}
		seq := string(codes)

		for _, p := range c.patterns {
			if p == "" {
				continue
			}
			for i := 0; i+len(p) <= len(seq); i++ {
				if seq[i:i+len(p)] == p {
					violations = append(violations, c.violation(
						model.SeverityLow,
						[]uuid.UUID{emp.ID}, []string{days[i]},
						fmt.Sprintf("员工 %s 从 %s 起出现禁用序列 %s", emp.Name, days[i], p),
						c.Weight(),
					))
				}
			}
		}
	}
	return violations
}
