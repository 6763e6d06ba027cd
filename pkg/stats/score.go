// Package stats 提供公平性与覆盖率计分
package stats

import (
	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/cost"
)

// Goal 优化目标
type Goal string

const (
	GoalFairness   Goal = "fairness"
	GoalPreference Goal = "preference"
	GoalCoverage   Goal = "coverage"
	GoalCost       Goal = "cost"
	GoalBalanced   Goal = "balanced"
)

// Weights 总分各分项的权重
type Weights struct {
	Fairness   float64 `json:"fairness"`
	Preference float64 `json:"preference"`
	Coverage   float64 `json:"coverage"`
	Constraint float64 `json:"constraint"`
}

// WeightsFor 返回目标对应的权重预设
func WeightsFor(goal Goal) Weights {
	switch goal {
	case GoalFairness:
		return Weights{Fairness: 0.50, Preference: 0.15, Coverage: 0.20, Constraint: 0.15}
	case GoalPreference:
		return Weights{Fairness: 0.15, Preference: 0.50, Coverage: 0.20, Constraint: 0.15}
	case GoalCoverage:
		return Weights{Fairness: 0.15, Preference: 0.15, Coverage: 0.55, Constraint: 0.15}
	case GoalCost:
		return Weights{Fairness: 0.15, Preference: 0.15, Coverage: 0.20, Constraint: 0.50}
	default:
		return Weights{Fairness: 0.30, Preference: 0.25, Coverage: 0.30, Constraint: 0.15}
	}
}

// Score 计算排班得分（纯函数，可独立于引擎对任意排班调用）
func Score(ctx *constraint.Context, cat *constraint.Catalog, w Weights) *model.ScheduleScore {
	fairness := fairnessScore(ctx)
	preference := preferenceScore(ctx)
	coverage := coverageScore(ctx)
	satisfaction := constraintScore(ctx, cat)

	total := w.Fairness*fairness + w.Preference*preference + w.Coverage*coverage + w.Constraint*satisfaction
	total = clamp(total, 0, 100)

	return &model.ScheduleScore{
		Total:                  total,
		Fairness:               fairness,
		Preference:             preference,
		Coverage:               coverage,
		ConstraintSatisfaction: satisfaction,
		Breakdown: []model.ScoreComponent{
			{Name: "公平性", Weight: w.Fairness, Score: fairness, Weighted: w.Fairness * fairness},
			{Name: "偏好匹配", Weight: w.Preference, Score: preference, Weighted: w.Preference * preference},
			{Name: "覆盖率", Weight: w.Coverage, Score: coverage, Weighted: w.Coverage * coverage},
			{Name: "约束满足", Weight: w.Constraint, Score: satisfaction, Weighted: w.Constraint * satisfaction},
		},
	}
}

// JainIndex 计算 Jain 公平性指数
// 全员负载完全相等为 1，极端失衡趋向 1/n；空集或全零视为完全公平
func JainIndex(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 1.0
	}
	var sum, sumSquares float64
	for _, v := range values {
		sum += v
		sumSquares += v * v
	}
	if sumSquares == 0 {
		return 1.0
	}
	return (sum * sum) / (float64(n) * sumSquares)
}

// fairnessScore 公平性分项：工作量、夜班数、周末班数的 Jain 指数平均
func fairnessScore(ctx *constraint.Context) float64 {
	employees := ctx.Input.Employees
	if len(employees) == 0 {
		return 100
	}

	workload := make([]float64, len(employees))
	nights := make([]float64, len(employees))
	weekends := make([]float64, len(employees))

	for i, emp := range employees {
		for _, a := range ctx.EmployeeAssignments(emp.ID) {
			s := ctx.Shift(a.ShiftID)
			if s == nil || s.IsOffDuty() {
				continue
			}
			workload[i]++
			if s.IsNight() {
				nights[i]++
			}
			if model.IsWeekend(a.Date) || ctx.Input.Holidays[a.Date] {
				weekends[i]++
			}
		}
	}

	avg := (JainIndex(workload) + JainIndex(nights) + JainIndex(weekends)) / 3.0
	return clamp(avg*100, 0, 100)
}

// preferenceScore 偏好分项：已分配工作班次与员工偏好表的匹配度
func preferenceScore(ctx *constraint.Context) float64 {
	var sum float64
	count := 0
	for _, emp := range ctx.Input.Employees {
		for _, a := range ctx.EmployeeAssignments(emp.ID) {
			s := ctx.Shift(a.ShiftID)
			if s == nil || s.IsOffDuty() {
				continue
			}
			sum += emp.PreferenceFor(s.Code)
			count++
		}
	}
	if count == 0 {
		return 100
	}
	return clamp(sum/float64(count)*100, 0, 100)
}

// coverageScore 覆盖率分项：已填充的人力需求占比
// 需求总量为零时视为完全覆盖
func coverageScore(ctx *constraint.Context) float64 {
	totalRequired := 0
	totalFilled := 0
	for _, date := range ctx.Input.Range.Days() {
		for code, required := range ctx.Input.RequiredStaffPerShift {
			totalRequired += required
			assigned := ctx.AssignedCount(date, code)
			if assigned > required {
				assigned = required
			}
			totalFilled += assigned
		}
	}
	if totalRequired == 0 {
		return 100
	}
	return clamp(float64(totalFilled)/float64(totalRequired)*100, 0, 100)
}

// constraintScore 约束满足分项
// 用共享代价函数的总惩罚做归一：按员工日均惩罚衰减
func constraintScore(ctx *constraint.Context, cat *constraint.Catalog) float64 {
	b := cost.Evaluate(ctx, cat)
	cells := len(ctx.Input.Employees) * ctx.Input.Range.NumDays()
	if cells == 0 {
		return 100
	}
	perCell := b.Total / float64(cells)
	return clamp(100-perCell*10, 0, 100)
}

// NightCounts 统计每员工的大夜班数（诊断用）
func NightCounts(ctx *constraint.Context) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int, len(ctx.Input.Employees))
	for _, emp := range ctx.Input.Employees {
		counts[emp.ID] = len(ctx.NightDates(emp.ID))
	}
	return counts
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
