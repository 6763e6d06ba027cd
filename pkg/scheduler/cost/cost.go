// Package cost 提供搜索与计分共用的纯代价函数
// 优化器和评分器都基于这里的结果，避免两份代价逻辑各自漂移
package cost

import (
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// hardViolationCost 硬约束代价在总惩罚中的放大倍数
// 局部搜索用它保证可行性破坏永远劣于任何软约束改善
const hardViolationCost = 1000.0

// Breakdown 代价分解
type Breakdown struct {
	HardPenalty    float64                     `json:"hard_penalty"`
	SoftPenalty    float64                     `json:"soft_penalty"`
	Total          float64                     `json:"total"`
	HardViolations []model.ConstraintViolation `json:"hard_violations,omitempty"`
	SoftViolations []model.ConstraintViolation `json:"soft_violations,omitempty"`
}

// Evaluate 计算一个排班方案的完整代价分解
func Evaluate(ctx *constraint.Context, cat *constraint.Catalog) *Breakdown {
	b := &Breakdown{
		HardViolations: cat.EvaluateHard(ctx),
		SoftViolations: cat.EvaluateSoft(ctx),
	}
	for _, v := range b.HardViolations {
		b.HardPenalty += v.Cost
	}
	for _, v := range b.SoftViolations {
		b.SoftPenalty += v.Cost
	}
	b.Total = b.HardPenalty*hardViolationCost/100.0 + b.SoftPenalty
	return b
}

// Penalty 计算总惩罚值（局部搜索的目标函数）
func Penalty(ctx *constraint.Context, cat *constraint.Catalog) float64 {
	return Evaluate(ctx, cat).Total
}

// PenaltyOf 对给定分配快照计算总惩罚值
func PenaltyOf(input *constraint.Context, cat *constraint.Catalog, assignments []*model.Assignment) float64 {
	probe := constraint.NewContext(input.Input)
	probe.SetAssignments(assignments)
	return Penalty(probe, cat)
}
