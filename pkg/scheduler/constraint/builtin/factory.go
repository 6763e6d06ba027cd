// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// New 按约束定义构造内置实现
// 穷举已知类型，未知类型拒绝而不是忽略
func New(def *model.Constraint) (constraint.Constraint, error) {
	switch def.Type {
	case model.TypeSingleAssignment:
		return NewSingleAssignmentConstraint(), nil
	case model.TypeMinRest:
		return NewMinRestConstraint(def.Params.MinRestHours), nil
	case model.TypeForbiddenSequence:
		return NewForbiddenSequenceConstraint(def.Params.ForbiddenSequences), nil
	case model.TypeMaxConsecutiveWork:
		return NewMaxConsecutiveConstraint(def.Params.MaxConsecutiveDays, def.Params.MaxConsecutiveNights), nil
	case model.TypeWeeklyHoursCap:
		return NewWeeklyHoursConstraint(def.Params.MaxWeeklyHours), nil
	case model.TypeMinStaffing:
		return NewMinStaffingConstraint(), nil
	case model.TypeShiftPreference:
		return NewShiftPreferenceConstraint(def.Weight), nil
	case model.TypeWeekendBalance:
		return NewWeekendBalanceConstraint(def.Weight), nil
	case model.TypeCoverageBalance:
		return NewCoverageBalanceConstraint(def.Weight), nil
	case model.TypeOffBalance:
		return NewOffBalanceConstraint(def.Weight, def.Params.ToleranceDays), nil
	case model.TypeAvoidPattern:
		return NewAvoidPatternConstraint(def.Weight, def.Params.Patterns), nil
	default:
		return nil, errors.UnknownConstraint(string(def.Type))
	}
}

// DefaultCatalog 构建默认约束目录
// 未提供约束定义时使用：全部硬约束 + 常用软约束，序列参数来自团队模式
func DefaultCatalog(pattern *model.TeamPattern) (*constraint.Catalog, error) {
	var avoid []string
	if pattern != nil {
		avoid = pattern.AvoidPatterns
	}

	defs := []*model.Constraint{
		{Type: model.TypeSingleAssignment, Kind: model.ConstraintHard, Category: model.CategoryOperational, Weight: 1, Active: true},
		{Type: model.TypeMinRest, Kind: model.ConstraintHard, Category: model.CategoryLegal, Weight: 1, Active: true,
			Params: model.ConstraintParams{MinRestHours: 11}},
		{Type: model.TypeForbiddenSequence, Kind: model.ConstraintHard, Category: model.CategoryOperational, Weight: 1, Active: true,
			Params: model.ConstraintParams{ForbiddenSequences: []string{"ND", "NE"}}},
		{Type: model.TypeMaxConsecutiveWork, Kind: model.ConstraintHard, Category: model.CategoryContractual, Weight: 1, Active: true,
			Params: model.ConstraintParams{MaxConsecutiveDays: 6, MaxConsecutiveNights: 3}},
		{Type: model.TypeWeeklyHoursCap, Kind: model.ConstraintHard, Category: model.CategoryLegal, Weight: 1, Active: true,
			Params: model.ConstraintParams{MaxWeeklyHours: 52}},
		{Type: model.TypeMinStaffing, Kind: model.ConstraintHard, Category: model.CategoryOperational, Weight: 1, Active: true},

		{Type: model.TypeShiftPreference, Kind: model.ConstraintSoft, Category: model.CategoryPreference, Weight: 0.6, Active: true},
		{Type: model.TypeWeekendBalance, Kind: model.ConstraintSoft, Category: model.CategoryFairness, Weight: 0.8, Active: true},
		{Type: model.TypeCoverageBalance, Kind: model.ConstraintSoft, Category: model.CategoryFairness, Weight: 0.5, Active: true},
		{Type: model.TypeOffBalance, Kind: model.ConstraintSoft, Category: model.CategoryFairness, Weight: 0.7, Active: true,
			Params: model.ConstraintParams{ToleranceDays: 1}},
		{Type: model.TypeAvoidPattern, Kind: model.ConstraintSoft, Category: model.CategoryOperational, Weight: 0.4, Active: true,
			Params: model.ConstraintParams{Patterns: avoid}},
	}

	return constraint.Build(defs, New)
}
