// Package builtin 提供内置约束实现
package builtin

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// hardUnitPenalty 硬约束每次违反的基准惩罚值
const hardUnitPenalty = 100.0

// BaseConstraint 约束基类
type BaseConstraint struct {
	name   string
	typ    model.ConstraintType
	kind   model.ConstraintKind
	weight float64
}

// NewBaseConstraint 创建基础约束
func NewBaseConstraint(name string, typ model.ConstraintType, kind model.ConstraintKind, weight float64) *BaseConstraint {
	if kind == model.ConstraintHard {
		weight = 1.0
	}
	return &BaseConstraint{name: name, typ: typ, kind: kind, weight: weight}
}

// Name 返回约束名称
func (b *BaseConstraint) Name() string { return b.name }

// Type 返回约束类型
func (b *BaseConstraint) Type() model.ConstraintType { return b.typ }

// Kind 返回约束种类
func (b *BaseConstraint) Kind() model.ConstraintKind { return b.kind }

// Weight 返回约束权重
func (b *BaseConstraint) Weight() float64 { return b.weight }

// EvaluateAssignment 默认实现（软约束不做单分配检查）
func (b *BaseConstraint) EvaluateAssignment(_ *constraint.Context, _ *model.Assignment) (bool, float64) {
	return true, 0
}

// violation 创建违反记录
func (b *BaseConstraint) violation(severity model.Severity, empIDs []uuid.UUID, dates []string, msg string, cost float64) model.ConstraintViolation {
	return model.ConstraintViolation{
		ConstraintType: b.typ,
		Severity:       severity,
		EmployeeIDs:    empIDs,
		Dates:          dates,
		Message:        msg,
		Cost:           cost,
	}
}

// minutesOf 解析 HH:MM 为当日分钟数
func minutesOf(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}

// restHoursBetween 计算前一天班次结束到次日班次开始的休息小时数
// 跨午夜的班次（结束早于开始）视为次日凌晨结束
func restHoursBetween(prev, next *model.Shift) float64 {
	end := minutesOf(prev.EndTime)
	start := minutesOf(prev.StartTime)
	crossesMidnight := end <= start

	nextStart := minutesOf(next.StartTime)
	var restMinutes int
	if crossesMidnight {
		// 前班结束已在次日
		restMinutes = nextStart - end
	} else {
		restMinutes = (24*60 - end) + nextStart
	}
	if restMinutes < 0 {
		restMinutes = 0
	}
	return float64(restMinutes) / 60.0
}
