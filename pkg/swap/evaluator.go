// Package swap 提供换班请求的审批工作流
package swap

import (
	"fmt"

	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/cost"
)

// Evaluator 换班评估器
// 审批前的参考模拟：不改动排班表，只报告换班后的约束影响
type Evaluator struct {
	catalog *constraint.Catalog
}

// NewEvaluator 创建换班评估器
func NewEvaluator(cat *constraint.Catalog) *Evaluator {
	return &Evaluator{catalog: cat}
}

// Issue 评估发现的问题
type Issue struct {
	Severity model.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// Evaluation 换班评估结果
type Evaluation struct {
	Feasible      bool    `json:"feasible"`
	PenaltyBefore float64 `json:"penalty_before"`
	PenaltyAfter  float64 `json:"penalty_after"`
	Issues        []Issue `json:"issues"`
}

// Evaluate 模拟一次换班并评估其影响
func (e *Evaluator) Evaluate(ctx *constraint.Context, req *model.SwapRequest) *Evaluation {
	result := &Evaluation{Feasible: true}

	orig := cellAssignment(ctx, req.RequesterID.String(), req.Original)
	other := cellAssignment(ctx, req.TargetID.String(), req.Counterpart)
	if orig == nil || other == nil {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Severity: model.SeverityCritical,
			Message:  "换班涉及的分配不存在",
		})
		return result
	}
	if orig.IsLocked || other.IsLocked {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Severity: model.SeverityCritical,
			Message:  "换班涉及的分配已锁定",
		})
		return result
	}

	result.PenaltyBefore = cost.Penalty(ctx, e.catalog)

	// 在快照上模拟交换
	snapshot := make([]*model.Assignment, len(ctx.Assignments))
	for i, a := range ctx.Assignments {
		copied := *a
		snapshot[i] = &copied
	}
	var sOrig, sOther *model.Assignment
	for _, a := range snapshot {
		if a.ID == orig.ID {
			sOrig = a
		}
		if a.ID == other.ID {
			sOther = a
		}
	}
	sOrig.ShiftID, sOther.ShiftID = sOther.ShiftID, sOrig.ShiftID

	probe := constraint.NewContext(ctx.Input)
	probe.SetAssignments(snapshot)
	result.PenaltyAfter = cost.Penalty(probe, e.catalog)

	for _, v := range e.catalog.EvaluateHard(probe) {
		result.Feasible = false
		result.Issues = append(result.Issues, Issue{
			Severity: v.Severity,
			Message:  v.Message,
		})
	}
	if result.PenaltyAfter > result.PenaltyBefore {
		result.Issues = append(result.Issues, Issue{
			Severity: model.SeverityLow,
			Message:  fmt.Sprintf("换班后软约束惩罚从 %.1f 升至 %.1f", result.PenaltyBefore, result.PenaltyAfter),
		})
	}
	return result
}

// cellAssignment 在上下文中查找换班单元格
func cellAssignment(ctx *constraint.Context, empID string, cell model.SwapCell) *model.Assignment {
	for _, a := range ctx.Assignments {
		if a.EmployeeID.String() == empID && a.Date == cell.Date && a.ShiftID == cell.ShiftID {
			return a
		}
	}
	return nil
}
