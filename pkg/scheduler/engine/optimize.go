// Package engine 对外暴露排班生成、优化与校验的门面
package engine

import (
	"context"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/cost"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
	"github.com/lunban/lunban/pkg/scheduler/optimizer"
	"github.com/lunban/lunban/pkg/stats"
)

// OptimizeRequest 对已有排班表的优化请求
type OptimizeRequest struct {
	Schedule        *model.Schedule
	Employees       []*model.Employee
	Shifts          []*model.Shift
	Constraints     []*model.Constraint
	TeamPattern     *model.TeamPattern
	Holidays        []string
	PrevOffAccruals map[uuid.UUID]int

	Goal           stats.Goal
	MaxIterations  int
	TargetScore    float64
	PreserveLocked bool
}

// ImprovementDelta 优化前后的改善幅度
type ImprovementDelta struct {
	Before             *model.ScheduleScore `json:"before"`
	After              *model.ScheduleScore `json:"after"`
	ChangedAssignments int                  `json:"changed_assignments"`
	ChangedPct         float64              `json:"changed_pct"`
}

// OptimizeResult 优化结果
type OptimizeResult struct {
	Schedule *model.Schedule        `json:"schedule"`
	Score    *model.ScheduleScore   `json:"score"`
	Delta    ImprovementDelta       `json:"delta"`
	Stats    model.PostprocessStats `json:"stats"`
}

// Optimize 对已有排班表做局部搜索改进
// 只在草稿状态允许；锁定单元格默认不参与移动
func (e *Engine) Optimize(ctx context.Context, req *OptimizeRequest) (*OptimizeResult, error) {
	if req == nil || req.Schedule == nil {
		return nil, errors.InvalidInput("schedule", "排班表为空")
	}
	if !req.Schedule.CanMutate() {
		return nil, errors.ScheduleImmutable(string(req.Schedule.Status))
	}

	input, err := normalizer.Normalize(&normalizer.Request{
		DeptID:          req.Schedule.DeptID,
		Range:           req.Schedule.Range,
		Employees:       req.Employees,
		Shifts:          req.Shifts,
		Constraints:     req.Constraints,
		TeamPattern:     req.TeamPattern,
		Holidays:        req.Holidays,
		PrevOffAccruals: req.PrevOffAccruals,
	})
	if err != nil {
		return nil, err
	}

	cat, err := e.buildCatalog(input)
	if err != nil {
		return nil, err
	}

	// 工作副本：不保留锁定时清掉锁标记
	initial := make([]*model.Assignment, len(req.Schedule.Assignments))
	for i, a := range req.Schedule.Assignments {
		copied := *a
		if !req.PreserveLocked {
			copied.IsLocked = false
		}
		initial[i] = &copied
	}

	schedCtx := constraint.NewContext(input)
	schedCtx.SetAssignments(initial)

	goal := req.Goal
	if goal == "" {
		goal = e.opts.Goal
	}
	weights := stats.WeightsFor(goal)
	before := stats.Score(schedCtx, cat, weights)

	cfg := e.searchConfig()
	if req.MaxIterations > 0 {
		cfg.MaxIterations = req.MaxIterations
	}
	target := req.TargetScore
	if target == 0 {
		target = e.opts.TargetScore
	}
	if target > 0 {
		cfg.TargetPenalty = targetPenalty(cost.PenaltyOf(schedCtx, cat, initial), target)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.MaxTime)
	defer cancel()

	best, postStats, err := optimizer.NewLocalSearch(cfg, cat).Optimize(runCtx, schedCtx, initial)
	if err != nil {
		return nil, err
	}

	afterCtx := constraint.NewContext(input)
	afterCtx.SetAssignments(best.Assignments)
	after := stats.Score(afterCtx, cat, weights)

	changed := countChanged(req.Schedule.Assignments, best.Assignments)
	pct := 0.0
	if len(initial) > 0 {
		pct = float64(changed) / float64(len(initial)) * 100
	}

	improved := &model.Schedule{
		BaseModel:   req.Schedule.BaseModel,
		DeptID:      req.Schedule.DeptID,
		Range:       req.Schedule.Range,
		Status:      req.Schedule.Status,
		Version:     req.Schedule.Version + 1,
		Assignments: best.Assignments,
	}

	return &OptimizeResult{
		Schedule: improved,
		Score:    after,
		Delta: ImprovementDelta{
			Before:             before,
			After:              after,
			ChangedAssignments: changed,
			ChangedPct:         pct,
		},
		Stats: postStats,
	}, nil
}

// countChanged 统计换了班次的单元格数量
func countChanged(before, after []*model.Assignment) int {
	orig := make(map[string]uuid.UUID, len(before))
	for _, a := range before {
		orig[a.CellKey()] = a.ShiftID
	}
	changed := 0
	for _, a := range after {
		if shiftID, ok := orig[a.CellKey()]; ok && shiftID != a.ShiftID {
			changed++
		}
	}
	return changed
}
