// Package engine 对外暴露排班生成、优化与校验的门面
package engine

import (
	"context"
	"time"

	"github.com/lunban/lunban/pkg/accrual"
	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/constraint/builtin"
	"github.com/lunban/lunban/pkg/scheduler/cost"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
	"github.com/lunban/lunban/pkg/scheduler/optimizer"
	"github.com/lunban/lunban/pkg/scheduler/solver"
	"github.com/lunban/lunban/pkg/stats"
)

// Phase 一次求解的运行阶段
type Phase string

const (
	PhaseInit            Phase = "init"
	PhaseFeasibilityPass Phase = "feasibility_pass"
	PhaseLocalSearch     Phase = "local_search"
	PhaseTerminated      Phase = "terminated"
)

// Outcome 终止结果
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// Options 求解配置
// 引擎本身无状态，所有可调参数显式传入，便于并行、独立配置的求解
type Options struct {
	MaxIterations int           `json:"max_iterations"`
	TimeLimit     time.Duration `json:"time_limit"`
	TabuSize      int           `json:"tabu_size"`
	InitialTemp   float64       `json:"initial_temp"`
	CoolingRate   float64       `json:"cooling_rate"`
	TargetScore   float64       `json:"target_score"`
	Seed          int64         `json:"seed"`
	Goal          stats.Goal    `json:"goal"`
}

// DefaultOptions 默认求解配置
func DefaultOptions() *Options {
	return &Options{
		MaxIterations: 2000,
		TimeLimit:     10 * time.Second,
		TabuSize:      64,
		InitialTemp:   100.0,
		CoolingRate:   0.995,
		TargetScore:   0,
		Seed:          1,
		Goal:          stats.GoalBalanced,
	}
}

// Engine 排班引擎
type Engine struct {
	opts *Options
}

// New 创建排班引擎
func New(opts *Options) *Engine {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Engine{opts: opts}
}

// GenerateResult 生成结果
type GenerateResult struct {
	Schedule    *model.Schedule             `json:"schedule"`
	Score       *model.ScheduleScore        `json:"score"`
	Diagnostics model.GenerationDiagnostics `json:"diagnostics"`
	OffAccruals []model.OffAccrualSummary   `json:"off_accruals"`
	Phase       Phase                       `json:"phase"`
	Outcome     Outcome                     `json:"outcome"`
	Success     bool                        `json:"success"`
	Warnings    []string                    `json:"warnings,omitempty"`
}

// Generate 完整生成一个排班表
// 人力不足不会使生成失败：引擎总是返回一个排班，必要时降级并附带缺口诊断
func (e *Engine) Generate(ctx context.Context, req *normalizer.Request) (*GenerateResult, error) {
	result := &GenerateResult{Phase: PhaseInit}

	input, err := normalizer.Normalize(req)
	if err != nil {
		result.Outcome = OutcomeFailed
		return result, err
	}

	cat, err := e.buildCatalog(input)
	if err != nil {
		result.Outcome = OutcomeFailed
		return result, err
	}

	log := logger.NewEngineLogger(input.DeptID.String())
	start := time.Now()

	// 时间预算内自行终止，不依赖外部取消
	runCtx, cancel := context.WithTimeout(ctx, e.opts.TimeLimit)
	defer cancel()

	schedule := &model.Schedule{
		BaseModel: model.NewBaseModel(),
		DeptID:    input.DeptID,
		Range:     input.Range,
		Status:    model.StatusDraft,
		Version:   1,
	}
	log.GenerationStarted(schedule.ID.String(), input.Range.NumDays(), len(input.Employees))

	// 可行性构造
	result.Phase = PhaseFeasibilityPass
	schedCtx := constraint.NewContext(input)
	feasible, err := solver.New(cat).Solve(runCtx, schedCtx, schedule.ID)
	if err != nil && len(feasible.Assignments) == 0 {
		result.Outcome = OutcomeFailed
		return result, err
	}
	result.Diagnostics.StaffingShortages = feasible.Shortages

	// 局部搜索改进
	result.Phase = PhaseLocalSearch
	cfg := e.searchConfig()
	if e.opts.TargetScore > 0 {
		cfg.TargetPenalty = targetPenalty(cost.PenaltyOf(schedCtx, cat, feasible.Assignments), e.opts.TargetScore)
	}
	search := optimizer.NewLocalSearch(cfg, cat)
	best, postStats, err := search.Optimize(runCtx, schedCtx, feasible.Assignments)
	if err != nil {
		result.Outcome = OutcomeFailed
		return result, err
	}
	result.Diagnostics.Postprocess = postStats

	schedule.Assignments = best.Assignments
	result.Schedule = schedule
	result.Phase = PhaseTerminated

	// 计分与诊断
	finalCtx := constraint.NewContext(input)
	finalCtx.SetAssignments(best.Assignments)
	result.Score = stats.Score(finalCtx, cat, stats.WeightsFor(e.opts.Goal))
	fillDiagnostics(&result.Diagnostics, finalCtx)

	tracker := accrual.NewTracker(input.PrevOffAccruals)
	result.OffAccruals = tracker.Summarize(best.Assignments, input.Employees, input.Shifts)

	result.Success = true
	if len(feasible.Shortages) > 0 {
		result.Outcome = OutcomePartial
		result.Warnings = append(result.Warnings, "部分班次人力不足，已按最大可用人力排班")
	} else {
		result.Outcome = OutcomeSuccess
	}

	log.GenerationFinished(schedule.ID.String(), result.Score.Total, time.Since(start))
	return result, nil
}

// buildCatalog 构建约束目录（无定义时回退到默认目录）
func (e *Engine) buildCatalog(input *normalizer.Normalized) (*constraint.Catalog, error) {
	if len(input.Constraints) == 0 {
		return builtin.DefaultCatalog(input.TeamPattern)
	}
	return constraint.Build(input.Constraints, builtin.New)
}

// searchConfig 把引擎配置映射为局部搜索配置
func (e *Engine) searchConfig() *optimizer.Config {
	cfg := optimizer.DefaultConfig()
	if e.opts.MaxIterations > 0 {
		cfg.MaxIterations = e.opts.MaxIterations
	}
	if e.opts.TimeLimit > 0 {
		cfg.MaxTime = e.opts.TimeLimit
	}
	if e.opts.TabuSize > 0 {
		cfg.TabuSize = e.opts.TabuSize
	}
	if e.opts.InitialTemp > 0 {
		cfg.InitialTemp = e.opts.InitialTemp
	}
	if e.opts.CoolingRate > 0 {
		cfg.CoolingRate = e.opts.CoolingRate
	}
	cfg.Seed = e.opts.Seed
	return cfg
}

// targetPenalty 把目标分数折算成惩罚目标：目标越高，允许残留的惩罚越少
func targetPenalty(initialPenalty, targetScore float64) float64 {
	if targetScore <= 0 {
		return 0
	}
	return initialPenalty * (100 - targetScore) / 100
}
