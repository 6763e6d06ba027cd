// Package model 定义轮班排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleScore 排班得分（0-100 及各子项）
type ScheduleScore struct {
	Total                  float64          `json:"total"`
	Fairness               float64          `json:"fairness"`
	Preference             float64          `json:"preference"`
	Coverage               float64          `json:"coverage"`
	ConstraintSatisfaction float64          `json:"constraint_satisfaction"`
	Breakdown              []ScoreComponent `json:"breakdown,omitempty"`
}

// ScoreComponent 得分分项（加权明细）
type ScoreComponent struct {
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	Score    float64 `json:"score"`
	Weighted float64 `json:"weighted"`
}

// StaffingShortageInfo 人力缺口信息
// 最低人力无法满足时记录缺口而不是中止求解
type StaffingShortageInfo struct {
	Date      string `json:"date"`
	ShiftCode string `json:"shift_code"`
	Required  int    `json:"required"`
	Assigned  int    `json:"assigned"`
	Shortage  int    `json:"shortage"`
}

// TeamCoverageGap 团队/年资组覆盖缺口
type TeamCoverageGap struct {
	Date      string `json:"date"`
	ShiftCode string `json:"shift_code"`
	Group     string `json:"group"` // 团队或年资组别名
	Message   string `json:"message"`
}

// SpecialRequestMiss 未满足的特殊请求
type SpecialRequestMiss struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Date       string    `json:"date"`
	Wanted     string    `json:"wanted"`
	Got        string    `json:"got"`
}

// OffBalanceGap 休假结余失衡
type OffBalanceGap struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Balance    float64   `json:"balance"`
	TeamAvg    float64   `json:"team_avg"`
	Deviation  float64   `json:"deviation"`
}

// PatternBreak 班次序列断裂（偏离团队默认模式）
type PatternBreak struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Date       string    `json:"date"`
	Expected   string    `json:"expected"`
	Actual     string    `json:"actual"`
}

// AvoidPatternHit 禁用序列出现记录（按次数惩罚，不做硬阻断）
type AvoidPatternHit struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	Date       string    `json:"date"`
	Pattern    string    `json:"pattern"`
}

// TeamWorkloadGap 团队工作量差距
type TeamWorkloadGap struct {
	TeamAlias string  `json:"team_alias"`
	AvgShifts float64 `json:"avg_shifts"`
	Deviation float64 `json:"deviation"`
}

// PostprocessStats 搜索后处理统计
type PostprocessStats struct {
	InitialPenalty float64       `json:"initial_penalty"`
	FinalPenalty   float64       `json:"final_penalty"`
	Iterations     int           `json:"iterations"`
	Improvements   int           `json:"improvements"`
	AcceptedWorse  int           `json:"accepted_worse"`
	Elapsed        time.Duration `json:"elapsed"`
}

// GenerationDiagnostics 生成诊断信息包
type GenerationDiagnostics struct {
	StaffingShortages  []StaffingShortageInfo `json:"staffing_shortages,omitempty"`
	TeamCoverageGaps   []TeamCoverageGap      `json:"team_coverage_gaps,omitempty"`
	SpecialRequestMiss []SpecialRequestMiss   `json:"special_request_misses,omitempty"`
	OffBalanceGaps     []OffBalanceGap        `json:"off_balance_gaps,omitempty"`
	PatternBreaks      []PatternBreak         `json:"pattern_breaks,omitempty"`
	TeamWorkloadGaps   []TeamWorkloadGap      `json:"team_workload_gaps,omitempty"`
	AvoidPatternHits   []AvoidPatternHit      `json:"avoid_pattern_hits,omitempty"`
	Postprocess        PostprocessStats       `json:"postprocess"`
}

// OffAccrualSummary 休假结余汇总（每员工每周期）
type OffAccrualSummary struct {
	EmployeeID        uuid.UUID `json:"employee_id"`
	GuaranteedOffDays int       `json:"guaranteed_off_days"`
	ActualOffDays     int       `json:"actual_off_days"`
	ExtraOffDays      int       `json:"extra_off_days"` // max(0, actual - guaranteed)
	CarriedOver       int       `json:"carried_over"`   // 上一周期结转
	Balance           int       `json:"balance"`        // carried + (actual - guaranteed)
}
