// Package engine 对外暴露排班生成、优化与校验的门面
package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// fillDiagnostics 基于最终网格填充生成诊断包
func fillDiagnostics(diag *model.GenerationDiagnostics, ctx *constraint.Context) {
	diag.SpecialRequestMiss = specialRequestMisses(ctx)
	diag.OffBalanceGaps = offBalanceGaps(ctx)
	diag.AvoidPatternHits = avoidPatternHits(ctx)
	diag.PatternBreaks = patternBreaks(ctx)
	diag.TeamCoverageGaps = teamCoverageGaps(ctx)
	diag.TeamWorkloadGaps = teamWorkloadGaps(ctx)
}

// specialRequestMisses 找出最终网格没有满足的特殊请求
func specialRequestMisses(ctx *constraint.Context) []model.SpecialRequestMiss {
	var misses []model.SpecialRequestMiss
	for _, req := range ctx.Input.SpecialRequests {
		wanted := req.ShiftCode
		if wanted == "" {
			wanted = "O"
		}
		got := ctx.ShiftCodeAt(req.EmployeeID, req.Date)
		if got != wanted {
			misses = append(misses, model.SpecialRequestMiss{
				EmployeeID: req.EmployeeID,
				Date:       req.Date,
				Wanted:     wanted,
				Got:        got,
			})
		}
	}
	return misses
}

// offBalanceGaps 统计累计休假结余对平均值的偏差
func offBalanceGaps(ctx *constraint.Context) []model.OffBalanceGap {
	employees := ctx.Input.Employees
	if len(employees) < 2 {
		return nil
	}

	balances := make(map[uuid.UUID]float64, len(employees))
	var sum float64
	for _, emp := range employees {
		actual := 0
		for _, a := range ctx.EmployeeAssignments(emp.ID) {
			if s := ctx.Shift(a.ShiftID); s != nil && s.IsOffDuty() {
				actual++
			}
		}
		b := float64(ctx.Input.PrevOffAccruals[emp.ID] + actual - emp.GuaranteedOffDays)
		balances[emp.ID] = b
		sum += b
	}
	avg := sum / float64(len(employees))

	var gaps []model.OffBalanceGap
	for _, emp := range employees {
		dev := balances[emp.ID] - avg
		if math.Abs(dev) <= 1.0 {
			continue
		}
		gaps = append(gaps, model.OffBalanceGap{
			EmployeeID: emp.ID,
			Balance:    balances[emp.ID],
			TeamAvg:    avg,
			Deviation:  dev,
		})
	}
	return gaps
}

// avoidPatternHits 扫描禁用序列的出现位置
func avoidPatternHits(ctx *constraint.Context) []model.AvoidPatternHit {
	pattern := ctx.Input.TeamPattern
	if pattern == nil || len(pattern.AvoidPatterns) == 0 {
		return nil
	}

	days := ctx.Input.Range.Days()
	var hits []model.AvoidPatternHit
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

		for _, p := range pattern.AvoidPatterns {
			if p == "" {
				continue
			}
			for i := 0; i+len(p) <= len(seq); i++ {
				if seq[i:i+len(p)] == p {
					hits = append(hits, model.AvoidPatternHit{
						EmployeeID: emp.ID,
						Date:       days[i],
						Pattern:    p,
					})
				}
			}
		}
	}
	return hits
}

// patternBreaks 统计员工实际序列对团队默认班次模式的偏离
// 每名员工在所有候选模式与起始相位中取偏差最小的对齐，逐日记录不匹配
func patternBreaks(ctx *constraint.Context) []model.PatternBreak {
	pattern := ctx.Input.TeamPattern
	if pattern == nil || len(pattern.DefaultPatterns) == 0 {
		return nil
	}

	days := ctx.Input.Range.Days()
	var breaks []model.PatternBreak
	for _, emp := range ctx.Input.Employees {
		seq := make([]byte, 0, len(days))
		for _, d := range days {
			code := ctx.ShiftCodeAt(emp.ID, d)
			if code == "" {
				code = "?"
			}
			seq = append(seq, code[0])
		}

		bestMiss := len(seq) + 1
		var bestPattern string
		bestPhase := 0
		for _, p := range pattern.DefaultPatterns {
			if p == "" {
				continue
			}
			for phase := 0; phase < len(p); phase++ {
				miss := 0
				for i := range seq {
					if seq[i] != p[(i+phase)%len(p)] {
						miss++
					}
				}
				if miss < bestMiss {
					bestMiss = miss
					bestPattern = p
					bestPhase = phase
				}
			}
		}
		if bestPattern == "" || bestMiss == 0 {
			continue
		}

		for i := range seq {
			expected := bestPattern[(i+bestPhase)%len(bestPattern)]
			if seq[i] != expected {
				breaks = append(breaks, model.PatternBreak{
					EmployeeID: emp.ID,
					Date:       days[i],
					Expected:   string(expected),
					Actual:     string(seq[i]),
				})
			}
		}
	}
	return breaks
}

// teamCoverageGaps 找出缺少年资组覆盖的班次
func teamCoverageGaps(ctx *constraint.Context) []model.TeamCoverageGap {
	groups := make(map[string]bool)
	for _, alias := range ctx.Input.CareerGroupOf {
		groups[alias] = true
	}
	if len(groups) < 2 {
		return nil
	}
	aliases := make([]string, 0, len(groups))
	for alias := range groups {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	var gaps []model.TeamCoverageGap
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
			for _, alias := range aliases {
				if !present[alias] {
					gaps = append(gaps, model.TeamCoverageGap{
						Date:      date,
						ShiftCode: shift.Code,
						Group:     alias,
						Message:   fmt.Sprintf("%s 的 %s 班缺少年资组 %s", date, shift.Code, alias),
					})
				}
			}
		}
	}
	return gaps
}

// teamWorkloadGaps 统计各团队人均工作班次对全体平均的偏差
func teamWorkloadGaps(ctx *constraint.Context) []model.TeamWorkloadGap {
	if len(ctx.Input.TeamAlias) < 2 {
		return nil
	}

	teamLoad := make(map[string]float64)
	teamSize := make(map[string]int)
	var total float64
	var members int
	for _, emp := range ctx.Input.Employees {
		if emp.TeamID == nil {
			continue
		}
		alias := ctx.Input.TeamAlias[*emp.TeamID]
		load := float64(len(ctx.WorkingDates(emp.ID)))
		teamLoad[alias] += load
		teamSize[alias]++
		total += load
		members++
	}
	if members == 0 {
		return nil
	}
	overallAvg := total / float64(members)

	teams := make([]string, 0, len(teamLoad))
	for alias := range teamLoad {
		teams = append(teams, alias)
	}
	sort.Strings(teams)

	var gaps []model.TeamWorkloadGap
	for _, alias := range teams {
		avg := teamLoad[alias] / float64(teamSize[alias])
		dev := avg - overallAvg
		if math.Abs(dev) <= 0.5 {
			continue
		}
		gaps = append(gaps, model.TeamWorkloadGap{
			TeamAlias: alias,
			AvgShifts: avg,
			Deviation: dev,
		})
	}
	return gaps
}
