// Package optimizer 提供基于禁忌搜索与模拟退火的局部搜索
package optimizer

import (
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
)

// generateNeighbor 生成一个邻域解
// 两类移动：改派单个未锁定单元格、交换同日两个未锁定单元格的班次
func (o *LocalSearch) generateNeighbor(schedCtx *constraint.Context, current *Solution) *Solution {
	if len(current.Assignments) == 0 {
		return nil
	}
	if o.rng.Float64() < 0.5 {
		return o.reassignMove(schedCtx, current)
	}
	return o.swapMove(schedCtx, current)
}

// reassignMove 把一个未锁定单元格改派到不同班次
func (o *LocalSearch) reassignMove(schedCtx *constraint.Context, current *Solution) *Solution {
	neighbor := current.Clone()

	idx := o.pickUnlocked(neighbor)
	if idx < 0 {
		return nil
	}
	a := neighbor.Assignments[idx]

	shifts := schedCtx.Input.Shifts
	target := shifts[o.rng.Intn(len(shifts))]
	if target.ID == a.ShiftID || target.Type == model.ShiftLeave {
		return nil
	}

	a.ShiftID = target.ID
	return neighbor
}

// swapMove 交换同一天两个员工的班次
func (o *LocalSearch) swapMove(_ *constraint.Context, current *Solution) *Solution {
	neighbor := current.Clone()

	i := o.pickUnlocked(neighbor)
	if i < 0 {
		return nil
	}
	date := neighbor.Assignments[i].Date

	// 同日的另一个未锁定单元格
	var candidates []int
	for j, a := range neighbor.Assignments {
		if j == i || a.IsLocked || a.Date != date {
			continue
		}
		if a.EmployeeID == neighbor.Assignments[i].EmployeeID {
			continue
		}
		candidates = append(candidates, j)
	}
	if len(candidates) == 0 {
		return nil
	}
	j := candidates[o.rng.Intn(len(candidates))]

	ai, aj := neighbor.Assignments[i], neighbor.Assignments[j]
	if ai.ShiftID == aj.ShiftID {
		return nil
	}
	ai.ShiftID, aj.ShiftID = aj.ShiftID, ai.ShiftID
	return neighbor
}

// pickUnlocked 随机选择一个未锁定单元格的下标
func (o *LocalSearch) pickUnlocked(s *Solution) int {
	// 有限次重试，全部锁定时放弃
	for try := 0; try < 8; try++ {
		idx := o.rng.Intn(len(s.Assignments))
		if !s.Assignments[idx].IsLocked {
			return idx
		}
	}
	for idx, a := range s.Assignments {
		if !a.IsLocked {
			return idx
		}
	}
	return -1
}
