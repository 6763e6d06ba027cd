// Package optimizer 提供基于禁忌搜索与模拟退火的局部搜索
package optimizer

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/cost"
)

// Config 局部搜索配置
type Config struct {
	MaxIterations    int           `json:"max_iterations"`
	MaxTime          time.Duration `json:"max_time"`
	InitialTemp      float64       `json:"initial_temp"`
	CoolingRate      float64       `json:"cooling_rate"`
	TabuSize         int           `json:"tabu_size"`
	NeighborhoodSize int           `json:"neighborhood_size"`
	TargetPenalty    float64       `json:"target_penalty"`
	Seed             int64         `json:"seed"`
}

// DefaultConfig 默认局部搜索配置
func DefaultConfig() *Config {
	return &Config{
		MaxIterations:    2000,
		MaxTime:          10 * time.Second,
		InitialTemp:      100.0,
		CoolingRate:      0.995,
		TabuSize:         64,
		NeighborhoodSize: 16,
		TargetPenalty:    0,
		Seed:             1,
	}
}

// Solution 一个排班方案及其惩罚值
type Solution struct {
	Assignments []*model.Assignment
	Penalty     float64
}

// Clone 深拷贝方案
func (s *Solution) Clone() *Solution {
	clone := &Solution{
		Assignments: make([]*model.Assignment, len(s.Assignments)),
		Penalty:     s.Penalty,
	}
	for i, a := range s.Assignments {
		copied := *a
		clone.Assignments[i] = &copied
	}
	return clone
}

// LocalSearch 局部搜索优化器
// 无共享可变状态，同一进程内可并行运行多个实例；固定种子下结果确定
type LocalSearch struct {
	config  *Config
	catalog *constraint.Catalog
	rng     *rand.Rand
	tabu    *TabuList
}

// NewLocalSearch 创建局部搜索优化器
func NewLocalSearch(cfg *Config, cat *constraint.Catalog) *LocalSearch {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &LocalSearch{
		config:  cfg,
		catalog: cat,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		tabu:    NewTabuList(cfg.TabuSize),
	}
}

// Optimize 对初始方案做局部搜索改进
// 随时可中断：所有中间状态都是合法候选，最终返回的历史最优不会劣于初始方案
func (o *LocalSearch) Optimize(ctx context.Context, schedCtx *constraint.Context, initial []*model.Assignment) (*Solution, model.PostprocessStats, error) {
	start := time.Now()
	log := logger.NewEngineLogger(schedCtx.Input.DeptID.String())

	current := &Solution{Assignments: initial}
	current.Penalty = cost.PenaltyOf(schedCtx, o.catalog, current.Assignments)
	current = current.Clone()
	best := current.Clone()

	stats := model.PostprocessStats{InitialPenalty: current.Penalty}
	temperature := o.config.InitialTemp
	reason := "iteration_cap"

	for i := 0; i < o.config.MaxIterations; i++ {
		stats.Iterations = i + 1

		if ctx.Err() != nil {
			reason = "cancelled"
			break
		}
		if time.Since(start) > o.config.MaxTime {
			reason = "time_budget"
			break
		}
		if best.Penalty <= o.config.TargetPenalty {
			reason = "target_reached"
			break
		}

		neighbor := o.bestNeighbor(schedCtx, current)
		if neighbor == nil {
			continue
		}

		moveKey := hashAssignments(neighbor.Assignments)
		accept := false
		if neighbor.Penalty < current.Penalty {
			accept = true
		} else if !o.tabu.Contains(moveKey) {
			delta := neighbor.Penalty - current.Penalty
			if o.rng.Float64() < acceptProbability(delta, temperature) {
				accept = true
				stats.AcceptedWorse++
			}
		}

		if accept {
			current = neighbor
			o.tabu.Add(moveKey)
			if current.Penalty < best.Penalty {
				best = current.Clone()
				stats.Improvements++
				log.OptimizeProgress(i, current.Penalty, best.Penalty)
			}
		}

		temperature *= o.config.CoolingRate
	}

	stats.FinalPenalty = best.Penalty
	stats.Elapsed = time.Since(start)
	log.OptimizeTerminated(reason, stats.Iterations, stats.InitialPenalty, stats.FinalPenalty)
	return best, stats, nil
}

// bestNeighbor 生成一批邻域解并返回其中惩罚最小者（严格小于，保持确定性）
func (o *LocalSearch) bestNeighbor(schedCtx *constraint.Context, current *Solution) *Solution {
	var best *Solution
	for i := 0; i < o.config.NeighborhoodSize; i++ {
		n := o.generateNeighbor(schedCtx, current)
		if n == nil {
			continue
		}
		n.Penalty = cost.PenaltyOf(schedCtx, o.catalog, n.Assignments)
		if best == nil || n.Penalty < best.Penalty {
			best = n
		}
	}
	return best
}

// acceptProbability 模拟退火接受概率
func acceptProbability(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-delta / temperature)
}

// hashAssignments 计算分配快照的 FNV-1a 哈希作为禁忌键
func hashAssignments(assignments []*model.Assignment) uint64 {
	h := fnv.New64a()
	for _, a := range assignments {
		h.Write(a.EmployeeID[:])
		h.Write(a.ShiftID[:])
		h.Write([]byte(a.Date))
	}
	return h.Sum64()
}
