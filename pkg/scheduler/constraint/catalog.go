// Package constraint 定义约束接口、求解上下文和约束目录
package constraint

import (
	"sort"

	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

// Factory 按约束定义构造实现
// 对未知类型直接拒绝而不是忽略
type Factory func(def *model.Constraint) (Constraint, error)

// hardPriority 硬约束的可行性检查顺序
var hardPriority = map[model.ConstraintType]int{
	model.TypeSingleAssignment:   1,
	model.TypeMinRest:            2,
	model.TypeForbiddenSequence:  3,
	model.TypeMaxConsecutiveWork: 4,
	model.TypeWeeklyHoursCap:     5,
	model.TypeMinStaffing:        6,
}

// Catalog 约束目录
// 注册时即剔除未激活约束和零权重软约束，搜索和计分都不再感知它们
type Catalog struct {
	hard []Constraint
	soft []Constraint
}

// Build 从约束定义构建目录
func Build(defs []*model.Constraint, factory Factory) (*Catalog, error) {
	cat := &Catalog{}

	for _, def := range defs {
		if !def.Active {
			continue
		}
		if def.Kind == model.ConstraintSoft && def.Weight == 0 {
			continue
		}

		c, err := factory(def)
		if err != nil {
			return nil, err
		}

		switch c.Kind() {
		case model.ConstraintHard:
			cat.hard = append(cat.hard, c)
		case model.ConstraintSoft:
			cat.soft = append(cat.soft, c)
		default:
			return nil, errors.InvalidInput("constraints", "约束种类必须为 hard 或 soft")
		}
	}

	sort.SliceStable(cat.hard, func(i, j int) bool {
		return priorityOf(cat.hard[i].Type()) < priorityOf(cat.hard[j].Type())
	})
	sort.SliceStable(cat.soft, func(i, j int) bool {
		return cat.soft[i].Weight() > cat.soft[j].Weight()
	})

	return cat, nil
}

func priorityOf(t model.ConstraintType) int {
	if p, ok := hardPriority[t]; ok {
		return p
	}
	return 100
}

// Hard 返回硬约束（按优先级）
func (c *Catalog) Hard() []Constraint {
	return c.hard
}

// Soft 返回软约束（按权重降序）
func (c *Catalog) Soft() []Constraint {
	return c.soft
}

// Count 返回约束总数
func (c *Catalog) Count() int {
	return len(c.hard) + len(c.soft)
}

// CanAssign 检查加入一条分配是否仍满足所有硬约束
func (c *Catalog) CanAssign(ctx *Context, a *model.Assignment) (bool, string) {
	for _, h := range c.hard {
		if valid, _ := h.EvaluateAssignment(ctx, a); !valid {
			return false, h.Name()
		}
	}
	return true, ""
}

// EvaluateHard 评估全部硬约束
func (c *Catalog) EvaluateHard(ctx *Context) []model.ConstraintViolation {
	var all []model.ConstraintViolation
	for _, h := range c.hard {
		all = append(all, h.Evaluate(ctx)...)
	}
	return all
}

// EvaluateSoft 评估全部软约束
func (c *Catalog) EvaluateSoft(ctx *Context) []model.ConstraintViolation {
	var all []model.ConstraintViolation
	for _, s := range c.soft {
		all = append(all, s.Evaluate(ctx)...)
	}
	return all
}
