package builtin

import (
	"math"
	"testing"

	"github.com/lunban/lunban/pkg/model"
)

func TestShiftPreferenceConstraint(t *testing.T) {
	emp := &model.Employee{
		BaseModel:        model.NewBaseModel(),
		Name:             "张三",
		ShiftPreferences: map[string]float64{"D": 1.0, "N": 0.0},
	}
	ctx := testContext([]*model.Employee{emp})

	// 完全命中偏好，无偏差
	ctx.AddAssignment(assign(emp.ID, dayShift, "2026-02-02"))
	c := NewShiftPreferenceConstraint(0.6)
	if vs := c.Evaluate(ctx); len(vs) != 0 {
		t.Errorf("完全命中偏好不应有违反, got %d", len(vs))
	}

	// 排到最不想上的大夜
	ctx.AddAssignment(assign(emp.ID, nightShift, "2026-02-03"))
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("偏好偏差应产生 1 条违反, got %d", len(vs))
	}
	// 偏差 1.0 × 权重 0.6
	if math.Abs(vs[0].Cost-0.6) > 1e-9 {
		t.Errorf("Cost = %v, expected 0.6", vs[0].Cost)
	}
}

func TestWeekendBalanceConstraint(t *testing.T) {
	empA := &model.Employee{BaseModel: model.NewBaseModel(), Name: "甲"}
	empB := &model.Employee{BaseModel: model.NewBaseModel(), Name: "乙"}
	ctx := testContext([]*model.Employee{empA, empB})

	// 甲包揽周末两天，乙一个周末班都没有
	ctx.AddAssignment(assign(empA.ID, dayShift, "2026-02-07"))
	ctx.AddAssignment(assign(empA.ID, dayShift, "2026-02-08"))
	ctx.AddAssignment(assign(empB.ID, dayShift, "2026-02-03"))

	c := NewWeekendBalanceConstraint(0.8)
	vs := c.Evaluate(ctx)
	// 平均 1，偏差各 1，容差 1 内不惩罚
	if len(vs) != 0 {
		t.Errorf("偏差在容差内不应违反, got %d", len(vs))
	}

	// 甲再加节假日班拉大差距
	ctx.Input.Holidays["2026-02-04"] = true
	ctx.AddAssignment(assign(empA.ID, dayShift, "2026-02-04"))
	vs = c.Evaluate(ctx)
	if len(vs) != 2 {
		t.Errorf("失衡后甲乙都应被标记, got %d", len(vs))
	}
}

func TestCoverageBalanceConstraint(t *testing.T) {
	empJ := &model.Employee{BaseModel: model.NewBaseModel(), Name: "新手"}
	empS := &model.Employee{BaseModel: model.NewBaseModel(), Name: "资深"}
	ctx := testContext([]*model.Employee{empJ, empS})
	ctx.Input.Range = model.DateRange{StartDate: "2026-02-02", EndDate: "2026-02-02"}
	ctx.Input.RequiredStaffPerShift["D"] = 2
	ctx.Input.CareerGroupOf[empJ.ID] = "J"
	ctx.Input.CareerGroupOf[empS.ID] = "S"

	// 两个新手组之外无人，当日 D 班只有 J 组
	ctx.AddAssignment(assign(empJ.ID, dayShift, "2026-02-02"))

	c := NewCoverageBalanceConstraint(0.5)
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("缺组覆盖应产生 1 条违反, got %d", len(vs))
	}

	ctx.AddAssignment(assign(empS.ID, dayShift, "2026-02-02"))
	if vs := c.Evaluate(ctx); len(vs) != 0 {
		t.Errorf("两组都覆盖后不应违反, got %d", len(vs))
	}
}

func TestCoverageBalanceConstraint_SkipsSmallGroups(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "独苗"}
	ctx := testContext([]*model.Employee{emp})
	ctx.Input.CareerGroupOf[emp.ID] = "J"

	c := NewCoverageBalanceConstraint(0.5)
	if vs := c.Evaluate(ctx); vs != nil {
		t.Errorf("只有一个年资组时不应评估, got %d", len(vs))
	}
}

func TestOffBalanceConstraint(t *testing.T) {
	empA := &model.Employee{BaseModel: model.NewBaseModel(), Name: "甲", GuaranteedOffDays: 2}
	empB := &model.Employee{BaseModel: model.NewBaseModel(), Name: "乙", GuaranteedOffDays: 2}
	ctx := testContext([]*model.Employee{empA, empB})

	// 甲休 4 天乙休 0 天：结余 +2 和 -2，偏离平均 2 超过容差 1
	for _, d := range []string{"2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05"} {
		ctx.AddAssignment(assign(empA.ID, offShift, d))
	}

	c := NewOffBalanceConstraint(0.7, 1)
	vs := c.Evaluate(ctx)
	if len(vs) != 2 {
		t.Fatalf("结余失衡应标记两人, got %d", len(vs))
	}
	// 超出容差 1 天，代价 = 权重 × 超出量
	if math.Abs(vs[0].Cost-0.7) > 1e-9 {
		t.Errorf("Cost = %v, expected 0.7", vs[0].Cost)
	}
}

func TestOffBalanceConstraint_CarriedOver(t *testing.T) {
	empA := &model.Employee{BaseModel: model.NewBaseModel(), Name: "甲", GuaranteedOffDays: 1}
	empB := &model.Employee{BaseModel: model.NewBaseModel(), Name: "乙", GuaranteedOffDays: 1}
	ctx := testContext([]*model.Employee{empA, empB})

	// 本周期休假相同，但甲带着上期 +3 的结转
	ctx.Input.PrevOffAccruals[empA.ID] = 3
	ctx.AddAssignment(assign(empA.ID, offShift, "2026-02-02"))
	ctx.AddAssignment(assign(empB.ID, offShift, "2026-02-02"))

	c := NewOffBalanceConstraint(0.7, 1)
	if vs := c.Evaluate(ctx); len(vs) != 2 {
		t.Errorf("结转应计入累计结余, got %d 条违反", len(vs))
	}
}

func TestAvoidPatternConstraint(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "丙"}
	ctx := testContext([]*model.Employee{emp})

	ctx.AddAssignment(assign(emp.ID, nightShift, "2026-02-02"))
	ctx.AddAssignment(assign(emp.ID, nightShift, "2026-02-03"))
	ctx.AddAssignment(assign(emp.ID, dayShift, "2026-02-04"))

	c := NewAvoidPatternConstraint(0.4, []string{"NND"})
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("NND 序列应产生 1 条违反, got %d", len(vs))
	}
	if vs[0].Dates[0] != "2026-02-02" {
		t.Errorf("违反起始日期 = %s, expected 2026-02-02", vs[0].Dates[0])
	}

	// 无模式时不评估
	empty := NewAvoidPatternConstraint(0.4, nil)
	if vs := empty.Evaluate(ctx); vs != nil {
		t.Errorf("无禁用序列时应返回 nil, got %d", len(vs))
	}
}
