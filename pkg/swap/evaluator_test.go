package swap

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/constraint/builtin"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
)

func evalContext(t *testing.T) (*constraint.Context, []*model.Employee, []*model.Shift) {
	t.Helper()

	shifts := []*model.Shift{
		{
			BaseModel: model.NewBaseModel(),
			Name:      "白班", Code: "D", Type: model.ShiftDay,
			StartTime: "08:00", EndTime: "16:00", Duration: 480,
		},
		{
			BaseModel: model.NewBaseModel(),
			Name:      "大夜", Code: "N", Type: model.ShiftNight,
			StartTime: "23:00", EndTime: "07:00", Duration: 480,
		},
		{
			BaseModel: model.NewBaseModel(),
			Name:      "休班", Code: "O", Type: model.ShiftOff,
		},
	}
	employees := []*model.Employee{
		{BaseModel: model.NewBaseModel(), Name: "甲"},
		{BaseModel: model.NewBaseModel(), Name: "乙"},
	}

	input, err := normalizer.Normalize(&normalizer.Request{
		DeptID:    uuid.New(),
		Range:     model.DateRange{StartDate: "2026-02-02", EndDate: "2026-02-08"},
		Employees: employees,
		Shifts:    shifts,
	})
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return constraint.NewContext(input), employees, shifts
}

func TestEvaluator_FeasibleSwap(t *testing.T) {
	ctx, employees, shifts := evalContext(t)
	day, night := shifts[0], shifts[1]

	// 甲周二白班，乙周四大夜，互不相邻
	ctx.SetAssignments([]*model.Assignment{
		{BaseModel: model.NewBaseModel(), EmployeeID: employees[0].ID, ShiftID: day.ID, Date: "2026-02-03"},
		{BaseModel: model.NewBaseModel(), EmployeeID: employees[1].ID, ShiftID: night.ID, Date: "2026-02-05"},
	})

	cat, err := builtin.DefaultCatalog(nil)
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	eval := NewEvaluator(cat).Evaluate(ctx, &model.SwapRequest{
		RequesterID: employees[0].ID,
		TargetID:    employees[1].ID,
		Original:    model.SwapCell{Date: "2026-02-03", ShiftID: day.ID},
		Counterpart: model.SwapCell{Date: "2026-02-05", ShiftID: night.ID},
	})
	if !eval.Feasible {
		t.Errorf("Feasible = false, expected true: %+v", eval.Issues)
	}
	// 模拟不改动原上下文
	if ctx.Assignments[0].ShiftID != day.ID {
		t.Error("评估改动了原排班")
	}
}

func TestEvaluator_InfeasibleSwap(t *testing.T) {
	ctx, employees, shifts := evalContext(t)
	day, night := shifts[0], shifts[1]

	// 换班后甲变为周二大夜、周三白班，触发大夜接白班禁序
	ctx.SetAssignments([]*model.Assignment{
		{BaseModel: model.NewBaseModel(), EmployeeID: employees[0].ID, ShiftID: day.ID, Date: "2026-02-03"},
		{BaseModel: model.NewBaseModel(), EmployeeID: employees[0].ID, ShiftID: day.ID, Date: "2026-02-04"},
		{BaseModel: model.NewBaseModel(), EmployeeID: employees[1].ID, ShiftID: night.ID, Date: "2026-02-03"},
	})

	cat, err := builtin.DefaultCatalog(nil)
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	eval := NewEvaluator(cat).Evaluate(ctx, &model.SwapRequest{
		RequesterID: employees[0].ID,
		TargetID:    employees[1].ID,
		Original:    model.SwapCell{Date: "2026-02-03", ShiftID: day.ID},
		Counterpart: model.SwapCell{Date: "2026-02-03", ShiftID: night.ID},
	})
	if eval.Feasible {
		t.Error("Feasible = true, expected false")
	}
	if len(eval.Issues) == 0 {
		t.Error("应报告硬约束问题")
	}
}

func TestEvaluator_MissingCell(t *testing.T) {
	ctx, employees, shifts := evalContext(t)
	day, night := shifts[0], shifts[1]

	cat, err := builtin.DefaultCatalog(nil)
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	eval := NewEvaluator(cat).Evaluate(ctx, &model.SwapRequest{
		RequesterID: employees[0].ID,
		TargetID:    employees[1].ID,
		Original:    model.SwapCell{Date: "2026-02-03", ShiftID: day.ID},
		Counterpart: model.SwapCell{Date: "2026-02-05", ShiftID: night.ID},
	})
	if eval.Feasible {
		t.Error("Feasible = true, expected false")
	}
}

func TestEvaluator_LockedCell(t *testing.T) {
	ctx, employees, shifts := evalContext(t)
	day, night := shifts[0], shifts[1]

	ctx.SetAssignments([]*model.Assignment{
		{BaseModel: model.NewBaseModel(), EmployeeID: employees[0].ID, ShiftID: day.ID, Date: "2026-02-03", IsLocked: true},
		{BaseModel: model.NewBaseModel(), EmployeeID: employees[1].ID, ShiftID: night.ID, Date: "2026-02-05"},
	})

	cat, err := builtin.DefaultCatalog(nil)
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	eval := NewEvaluator(cat).Evaluate(ctx, &model.SwapRequest{
		RequesterID: employees[0].ID,
		TargetID:    employees[1].ID,
		Original:    model.SwapCell{Date: "2026-02-03", ShiftID: day.ID},
		Counterpart: model.SwapCell{Date: "2026-02-05", ShiftID: night.ID},
	})
	if eval.Feasible {
		t.Error("Feasible = true, expected false")
	}
}
