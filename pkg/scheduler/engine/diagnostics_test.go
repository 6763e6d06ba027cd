package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
)

// diagInput 构造可直接使用的归一化输入（绕过 Normalize）
func diagInput(employees []*model.Employee, shifts []*model.Shift, rng model.DateRange, pattern *model.TeamPattern) *normalizer.Normalized {
	return &normalizer.Normalized{
		DeptID:                uuid.New(),
		Range:                 rng,
		Employees:             employees,
		Shifts:                shifts,
		TeamPattern:           pattern,
		Holidays:              map[string]bool{},
		PrevOffAccruals:       map[uuid.UUID]int{},
		EmployeeAlias:         map[uuid.UUID]string{},
		AliasEmployee:         map[string]uuid.UUID{},
		TeamAlias:             map[uuid.UUID]string{},
		CareerGroupOf:         map[uuid.UUID]string{},
		RequiredStaffPerShift: map[string]int{},
	}
}

func TestPatternBreaks(t *testing.T) {
	shifts := testShifts()
	byCode := make(map[string]*model.Shift, len(shifts))
	for _, s := range shifts {
		byCode[s.Code] = s
	}
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "张三"}
	rng := model.DateRange{StartDate: "2026-02-02", EndDate: "2026-02-04"}
	input := diagInput([]*model.Employee{emp}, shifts, rng,
		&model.TeamPattern{DefaultPatterns: []string{"DDE"}})

	cell := func(code, date string) *model.Assignment {
		return &model.Assignment{
			BaseModel:  model.NewBaseModel(),
			EmployeeID: emp.ID,
			ShiftID:    byCode[code].ID,
			Date:       date,
		}
	}

	// D D O 对 DDE：最优对齐下只有第三天偏离
	ctx := constraint.NewContext(input)
	ctx.SetAssignments([]*model.Assignment{
		cell("D", "2026-02-02"), cell("D", "2026-02-03"), cell("O", "2026-02-04"),
	})
	breaks := patternBreaks(ctx)
	if len(breaks) != 1 {
		t.Fatalf("偏离数 = %d, expected 1: %+v", len(breaks), breaks)
	}
	if b := breaks[0]; b.EmployeeID != emp.ID || b.Date != "2026-02-04" || b.Expected != "E" || b.Actual != "O" {
		t.Errorf("偏离 = %+v, expected 2026-02-04 期望 E 实际 O", b)
	}

	// 完全贴合模式时无偏离
	ctx = constraint.NewContext(input)
	ctx.SetAssignments([]*model.Assignment{
		cell("D", "2026-02-02"), cell("D", "2026-02-03"), cell("E", "2026-02-04"),
	})
	if got := patternBreaks(ctx); len(got) != 0 {
		t.Errorf("贴合模式不应有偏离, got %+v", got)
	}

	// 未配置默认模式时不产生诊断
	ctx = constraint.NewContext(diagInput([]*model.Employee{emp}, shifts, rng, nil))
	if got := patternBreaks(ctx); got != nil {
		t.Errorf("无默认模式时应返回 nil, got %+v", got)
	}
}

func TestGenerate_PatternBreakDiagnostics(t *testing.T) {
	req := testRequest(testEmployees(5), testShifts())
	req.TeamPattern = &model.TeamPattern{DefaultPatterns: []string{"DDEENNO"}}

	result, err := New(testOptions()).Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// 每日 1 休 × 7 天共需 7 个休班格，5 人各按模式只休 1 天，必然有人偏离
	if len(result.Diagnostics.PatternBreaks) == 0 {
		t.Error("网格偏离团队默认模式时应产生偏离诊断")
	}
	for _, b := range result.Diagnostics.PatternBreaks {
		if b.Date == "" || b.Expected == "" || b.Actual == "" {
			t.Errorf("偏离记录不完整: %+v", b)
		}
	}
}
