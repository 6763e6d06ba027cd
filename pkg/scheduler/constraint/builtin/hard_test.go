package builtin

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
)

var (
	dayShift = &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "白班", Code: "D", Type: model.ShiftDay,
		StartTime: "08:00", EndTime: "16:00", Duration: 480,
	}
	eveningShift = &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "小夜", Code: "E", Type: model.ShiftEvening,
		StartTime: "16:00", EndTime: "24:00", Duration: 480,
	}
	nightShift = &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "大夜", Code: "N", Type: model.ShiftNight,
		StartTime: "23:00", EndTime: "07:00", Duration: 480,
	}
	offShift = &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "休班", Code: "O", Type: model.ShiftOff,
	}
)

func testContext(employees []*model.Employee) *constraint.Context {
	input := &normalizer.Normalized{
		DeptID:                uuid.New(),
		Range:                 model.DateRange{StartDate: "2026-02-02", EndDate: "2026-02-08"},
		Employees:             employees,
		Shifts:                []*model.Shift{dayShift, eveningShift, nightShift, offShift},
		Holidays:              map[string]bool{},
		PrevOffAccruals:       map[uuid.UUID]int{},
		EmployeeAlias:         map[uuid.UUID]string{},
		AliasEmployee:         map[string]uuid.UUID{},
		TeamAlias:             map[uuid.UUID]string{},
		CareerGroupOf:         map[uuid.UUID]string{},
		RequiredStaffPerShift: map[string]int{},
	}
	return constraint.NewContext(input)
}

func assign(empID uuid.UUID, shift *model.Shift, date string) *model.Assignment {
	return &model.Assignment{
		BaseModel:  model.NewBaseModel(),
		EmployeeID: empID,
		ShiftID:    shift.ID,
		Date:       date,
	}
}

func TestRestHoursBetween(t *testing.T) {
	tests := []struct {
		name     string
		prev     *model.Shift
		next     *model.Shift
		expected float64
	}{
		{"白班接白班", dayShift, dayShift, 16},
		{"小夜接白班", eveningShift, dayShift, 8},
		{"大夜接白班（跨午夜）", nightShift, dayShift, 1},
		{"大夜接大夜", nightShift, nightShift, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rest := restHoursBetween(tt.prev, tt.next); rest != tt.expected {
				t.Errorf("restHoursBetween() = %v, expected %v", rest, tt.expected)
			}
		})
	}
}

func TestSingleAssignmentConstraint(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "张三"}
	ctx := testContext([]*model.Employee{emp})

	ctx.AddAssignment(assign(emp.ID, dayShift, "2026-02-02"))
	c := NewSingleAssignmentConstraint()

	if vs := c.Evaluate(ctx); len(vs) != 0 {
		t.Errorf("单班次不应有违反, got %d", len(vs))
	}

	// 单分配检查：同日再加一个班次应被拒绝
	dup := assign(emp.ID, eveningShift, "2026-02-02")
	if ok, _ := c.EvaluateAssignment(ctx, dup); ok {
		t.Error("同日第二个班次应被拒绝")
	}

	ctx.AddAssignment(dup)
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("重复分配应产生 1 条违反, got %d", len(vs))
	}
	if vs[0].Severity != model.SeverityCritical {
		t.Errorf("严重度 = %s, expected critical", vs[0].Severity)
	}
}

func TestMinRestConstraint(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "李四"}
	ctx := testContext([]*model.Employee{emp})

	// 大夜 07:00 下班后次日 08:00 又上白班，只休息 1 小时
	ctx.AddAssignment(assign(emp.ID, nightShift, "2026-02-02"))
	ctx.AddAssignment(assign(emp.ID, dayShift, "2026-02-03"))

	c := NewMinRestConstraint(11)
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("休息不足应产生 1 条违反, got %d", len(vs))
	}

	// 单分配检查同样拒绝
	probe := assign(emp.ID, dayShift, "2026-02-03")
	if ok, _ := c.EvaluateAssignment(ctx, probe); ok {
		t.Error("休息不足的分配应被拒绝")
	}

	// 充足休息不违反
	ctx2 := testContext([]*model.Employee{emp})
	ctx2.AddAssignment(assign(emp.ID, dayShift, "2026-02-02"))
	ctx2.AddAssignment(assign(emp.ID, dayShift, "2026-02-03"))
	if vs := c.Evaluate(ctx2); len(vs) != 0 {
		t.Errorf("16 小时休息不应违反, got %d", len(vs))
	}
}

func TestMinRestConstraint_DefaultHours(t *testing.T) {
	c := NewMinRestConstraint(0)
	if c.minHours != 11 {
		t.Errorf("默认最小休息 = %d, expected 11", c.minHours)
	}
}

func TestForbiddenSequenceConstraint(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "王五"}
	ctx := testContext([]*model.Employee{emp})

	ctx.AddAssignment(assign(emp.ID, nightShift, "2026-02-02"))
	ctx.AddAssignment(assign(emp.ID, dayShift, "2026-02-03"))

	c := NewForbiddenSequenceConstraint([]string{"ND"})
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("N 接 D 应产生 1 条违反, got %d", len(vs))
	}

	// 反向接续不触发
	ctx2 := testContext([]*model.Employee{emp})
	ctx2.AddAssignment(assign(emp.ID, dayShift, "2026-02-02"))
	ctx2.AddAssignment(assign(emp.ID, nightShift, "2026-02-03"))
	if vs := c.Evaluate(ctx2); len(vs) != 0 {
		t.Errorf("D 接 N 不应违反, got %d", len(vs))
	}
}

func TestMaxConsecutiveConstraint(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "赵六"}
	ctx := testContext([]*model.Employee{emp})

	// 连续 5 个白班
	for _, d := range []string{"2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05", "2026-02-06"} {
		ctx.AddAssignment(assign(emp.ID, dayShift, d))
	}

	c := NewMaxConsecutiveConstraint(4, 0)
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("连续 5 天超过上限 4 应产生 1 条违反, got %d", len(vs))
	}

	// 再往后追加第 6 天应被单分配检查拒绝
	probe := assign(emp.ID, dayShift, "2026-02-07")
	if ok, _ := c.EvaluateAssignment(ctx, probe); ok {
		t.Error("延长连续段的分配应被拒绝")
	}
}

func TestMaxConsecutiveConstraint_EmployeeFallback(t *testing.T) {
	emp := &model.Employee{
		BaseModel:          model.NewBaseModel(),
		Name:               "钱七",
		MaxConsecutiveDays: 2,
	}
	ctx := testContext([]*model.Employee{emp})
	for _, d := range []string{"2026-02-02", "2026-02-03", "2026-02-04"} {
		ctx.AddAssignment(assign(emp.ID, dayShift, d))
	}

	// 参数为零时回退到员工自身上限
	c := NewMaxConsecutiveConstraint(0, 0)
	if vs := c.Evaluate(ctx); len(vs) != 1 {
		t.Errorf("员工自身上限 2 天应产生 1 条违反, got %d", len(vs))
	}
}

func TestMaxConsecutiveConstraint_Nights(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "孙八"}
	ctx := testContext([]*model.Employee{emp})
	for _, d := range []string{"2026-02-02", "2026-02-03", "2026-02-04"} {
		ctx.AddAssignment(assign(emp.ID, nightShift, d))
	}

	c := NewMaxConsecutiveConstraint(0, 2)
	if vs := c.Evaluate(ctx); len(vs) != 1 {
		t.Errorf("连续 3 个大夜超过上限 2 应产生 1 条违反, got %d", len(vs))
	}
}

func TestWeeklyHoursConstraint(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "周九"}
	ctx := testContext([]*model.Employee{emp})

	// 同一 ISO 周内 6 个 8 小时班 = 48 小时
	for _, d := range []string{"2026-02-02", "2026-02-03", "2026-02-04", "2026-02-05", "2026-02-06", "2026-02-07"} {
		ctx.AddAssignment(assign(emp.ID, dayShift, d))
	}

	c := NewWeeklyHoursConstraint(40)
	if vs := c.Evaluate(ctx); len(vs) != 1 {
		t.Errorf("周工时 48 超过上限 40 应产生 1 条违反, got %d", len(vs))
	}

	// 加一个班会再超，单分配检查拒绝
	probe := assign(emp.ID, dayShift, "2026-02-08")
	if ok, _ := c.EvaluateAssignment(ctx, probe); ok {
		t.Error("超过周工时上限的分配应被拒绝")
	}

	// 宽上限不违反
	loose := NewWeeklyHoursConstraint(52)
	if vs := loose.Evaluate(ctx); len(vs) != 0 {
		t.Errorf("周工时 48 未超 52 不应违反, got %d", len(vs))
	}
}

func TestMinStaffingConstraint(t *testing.T) {
	emps := []*model.Employee{
		{BaseModel: model.NewBaseModel(), Name: "甲"},
		{BaseModel: model.NewBaseModel(), Name: "乙"},
	}
	ctx := testContext(emps)
	ctx.Input.Range = model.DateRange{StartDate: "2026-02-02", EndDate: "2026-02-02"}
	ctx.Input.RequiredStaffPerShift["D"] = 2

	ctx.AddAssignment(assign(emps[0].ID, dayShift, "2026-02-02"))

	c := NewMinStaffingConstraint()
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("人力缺口应产生 1 条违反, got %d", len(vs))
	}
	if vs[0].Severity != model.SeverityCritical {
		t.Errorf("严重度 = %s, expected critical", vs[0].Severity)
	}

	ctx.AddAssignment(assign(emps[1].ID, dayShift, "2026-02-02"))
	if vs := c.Evaluate(ctx); len(vs) != 0 {
		t.Errorf("人力补齐后不应违反, got %d", len(vs))
	}
}

func TestMinStaffingConstraint_RoleMix(t *testing.T) {
	charge := &model.Employee{BaseModel: model.NewBaseModel(), Name: "组长", Role: "charge"}
	staff := &model.Employee{BaseModel: model.NewBaseModel(), Name: "组员", Role: "staff"}

	roleShift := &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "白班", Code: "D", Type: model.ShiftDay,
		StartTime: "08:00", EndTime: "16:00", Duration: 480,
		RequiredRoles: map[string]int{"charge": 1},
	}

	input := &normalizer.Normalized{
		DeptID:                uuid.New(),
		Range:                 model.DateRange{StartDate: "2026-02-02", EndDate: "2026-02-02"},
		Employees:             []*model.Employee{charge, staff},
		Shifts:                []*model.Shift{roleShift, offShift},
		Holidays:              map[string]bool{},
		PrevOffAccruals:       map[uuid.UUID]int{},
		EmployeeAlias:         map[uuid.UUID]string{},
		AliasEmployee:         map[string]uuid.UUID{},
		TeamAlias:             map[uuid.UUID]string{},
		CareerGroupOf:         map[uuid.UUID]string{},
		RequiredStaffPerShift: map[string]int{},
	}
	ctx := constraint.NewContext(input)

	// 只有组员上班，缺组长
	ctx.AddAssignment(&model.Assignment{
		BaseModel: model.NewBaseModel(), EmployeeID: staff.ID, ShiftID: roleShift.ID, Date: "2026-02-02",
	})

	c := NewMinStaffingConstraint()
	if vs := c.Evaluate(ctx); len(vs) != 1 {
		t.Fatalf("缺少角色配比应产生 1 条违反, got %d", len(vs))
	}

	ctx.AddAssignment(&model.Assignment{
		BaseModel: model.NewBaseModel(), EmployeeID: charge.ID, ShiftID: roleShift.ID, Date: "2026-02-02",
	})
	if vs := c.Evaluate(ctx); len(vs) != 0 {
		t.Errorf("角色补齐后不应违反, got %d", len(vs))
	}
}

func TestMinStaffingConstraint_MaxStaff(t *testing.T) {
	emps := []*model.Employee{
		{BaseModel: model.NewBaseModel(), Name: "甲"},
		{BaseModel: model.NewBaseModel(), Name: "乙"},
	}
	capped := &model.Shift{
		BaseModel: model.NewBaseModel(),
		Name:      "白班", Code: "D", Type: model.ShiftDay,
		StartTime: "08:00", EndTime: "16:00", Duration: 480,
		RequiredStaff: 1, MaxStaff: 1,
	}
	input := &normalizer.Normalized{
		DeptID:                uuid.New(),
		Range:                 model.DateRange{StartDate: "2026-02-02", EndDate: "2026-02-02"},
		Employees:             emps,
		Shifts:                []*model.Shift{capped, offShift},
		Holidays:              map[string]bool{},
		PrevOffAccruals:       map[uuid.UUID]int{},
		EmployeeAlias:         map[uuid.UUID]string{},
		AliasEmployee:         map[string]uuid.UUID{},
		TeamAlias:             map[uuid.UUID]string{},
		CareerGroupOf:         map[uuid.UUID]string{},
		RequiredStaffPerShift: map[string]int{"D": 1},
	}
	ctx := constraint.NewContext(input)
	ctx.AddAssignment(assign(emps[0].ID, capped, "2026-02-02"))

	c := NewMinStaffingConstraint()
	if vs := c.Evaluate(ctx); len(vs) != 0 {
		t.Errorf("满员但未超编不应违反, got %d", len(vs))
	}

	// 已在网格内的分配重新评估不应被重复计数
	if ok, _ := c.EvaluateAssignment(ctx, ctx.Assignments[0]); !ok {
		t.Error("已计入的分配不应被误判为超编")
	}

	// 满员后再加人应被拒绝
	extra := assign(emps[1].ID, capped, "2026-02-02")
	if ok, _ := c.EvaluateAssignment(ctx, extra); ok {
		t.Error("超出人数上限的分配应被拒绝")
	}

	ctx.AddAssignment(extra)
	vs := c.Evaluate(ctx)
	if len(vs) != 1 {
		t.Fatalf("超编应产生 1 条违反, got %d", len(vs))
	}
	if vs[0].Severity != model.SeverityHigh {
		t.Errorf("严重度 = %s, expected high", vs[0].Severity)
	}
}

func TestSingleAssignmentConstraint_StableOrder(t *testing.T) {
	emp := &model.Employee{BaseModel: model.NewBaseModel(), Name: "张三"}
	ctx := testContext([]*model.Employee{emp})

	// 乱序插入两天的重复分配
	ctx.AddAssignment(assign(emp.ID, dayShift, "2026-02-05"))
	ctx.AddAssignment(assign(emp.ID, eveningShift, "2026-02-05"))
	ctx.AddAssignment(assign(emp.ID, dayShift, "2026-02-03"))
	ctx.AddAssignment(assign(emp.ID, eveningShift, "2026-02-03"))

	c := NewSingleAssignmentConstraint()
	first := c.Evaluate(ctx)
	if len(first) != 2 {
		t.Fatalf("违反数 = %d, expected 2", len(first))
	}
	if first[0].Dates[0] != "2026-02-03" || first[1].Dates[0] != "2026-02-05" {
		t.Errorf("违反应按日期升序: %s, %s", first[0].Dates[0], first[1].Dates[0])
	}

	for i := 0; i < 10; i++ {
		if again := c.Evaluate(ctx); !reflect.DeepEqual(first, again) {
			t.Fatal("重复评估的违反顺序应一致")
		}
	}
}
