// Package validator 提供对任意排班表的无状态审计
package validator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
)

// 结构性检查的权重（计分用）
const (
	weightDanglingRef = 1.0
	weightDuplicate   = 0.6
	weightWeeklyRest  = 0.3
)

// Report 审计报告
type Report struct {
	IsValid     bool                        `json:"is_valid"`
	Score       float64                     `json:"score"`
	Hard        []model.ConstraintViolation `json:"hard_violations"`
	Soft        []model.ConstraintViolation `json:"soft_violations"`
	Suggestions []string                    `json:"suggestions"`
}

// Total 返回违反总数
func (r *Report) Total() int {
	return len(r.Hard) + len(r.Soft)
}

// Validate 审计一个排班表（不要求由引擎生成）
// 逐项累积检查而不是短路；对同一排班表重复调用结果一致
func Validate(schedule *model.Schedule, employees []*model.Employee, shifts []*model.Shift, cat *constraint.Catalog) *Report {
	report := &Report{IsValid: true}

	empByID := make(map[uuid.UUID]*model.Employee, len(employees))
	for _, e := range employees {
		empByID[e.ID] = e
	}
	shiftByID := make(map[uuid.UUID]*model.Shift, len(shifts))
	for _, s := range shifts {
		shiftByID[s.ID] = s
	}

	totalWeight := weightDanglingRef + weightDuplicate + weightWeeklyRest
	violatedWeight := 0.0

	// 1. 引用完整性（critical）
	if vs := checkDanglingRefs(schedule, empByID, shiftByID); len(vs) > 0 {
		report.Hard = append(report.Hard, vs...)
		violatedWeight += weightDanglingRef
	}

	// 2. 重复分配（high）
	if vs := checkDuplicates(schedule, empByID); len(vs) > 0 {
		report.Hard = append(report.Hard, vs...)
		violatedWeight += weightDuplicate
	}

	// 3. 每 ISO 周至少一个休息日（soft/medium）
	if vs := checkWeeklyRest(schedule, employees, shiftByID); len(vs) > 0 {
		report.Soft = append(report.Soft, vs...)
		violatedWeight += weightWeeklyRest
	}

	// 4. 约束目录复查
	if cat != nil && cat.Count() > 0 {
		input := &normalizer.Normalized{
			DeptID:                schedule.DeptID,
			Range:                 schedule.Range,
			Employees:             employees,
			Shifts:                shifts,
			Holidays:              map[string]bool{},
			PrevOffAccruals:       map[uuid.UUID]int{},
			EmployeeAlias:         map[uuid.UUID]string{},
			AliasEmployee:         map[string]uuid.UUID{},
			TeamAlias:             map[uuid.UUID]string{},
			CareerGroupOf:         map[uuid.UUID]string{},
			RequiredStaffPerShift: map[string]int{},
		}
		for _, s := range shifts {
			if s.IsOffDuty() {
				continue
			}
			required := s.RequiredStaff
			if required < s.MinStaff {
				required = s.MinStaff
			}
			if required > 0 {
				input.RequiredStaffPerShift[s.Code] = required
			}
		}
		ctx := constraint.NewContext(input)
		ctx.SetAssignments(schedule.Assignments)

		for _, c := range cat.Hard() {
			totalWeight += c.Weight()
			if vs := c.Evaluate(ctx); len(vs) > 0 {
				report.Hard = append(report.Hard, vs...)
				violatedWeight += c.Weight()
			}
		}
		for _, c := range cat.Soft() {
			totalWeight += c.Weight()
			if vs := c.Evaluate(ctx); len(vs) > 0 {
				report.Soft = append(report.Soft, vs...)
				violatedWeight += c.Weight()
			}
		}
	}

	report.IsValid = len(report.Hard) == 0
	report.Score = 100 - violatedWeight/totalWeight*100
	if report.Score < 0 {
		report.Score = 0
	}
	report.Suggestions = buildSuggestions(append(append([]model.ConstraintViolation{}, report.Hard...), report.Soft...))
	return report
}

// checkDanglingRefs 检查分配引用的员工和班次都存在
func checkDanglingRefs(schedule *model.Schedule, emps map[uuid.UUID]*model.Employee, shifts map[uuid.UUID]*model.Shift) []model.ConstraintViolation {
	var violations []model.ConstraintViolation
	for _, a := range schedule.Assignments {
		if _, ok := emps[a.EmployeeID]; !ok {
			violations = append(violations, model.ConstraintViolation{
				ConstraintType: model.TypeSingleAssignment,
				Severity:       model.SeverityCritical,
				EmployeeIDs:    []uuid.UUID{a.EmployeeID},
				Dates:          []string{a.Date},
				Message:        fmt.Sprintf("分配引用了花名册之外的员工 %s", a.EmployeeID),
				Cost:           100,
			})
		}
		if _, ok := shifts[a.ShiftID]; !ok {
			violations = append(violations, model.ConstraintViolation{
				ConstraintType: model.TypeSingleAssignment,
				Severity:       model.SeverityCritical,
				Dates:          []string{a.Date},
				Message:        fmt.Sprintf("分配引用了不存在的班次 %s", a.ShiftID),
				Cost:           100,
			})
		}
	}
	return violations
}

// checkDuplicates 检查同一 (员工, 日期) 不出现重复分配
func checkDuplicates(schedule *model.Schedule, emps map[uuid.UUID]*model.Employee) []model.ConstraintViolation {
	counts := make(map[string]int)
	firstEmp := make(map[string]uuid.UUID)
	firstDate := make(map[string]string)
	var order []string

	for _, a := range schedule.Assignments {
		key := a.CellKey()
		if counts[key] == 0 {
			order = append(order, key)
			firstEmp[key] = a.EmployeeID
			firstDate[key] = a.Date
		}
		counts[key]++
	}

	var violations []model.ConstraintViolation
	for _, key := range order {
		if counts[key] <= 1 {
			continue
		}
		name := firstEmp[key].String()
		if e, ok := emps[firstEmp[key]]; ok {
			name = e.Name
		}
		violations = append(violations, model.ConstraintViolation{
			ConstraintType: model.TypeSingleAssignment,
			Severity:       model.SeverityHigh,
			EmployeeIDs:    []uuid.UUID{firstEmp[key]},
			Dates:          []string{firstDate[key]},
			Message:        fmt.Sprintf("员工 %s 在 %s 有 %d 条分配", name, firstDate[key], counts[key]),
			Cost:           60 * float64(counts[key]-1),
		})
	}
	return violations
}

// checkWeeklyRest 检查每员工每 ISO 周至少一个休息日
func checkWeeklyRest(schedule *model.Schedule, employees []*model.Employee, shifts map[uuid.UUID]*model.Shift) []model.ConstraintViolation {
	days := schedule.Range.Days()

	// 本周期内各 ISO 周包含的天数（不足 7 天的边缘周跳过检查）
	weekDays := make(map[string]int)
	for _, d := range days {
		weekDays[model.ISOWeek(d)]++
	}

	byEmpWeek := make(map[uuid.UUID]map[string]int)
	for _, a := range schedule.Assignments {
		s := shifts[a.ShiftID]
		if s == nil || s.IsOffDuty() {
			continue
		}
		if byEmpWeek[a.EmployeeID] == nil {
			byEmpWeek[a.EmployeeID] = make(map[string]int)
		}
		byEmpWeek[a.EmployeeID][model.ISOWeek(a.Date)]++
	}

	var weeks []string
	for w, n := range weekDays {
		if n == 7 {
			weeks = append(weeks, w)
		}
	}
	sort.Strings(weeks)

	var violations []model.ConstraintViolation
	for _, emp := range employees {
		for _, week := range weeks {
			if byEmpWeek[emp.ID][week] >= 7 {
				violations = append(violations, model.ConstraintViolation{
					ConstraintType: model.TypeMaxConsecutiveWork,
					Severity:       model.SeverityMedium,
					EmployeeIDs:    []uuid.UUID{emp.ID},
					Message:        fmt.Sprintf("员工 %s 在 %s 没有休息日", emp.Name, week),
					Cost:           30,
				})
			}
		}
	}
	return violations
}

// buildSuggestions 按违反类别生成改进建议（去重，稳定排序）
func buildSuggestions(violations []model.ConstraintViolation) []string {
	hints := map[model.ConstraintType]string{
		model.TypeSingleAssignment:   "检查重复或悬空的分配，确保每员工每日至多一个班次且引用有效",
		model.TypeMinRest:            "拉开相邻班次的间隔，保证法定最小休息时间",
		model.TypeForbiddenSequence:  "调整班次接续，避免大夜后直接接白班",
		model.TypeMaxConsecutiveWork: "在连续工作段中插入休息日",
		model.TypeWeeklyHoursCap:     "削减超时员工的周内班次",
		model.TypeMinStaffing:        "为人力不足的班次增补人员或下调最低人力要求",
		model.TypeShiftPreference:    "尽量按员工偏好表调整班次分配",
		model.TypeWeekendBalance:     "在员工之间重新分配周末和节假日班次",
		model.TypeCoverageBalance:    "让每个工作班次覆盖到各年资组",
		model.TypeOffBalance:         "向结余偏低的员工倾斜休息日",
		model.TypeAvoidPattern:       "消除团队模式中标记的禁用班次序列",
	}

	seen := make(map[string]bool)
	var out []string
	for _, v := range violations {
		hint, ok := hints[v.ConstraintType]
		if !ok || seen[hint] {
			continue
		}
		seen[hint] = true
		out = append(out, hint)
	}
	return out
}
