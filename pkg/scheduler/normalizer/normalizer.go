// Package normalizer 将异构的排班输入转换为规范的求解器输入
package normalizer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

// 这些班次代码不参与人力需求（休班/年假/休假）
var excludedStaffingCodes = map[string]bool{
	"A": true,
	"O": true,
	"V": true,
}

// Request 原始排班请求
type Request struct {
	DeptID          uuid.UUID
	Range           model.DateRange
	Employees       []*model.Employee
	Shifts          []*model.Shift
	Constraints     []*model.Constraint
	TeamPattern     *model.TeamPattern
	CareerGroups    []*model.CareerGroup
	SpecialRequests []*model.SpecialRequest
	Holidays        []string
	PrevOffAccruals map[uuid.UUID]int
}

// Normalized 规范化后的求解器输入
type Normalized struct {
	DeptID          uuid.UUID
	Range           model.DateRange
	Employees       []*model.Employee
	Shifts          []*model.Shift
	Constraints     []*model.Constraint
	TeamPattern     *model.TeamPattern
	SpecialRequests []*model.SpecialRequest
	Holidays        map[string]bool
	PrevOffAccruals map[uuid.UUID]int

	// 别名映射（双射，按输入顺序稳定编号）
	EmployeeAlias map[uuid.UUID]string
	AliasEmployee map[string]uuid.UUID
	TeamAlias     map[uuid.UUID]string

	// 员工 -> 年资组别名（按工龄区间首次匹配）
	CareerGroupOf map[uuid.UUID]string

	// 班次代码 -> 所需人力（显式覆盖优先于团队模式的类型下限）
	RequiredStaffPerShift map[string]int
}

// alphabet 别名字母表，超出后回退为编号别名
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// aliasAt 返回第 i 个别名（0-based）
func aliasAt(prefix string, i int) string {
	if i < len(alphabet) {
		return string(alphabet[i])
	}
	return fmt.Sprintf("%s%d", prefix, i+1)
}

// Normalize 规范化排班请求
// 别名重复或引用无法解析时返回致命输入错误，不进入搜索阶段
func Normalize(req *Request) (*Normalized, error) {
	if req == nil {
		return nil, errors.InvalidInput("request", "请求为空")
	}
	if len(req.Range.Days()) == 0 {
		return nil, errors.InvalidInput("range", "日期范围为空或起止颠倒")
	}
	if len(req.Employees) == 0 {
		return nil, errors.InvalidInput("employees", "员工列表为空")
	}
	if len(req.Shifts) == 0 {
		return nil, errors.InvalidInput("shifts", "班次目录为空")
	}

	n := &Normalized{
		DeptID:                req.DeptID,
		Range:                 req.Range,
		Employees:             req.Employees,
		Shifts:                req.Shifts,
		Constraints:           req.Constraints,
		TeamPattern:           req.TeamPattern,
		SpecialRequests:       req.SpecialRequests,
		Holidays:              make(map[string]bool, len(req.Holidays)),
		PrevOffAccruals:       make(map[uuid.UUID]int, len(req.PrevOffAccruals)),
		EmployeeAlias:         make(map[uuid.UUID]string, len(req.Employees)),
		AliasEmployee:         make(map[string]uuid.UUID, len(req.Employees)),
		TeamAlias:             make(map[uuid.UUID]string),
		CareerGroupOf:         make(map[uuid.UUID]string),
		RequiredStaffPerShift: make(map[string]int),
	}

	for _, h := range req.Holidays {
		n.Holidays[h] = true
	}
	for id, v := range req.PrevOffAccruals {
		n.PrevOffAccruals[id] = v
	}

	if err := n.assignEmployeeAliases(req.Employees); err != nil {
		return nil, err
	}
	n.assignTeamAliases(req.Employees)

	if err := n.resolveCareerGroups(req.Employees, req.CareerGroups); err != nil {
		return nil, err
	}

	n.resolveRequiredStaff(req.Shifts, req.TeamPattern)

	if err := n.checkSpecialRequests(req.SpecialRequests); err != nil {
		return nil, err
	}

	return n, nil
}

// assignEmployeeAliases 按输入顺序分配员工别名
func (n *Normalized) assignEmployeeAliases(employees []*model.Employee) error {
	for i, emp := range employees {
		if _, dup := n.EmployeeAlias[emp.ID]; dup {
			return errors.DuplicateAlias("员工", emp.ID.String())
		}
		alias := aliasAt("E", i)
		n.EmployeeAlias[emp.ID] = alias
		n.AliasEmployee[alias] = emp.ID
	}
	return nil
}

// assignTeamAliases 按首次出现顺序分配团队别名
func (n *Normalized) assignTeamAliases(employees []*model.Employee) {
	idx := 0
	for _, emp := range employees {
		if emp.TeamID == nil {
			continue
		}
		if _, ok := n.TeamAlias[*emp.TeamID]; ok {
			continue
		}
		n.TeamAlias[*emp.TeamID] = aliasAt("T", idx)
		idx++
	}
}

// resolveCareerGroups 按工龄区间查找年资组（首个匹配生效）
func (n *Normalized) resolveCareerGroups(employees []*model.Employee, groups []*model.CareerGroup) error {
	if len(groups) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if g.Alias == "" {
			return errors.InvalidInput("career_groups", fmt.Sprintf("年资组 '%s' 缺少别名", g.Name))
		}
		if seen[g.Alias] {
			return errors.DuplicateAlias("年资组", g.Alias)
		}
		seen[g.Alias] = true
	}

	for _, emp := range employees {
		for _, g := range groups {
			if g.Matches(emp.YearsOfService) {
				n.CareerGroupOf[emp.ID] = g.Alias
				break
			}
		}
	}
	return nil
}

// resolveRequiredStaff 解析每班所需人力
// 优先级：显式覆盖 > 团队模式的类型下限 > 班次自带的 required_staff（不低于 min_staff）
func (n *Normalized) resolveRequiredStaff(shifts []*model.Shift, pattern *model.TeamPattern) {
	for _, s := range shifts {
		if s.IsOffDuty() || excludedStaffingCodes[s.Code] {
			continue
		}

		required := s.RequiredStaff
		if required < s.MinStaff {
			required = s.MinStaff
		}
		if pattern != nil {
			switch s.Type {
			case model.ShiftDay:
				if pattern.DayMin > 0 {
					required = pattern.DayMin
				}
			case model.ShiftEvening:
				if pattern.EveningMin > 0 {
					required = pattern.EveningMin
				}
			case model.ShiftNight:
				if pattern.NightMin > 0 {
					required = pattern.NightMin
				}
			}
			if override, ok := pattern.StaffOverrides[s.Code]; ok {
				required = override
			}
		}

		if required > 0 {
			n.RequiredStaffPerShift[s.Code] = required
		}
	}
}

// checkSpecialRequests 校验特殊请求的引用可解析
func (n *Normalized) checkSpecialRequests(requests []*model.SpecialRequest) error {
	codes := make(map[string]bool, len(n.Shifts))
	for _, s := range n.Shifts {
		codes[s.Code] = true
	}

	for _, r := range requests {
		if _, ok := n.EmployeeAlias[r.EmployeeID]; !ok {
			return errors.New(errors.CodeUnresolvableAlias,
				fmt.Sprintf("特殊请求引用了花名册之外的员工 %s", r.EmployeeID))
		}
		if !n.Range.Contains(r.Date) {
			return errors.InvalidInput("special_requests",
				fmt.Sprintf("日期 %s 不在排班周期内", r.Date))
		}
		if r.ShiftCode != "" && !codes[r.ShiftCode] {
			return errors.New(errors.CodeUnresolvableAlias,
				fmt.Sprintf("特殊请求引用了不存在的班次代码 %s", r.ShiftCode))
		}
	}
	return nil
}

// ShiftByCode 按代码查找班次
func (n *Normalized) ShiftByCode(code string) *model.Shift {
	for _, s := range n.Shifts {
		if s.Code == code {
			return s
		}
	}
	return nil
}

// OffShift 返回休班班次（类型为 off 的第一个班次）
func (n *Normalized) OffShift() *model.Shift {
	for _, s := range n.Shifts {
		if s.Type == model.ShiftOff {
			return s
		}
	}
	return nil
}

// WorkingShifts 返回需要人力的工作班次（保持输入顺序）
func (n *Normalized) WorkingShifts() []*model.Shift {
	var out []*model.Shift
	for _, s := range n.Shifts {
		if s.IsOffDuty() || excludedStaffingCodes[s.Code] {
			continue
		}
		out = append(out, s)
	}
	return out
}
