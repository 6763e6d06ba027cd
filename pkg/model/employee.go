// Package model 定义轮班排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// WorkPattern 工作模式
type WorkPattern string

const (
	PatternThreeShift     WorkPattern = "three_shift"     // 三班制（白/小夜/大夜轮转）
	PatternNightIntensive WorkPattern = "night_intensive" // 夜班集中制
	PatternWeekdayOnly    WorkPattern = "weekday_only"    // 平日班（仅工作日）
)

// Employee 员工（排班输入，引擎不修改）
type Employee struct {
	BaseModel
	DeptID   uuid.UUID `json:"dept_id" db:"dept_id"`
	Name     string    `json:"name" db:"name"`
	Role     string    `json:"role" db:"role"` // 岗位角色，如 charge/staff/assistant
	Status   string    `json:"status" db:"status"`
	HireDate string    `json:"hire_date" db:"hire_date"`

	// 分组
	TeamID         *uuid.UUID `json:"team_id,omitempty" db:"team_id"`
	YearsOfService float64    `json:"years_of_service" db:"years_of_service"`

	// 排班相关
	Pattern             WorkPattern        `json:"pattern" db:"pattern"`
	ShiftPreferences    map[string]float64 `json:"shift_preferences,omitempty" db:"-"` // 班次代码 -> 偏好权重 [0,1]
	MaxConsecutiveDays  int                `json:"max_consecutive_days" db:"max_consecutive_days"`
	MaxConsecutiveNight int                `json:"max_consecutive_nights" db:"max_consecutive_nights"`
	GuaranteedOffDays   int                `json:"guaranteed_off_days" db:"guaranteed_off_days"`
}

// IsActive 检查员工是否在职
func (e *Employee) IsActive() bool {
	return e.Status == "" || e.Status == "active"
}

// PreferenceFor 返回员工对某班次代码的偏好权重（未配置返回 0.5 中性值）
func (e *Employee) PreferenceFor(shiftCode string) float64 {
	if e.ShiftPreferences == nil {
		return 0.5
	}
	if w, ok := e.ShiftPreferences[shiftCode]; ok {
		return w
	}
	return 0.5
}

// CareerGroup 年资组（按工龄区间划分，用于覆盖均衡约束）
type CareerGroup struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Name     string    `json:"name" db:"name"`
	Alias    string    `json:"alias" db:"alias"`
	MinYears float64   `json:"min_years" db:"min_years"`
	MaxYears float64   `json:"max_years" db:"max_years"`
}

// Matches 检查工龄是否落在本组区间内（闭区间）
func (g *CareerGroup) Matches(years float64) bool {
	return years >= g.MinYears && years <= g.MaxYears
}

// TeamPattern 团队排班模式（默认/禁用的班次序列与每班人力下限）
type TeamPattern struct {
	ID     uuid.UUID `json:"id" db:"id"`
	TeamID uuid.UUID `json:"team_id" db:"team_id"`
	Name   string    `json:"name" db:"name"`

	// 各班次类型的默认人力下限
	DayMin     int `json:"day_min" db:"day_min"`
	EveningMin int `json:"evening_min" db:"evening_min"`
	NightMin   int `json:"night_min" db:"night_min"`

	// 按班次代码的显式人力覆盖（优先于上面的类型下限）
	StaffOverrides map[string]int `json:"staff_overrides,omitempty" db:"-"`

	// 班次序列模式（代码串，如 "DDENN"）
	DefaultPatterns []string `json:"default_patterns,omitempty" db:"-"`
	AvoidPatterns   []string `json:"avoid_patterns,omitempty" db:"-"` // 如 "ND"（大夜接白班）
}

// SpecialRequest 特殊请求（指定日期的期望班次或休班）
type SpecialRequest struct {
	ID         uuid.UUID `json:"id" db:"id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Date       string    `json:"date" db:"date"`
	ShiftCode  string    `json:"shift_code" db:"shift_code"` // 期望的班次代码，O 表示期望休班
	Reason     string    `json:"reason,omitempty" db:"reason"`
}
