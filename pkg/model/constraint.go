// Package model 定义轮班排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// ConstraintKind 约束种类
type ConstraintKind string

const (
	ConstraintHard ConstraintKind = "hard" // 硬约束（必须满足）
	ConstraintSoft ConstraintKind = "soft" // 软约束（尽量满足）
)

// ConstraintCategory 约束类别
type ConstraintCategory string

const (
	CategoryLegal       ConstraintCategory = "legal"       // 法定
	CategoryContractual ConstraintCategory = "contractual" // 合同
	CategoryOperational ConstraintCategory = "operational" // 运营
	CategoryPreference  ConstraintCategory = "preference"  // 偏好
	CategoryFairness    ConstraintCategory = "fairness"    // 公平性
)

// ConstraintType 约束类型标识（决定 Params 中哪个变体生效）
type ConstraintType string

const (
	// 硬约束类型
	TypeSingleAssignment   ConstraintType = "single_assignment_per_day"
	TypeMinRest            ConstraintType = "min_rest_hours"
	TypeForbiddenSequence  ConstraintType = "forbidden_shift_sequence"
	TypeMaxConsecutiveWork ConstraintType = "max_consecutive_work"
	TypeWeeklyHoursCap     ConstraintType = "weekly_hours_cap"
	TypeMinStaffing        ConstraintType = "min_staffing"

	// 软约束类型
	TypeShiftPreference ConstraintType = "shift_preference"
	TypeWeekendBalance  ConstraintType = "weekend_holiday_balance"
	TypeCoverageBalance ConstraintType = "group_coverage_balance"
	TypeOffBalance      ConstraintType = "off_day_balance"
	TypeAvoidPattern    ConstraintType = "avoid_pattern"
)

// ConstraintParams 约束参数（带类型的变体，按 ConstraintType 取用对应字段组）
// 取代原系统中的无类型 config map，便于穷举匹配、对未知类型直接拒绝
type ConstraintParams struct {
	// min_rest_hours
	MinRestHours int `json:"min_rest_hours,omitempty"`

	// forbidden_shift_sequence：禁止的班次代码对，如 ["ND"] 表示大夜接白班
	ForbiddenSequences []string `json:"forbidden_sequences,omitempty"`

	// max_consecutive_work
	MaxConsecutiveDays   int `json:"max_consecutive_days,omitempty"`
	MaxConsecutiveNights int `json:"max_consecutive_nights,omitempty"`

	// weekly_hours_cap
	MaxWeeklyHours float64 `json:"max_weekly_hours,omitempty"`

	// group_coverage_balance / off_day_balance
	ToleranceDays float64 `json:"tolerance_days,omitempty"`
	TolerancePct  float64 `json:"tolerance_pct,omitempty"`

	// avoid_pattern：额外的禁用序列（与团队模式中的合并）
	Patterns []string `json:"patterns,omitempty"`
}

// Constraint 约束定义（目录条目）
type Constraint struct {
	ID       uuid.UUID          `json:"id" db:"id"`
	Name     string             `json:"name" db:"name"`
	Type     ConstraintType     `json:"type" db:"type"`
	Kind     ConstraintKind     `json:"kind" db:"kind"`
	Category ConstraintCategory `json:"category" db:"category"`
	Weight   float64            `json:"weight" db:"weight"` // 软约束权重 [0,1]，硬约束恒为 1
	Active   bool               `json:"active" db:"active"`
	Params   ConstraintParams   `json:"params" db:"-"`
}

// Severity 违反严重度
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// ConstraintViolation 约束违反记录
type ConstraintViolation struct {
	ConstraintID   uuid.UUID      `json:"constraint_id,omitempty"`
	ConstraintType ConstraintType `json:"constraint_type"`
	Severity       Severity       `json:"severity"`
	EmployeeIDs    []uuid.UUID    `json:"employee_ids,omitempty"`
	Dates          []string       `json:"dates,omitempty"`
	Message        string         `json:"message"`
	Cost           float64        `json:"cost"` // 计分用的数值代价
}
