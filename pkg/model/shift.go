// Package model 定义轮班排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftType 班次类型
type ShiftType string

const (
	ShiftDay     ShiftType = "day"     // 白班
	ShiftEvening ShiftType = "evening" // 小夜班
	ShiftNight   ShiftType = "night"   // 大夜班
	ShiftOff     ShiftType = "off"     // 休班
	ShiftLeave   ShiftType = "leave"   // 请假/年假
	ShiftCustom  ShiftType = "custom"  // 自定义
)

// Shift 班次定义
type Shift struct {
	BaseModel
	DeptID    uuid.UUID `json:"dept_id" db:"dept_id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"` // 单字符代码，如 D/E/N/O/A/V
	Type      ShiftType `json:"type" db:"type"`
	StartTime string    `json:"start_time" db:"start_time"` // HH:MM
	EndTime   string    `json:"end_time" db:"end_time"`     // HH:MM
	Duration  int       `json:"duration" db:"duration"`     // 分钟
	Color     string    `json:"color,omitempty" db:"color"` // 仅用于前端展示，引擎忽略

	// 人力需求
	RequiredStaff int            `json:"required_staff" db:"required_staff"`
	MinStaff      int            `json:"min_staff" db:"min_staff"`
	MaxStaff      int            `json:"max_staff" db:"max_staff"`
	RequiredRoles map[string]int `json:"required_roles,omitempty" db:"-"` // 角色 -> 最少人数
}

// IsOffDuty 检查该班次是否为非工作班（休班/请假）
func (s *Shift) IsOffDuty() bool {
	return s.Type == ShiftOff || s.Type == ShiftLeave
}

// IsNight 检查是否为大夜班
func (s *Shift) IsNight() bool {
	return s.Type == ShiftNight
}

// DurationHours 返回班次时长（小时）
func (s *Shift) DurationHours() float64 {
	return float64(s.Duration) / 60.0
}

// ScheduleStatus 排班表状态
type ScheduleStatus string

const (
	StatusDraft     ScheduleStatus = "draft"
	StatusPublished ScheduleStatus = "published"
	StatusArchived  ScheduleStatus = "archived"
)

// Assignment 排班分配（员工 × 日期 -> 班次）
type Assignment struct {
	BaseModel
	ScheduleID uuid.UUID `json:"schedule_id" db:"schedule_id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	ShiftID    uuid.UUID `json:"shift_id" db:"shift_id"`
	Date       string    `json:"date" db:"date"`
	IsLocked   bool      `json:"is_locked" db:"is_locked"` // 锁定后不参与搜索移动

	// 换班关联
	SwapRequestID *uuid.UUID `json:"swap_request_id,omitempty" db:"swap_request_id"`
	SwappedFromID *uuid.UUID `json:"swapped_from_id,omitempty" db:"swapped_from_id"`
}

// CellKey 返回 (员工, 日期) 单元格键
func (a *Assignment) CellKey() string {
	return a.EmployeeID.String() + "@" + a.Date
}

// Schedule 排班表
type Schedule struct {
	BaseModel
	DeptID      uuid.UUID      `json:"dept_id" db:"dept_id"`
	Range       DateRange      `json:"range" db:"-"`
	Status      ScheduleStatus `json:"status" db:"status"`
	Version     int            `json:"version" db:"version"`
	PublishedAt *time.Time     `json:"published_at,omitempty" db:"published_at"`
	Assignments []*Assignment  `json:"assignments,omitempty" db:"-"`
}

// CanMutate 检查排班表是否还允许结构性修改（发布后即终态）
func (s *Schedule) CanMutate() bool {
	return s.Status == StatusDraft
}

// SwapStatus 换班请求状态
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapApproved  SwapStatus = "approved"
	SwapRejected  SwapStatus = "rejected"
	SwapCancelled SwapStatus = "cancelled"
)

// IsTerminal 检查状态是否为终态
func (s SwapStatus) IsTerminal() bool {
	return s == SwapApproved || s == SwapRejected || s == SwapCancelled
}

// SwapCell 换班涉及的单元格（日期 + 班次）
type SwapCell struct {
	Date    string    `json:"date"`
	ShiftID uuid.UUID `json:"shift_id"`
}

// SwapRequest 换班请求
// 创建后恰好迁移一次到终态，之后不可变
type SwapRequest struct {
	BaseModel
	ScheduleID  uuid.UUID  `json:"schedule_id" db:"schedule_id"`
	RequesterID uuid.UUID  `json:"requester_id" db:"requester_id"`
	TargetID    uuid.UUID  `json:"target_id" db:"target_id"`
	Original    SwapCell   `json:"original" db:"-"`
	Counterpart SwapCell   `json:"counterpart" db:"-"`
	Reason      string     `json:"reason,omitempty" db:"reason"`
	Status      SwapStatus `json:"status" db:"status"`

	// 决策元数据
	DecidedBy    *uuid.UUID `json:"decided_by,omitempty" db:"decided_by"`
	DecidedAt    *time.Time `json:"decided_at,omitempty" db:"decided_at"`
	DecisionNote string     `json:"decision_note,omitempty" db:"decision_note"`
}
