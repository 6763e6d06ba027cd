// Package model 定义轮班排班引擎的核心数据模型
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DateRange 排班周期的日期范围（闭区间）
type DateRange struct {
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// Days 按顺序展开范围内的所有日期
func (dr DateRange) Days() []string {
	start, err1 := time.Parse("2006-01-02", dr.StartDate)
	end, err2 := time.Parse("2006-01-02", dr.EndDate)
	if err1 != nil || err2 != nil || end.Before(start) {
		return nil
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

// Contains 检查日期是否在范围内
func (dr DateRange) Contains(date string) bool {
	return date >= dr.StartDate && date <= dr.EndDate
}

// NumDays 返回范围内的天数
func (dr DateRange) NumDays() int {
	return len(dr.Days())
}

// IsWeekend 判断日期字符串是否为周末
func IsWeekend(date string) bool {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISOWeek 返回日期所属的 ISO 周标识（如 2025-W07）
func ISOWeek(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// PrevDate 返回前一天日期
func PrevDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format("2006-01-02")
}

// NextDate 返回后一天日期
func NextDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}

// Weekday 返回日期的星期
func Weekday(date string) time.Weekday {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Sunday
	}
	return t.Weekday()
}
