// Package repository 提供数据访问层
package repository

import (
	"github.com/lunban/lunban/internal/database"
)

// Repositories 数据访问层集合
type Repositories struct {
	Schedules *ScheduleRepository
	Swaps     *SwapRepository
}

// New 创建数据访问层
func New(db *database.DB) *Repositories {
	return &Repositories{
		Schedules: NewScheduleRepository(db),
		Swaps:     NewSwapRepository(db),
	}
}
