// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lunban/lunban/internal/database"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

// ScheduleRepository 排班表数据访问
// 同时实现换班工作流需要的 ScheduleStore 接口
type ScheduleRepository struct {
	db *database.DB
}

// NewScheduleRepository 创建排班表数据访问
func NewScheduleRepository(db *database.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// Create 持久化一个新排班表及其全部分配
func (r *ScheduleRepository) Create(ctx context.Context, s *model.Schedule) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO schedules (id, dept_id, start_date, end_date, status, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			s.ID, s.DeptID, s.Range.StartDate, s.Range.EndDate, s.Status, s.Version, s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("插入排班表失败: %w", err)
		}

		for _, a := range s.Assignments {
			if err := insertAssignment(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertAssignment(ctx context.Context, tx *sql.Tx, a *model.Assignment) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO assignments (id, schedule_id, employee_id, shift_id, date, is_locked,
			swap_request_id, swapped_from_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.ScheduleID, a.EmployeeID, a.ShiftID, a.Date, a.IsLocked,
		a.SwapRequestID, a.SwappedFromID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("插入分配失败: %w", err)
	}
	return nil
}

// GetSchedule 读取排班表（含分配）
func (r *ScheduleRepository) GetSchedule(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	s := &model.Schedule{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, dept_id, start_date, end_date, status, version, published_at, created_at, updated_at
		FROM schedules WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&s.ID, &s.DeptID, &s.Range.StartDate, &s.Range.EndDate, &s.Status, &s.Version,
		&s.PublishedAt, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("排班表", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("查询排班表失败: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, schedule_id, employee_id, shift_id, date, is_locked,
			swap_request_id, swapped_from_id, created_at, updated_at
		FROM assignments WHERE schedule_id = $1 AND deleted_at IS NULL
		ORDER BY date, employee_id`, id)
	if err != nil {
		return nil, fmt.Errorf("查询分配失败: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a := &model.Assignment{}
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.EmployeeID, &a.ShiftID, &a.Date, &a.IsLocked,
			&a.SwapRequestID, &a.SwappedFromID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描分配失败: %w", err)
		}
		s.Assignments = append(s.Assignments, a)
	}
	return s, rows.Err()
}

// SaveAssignments 持久化被修改的分配（换班落盘）
func (r *ScheduleRepository) SaveAssignments(ctx context.Context, scheduleID uuid.UUID, assignments []*model.Assignment) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		for _, a := range assignments {
			res, err := tx.ExecContext(ctx, `
				UPDATE assignments
				SET shift_id = $1, swap_request_id = $2, swapped_from_id = $3, updated_at = NOW()
				WHERE id = $4 AND schedule_id = $5`,
				a.ShiftID, a.SwapRequestID, a.SwappedFromID, a.ID, scheduleID,
			)
			if err != nil {
				return fmt.Errorf("更新分配失败: %w", err)
			}
			affected, _ := res.RowsAffected()
			if affected == 0 {
				return errors.NotFound("分配", a.ID.String())
			}
		}
		return nil
	})
}

// UpdateStatus 推进排班表生命周期（发布/归档）
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ScheduleStatus) error {
	query := `UPDATE schedules SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	if to == model.StatusPublished {
		query = `UPDATE schedules SET status = $1, published_at = NOW(), updated_at = NOW() WHERE id = $2 AND status = $3`
	}
	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("更新排班表状态失败: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return errors.ScheduleImmutable(string(from))
	}
	return nil
}

// ListByDept 列出部门的排班表（不含分配）
func (r *ScheduleRepository) ListByDept(ctx context.Context, deptID uuid.UUID) ([]*model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dept_id, start_date, end_date, status, version, published_at, created_at, updated_at
		FROM schedules WHERE dept_id = $1 AND deleted_at IS NULL
		ORDER BY start_date DESC`, deptID)
	if err != nil {
		return nil, fmt.Errorf("查询排班表列表失败: %w", err)
	}
	defer rows.Close()

	var out []*model.Schedule
	for rows.Next() {
		s := &model.Schedule{}
		if err := rows.Scan(&s.ID, &s.DeptID, &s.Range.StartDate, &s.Range.EndDate, &s.Status,
			&s.Version, &s.PublishedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("扫描排班表失败: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
