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

// SwapRepository 换班请求数据访问
// 实现换班工作流的 Store 接口；状态迁移用条件更新保证原子性
type SwapRepository struct {
	db *database.DB
}

// NewSwapRepository 创建换班请求数据访问
func NewSwapRepository(db *database.DB) *SwapRepository {
	return &SwapRepository{db: db}
}

const swapColumns = `id, schedule_id, requester_id, target_id,
	original_date, original_shift_id, counterpart_date, counterpart_shift_id,
	reason, status, decided_by, decided_at, decision_note, created_at, updated_at`

// Get 按 ID 读取请求
func (r *SwapRepository) Get(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+swapColumns+` FROM swap_requests WHERE id = $1 AND deleted_at IS NULL`, id)
	req, err := scanSwap(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("换班请求", id.String())
	}
	return req, err
}

// Put 写入新请求
func (r *SwapRepository) Put(ctx context.Context, req *model.SwapRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO swap_requests (`+swapColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		req.ID, req.ScheduleID, req.RequesterID, req.TargetID,
		req.Original.Date, req.Original.ShiftID, req.Counterpart.Date, req.Counterpart.ShiftID,
		req.Reason, req.Status, req.DecidedBy, req.DecidedAt, req.DecisionNote,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("插入换班请求失败: %w", err)
	}
	return nil
}

// Transition 原子状态迁移
// 条件更新：当前状态不等于 from 时零行受影响，返回工作流状态错误
func (r *SwapRepository) Transition(ctx context.Context, id uuid.UUID, from, to model.SwapStatus, update func(*model.SwapRequest)) (*model.SwapRequest, error) {
	req, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	probe := *req
	probe.Status = to
	if update != nil {
		update(&probe)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE swap_requests
		SET status = $1, decided_by = $2, decided_at = $3, decision_note = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6`,
		to, probe.DecidedBy, probe.DecidedAt, probe.DecisionNote, id, from,
	)
	if err != nil {
		return nil, fmt.Errorf("更新换班请求失败: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		current, getErr := r.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, errors.WorkflowState(string(current.Status), string(to))
	}
	return &probe, nil
}

// ListBySchedule 列出某排班表下的请求
func (r *SwapRepository) ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*model.SwapRequest, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+swapColumns+` FROM swap_requests
		WHERE schedule_id = $1 AND deleted_at IS NULL ORDER BY created_at`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("查询换班请求失败: %w", err)
	}
	defer rows.Close()

	var out []*model.SwapRequest
	for rows.Next() {
		req, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// scanner 兼容 sql.Row 和 sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSwap(s scanner) (*model.SwapRequest, error) {
	req := &model.SwapRequest{}
	err := s.Scan(
		&req.ID, &req.ScheduleID, &req.RequesterID, &req.TargetID,
		&req.Original.Date, &req.Original.ShiftID, &req.Counterpart.Date, &req.Counterpart.ShiftID,
		&req.Reason, &req.Status, &req.DecidedBy, &req.DecidedAt, &req.DecisionNote,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}
