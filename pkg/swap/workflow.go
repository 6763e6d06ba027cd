// Package swap 提供换班请求的审批工作流
package swap

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
)

// EventType 换班事件类型
type EventType string

const (
	EventCreated   EventType = "swap_created"
	EventApproved  EventType = "swap_approved"
	EventRejected  EventType = "swap_rejected"
	EventCancelled EventType = "swap_cancelled"
)

// Event 换班通知事件
// 投递（推送/邮件）由外部协作方完成，这里只负责发出
type Event struct {
	Type       EventType `json:"type"`
	RequestID  uuid.UUID `json:"request_id"`
	Recipient  uuid.UUID `json:"recipient"`
	Actor      uuid.UUID `json:"actor"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier 通知发送接口
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NopNotifier 空通知器
type NopNotifier struct{}

// Notify 空实现
func (NopNotifier) Notify(context.Context, Event) {}

// Workflow 换班工作流
// 同一排班表的两单元格修改在单写者锁下进行，避免并发换班互相覆盖
type Workflow struct {
	store     Store
	schedules ScheduleStore
	notifier  Notifier

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewWorkflow 创建换班工作流
func NewWorkflow(store Store, schedules ScheduleStore, notifier Notifier) *Workflow {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Workflow{
		store:     store,
		schedules: schedules,
		notifier:  notifier,
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// scheduleLock 返回排班表级别的互斥锁
func (w *Workflow) scheduleLock(scheduleID uuid.UUID) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	if l, ok := w.locks[scheduleID]; ok {
		return l
	}
	l := &sync.Mutex{}
	w.locks[scheduleID] = l
	return l
}

// Create 创建换班请求
// 前置条件：原分配属于请求人且未锁定；不满足时在持久化之前拒绝
func (w *Workflow) Create(ctx context.Context, scheduleID, requesterID, targetID uuid.UUID, original, counterpart model.SwapCell, reason string) (*model.SwapRequest, error) {
	schedule, err := w.schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	orig := findCell(schedule, requesterID, original)
	if orig == nil {
		return nil, errors.AssignmentNotOwned(requesterID.String(), original.Date)
	}
	if orig.IsLocked {
		return nil, errors.AssignmentLocked(requesterID.String(), original.Date)
	}

	other := findCell(schedule, targetID, counterpart)
	if other == nil {
		return nil, errors.AssignmentNotOwned(targetID.String(), counterpart.Date)
	}
	if other.IsLocked {
		return nil, errors.AssignmentLocked(targetID.String(), counterpart.Date)
	}

	req := &model.SwapRequest{
		BaseModel:   model.NewBaseModel(),
		ScheduleID:  scheduleID,
		RequesterID: requesterID,
		TargetID:    targetID,
		Original:    original,
		Counterpart: counterpart,
		Reason:      reason,
		Status:      model.SwapPending,
	}
	if err := w.store.Put(ctx, req); err != nil {
		return nil, err
	}

	w.emit(ctx, EventCreated, req, requesterID, targetID)
	return req, nil
}

// Approve 批准换班并原子地交换两个单元格
func (w *Workflow) Approve(ctx context.Context, requestID, actorID uuid.UUID) (*model.SwapRequest, error) {
	req, err := w.store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	lock := w.scheduleLock(req.ScheduleID)
	lock.Lock()
	defer lock.Unlock()

	// 锁内重读最新的排班状态
	schedule, err := w.schedules.GetSchedule(ctx, req.ScheduleID)
	if err != nil {
		return nil, err
	}

	orig := findCell(schedule, req.RequesterID, req.Original)
	other := findCell(schedule, req.TargetID, req.Counterpart)
	if orig == nil {
		return nil, errors.AssignmentNotOwned(req.RequesterID.String(), req.Original.Date)
	}
	if other == nil {
		return nil, errors.AssignmentNotOwned(req.TargetID.String(), req.Counterpart.Date)
	}
	if orig.IsLocked || other.IsLocked {
		return nil, errors.AssignmentLocked(req.RequesterID.String(), req.Original.Date)
	}

	// 先迁移状态：终态请求再次批准在这里失败，排班表保持不变
	now := time.Now()
	updated, err := w.store.Transition(ctx, requestID, model.SwapPending, model.SwapApproved, func(r *model.SwapRequest) {
		r.DecidedBy = &actorID
		r.DecidedAt = &now
	})
	if err != nil {
		return nil, err
	}

	// 两单元格作为一个逻辑步骤交换
	origFrom, otherFrom := orig.ID, other.ID
	orig.ShiftID, other.ShiftID = other.ShiftID, orig.ShiftID
	orig.SwapRequestID = &requestID
	other.SwapRequestID = &requestID
	orig.SwappedFromID = &otherFrom
	other.SwappedFromID = &origFrom

	if err := w.schedules.SaveAssignments(ctx, schedule.ID, []*model.Assignment{orig, other}); err != nil {
		// 落盘失败：撤销内存交换并把请求补偿回待审批，保持排班与请求状态一致
		orig.ShiftID, other.ShiftID = other.ShiftID, orig.ShiftID
		orig.SwapRequestID, other.SwapRequestID = nil, nil
		orig.SwappedFromID, other.SwappedFromID = nil, nil
		if _, rbErr := w.store.Transition(ctx, requestID, model.SwapApproved, model.SwapPending, func(r *model.SwapRequest) {
			r.DecidedBy = nil
			r.DecidedAt = nil
		}); rbErr != nil {
			logger.NewEngineLogger(req.ScheduleID.String()).SwapRollbackFailed(requestID.String(), rbErr)
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "换班落盘失败")
	}

	w.emit(ctx, EventApproved, updated, actorID, updated.RequesterID)
	return updated, nil
}

// Reject 拒绝换班（只改请求状态，不触碰排班表）
func (w *Workflow) Reject(ctx context.Context, requestID, actorID uuid.UUID, note string) (*model.SwapRequest, error) {
	now := time.Now()
	updated, err := w.store.Transition(ctx, requestID, model.SwapPending, model.SwapRejected, func(r *model.SwapRequest) {
		r.DecidedBy = &actorID
		r.DecidedAt = &now
		r.DecisionNote = note
	})
	if err != nil {
		return nil, err
	}
	w.emit(ctx, EventRejected, updated, actorID, updated.RequesterID)
	return updated, nil
}

// Cancel 撤销换班（仅请求人可撤销，不触碰排班表）
func (w *Workflow) Cancel(ctx context.Context, requestID, actorID uuid.UUID) (*model.SwapRequest, error) {
	req, err := w.store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != actorID {
		return nil, errors.New(errors.CodeAssignmentNotOwned, "只有请求人可以撤销换班请求")
	}

	now := time.Now()
	updated, err := w.store.Transition(ctx, requestID, model.SwapPending, model.SwapCancelled, func(r *model.SwapRequest) {
		r.DecidedBy = &actorID
		r.DecidedAt = &now
	})
	if err != nil {
		return nil, err
	}
	w.emit(ctx, EventCancelled, updated, actorID, updated.TargetID)
	return updated, nil
}

// List 列出某排班表下的全部换班请求
func (w *Workflow) List(ctx context.Context, scheduleID uuid.UUID) ([]*model.SwapRequest, error) {
	return w.store.ListBySchedule(ctx, scheduleID)
}

// emit 发出通知事件并记录审计日志
func (w *Workflow) emit(ctx context.Context, typ EventType, req *model.SwapRequest, actor, recipient uuid.UUID) {
	log := logger.NewEngineLogger(req.ScheduleID.String())
	log.SwapTransition(req.ID.String(), string(model.SwapPending), string(req.Status), actor.String())
	w.notifier.Notify(ctx, Event{
		Type:       typ,
		RequestID:  req.ID,
		Recipient:  recipient,
		Actor:      actor,
		OccurredAt: time.Now(),
	})
}

// findCell 在排班表中查找 (员工, 日期, 班次) 对应的分配
func findCell(schedule *model.Schedule, empID uuid.UUID, cell model.SwapCell) *model.Assignment {
	for _, a := range schedule.Assignments {
		if a.EmployeeID == empID && a.Date == cell.Date && a.ShiftID == cell.ShiftID {
			return a
		}
	}
	return nil
}
