// Package swap 提供换班请求的审批工作流
package swap

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/model"
)

// Store 换班请求存储接口
// 注入而不是进程内单例，状态迁移由存储层保证原子性
type Store interface {
	// Get 按 ID 读取请求
	Get(ctx context.Context, id uuid.UUID) (*model.SwapRequest, error)

	// Put 写入新请求
	Put(ctx context.Context, req *model.SwapRequest) error

	// Transition 原子地把请求从 from 状态迁移到 to 状态
	// 当前状态不等于 from 时返回工作流状态错误
	Transition(ctx context.Context, id uuid.UUID, from, to model.SwapStatus, update func(*model.SwapRequest)) (*model.SwapRequest, error)

	// ListBySchedule 列出某排班表下的请求
	ListBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*model.SwapRequest, error)
}

// ScheduleStore 排班表存储接口（换班落盘的外部协作方）
type ScheduleStore interface {
	// GetSchedule 读取排班表（含分配）
	GetSchedule(ctx context.Context, id uuid.UUID) (*model.Schedule, error)

	// SaveAssignments 持久化两个被换班修改的单元格
	SaveAssignments(ctx context.Context, scheduleID uuid.UUID, assignments []*model.Assignment) error
}

// MemoryStore 内存实现（测试及单进程部署用）
type MemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*model.SwapRequest
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[uuid.UUID]*model.SwapRequest)}
}

// Get 按 ID 读取请求
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*model.SwapRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.items[id]
	if !ok {
		return nil, errors.NotFound("换班请求", id.String())
	}
	copied := *req
	return &copied, nil
}

// Put 写入新请求
func (s *MemoryStore) Put(_ context.Context, req *model.SwapRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *req
	s.items[req.ID] = &copied
	return nil
}

// Transition 原子状态迁移
func (s *MemoryStore) Transition(_ context.Context, id uuid.UUID, from, to model.SwapStatus, update func(*model.SwapRequest)) (*model.SwapRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.items[id]
	if !ok {
		return nil, errors.NotFound("换班请求", id.String())
	}
	if req.Status != from {
		return nil, errors.WorkflowState(string(req.Status), string(to))
	}

	req.Status = to
	if update != nil {
		update(req)
	}
	copied := *req
	return &copied, nil
}

// ListBySchedule 列出某排班表下的请求
func (s *MemoryStore) ListBySchedule(_ context.Context, scheduleID uuid.UUID) ([]*model.SwapRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.SwapRequest
	for _, req := range s.items {
		if req.ScheduleID == scheduleID {
			copied := *req
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
