package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/model"
)

// createSwapRequest 换班申请
type createSwapRequest struct {
	RequesterID uuid.UUID      `json:"requester_id" validate:"required"`
	TargetID    uuid.UUID      `json:"target_id" validate:"required"`
	Original    model.SwapCell `json:"original" validate:"required"`
	Counterpart model.SwapCell `json:"counterpart" validate:"required"`
	Reason      string         `json:"reason" validate:"max=500"`
}

// CreateSwap 发起换班申请
func (h *Handler) CreateSwap(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "无效的排班表ID")
		return
	}
	var req createSwapRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, err)
		return
	}

	swapReq, err := h.workflow.Create(r.Context(), scheduleID, req.RequesterID, req.TargetID, req.Original, req.Counterpart, req.Reason)
	if err != nil {
		h.appError(w, err)
		return
	}
	h.metrics.Inc("lunban_swap_transitions_total", "created")
	h.successResponse(w, "换班申请已创建", swapReq)
}

// ListSwaps 查询排班表的换班申请
func (h *Handler) ListSwaps(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "无效的排班表ID")
		return
	}
	requests, err := h.workflow.List(r.Context(), scheduleID)
	if err != nil {
		h.appError(w, err)
		return
	}
	h.successResponse(w, "", requests)
}

// decideSwapRequest 换班审批动作
type decideSwapRequest struct {
	ActorID uuid.UUID `json:"actor_id" validate:"required"`
	Note    string    `json:"note" validate:"max=500"`
}

// ApproveSwap 批准换班
func (h *Handler) ApproveSwap(w http.ResponseWriter, r *http.Request) {
	h.decideSwap(w, r, "approved", func(actor uuid.UUID, requestID uuid.UUID, _ string) (*model.SwapRequest, error) {
		return h.workflow.Approve(r.Context(), requestID, actor)
	})
}

// RejectSwap 驳回换班
func (h *Handler) RejectSwap(w http.ResponseWriter, r *http.Request) {
	h.decideSwap(w, r, "rejected", func(actor uuid.UUID, requestID uuid.UUID, note string) (*model.SwapRequest, error) {
		return h.workflow.Reject(r.Context(), requestID, actor, note)
	})
}

// CancelSwap 撤回换班（仅限申请人）
func (h *Handler) CancelSwap(w http.ResponseWriter, r *http.Request) {
	h.decideSwap(w, r, "cancelled", func(actor uuid.UUID, requestID uuid.UUID, _ string) (*model.SwapRequest, error) {
		return h.workflow.Cancel(r.Context(), requestID, actor)
	})
}

func (h *Handler) decideSwap(w http.ResponseWriter, r *http.Request, outcome string, decide func(actor, requestID uuid.UUID, note string) (*model.SwapRequest, error)) {
	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "无效的换班申请ID")
		return
	}
	var req decideSwapRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, err)
		return
	}

	swapReq, err := decide(req.ActorID, requestID, req.Note)
	if err != nil {
		h.appError(w, err)
		return
	}
	h.metrics.Inc("lunban_swap_transitions_total", outcome)
	h.successResponse(w, "换班申请已处理", swapReq)
}
