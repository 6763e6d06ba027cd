package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lunban/lunban/pkg/logger"
	"github.com/lunban/lunban/pkg/model"
	"github.com/lunban/lunban/pkg/scheduler/constraint"
	"github.com/lunban/lunban/pkg/scheduler/constraint/builtin"
	"github.com/lunban/lunban/pkg/scheduler/engine"
	"github.com/lunban/lunban/pkg/scheduler/normalizer"
	"github.com/lunban/lunban/pkg/stats"
	"github.com/lunban/lunban/pkg/validator"
)

// generateRequest 排班生成请求
type generateRequest struct {
	DeptID          uuid.UUID               `json:"dept_id" validate:"required"`
	Range           model.DateRange         `json:"range" validate:"required"`
	Employees       []*model.Employee       `json:"employees" validate:"required,min=1"`
	Shifts          []*model.Shift          `json:"shifts" validate:"required,min=1"`
	Constraints     []*model.Constraint     `json:"constraints"`
	TeamPattern     *model.TeamPattern      `json:"team_pattern"`
	CareerGroups    []*model.CareerGroup    `json:"career_groups"`
	SpecialRequests []*model.SpecialRequest `json:"special_requests"`
	Holidays        []string                `json:"holidays"`
	PrevOffAccruals map[uuid.UUID]int       `json:"prev_off_accruals"`
	Goal            string                  `json:"goal" validate:"omitempty,oneof=fairness preference coverage cost balanced"`
	Save            bool                    `json:"save"`
}

// Generate 生成排班表
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, err)
		return
	}

	eng := engine.New(h.engineOptions(stats.Goal(req.Goal)))
	start := time.Now()
	result, err := eng.Generate(r.Context(), &normalizer.Request{
		DeptID:          req.DeptID,
		Range:           req.Range,
		Employees:       req.Employees,
		Shifts:          req.Shifts,
		Constraints:     req.Constraints,
		TeamPattern:     req.TeamPattern,
		CareerGroups:    req.CareerGroups,
		SpecialRequests: req.SpecialRequests,
		Holidays:        req.Holidays,
		PrevOffAccruals: req.PrevOffAccruals,
	})
	h.metrics.ObserveDuration("lunban_solve_duration_seconds", "generate", time.Since(start))
	if err != nil {
		h.metrics.Inc("lunban_solve_total", "failed")
		h.appError(w, err)
		return
	}
	h.metrics.Inc("lunban_solve_total", string(result.Outcome))

	if req.Save {
		if err := h.repository.Schedules.Create(r.Context(), result.Schedule); err != nil {
			h.appError(w, err)
			return
		}
	}
	h.successResponse(w, "排班生成完成", result)
}

// optimizeRequest 排班优化请求
type optimizeRequest struct {
	Employees       []*model.Employee   `json:"employees" validate:"required,min=1"`
	Shifts          []*model.Shift      `json:"shifts" validate:"required,min=1"`
	Constraints     []*model.Constraint `json:"constraints"`
	TeamPattern     *model.TeamPattern  `json:"team_pattern"`
	Holidays        []string            `json:"holidays"`
	PrevOffAccruals map[uuid.UUID]int   `json:"prev_off_accruals"`
	Goal            string              `json:"goal" validate:"omitempty,oneof=fairness preference coverage cost balanced"`
	MaxIterations   int                 `json:"max_iterations" validate:"omitempty,min=1"`
	TargetScore     float64             `json:"target_score" validate:"omitempty,min=0,max=100"`
	PreserveLocked  bool                `json:"preserve_locked"`
}

// Optimize 优化已有排班表
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "无效的排班表ID")
		return
	}
	var req optimizeRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, err)
		return
	}

	schedule, err := h.repository.Schedules.GetSchedule(r.Context(), id)
	if err != nil {
		h.appError(w, err)
		return
	}

	eng := engine.New(h.engineOptions(stats.Goal(req.Goal)))
	start := time.Now()
	result, err := eng.Optimize(r.Context(), &engine.OptimizeRequest{
		Schedule:        schedule,
		Employees:       req.Employees,
		Shifts:          req.Shifts,
		Constraints:     req.Constraints,
		TeamPattern:     req.TeamPattern,
		Holidays:        req.Holidays,
		PrevOffAccruals: req.PrevOffAccruals,
		Goal:            stats.Goal(req.Goal),
		MaxIterations:   req.MaxIterations,
		TargetScore:     req.TargetScore,
		PreserveLocked:  req.PreserveLocked,
	})
	h.metrics.ObserveDuration("lunban_solve_duration_seconds", "optimize", time.Since(start))
	if err != nil {
		h.appError(w, err)
		return
	}

	if err := h.repository.Schedules.SaveAssignments(r.Context(), id, result.Schedule.Assignments); err != nil {
		h.appError(w, err)
		return
	}
	h.successResponse(w, "排班优化完成", result)
}

// validateRequest 排班校验请求
type validateRequest struct {
	Schedule    *model.Schedule     `json:"schedule" validate:"required"`
	Employees   []*model.Employee   `json:"employees" validate:"required,min=1"`
	Shifts      []*model.Shift      `json:"shifts" validate:"required,min=1"`
	Constraints []*model.Constraint `json:"constraints"`
}

// ValidateSchedule 校验一张排班表（不落库，纯检查）
// 附带约束定义时在结构检查之外逐条复查约束
func (h *Handler) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.badRequest(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, err)
		return
	}

	var cat *constraint.Catalog
	if len(req.Constraints) > 0 {
		built, err := constraint.Build(req.Constraints, builtin.New)
		if err != nil {
			h.appError(w, err)
			return
		}
		cat = built
	}

	report := validator.Validate(req.Schedule, req.Employees, req.Shifts, cat)
	logger.NewEngineLogger(req.Schedule.DeptID.String()).
		ValidationDone(req.Schedule.ID.String(), report.Total(), report.Score)
	if report.IsValid {
		h.metrics.Inc("lunban_validation_total", "valid")
	} else {
		h.metrics.Inc("lunban_validation_total", "invalid")
	}
	h.successResponse(w, "校验完成", report)
}

// ListSchedules 按部门列出排班表
func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	deptID, err := uuid.Parse(r.URL.Query().Get("dept_id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "无效的部门ID")
		return
	}
	schedules, err := h.repository.Schedules.ListByDept(r.Context(), deptID)
	if err != nil {
		h.appError(w, err)
		return
	}
	h.successResponse(w, "", schedules)
}

// GetSchedule 查询排班表
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "无效的排班表ID")
		return
	}
	schedule, err := h.repository.Schedules.GetSchedule(r.Context(), id)
	if err != nil {
		h.appError(w, err)
		return
	}
	h.successResponse(w, "", schedule)
}

// Publish 发布排班表
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transitionStatus(w, r, model.StatusDraft, model.StatusPublished, "排班表已发布")
}

// Archive 归档排班表
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	h.transitionStatus(w, r, model.StatusPublished, model.StatusArchived, "排班表已归档")
}

func (h *Handler) transitionStatus(w http.ResponseWriter, r *http.Request, from, to model.ScheduleStatus, message string) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "无效的排班表ID")
		return
	}
	if err := h.repository.Schedules.UpdateStatus(r.Context(), id, from, to); err != nil {
		h.appError(w, err)
		return
	}
	h.successResponse(w, message, nil)
}
