package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/lunban/lunban/internal/config"
	"github.com/lunban/lunban/internal/metrics"
	"github.com/lunban/lunban/internal/repository"
	"github.com/lunban/lunban/pkg/scheduler/engine"
	"github.com/lunban/lunban/pkg/stats"
	"github.com/lunban/lunban/pkg/swap"
)

// Handler HTTP处理器
type Handler struct {
	validate   *validator.Validate
	config     *config.Config
	repository *repository.Repositories
	translator ut.Translator
	workflow   *swap.Workflow
	metrics    *metrics.Registry

	Mux *chi.Mux
}

// NewHandler 创建HTTP处理器
func NewHandler(cfg *config.Config, repo *repository.Repositories, workflow *swap.Workflow) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zhLocale := zh.New()
	uni := ut.New(zhLocale, zhLocale)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:   validate,
		config:     cfg,
		repository: repo,
		translator: trans,
		workflow:   workflow,
		metrics:    metrics.Get(),

		Mux: chi.NewRouter(),
	}, nil
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logging)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/health", h.Health)
	if h.config.Metrics.Enabled {
		h.Mux.Handle(h.config.Metrics.Path, h.metrics.Handler())
	}

	h.Mux.Route("/api/v1", func(api chi.Router) {
		api.Route("/schedules", func(r chi.Router) {
			r.Get("/", h.ListSchedules)
			r.Post("/generate", h.Generate)
			r.Post("/validate", h.ValidateSchedule)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSchedule)
				r.Post("/optimize", h.Optimize)
				r.Post("/publish", h.Publish)
				r.Post("/archive", h.Archive)
				r.Route("/swaps", func(r chi.Router) {
					r.Get("/", h.ListSwaps)
					r.Post("/", h.CreateSwap)
				})
			})
		})

		api.Route("/swaps/{id}", func(r chi.Router) {
			r.Post("/approve", h.ApproveSwap)
			r.Post("/reject", h.RejectSwap)
			r.Post("/cancel", h.CancelSwap)
		})
	})
}

// engineOptions 把应用配置映射为引擎配置
func (h *Handler) engineOptions(goal stats.Goal) *engine.Options {
	opts := engine.DefaultOptions()
	opts.MaxIterations = h.config.Engine.MaxIterations
	opts.TimeLimit = h.config.Engine.TimeLimit
	opts.TabuSize = h.config.Engine.TabuSize
	opts.InitialTemp = h.config.Engine.InitialTemp
	opts.CoolingRate = h.config.Engine.CoolingRate
	opts.Seed = h.config.Engine.Seed
	if goal != "" {
		opts.Goal = goal
	}
	return opts
}
