package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lunban/lunban/pkg/logger"
)

// logging 请求日志与请求计数
func (h *Handler) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		h.metrics.Inc("lunban_http_requests_total", r.Method)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("http请求")
	})
}

// recoverer 捕获处理器panic，避免单个请求拖垮进程
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("处理器panic")
				h.errorResponse(w, http.StatusInternalServerError, "服务器内部错误")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Health 健康检查
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.successResponse(w, "ok", map[string]string{
		"app": h.config.App.Name,
		"env": h.config.App.Env,
	})
}
