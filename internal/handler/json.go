package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/lunban/lunban/pkg/errors"
	"github.com/lunban/lunban/pkg/logger"
)

// Response 统一响应结构
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// readJSON 读取并解析请求体
func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	maxBytes := 1 << 20
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("请求体只能包含一个JSON对象")
	}
	return nil
}

// writeJSON 写出JSON响应
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// successResponse 成功响应
func (h *Handler) successResponse(w http.ResponseWriter, message string, data any) {
	if err := h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	}); err != nil {
		logger.Error().Err(err).Msg("写出响应失败")
	}
}

// errorResponse 错误响应
func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	if err := h.writeJSON(w, status, Response{
		Success: false,
		Message: message,
	}); err != nil {
		logger.Error().Err(err).Msg("写出响应失败")
	}
}

// badRequest 请求参数错误，校验错误翻译为中文
func (h *Handler) badRequest(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		h.errorResponse(w, http.StatusBadRequest, validationErrors[0].Translate(h.translator))
		return
	}
	h.errorResponse(w, http.StatusBadRequest, err.Error())
}

// appError 按错误码映射HTTP状态写出领域错误
func (h *Handler) appError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.errorResponse(w, appErr.HTTPStatus, appErr.Message)
		return
	}
	h.internalServerError(w, err)
}

// internalServerError 服务器内部错误
func (h *Handler) internalServerError(w http.ResponseWriter, err error) {
	logger.Error().Err(err).Msg("服务器内部错误")
	h.errorResponse(w, http.StatusInternalServerError, "服务器内部错误")
}
