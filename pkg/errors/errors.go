// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"

	// 排班引擎相关
	CodeDuplicateAlias    Code = "DUPLICATE_ALIAS"
	CodeUnresolvableAlias Code = "UNRESOLVABLE_ALIAS"
	CodeUnknownConstraint Code = "UNKNOWN_CONSTRAINT"
	CodeScheduleImmutable Code = "SCHEDULE_IMMUTABLE"

	// 换班工作流相关
	CodeWorkflowState      Code = "WORKFLOW_STATE"
	CodeAssignmentLocked   Code = "ASSIGNMENT_LOCKED"
	CodeAssignmentNotOwned Code = "ASSIGNMENT_NOT_OWNED"

	// 数据相关
	CodeDatabaseError  Code = "DATABASE_ERROR"
	CodeValidationFail Code = "VALIDATION_FAILED"
)

// AppError 应用错误
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus 错误码转HTTP状态码
func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidationFail, CodeDuplicateAlias,
		CodeUnresolvableAlias, CodeUnknownConstraint:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeWorkflowState, CodeAssignmentLocked, CodeScheduleImmutable:
		return http.StatusConflict
	case CodeAssignmentNotOwned:
		return http.StatusForbidden
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Is 检查错误是否为特定错误码
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus 获取HTTP状态码
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// 预定义错误
var (
	ErrNotFound     = New(CodeNotFound, "资源不存在")
	ErrInvalidInput = New(CodeInvalidInput, "输入参数无效")
	ErrInternal     = New(CodeInternal, "内部错误")
)

// InvalidInput 创建输入无效错误（致命，求解开始前拒绝）
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// DuplicateAlias 创建别名重复错误
func DuplicateAlias(kind, id string) *AppError {
	return New(CodeDuplicateAlias, fmt.Sprintf("%s '%s' 的别名重复", kind, id))
}

// NotFound 创建资源不存在错误
func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' 不存在", resource, id))
}

// UnknownConstraint 创建未知约束类型错误（对未知类型拒绝而不是忽略）
func UnknownConstraint(typ string) *AppError {
	return New(CodeUnknownConstraint, fmt.Sprintf("未知的约束类型: %s", typ))
}

// WorkflowState 创建换班工作流状态错误
// 对终态请求再次迁移时返回，排班表保持不变
func WorkflowState(from, to string) *AppError {
	return New(CodeWorkflowState, fmt.Sprintf("换班请求不允许从 %s 迁移到 %s", from, to))
}

// AssignmentLocked 创建排班锁定错误
func AssignmentLocked(empID, date string) *AppError {
	return New(CodeAssignmentLocked, fmt.Sprintf("员工 %s 在 %s 的排班已锁定，不可换班", empID, date))
}

// AssignmentNotOwned 创建排班归属错误
func AssignmentNotOwned(empID, date string) *AppError {
	return New(CodeAssignmentNotOwned, fmt.Sprintf("员工 %s 在 %s 没有对应的排班", empID, date))
}

// ScheduleImmutable 创建排班表不可变更错误
func ScheduleImmutable(status string) *AppError {
	return New(CodeScheduleImmutable, fmt.Sprintf("排班表状态为 %s，不允许结构性修改", status))
}
