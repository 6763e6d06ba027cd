// Package logger 提供统一的日志框架
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

// Init 初始化日志
func Init(level string, pretty bool) {
	lvl := parseLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if pretty {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		log = zerolog.New(output).Level(lvl).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
	}
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug 调试日志
func Debug() *zerolog.Event {
	return log.Debug()
}

// Info 信息日志
func Info() *zerolog.Event {
	return log.Info()
}

// Warn 警告日志
func Warn() *zerolog.Event {
	return log.Warn()
}

// Error 错误日志
func Error() *zerolog.Event {
	return log.Error()
}

// Fatal 致命错误日志
func Fatal() *zerolog.Event {
	return log.Fatal()
}

// With 创建带字段的子日志
func With() zerolog.Context {
	return log.With()
}

// EngineLogger 排班引擎专用日志，携带部门和排班表上下文
type EngineLogger struct {
	logger zerolog.Logger
}

// NewEngineLogger 创建引擎日志
func NewEngineLogger(deptID string) *EngineLogger {
	return &EngineLogger{
		logger: log.With().Str("component", "engine").Str("dept_id", deptID).Logger(),
	}
}

// GenerationStarted 记录排班生成开始
func (l *EngineLogger) GenerationStarted(scheduleID string, days, employees int) {
	l.logger.Info().
		Str("schedule_id", scheduleID).
		Int("days", days).
		Int("employees", employees).
		Msg("排班生成开始")
}

// GenerationFinished 记录排班生成完成
func (l *EngineLogger) GenerationFinished(scheduleID string, score float64, elapsed time.Duration) {
	l.logger.Info().
		Str("schedule_id", scheduleID).
		Float64("score", score).
		Dur("elapsed", elapsed).
		Msg("排班生成完成")
}

// StaffingShortage 记录人手不足
func (l *EngineLogger) StaffingShortage(date, shiftCode string, required, assigned int) {
	l.logger.Warn().
		Str("date", date).
		Str("shift", shiftCode).
		Int("required", required).
		Int("assigned", assigned).
		Msg("人手不足")
}

// OptimizeProgress 记录优化进度
func (l *EngineLogger) OptimizeProgress(iteration int, penalty, best float64) {
	l.logger.Debug().
		Int("iteration", iteration).
		Float64("penalty", penalty).
		Float64("best", best).
		Msg("优化进度")
}

// OptimizeTerminated 记录优化终止
func (l *EngineLogger) OptimizeTerminated(reason string, iterations int, initial, final float64) {
	l.logger.Info().
		Str("reason", reason).
		Int("iterations", iterations).
		Float64("initial_penalty", initial).
		Float64("final_penalty", final).
		Msg("优化终止")
}

// ValidationDone 记录校验完成
func (l *EngineLogger) ValidationDone(scheduleID string, violations int, score float64) {
	l.logger.Info().
		Str("schedule_id", scheduleID).
		Int("violations", violations).
		Float64("score", score).
		Msg("排班校验完成")
}

// SwapRollbackFailed 记录换班落盘失败后补偿迁移也失败
func (l *EngineLogger) SwapRollbackFailed(requestID string, err error) {
	l.logger.Error().
		Str("request_id", requestID).
		Err(err).
		Msg("换班状态补偿失败，请求可能停留在已批准")
}

// SwapTransition 记录换班状态迁移
func (l *EngineLogger) SwapTransition(requestID, from, to, actor string) {
	l.logger.Info().
		Str("request_id", requestID).
		Str("from", from).
		Str("to", to).
		Str("actor", actor).
		Msg("换班状态迁移")
}
