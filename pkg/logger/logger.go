// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

type runIDKey struct{}

// WithRunID 把一次求解运行的关联 ID 写入 context，供 WithContext 提取。
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// WithContext 从上下文创建日志器，携带本次求解运行的关联 ID（如果有）。
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	if runID, ok := ctx.Value(runIDKey{}).(string); ok && runID != "" {
		l = l.With().Str("run_id", runID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// WithFields 添加多个字段
func WithFields(fields map[string]interface{}) *zerolog.Logger {
	ctx := Get().With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	l := ctx.Logger()
	return &l
}

// ComponentLogger 是引擎各组件（resourcegate、icpmp、solverdriver 等）
// 共用的结构化日志器，按组件名打标签。
type ComponentLogger struct {
	base *zerolog.Logger
}

// NewComponentLogger 创建带 component 标签的日志器。
func NewComponentLogger(component string) *ComponentLogger {
	l := Get().With().Str("component", component).Logger()
	return &ComponentLogger{base: &l}
}

// SolveStart 记录一次求解运行的起始规模。
func (l *ComponentLogger) SolveStart(runID string, employees, slots int) {
	l.base.Info().
		Str("run_id", runID).
		Int("employees", employees).
		Int("slots", slots).
		Msg("开始求解")
}

// ConstraintViolation 记录约束违反。
func (l *ComponentLogger) ConstraintViolation(constraint, details string) {
	l.base.Warn().
		Str("constraint", constraint).
		Str("details", details).
		Msg("约束违反")
}

// RatioAttempt 记录严格遵从率自动搜索中一次候选比例的尝试结果。
func (l *ComponentLogger) RatioAttempt(runID string, ratio float64, feasible bool, unmetCount int) {
	l.base.Info().
		Str("run_id", runID).
		Float64("ratio", ratio).
		Bool("feasible", feasible).
		Int("unmet_count", unmetCount).
		Msg("遵从率候选尝试")
}

// SolveComplete 记录一次求解运行的完成情况。
func (l *ComponentLogger) SolveComplete(runID string, duration time.Duration, status string) {
	l.base.Info().
		Str("run_id", runID).
		Dur("duration", duration).
		Str("status", status).
		Msg("求解完成")
}
