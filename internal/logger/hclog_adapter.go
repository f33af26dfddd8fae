package logger

import (
	"io"
	"log"
	"log/slog"

	"github.com/hashicorp/go-hclog"
)

// HCLogAdapter adapts Logger to implement hashicorp/go-hclog.Logger interface.
// go-plugin clients log plugin stderr and lifecycle events through it.
type HCLogAdapter struct {
	logger *Logger
	name   string
	args   []interface{}
}

// NewHCLogAdapter creates a new HCLog adapter wrapping the default logger.
func NewHCLogAdapter() hclog.Logger {
	return &HCLogAdapter{
		logger: Default(),
		name:   "toolchain",
	}
}

func (h *HCLogAdapter) with(args []interface{}) []any {
	all := make([]any, 0, len(h.args)+len(args)+2)
	all = append(all, "logger", h.name)
	all = append(all, h.args...)
	all = append(all, args...)
	return all
}

// Log implementation
func (h *HCLogAdapter) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Trace, hclog.Debug:
		h.Debug(msg, args...)
	case hclog.Info:
		h.Info(msg, args...)
	case hclog.Warn:
		h.Warn(msg, args...)
	case hclog.Error:
		h.Error(msg, args...)
	}
}

func (h *HCLogAdapter) Trace(msg string, args ...interface{}) {
	h.logger.Debug(msg, h.with(args)...)
}

func (h *HCLogAdapter) Debug(msg string, args ...interface{}) {
	h.logger.Debug(msg, h.with(args)...)
}

func (h *HCLogAdapter) Info(msg string, args ...interface{}) {
	h.logger.Info(msg, h.with(args)...)
}

func (h *HCLogAdapter) Warn(msg string, args ...interface{}) {
	h.logger.Warn(msg, h.with(args)...)
}

func (h *HCLogAdapter) Error(msg string, args ...interface{}) {
	h.logger.Error(msg, h.with(args)...)
}

// IsTrace returns true if trace level is enabled
func (h *HCLogAdapter) IsTrace() bool {
	return false
}

func (h *HCLogAdapter) IsDebug() bool {
	return h.logger.Level() <= slog.LevelDebug
}

func (h *HCLogAdapter) IsInfo() bool {
	return h.logger.Level() <= slog.LevelInfo
}

func (h *HCLogAdapter) IsWarn() bool {
	return h.logger.Level() <= slog.LevelWarn
}

func (h *HCLogAdapter) IsError() bool {
	return true
}

func (h *HCLogAdapter) ImpliedArgs() []interface{} {
	return h.args
}

// With creates a new logger with additional context
func (h *HCLogAdapter) With(args ...interface{}) hclog.Logger {
	merged := make([]interface{}, 0, len(h.args)+len(args))
	merged = append(merged, h.args...)
	merged = append(merged, args...)
	return &HCLogAdapter{
		logger: h.logger,
		name:   h.name,
		args:   merged,
	}
}

func (h *HCLogAdapter) Name() string {
	return h.name
}

// Named creates a new logger with a name
func (h *HCLogAdapter) Named(name string) hclog.Logger {
	return &HCLogAdapter{
		logger: h.logger,
		name:   h.name + "." + name,
		args:   h.args,
	}
}

// ResetNamed creates a new logger with the given name, clearing parent names
func (h *HCLogAdapter) ResetNamed(name string) hclog.Logger {
	return &HCLogAdapter{
		logger: h.logger,
		name:   name,
		args:   h.args,
	}
}

// SetLevel sets the log level (no-op in this adapter)
func (h *HCLogAdapter) SetLevel(level hclog.Level) {}

func (h *HCLogAdapter) GetLevel() hclog.Level {
	switch l := h.logger.Level(); {
	case l <= slog.LevelDebug:
		return hclog.Debug
	case l <= slog.LevelInfo:
		return hclog.Info
	case l <= slog.LevelWarn:
		return hclog.Warn
	default:
		return hclog.Error
	}
}

// StandardLogger returns a standard library logger
func (h *HCLogAdapter) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.Default()
}

// StandardWriter returns a writer for standard logging
func (h *HCLogAdapter) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return io.Discard
}
