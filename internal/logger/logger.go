package logger

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var checkpackLogger atomic.Pointer[Logger]

func init() {
	checkpackLogger.Store(NewLogger())
}

type Logger struct {
	slogger *slog.Logger
	level   *slog.LevelVar
}

func NewLogger() *Logger {
	return &Logger{
		slogger: slog.Default(),
		level:   new(slog.LevelVar),
	}
}

// NewTextLogger builds a logger writing slog text records to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(level)
	return &Logger{
		slogger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})),
		level:   lv,
	}
}

func Default() *Logger {
	return checkpackLogger.Load()
}

// SetDefault replaces the package level logger.
func SetDefault(l *Logger) {
	checkpackLogger.Store(l)
}

func SetLogLevel(level slog.Level) {
	l := checkpackLogger.Load()
	l.level.Set(level)
	slog.SetLogLoggerLevel(level)
}

// slog wrapper

func Debug(msg string, args ...any) {
	checkpackLogger.Load().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	checkpackLogger.Load().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	checkpackLogger.Load().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	checkpackLogger.Load().Error(msg, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// With returns a logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
		level:   l.level,
	}
}

// Level returns the minimum level currently logged.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}
