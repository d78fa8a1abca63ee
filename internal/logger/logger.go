package logger

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var levelStrings = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l LogLevel) String() string {
	if s, ok := levelStrings[l]; ok {
		return s
	}
	return "UNKNOWN"
}

func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR (any case) to a LogLevel
func ParseLevel(level string) (LogLevel, error) {
	for l, s := range levelStrings {
		if strings.EqualFold(strings.TrimSpace(level), s) {
			return l, nil
		}
	}
	return INFO, errors.Errorf("unknown log level %q", level)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Logger writes structured JSON lines through zap. Entries below ERROR go to
// stdout, ERROR goes to stderr.
type Logger struct {
	zap   *zap.Logger
	level zap.AtomicLevel
}

// NewLogger creates a new logger instance
func NewLogger(minLevel LogLevel) *Logger {
	return newLogger(minLevel, zapcore.Lock(os.Stdout), zapcore.Lock(os.Stderr))
}

func newLogger(minLevel LogLevel, out, errOut zapcore.WriteSyncer) *Logger {
	level := zap.NewAtomicLevelAt(minLevel.zapLevel())

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.MessageKey = "message"
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	low := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l < zapcore.ErrorLevel
	})
	high := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return level.Enabled(l) && l >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, out, low),
		zapcore.NewCore(encoder, errOut, high),
	)

	return &Logger{
		// skip log and the Debug/Info/Warn/Error wrapper
		zap:   zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2), zap.Fields(zap.Int("pid", os.Getpid()))),
		level: level,
	}
}

// Default logger instance (INFO level)
var defaultLogger = NewLogger(INFO)

func fields(context map[string]interface{}) []zap.Field {
	if len(context) == 0 {
		return nil
	}

	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		v := context[k]
		if err, ok := v.(error); ok {
			out = append(out, zap.String(k, err.Error()))
			if st, ok := err.(stackTracer); ok {
				out = append(out, zap.String(k+"_stack", strings.TrimSpace(fmt.Sprintf("%+v", st.StackTrace()))))
			}
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

func (l *Logger) log(level LogLevel, message string, context []map[string]interface{}) {
	var ctx map[string]interface{}
	if len(context) > 0 {
		ctx = context[0]
	}
	if ce := l.zap.Check(level.zapLevel(), message); ce != nil {
		ce.Write(fields(ctx)...)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(message string, context ...map[string]interface{}) {
	l.log(DEBUG, message, context)
}

// Info logs an info message
func (l *Logger) Info(message string, context ...map[string]interface{}) {
	l.log(INFO, message, context)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, context ...map[string]interface{}) {
	l.log(WARN, message, context)
}

// Error logs an error message
func (l *Logger) Error(message string, context ...map[string]interface{}) {
	l.log(ERROR, message, context)
}

// SetMinLevel changes the minimum level at runtime
func (l *Logger) SetMinLevel(level LogLevel) {
	l.level.SetLevel(level.zapLevel())
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Package-level convenience functions using default logger. They call log
// directly so the caller skip matches the methods.

// Debug logs a debug message using the default logger
func Debug(message string, context ...map[string]interface{}) {
	defaultLogger.log(DEBUG, message, context)
}

// Info logs an info message using the default logger
func Info(message string, context ...map[string]interface{}) {
	defaultLogger.log(INFO, message, context)
}

// Warn logs a warning message using the default logger
func Warn(message string, context ...map[string]interface{}) {
	defaultLogger.log(WARN, message, context)
}

// Error logs an error message using the default logger
func Error(message string, context ...map[string]interface{}) {
	defaultLogger.log(ERROR, message, context)
}

// SetMinLevel sets the minimum log level for the default logger
func SetMinLevel(level LogLevel) {
	defaultLogger.SetMinLevel(level)
}

// Sync flushes the default logger
func Sync() error {
	return defaultLogger.Sync()
}
