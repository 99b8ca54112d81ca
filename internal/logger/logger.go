// Package logger provides the structured log sink and per-run metrics for venue-scraper.
//
// Components never log through package globals. Each one receives a Logger and
// writes structured entries (timestamp, level, message, fields) through it. The
// default implementation encodes JSON lines with zap.
//
// Example usage:
//
//	log := logger.New(logger.LevelInfo, os.Stderr)
//	log.Info("Fetched article", logger.Fields{
//	    "url":   articleURL,
//	    "bytes": len(html),
//	})
//
//	log.Error("Article fetch failed", logger.Fields{"url": articleURL}, err)
package logger

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger is the sink every component writes diagnostics to
type Logger interface {
	Debug(message string, fields Fields)
	Info(message string, fields Fields)
	Warn(message string, fields Fields)
	Error(message string, fields Fields, err error)
}

// ParseLevel converts a configured level name (case-insensitive) into a Level
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug, nil
	case LevelInfo, "":
		return LevelInfo, nil
	case LevelWarn, "WARNING":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level: %q", s)
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// ZapLogger is a Logger backed by a zap.Logger
type ZapLogger struct {
	z *zap.Logger
}

// New creates a JSON logger writing to w. Entries below level are discarded.
func New(level Level, w io.Writer) *ZapLogger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.LevelKey = "level"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		level.zapLevel(),
	)
	return &ZapLogger{z: zap.New(core)}
}

// Sync flushes any buffered entries
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

// Debug logs a debug message with optional structured fields.
func (l *ZapLogger) Debug(message string, fields Fields) {
	l.z.Debug(message, toZap(fields, nil)...)
}

// Info logs an informational message with optional structured fields.
func (l *ZapLogger) Info(message string, fields Fields) {
	l.z.Info(message, toZap(fields, nil)...)
}

// Warn logs a warning message with optional structured fields.
// Warnings mark degraded results that did not stop the run.
func (l *ZapLogger) Warn(message string, fields Fields) {
	l.z.Warn(message, toZap(fields, nil)...)
}

// Error logs an error message with optional structured fields and an error object.
func (l *ZapLogger) Error(message string, fields Fields, err error) {
	l.z.Error(message, toZap(fields, err)...)
}

// toZap converts fields in key order so output is stable between runs
func toZap(fields Fields, err error) []zap.Field {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}

type nopLogger struct{}

// Nop returns a Logger that discards everything
func Nop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, Fields)        {}
func (nopLogger) Info(string, Fields)         {}
func (nopLogger) Warn(string, Fields)         {}
func (nopLogger) Error(string, Fields, error) {}
