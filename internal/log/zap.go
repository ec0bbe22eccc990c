// ABOUTME: Structured logging built on zap with per-namespace filtering
// ABOUTME: Exposes a process-wide default logger and field helpers

package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

// DefaultRules logs info and above for every namespace.
const DefaultRules = "info+:*"

// Field is a structured log field.
type Field = zap.Field

// Logger is a named structured logger.
type Logger struct {
	base *zap.Logger
}

// Config controls logger construction.
type Config struct {
	// Rules is a zapfilter rule set, e.g. "info+:*" or "debug+:tracking.*".
	Rules string
	// Encoding is "console" or "json".
	Encoding string
	// Output receives log lines. Defaults to stderr.
	Output io.Writer
}

var (
	mu       sync.RWMutex
	fallback = &Logger{base: zap.NewNop()}
	current  = fallback
)

// New builds a logger from cfg.
func New(cfg Config) (*Logger, error) {
	rules := cfg.Rules
	if rules == "" {
		rules = DefaultRules
	}
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, fmt.Errorf("parse log rules %q: %w", rules, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Encoding {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log encoding %q", cfg.Encoding)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), zapcore.DebugLevel)
	return &Logger{base: zap.New(zapfilter.NewFilteringCore(core, filter))}, nil
}

// NewDevelopment returns a logger that prints everything to stderr.
func NewDevelopment() *Logger {
	l, _ := New(Config{Rules: "*:*"})
	return l
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{base: zap.NewNop()}
}

// Default returns the process-wide logger. It discards output until SetDefault is called.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// SetDefault replaces the process-wide logger. A nil logger restores the discarding default.
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = fallback
	}
	current = l
}

// Named returns a child logger. Names nest with dots, which zapfilter rules match.
func (l *Logger) Named(name string) *Logger {
	return &Logger{base: l.base.Named(name)}
}

// With returns a child logger carrying fields.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{base: l.base.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.base.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.base.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.base.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.base.Error(msg, fields...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

// Zap exposes the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Package-level shortcuts write to Default().

func Debug(msg string, fields ...Field) { Default().Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { Default().Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { Default().Warn(msg, fields...) }
func Error(msg string, fields ...Field) { Default().Error(msg, fields...) }

// Field constructors.

func String(key, val string) Field                 { return zap.String(key, val) }
func Int(key string, val int) Field                { return zap.Int(key, val) }
func Int64(key string, val int64) Field            { return zap.Int64(key, val) }
func Float64(key string, val float64) Field        { return zap.Float64(key, val) }
func Bool(key string, val bool) Field              { return zap.Bool(key, val) }
func Duration(key string, val time.Duration) Field { return zap.Duration(key, val) }
func Time(key string, val time.Time) Field         { return zap.Time(key, val) }
func Any(key string, val any) Field                { return zap.Any(key, val) }
func ErrorField(err error) Field                   { return zap.Error(err) }
