// Package logger is the structured logging facade over zap. Services take the
// Logger interface; only main deals in *zap.Logger.
package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger defines the minimal logging interface used across services and workers.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
	With(fields map[string]interface{}) Logger
}

// Options mirrors the logging section of the configuration.
type Options struct {
	Level   string // debug, info, warn, error; anything else is info
	Format  string // json or console
	Output  string // stdout, stderr or a file path
	Service string
	Version string
}

// Build constructs the root zap logger. JSON output uses ISO8601 timestamps so
// log shippers do not have to parse epoch floats.
func Build(opts Options) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(opts.Level))
	if err != nil || opts.Level == "" {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	var cfg zap.Config
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.Sampling = nil
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = level

	if opts.Output != "" {
		cfg.OutputPaths = []string{opts.Output}
	}

	initial := map[string]interface{}{}
	if opts.Service != "" {
		initial["service"] = opts.Service
	}
	if opts.Version != "" {
		initial["version"] = opts.Version
	}
	if len(initial) > 0 {
		cfg.InitialFields = initial
	}

	return cfg.Build()
}

// New builds a logger and falls back to a no-op one on bad options.
func New(levelStr, format string) *zap.Logger {
	l, err := Build(Options{Level: levelStr, Format: format})
	if err != nil {
		return zap.NewNop()
	}
	return l
}

type zapWrapper struct {
	l *zap.Logger
}

func (z *zapWrapper) Debug(msg string, fields map[string]interface{}) {
	z.l.Debug(msg, toZapFields(fields)...)
}

func (z *zapWrapper) Info(msg string, fields map[string]interface{}) {
	z.l.Info(msg, toZapFields(fields)...)
}

func (z *zapWrapper) Warn(msg string, fields map[string]interface{}) {
	z.l.Warn(msg, toZapFields(fields)...)
}

func (z *zapWrapper) Error(msg string, fields map[string]interface{}) {
	z.l.Error(msg, toZapFields(fields)...)
}

func (z *zapWrapper) WithFields(fields map[string]interface{}) Logger {
	if len(fields) == 0 {
		return z
	}
	return &zapWrapper{l: z.l.With(toZapFields(fields)...)}
}

func (z *zapWrapper) WithError(err error) Logger {
	return &zapWrapper{l: z.l.With(zap.Error(err))}
}

func (z *zapWrapper) With(fields map[string]interface{}) Logger {
	return z.WithFields(fields)
}

// toZapFields keeps error values as errors so zap renders them under the
// given key instead of as an opaque struct.
func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

// NewZapAdapter wraps an existing *zap.Logger to implement the Logger interface
func NewZapAdapter(l *zap.Logger) Logger {
	return &zapWrapper{l: l}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) Logger {
	return &zapWrapper{l: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return &zapWrapper{l: zap.NewNop()}
}

// Component scopes a logger to a named service component.
func Component(l Logger, name string) Logger {
	return l.WithFields(map[string]interface{}{"component": name})
}
