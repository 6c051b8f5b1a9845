package logger

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func createObservedLogger() (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapAdapter(zap.New(core)), logs
}

func TestBuild_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"loud", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := Build(Options{Level: tt.level, Format: "json", Output: "stderr"})
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestBuild_FileOutputWithServiceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	l, err := Build(Options{Level: "info", Format: "json", Output: path, Service: "job-applier", Version: "1.2.3"})
	require.NoError(t, err)
	l.Info("hello")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"job-applier"`)
	assert.Contains(t, string(data), `"version":"1.2.3"`)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestAdapter_Fields(t *testing.T) {
	log, logs := createObservedLogger()

	Component(log, "lifecycle").Info("paused", map[string]interface{}{
		"applicationId": int64(7),
		"cause":         stderrors.New("captcha"),
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	ctx := entry.ContextMap()
	assert.Equal(t, "lifecycle", ctx["component"])
	assert.Equal(t, int64(7), ctx["applicationId"])
	assert.Equal(t, "captcha", ctx["cause"])
}

func TestAdapter_WithError(t *testing.T) {
	log, logs := createObservedLogger()

	log.WithError(stderrors.New("boom")).Error("failed", nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "boom", logs.All()[0].ContextMap()["error"])
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestNew_FallsBackToNop(t *testing.T) {
	l := New("info", "console")
	require.NotNil(t, l)
	NewNoOpLogger().Info("discarded", nil)
}
