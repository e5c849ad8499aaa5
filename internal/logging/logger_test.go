package logging

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	configMu.Lock()
	categories = nil
	configMu.Unlock()
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	return logs
}

func TestCategoryLoggerWritesNamedEntries(t *testing.T) {
	logs := observe(t)

	Memory("cycle %d", 7)
	InferenceDebug("derived %s", "<a --> c>")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "memory", entries[0].LoggerName)
	assert.Equal(t, "cycle 7", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "inference", entries[1].LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestConfigHelpers(t *testing.T) {
	logs := observe(t)

	ConfigInfo("reloaded %s", "nars.yaml")
	ConfigWarn("skipped %s", "bad.yaml")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "config", entries[0].LoggerName)
	assert.Equal(t, "reloaded nars.yaml", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestDisabledCategoryIsNoop(t *testing.T) {
	logs := observe(t)
	configMu.Lock()
	categories = map[string]bool{"bag": false}
	configMu.Unlock()

	BagDebug("overflow")
	Memory("still on")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "memory", logs.All()[0].LoggerName)
}

func TestInitializeWithoutDebugModeIsSilent(t *testing.T) {
	require.NoError(t, Initialize(Config{DebugMode: false}))
	assert.False(t, IsCategoryEnabled(CategoryMemory))
	// Must not panic.
	Get(CategoryMemory).Error("dropped %d", 1)
}

func TestInitializeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "nars.log")
	require.NoError(t, Initialize(Config{DebugMode: true, Level: "debug", Format: "json", OutputPath: path}))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })

	assert.True(t, IsCategoryEnabled(CategoryKernel))
	assert.FileExists(t, path)
}

func TestInitializeRejectsBadLevel(t *testing.T) {
	err := Initialize(Config{DebugMode: true, Level: "loud"})
	assert.Error(t, err)
}

func TestTimerThreshold(t *testing.T) {
	logs := observe(t)

	timer := StartTimer(CategoryMemory, "cycle")
	elapsed := timer.StopWithThreshold(-time.Second)

	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
}

func TestWithAddsFields(t *testing.T) {
	logs := observe(t)

	Get(CategoryStore).With("session", "abc").Info("opened")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "abc", logs.All()[0].ContextMap()["session"])
}
