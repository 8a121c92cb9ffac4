package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitLevels(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	require.NoError(t, Init(false, false))
	assert.False(t, Log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Log.Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, Init(true, false))
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))
}

func TestNamedFallsBackToGlobal(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	core, logs := observer.New(zapcore.InfoLevel)
	Log = zap.New(core)

	Named(nil, "asset").Info("hello")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "asset", logs.All()[0].LoggerName)
}
