package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/famvault/server/internal/shared/config"
)

func TestNew(t *testing.T) {
	log, err := New(&config.LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(&config.LogConfig{Level: "warn", Format: "text"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNewUnknownLevel(t *testing.T) {
	_, err := New(&config.LogConfig{Level: "verbose"})
	assert.Error(t, err)
}

func TestParseLevelDefaults(t *testing.T) {
	level, err := parseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}
