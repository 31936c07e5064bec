package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewDefaults(t *testing.T) {
	l, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestOrGlobal(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	local := zap.New(core)

	assert.Same(t, local, OrGlobal(local))

	prev := Get()
	Set(local)
	defer Set(prev)

	Info("hello", zap.Int("rows", 3))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "hello", entry.Message)
	assert.Equal(t, int64(3), entry.ContextMap()["rows"])
	assert.Same(t, local, OrGlobal(nil))
}
