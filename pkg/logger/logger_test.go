package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInit_LevelOverride(t *testing.T) {
	Init("rdp-pricing-test", "prod", "warn")
	t.Cleanup(func() { log, sugar = nil, nil })

	require.NotNil(t, L())
	assert.False(t, L().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, L().Core().Enabled(zapcore.WarnLevel))
}

func TestInit_InvalidLevelKeepsDefault(t *testing.T) {
	Init("rdp-pricing-test", "dev", "loud")
	t.Cleanup(func() { log, sugar = nil, nil })

	assert.True(t, L().Core().Enabled(zapcore.DebugLevel), "dev config defaults to debug")
}

func TestL_LazyInit(t *testing.T) {
	log, sugar = nil, nil
	t.Cleanup(func() { log, sugar = nil, nil })

	assert.NotNil(t, L())
	assert.NotNil(t, S())
}

func TestWith_ReplacesGlobal(t *testing.T) {
	Init("rdp-pricing-test", "prod", "info")
	t.Cleanup(func() { log, sugar = nil, nil })

	before := L()
	after := With(zap.String("run_id", "abc"))

	assert.NotSame(t, before, after)
	assert.Same(t, after, L())
}
