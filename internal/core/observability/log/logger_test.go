package log

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

func TestLogger_FieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core), LevelInfo)

	l.Debug("hidden")
	l.With(String("component", "scene")).Info("spawned",
		Vector("position", mgl64.Vec3{1, 2, 3}),
		Int("bodies", 4),
		Bool("ok", true),
		Error(errors.New("nope")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "spawned", entry.Message)
	ctx := entry.ContextMap()
	assert.Equal(t, "scene", ctx["component"])
	assert.Equal(t, []interface{}{1.0, 2.0, 3.0}, ctx["position"])
	assert.Equal(t, int64(4), ctx["bodies"])
	assert.Equal(t, "nope", ctx["error"])
}

func TestLogger_SetLevelIsShared(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core), LevelWarn)
	child := l.With(String("component", "child"))

	child.Info("dropped")
	l.SetLevel(LevelDebug)
	child.Debug("kept")
	assert.Equal(t, LevelDebug, child.GetLevel())

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)

	l.SetLevel(LevelSilent)
	child.Error("silenced")
	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, LevelSilent, l.GetLevel())
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing")
	l.Log(LevelError, "nothing")
	assert.Equal(t, LevelSilent, l.GetLevel())
}
