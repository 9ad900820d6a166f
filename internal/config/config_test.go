package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/blastfield/internal/core/models"
	"github.com/zeusync/blastfield/internal/core/observability/log"
	"github.com/zeusync/blastfield/internal/core/systems/physics"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	f := cfg.ImpulseField()
	assert.Equal(t, 2.0, f.MaxDistance())
	assert.Equal(t, 2.0, f.Amplification())
	assert.Equal(t, physics.ZeroDistanceSkip, f.ZeroDistancePolicy())

	assert.Equal(t, physics.DefaultSpawnSpec(), cfg.SpawnSpec())
	assert.Equal(t, models.RegistryConfig{Eviction: models.EvictNone}, cfg.RegistryConfig())
	assert.Equal(t, log.LevelInfo, cfg.LogLevel())
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
field:
  zero_distance: clamp
  epsilon: 0.001
registry:
  eviction: oldest
  capacity: 50
session:
  reset_on_interruption: true
server:
  listen_addr: ":9000"
  write_timeout: 2s
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Field.MaxDistance)
	assert.Equal(t, physics.ZeroDistanceClamp, cfg.ImpulseField().ZeroDistancePolicy())
	assert.Equal(t, 0.001, cfg.ImpulseField().Epsilon())
	assert.Equal(t, models.RegistryConfig{Eviction: models.EvictOldest, Capacity: 50}, cfg.RegistryConfig())
	assert.True(t, cfg.Session.ResetOnInterruption)
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, 2*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, int64(64*1024), cfg.Server.ReadLimit)
	assert.Equal(t, log.LevelDebug, cfg.LogLevel())
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Field.MaxDistance = 0
	cfg.Field.ZeroDistance = "bounce"
	cfg.Registry.Eviction = "oldest"
	cfg.Log.Level = "chatty"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, physics.ErrUnknownPolicy)
	assert.ErrorIs(t, err, models.ErrInvalidCapacity)
	assert.Contains(t, err.Error(), "field.max_distance")
	assert.Contains(t, err.Error(), "chatty")
}

func TestParseRejectsBadYAML(t *testing.T) {
	_, err := Parse([]byte("field: [1, 2"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "blastfield.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spawn:\n  mass: 5\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.Spawn.Mass)
	assert.Equal(t, 1.0, cfg.Spawn.CubeSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600))
	t.Setenv(EnvPath, path)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, log.LevelWarn, cfg.LogLevel())
}
