package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/blastfield/internal/core/models"
	"github.com/zeusync/blastfield/internal/core/observability/log"
	"github.com/zeusync/blastfield/internal/core/systems/physics"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "BLASTFIELD_CONFIG"

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Field    FieldConfig    `yaml:"field"`
	Spawn    SpawnConfig    `yaml:"spawn"`
	Registry RegistryConfig `yaml:"registry"`
	Session  SessionConfig  `yaml:"session"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

type FieldConfig struct {
	MaxDistance   float64 `yaml:"max_distance"`
	Amplification float64 `yaml:"amplification"`

	// ZeroDistance is "skip" or "clamp".
	ZeroDistance string  `yaml:"zero_distance"`
	Epsilon      float64 `yaml:"epsilon"`
}

type SpawnConfig struct {
	CubeSize   float64 `yaml:"cube_size"`
	Mass       float64 `yaml:"mass"`
	DropHeight float64 `yaml:"drop_height"`
}

// RegistryConfig selects the body eviction policy: "none" or "oldest" with a capacity.
type RegistryConfig struct {
	Eviction string `yaml:"eviction"`
	Capacity int    `yaml:"capacity"`
}

type SessionConfig struct {
	ResetOnInterruption bool `yaml:"reset_on_interruption"`
}

type ServerConfig struct {
	ListenAddr   string        `yaml:"listen_addr"`
	ReadLimit    int64         `yaml:"read_limit"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxSessions  int           `yaml:"max_sessions"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	spawn := physics.DefaultSpawnSpec()
	return Config{
		Field: FieldConfig{
			MaxDistance:   physics.DefaultMaxDistance,
			Amplification: physics.DefaultAmplification,
			ZeroDistance:  physics.ZeroDistanceSkip.String(),
			Epsilon:       physics.DefaultEpsilon,
		},
		Spawn: SpawnConfig{
			CubeSize:   spawn.CubeSize,
			Mass:       spawn.Mass,
			DropHeight: spawn.DropHeight,
		},
		Registry: RegistryConfig{
			Eviction: models.EvictNone.String(),
		},
		Server: ServerConfig{
			ListenAddr:   "127.0.0.1:8080",
			ReadLimit:    64 * 1024,
			WriteTimeout: 5 * time.Second,
			MaxSessions:  64,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if cfg, err = Parse(data); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by BLASTFIELD_CONFIG, or the defaults when unset.
func FromEnv() (Config, error) {
	return Load(os.Getenv(EnvPath))
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Field.MaxDistance <= 0 {
		errs = append(errs, fmt.Errorf("field.max_distance must be positive, got %v", c.Field.MaxDistance))
	}
	if c.Field.Amplification < 0 {
		errs = append(errs, fmt.Errorf("field.amplification must not be negative, got %v", c.Field.Amplification))
	}
	if c.Field.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("field.epsilon must be positive, got %v", c.Field.Epsilon))
	}
	if _, err := physics.ParseZeroDistancePolicy(c.Field.ZeroDistance); err != nil {
		errs = append(errs, err)
	}
	if c.Spawn.CubeSize <= 0 {
		errs = append(errs, fmt.Errorf("spawn.cube_size must be positive, got %v", c.Spawn.CubeSize))
	}
	if c.Spawn.Mass <= 0 {
		errs = append(errs, fmt.Errorf("spawn.mass must be positive, got %v", c.Spawn.Mass))
	}
	eviction, err := models.ParseEvictionPolicy(c.Registry.Eviction)
	if err != nil {
		errs = append(errs, err)
	} else if eviction == models.EvictOldest && c.Registry.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("registry.capacity: %w", models.ErrInvalidCapacity))
	}
	if c.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if c.Server.ReadLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.read_limit must be positive, got %d", c.Server.ReadLimit))
	}
	if c.Server.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("server.max_sessions must be positive, got %d", c.Server.MaxSessions))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ImpulseField builds the field described by the config. The config must be valid.
func (c Config) ImpulseField() *physics.RadialImpulseField {
	policy, _ := physics.ParseZeroDistancePolicy(c.Field.ZeroDistance)
	return physics.NewRadialImpulseField(
		physics.WithMaxDistance(c.Field.MaxDistance),
		physics.WithAmplification(c.Field.Amplification),
		physics.WithZeroDistancePolicy(policy),
		physics.WithEpsilon(c.Field.Epsilon),
	)
}

func (c Config) SpawnSpec() physics.SpawnSpec {
	return physics.SpawnSpec{
		CubeSize:   c.Spawn.CubeSize,
		Mass:       c.Spawn.Mass,
		DropHeight: c.Spawn.DropHeight,
	}
}

func (c Config) RegistryConfig() models.RegistryConfig {
	eviction, _ := models.ParseEvictionPolicy(c.Registry.Eviction)
	return models.RegistryConfig{Eviction: eviction, Capacity: c.Registry.Capacity}
}

func (c Config) LogLevel() log.Level {
	level, _ := log.ParseLevel(c.Log.Level)
	return level
}
