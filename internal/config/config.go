// Package config loads the arttic configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/arttic/internal/validator"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "arttic.yaml"

// Layout store kinds.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type Config struct {
	BackendURL     string        `yaml:"backend_url" validate:"required,url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" validate:"gt=0"`
	Notices        Notices       `yaml:"notices"`
	Zoom           Zoom          `yaml:"zoom"`
	Viewport       Viewport      `yaml:"viewport"`
	Layouts        Layouts       `yaml:"layouts"`
	Introspection  Introspection `yaml:"introspection"`
	Metrics        bool          `yaml:"metrics"`
}

// Notices holds how long each notice kind stays visible.
type Notices struct {
	Success time.Duration `yaml:"success" validate:"gt=0"`
	Info    time.Duration `yaml:"info" validate:"gt=0"`
	Error   time.Duration `yaml:"error" validate:"gt=0"`
}

// Zoom bounds the canvas scale.
type Zoom struct {
	Min float64 `yaml:"min" validate:"gt=0,ltfield=Max"`
	Max float64 `yaml:"max" validate:"gt=0"`
}

type Viewport struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// Layouts selects where saved canvas layouts live.
type Layouts struct {
	Kind  string `yaml:"kind" validate:"oneof=memory file redis"`
	Path  string `yaml:"path"`
	Redis Redis  `yaml:"redis"`
}

type Redis struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"min=0"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl" validate:"min=0"`
}

type Introspection struct {
	Addr string `yaml:"addr" validate:"required"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		BackendURL:     "http://localhost:8000",
		ReconnectDelay: 3 * time.Second,
		Notices: Notices{
			Success: 3 * time.Second,
			Info:    3 * time.Second,
			Error:   6 * time.Second,
		},
		Zoom:          Zoom{Min: 0.2, Max: 3.0},
		Viewport:      Viewport{Width: 1280, Height: 800},
		Layouts:       Layouts{Kind: StoreMemory, Path: ".arttic/layouts"},
		Introspection: Introspection{Addr: ":8090"},
	}
}

// Load reads path on top of Default and validates the result. A missing
// file yields the defaults unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !required:
		return cfg, cfg.Validate()
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ErrMissingRedisAddr is returned when the redis layout store has no address.
var ErrMissingRedisAddr = errors.New("layouts.redis.addr is required for the redis store")

func (c Config) Validate() error {
	if err := validator.Struct(c); err != nil {
		return err
	}
	if c.Layouts.Kind == StoreRedis && c.Layouts.Redis.Addr == "" {
		return fmt.Errorf("%w: %w", validator.ErrInvalid, ErrMissingRedisAddr)
	}
	return nil
}
