package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"

	"github.com/playperu/treasurehunt/internal/treasurehunt"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DBPath       string `env:"DB_PATH" envDefault:"data/treasurehunt.db"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	DeviceResetPolicy treasurehunt.DevicePolicy `env:"DEVICE_RESET_POLICY" envDefault:"preserve"`
	StrictTeamBinding bool                      `env:"STRICT_TEAM_BINDING" envDefault:"false"`
	CommitMaxAttempts int                       `env:"COMMIT_MAX_ATTEMPTS" envDefault:"5"`

	SeedFile  string `env:"SEED_FILE"`
	ClientDir string `env:"CLIENT_DIR"`
}

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	switch cfg.StoreBackend {
	case BackendSQLite, BackendRedis, BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.CommitMaxAttempts <= 0 {
		return nil, fmt.Errorf("COMMIT_MAX_ATTEMPTS must be positive, got %d", cfg.CommitMaxAttempts)
	}
	return &cfg, nil
}

// Reducer builds the game reducer configured by cfg.
func (c *Config) Reducer() treasurehunt.Reducer {
	return treasurehunt.Reducer{
		DevicePolicy: c.DeviceResetPolicy,
		StrictTeams:  c.StrictTeamBinding,
	}
}
