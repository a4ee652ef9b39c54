// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/WalkerFrederick/ws-game-server/internal/game"
)

// Config is the server's environment-driven configuration. Values are read
// from the process environment; cmd/server loads a .env file first via
// godotenv, matching local development setups.
type Config struct {
	Port     string
	LogLevel string

	RoundTimeLimitSeconds int
	MaxRounds             int
	CountdownSeconds      int
	ReconnectTimeSeconds  int
	RoundBufferSeconds    int
}

// Load reads the environment, applying production defaults for anything unset.
func Load() (Config, error) {
	defaults := game.DefaultRules()
	cfg := Config{
		Port:     envString("PORT", "8080"),
		LogLevel: envString("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.RoundTimeLimitSeconds, err = envInt("ROUND_TIME_LIMIT_SECONDS", defaults.RoundTimeLimitSeconds); err != nil {
		return Config{}, err
	}
	if cfg.MaxRounds, err = envInt("MAX_ROUNDS", defaults.MaxRounds); err != nil {
		return Config{}, err
	}
	if cfg.CountdownSeconds, err = envInt("COUNTDOWN_SECONDS", defaults.CountdownSeconds); err != nil {
		return Config{}, err
	}
	if cfg.ReconnectTimeSeconds, err = envInt("RECONNECT_TIME_SECONDS", defaults.ReconnectTimeSeconds); err != nil {
		return Config{}, err
	}
	if cfg.RoundBufferSeconds, err = envInt("ROUND_BUFFER_SECONDS", defaults.RoundBufferSeconds); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Rules converts the pacing settings into the game package's rule set.
func (c Config) Rules() game.Rules {
	return game.Rules{
		RoundTimeLimitSeconds: c.RoundTimeLimitSeconds,
		MaxRounds:             c.MaxRounds,
		CountdownSeconds:      c.CountdownSeconds,
		ReconnectTimeSeconds:  c.ReconnectTimeSeconds,
		RoundBufferSeconds:    c.RoundBufferSeconds,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return n, nil
}
