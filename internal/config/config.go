// Package config loads server configuration from a YAML file and
// environment variables. Priority: ENV > YAML > defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all server settings.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string `yaml:"addr" env:"ADDR" env-default:":8080"`

	// DBPath is the SQLite database file path. Parent directories are
	// created on startup.
	DBPath string `yaml:"db_path" env:"DB_PATH" env-default:"./data/billmap.db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// JWTSecret signs session tokens. Override the default outside of
	// local development.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"dev-secret-change-me"`

	// TokenTTL is how long issued tokens remain valid.
	TokenTTL time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`

	Plaid PlaidConfig `yaml:"plaid"`
}

// PlaidConfig configures the optional aggregation gateway. The gateway
// is only constructed when both credentials are set; the rest of the
// server runs fine without it.
type PlaidConfig struct {
	ClientID    string `yaml:"client_id" env:"PLAID_CLIENT_ID"`
	Secret      string `yaml:"secret" env:"PLAID_SECRET"`
	Environment string `yaml:"environment" env:"PLAID_ENV" env-default:"sandbox"`
}

// Enabled reports whether gateway credentials are configured.
func (p PlaidConfig) Enabled() bool {
	return p.ClientID != "" && p.Secret != ""
}

// Load reads configuration from a YAML file and environment variables.
// The YAML file path is determined by CONFIG_PATH env (fallback
// "./config.yaml"). If the file does not exist and CONFIG_PATH was not
// set explicitly, configuration is loaded from ENV + defaults only.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""
	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		// No file, load from ENV + defaults only.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	return &cfg, nil
}
