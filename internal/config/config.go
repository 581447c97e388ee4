package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds all application configuration, loaded from the environment
// with an optional .env bootstrap.
type Config struct {
	Port       string `env:"ATLAS_PORT,default=3008"`
	SQLitePath string `env:"ATLAS_SQLITE_PATH"`
	// Database name doubles as the default sqlite file name.
	DatabaseName string `env:"ATLAS_DATABASE_NAME,default=atlas_tracker"`

	// Marker API endpoints.
	APIBaseURL string `env:"ATLAS_API_BASE_URL,default=https://atlasmedia.mediani.fi/api/v1"`
	MapID      string `env:"ATLAS_MAP_ID,default=100"`

	// Single-user login.
	Username string `env:"ATLAS_LOGIN_USERNAME,required"`
	Password string `env:"ATLAS_LOGIN_PASSWORD,required"`

	JwtSecret     string `env:"ATLAS_JWT_SECRET_KEY,required"`
	SessionSecret string `env:"ATLAS_SESSION_SECRET,required"`
}

// JwtKey returns the JWT signing key as bytes.
func (c *Config) JwtKey() []byte {
	return []byte(c.JwtSecret)
}

// LoadConfig reads .env if present and resolves the configuration from the
// environment. A missing .env file is fine as long as the environment
// carries the required variables.
func LoadConfig(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join("data", fmt.Sprintf("%s.db", cfg.DatabaseName))
	}

	return &cfg, nil
}
