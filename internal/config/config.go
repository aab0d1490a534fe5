package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "washhub/libs/config"
)

// Config represents service configuration loaded from YAML/env.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"WASHHUB_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN          string `yaml:"dsn" env:"WASHHUB_POSTGRES_DSN"`
		MaxOpenConns int    `yaml:"maxOpenConns" env:"WASHHUB_POSTGRES_MAX_OPEN_CONNS"`
		MaxIdleConns int    `yaml:"maxIdleConns" env:"WASHHUB_POSTGRES_MAX_IDLE_CONNS"`
	} `yaml:"database"`
	Redis struct {
		Addr     string        `yaml:"addr" env:"WASHHUB_REDIS_ADDR"`
		Password string        `yaml:"password" env:"WASHHUB_REDIS_PASSWORD"`
		DB       int           `yaml:"db" env:"WASHHUB_REDIS_DB"`
		CacheTTL time.Duration `yaml:"cacheTTL" env:"WASHHUB_PRICE_CACHE_TTL"`
	} `yaml:"redis"`
	JWT struct {
		Secret           string `yaml:"secret" env:"WASHHUB_JWT_SECRET"`
		ExpiresInMinutes int    `yaml:"expiresInMinutes" env:"WASHHUB_JWT_EXPIRES_MINUTES"`
	} `yaml:"jwt"`
	Password struct {
		BcryptCost int `yaml:"bcryptCost" env:"WASHHUB_BCRYPT_COST"`
	} `yaml:"password"`
	Board struct {
		PingInterval time.Duration `yaml:"pingInterval" env:"WASHHUB_BOARD_PING_INTERVAL"`
	} `yaml:"board"`
}

// Load reads configuration using the shared config loader.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8080"
	cfg.JWT.ExpiresInMinutes = 60
	cfg.Redis.CacheTTL = 5 * time.Minute
	cfg.Board.PingInterval = 30 * time.Second

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}

	if cfg.Database.DSN == "" {
		return nil, errors.New("config: database DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return nil, errors.New("config: jwt secret is required")
	}
	if cfg.JWT.ExpiresInMinutes <= 0 {
		cfg.JWT.ExpiresInMinutes = 60
	}

	return cfg, nil
}

// HTTPAddress ensures we always return host:port formatted string.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// JWTExpiration converts configured expiry to duration.
func (c *Config) JWTExpiration() time.Duration {
	if c.JWT.ExpiresInMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.JWT.ExpiresInMinutes) * time.Minute
}
