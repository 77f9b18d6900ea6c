package config

import (
	"fmt"

	storageconfig "github.com/bignyap/cloud-uploader/storage/config"
	"github.com/caarlos0/env"
)

// ServiceConfig holds HTTP server and logging settings.
type ServiceConfig struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	Version     string `env:"VERSION" envDefault:"1.0.0"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
}

// Config is the full service configuration. Built once in main and passed
// down by reference; nothing reads the environment after startup.
type Config struct {
	Service  ServiceConfig
	Backends storageconfig.Config
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(&cfg.Service); err != nil {
		return nil, fmt.Errorf("failed to load service config: %w", err)
	}

	backends, err := storageconfig.Load()
	if err != nil {
		return nil, err
	}
	cfg.Backends = *backends

	return cfg, nil
}
