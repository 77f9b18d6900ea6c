package factory

import (
	"fmt"
	"sync"

	"github.com/bignyap/cloud-uploader/logger/adapters/zerolog"
	"github.com/bignyap/cloud-uploader/logger/api"
	"github.com/bignyap/cloud-uploader/logger/config"
)

var (
	globalLogger     api.Logger
	globalLoggerOnce sync.Once
)

// NewLogger creates a logger from configuration. Only the zerolog adapter
// exists today; extend here to add another.
func NewLogger(cfg config.LogConfig) (api.Logger, error) {
	return zerolog.NewZerologger(cfg)
}

// GetGlobalLogger returns the process-wide logger, creating it on first use.
func GetGlobalLogger() api.Logger {
	globalLoggerOnce.Do(func() {
		logger, err := NewLogger(config.DefaultConfig())
		if err != nil {
			// Logger creation failure cannot be logged; fall back to a
			// minimal working instance.
			fmt.Printf("Failed to create global logger: %v\n", err)
			logger, _ = zerolog.NewZerologger(config.LogConfig{Level: "info", Format: "json"})
		}
		globalLogger = logger
	})
	return globalLogger
}

// SetGlobalLogger replaces the global logger.
func SetGlobalLogger(logger api.Logger) {
	if logger != nil {
		globalLogger = logger
	}
}
