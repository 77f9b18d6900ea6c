package config

// LogConfig defines the options shared by all logger adapters.
type LogConfig struct {
	// Level is the minimum log level (debug, info, warn, error, none).
	Level string

	// Format determines the output format (json, pretty).
	Format string

	// Environment affects logging behavior (dev, test, prod). Pretty
	// output is only honored outside prod.
	Environment string

	// Fields are default fields added to every log entry.
	Fields map[string]interface{}
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		Environment: "dev",
	}
}

// ProductionConfig returns a configuration for production use.
func ProductionConfig() LogConfig {
	cfg := DefaultConfig()
	cfg.Environment = "prod"
	return cfg
}
