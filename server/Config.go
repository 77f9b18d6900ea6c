package server

import (
	"context"
	"time"

	"github.com/bignyap/cloud-uploader/logger/api"
	"github.com/gin-gonic/gin"
)

// Server defines the HTTP server contract.
type Server interface {
	Start() error
	Router() *gin.Engine
	Shutdown(ctx context.Context) error
	GetResponseWriter() *ResponseWriter
	GetLogger() api.Logger
}

// Config defines runtime configuration for the HTTP server.
type Config struct {
	Port            string
	Environment     string
	Version         string
	MaxRequestSize  int64
	ShutdownTimeout time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		Port:            "8080",
		Environment:     "dev",
		Version:         "dev",
		MaxRequestSize:  50 << 20, // uploads are buffered in memory
		ShutdownTimeout: 15 * time.Second,
	}
}

// Handler allows for modular route registration and teardown.
type Handler interface {
	Setup(server Server) error
	Shutdown() error
}
