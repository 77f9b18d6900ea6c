package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bignyap/cloud-uploader/logger/api"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Middleware struct {
	logger api.Logger
	config *Config
}

func NewMiddleware(logger api.Logger, config *Config) *Middleware {
	return &Middleware{logger: logger, config: config}
}

// sensitiveQueryParams are query parameter names redacted in request logs.
var sensitiveQueryParams = []string{
	"token",
	"api_key",
	"apikey",
	"password",
	"secret",
	"auth",
	"authorization",
	"access_token",
	"refresh_token",
	"session",
}

func redactSensitiveQueryParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}

	for key := range values {
		keyLower := strings.ToLower(key)
		for _, sensitive := range sensitiveQueryParams {
			if strings.Contains(keyLower, sensitive) {
				values.Set(key, "[REDACTED]")
				break
			}
		}
	}

	return values.Encode()
}

// Logger assigns each request a trace ID, stores a request-scoped logger on
// the gin context, and logs completion with status and latency.
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := context.WithValue(c.Request.Context(), api.TraceIDKey, traceID)
		c.Request = c.Request.WithContext(ctx)

		reqLogger := m.logger.WithTraceID(traceID).WithComponent("api").WithFields(
			api.String("method", c.Request.Method),
			api.String("path", c.Request.URL.Path),
			api.String("client_ip", c.ClientIP()),
			api.String("query", redactSensitiveQueryParams(c.Request.URL.RawQuery)),
		)

		c.Set("logger", reqLogger)
		c.Set("trace_id", traceID)

		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Writer.Header().Set("X-Version", m.config.Version)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		reqLogger = reqLogger.WithFields(
			api.Int("status", status),
			api.Any("latency_ms", float64(latency.Microseconds())/1000.0),
			api.Int("response_size", c.Writer.Size()),
		)

		switch {
		case status >= 500:
			reqLogger.Error(ctx, "Request failed", nil)
		case status >= 400:
			reqLogger.Warn(ctx, "Client error")
		default:
			reqLogger.Info(ctx, "Request completed")
		}
	}
}

func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Trace-ID, X-Version")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (m *Middleware) MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func (m *Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger := getLoggerFromContext(c)
				if logger == nil {
					logger = m.logger
				}
				logger.Error(c.Request.Context(), "Recovered panic", fmt.Errorf("%v", err))
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

func (m *Middleware) Apply(router *gin.Engine) {
	router.Use(m.Logger())
	router.Use(m.CORS())
	router.Use(m.MaxBodySize(m.config.MaxRequestSize))
	router.Use(m.Recovery())
}

func getLoggerFromContext(c *gin.Context) api.Logger {
	if logger, exists := c.Get("logger"); exists {
		if l, ok := logger.(api.Logger); ok {
			return l
		}
	}
	return nil
}

func getTraceIDFromContext(c *gin.Context) string {
	if val, exists := c.Get("trace_id"); exists {
		if id, ok := val.(string); ok {
			return id
		}
	}
	return c.GetHeader("X-Trace-ID")
}
