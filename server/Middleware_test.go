package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bignyap/cloud-uploader/logger/adapters/mock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(logger *mock.Mock) *gin.Engine {
	cfg := DefaultConfig()
	cfg.Version = "test-version"

	router := gin.New()
	NewMiddleware(logger, cfg).Apply(router)
	return router
}

func TestLoggerMiddleware_AssignsTraceID(t *testing.T) {
	logger := mock.NewMockLogger()
	router := newTestRouter(logger)
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
	assert.Equal(t, "test-version", rec.Header().Get("X-Version"))
	require.Len(t, logger.EntriesAt(mock.LevelInfo), 1)
}

func TestLoggerMiddleware_KeepsCallerTraceID(t *testing.T) {
	router := newTestRouter(mock.NewMockLogger())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Trace-ID", "caller-trace")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "caller-trace", rec.Header().Get("X-Trace-ID"))
}

func TestLoggerMiddleware_StatusLevels(t *testing.T) {
	logger := mock.NewMockLogger()
	router := newTestRouter(logger)
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Len(t, logger.EntriesAt(mock.LevelWarn), 1)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Len(t, logger.EntriesAt(mock.LevelError), 1)
}

func TestRedactSensitiveQueryParams(t *testing.T) {
	redacted := redactSensitiveQueryParams("access_token=abc123&name=report.pdf")

	assert.Contains(t, redacted, "access_token=%5BREDACTED%5D")
	assert.Contains(t, redacted, "name=report.pdf")
	assert.NotContains(t, redacted, "abc123")

	assert.Equal(t, "", redactSensitiveQueryParams(""))
	assert.Equal(t, "a=1", redactSensitiveQueryParams("a=1"))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	router := newTestRouter(mock.NewMockLogger())
	router.POST("/upload/all", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/upload/all", nil)
	req.Header.Set("Origin", "https://app.example.com")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMaxBodySize_RejectsOversizedBody(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxRequestSize = 16

	router := gin.New()
	NewMiddleware(mock.NewMockLogger(), cfg).Apply(router)
	router.POST("/upload/s3", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.AbortWithStatus(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/upload/s3", strings.NewReader(strings.Repeat("x", 64))))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	logger := mock.NewMockLogger()
	router := newTestRouter(logger)
	router.GET("/panic", func(c *gin.Context) { panic("unexpected") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var found bool
	for _, e := range logger.EntriesAt(mock.LevelError) {
		if e.Message == "Recovered panic" {
			found = true
		}
	}
	assert.True(t, found)
}
