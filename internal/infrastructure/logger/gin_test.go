package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveWithLogging(t *testing.T, handler gin.HandlerFunc, path string) *observer.ObservedLogs {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(ginRequestIDKey, "req-123") })
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/lots", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return recorded
}

func requestLog(t *testing.T, recorded *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := recorded.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	return entries[0]
}

func TestGinMiddleware(t *testing.T) {
	t.Run("logs completed request at info", func(t *testing.T) {
		recorded := serveWithLogging(t, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		}, "/lots")

		entry := requestLog(t, recorded)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := entry.ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/lots", fields["path"])
		assert.EqualValues(t, http.StatusOK, fields["status"])
	})

	t.Run("client errors log at warn", func(t *testing.T) {
		recorded := serveWithLogging(t, func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false})
		}, "/lots")

		assert.Equal(t, zapcore.WarnLevel, requestLog(t, recorded).Level)
	})

	t.Run("server errors log at error", func(t *testing.T) {
		recorded := serveWithLogging(t, func(c *gin.Context) {
			c.Status(http.StatusInternalServerError)
		}, "/lots")

		assert.Equal(t, zapcore.ErrorLevel, requestLog(t, recorded).Level)
	})

	t.Run("query string is captured", func(t *testing.T) {
		recorded := serveWithLogging(t, func(c *gin.Context) {
			c.Status(http.StatusOK)
		}, "/lots?page=2")

		assert.Equal(t, "page=2", requestLog(t, recorded).ContextMap()["query"])
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/boom", func(c *gin.Context) {
		panic("allocation ledger corrupted")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.FilterMessage("handler panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "allocation ledger corrupted", entries[0].ContextMap()["panic"])
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the request-scoped logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		scoped := zap.NewExample()
		c.Set(ginLoggerKey, scoped)

		assert.Same(t, scoped, GetGinLogger(c))
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.NotNil(t, GetGinLogger(c))
	})
}
