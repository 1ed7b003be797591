package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newRouter(logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorLogger(logger), RequestLogger(logger), CORS([]string{"https://bistro.test"}))
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(errors.New("store unavailable"))
		c.Status(http.StatusInternalServerError)
	})
	return r
}

func TestRequestID_AssignsAndPropagates(t *testing.T) {
	r := newRouter(zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestErrorLogger_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	entries := logs.FilterMessage("request_error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "panic", entries[0].ContextMap()["type"])
}

func TestErrorLogger_LogsContextErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := newRouter(zap.New(core))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))

	entries := logs.FilterMessage("request_error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "store unavailable", entries[0].ContextMap()["error"])
}

func TestCORS(t *testing.T) {
	r := newRouter(zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ok", nil)
	req.Header.Set("Origin", "https://bistro.test")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://bistro.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "https://evil.test")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOrigins(t *testing.T) {
	got := Origins([]string{"https://bistro.test"})
	assert.Contains(t, got, "http://localhost:5173")
	assert.Contains(t, got, "https://bistro.test")
}
