package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/clothing-store/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureDefaultLogger(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	return &buf
}

func TestLogging(t *testing.T) {
	t.Run("Propagates Correlation ID", func(t *testing.T) {
		// Arrange
		buf := captureDefaultLogger(t)
		var ctxLogger *slog.Logger

		handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxLogger = middleware.LoggerFromContext(r.Context())
			w.WriteHeader(http.StatusTeapot)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/carts/abc", nil)
		req.Header.Set("X-Request-ID", "req-123")
		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusTeapot, rr.Code)
		assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
		require.NotNil(t, ctxLogger)
		assert.NotSame(t, slog.Default(), ctxLogger, "handler should receive the request-scoped logger")
		assert.Contains(t, buf.String(), `"correlation_id":"req-123"`)
		assert.Contains(t, buf.String(), `"http_status":418`)
	})

	t.Run("Generates Correlation ID", func(t *testing.T) {
		// Arrange
		captureDefaultLogger(t)
		handler := middleware.Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rr := httptest.NewRecorder()

		// Act
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		// Assert
		assert.Len(t, rr.Header().Get("X-Request-ID"), 36)
	})
}

func TestLoggerFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), middleware.LoggerFromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := middleware.WithLogger(context.Background(), logger)
	assert.Same(t, logger, middleware.LoggerFromContext(ctx))
}
