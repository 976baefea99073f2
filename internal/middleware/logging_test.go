package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func serve(t *testing.T, h http.HandlerFunc, path string) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := newJSONLogger(&buf)

	chain := chimiddleware.RequestID(Logger(logger)(h))
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), "log: %s", buf.String())
	return line
}

func TestLogger_RecordsRequest(t *testing.T) {
	line := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("hello"))
	}, "/api/courses/saved")

	assert.Equal(t, "request completed", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/api/courses/saved", line["path"])
	assert.Equal(t, float64(http.StatusCreated), line["status"])
	assert.Equal(t, float64(5), line["bytes"])
	assert.NotEmpty(t, line["requestID"])
}

func TestLogger_DefaultStatusIsOK(t *testing.T) {
	line := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}, "/api/courses")

	assert.Equal(t, float64(http.StatusOK), line["status"])
}

func TestLogger_Levels(t *testing.T) {
	line := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, "/api/dashboard/statistics")
	assert.Equal(t, "ERROR", line["level"])

	line = serve(t, func(w http.ResponseWriter, r *http.Request) {}, "/healthz")
	assert.Equal(t, "DEBUG", line["level"])
}
