package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func newLoggedHandler(buf *bytes.Buffer, quiet ...string) http.Handler {
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("ok"))
	})
	return Logging(logger, quiet...)(inner)
}

func TestLoggingRecordsRequest(t *testing.T) {
	var buf bytes.Buffer
	h := newLoggedHandler(&buf, "/heartbeat")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/players", nil))

	record := captureLog(t, &buf)
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "GET", record["method"])
	assert.Equal(t, "/players", record["path"])
	assert.Equal(t, float64(http.StatusCreated), record["status"])
	assert.Equal(t, float64(2), record["size"])
	assert.NotEmpty(t, record["remote"])
}

func TestLoggingQuietPathLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	h := newLoggedHandler(&buf, "/heartbeat")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/heartbeat", nil))

	record := captureLog(t, &buf)
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, "/heartbeat", record["path"])
}
