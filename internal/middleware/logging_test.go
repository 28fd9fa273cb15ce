package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/craftdeck/internal/model"
)

func captureLog(t *testing.T, status int, withUser bool) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/creatives", nil)
	if withUser {
		r = r.WithContext(ContextWithUser(r.Context(), &model.User{ID: "user-1"}))
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	return entry
}

func TestLoggingMiddleware_RecordsRequestFields(t *testing.T) {
	entry := captureLog(t, http.StatusOK, true)

	if entry["method"] != "GET" {
		t.Errorf("method = %v, want GET", entry["method"])
	}
	if entry["path"] != "/api/creatives" {
		t.Errorf("path = %v, want /api/creatives", entry["path"])
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
	if _, ok := entry["duration_ms"]; !ok {
		t.Error("expected duration_ms field")
	}
	if entry["user_id"] != "user-1" {
		t.Errorf("user_id = %v, want user-1", entry["user_id"])
	}
}

func TestLoggingMiddleware_Anonymous_OmitsUserID(t *testing.T) {
	entry := captureLog(t, http.StatusOK, false)

	if _, ok := entry["user_id"]; ok {
		t.Error("anonymous request log should not carry user_id")
	}
}

func TestLoggingMiddleware_LevelByStatusClass(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		entry := captureLog(t, tt.status, false)
		if entry["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, entry["level"], tt.level)
		}
	}
}
