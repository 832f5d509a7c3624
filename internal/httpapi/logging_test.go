package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"none":  LevelOff,
		"error": LevelError,
		"warn":  LevelError,
		"info":  LevelInfo,
		"DEBUG": LevelDebug,
		"weird": LevelInfo, // default
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_HeaderOverride(t *testing.T) {
	SetRequestLogLevel("error")
	defer SetRequestLogLevel("info")
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("default level not applied: %v", got)
	}
	r.Header.Set("X-Log-Level", "debug")
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("header override failed: %v", got)
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })
	return &buf
}

func TestRequestLogger_InfoLine(t *testing.T) {
	buf := captureLogs(t)
	r := NewMux(newMockService())
	w := serve(t, r, http.MethodGet, "/models", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "http request" || line["path"] != "/models" || line["method"] != "GET" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if line["status"] != float64(200) {
		t.Fatalf("status field=%v", line["status"])
	}
	if id, _ := line["request_id"].(string); id == "" {
		t.Fatalf("missing request_id: %v", line)
	}
	if _, ok := line["query"]; ok {
		t.Fatalf("query logged at info level")
	}
}

func TestRequestLogger_ErrorLevelSkipsSuccess(t *testing.T) {
	buf := captureLogs(t)
	r := NewMux(newMockService())
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("X-Log-Level", "error")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestRequestLogger_DebugAddsQuery(t *testing.T) {
	buf := captureLogs(t)
	r := NewMux(newMockService())
	req := httptest.NewRequest(http.MethodGet, "/models/model1?all=1", nil)
	req.Header.Set("X-Log-Level", "debug")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if !strings.Contains(buf.String(), `"query":"all=1"`) {
		t.Fatalf("expected query in debug log, got %q", buf.String())
	}
}

func TestRequestLogger_Off(t *testing.T) {
	buf := captureLogs(t)
	r := NewMux(newMockService())
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("X-Log-Level", "off")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}
