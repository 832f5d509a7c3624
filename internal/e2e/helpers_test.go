package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"domaind/internal/app"
	"domaind/internal/httpapi"
	"domaind/internal/registry"
	"domaind/internal/samples"
)

// newServer starts the full stack (registry, sample models, in-memory stores,
// use cases and the HTTP API) behind an httptest server.
func newServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()
	reg := registry.New()
	if err := samples.Register(reg, samples.SHA256Hex); err != nil {
		t.Fatalf("register samples: %v", err)
	}
	a, err := app.NewWithConfig(app.Config{Registry: reg, Relations: samples.Relations()})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(a))
	t.Cleanup(srv.Close)
	return srv, a
}

func do(t *testing.T, method, url string, payload any) (*http.Response, []byte) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, url, body)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

// record performs a request expecting status want and decodes the JSON body.
func record(t *testing.T, method, url string, payload any, want int, out any) {
	t.Helper()
	resp, body := do(t, method, url, payload)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want %d body=%s", method, url, resp.StatusCode, want, body)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("%s %s: decode %s: %v", method, url, body, err)
		}
	}
}

func dialEvents(t *testing.T, srv *httptest.Server, names ...string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events?name=" + strings.Join(names, ",")
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial events: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type eventMessage struct {
	ID        string         `json:"id"`
	EventType string         `json:"eventType"`
	ModelName string         `json:"modelName"`
	EventName string         `json:"eventName"`
	Time      string         `json:"eventTime"`
	Payload   map[string]any `json:"payload"`
}

func readEvent(t *testing.T, c *websocket.Conn) eventMessage {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg eventMessage
	if err := c.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return msg
}
