package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"domaind/internal/model"
	"domaind/internal/pubsub"
	"domaind/pkg/types"
)

type mockService struct {
	mu       sync.Mutex
	names    []string
	records  map[string]*model.Model
	related  []*model.Model
	err      error
	gotArgs  model.Fields
	gotAll   bool
	handlers map[string][]pubsub.Handler
}

func newMockService() *mockService {
	return &mockService{
		names: []string{"MODEL1", "MODEL2"},
		records: map[string]*model.Model{
			"a1": model.Restore(model.Fields{"id": "a1", "modelName": "MODEL1", "field1": "x"}, nil),
		},
		handlers: map[string][]pubsub.Handler{},
	}
}

func (m *mockService) ListModels() []string { return append([]string(nil), m.names...) }

func (m *mockService) ListRecords(_ context.Context, _ string, all bool) ([]*model.Model, error) {
	m.gotAll = all
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*model.Model, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockService) CreateModel(_ context.Context, name string, args model.Fields) (*model.Model, error) {
	m.gotArgs = args
	if m.err != nil {
		return nil, m.err
	}
	rec := args.Clone()
	rec["id"] = "new"
	rec["modelName"] = strings.ToUpper(name)
	return model.Restore(rec, nil), nil
}

func (m *mockService) GetModel(_ context.Context, _, id string) (*model.Model, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.records[id]
	if !ok {
		return nil, model.ErrNotFound(id)
	}
	return r, nil
}

func (m *mockService) EditModel(ctx context.Context, name, id string, changes model.Fields) (*model.Model, error) {
	m.gotArgs = changes
	r, err := m.GetModel(ctx, name, id)
	if err != nil {
		return nil, err
	}
	return r.With(changes), nil
}

func (m *mockService) DeleteModel(ctx context.Context, name, id string) (*model.Model, error) {
	return m.GetModel(ctx, name, id)
}

func (m *mockService) Related(_ context.Context, _, _, relation string) ([]*model.Model, error) {
	if m.err != nil {
		return nil, m.err
	}
	if relation != "model2s" {
		return nil, model.ErrArgument("no such relation: " + relation)
	}
	return m.related, nil
}

func (m *mockService) Subscribe(name string, h pubsub.Handler) (func(), error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.ErrArgument("event name missing")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	name = strings.ToUpper(name)
	m.handlers[name] = append(m.handlers[name], h)
	return func() {}, nil
}

func (m *mockService) publish(ctx context.Context, e *model.Event) {
	m.mu.Lock()
	hs := append([]pubsub.Handler(nil), m.handlers[e.Name()]...)
	m.mu.Unlock()
	for _, h := range hs {
		_ = h(ctx, e)
	}
}

func (m *mockService) subscribers(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers[name])
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func serve(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestModelsHandler(t *testing.T) {
	r := NewMux(newMockService())
	w := serve(t, r, http.MethodGet, "/models", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing nosniff header")
	}
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 || body.Models[0] != "MODEL1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestListRecords(t *testing.T) {
	svc := newMockService()
	r := NewMux(svc)
	w := serve(t, r, http.MethodGet, "/models/model1?all=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !svc.gotAll {
		t.Fatalf("all flag not passed through")
	}
	var body types.RecordsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Model != "MODEL1" || len(body.Items) != 1 || body.Items[0]["id"] != "a1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestCreateModel(t *testing.T) {
	svc := newMockService()
	r := NewMux(svc)
	w := serve(t, r, http.MethodPost, "/models/model1", `{"field1":"a","field2":"b"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotArgs["field1"] != "a" || svc.gotArgs["field2"] != "b" {
		t.Fatalf("args not decoded: %v", svc.gotArgs)
	}
	var rec types.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("json: %v", err)
	}
	if rec["id"] != "new" || rec["modelName"] != "MODEL1" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestCreateModel_EmptyBody(t *testing.T) {
	svc := newMockService()
	r := NewMux(svc)
	req := httptest.NewRequest(http.MethodPost, "/models/model1", nil)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotArgs == nil || len(svc.gotArgs) != 0 {
		t.Fatalf("expected empty args, got %v", svc.gotArgs)
	}
}

func TestCreateModel_ContentType(t *testing.T) {
	r := NewMux(newMockService())
	req := httptest.NewRequest(http.MethodPost, "/models/model1", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCreateModel_BadJSON(t *testing.T) {
	r := NewMux(newMockService())
	w := serve(t, r, http.MethodPost, "/models/model1", `{"field1":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Code != http.StatusBadRequest || body.Error != "invalid JSON body" {
		t.Fatalf("unexpected error body: %+v", body)
	}
}

func TestCreateModel_TooLarge(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	r := NewMux(newMockService())
	big := `{"field1":"` + strings.Repeat("x", 64) + `"}`
	w := serve(t, r, http.MethodPost, "/models/model1", big)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestGetEditDelete(t *testing.T) {
	svc := newMockService()
	r := NewMux(svc)

	w := serve(t, r, http.MethodGet, "/models/model1/a1", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"field1":"x"`) {
		t.Fatalf("get: status=%d body=%s", w.Code, w.Body.String())
	}

	w = serve(t, r, http.MethodPatch, "/models/model1/a1", `{"field1":"y"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"field1":"y"`) {
		t.Fatalf("edit: status=%d body=%s", w.Code, w.Body.String())
	}

	w = serve(t, r, http.MethodDelete, "/models/model1/a1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: status=%d", w.Code)
	}

	w = serve(t, r, http.MethodGet, "/models/model1/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
}

func TestRelated(t *testing.T) {
	svc := newMockService()
	svc.related = []*model.Model{
		model.Restore(model.Fields{"id": "b1", "modelName": "MODEL2", "model1Id": "a1"}, nil),
	}
	r := NewMux(svc)
	w := serve(t, r, http.MethodGet, "/models/model1/a1/relations/model2s", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body types.RelatedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Model != "MODEL1" || body.ID != "a1" || body.Relation != "model2s" || len(body.Items) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}

	w = serve(t, r, http.MethodGet, "/models/model1/a1/relations/nope", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown relation: status=%d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	w := serve(t, NewMux(newMockService()), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestErrorMapping(t *testing.T) {
	m1 := model.Restore(model.Fields{"id": "a1", "modelName": "MODEL1"}, nil)
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"argument", model.ErrArgument("bad"), http.StatusBadRequest},
		{"factory", model.ErrFactory("MODEL1", errors.New("Field1 invalid or missing")), http.StatusBadRequest},
		{"unregistered", model.ErrUnregisteredModel("GHOST"), http.StatusNotFound},
		{"not found", model.ErrNotFound("x"), http.StatusNotFound},
		{"invalid", model.ErrInvalid(m1), http.StatusUnprocessableEntity},
		{"publish", model.ErrPublish("UPDATEMODEL1", errors.New("down")), http.StatusBadGateway},
		{"http error", mockHTTPError{msg: "teapot", code: http.StatusTeapot}, http.StatusTeapot},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := newMockService()
			svc.err = c.err
			w := serve(t, NewMux(svc), http.MethodPost, "/models/model1", `{}`)
			if w.Code != c.want {
				t.Fatalf("status=%d want %d", w.Code, c.want)
			}
			var body types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("json: %v", err)
			}
			if body.Code != c.want || body.Error != c.err.Error() {
				t.Fatalf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	SetCORSOptions(true, []string{"https://ui.example"}, []string{"GET", "POST", "PATCH"}, []string{"Content-Type"})
	defer SetCORSOptions(false, nil, nil, nil)
	r := NewMux(newMockService())
	req := httptest.NewRequest(http.MethodOptions, "/models", nil)
	req.Header.Set("Origin", "https://ui.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://ui.example" {
		t.Fatalf("allow-origin=%q", got)
	}
}

func TestDecodeFields_NullBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("null"))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	w := httptest.NewRecorder()
	f, ok := decodeFields(w, req)
	if !ok || f == nil || len(f) != 0 {
		t.Fatalf("got %v %v", f, ok)
	}
}
