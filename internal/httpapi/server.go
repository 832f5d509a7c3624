package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"domaind/internal/model"
	"domaind/internal/pubsub"
	"domaind/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []string
	ListRecords(ctx context.Context, modelName string, all bool) ([]*model.Model, error)
	CreateModel(ctx context.Context, modelName string, args model.Fields) (*model.Model, error)
	GetModel(ctx context.Context, modelName, id string) (*model.Model, error)
	EditModel(ctx context.Context, modelName, id string, changes model.Fields) (*model.Model, error)
	DeleteModel(ctx context.Context, modelName, id string) (*model.Model, error)
	Related(ctx context.Context, modelName, id, relation string) ([]*model.Model, error)
	Subscribe(eventName string, h pubsub.Handler) (func(), error)
}

type handlers struct{ svc Service }

func NewMux(svc Service) http.Handler {
	h := &handlers{svc: svc}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Group(func(r chi.Router) {
		// Compression for JSON endpoints; the event stream hijacks the connection
		r.Use(middleware.Compress(5))
		r.Get("/models", h.listModels)
		r.Get("/models/{model}", h.listRecords)
		r.Post("/models/{model}", h.createModel)
		r.Get("/models/{model}/{id}", h.getModel)
		r.Patch("/models/{model}/{id}", h.editModel)
		r.Delete("/models/{model}/{id}", h.deleteModel)
		r.Get("/models/{model}/{id}/relations/{relation}", h.related)
	})
	r.Get("/events", h.streamEvents)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func toRecords(ms []*model.Model) []types.Record {
	out := make([]types.Record, 0, len(ms))
	for _, m := range ms {
		out = append(out, types.Record(m.Map()))
	}
	return out
}

// decodeFields reads a JSON object body. It writes the error response itself
// and reports false on failure.
func decodeFields(w http.ResponseWriter, r *http.Request) (model.Fields, bool) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return nil, false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var fields model.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		if errors.Is(err, io.EOF) {
			return model.Fields{}, true
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if fields == nil {
		fields = model.Fields{}
	}
	return fields, true
}

// listModels godoc
// @Summary  List registered model names
// @Tags     models
// @Produce  json
// @Success  200  {object}  types.ModelsResponse
// @Router   /models [get]
func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: h.svc.ListModels()})
}

// listRecords godoc
// @Summary  List stored models of one kind
// @Tags     models
// @Produce  json
// @Param    model  path   string  true   "Model name"
// @Param    all    query  bool    false  "Return every record instead of one page"
// @Success  200  {object}  types.RecordsResponse
// @Failure  404  {object}  types.ErrorResponse
// @Router   /models/{model} [get]
func (h *handlers) listRecords(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "model")
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	ms, err := h.svc.ListRecords(r.Context(), name, all)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RecordsResponse{Model: strings.ToUpper(name), Items: toRecords(ms)})
}

// createModel godoc
// @Summary  Create a model
// @Tags     models
// @Accept   json
// @Produce  json
// @Param    model  path  string        true  "Model name"
// @Param    args   body  types.Record  true  "Factory arguments"
// @Success  201  {object}  types.Record
// @Failure  400  {object}  types.ErrorResponse
// @Failure  404  {object}  types.ErrorResponse
// @Failure  422  {object}  types.ErrorResponse
// @Failure  502  {object}  types.ErrorResponse
// @Router   /models/{model} [post]
func (h *handlers) createModel(w http.ResponseWriter, r *http.Request) {
	args, ok := decodeFields(w, r)
	if !ok {
		return
	}
	m, err := h.svc.CreateModel(r.Context(), chi.URLParam(r, "model"), args)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// getModel godoc
// @Summary  Get a stored model
// @Tags     models
// @Produce  json
// @Param    model  path  string  true  "Model name"
// @Param    id     path  string  true  "Model id"
// @Success  200  {object}  types.Record
// @Failure  404  {object}  types.ErrorResponse
// @Router   /models/{model}/{id} [get]
func (h *handlers) getModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetModel(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// editModel godoc
// @Summary      Edit a stored model
// @Description  Merges the body into the stored model, validates, saves and publishes an UPDATE event.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        model    path  string        true  "Model name"
// @Param        id       path  string        true  "Model id"
// @Param        changes  body  types.Record  true  "Changed fields"
// @Success      200  {object}  types.Record
// @Failure      404  {object}  types.ErrorResponse
// @Failure      422  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Router       /models/{model}/{id} [patch]
func (h *handlers) editModel(w http.ResponseWriter, r *http.Request) {
	changes, ok := decodeFields(w, r)
	if !ok {
		return
	}
	m, err := h.svc.EditModel(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "id"), changes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// deleteModel godoc
// @Summary  Delete a stored model
// @Tags     models
// @Produce  json
// @Param    model  path  string  true  "Model name"
// @Param    id     path  string  true  "Model id"
// @Success  200  {object}  types.Record
// @Failure  404  {object}  types.ErrorResponse
// @Router   /models/{model}/{id} [delete]
func (h *handlers) deleteModel(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.DeleteModel(r.Context(), chi.URLParam(r, "model"), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// related godoc
// @Summary  Resolve a relation of a stored model
// @Tags     models
// @Produce  json
// @Param    model     path  string  true  "Model name"
// @Param    id        path  string  true  "Model id"
// @Param    relation  path  string  true  "Relation name"
// @Success  200  {object}  types.RelatedResponse
// @Failure  400  {object}  types.ErrorResponse
// @Failure  404  {object}  types.ErrorResponse
// @Router   /models/{model}/{id}/relations/{relation} [get]
func (h *handlers) related(w http.ResponseWriter, r *http.Request) {
	name, id, rel := chi.URLParam(r, "model"), chi.URLParam(r, "id"), chi.URLParam(r, "relation")
	ms, err := h.svc.Related(r.Context(), name, id, rel)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.RelatedResponse{
		Model:    strings.ToUpper(name),
		ID:       id,
		Relation: rel,
		Items:    toRecords(ms),
	})
}
