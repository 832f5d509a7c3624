package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"domaind/internal/model"
)

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Open event streams close when it is done.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts returns a context that is canceled when either a or b is done.
// The returned cancel func must be called to release the goroutine when handler ends.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

var upgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

// checkOrigin accepts same-origin requests, and any configured CORS origin
// when CORS is enabled.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if corsEnabled {
		for _, o := range corsAllowedOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
	}
	return strings.HasSuffix(strings.ToLower(origin), "://"+strings.ToLower(r.Host))
}

// eventNames collects the name query parameters; each may hold a comma
// separated list.
func eventNames(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["name"] {
		out = append(out, splitCSV(v)...)
	}
	return out
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// streamEvents godoc
// @Summary      Stream events
// @Description  Upgrades to a websocket and pushes every event published under the given names as JSON text messages.
// @Tags         events
// @Param        name  query  []string  true  "Event names, e.g. UPDATEMODEL1"  collectionFormat(multi)
// @Success      101
// @Failure      400  {object}  types.ErrorResponse
// @Router       /events [get]
func (h *handlers) streamEvents(w http.ResponseWriter, r *http.Request) {
	names := eventNames(r)
	if len(names) == 0 {
		writeJSONError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}
	log := requestLog(r)

	// subscribe before upgrading so nothing published after the handshake is missed
	send := make(chan *model.Event, eventBuffer)
	forward := func(_ context.Context, e *model.Event) error {
		select {
		case send <- e:
		default:
			log.Warn().Str("event", e.Name()).Str("event_id", e.ID()).Msg("event stream full, dropping event")
		}
		return nil
	}
	var unsubscribe []func()
	defer func() {
		for _, off := range unsubscribe {
			off()
		}
	}()
	for _, name := range names {
		off, err := h.svc.Subscribe(name, forward)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		unsubscribe = append(unsubscribe, off)
	}

	wc, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		log.Debug().Err(err).Msg("event stream upgrade failed")
		return
	}
	defer wc.Close()

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	go func() {
		// reading drives pong and close handling; the stream ends with the connection
		defer cancel()
		for {
			if _, _, err := wc.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case e := <-send:
			_ = wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wc.WriteJSON(e); err != nil {
				log.Debug().Err(err).Msg("event stream write failed")
				return
			}
		case <-ticker.C:
			_ = wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := wc.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			_ = wc.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = wc.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}
